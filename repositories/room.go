package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"chat-relay/errors"

	"chat-relay/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// Key layout:
//
//	room:id:{room_id}     -> JSON room document
//	room:name:{name}      -> room id (display-name uniqueness index)
//	room:chan:{chan_id}   -> room id (membership uniqueness index)
//
// Every mutation updates the document and its index entries inside one
// Badger transaction, which gives the single-document atomicity the
// relay relies on: a channel is indexed for exactly one room, or none.
const (
	roomPrefix = "room:id:"
	namePrefix = "room:name:"
	chanPrefix = "room:chan:"
)

type RoomRepository struct {
	db       *badger.DB
	log      *slog.Logger
	validate *validator.Validate
}

func NewRoomRepository(db *badger.DB, log *slog.Logger) RoomRepository {
	return RoomRepository{db: db, log: log, validate: validator.New()}
}

// update runs a mutation, retrying when Badger's optimistic conflict
// detection aborts the commit. Concurrent flows touching the same room
// document are expected; the retried closure re-reads current state.
func (r RoomRepository) update(fn func(txn *badger.Txn) error) error {
	for {
		err := r.db.Update(fn)
		if err != badger.ErrConflict {
			return err
		}
		r.log.Debug("Transaction conflict, retrying")
	}
}

func roomKey(id string) []byte      { return []byte(roomPrefix + id) }
func nameKey(name string) []byte    { return []byte(namePrefix + strings.ToLower(name)) }
func chanKey(channel string) []byte { return []byte(chanPrefix + channel) }

// Insert persists a brand new room with its indexes. It fails with
// ErrDuplicateRoom when the id or name is taken, and with
// ErrAlreadyMember when any seed channel already belongs to a room.
func (r RoomRepository) Insert(ctx context.Context, room domain.Room) error {
	if err := r.validate.Struct(room); err != nil {
		return fmt.Errorf("invalid room document: %w", err)
	}

	doc, err := json.Marshal(room)
	if err != nil {
		return err
	}

	return r.update(func(txn *badger.Txn) error {
		if err := absent(txn, roomKey(room.ID), errors.ErrDuplicateRoom); err != nil {
			return err
		}
		if err := absent(txn, nameKey(room.Name), errors.ErrDuplicateRoom); err != nil {
			return err
		}
		for _, ch := range room.Channels {
			if err := absent(txn, chanKey(ch), errors.ErrAlreadyMember); err != nil {
				return err
			}
		}

		if err := txn.Set(roomKey(room.ID), doc); err != nil {
			return err
		}
		if err := txn.Set(nameKey(room.Name), []byte(room.ID)); err != nil {
			return err
		}
		for _, ch := range room.Channels {
			if err := txn.Set(chanKey(ch), []byte(room.ID)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r RoomRepository) FindByID(ctx context.Context, id string) (domain.Room, error) {
	var room domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		room, err = getRoom(txn, id)
		return err
	})
	return room, err
}

// FindByChannel resolves the membership index, then loads the full
// document. A dangling index entry is treated as not-a-member.
func (r RoomRepository) FindByChannel(ctx context.Context, channelID string) (domain.Room, error) {
	var room domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chanKey(channelID))
		if err == badger.ErrKeyNotFound {
			return errors.ErrRoomNotFound
		}
		if err != nil {
			return err
		}
		var id string
		if err = item.Value(func(v []byte) error {
			id = string(v)
			return nil
		}); err != nil {
			return err
		}
		room, err = getRoom(txn, id)
		return err
	})
	return room, err
}

// AddChannel appends a channel to a room's membership with set-add
// semantics: re-adding a channel the room already has is a no-op.
// Joining while a member of a different room fails with
// ErrAlreadyMember.
func (r RoomRepository) AddChannel(ctx context.Context, id, channelID string) error {
	return r.update(func(txn *badger.Txn) error {
		room, err := getRoom(txn, id)
		if err != nil {
			return err
		}
		if room.HasChannel(channelID) {
			return nil
		}
		if err := absent(txn, chanKey(channelID), errors.ErrAlreadyMember); err != nil {
			return err
		}

		room.Channels = append(room.Channels, channelID)
		if err := putRoom(txn, room); err != nil {
			return err
		}
		return txn.Set(chanKey(channelID), []byte(room.ID))
	})
}

// RemoveChannel pulls a channel out of a room's membership. Removing a
// channel that is not a member is a silent no-op. When the membership
// empties, the room document and its name/id indexes are deleted in
// the same transaction, so a room can never be observed with zero
// channels. The post-mutation room is returned; an empty Channels
// slice tells the caller the room is gone.
func (r RoomRepository) RemoveChannel(ctx context.Context, id, channelID string) (domain.Room, error) {
	var room domain.Room
	err := r.update(func(txn *badger.Txn) error {
		var err error
		room, err = getRoom(txn, id)
		if err != nil {
			return err
		}
		if !room.HasChannel(channelID) {
			return nil
		}

		room.Channels = lo.Without(room.Channels, channelID)
		if err := txn.Delete(chanKey(channelID)); err != nil {
			return err
		}
		if len(room.Channels) == 0 {
			if err := txn.Delete(nameKey(room.Name)); err != nil {
				return err
			}
			return txn.Delete(roomKey(room.ID))
		}
		return putRoom(txn, room)
	})
	return room, err
}

// DeleteByID removes the room document and every index entry that
// points at it.
func (r RoomRepository) DeleteByID(ctx context.Context, id string) error {
	return r.update(func(txn *badger.Txn) error {
		room, err := getRoom(txn, id)
		if err != nil {
			return err
		}
		for _, ch := range room.Channels {
			if err := txn.Delete(chanKey(ch)); err != nil {
				return err
			}
		}
		if err := txn.Delete(nameKey(room.Name)); err != nil {
			return err
		}
		return txn.Delete(roomKey(room.ID))
	})
}

// All scans every room document. Used once per process to warm the
// directory cache, and by the background reconciler.
func (r RoomRepository) All(ctx context.Context) ([]domain.Room, error) {
	var rooms []domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = []byte(roomPrefix)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var room domain.Room
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &room)
			}); err != nil {
				return err
			}
			rooms = append(rooms, room)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func getRoom(txn *badger.Txn, id string) (domain.Room, error) {
	var room domain.Room
	item, err := txn.Get(roomKey(id))
	if err == badger.ErrKeyNotFound {
		return room, errors.ErrRoomNotFound
	}
	if err != nil {
		return room, err
	}
	err = item.Value(func(v []byte) error {
		return json.Unmarshal(v, &room)
	})
	return room, err
}

func putRoom(txn *badger.Txn, room domain.Room) error {
	doc, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return txn.Set(roomKey(room.ID), doc)
}

func absent(txn *badger.Txn, key []byte, conflict error) error {
	_, err := txn.Get(key)
	switch err {
	case badger.ErrKeyNotFound:
		return nil
	case nil:
		return conflict
	default:
		return err
	}
}
