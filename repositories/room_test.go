package repositories

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"chat-relay/domain"
	"chat-relay/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) RoomRepository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRoomRepository(db, slog.Default())
}

func bookclub(channels ...string) domain.Room {
	return domain.Room{
		ID:       "bookclub",
		Name:     "Book Club",
		Channels: channels,
		Owner:    "u1",
	}
}

func Test_Insert_And_Find(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	req.NoError(repo.Insert(ctx, bookclub("c1")))

	byID, err := repo.FindByID(ctx, "bookclub")
	req.NoError(err)
	req.Equal([]string{"c1"}, byID.Channels)

	byChannel, err := repo.FindByChannel(ctx, "c1")
	req.NoError(err)
	req.Equal("bookclub", byChannel.ID)

	_, err = repo.FindByChannel(ctx, "unknown")
	req.ErrorIs(err, errors.ErrRoomNotFound)
}

func Test_Insert_Uniqueness(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	req.NoError(repo.Insert(ctx, bookclub("c1")))

	// Same id.
	err := repo.Insert(ctx, domain.Room{ID: "bookclub", Name: "Other", Channels: []string{"c2"}})
	req.ErrorIs(err, errors.ErrDuplicateRoom)

	// Same name, different id.
	err = repo.Insert(ctx, domain.Room{ID: "bookclub2", Name: "Book Club", Channels: []string{"c2"}})
	req.ErrorIs(err, errors.ErrDuplicateRoom)

	// Seed channel already a member elsewhere.
	err = repo.Insert(ctx, domain.Room{ID: "films", Name: "Film Club", Channels: []string{"c1"}})
	req.ErrorIs(err, errors.ErrAlreadyMember)

	// A failed insert must not leave partial indexes behind.
	_, err = repo.FindByID(ctx, "films")
	req.ErrorIs(err, errors.ErrRoomNotFound)
}

func Test_Insert_RejectsInvalidDocument(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)

	// No channels: a room never exists empty.
	err := repo.Insert(context.Background(), domain.Room{ID: "x", Name: "X"})
	req.Error(err)
}

func Test_AddChannel_Idempotent(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	req.NoError(repo.Insert(ctx, bookclub("c1")))
	req.NoError(repo.AddChannel(ctx, "bookclub", "c2"))
	req.NoError(repo.AddChannel(ctx, "bookclub", "c2"))

	room, err := repo.FindByID(ctx, "bookclub")
	req.NoError(err)
	req.Equal([]string{"c1", "c2"}, room.Channels)
}

func Test_AddChannel_MemberOfAnotherRoom(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	req.NoError(repo.Insert(ctx, bookclub("c1")))
	req.NoError(repo.Insert(ctx, domain.Room{ID: "films", Name: "Film Club", Channels: []string{"c9"}}))

	err := repo.AddChannel(ctx, "films", "c1")
	req.ErrorIs(err, errors.ErrAlreadyMember)
}

func Test_RemoveChannel(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	req.NoError(repo.Insert(ctx, bookclub("c1", "c2")))
	updated, err := repo.RemoveChannel(ctx, "bookclub", "c1")
	req.NoError(err)
	req.Equal([]string{"c2"}, updated.Channels)

	room, err := repo.FindByID(ctx, "bookclub")
	req.NoError(err)
	req.Equal([]string{"c2"}, room.Channels)

	_, err = repo.FindByChannel(ctx, "c1")
	req.ErrorIs(err, errors.ErrRoomNotFound)

	// Removing a non-member is a silent no-op.
	updated, err = repo.RemoveChannel(ctx, "bookclub", "c1")
	req.NoError(err)
	req.Equal([]string{"c2"}, updated.Channels)
}

func Test_RemoveChannel_LastChannelDeletesRoom(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	req.NoError(repo.Insert(ctx, bookclub("c1")))

	updated, err := repo.RemoveChannel(ctx, "bookclub", "c1")
	req.NoError(err)
	req.Empty(updated.Channels)

	// Document and every index entry are gone in one transaction.
	_, err = repo.FindByID(ctx, "bookclub")
	req.ErrorIs(err, errors.ErrRoomNotFound)
	_, err = repo.FindByChannel(ctx, "c1")
	req.ErrorIs(err, errors.ErrRoomNotFound)

	// Id and name are immediately reusable.
	req.NoError(repo.Insert(ctx, bookclub("c1")))
}

func Test_RemoveChannel_ConcurrentDrainDeletesRoom(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	channels := []string{"c1", "c2", "c3", "c4"}
	req.NoError(repo.Insert(ctx, bookclub(channels...)))

	// Every channel leaves at once; conflicting transactions must
	// retry, not drop removals, and the last one out deletes the room.
	var wg sync.WaitGroup
	for _, ch := range channels {
		wg.Add(1)
		go func(ch string) {
			defer wg.Done()
			_, err := repo.RemoveChannel(ctx, "bookclub", ch)
			req.NoError(err)
		}(ch)
	}
	wg.Wait()

	_, err := repo.FindByID(ctx, "bookclub")
	req.ErrorIs(err, errors.ErrRoomNotFound)
	for _, ch := range channels {
		_, err = repo.FindByChannel(ctx, ch)
		req.ErrorIs(err, errors.ErrRoomNotFound)
	}
}

func Test_DeleteByID_CleansIndexes(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	req.NoError(repo.Insert(ctx, bookclub("c1", "c2")))
	req.NoError(repo.DeleteByID(ctx, "bookclub"))

	_, err := repo.FindByID(ctx, "bookclub")
	req.ErrorIs(err, errors.ErrRoomNotFound)
	_, err = repo.FindByChannel(ctx, "c1")
	req.ErrorIs(err, errors.ErrRoomNotFound)

	// Name and channels are reusable once the room is gone.
	req.NoError(repo.Insert(ctx, bookclub("c1", "c2")))
}

func Test_All(t *testing.T) {
	req := require.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	req.NoError(repo.Insert(ctx, bookclub("c1")))
	req.NoError(repo.Insert(ctx, domain.Room{ID: "films", Name: "Film Club", Channels: []string{"c2", "c3"}}))

	rooms, err := repo.All(ctx)
	req.NoError(err)
	req.Len(rooms, 2)
}
