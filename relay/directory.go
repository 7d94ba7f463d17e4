// Package relay implements the room relay core: membership directory,
// content filtering, endpoint resolution, bounded fan-out, and the
// room lifecycle controller tying them together.
package relay

import (
	"context"
	"log/slog"
	"sync"

	"chat-relay/contract"
)

// Directory is the in-memory set of channel ids known to belong to
// some room. It exists to fast-reject non-member traffic without a
// store round-trip and is never authoritative: a positive answer must
// be corroborated by a store lookup before it is acted on.
//
// Populated lazily with one full store scan on first use, then kept
// up to date incrementally by the lifecycle flows. Safe for concurrent
// use.
type Directory struct {
	log   *slog.Logger
	store contract.RoomStore

	mu      sync.Mutex
	loaded  bool
	members map[string]struct{}
}

func NewDirectory(store contract.RoomStore, log *slog.Logger) *Directory {
	return &Directory{
		log:     log,
		store:   store,
		members: make(map[string]struct{}),
	}
}

// Contains reports whether the channel is known to belong to a room.
// The first call scans the full store to warm the set.
func (d *Directory) Contains(ctx context.Context, channelID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.loaded {
		if err := d.reloadLocked(ctx); err != nil {
			return false, err
		}
	}
	_, ok := d.members[channelID]
	return ok, nil
}

// Add marks a channel as a room member. Idempotent.
func (d *Directory) Add(channelID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.members[channelID] = struct{}{}
}

// Remove forgets a channel. Removing an absent id is a silent no-op:
// the membership may already be stale.
func (d *Directory) Remove(channelID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.members, channelID)
}

// Refresh rebuilds the set from the store. Used by the background
// reconciler to heal drift accumulated from missed updates.
func (d *Directory) Refresh(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reloadLocked(ctx)
}

func (d *Directory) reloadLocked(ctx context.Context) error {
	rooms, err := d.store.All(ctx)
	if err != nil {
		return err
	}

	members := make(map[string]struct{})
	for _, room := range rooms {
		for _, ch := range room.Channels {
			members[ch] = struct{}{}
		}
	}
	d.members = members
	d.loaded = true
	d.log.Debug("Directory cache loaded", "channels", len(members))
	return nil
}
