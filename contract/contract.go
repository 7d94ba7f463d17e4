//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"chat-relay/confirm"
	"chat-relay/domain"
)

// RoomStore is the durable record of rooms and membership. It owns the
// uniqueness invariants: id and name are unique across rooms, and a
// channel id appears in at most one room's membership. All operations
// are atomic at single-document granularity.
type RoomStore interface {
	FindByChannel(ctx context.Context, channelID string) (domain.Room, error)
	FindByID(ctx context.Context, id string) (domain.Room, error)
	// Insert fails with errors.ErrDuplicateRoom on id or name collision,
	// and with errors.ErrAlreadyMember when a seed channel is already a
	// member of another room.
	Insert(ctx context.Context, room domain.Room) error
	// AddChannel has idempotent set-add semantics: adding a channel
	// that is already a member of this room is a no-op.
	AddChannel(ctx context.Context, id, channelID string) error
	// RemoveChannel pulls a channel out of the room and deletes the
	// room in the same transaction when its membership empties,
	// returning the post-mutation room. An empty Channels slice means
	// the room is gone. Decide delete-vs-keep here, never from a
	// snapshot read earlier: membership may have changed in between.
	RemoveChannel(ctx context.Context, id, channelID string) (domain.Room, error)
	DeleteByID(ctx context.Context, id string) error
	// All returns every room; used to populate the directory cache.
	All(ctx context.Context) ([]domain.Room, error)
}

// Platform is the consumed chat platform surface: endpoint management,
// spoofed sends with delivery confirmation, and message reactions.
// Implemented by the hosting process, never by this module.
type Platform interface {
	ChannelInfo(ctx context.Context, channelID string) (domain.ChannelInfo, error)
	ListEndpoints(ctx context.Context, channelID string) ([]domain.Endpoint, error)
	CreateEndpoint(ctx context.Context, channelID, name, avatarURL string) (domain.Endpoint, error)
	DeleteEndpoint(ctx context.Context, endpointID string) error
	// Send posts through an endpoint under the payload's spoofed
	// identity and returns the id of the created message.
	Send(ctx context.Context, endpoint domain.Endpoint, msg domain.OutboundMessage) (string, error)
	React(ctx context.Context, channelID, messageID, emoji string) error
	Unreact(ctx context.Context, channelID, messageID, emoji string) error
}

// Prompter is the interactive UI collaborator. It renders the
// two-button confirmation control bound to a session and the
// submission forms, and delivers ephemeral responses to the
// initiating user.
type Prompter interface {
	PresentConfirm(ctx context.Context, ic domain.Interaction, prompt domain.ConfirmPrompt, session *confirm.Session) error
	CollectRoomForm(ctx context.Context, ic domain.Interaction) (domain.RoomSubmission, error)
	CollectPassword(ctx context.Context, ic domain.Interaction) (string, error)
	Respond(ctx context.Context, ic domain.Interaction, text string) error
}

// Localizer resolves user-facing text. Injected into handlers instead
// of being attached to platform request objects.
type Localizer interface {
	Text(locale, commandPath, key string, args ...any) string
}

type WorkerName string

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker
// interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
