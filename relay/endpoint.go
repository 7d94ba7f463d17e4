package relay

import (
	"context"
	"log/slog"

	"chat-relay/contract"
	"chat-relay/domain"

	"github.com/samber/lo"
)

// EndpointResolver looks up, lazily creates, and tears down the
// per-(channel, room) spoofing endpoints the broadcast engine sends
// through. Endpoints are matched by their deterministic name, so a
// room always reuses the same endpoint on a given channel.
type EndpointResolver struct {
	log       *slog.Logger
	platform  contract.Platform
	avatarURL string // fixed branding image for created endpoints
}

func NewEndpointResolver(platform contract.Platform, log *slog.Logger, avatarURL string) *EndpointResolver {
	return &EndpointResolver{log: log, platform: platform, avatarURL: avatarURL}
}

// Resolve returns the room's endpoint on the channel. When absent it
// is created only if createIfAbsent is set; cleanup paths pass false
// so teardown never provisions what it is about to delete. The second
// return reports whether an endpoint was obtained.
func (r *EndpointResolver) Resolve(ctx context.Context, channelID string, room domain.Room, createIfAbsent bool) (domain.Endpoint, bool, error) {
	endpoints, err := r.platform.ListEndpoints(ctx, channelID)
	if err != nil {
		return domain.Endpoint{}, false, err
	}

	name := domain.EndpointName(room.ID)
	if ep, ok := lo.Find(endpoints, func(e domain.Endpoint) bool { return e.Name == name }); ok {
		return ep, true, nil
	}
	if !createIfAbsent {
		return domain.Endpoint{}, false, nil
	}

	ep, err := r.platform.CreateEndpoint(ctx, channelID, name, r.avatarURL)
	if err != nil {
		// Destination may lack endpoint permission. The caller skips
		// this destination, never the whole batch.
		return domain.Endpoint{}, false, err
	}
	return ep, true, nil
}

// Teardown deletes the room's endpoint on a leaving channel. Failures
// are logged and swallowed: the endpoint is ephemeral and the leave
// proceeds regardless.
func (r *EndpointResolver) Teardown(ctx context.Context, channelID string, room domain.Room) {
	ep, ok, err := r.Resolve(ctx, channelID, room, false)
	if err != nil || !ok {
		if err != nil {
			r.log.Debug("Endpoint lookup failed during teardown", "channel", channelID, "error", err)
		}
		return
	}
	if err := r.platform.DeleteEndpoint(ctx, ep.ID); err != nil {
		r.log.Debug("Endpoint deletion failed", "channel", channelID, "endpoint", ep.ID, "error", err)
	}
}
