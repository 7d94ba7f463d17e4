package relay

import (
	"context"
	"log/slog"
	"sync"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"

	"golang.org/x/sync/semaphore"
)

// DefaultMaxInFlight is the process-wide ceiling on concurrent
// endpoint sends, shared by every room, protecting the platform's
// rate limits.
const DefaultMaxInFlight = 100

// Broadcaster fans one payload out to N destination channels through
// their relay endpoints. Destinations are independent: one failing or
// unreachable destination never aborts, retries, or delays the others.
type Broadcaster struct {
	log      *slog.Logger
	platform contract.Platform
	resolver *EndpointResolver
	permits  *semaphore.Weighted
}

func NewBroadcaster(platform contract.Platform, resolver *EndpointResolver, log *slog.Logger, maxInFlight int64) *Broadcaster {
	if maxInFlight <= 0 {
		maxInFlight = DefaultMaxInFlight
	}
	return &Broadcaster{
		log:      log,
		platform: platform,
		resolver: resolver,
		permits:  semaphore.NewWeighted(maxInFlight),
	}
}

// Broadcast delivers the payload to every destination channel and
// returns one result per destination, in input order. It blocks until
// every dispatched send has completed or failed. Mass mentions are
// always suppressed on the wire, and each send waits for the created
// message so delivery is confirmed, not assumed.
func (b *Broadcaster) Broadcast(ctx context.Context, room domain.Room, destinations []string, payload domain.OutboundMessage) []domain.DeliveryResult {
	payload.SuppressMentions = true

	results := make([]domain.DeliveryResult, len(destinations))
	var wg sync.WaitGroup
	for i, channelID := range destinations {
		wg.Add(1)
		go func(i int, channelID string) {
			defer wg.Done()
			results[i] = b.deliver(ctx, room, channelID, payload)
		}(i, channelID)
	}
	wg.Wait()
	return results
}

func (b *Broadcaster) deliver(ctx context.Context, room domain.Room, channelID string, payload domain.OutboundMessage) domain.DeliveryResult {
	// A destination deleted out-of-band is not an error for the batch.
	if _, err := b.platform.ChannelInfo(ctx, channelID); err != nil {
		b.log.Debug("Destination channel gone, skipping", "channel", channelID, "room", room.ID)
		return domain.DeliveryResult{ChannelID: channelID, Status: domain.DeliverySkipped}
	}

	ep, ok, err := b.resolver.Resolve(ctx, channelID, room, true)
	if err != nil || !ok {
		b.log.Warn("No relay endpoint obtainable", "channel", channelID, "room", room.ID, "error", err)
		return domain.DeliveryResult{
			ChannelID: channelID,
			Status:    domain.DeliveryUnreachable,
			Err:       errors.ErrDestinationUnreachable,
		}
	}

	if err := b.permits.Acquire(ctx, 1); err != nil {
		return domain.DeliveryResult{ChannelID: channelID, Status: domain.DeliveryFailed, Err: err}
	}
	defer b.permits.Release(1)

	messageID, err := b.platform.Send(ctx, ep, payload)
	if err != nil {
		b.log.Warn("Send failed", "channel", channelID, "room", room.ID, "error", err)
		return domain.DeliveryResult{ChannelID: channelID, Status: domain.DeliveryFailed, Err: err}
	}
	return domain.DeliveryResult{ChannelID: channelID, Status: domain.DeliverySent, MessageID: messageID}
}
