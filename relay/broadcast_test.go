package relay

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"chat-relay/domain"
	"chat-relay/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestBroadcaster(platform *mocks.MockPlatform) *Broadcaster {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return NewBroadcaster(platform, NewEndpointResolver(platform, log, testAvatar), log, 4)
}

func TestBroadcast_OneResultPerDestination(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	room := domain.Room{ID: "bookclub", Name: "Book Club", Channels: []string{"c1", "c2", "c3", "c4"}}
	platform := mocks.NewMockPlatform(ctrl)

	// c2 delivers through an existing endpoint.
	platform.EXPECT().ChannelInfo(gomock.Any(), "c2").Return(domain.ChannelInfo{ID: "c2"}, nil)
	platform.EXPECT().ListEndpoints(gomock.Any(), "c2").Return([]domain.Endpoint{
		{ID: "e2", ChannelID: "c2", Name: "relay-bookclub"},
	}, nil)
	platform.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ep domain.Endpoint, msg domain.OutboundMessage) (string, error) {
			if ep.ID != "e2" {
				return "", fmt.Errorf("unexpected endpoint %s", ep.ID)
			}
			if !msg.SuppressMentions {
				return "", fmt.Errorf("mentions not suppressed")
			}
			return "m2", nil
		})

	// c3 cannot obtain an endpoint.
	platform.EXPECT().ChannelInfo(gomock.Any(), "c3").Return(domain.ChannelInfo{ID: "c3"}, nil)
	platform.EXPECT().ListEndpoints(gomock.Any(), "c3").Return(nil, nil)
	platform.EXPECT().CreateEndpoint(gomock.Any(), "c3", "relay-bookclub", testAvatar).
		Return(domain.Endpoint{}, fmt.Errorf("missing permission"))

	// c4 was deleted out-of-band.
	platform.EXPECT().ChannelInfo(gomock.Any(), "c4").Return(domain.ChannelInfo{}, fmt.Errorf("unknown channel"))

	b := newTestBroadcaster(platform)
	results := b.Broadcast(context.Background(), room, []string{"c2", "c3", "c4"}, domain.OutboundMessage{Content: "hi"})

	req.Len(results, 3)
	byChannel := lo.KeyBy(results, func(r domain.DeliveryResult) string { return r.ChannelID })

	req.Equal(domain.DeliverySent, byChannel["c2"].Status)
	req.Equal("m2", byChannel["c2"].MessageID)
	req.Equal(domain.DeliveryUnreachable, byChannel["c3"].Status)
	req.Equal(domain.DeliverySkipped, byChannel["c4"].Status)

	req.Equal(1, lo.CountBy(results, domain.DeliveryResult.Sent))
}

func TestBroadcast_FailuresStayIsolated(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	room := domain.Room{ID: "r", Name: "R", Channels: []string{"src", "a", "b"}}
	platform := mocks.NewMockPlatform(ctrl)

	for _, ch := range []string{"a", "b"} {
		platform.EXPECT().ChannelInfo(gomock.Any(), ch).Return(domain.ChannelInfo{ID: ch}, nil)
		platform.EXPECT().ListEndpoints(gomock.Any(), ch).Return([]domain.Endpoint{
			{ID: "e-" + ch, ChannelID: ch, Name: "relay-r"},
		}, nil)
	}
	platform.EXPECT().Send(gomock.Any(), domain.Endpoint{ID: "e-a", ChannelID: "a", Name: "relay-r"}, gomock.Any()).
		Return("", fmt.Errorf("rate limited"))
	platform.EXPECT().Send(gomock.Any(), domain.Endpoint{ID: "e-b", ChannelID: "b", Name: "relay-r"}, gomock.Any()).
		Return("mb", nil)

	b := newTestBroadcaster(platform)
	results := b.Broadcast(context.Background(), room, []string{"a", "b"}, domain.OutboundMessage{Content: "x"})

	req.Len(results, 2)
	byChannel := lo.KeyBy(results, func(r domain.DeliveryResult) string { return r.ChannelID })
	req.Equal(domain.DeliveryFailed, byChannel["a"].Status)
	req.Error(byChannel["a"].Err)
	req.Equal(domain.DeliverySent, byChannel["b"].Status)
}

func TestBroadcast_ManyDestinationsBounded(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	room := domain.Room{ID: "r", Name: "R"}
	platform := mocks.NewMockPlatform(ctrl)

	const n = 50
	destinations := make([]string, n)
	for i := range destinations {
		ch := fmt.Sprintf("c%d", i)
		destinations[i] = ch
		platform.EXPECT().ChannelInfo(gomock.Any(), ch).Return(domain.ChannelInfo{ID: ch}, nil)
		platform.EXPECT().ListEndpoints(gomock.Any(), ch).Return([]domain.Endpoint{
			{ID: "e-" + ch, ChannelID: ch, Name: "relay-r"},
		}, nil)
	}
	platform.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return("ok", nil).Times(n)

	b := newTestBroadcaster(platform)
	results := b.Broadcast(context.Background(), room, destinations, domain.OutboundMessage{Content: "x"})

	req.Len(results, n)
	req.Equal(n, lo.CountBy(results, domain.DeliveryResult.Sent))
}
