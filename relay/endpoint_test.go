package relay

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"chat-relay/domain"
	"chat-relay/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testAvatar = "https://cdn.example.org/relay.png"

func TestResolve_FindsExistingByName(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	platform := mocks.NewMockPlatform(ctrl)
	platform.EXPECT().ListEndpoints(gomock.Any(), "c1").Return([]domain.Endpoint{
		{ID: "e0", ChannelID: "c1", Name: "relay-other"},
		{ID: "e1", ChannelID: "c1", Name: "relay-bookclub"},
	}, nil)

	r := NewEndpointResolver(platform, logs.GetLoggerFromLevel(slog.LevelDebug), testAvatar)
	ep, ok, err := r.Resolve(context.Background(), "c1", domain.Room{ID: "bookclub"}, true)
	req.NoError(err)
	req.True(ok)
	req.Equal("e1", ep.ID)
}

func TestResolve_CreatesWhenAbsent(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	platform := mocks.NewMockPlatform(ctrl)
	platform.EXPECT().ListEndpoints(gomock.Any(), "c1").Return(nil, nil)
	platform.EXPECT().CreateEndpoint(gomock.Any(), "c1", "relay-bookclub", testAvatar).
		Return(domain.Endpoint{ID: "e9", ChannelID: "c1", Name: "relay-bookclub"}, nil)

	r := NewEndpointResolver(platform, logs.GetLoggerFromLevel(slog.LevelDebug), testAvatar)
	ep, ok, err := r.Resolve(context.Background(), "c1", domain.Room{ID: "bookclub"}, true)
	req.NoError(err)
	req.True(ok)
	req.Equal("e9", ep.ID)
}

func TestResolve_NoCreateOnCleanupPath(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	platform := mocks.NewMockPlatform(ctrl)
	platform.EXPECT().ListEndpoints(gomock.Any(), "c1").Return(nil, nil)

	r := NewEndpointResolver(platform, logs.GetLoggerFromLevel(slog.LevelDebug), testAvatar)
	_, ok, err := r.Resolve(context.Background(), "c1", domain.Room{ID: "bookclub"}, false)
	req.NoError(err)
	req.False(ok)
}

func TestResolve_CreateFailureReported(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	platform := mocks.NewMockPlatform(ctrl)
	platform.EXPECT().ListEndpoints(gomock.Any(), "c1").Return(nil, nil)
	platform.EXPECT().CreateEndpoint(gomock.Any(), "c1", "relay-bookclub", testAvatar).
		Return(domain.Endpoint{}, fmt.Errorf("missing permission"))

	r := NewEndpointResolver(platform, logs.GetLoggerFromLevel(slog.LevelDebug), testAvatar)
	_, ok, err := r.Resolve(context.Background(), "c1", domain.Room{ID: "bookclub"}, true)
	req.Error(err)
	req.False(ok)
}

func TestTeardown_DeletesAndSwallowsFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	platform := mocks.NewMockPlatform(ctrl)
	platform.EXPECT().ListEndpoints(gomock.Any(), "c1").Return([]domain.Endpoint{
		{ID: "e1", ChannelID: "c1", Name: "relay-bookclub"},
	}, nil)
	platform.EXPECT().DeleteEndpoint(gomock.Any(), "e1").Return(fmt.Errorf("gone already"))

	r := NewEndpointResolver(platform, logs.GetLoggerFromLevel(slog.LevelDebug), testAvatar)
	// Must not panic or surface the deletion error.
	r.Teardown(context.Background(), "c1", domain.Room{ID: "bookclub"})
}

func TestTeardown_NothingToDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	platform := mocks.NewMockPlatform(ctrl)
	platform.EXPECT().ListEndpoints(gomock.Any(), "c1").Return(nil, nil)

	r := NewEndpointResolver(platform, logs.GetLoggerFromLevel(slog.LevelDebug), testAvatar)
	r.Teardown(context.Background(), "c1", domain.Room{ID: "bookclub"})
}
