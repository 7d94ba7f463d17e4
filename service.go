package chat_relay

import (
	"context"
	"fmt"
	"log/slog"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/internal"
	"chat-relay/lang"
	"chat-relay/moderation"
	"chat-relay/relay"
	"chat-relay/repositories"
	"chat-relay/runtime/workers"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
)

// Service is the embeddable facade: the hosting process provides its
// Platform and Prompter implementations and forwards commands and
// messages here. Construction wires the store, caches, and background
// workers from the environment; the host owns process lifecycle and
// every network surface.
type Service struct {
	log        *slog.Logger
	db         *badger.DB
	localizer  *lang.Service
	controller *relay.Controller
	supervisor *workers.Supervisor
}

func New(platform contract.Platform, prompter contract.Prompter) (*Service, error) {
	config, err := internal.Load()
	if err != nil {
		return nil, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("database opening failed: %w", err)
	}

	store := repositories.NewRoomRepository(db, log)
	directory := relay.NewDirectory(store, log)
	resolver := relay.NewEndpointResolver(platform, log, config.AvatarURL)
	broadcaster := relay.NewBroadcaster(platform, resolver, log, int64(config.SendConcurrency))
	localizer := lang.NewService()

	controller := relay.NewController(
		log, store, directory, resolver, broadcaster, platform, prompter, localizer)
	if config.ConfirmTimeout > 0 {
		controller.WithConfirmTimeout(config.ConfirmTimeout)
	}

	if words := config.SpamWordList(); len(words) > 0 {
		mask, err := internal.CharacterRune(config.CharReplacement)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		scrubber, err := moderation.NewScrubber(words, mask)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("scrubber setup failed: %w", err)
		}
		controller.WithScrubber(&scrubber)
	}

	supervisor := workers.NewSupervisor(log).
		Add(workers.NewDirectoryReconciler(log, directory, config.ReconcileInterval))

	return &Service{
		log:        log,
		db:         db,
		localizer:  localizer,
		controller: controller,
		supervisor: supervisor,
	}, nil
}

// Run blocks supervising the background workers until ctx is canceled
// or Close is called. The command and message entry points work
// whether or not Run was started.
func (s *Service) Run(ctx context.Context) {
	s.supervisor.Run(ctx)
}

// RegisterLocale overlays a locale catalog for user-facing text.
func (s *Service) RegisterLocale(locale string, entries map[string]string) {
	s.localizer.Register(locale, entries)
}

// Activate handles the room activate command from the host.
func (s *Service) Activate(ctx context.Context, ic domain.Interaction, roomID string) error {
	return s.controller.Activate(ctx, ic, roomID)
}

// Deactivate handles the room deactivate command from the host.
func (s *Service) Deactivate(ctx context.Context, ic domain.Interaction) error {
	return s.controller.Deactivate(ctx, ic)
}

// HandleMessage relays one inbound channel message.
func (s *Service) HandleMessage(ctx context.Context, msg domain.InboundMessage) error {
	return s.controller.HandleMessage(ctx, msg)
}

func (s *Service) Close() error {
	s.supervisor.Stop()
	s.log.Info("Closing BadgerDB...")
	return s.db.Close()
}
