package relay

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"chat-relay/auth"
	"chat-relay/confirm"
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/mimetypes"
	"chat-relay/errors"
	"chat-relay/moderation"

	"github.com/abadojack/whatlanggo"
	"github.com/samber/lo"
)

const (
	pendingMarker   = "⏳"
	deliveredMarker = "✅"
)

// Controller orchestrates the interactive room flows (activate,
// deactivate) and the incoming-message relay. One long-lived instance
// is constructed at process start and shared by all request handlers:
// the directory cache and the send permit pool live here, not in
// ambient globals.
type Controller struct {
	log         *slog.Logger
	store       contract.RoomStore
	directory   *Directory
	resolver    *EndpointResolver
	broadcaster *Broadcaster
	platform    contract.Platform
	prompter    contract.Prompter
	loc         contract.Localizer

	scrubber       *moderation.Scrubber
	confirmTimeout time.Duration
}

func NewController(
	log *slog.Logger,
	store contract.RoomStore,
	directory *Directory,
	resolver *EndpointResolver,
	broadcaster *Broadcaster,
	platform contract.Platform,
	prompter contract.Prompter,
	loc contract.Localizer,
) *Controller {
	return &Controller{
		log:            log,
		store:          store,
		directory:      directory,
		resolver:       resolver,
		broadcaster:    broadcaster,
		platform:       platform,
		prompter:       prompter,
		loc:            loc,
		confirmTimeout: confirm.DefaultTimeout,
	}
}

// WithScrubber enables the antispam word scrub for rooms that opted in.
func (c *Controller) WithScrubber(s *moderation.Scrubber) *Controller {
	c.scrubber = s
	return c
}

func (c *Controller) WithConfirmTimeout(d time.Duration) *Controller {
	c.confirmTimeout = d
	return c
}

// Activate connects the invoking channel to a room: joining it when
// the id exists, creating it otherwise. An empty id targets the
// well-known shared room.
func (c *Controller) Activate(ctx context.Context, ic domain.Interaction, roomID string) error {
	if roomID == "" {
		roomID = domain.DefaultRoomID
	}

	_, err := c.store.FindByChannel(ctx, ic.ChannelID)
	switch {
	case err == nil:
		c.respond(ctx, ic, "global.activate", "already_member")
		return errors.ErrAlreadyMember
	case !stderrors.Is(err, errors.ErrRoomNotFound):
		return c.degraded(ctx, ic, "global.activate", err)
	}

	room, err := c.store.FindByID(ctx, roomID)
	switch {
	case err == nil:
		return c.join(ctx, ic, room)
	case stderrors.Is(err, errors.ErrRoomNotFound):
		return c.create(ctx, ic, roomID)
	default:
		return c.degraded(ctx, ic, "global.activate", err)
	}
}

// create runs the room creation flow: confirm intent, collect the
// submission form, persist, then update the cache. No mutation happens
// before the confirmation and submission both succeed.
func (c *Controller) create(ctx context.Context, ic domain.Interaction, roomID string) error {
	followUp, err := c.confirmIntent(ctx, ic, "global.activate",
		"create_confirm_title", "create_confirm_body", domain.ConfirmPrimary, roomID)
	if err != nil {
		return err
	}

	sub, err := c.prompter.CollectRoomForm(ctx, followUp)
	if err != nil {
		return c.degraded(ctx, followUp, "global.activate", err)
	}

	var hash string
	if sub.Password != "" {
		if hash, err = auth.HashSecret(sub.Password); err != nil {
			return c.degraded(ctx, followUp, "global.activate", err)
		}
	}

	room := domain.Room{
		ID:          roomID,
		Name:        sub.Name,
		Channels:    []string{ic.ChannelID},
		Owner:       ic.UserID,
		Password:    hash,
		Description: sub.Description,
	}
	if err = c.store.Insert(ctx, room); err != nil {
		switch {
		case stderrors.Is(err, errors.ErrDuplicateRoom):
			// Lost a race with a concurrent create.
			c.respond(ctx, followUp, "global.activate", "duplicate")
			return err
		case stderrors.Is(err, errors.ErrAlreadyMember):
			c.respond(ctx, followUp, "global.activate", "already_member")
			return err
		default:
			return c.degraded(ctx, followUp, "global.activate", err)
		}
	}

	c.directory.Add(ic.ChannelID)
	c.respond(ctx, followUp, "global.activate", "created", room.Name)
	c.log.Info("Room created", "room", room.ID, "channel", ic.ChannelID, "owner", ic.UserID)
	return nil
}

// join runs the join flow: confirm intent, check the password when the
// room has one, mutate the store, update the cache, then announce the
// new member to the rest of the room.
func (c *Controller) join(ctx context.Context, ic domain.Interaction, room domain.Room) error {
	followUp, err := c.confirmIntent(ctx, ic, "global.activate",
		"join_confirm_title", "join_confirm_body", domain.ConfirmPrimary, room.ID)
	if err != nil {
		return err
	}

	if room.HasPassword() {
		secret, err := c.prompter.CollectPassword(ctx, followUp)
		if err != nil {
			return c.degraded(ctx, followUp, "global.activate", err)
		}
		match, err := auth.VerifySecret(secret, room.Password)
		if err != nil {
			return c.degraded(ctx, followUp, "global.activate", err)
		}
		if !match {
			c.respond(ctx, followUp, "global.activate", "password_failed")
			return errors.ErrPasswordMismatch
		}
	}

	if err = c.store.AddChannel(ctx, room.ID, ic.ChannelID); err != nil {
		if stderrors.Is(err, errors.ErrAlreadyMember) {
			c.respond(ctx, followUp, "global.activate", "already_member")
			return err
		}
		return c.degraded(ctx, followUp, "global.activate", err)
	}
	c.directory.Add(ic.ChannelID)

	// Refresh the in-memory view for the announcement count.
	room.Channels = append(room.Channels, ic.ChannelID)
	c.announce(ctx, room, ic.ChannelID, "joined")

	c.respond(ctx, followUp, "global.activate", "joined", room.Name)
	c.log.Info("Channel joined room", "room", room.ID, "channel", ic.ChannelID)
	return nil
}

// Deactivate disconnects the invoking channel from its room, deleting
// the room when this was its last channel. The leaving channel's relay
// endpoint is torn down either way.
func (c *Controller) Deactivate(ctx context.Context, ic domain.Interaction) error {
	room, err := c.store.FindByChannel(ctx, ic.ChannelID)
	switch {
	case stderrors.Is(err, errors.ErrRoomNotFound):
		c.respond(ctx, ic, "global.deactivate", "not_member")
		return errors.ErrNotMember
	case err != nil:
		return c.degraded(ctx, ic, "global.deactivate", err)
	}

	followUp, err := c.confirmIntent(ctx, ic, "global.deactivate",
		"confirm_title", "confirm_body", domain.ConfirmDestructive, room.ID)
	if err != nil {
		return err
	}

	// The room snapshot above predates the confirmation wait, so it
	// must not decide anything: other channels may have left in the
	// meantime. The store removes the channel and deletes the room in
	// one transaction when the membership empties.
	updated, err := c.store.RemoveChannel(ctx, room.ID, ic.ChannelID)
	switch {
	case stderrors.Is(err, errors.ErrRoomNotFound):
		// Room disappeared while the prompt was open.
		c.respond(ctx, followUp, "global.deactivate", "not_member")
		return errors.ErrNotMember
	case err != nil:
		return c.degraded(ctx, followUp, "global.deactivate", err)
	}
	c.directory.Remove(ic.ChannelID)
	c.resolver.Teardown(ctx, ic.ChannelID, room)

	if len(updated.Channels) == 0 {
		c.respond(ctx, followUp, "global.deactivate", "deactivated_deleted")
		c.log.Info("Room deleted with last channel", "room", room.ID, "channel", ic.ChannelID)
		return nil
	}

	c.announce(ctx, updated, ic.ChannelID, "left")
	c.respond(ctx, followUp, "global.deactivate", "deactivated", room.Name)
	c.log.Info("Channel left room", "room", room.ID, "channel", ic.ChannelID)
	return nil
}

// HandleMessage relays one inbound user message to every other member
// channel of its room. Non-member traffic is fast-rejected through the
// directory cache before any store round-trip.
func (c *Controller) HandleMessage(ctx context.Context, msg domain.InboundMessage) error {
	if msg.Automated {
		return nil
	}

	member, err := c.directory.Contains(ctx, msg.ChannelID)
	if err != nil {
		c.log.Error("Directory lookup failed", "channel", msg.ChannelID, "error", err)
		return nil
	}
	if !member {
		return nil
	}

	room, err := c.store.FindByChannel(ctx, msg.ChannelID)
	switch {
	case stderrors.Is(err, errors.ErrRoomNotFound):
		// Stale cache entry, heal it.
		c.directory.Remove(msg.ChannelID)
		return nil
	case err != nil:
		c.log.Error("Room lookup failed", "channel", msg.ChannelID, "error", err)
		return nil
	}

	if room.IsMuted(msg.SenderID) {
		return nil
	}

	payload := c.buildPayload(ctx, room, msg)

	// Transient status markers on the source message are best-effort
	// and must never block the broadcast.
	c.mark(ctx, msg, pendingMarker)

	results := c.broadcaster.Broadcast(ctx, room, room.OtherChannels(msg.ChannelID), payload)
	sent := lo.CountBy(results, domain.DeliveryResult.Sent)
	c.log.Debug("Relayed message",
		"room", room.ID, "source", msg.ChannelID, "sent", sent, "total", len(results))

	c.unmark(ctx, msg, pendingMarker)
	c.mark(ctx, msg, deliveredMarker)
	return nil
}

// buildPayload assembles the outbound copy: spoofed identity label,
// filtered body, optional antispam scrub, and attachment cards.
func (c *Controller) buildPayload(ctx context.Context, room domain.Room, msg domain.InboundMessage) domain.OutboundMessage {
	var parentName string
	if info, err := c.platform.ChannelInfo(ctx, msg.ChannelID); err == nil {
		parentName = info.ParentName
	}

	content := FilterContent(msg.Content)
	if room.Antispam && c.scrubber != nil {
		scrubbed, found := c.scrubber.Scrub(content)
		if len(found) > 0 {
			info := whatlanggo.Detect(msg.Content)
			c.log.Warn("Spam words scrubbed",
				"room", room.ID,
				"sender", msg.SenderID,
				"words", found,
				"lang", info.Lang.Iso6391())
		}
		content = scrubbed
	}

	return domain.OutboundMessage{
		DisplayName:      domain.DisplayLabel(msg.SenderName, parentName),
		AvatarURL:        msg.SenderIcon,
		Content:          content,
		Cards:            attachmentCards(msg.Attachments),
		SuppressMentions: true,
	}
}

// attachmentCards classifies attachments into labeled, colored
// reference cards. Images additionally preview inline.
func attachmentCards(attachments []domain.Attachment) []domain.Card {
	return lo.Map(attachments, func(a domain.Attachment, _ int) domain.Card {
		family := mimetypes.Classify(a.ContentType)
		card := domain.Card{
			Title: fmt.Sprintf("%s: %s", family.Label(), a.Filename),
			URL:   a.URL,
			Color: family.Color(),
		}
		if family == mimetypes.Image {
			card.ImageURL = a.URL
		}
		return card
	})
}

// announce broadcasts a membership change to every member channel
// except the one that triggered it.
func (c *Controller) announce(ctx context.Context, room domain.Room, exceptChannel, key string) {
	payload := domain.OutboundMessage{
		DisplayName:      c.loc.Text("", "common", "brand"),
		Content:          c.loc.Text("", "global.announce", key, room.Name, len(room.Channels)),
		SuppressMentions: true,
	}
	results := c.broadcaster.Broadcast(ctx, room, room.OtherChannels(exceptChannel), payload)
	sent := lo.CountBy(results, domain.DeliveryResult.Sent)
	c.log.Debug("Announcement broadcast", "room", room.ID, "key", key, "sent", sent, "total", len(results))
}

// confirmIntent presents the two-button gate and waits for its single
// terminal outcome. On acceptance it returns the resolving interaction
// so follow-up forms open from the same interactive context; rejection
// and timeout are reported to the user and end the flow with no
// mutation.
func (c *Controller) confirmIntent(
	ctx context.Context,
	ic domain.Interaction,
	path, titleKey, bodyKey string,
	style domain.ConfirmStyle,
	args ...any,
) (domain.Interaction, error) {
	session := confirm.NewSession()
	prompt := domain.ConfirmPrompt{
		Title:    c.loc.Text(ic.Locale, path, titleKey, args...),
		Body:     c.loc.Text(ic.Locale, path, bodyKey, args...),
		Style:    style,
		AcceptID: session.AcceptID(),
		RejectID: session.RejectID(),
	}
	if err := c.prompter.PresentConfirm(ctx, ic, prompt, session); err != nil {
		return ic, c.degraded(ctx, ic, path, err)
	}

	switch session.Await(ctx, c.confirmTimeout) {
	case confirm.Accepted:
		return session.Interaction(), nil
	case confirm.Rejected:
		c.respond(ctx, session.Interaction(), path, "canceled")
		return ic, errors.ErrConfirmationRejected
	default:
		c.respond(ctx, ic, path, "timed_out")
		return ic, errors.ErrConfirmationTimeout
	}
}

func (c *Controller) respond(ctx context.Context, ic domain.Interaction, path, key string, args ...any) {
	if err := c.prompter.Respond(ctx, ic, c.loc.Text(ic.Locale, path, key, args...)); err != nil {
		c.log.Debug("Ephemeral response failed", "interaction", ic.ID, "error", err)
	}
}

// degraded reports an unexpected lower-level failure to the user and
// surfaces it to the caller. The flow aborts; shared state was not
// partially mutated past the error point.
func (c *Controller) degraded(ctx context.Context, ic domain.Interaction, path string, err error) error {
	c.log.Error("Flow degraded", "path", path, "interaction", ic.ID, "error", err)
	c.respond(ctx, ic, path, "degraded")
	return fmt.Errorf("%s: %w", path, err)
}

func (c *Controller) mark(ctx context.Context, msg domain.InboundMessage, emoji string) {
	if err := c.platform.React(ctx, msg.ChannelID, msg.ID, emoji); err != nil {
		c.log.Debug("Status marker failed", "message", msg.ID, "error", err)
	}
}

func (c *Controller) unmark(ctx context.Context, msg domain.InboundMessage, emoji string) {
	if err := c.platform.Unreact(ctx, msg.ChannelID, msg.ID, emoji); err != nil {
		c.log.Debug("Status marker removal failed", "message", msg.ID, "error", err)
	}
}
