// Package domain contains core concepts of the relay system.
// This file defines inbound and outbound message shapes.
// Messages are immutable once built.
package domain

import "time"

// InboundMessage is a user message received on a member channel,
// candidate for relay to the rest of the room.
type InboundMessage struct {
	ID          string
	ChannelID   string
	SenderID    string
	SenderName  string
	SenderIcon  string
	Content     string
	Attachments []Attachment
	Automated   bool // posted by a bot or an endpoint, never relayed
	CreatedAt   time.Time
}

// Attachment is a file reference carried by an inbound message.
type Attachment struct {
	Filename    string
	URL         string
	ContentType string
}

// Card is a labeled, colored reference block attached to an outbound
// message, used to represent classified attachments.
type Card struct {
	Title    string
	URL      string
	Color    int
	ImageURL string // set when the attachment should preview inline
}

// OutboundMessage is the payload handed to the broadcast engine. It is
// sent through each destination's relay endpoint under the spoofed
// display identity.
type OutboundMessage struct {
	DisplayName string
	AvatarURL   string
	Content     string
	Cards       []Card

	// SuppressMentions disables mass-mention expansion at the platform
	// so relayed content cannot amplify @everyone/@here.
	SuppressMentions bool
}

type DeliveryStatus int

const (
	DeliverySent DeliveryStatus = iota
	DeliverySkipped
	DeliveryUnreachable
	DeliveryFailed
)

// DeliveryResult reports the outcome of one destination in a broadcast.
type DeliveryResult struct {
	ChannelID string
	Status    DeliveryStatus
	MessageID string // platform id of the delivered copy, when sent
	Err       error
}

func (d DeliveryResult) Sent() bool {
	return d.Status == DeliverySent
}
