// Package domain contains core concepts of the relay system.
// This file defines the Room entity and its membership invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"github.com/samber/lo"
)

// DefaultRoomID is the well-known shared room joined when activate is
// called without an explicit room id.
const DefaultRoomID = "global"

// Room is a named group of channels whose messages are mutually relayed.
//
// ID and Name are globally unique; ID is immutable after creation.
// Channels is an ordered unique collection and is never empty while the
// room exists: removing the last channel deletes the room instead.
type Room struct {
	ID       string   `json:"id" validate:"required,min=1,max=50"`
	Name     string   `json:"name" validate:"required,min=1,max=100"`
	Channels []string `json:"channels" validate:"required,min=1,unique"`
	Owner    string   `json:"owner"`

	// Password holds the encoded one-way hash of the join secret.
	// Empty means the room is open.
	Password string `json:"password,omitempty"`

	// Policy fields. Mute and Antispam are enforced on the relay path,
	// the others are stored for future policy enforcement.
	Mute        []string          `json:"mute,omitempty"`
	Rule        map[string]string `json:"rule,omitempty"`
	Slow        int               `json:"slow,omitempty"`
	Description string            `json:"description,omitempty"`
	Antispam    bool              `json:"antispam,omitempty"`
}

func (r Room) HasPassword() bool {
	return r.Password != ""
}

func (r Room) HasChannel(channelID string) bool {
	return lo.Contains(r.Channels, channelID)
}

// OtherChannels returns every member channel except the given one,
// preserving membership order. Used to target a broadcast at all
// members but the source.
func (r Room) OtherChannels(channelID string) []string {
	return lo.Filter(r.Channels, func(id string, _ int) bool {
		return id != channelID
	})
}

func (r Room) IsMuted(senderID string) bool {
	return lo.Contains(r.Mute, senderID)
}
