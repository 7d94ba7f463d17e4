// Package lang is the text lookup service injected into the relay
// handlers. Entries are keyed by "commandPath.key"; locales overlay
// the English fallback catalog.
package lang

import (
	"fmt"
	"sync"
)

const fallbackLocale = "en"

// Service is read from every handler goroutine while hosts may overlay
// locales at any time, so the catalogs are mutex-guarded.
type Service struct {
	mu       sync.RWMutex
	catalogs map[string]map[string]string
}

func NewService() *Service {
	return &Service{
		catalogs: map[string]map[string]string{
			fallbackLocale: english,
		},
	}
}

// Register adds or overlays a locale catalog. Missing entries fall
// back to English at lookup time, so partial catalogs are fine.
func (s *Service) Register(locale string, entries map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, ok := s.catalogs[locale]
	if !ok {
		cat = make(map[string]string, len(entries))
		s.catalogs[locale] = cat
	}
	for k, v := range entries {
		cat[k] = v
	}
}

// Text resolves and formats one entry. Unknown keys return the raw
// lookup key: an untranslated label in the UI beats a dropped
// response.
func (s *Service) Text(locale, commandPath, key string, args ...any) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lookup := commandPath + "." + key
	for _, loc := range []string{locale, fallbackLocale} {
		if tmpl, ok := s.catalogs[loc][lookup]; ok {
			if len(args) == 0 {
				return tmpl
			}
			return fmt.Sprintf(tmpl, args...)
		}
	}
	return lookup
}

var english = map[string]string{
	"common.brand": "Relay",

	"global.activate.already_member":       "This channel is already part of a room.",
	"global.activate.create_confirm_title": "Create room %q?",
	"global.activate.create_confirm_body":  "No room with id %q exists yet. Create it and connect this channel?",
	"global.activate.join_confirm_title":   "Join room %q?",
	"global.activate.join_confirm_body":    "This will connect the current channel to %q.",
	"global.activate.canceled":             "Canceled.",
	"global.activate.timed_out":            "Timed out. Run the command again when you are ready.",
	"global.activate.created":              "Room %q created. This channel is now connected.",
	"global.activate.joined":               "Connected to %q.",
	"global.activate.duplicate":            "A room with this id or name already exists.",
	"global.activate.password_failed":      "Password check failed.",
	"global.activate.degraded":             "Something went wrong, nothing was changed. Please try again.",

	"global.deactivate.not_member":          "This channel is not part of any room.",
	"global.deactivate.confirm_title":       "Leave room %q?",
	"global.deactivate.confirm_body":        "Messages will no longer be relayed between this channel and %q.",
	"global.deactivate.canceled":            "Canceled.",
	"global.deactivate.timed_out":           "Timed out. Run the command again when you are ready.",
	"global.deactivate.deactivated":         "Deactivated. This channel left %q.",
	"global.deactivate.deactivated_deleted": "Deactivated. The room was deleted with its last channel.",
	"global.deactivate.degraded":            "Something went wrong, nothing was changed. Please try again.",

	"global.announce.joined": "A channel joined %q. Connected channels: %d",
	"global.announce.left":   "A channel left %q. Connected channels: %d",
}
