package relay

import (
	"regexp"
	"strings"
)

// maxRelayLines caps how many lines of a message are relayed.
const maxRelayLines = 10

const truncationMarker = " …"

// inviteLinkRe matches invite links in all their spellings: optional
// scheme, optional www, short and long domain variants.
var inviteLinkRe = regexp.MustCompile(
	`(?i)(?:https?://)?(?:www\.)?(?:discord\.(?:gg|io|me|li)|discord(?:app)?\.com/invite)/[a-z0-9-]+`)

// FilterContent prepares a message body for fan-out: it keeps the
// first ten lines (marking the cut), then scrubs every invite link.
// Truncation happens before scrubbing so a match spanning the cut
// cannot leak a partial invite. Pure, no side effects.
func FilterContent(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > maxRelayLines {
		lines = lines[:maxRelayLines]
		lines[maxRelayLines-1] += truncationMarker
	}
	return inviteLinkRe.ReplaceAllString(strings.Join(lines, "\n"), "")
}
