package mimetypes

import (
	"mime"
	"strings"
)

// Family is the coarse content-type family used to label relayed
// attachments.
type Family string

const (
	Image   Family = "image"
	Video   Family = "video"
	Audio   Family = "audio"
	Text    Family = "text"
	Archive Family = "archive"
	Other   Family = "file"
)

var archiveTypes = map[string]struct{}{
	"application/zip":              {},
	"application/gzip":             {},
	"application/x-tar":            {},
	"application/x-7z-compressed":  {},
	"application/x-rar-compressed": {},
}

// Classify maps a declared content type onto its family. Unparseable
// or missing types fall back to Other rather than failing: attachment
// labeling is cosmetic and must never block a relay.
func Classify(contentType string) Family {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return Other
	}
	if _, ok := archiveTypes[mt]; ok {
		return Archive
	}
	switch {
	case strings.HasPrefix(mt, "image/"):
		return Image
	case strings.HasPrefix(mt, "video/"):
		return Video
	case strings.HasPrefix(mt, "audio/"):
		return Audio
	case strings.HasPrefix(mt, "text/"):
		return Text
	default:
		return Other
	}
}

// Color returns the accent color of the reference card for a family.
func (f Family) Color() int {
	switch f {
	case Image:
		return 0x3BA55D
	case Video:
		return 0x5865F2
	case Audio:
		return 0xEB459E
	case Text:
		return 0xFEE75C
	case Archive:
		return 0xE67E22
	default:
		return 0x99AAB5
	}
}

// Label returns the human label shown on the reference card.
func (f Family) Label() string {
	switch f {
	case Image:
		return "Image"
	case Video:
		return "Video"
	case Audio:
		return "Audio"
	case Text:
		return "Text"
	case Archive:
		return "Archive"
	default:
		return "File"
	}
}
