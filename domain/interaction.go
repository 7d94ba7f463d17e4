package domain

// Interaction references one interactive request on the platform side
// (a slash command invocation or a component click). The relay never
// inspects it beyond routing responses back to the right context.
type Interaction struct {
	ID        string
	ChannelID string
	UserID    string
	Locale    string
}

// ConfirmStyle selects the visual weight of the accept button.
type ConfirmStyle int

const (
	ConfirmPrimary ConfirmStyle = iota
	ConfirmDestructive
)

// ConfirmPrompt describes a two-button confirmation control. AcceptID
// and RejectID carry the session nonce so a click can only resolve the
// session it was minted for.
type ConfirmPrompt struct {
	Title    string
	Body     string
	Style    ConfirmStyle
	AcceptID string
	RejectID string
}

// RoomSubmission is the short-lived create-room form content. The
// password travels in plaintext between acceptance and submission and
// is hashed before anything is persisted.
type RoomSubmission struct {
	Name        string
	Description string
	Password    string
}
