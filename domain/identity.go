package domain

// labelBudget is the maximum rune length the platform accepts for an
// endpoint display name.
const labelBudget = 80

const ellipsis = '…'

// DisplayLabel builds the spoofed identity shown on relayed copies:
// the sender's name followed by the source channel's parent context,
// e.g. "alice (Gopher Guild)".
//
// When the combination exceeds the label budget the prefix is
// truncated and marked with an ellipsis; the suffix (the parent
// context, closing parenthesis included) is always preserved verbatim
// so readers can still tell where a message came from.
func DisplayLabel(senderName, parentName string) string {
	suffix := " (" + parentName + ")"
	prefix := senderName

	budget := labelBudget - len([]rune(suffix))
	if budget <= 1 {
		// Degenerate parent context, keep as much of it as fits.
		runes := []rune(suffix)
		return string(ellipsis) + string(runes[len(runes)-(labelBudget-1):])
	}

	runes := []rune(prefix)
	if len(runes) > budget {
		prefix = string(runes[:budget-1]) + string(ellipsis)
	}
	return prefix + suffix
}
