package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisplayLabel_ShortNamesUntouched(t *testing.T) {
	req := require.New(t)
	req.Equal("alice (Gopher Guild)", DisplayLabel("alice", "Gopher Guild"))
}

func TestDisplayLabel_LongSenderTruncatedSuffixKept(t *testing.T) {
	req := require.New(t)
	sender := strings.Repeat("a", 200)
	parent := "Gopher Guild"

	label := DisplayLabel(sender, parent)

	req.LessOrEqual(len([]rune(label)), 80)
	req.True(strings.HasSuffix(label, " ("+parent+")"))
	req.Contains(label, "…")
}

func TestDisplayLabel_ExactBudgetNotTruncated(t *testing.T) {
	req := require.New(t)
	parent := "G"
	// " (G)" is 4 runes, leaving 76 for the sender.
	sender := strings.Repeat("x", 76)

	label := DisplayLabel(sender, parent)

	req.Equal(sender+" (G)", label)
	req.Len([]rune(label), 80)
	req.NotContains(label, "…")
}

func TestDisplayLabel_MultibyteSenderCountedInRunes(t *testing.T) {
	req := require.New(t)
	sender := strings.Repeat("é", 100)
	label := DisplayLabel(sender, "Guild")

	req.LessOrEqual(len([]rune(label)), 80)
	req.True(strings.HasSuffix(label, " (Guild)"))
}

func TestDisplayLabel_DegenerateParentKeepsTail(t *testing.T) {
	req := require.New(t)
	parent := strings.Repeat("p", 120)

	label := DisplayLabel("alice", parent)

	req.Len([]rune(label), 80)
	req.True(strings.HasPrefix(label, "…"))
	req.True(strings.HasSuffix(label, ")"))
}
