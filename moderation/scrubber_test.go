package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScrub_MasksAndReports(t *testing.T) {
	req := require.New(t)
	s, err := NewScrubber([]string{"spam", "free nitro"}, '*')
	req.NoError(err)

	out, found := s.Scrub("get your FREE NITRO here")
	req.Equal("get your ********** here", out)
	req.Equal([]string{"freenitro"}, found)
}

func TestScrub_FoldsLeetSpeak(t *testing.T) {
	req := require.New(t)
	s, err := NewScrubber([]string{"spam"}, '#')
	req.NoError(err)

	out, found := s.Scrub("this is 5p4m for sure")
	req.Equal("this is #### for sure", out)
	req.Len(found, 1)
}

func TestScrub_IgnoresSeparatorObfuscation(t *testing.T) {
	req := require.New(t)
	s, err := NewScrubber([]string{"spam"}, '*')
	req.NoError(err)

	out, found := s.Scrub("s p.a-m")
	req.Len(found, 1)
	req.NotContains(out, "s p.a-m")
}

func TestScrub_CleanTextUntouched(t *testing.T) {
	req := require.New(t)
	s, err := NewScrubber([]string{"spam"}, '*')
	req.NoError(err)

	in := "a perfectly ordinary message"
	out, found := s.Scrub(in)
	req.Equal(in, out)
	req.Empty(found)
}
