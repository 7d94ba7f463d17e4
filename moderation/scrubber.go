// Package moderation scrubs configured spam words from relayed text.
// Applied on the fan-out path when a room's antispam policy is on.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Scrubber masks spam patterns with a replacement rune. Matching runs
// on a normalized view of the text (lowercased, leet speak folded,
// separators dropped) so trivial obfuscation does not bypass it, while
// masking is applied to the original runes to preserve spacing.
type Scrubber struct {
	matcher  *goahocorasick.Machine
	maskChar rune
}

// textMapping links each normalized rune back to its original index.
type textMapping struct {
	normalized []rune
	origIdx    []int
}

// NewScrubber builds the Aho-Corasick automaton over the normalized
// spam word list.
func NewScrubber(spamWords []string, maskChar rune) (Scrubber, error) {
	patterns := make([][]rune, len(spamWords))
	for i, word := range spamWords {
		patterns[i] = normalizeRunes([]rune(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return Scrubber{}, err
	}
	return Scrubber{matcher: m, maskChar: maskChar}, nil
}

// Scrub masks every spam match in the text and returns the masked text
// together with the normalized form of each matched word.
func (s *Scrubber) Scrub(original string) (string, []string) {
	mapping := normalize(original)
	if len(mapping.normalized) == 0 {
		return original, nil
	}

	spans := s.matcher.MultiPatternSearch(mapping.normalized, false)
	if len(spans) == 0 {
		return original, nil
	}

	origRunes := []rune(original)
	var found []string
	for _, span := range spans {
		normStart := span.Pos
		normEnd := normStart + len(span.Word)
		if normStart < 0 || normEnd > len(mapping.origIdx) {
			continue
		}
		found = append(found, string(span.Word))

		origStart := mapping.origIdx[normStart]
		origEnd := mapping.origIdx[normEnd-1] + 1
		for i := origStart; i < origEnd; i++ {
			origRunes[i] = s.maskChar
		}
	}
	return string(origRunes), found
}

func normalize(input string) textMapping {
	origRunes := []rune(input)
	norm := make([]rune, 0, len(origRunes))
	origIdx := make([]int, 0, len(origRunes))

	for i, r := range origRunes {
		clean := foldLeet(r)
		if isNoise(clean) {
			continue
		}
		norm = append(norm, unicode.ToLower(clean))
		origIdx = append(origIdx, i)
	}
	return textMapping{normalized: norm, origIdx: origIdx}
}

func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := foldLeet(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// foldLeet maps common leet speak characters back to their standard
// alphabet counterparts.
func foldLeet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

// isNoise identifies characters ignored during pattern matching.
func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
