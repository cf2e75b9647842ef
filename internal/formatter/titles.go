package formatter

import (
	"regexp"
	"strings"
	"unicode"
)

// Separator identifies which first-line pattern produced a [Match].
type Separator int

const (
	SeparatorDash Separator = iota
	SeparatorBy
	SeparatorPipe
	SeparatorBracket
)

func (s Separator) String() string {
	switch s {
	case SeparatorDash:
		return "dash"
	case SeparatorBy:
		return "by"
	case SeparatorPipe:
		return "pipe"
	case SeparatorBracket:
		return "bracket"
	default:
		return ""
	}
}

// Match holds the two groups captured from a first line.
type Match struct {
	Separator Separator
	First     string
	Second    string
}

// TitleRule decides which captured group is the title. ok is false when the rule has no opinion.
type TitleRule struct {
	Name   string
	Decide func(m Match) (title, artist string, ok bool)
}

type titlePattern struct {
	sep Separator
	re  *regexp.Regexp
}

// Patterns are tried in order. The spaced dash comes first so hyphenated names ("Jay-Z - Song") split on the real separator.
var titlePatterns = []titlePattern{
	{SeparatorDash, regexp.MustCompile(`^(.+?)\s+[-–—]\s+(.+)$`)},
	{SeparatorDash, regexp.MustCompile(`^(.+?)\s*-\s*(.+)$`)},
	{SeparatorBy, regexp.MustCompile(`(?i)^(.+?)\s+by\s+(.+)$`)},
	{SeparatorPipe, regexp.MustCompile(`^(.+?)\s*\|\s*(.+)$`)},
	{SeparatorBracket, regexp.MustCompile(`^\[(.+?)\]\s*(.+)$`)},
}

var featuringMarker = regexp.MustCompile(`(?i)\bf(ea)?t\.|\bfeat(uring)?\b|\band\b|&`)

var fillerWords = map[string]struct{}{
	"love": {}, "you": {}, "me": {}, "my": {}, "the": {}, "a": {},
	"an": {}, "is": {}, "are": {}, "was": {}, "were": {},
}

// TitleRules is the ordered chain consulted by [ParseTitleArtist]. The first rule with an opinion wins; the last rule always decides.
var TitleRules = []TitleRule{
	{
		Name: "by-separator",
		Decide: func(m Match) (string, string, bool) {
			if m.Separator != SeparatorBy {
				return "", "", false
			}
			return m.First, m.Second, true
		},
	},
	{
		Name: "featuring-first",
		Decide: func(m Match) (string, string, bool) {
			if !HasFeaturingMarker(m.First) {
				return "", "", false
			}
			return m.Second, m.First, true
		},
	},
	{
		Name: "featuring-second",
		Decide: func(m Match) (string, string, bool) {
			if !HasFeaturingMarker(m.Second) {
				return "", "", false
			}
			return m.First, m.Second, true
		},
	},
	{
		Name: "filler-words",
		Decide: func(m Match) (string, string, bool) {
			first, second := hasFillerWord(m.First), hasFillerWord(m.Second)
			switch {
			case first && !second:
				return m.First, m.Second, true
			case second && !first:
				return m.Second, m.First, true
			default:
				return "", "", false
			}
		},
	},
	{
		Name: "artist-title-default",
		Decide: func(m Match) (string, string, bool) {
			return m.Second, m.First, true
		},
	},
}

// ParseTitleArtist guesses (title, artist) from the first non-empty line of raw.
//
// The result is a suggestion. Without a recognised separator the whole line is the title and artist is "".
func ParseTitleArtist(raw string) (title, artist string) {
	line := FirstLine(raw)
	if line == "" {
		return "", ""
	}

	m, ok := MatchFirstLine(line)
	if !ok {
		return line, ""
	}

	for _, rule := range TitleRules {
		if title, artist, ok := rule.Decide(m); ok {
			return title, artist
		}
	}
	return line, ""
}

// MatchFirstLine applies the separator patterns in order to a single line.
func MatchFirstLine(line string) (Match, bool) {
	line = strings.TrimSpace(line)
	for _, p := range titlePatterns {
		groups := p.re.FindStringSubmatch(line)
		if groups == nil {
			continue
		}
		first, second := strings.TrimSpace(groups[1]), strings.TrimSpace(groups[2])
		if first == "" || second == "" {
			continue
		}
		return Match{Separator: p.sep, First: first, Second: second}, true
	}
	return Match{}, false
}

// HasFeaturingMarker reports whether s names a featured artist or a duo ("feat", "ft.", "featuring", "&", "and").
func HasFeaturingMarker(s string) bool {
	return featuringMarker.MatchString(s)
}

func hasFillerWord(s string) bool {
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.TrimFunc(word, func(r rune) bool { return !unicode.IsLetter(r) })
		if _, ok := fillerWords[word]; ok {
			return true
		}
	}
	return false
}
