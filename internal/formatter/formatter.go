// package formatter cleans raw lyrics text, guesses title/artist pairs, and renders songs to export formats (CSV, Markdown, plain text)
package formatter

import (
	"regexp"
	"strings"
)

// Format trims every line, collapses runs of blank lines into a single separator, and drops leading and trailing blank lines.
//
// All-whitespace input yields "". Format is idempotent.
func Format(raw string) string {
	lines := cleanLines(raw)
	return strings.Join(lines, "\n")
}

// Options enables the opt-in layout passes applied by [FormatWith] on top of [Format].
type Options struct {
	IndentChorus  bool // indent lines repeated more than twice
	SpaceSections bool // surround "[Section]" header lines with blank lines
}

const chorusIndent = "    "

var sectionHeader = regexp.MustCompile(`^\[[^\]]+\]$`)

// FormatWith runs [Format] and then the layout passes selected by opts.
func FormatWith(raw string, opts Options) string {
	lines := cleanLines(raw)
	if len(lines) == 0 {
		return ""
	}

	if opts.IndentChorus {
		counts := make(map[string]int)
		for _, line := range lines {
			if line != "" {
				counts[strings.ToLower(line)]++
			}
		}
		for i, line := range lines {
			if line != "" && counts[strings.ToLower(line)] > 2 {
				lines[i] = chorusIndent + line
			}
		}
	}

	if opts.SpaceSections {
		spaced := make([]string, 0, len(lines))
		for i, line := range lines {
			header := sectionHeader.MatchString(strings.TrimSpace(line))
			if header && len(spaced) > 0 && spaced[len(spaced)-1] != "" {
				spaced = append(spaced, "")
			}
			spaced = append(spaced, line)
			if header && i < len(lines)-1 && lines[i+1] != "" {
				spaced = append(spaced, "")
			}
		}
		lines = spaced
	}

	return strings.Join(lines, "\n")
}

// cleanLines splits raw into trimmed lines with single blank separators and no blank edges.
func cleanLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var out []string
	blank := false
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			blank = len(out) > 0
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, line)
	}
	return out
}

// FirstLine returns the first non-empty trimmed line of raw.
func FirstLine(raw string) string {
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
