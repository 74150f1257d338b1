package gedcom

import (
	"strconv"
	"strings"
)

// Sanitize strips vendor extension tags (and their nested subtrees) and
// canonicalizes DATE values. It is a pure transform over the raw text and is
// idempotent: a second pass finds nothing left to strip or rewrite.
func Sanitize(raw string) string {
	clean, _ := SanitizeWithReport(raw)
	return clean
}

// SanitizeWithReport is Sanitize plus a count of dropped lines per extension
// tag, for callers that want to log what was removed.
func SanitizeWithReport(raw string) (string, map[string]int) {
	s := NewSanitizer()
	for _, line := range strings.Split(NormalizeNewlines(raw), "\n") {
		s.WriteLine(line)
	}
	return s.Result(), s.Dropped()
}

// NormalizeNewlines folds \r\n and bare \r into \n.
func NormalizeNewlines(raw string) string {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	return strings.ReplaceAll(normalized, "\r", "\n")
}

// Sanitizer sanitizes line by line so large files can be driven in chunks
// with memory checks between them. Extension-subtree skipping carries state
// across lines: skipUntilLevel holds the level of the extension tag being
// skipped, and every deeper line belongs to its subtree.
type Sanitizer struct {
	skipUntilLevel int
	skipTag        string
	dropped        map[string]int
	out            strings.Builder
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		skipUntilLevel: -1,
		dropped:        make(map[string]int),
	}
}

// WriteLine consumes one raw line (without its line terminator).
func (s *Sanitizer) WriteLine(rawLine string) {
	line, ok := ParseLine(rawLine)
	if !ok {
		if strings.TrimSpace(rawLine) != "" {
			s.out.WriteString(rawLine)
			s.out.WriteByte('\n')
		}
		return
	}

	if s.skipUntilLevel >= 0 {
		if line.Level > s.skipUntilLevel {
			s.dropped[s.skipTag]++
			return
		}
		s.skipUntilLevel = -1
		s.skipTag = ""
	}

	if IsExtension(line.Tag) {
		s.skipUntilLevel = line.Level
		s.skipTag = line.Tag
		s.dropped[line.Tag]++
		return
	}

	if line.Tag == TagDate && line.Value != "" {
		line.Value = NormalizeDate(line.Value)
		s.out.WriteString(formatLine(line))
		s.out.WriteByte('\n')
		return
	}

	s.out.WriteString(strings.TrimRight(rawLine, " \t"))
	s.out.WriteByte('\n')
}

// Result returns the sanitized text accumulated so far.
func (s *Sanitizer) Result() string {
	return strings.TrimRight(s.out.String(), "\n") + "\n"
}

// Dropped returns dropped-line counts keyed by extension tag.
func (s *Sanitizer) Dropped() map[string]int {
	return s.dropped
}

func formatLine(line Line) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(line.Level))
	b.WriteByte(' ')
	if line.Xref != "" {
		b.WriteString("@" + line.Xref + "@ ")
	}
	b.WriteString(line.Tag)
	if line.Value != "" {
		b.WriteByte(' ')
		b.WriteString(line.Value)
	}
	return b.String()
}
