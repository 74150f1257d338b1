package gedcom

import (
	"strconv"
	"strings"
)

// Line is one decoded GEDCOM line: "{level} {optional @xref@} {tag} {value}".
type Line struct {
	Level int
	Xref  string
	Tag   string
	Value string
}

// ParseLine decodes a single GEDCOM line. It returns false for blank lines
// and lines without a numeric level; such lines are skipped by both the
// sanitizer and the parser.
func ParseLine(raw string) (Line, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Line{}, false
	}

	parts := strings.SplitN(s, " ", 3)
	level, err := strconv.Atoi(parts[0])
	if err != nil || level < 0 || len(parts) < 2 {
		return Line{}, false
	}

	line := Line{Level: level}
	rest := parts[1]
	if strings.HasPrefix(rest, "@") && strings.HasSuffix(rest, "@") && len(rest) > 2 {
		line.Xref = strings.Trim(rest, "@")
		if len(parts) < 3 {
			return Line{}, false
		}
		tagAndValue := strings.SplitN(parts[2], " ", 2)
		line.Tag = strings.ToUpper(tagAndValue[0])
		if len(tagAndValue) == 2 {
			line.Value = tagAndValue[1]
		}
		return line, true
	}

	line.Tag = strings.ToUpper(rest)
	if len(parts) == 3 {
		line.Value = parts[2]
	}
	return line, true
}

// IsExtension reports whether a tag is a vendor extension (leading underscore).
func IsExtension(tag string) bool {
	return strings.HasPrefix(tag, "_")
}
