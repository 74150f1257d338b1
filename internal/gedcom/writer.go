package gedcom

import (
	"fmt"
	"strings"
)

// Writer renders GEDCOM lines with the same tag vocabulary the parser reads.
// It shares no other state with the parser.
type Writer struct {
	b strings.Builder
}

func NewWriter() *Writer {
	return &Writer{}
}

// Line emits "{level} {tag} {value}".
func (w *Writer) Line(level int, tag, value string) {
	if value == "" {
		fmt.Fprintf(&w.b, "%d %s\n", level, tag)
		return
	}
	fmt.Fprintf(&w.b, "%d %s %s\n", level, tag, value)
}

// RecordLine emits a level-0 line carrying an xref: "0 @xref@ {tag}".
func (w *Writer) RecordLine(xref string, tag string) {
	fmt.Fprintf(&w.b, "0 @%s@ %s\n", xref, tag)
}

// NoteRecord emits a note with its first line inline and the remaining
// lines as CONT continuations, the inverse of how the parser reassembles
// note text.
func (w *Writer) NoteRecord(xref, text string) {
	lines := strings.Split(text, "\n")
	if lines[0] == "" {
		w.RecordLine(xref, string(RecordNote))
	} else {
		fmt.Fprintf(&w.b, "0 @%s@ %s %s\n", xref, string(RecordNote), lines[0])
	}
	for _, line := range lines[1:] {
		w.Line(1, TagContinued, line)
	}
}

func (w *Writer) String() string {
	return w.b.String()
}

// JoinName re-assembles a GEDCOM name value from its parts.
func JoinName(given, surname string) string {
	if surname == "" {
		return given
	}
	if given == "" {
		return "/" + surname + "/"
	}
	return given + " /" + surname + "/"
}
