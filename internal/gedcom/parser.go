package gedcom

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedFile marks structural input errors (missing HEAD/TRLR). These
// are fatal before any import work starts; everything else the parser meets
// is tolerated with best-effort defaults.
var ErrMalformedFile = errors.New("malformed GEDCOM file")

// parserState is the explicit line-to-line state machine: which record is
// open and which named sub-structure (event context) deeper lines write into.
type parserState struct {
	record *Record
	// eventContext names the sub-structure level-2 lines target. Empty means
	// no context is active and level-2 lines are discarded.
	eventContext string
}

func (s *parserState) open(r *Record) {
	s.record = r
	s.eventContext = ""
}

func (s *parserState) close() {
	s.record = nil
	s.eventContext = ""
}

// Parser converts sanitized GEDCOM text into a RecordSet. It knows nothing
// about destination stores.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Level-1 tag routing per record kind. Tags absent from every table are
// no-ops, never errors.
var (
	fieldTags = map[RecordType]map[string]bool{
		RecordIndividual: {TagSex: true, TagOccupation: true},
		RecordSource:     {TagTitle: true, TagAuthor: true, TagPublication: true, TagRepository: true},
		RecordMedia:      {TagFile: true, TagFormat: true, TagTitle: true},
	}
	refTags = map[RecordType]map[string]bool{
		RecordIndividual: {TagFamilyChild: true, TagFamilySpouse: true},
		RecordFamily:     {TagHusband: true, TagWife: true, TagChild: true},
	}
)

// Parse validates structure, then walks the sanitized text line by line.
// Unknown record types and unknown (tag, level) combinations are ignored.
func (p *Parser) Parse(sanitized string) (*RecordSet, error) {
	if err := validateStructure(sanitized); err != nil {
		return nil, err
	}

	set := NewRecordSet()
	state := &parserState{}

	for _, rawLine := range strings.Split(sanitized, "\n") {
		line, ok := ParseLine(rawLine)
		if !ok {
			continue
		}
		set.Lines++

		switch {
		case line.Level == 0:
			p.handleRecordLine(set, state, line)
		case line.Level == 1:
			p.handleFieldLine(state, line)
		case line.Level == 2:
			p.handleDetailLine(state, line)
		}
		// Deeper levels carry sub-structures this importer does not map.
	}

	return set, nil
}

func validateStructure(sanitized string) error {
	sawHeader := false
	sawTrailer := false
	for _, rawLine := range strings.Split(sanitized, "\n") {
		line, ok := ParseLine(rawLine)
		if !ok || line.Level != 0 {
			continue
		}
		if !sawHeader {
			if line.Tag != TagHeader {
				return fmt.Errorf("%w: first record is %q, expected HEAD", ErrMalformedFile, line.Tag)
			}
			sawHeader = true
		}
		if line.Tag == TagTrailer {
			sawTrailer = true
		}
	}
	if !sawHeader {
		return fmt.Errorf("%w: missing HEAD record", ErrMalformedFile)
	}
	if !sawTrailer {
		return fmt.Errorf("%w: missing TRLR record", ErrMalformedFile)
	}
	return nil
}

func (p *Parser) handleRecordLine(set *RecordSet, state *parserState, line Line) {
	state.close()
	if line.Xref == "" {
		return
	}

	var bucket map[string]*Record
	switch RecordType(line.Tag) {
	case RecordIndividual:
		bucket = set.Individuals
	case RecordFamily:
		bucket = set.Families
	case RecordSource:
		bucket = set.Sources
	case RecordNote:
		bucket = set.Notes
	case RecordMedia:
		bucket = set.Media
	default:
		return
	}

	record := NewRecord(RecordType(line.Tag), line.Xref)
	if record.Type == RecordNote && line.Value != "" {
		record.Fields["TEXT"] = line.Value
	}
	bucket[line.Xref] = record
	set.Records++
	state.open(record)
}

func (p *Parser) handleFieldLine(state *parserState, line Line) {
	record := state.record
	if record == nil {
		return
	}
	// Any level-1 tag replaces the active event context.
	state.eventContext = ""

	switch {
	case line.Tag == TagName && record.Type == RecordIndividual:
		record.Fields[TagName] = line.Value
		given, surname := SplitName(line.Value)
		record.Fields[TagGivenName] = given
		record.Fields[TagSurname] = surname
		// Level-2 GIVN/SURN pieces refine the heuristic split.
		state.eventContext = TagName

	case record.Events[line.Tag] != nil:
		state.eventContext = line.Tag

	case refTags[record.Type][line.Tag]:
		record.Refs[line.Tag] = append(record.Refs[line.Tag], strings.Trim(line.Value, "@"))

	case fieldTags[record.Type][line.Tag]:
		record.Fields[line.Tag] = line.Value

	case record.Type == RecordNote && (line.Tag == TagContinued || line.Tag == TagConcat):
		sep := ""
		if line.Tag == TagContinued {
			sep = "\n"
		}
		record.Fields["TEXT"] += sep + line.Value
	}
}

func (p *Parser) handleDetailLine(state *parserState, line Line) {
	record := state.record
	if record == nil || state.eventContext == "" {
		// Orphaned sub-tag: malformed input tolerance, not an error.
		return
	}

	if state.eventContext == TagName {
		switch line.Tag {
		case TagGivenName:
			record.Fields[TagGivenName] = line.Value
		case TagSurname:
			record.Fields[TagSurname] = line.Value
		}
		return
	}

	event := record.Events[state.eventContext]
	if event == nil {
		return
	}
	switch line.Tag {
	case TagDate:
		event.Date = line.Value
	case TagPlace:
		event.Place = line.Value
	case TagCause:
		event.Cause = line.Value
	}
}

// SplitName decomposes a GEDCOM name value. A value containing a /surname/
// delimiter splits into given + surname; otherwise the whole value is the
// given name. This is a heuristic: malformed names never raise errors, only
// a best-effort split.
func SplitName(value string) (given, surname string) {
	start := strings.Index(value, "/")
	if start < 0 {
		return strings.TrimSpace(value), ""
	}
	end := strings.Index(value[start+1:], "/")
	if end < 0 {
		return strings.TrimSpace(value), ""
	}
	given = strings.TrimSpace(value[:start])
	surname = strings.TrimSpace(value[start+1 : start+1+end])
	return given, surname
}
