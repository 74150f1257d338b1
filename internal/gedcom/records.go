package gedcom

// RecordType identifies the kind of a top-level GEDCOM record.
type RecordType string

const (
	RecordIndividual RecordType = "INDI"
	RecordFamily     RecordType = "FAM"
	RecordSource     RecordType = "SOUR"
	RecordNote       RecordType = "NOTE"
	RecordMedia      RecordType = "OBJE"
)

// Tags shared between the parser and the exporter.
const (
	TagHeader    = "HEAD"
	TagTrailer   = "TRLR"
	TagSubmitter = "SUBM"

	TagName       = "NAME"
	TagGivenName  = "GIVN"
	TagSurname    = "SURN"
	TagSex        = "SEX"
	TagOccupation = "OCCU"

	TagBirth    = "BIRT"
	TagDeath    = "DEAT"
	TagBurial   = "BURI"
	TagMarriage = "MARR"
	TagDivorce  = "DIV"

	TagDate  = "DATE"
	TagPlace = "PLAC"
	TagCause = "CAUS"

	TagHusband     = "HUSB"
	TagWife        = "WIFE"
	TagChild       = "CHIL"
	TagFamilyChild = "FAMC"
	TagFamilySpouse = "FAMS"

	TagTitle       = "TITL"
	TagAuthor      = "AUTH"
	TagPublication = "PUBL"
	TagRepository  = "REPO"

	TagFile      = "FILE"
	TagFormat    = "FORM"
	TagContinued = "CONT"
	TagConcat    = "CONC"
)

// EventDetail is one dated sub-structure of a record (birth, marriage, ...).
// Fields stay empty strings when the source never provided them.
type EventDetail struct {
	Date  string
	Place string
	Cause string
}

// Record is the parser's unit of output: one top-level GEDCOM block.
//
// Events is pre-initialized with every event the record kind can carry, so
// importers can index it without nil checks. Refs holds xref-valued tags
// (HUSB, WIFE, CHIL, FAMC, FAMS) in source order.
type Record struct {
	Type   RecordType
	Xref   string
	Fields map[string]string
	Events map[string]*EventDetail
	Refs   map[string][]string
}

var eventTagsByType = map[RecordType][]string{
	RecordIndividual: {TagBirth, TagDeath, TagBurial},
	RecordFamily:     {TagMarriage, TagDivorce},
}

// NewRecord returns a Record with empty sub-structures for every field the
// given kind can hold.
func NewRecord(t RecordType, xref string) *Record {
	r := &Record{
		Type:   t,
		Xref:   xref,
		Fields: make(map[string]string),
		Events: make(map[string]*EventDetail),
		Refs:   make(map[string][]string),
	}
	for _, tag := range eventTagsByType[t] {
		r.Events[tag] = &EventDetail{}
	}
	return r
}

// Event returns the named event detail, or an empty detail for unknown names
// so callers never branch on presence.
func (r *Record) Event(tag string) *EventDetail {
	if e, ok := r.Events[tag]; ok {
		return e
	}
	return &EventDetail{}
}

// RecordSet groups all parsed records by kind, keyed by xref.
type RecordSet struct {
	Individuals map[string]*Record
	Families    map[string]*Record
	Sources     map[string]*Record
	Notes       map[string]*Record
	Media       map[string]*Record

	// Parse counters surfaced to the performance sink.
	Lines   int
	Records int
}

func NewRecordSet() *RecordSet {
	return &RecordSet{
		Individuals: make(map[string]*Record),
		Families:    make(map[string]*Record),
		Sources:     make(map[string]*Record),
		Notes:       make(map[string]*Record),
		Media:       make(map[string]*Record),
	}
}

// TotalRecords returns the number of records across all kinds.
func (s *RecordSet) TotalRecords() int {
	return len(s.Individuals) + len(s.Families) + len(s.Sources) + len(s.Notes) + len(s.Media)
}
