// Package gedcom parses and renders the GEDCOM genealogical exchange format.
//
// The flow for imports is:
//
//	raw text → Sanitize → Parser.Parse → RecordSet
//
// Sanitize strips vendor extension tags (underscore-prefixed, together with
// their nested subtrees) and canonicalizes DATE values. The parser is an
// explicit state machine over the sanitized lines: a level-0 line with an
// xref opens a record, level-1 tags either set fields or switch the active
// event context, and level-2 tags write into whichever sub-structure that
// context names. Input that fits no rule is ignored, never fatal; only a
// missing HEAD or TRLR record rejects the file outright.
//
// Dates stay annotated text throughout ("ABT 1850" has no calendar day).
// ResolveDate and YearOf derive the best-effort calendar date and bare year
// the relational store keeps alongside the raw value.
package gedcom
