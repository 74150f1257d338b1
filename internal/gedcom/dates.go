package gedcom

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Genealogical dates are kept as annotated text because they are frequently
// partial or uncertain ("ABT 1850", "BET 1840 AND 1845"). NormalizeDate
// canonicalizes the text; ResolveDate extracts a calendar date only when the
// text actually denotes one.

var monthAbbreviations = map[string]string{
	"JAN": "JAN", "JANUARY": "JAN",
	"FEB": "FEB", "FEBRUARY": "FEB",
	"MAR": "MAR", "MARCH": "MAR",
	"APR": "APR", "APRIL": "APR",
	"MAY": "MAY",
	"JUN": "JUN", "JUNE": "JUN",
	"JUL": "JUL", "JULY": "JUL",
	"AUG": "AUG", "AUGUST": "AUG",
	"SEP": "SEP", "SEPT": "SEP", "SEPTEMBER": "SEP",
	"OCT": "OCT", "OCTOBER": "OCT",
	"NOV": "NOV", "NOVEMBER": "NOV",
	"DEC": "DEC", "DECEMBER": "DEC",
}

var monthNumbers = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// Qualifier prefixes in the order they are tried; punctuation and case are
// ignored on input, the canonical 3-letter form is emitted.
var dateQualifiers = []struct {
	pattern   *regexp.Regexp
	canonical string
}{
	{regexp.MustCompile(`(?i)^(?:abt|about|circa|ca|approx|approximately)\.?\s+`), "ABT"},
	{regexp.MustCompile(`(?i)^(?:est|estimated)\.?\s+`), "EST"},
	{regexp.MustCompile(`(?i)^(?:bef|before)\.?\s+`), "BEF"},
	{regexp.MustCompile(`(?i)^(?:aft|after)\.?\s+`), "AFT"},
}

var (
	yearOnlyPattern  = regexp.MustCompile(`^(\d{1,4})$`)
	yearRangePattern = regexp.MustCompile(`^(\d{1,4})\s*-\s*(\d{1,4})$`)
	betweenPattern   = regexp.MustCompile(`(?i)^bet\.?\s+(\d{1,4})\s+and\s+(\d{1,4})$`)
	fullDatePattern  = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]+)\.?\s+(\d{1,4})$`)
	anyYearPattern   = regexp.MustCompile(`\b(\d{3,4})\b`)
	leadingOnPattern = regexp.MustCompile(`(?i)^on\s+`)
)

// NormalizeDate rewrites a raw date value into its canonical GEDCOM form.
// Values matching no rule are returned unchanged; this is best-effort
// cleaning, never validation.
func NormalizeDate(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return raw
	}

	value = leadingOnPattern.ReplaceAllString(value, "")

	qualifier := ""
	for _, q := range dateQualifiers {
		if loc := q.pattern.FindStringIndex(value); loc != nil {
			qualifier = q.canonical
			value = value[loc[1]:]
			break
		}
	}

	normalized, ok := normalizeDateBody(value)
	if !ok {
		return raw
	}
	if qualifier != "" {
		return qualifier + " " + normalized
	}
	return normalized
}

func normalizeDateBody(value string) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(value))
	if upper == "UNKNOWN" || upper == "UNK" || upper == "?" {
		return "UNKNOWN", true
	}

	if m := yearOnlyPattern.FindStringSubmatch(value); m != nil {
		year, _ := strconv.Atoi(m[1])
		if !plausibleYear(year) {
			return "", false
		}
		return strconv.Itoa(year), true
	}

	if m := yearRangePattern.FindStringSubmatch(value); m != nil {
		start, _ := strconv.Atoi(m[1])
		end, _ := strconv.Atoi(m[2])
		if !plausibleYear(start) || !plausibleYear(end) || start > end {
			return "", false
		}
		return fmt.Sprintf("%d-%d", start, end), true
	}

	if m := betweenPattern.FindStringSubmatch(value); m != nil {
		start, _ := strconv.Atoi(m[1])
		end, _ := strconv.Atoi(m[2])
		if !plausibleYear(start) || !plausibleYear(end) || start > end {
			return "", false
		}
		return fmt.Sprintf("BET %d AND %d", start, end), true
	}

	if m := fullDatePattern.FindStringSubmatch(value); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := monthAbbreviations[strings.ToUpper(m[2])]
		year, _ := strconv.Atoi(m[3])
		if !ok || day < 1 || day > 31 || !plausibleYear(year) {
			return "", false
		}
		return fmt.Sprintf("%d %s %d", day, month, year), true
	}

	return "", false
}

func plausibleYear(year int) bool {
	return year >= 1 && year <= time.Now().Year()+10
}

// ResolveDate extracts a calendar date from normalized date text. It succeeds
// only for full "D MON YYYY" values; qualified or partial dates ("ABT 1850")
// have no single calendar day and resolve to false.
func ResolveDate(text string) (time.Time, bool) {
	value := strings.TrimSpace(text)
	for _, q := range dateQualifiers {
		if loc := q.pattern.FindStringIndex(value); loc != nil {
			value = value[loc[1]:]
			break
		}
	}

	m := fullDatePattern.FindStringSubmatch(value)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, ok := monthNumbers[monthAbbreviations[strings.ToUpper(m[2])]]
	if !ok {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(m[3])
	if day < 1 || day > 31 || !plausibleYear(year) {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

// YearOf extracts the bare year from date text, or 0 when none is present.
func YearOf(text string) int {
	m := anyYearPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	year, _ := strconv.Atoi(m[1])
	if !plausibleYear(year) {
		return 0
	}
	return year
}

// FormatDate renders a calendar date in GEDCOM "D MON YYYY" form.
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), strings.ToUpper(t.Month().String()[:3]), t.Year())
}
