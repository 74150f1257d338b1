package gedcom

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate_Qualifiers(t *testing.T) {
	assert.Equal(t, "ABT 1850", NormalizeDate("abt. 1850"))
	assert.Equal(t, "ABT 1850", NormalizeDate("ABOUT 1850"))
	assert.Equal(t, "ABT 1850", NormalizeDate("circa 1850"))
	assert.Equal(t, "ABT 1850", NormalizeDate("approximately 1850"))
	assert.Equal(t, "EST 1850", NormalizeDate("estimated 1850"))
	assert.Equal(t, "BEF 1900", NormalizeDate("before 1900"))
	assert.Equal(t, "AFT 1900", NormalizeDate("after 1900"))
}

func TestNormalizeDate_FullDates(t *testing.T) {
	assert.Equal(t, "15 JAN 1980", NormalizeDate("15 january 1980"))
	assert.Equal(t, "15 JAN 1980", NormalizeDate("15 Jan 1980"))
	assert.Equal(t, "1 SEP 2001", NormalizeDate("1 Sept 2001"))
	assert.Equal(t, "3 MAR 1850", NormalizeDate("on 3 March 1850"))
}

func TestNormalizeDate_YearsAndRanges(t *testing.T) {
	assert.Equal(t, "1850", NormalizeDate("1850"))
	assert.Equal(t, "463-465", NormalizeDate("463-465"))
	assert.Equal(t, "1840-1845", NormalizeDate("1840 - 1845"))
	assert.Equal(t, "BET 1840 AND 1845", NormalizeDate("bet 1840 and 1845"))
	assert.Equal(t, "BET 1840 AND 1845", NormalizeDate("BET. 1840 AND 1845"))
}

func TestNormalizeDate_Unknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", NormalizeDate("unknown"))
	assert.Equal(t, "UNKNOWN", NormalizeDate("UNK"))
	assert.Equal(t, "UNKNOWN", NormalizeDate("?"))
}

func TestNormalizeDate_FallsBackUnchanged(t *testing.T) {
	// Out-of-bounds year: the value is returned verbatim rather than rejected.
	assert.Equal(t, "30000", NormalizeDate("30000"))
	assert.Equal(t, "1850-1840", NormalizeDate("1850-1840"))
	assert.Equal(t, "next Tuesday", NormalizeDate("next Tuesday"))
	assert.Equal(t, "", NormalizeDate(""))
}

func TestNormalizeDate_Idempotent(t *testing.T) {
	inputs := []string{"abt. 1850", "15 january 1980", "bet 1840 and 1845", "?", "garbage value"}
	for _, input := range inputs {
		once := NormalizeDate(input)
		assert.Equal(t, once, NormalizeDate(once), "input %q", input)
	}
}

func TestResolveDate(t *testing.T) {
	resolved, ok := ResolveDate("15 JAN 1980")
	require.True(t, ok)
	assert.Equal(t, time.Date(1980, time.January, 15, 0, 0, 0, 0, time.UTC), resolved)

	_, ok = ResolveDate("ABT 1850")
	assert.False(t, ok, "qualified year has no single calendar day")

	_, ok = ResolveDate("UNKNOWN")
	assert.False(t, ok)
}

func TestYearOf(t *testing.T) {
	assert.Equal(t, 1850, YearOf("ABT 1850"))
	assert.Equal(t, 1980, YearOf("15 JAN 1980"))
	assert.Equal(t, 1840, YearOf("BET 1840 AND 1845"))
	assert.Equal(t, 0, YearOf("UNKNOWN"))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "15 JAN 1980", FormatDate(time.Date(1980, time.January, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1 DEC 2001", FormatDate(time.Date(2001, time.December, 1, 0, 0, 0, 0, time.UTC)))
}
