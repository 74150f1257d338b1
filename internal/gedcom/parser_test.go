package gedcom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGedcom = `0 HEAD
1 SOUR heritage
0 @I1@ INDI
1 NAME John /Smith/
1 SEX M
1 BIRT
2 DATE 15 JAN 1900
2 PLAC Boston, Massachusetts
1 DEAT
2 DATE 2 FEB 1980
2 CAUS Influenza
1 FAMS @F1@
0 @I2@ INDI
1 NAME Mary /Jones/
1 SEX F
1 FAMS @F1@
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I2@
1 MARR
2 DATE 10 JUN 1925
2 PLAC New York
0 @S1@ SOUR
1 TITL Parish register
1 AUTH Rev. Brown
0 @N1@ NOTE Emigrated from Ireland
1 CONT in 1890.
0 TRLR
`

func TestParser_Parse(t *testing.T) {
	set, err := NewParser().Parse(sampleGedcom)
	require.NoError(t, err)

	require.Len(t, set.Individuals, 2)
	require.Len(t, set.Families, 1)
	require.Len(t, set.Sources, 1)
	require.Len(t, set.Notes, 1)
	assert.Equal(t, 5, set.TotalRecords())

	john := set.Individuals["I1"]
	require.NotNil(t, john)
	assert.Equal(t, "John", john.Fields[TagGivenName])
	assert.Equal(t, "Smith", john.Fields[TagSurname])
	assert.Equal(t, "M", john.Fields[TagSex])
	assert.Equal(t, "15 JAN 1900", john.Event(TagBirth).Date)
	assert.Equal(t, "Boston, Massachusetts", john.Event(TagBirth).Place)
	assert.Equal(t, "Influenza", john.Event(TagDeath).Cause)
	assert.Equal(t, []string{"F1"}, john.Refs[TagFamilySpouse])

	family := set.Families["F1"]
	require.NotNil(t, family)
	assert.Equal(t, []string{"I1"}, family.Refs[TagHusband])
	assert.Equal(t, []string{"I2"}, family.Refs[TagWife])
	assert.Equal(t, "10 JUN 1925", family.Event(TagMarriage).Date)
	assert.Equal(t, "New York", family.Event(TagMarriage).Place)

	source := set.Sources["S1"]
	require.NotNil(t, source)
	assert.Equal(t, "Parish register", source.Fields[TagTitle])

	note := set.Notes["N1"]
	require.NotNil(t, note)
	assert.Equal(t, "Emigrated from Ireland\nin 1890.", note.Fields["TEXT"])
}

func TestParser_EventContextSwitches(t *testing.T) {
	input := `0 HEAD
0 @I1@ INDI
1 BIRT
2 DATE 1900
1 DEAT
2 DATE 1980
0 TRLR
`
	set, err := NewParser().Parse(input)
	require.NoError(t, err)

	indi := set.Individuals["I1"]
	assert.Equal(t, "1900", indi.Event(TagBirth).Date)
	assert.Equal(t, "1980", indi.Event(TagDeath).Date)
}

func TestParser_OrphanedSubTagDiscarded(t *testing.T) {
	// A level-2 DATE with no active event context must be dropped silently.
	input := `0 HEAD
0 @I1@ INDI
1 SEX M
2 DATE 1900
0 TRLR
`
	set, err := NewParser().Parse(input)
	require.NoError(t, err)

	indi := set.Individuals["I1"]
	assert.Empty(t, indi.Event(TagBirth).Date)
	assert.Empty(t, indi.Event(TagDeath).Date)
}

func TestParser_ContextClearedByNewRecord(t *testing.T) {
	input := `0 HEAD
0 @I1@ INDI
1 BIRT
0 @I2@ INDI
2 DATE 1900
0 TRLR
`
	set, err := NewParser().Parse(input)
	require.NoError(t, err)

	assert.Empty(t, set.Individuals["I1"].Event(TagBirth).Date)
	assert.Empty(t, set.Individuals["I2"].Event(TagBirth).Date)
}

func TestParser_UnknownRecordTypeIgnored(t *testing.T) {
	input := `0 HEAD
0 @R1@ REPO
1 NAME County archive
0 @I1@ INDI
1 SEX F
0 TRLR
`
	set, err := NewParser().Parse(input)
	require.NoError(t, err)

	assert.Equal(t, 1, set.TotalRecords())
	assert.Equal(t, "F", set.Individuals["I1"].Fields[TagSex])
}

func TestParser_PreInitializedEvents(t *testing.T) {
	set, err := NewParser().Parse("0 HEAD\n0 @I1@ INDI\n0 TRLR\n")
	require.NoError(t, err)

	indi := set.Individuals["I1"]
	for _, tag := range []string{TagBirth, TagDeath, TagBurial} {
		require.NotNil(t, indi.Events[tag], "event %s must be pre-initialized", tag)
	}
}

func TestParser_StructuralValidation(t *testing.T) {
	_, err := NewParser().Parse("0 @I1@ INDI\n1 SEX M\n0 TRLR\n")
	assert.ErrorIs(t, err, ErrMalformedFile, "missing HEAD")

	_, err = NewParser().Parse("0 HEAD\n0 @I1@ INDI\n1 SEX M\n")
	assert.ErrorIs(t, err, ErrMalformedFile, "missing TRLR")

	_, err = NewParser().Parse(sampleGedcom)
	assert.NoError(t, err)
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		value   string
		given   string
		surname string
	}{
		{"John /Smith/", "John", "Smith"},
		{"John Smith", "John Smith", ""},
		{"/Smith/", "", "Smith"},
		{"Anna Maria /van der Berg/", "Anna Maria", "van der Berg"},
		{"Broken /Smith", "Broken /Smith", ""},
		{"", "", ""},
	}
	for _, tc := range tests {
		given, surname := SplitName(tc.value)
		assert.Equal(t, tc.given, given, "value %q", tc.value)
		assert.Equal(t, tc.surname, surname, "value %q", tc.value)
	}
}

func TestParser_Level2NamePieces(t *testing.T) {
	input := strings.Join([]string{
		"0 HEAD",
		"0 @I1@ INDI",
		"1 NAME Jan /Kowalski/",
		"2 GIVN Janek",
		"2 SURN Kowalski-Nowak",
		"0 TRLR",
	}, "\n")

	set, err := NewParser().Parse(input)
	require.NoError(t, err)

	indi := set.Individuals["I1"]
	assert.Equal(t, "Janek", indi.Fields[TagGivenName])
	assert.Equal(t, "Kowalski-Nowak", indi.Fields[TagSurname])
	assert.Equal(t, "Jan /Kowalski/", indi.Fields[TagName])
}
