package extraction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReferral = `
CONFIDENTIAL MEDICAL RECORDS

Massachusetts General Hospital
55 Fruit Street, Boston, MA 02114

Patient Name: Sarah Johnson
DOB: 03/15/1980
MRN: 009412

Date of Service: 01/22/2024
Discharge summary attached.
`

func TestParseDemographics(t *testing.T) {
	d := ParseDemographics(sampleReferral)
	assert.Equal(t, "Sarah", d.FirstName)
	assert.Equal(t, "Johnson", d.LastName)
	require.NotNil(t, d.DOB)
	assert.Equal(t, time.Date(1980, 3, 15, 0, 0, 0, 0, time.UTC), *d.DOB)
}

func TestParseDemographicsLastFirst(t *testing.T) {
	d := ParseDemographics("Patient: Johnson, Sarah\nDOB: 1980-03-15")
	assert.Equal(t, "Sarah", d.FirstName)
	assert.Equal(t, "Johnson", d.LastName)
	require.NotNil(t, d.DOB)
	assert.Equal(t, time.Date(1980, 3, 15, 0, 0, 0, 0, time.UTC), *d.DOB)
}

func TestParseDemographicsMiddleName(t *testing.T) {
	d := ParseDemographics("Patient Name: Sarah M. Johnson")
	assert.Equal(t, "Sarah", d.FirstName)
	assert.Equal(t, "Johnson", d.LastName)
	assert.Nil(t, d.DOB)
}

func TestParseDemographicsNoMarkers(t *testing.T) {
	d := ParseDemographics("Please find the attached records for your review.")
	assert.Empty(t, d.FirstName)
	assert.Empty(t, d.LastName)
	assert.Nil(t, d.DOB)
}

func TestParseDOBFormats(t *testing.T) {
	want := time.Date(1980, 3, 15, 0, 0, 0, 0, time.UTC)

	for _, text := range []string{
		"DOB: 03/15/1980",
		"DOB: 3/15/1980",
		"DOB: 03-15-1980",
		"DOB: 1980-03-15",
		"DOB: March 15, 1980",
		"DOB: Mar 15 1980",
		"Date of Birth: 03/15/1980",
		"Birth Date: 03/15/1980",
		"dob: 03/15/1980",
	} {
		got := ParseDOB(text)
		require.NotNil(t, got, "failed to parse %q", text)
		assert.Equal(t, want, *got, "wrong date for %q", text)
	}
}

func TestParseDOBRejectsUnmarkedDates(t *testing.T) {
	// A bare date with no DOB marker must not be treated as one.
	assert.Nil(t, ParseDOB("Seen in clinic on 03/15/1980 for follow-up."))
	// Implausible ages are rejected.
	assert.Nil(t, ParseDOB("DOB: 03/15/1880"))
	assert.Nil(t, ParseDOB("DOB: 03/15/2150"))
}

func TestParseEncounterDate(t *testing.T) {
	want := time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC)

	for _, text := range []string{
		"Date of Service: 01/22/2024",
		"Service Date: 01/22/2024",
		"Visit Date: 1/22/2024",
		"Encounter Date: 01-22-2024",
		"Admission Date: 01/22/2024",
		"Discharge Date: 01/22/2024",
	} {
		got := ParseEncounterDate(text)
		require.NotNil(t, got, "failed to parse %q", text)
		assert.Equal(t, want, *got, "wrong date for %q", text)
	}

	// Future dates are not encounter dates.
	assert.Nil(t, ParseEncounterDate("Date of Service: 01/22/2150"))
	// Neither are unmarked dates.
	assert.Nil(t, ParseEncounterDate("Records from 01/22/2024 follow."))
}

func TestExtractFacilityNames(t *testing.T) {
	names := ExtractFacilityNames(sampleReferral)
	require.NotEmpty(t, names)
	assert.Contains(t, names[0], "Massachusetts General Hospital")
}

func TestExtractFacilityNamesDeduplicates(t *testing.T) {
	// "Boston General Hospital" is captured by both the Hospital and the
	// General Hospital keyword patterns; it must appear once.
	names := ExtractFacilityNames("Boston General Hospital")
	assert.Len(t, names, 1)
}

func TestExtractFacilityNamesIgnoresShortMatches(t *testing.T) {
	assert.Empty(t, ExtractFacilityNames("no facilities mentioned here"))
}
