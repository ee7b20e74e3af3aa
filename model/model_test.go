package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUUIDWithSuffix(t *testing.T) {
	module := "fax"
	id := GenerateUUIDWithSuffix(module)
	assert.Contains(t, id, module+"_")
}

func TestLastTenDigits(t *testing.T) {
	assert.Equal(t, "6177260000", LastTenDigits("+16177260000"))
	assert.Equal(t, "6177260000", LastTenDigits("(617) 726-0000"))
	assert.Equal(t, "6177260000", LastTenDigits("6177260000"))
	assert.Equal(t, "726000", LastTenDigits("726-000"))
}

func TestSameFaxLine(t *testing.T) {
	assert.True(t, SameFaxLine("+16177260000", "617-726-0000"))
	assert.True(t, SameFaxLine("16177260000", "(617) 726 0000"))
	assert.False(t, SameFaxLine("+16177260000", "+16177265000"))
	// Short numbers never match, even against themselves.
	assert.False(t, SameFaxLine("726000", "726000"))
}

func TestPatientFullName(t *testing.T) {
	p := &Patient{FirstName: " Sarah ", LastName: "Johnson"}
	assert.Equal(t, "Sarah Johnson", p.FullName())

	p = &Patient{FirstName: "", LastName: "Johnson"}
	assert.Equal(t, "Johnson", p.FullName())
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(StatusProcessed))
	assert.True(t, IsTerminalStatus(StatusDownloadFailed))
	assert.False(t, IsTerminalStatus(StatusReceived))
	assert.False(t, IsTerminalStatus(StatusExtractionFailed))
	assert.False(t, IsTerminalStatus(StatusUnmatched))
}

func TestIsLegTerminal(t *testing.T) {
	assert.True(t, IsLegTerminal(LegStatusResponseReceived))
	assert.True(t, IsLegTerminal(LegStatusFaxFailed))
	assert.False(t, IsLegTerminal(LegStatusFaxSent))
	assert.False(t, IsLegTerminal(LegStatusFaxDelivered))
	assert.False(t, IsLegTerminal(LegStatusPending))
}

func TestProviderRequestAwaitingResponse(t *testing.T) {
	pr := &ProviderRequest{Status: LegStatusFaxSent}
	assert.True(t, pr.AwaitingResponse())
	pr.Status = LegStatusFaxDelivered
	assert.True(t, pr.AwaitingResponse())
	pr.Status = LegStatusResponseReceived
	assert.False(t, pr.AwaitingResponse())
	pr.Status = LegStatusPending
	assert.False(t, pr.AwaitingResponse())
}

func TestDocumentDate(t *testing.T) {
	received := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)
	encounter := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	f := &InboundFax{ReceivedAt: received}
	date, hasEncounter := f.DocumentDate()
	assert.False(t, hasEncounter)
	assert.Equal(t, received, date)

	f.EncounterDate = &encounter
	date, hasEncounter = f.DocumentDate()
	assert.True(t, hasEncounter)
	assert.Equal(t, encounter, date)
}
