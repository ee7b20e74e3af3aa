package model

import (
	"strings"
	"time"
)

// Patient is a registry entry a fax can be matched against. Date of birth
// is the matching anchor, so it is required and stored date-only.
type Patient struct {
	ID        int64                  `json:"-"`
	PatientID string                 `json:"patient_id"`
	FirstName string                 `json:"first_name"`
	LastName  string                 `json:"last_name"`
	DOB       time.Time              `json:"dob"`
	MetaData  map[string]interface{} `json:"meta_data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// FullName returns "First Last" with single spacing regardless of which
// parts are populated.
func (p *Patient) FullName() string {
	return strings.TrimSpace(strings.Join(strings.Fields(p.FirstName+" "+p.LastName), " "))
}

// PatientMatch is the outcome of matching an extracted document against
// the registry. Confidence is in [0, 1].
type PatientMatch struct {
	PatientID  string  `json:"patient_id"`
	Confidence float64 `json:"confidence"`
}
