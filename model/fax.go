/*
Copyright 2024 Chartfax Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package model

import "time"

// Lifecycle statuses for an inbound fax document. The status tracks
// pipeline progress only; extracted content lives in its own columns so
// a reprocess never has to re-derive it from the status.
const (
	StatusReceived         = "received"
	StatusDownloaded       = "downloaded"
	StatusDownloadFailed   = "download_failed"
	StatusExtracted        = "extracted"
	StatusExtractionFailed = "extraction_failed"
	StatusMatched          = "matched"
	StatusUnmatched        = "unmatched"
	StatusProcessed        = "processed"
)

// InboundFax is a single fax document received from a carrier. The
// (JobID, TransactionID) pair is the carrier-side identity used for
// idempotent ingestion; FaxID is the internal identity everything else
// references.
type InboundFax struct {
	ID            int64      `json:"-"`
	FaxID         string     `json:"fax_id"`
	JobID         string     `json:"job_id"`
	TransactionID string     `json:"transaction_id"`
	Carrier       string     `json:"carrier"`
	FromNumber    string     `json:"from_number"`
	ToNumber      string     `json:"to_number"`
	PageCount     int        `json:"page_count"`
	Status        string     `json:"status"`
	FilePath      string     `json:"file_path,omitempty"`
	ExtractedText string     `json:"extracted_text,omitempty"`
	PatientName   string     `json:"patient_name,omitempty"`
	PatientDOB    *time.Time `json:"patient_dob,omitempty"`
	EncounterDate *time.Time `json:"encounter_date,omitempty"`

	// Matching results. Confidence is 0 when no patient matched.
	MatchedPatientID  string  `json:"matched_patient_id,omitempty"`
	MatchConfidence   float64 `json:"match_confidence,omitempty"`
	ProviderRequestID string  `json:"provider_request_id,omitempty"`

	ReceivedAt time.Time `json:"received_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsTerminalStatus reports whether a fax in this status will never be
// advanced further by the pipeline on its own.
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusProcessed, StatusDownloadFailed:
		return true
	}
	return false
}

// HasDocument reports whether the fax made it past download, meaning a
// local file exists for extraction and compilation.
func (f *InboundFax) HasDocument() bool {
	return f.FilePath != "" && f.Status != StatusReceived && f.Status != StatusDownloadFailed
}

// DocumentDate returns the date used when ordering this fax inside a
// compiled record: the clinical encounter date when extraction found one,
// otherwise the carrier receipt time. The second return value reports
// whether an encounter date was present.
func (f *InboundFax) DocumentDate() (time.Time, bool) {
	if f.EncounterDate != nil {
		return *f.EncounterDate, true
	}
	return f.ReceivedAt, false
}
