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

// Record request statuses.
const (
	RequestStatusOpen     = "open"
	RequestStatusComplete = "complete"
)

// Provider request (outbound leg) statuses. A leg only accepts an inbound
// response while it sits in fax_sent or fax_delivered.
const (
	LegStatusPending          = "pending"
	LegStatusFaxSent          = "fax_sent"
	LegStatusFaxDelivered     = "fax_delivered"
	LegStatusFaxFailed        = "fax_failed"
	LegStatusResponseReceived = "response_received"
)

// RecordRequest is one patient's request for medical records, fanned out
// to one or more providers as ProviderRequest legs.
type RecordRequest struct {
	ID          int64      `json:"-"`
	RequestID   string     `json:"request_id"`
	PatientID   string     `json:"patient_id"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ProviderRequest is a single outbound leg of a record request: one fax
// sent to one provider, tracked until a response arrives or delivery
// fails for good.
type ProviderRequest struct {
	ID                int64      `json:"-"`
	ProviderRequestID string     `json:"provider_request_id"`
	RequestID         string     `json:"request_id"`
	ProviderID        string     `json:"provider_id"`
	ProviderName      string     `json:"provider_name,omitempty"`
	ProviderFaxNumber string     `json:"provider_fax_number,omitempty"`
	Status            string     `json:"status"`
	OutboundJobID     string     `json:"outbound_job_id,omitempty"`
	ResponseFaxID     string     `json:"response_fax_id,omitempty"`
	SentAt            *time.Time `json:"sent_at,omitempty"`
	RespondedAt       *time.Time `json:"responded_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// IsLegTerminal reports whether a leg status counts toward request
// completion. Both a received response and a permanently failed delivery
// settle the leg.
func IsLegTerminal(status string) bool {
	return status == LegStatusResponseReceived || status == LegStatusFaxFailed
}

// AwaitingResponse reports whether the leg is in a state where an inbound
// fax may still be attributed to it.
func (pr *ProviderRequest) AwaitingResponse() bool {
	return pr.Status == LegStatusFaxSent || pr.Status == LegStatusFaxDelivered
}
