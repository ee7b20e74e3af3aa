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

package chartfax

import (
	"context"
	"fmt"
	"log"

	"github.com/chartfax/chartfax/config"
	"github.com/chartfax/chartfax/internal/apierror"
	"github.com/chartfax/chartfax/internal/carrier"
	"github.com/chartfax/chartfax/model"
)

// OpenRecordRequest creates a record request for a patient with one
// outbound leg per provider.
func (c *Chartfax) OpenRecordRequest(ctx context.Context, patientID string, providerIDs []string) (*model.RecordRequest, []*model.ProviderRequest, error) {
	ctx, span := tracer.Start(ctx, "Opening Record Request")
	defer span.End()

	if len(providerIDs) == 0 {
		return nil, nil, apierror.NewAPIError(apierror.ErrInvalidInput, "A record request needs at least one provider", nil)
	}

	patient, err := c.datasource.GetPatientByID(ctx, patientID)
	if err != nil {
		return nil, nil, err
	}

	request, err := c.datasource.CreateRecordRequest(ctx, model.RecordRequest{PatientID: patient.PatientID})
	if err != nil {
		return nil, nil, err
	}

	legs := make([]*model.ProviderRequest, 0, len(providerIDs))
	for _, providerID := range providerIDs {
		provider, err := c.datasource.GetProviderByID(ctx, providerID)
		if err != nil {
			return nil, nil, err
		}
		leg, err := c.datasource.CreateProviderRequest(ctx, model.ProviderRequest{
			RequestID:  request.RequestID,
			ProviderID: provider.ProviderID,
		})
		if err != nil {
			return nil, nil, err
		}
		leg.ProviderName = provider.Name
		leg.ProviderFaxNumber = provider.FaxNumber
		legs = append(legs, &leg)
	}
	return &request, legs, nil
}

// SendProviderRequest faxes the records request for one leg to its
// provider and marks the leg sent.
//
// The send happens before the status flip, so a crash in between leaves
// the leg pending with a fax already on the wire. MarkLegSent failing on
// a leg someone else already sent reports a conflict rather than
// double-recording; the duplicate outbound fax is the lesser harm.
func (c *Chartfax) SendProviderRequest(ctx context.Context, legID string, files []carrier.SendFile) (*model.ProviderRequest, error) {
	ctx, span := tracer.Start(ctx, "Sending Provider Request Fax")
	defer span.End()

	cnf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	leg, err := c.datasource.GetProviderRequest(ctx, legID)
	if err != nil {
		return nil, err
	}
	if leg.Status != model.LegStatusPending {
		return nil, apierror.NewAPIError(apierror.ErrConflict, "Leg has already been sent: "+legID, nil)
	}

	request, err := c.datasource.GetRecordRequest(ctx, leg.RequestID)
	if err != nil {
		return nil, err
	}
	patient, err := c.datasource.GetPatientByID(ctx, request.PatientID)
	if err != nil {
		return nil, err
	}

	client, err := c.Carrier(carrier.IFax)
	if err != nil {
		return nil, err
	}
	sender, ok := client.(*carrier.IFaxClient)
	if !ok {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Carrier does not support outbound sending", nil)
	}

	coverText := fmt.Sprintf("Records request for %s (DOB %s). Please fax all responsive records to this number.",
		patient.FullName(), patient.DOB.Format("01/02/2006"))

	jobID, err := sender.Send(ctx, leg.ProviderFaxNumber, coverText, files, cnf.Carriers.StatusCallbackURL)
	if err != nil {
		return nil, err
	}

	if err := c.datasource.MarkLegSent(ctx, leg.ProviderRequestID, jobID); err != nil {
		return nil, err
	}
	leg.Status = model.LegStatusFaxSent
	leg.OutboundJobID = jobID
	log.Printf("Sent records request leg %s as carrier job %s", leg.ProviderRequestID, jobID)
	return leg, nil
}

// ApplyDeliveryReport records a carrier delivery report for an outbound
// job. A failed delivery settles the leg, so the parent request gets a
// completion check.
func (c *Chartfax) ApplyDeliveryReport(ctx context.Context, outboundJobID, reportedStatus string) (*model.ProviderRequest, error) {
	ctx, span := tracer.Start(ctx, "Applying Delivery Report")
	defer span.End()

	var status string
	switch reportedStatus {
	case "sent":
		status = model.LegStatusFaxSent
	case "delivered", "success":
		status = model.LegStatusFaxDelivered
	case "failed", "error":
		status = model.LegStatusFaxFailed
	default:
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Unknown delivery status: "+reportedStatus, nil)
	}

	leg, err := c.datasource.UpdateLegDeliveryStatus(ctx, outboundJobID, status)
	if err != nil {
		return nil, err
	}

	if status == model.LegStatusFaxFailed {
		if err := c.FinalizeRecordRequest(ctx, leg.RequestID); err != nil {
			log.Printf("Error finalizing request %s: %v", leg.RequestID, err)
		}
	}
	return leg, nil
}
