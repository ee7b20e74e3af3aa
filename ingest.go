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
	"log"
	"time"

	"github.com/chartfax/chartfax/internal/apierror"
	"github.com/chartfax/chartfax/internal/carrier"
	"github.com/chartfax/chartfax/internal/notification"
	"github.com/chartfax/chartfax/model"
)

// IngestFax records an inbound fax and queues it for processing.
//
// The claim on (job_id, transaction_id) is what makes webhook delivery
// and polling safe to run together: however many times the same fax is
// announced, exactly one caller gets created=true and enqueues it. The
// rest get the existing row back and acknowledge without side effects.
func (c *Chartfax) IngestFax(ctx context.Context, fax *model.InboundFax) (*model.InboundFax, bool, error) {
	ctx, span := tracer.Start(ctx, "Ingesting Inbound Fax")
	defer span.End()

	if fax.JobID == "" || fax.TransactionID == "" {
		return nil, false, apierror.NewAPIError(apierror.ErrInvalidInput, "Fax is missing its carrier identifiers", nil)
	}
	if fax.Carrier == "" {
		return nil, false, apierror.NewAPIError(apierror.ErrInvalidInput, "Fax is missing its carrier", nil)
	}

	claimed, created, err := c.datasource.ClaimInboundFax(ctx, fax)
	if err != nil {
		return nil, false, err
	}
	if !created {
		log.Printf("Duplicate fax delivery ignored: %s/%s", fax.JobID, fax.TransactionID)
		return claimed, false, nil
	}

	if err := c.queue.Enqueue(ctx, claimed); err != nil {
		notification.NotifyError(err)
		return claimed, true, err
	}

	if err := SendWebhook(NewWebhook{Event: EventFaxReceived, Payload: claimed}); err != nil {
		log.Printf("Error sending webhook: %v", err)
	}
	return claimed, true, nil
}

// PollInboundFaxes asks the carrier for its recent inbound faxes and
// ingests any the webhook never delivered. Returns the number of faxes
// newly claimed by this poll.
func (c *Chartfax) PollInboundFaxes(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Polling Carrier Inbound List")
	defer span.End()

	client, err := c.Carrier(carrier.IFax)
	if err != nil {
		return 0, err
	}
	lister, ok := client.(*carrier.IFaxClient)
	if !ok {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "Carrier does not support inbound listing", nil)
	}

	records, err := lister.ListInbound(ctx)
	if err != nil {
		notification.NotifyError(err)
		return 0, err
	}

	claimed := 0
	for _, record := range records {
		fax := &model.InboundFax{
			JobID:         record.JobID,
			TransactionID: record.TransactionID,
			Carrier:       carrier.IFax,
			FromNumber:    record.FromNumber,
			ToNumber:      record.ToNumber,
			ReceivedAt:    ParseCarrierTime(record.ReceivedAt),
		}
		_, created, err := c.IngestFax(ctx, fax)
		if err != nil {
			log.Printf("Error ingesting polled fax %s/%s: %v", record.JobID, record.TransactionID, err)
			continue
		}
		if created {
			claimed++
		}
	}
	return claimed, nil
}

var carrierTimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006 15:04:05",
}

// ParseCarrierTime reads the timestamp formats carriers put in their
// inbound listings. An unparseable value falls back to the current time
// so the fax still carries a usable receipt time.
func ParseCarrierTime(value string) time.Time {
	for _, layout := range carrierTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Now()
}
