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

	"github.com/chartfax/chartfax/model"
)

// GetFax retrieves a fax by its internal ID.
func (c *Chartfax) GetFax(ctx context.Context, faxID string) (*model.InboundFax, error) {
	return c.datasource.GetFax(ctx, faxID)
}

// FindFaxByCarrierIDs retrieves a fax by its carrier identity.
func (c *Chartfax) FindFaxByCarrierIDs(ctx context.Context, jobID, transactionID string) (*model.InboundFax, error) {
	return c.datasource.GetFaxByCarrierIDs(ctx, jobID, transactionID)
}

// GetFaxesByStatus retrieves faxes sitting in the given status, up to
// limit.
func (c *Chartfax) GetFaxesByStatus(ctx context.Context, status string, limit int) ([]*model.InboundFax, error) {
	return c.datasource.GetFaxesByStatus(ctx, status, limit)
}

// RecordRequestDetail is a record request together with its legs.
type RecordRequestDetail struct {
	Request *model.RecordRequest     `json:"request"`
	Legs    []*model.ProviderRequest `json:"legs"`
}

// GetRecordRequestDetail retrieves a record request and every leg on it.
func (c *Chartfax) GetRecordRequestDetail(ctx context.Context, requestID string) (*RecordRequestDetail, error) {
	ctx, span := tracer.Start(ctx, "Fetching Record Request Detail")
	defer span.End()

	request, err := c.datasource.GetRecordRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	legs, err := c.datasource.GetProviderRequestsByRequest(ctx, request.RequestID)
	if err != nil {
		return nil, err
	}
	return &RecordRequestDetail{Request: request, Legs: legs}, nil
}
