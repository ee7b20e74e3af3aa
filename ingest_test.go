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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/chartfax/chartfax/database/mocks"
	"github.com/chartfax/chartfax/internal/apierror"
	"github.com/chartfax/chartfax/model"
)

func TestIngestFax_RejectsMissingCarrierIdentity(t *testing.T) {
	mockDS := new(mocks.MockDataSource)
	service := newTestChartfax(mockDS)

	_, _, err := service.IngestFax(context.Background(), &model.InboundFax{JobID: "job-1", Carrier: "ifax"})
	assert.Error(t, err)
	assert.Equal(t, apierror.ErrInvalidInput, err.(apierror.APIError).Code)

	_, _, err = service.IngestFax(context.Background(), &model.InboundFax{JobID: "job-1", TransactionID: "txn-1"})
	assert.Error(t, err)
	assert.Equal(t, apierror.ErrInvalidInput, err.(apierror.APIError).Code)

	mockDS.AssertNotCalled(t, "ClaimInboundFax", mock.Anything, mock.Anything)
}

func TestIngestFax_DuplicateDeliveryAcksExistingFax(t *testing.T) {
	mockDS := new(mocks.MockDataSource)
	service := newTestChartfax(mockDS)

	existing := &model.InboundFax{FaxID: "fax_existing", JobID: "job-1", TransactionID: "txn-1", Status: model.StatusDownloaded}
	mockDS.On("ClaimInboundFax", mock.Anything, mock.Anything).Return(existing, false, nil)

	claimed, created, err := service.IngestFax(context.Background(), &model.InboundFax{
		JobID:         "job-1",
		TransactionID: "txn-1",
		Carrier:       "ifax",
	})
	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "fax_existing", claimed.FaxID)
	mockDS.AssertExpectations(t)
}

func TestParseCarrierTime(t *testing.T) {
	parsed := ParseCarrierTime("2024-01-22 14:03:55")
	assert.Equal(t, time.Date(2024, 1, 22, 14, 3, 55, 0, time.UTC), parsed)

	parsed = ParseCarrierTime("2024-01-22T14:03:55Z")
	assert.Equal(t, time.Date(2024, 1, 22, 14, 3, 55, 0, time.UTC), parsed)

	// Garbage falls back to the current time rather than zero.
	parsed = ParseCarrierTime("not a timestamp")
	assert.WithinDuration(t, time.Now(), parsed, time.Second)
}
