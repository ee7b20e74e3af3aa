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

	"github.com/chartfax/chartfax/internal/apierror"
	"github.com/chartfax/chartfax/database/mocks"
	"github.com/chartfax/chartfax/model"
)

func TestProcessFax_TerminalStatusIsANoOp(t *testing.T) {
	mockDS := new(mocks.MockDataSource)
	service := newTestChartfax(mockDS)

	fax := &model.InboundFax{FaxID: "fax_1", Status: model.StatusProcessed}
	mockDS.On("GetFax", mock.Anything, "fax_1").Return(fax, nil)

	result, err := service.ProcessFax(context.Background(), "fax_1")
	assert.NoError(t, err)
	assert.Equal(t, model.StatusProcessed, result.Status)
	mockDS.AssertNotCalled(t, "UpdateFaxStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessFax_MatchedAdvancesToProcessed(t *testing.T) {
	mockDS := new(mocks.MockDataSource)
	service := newTestChartfax(mockDS)

	fax := &model.InboundFax{FaxID: "fax_1", Status: model.StatusMatched, FromNumber: "+19995550000"}
	mockDS.On("GetFax", mock.Anything, "fax_1").Return(fax, nil)
	mockDS.On("GetOpenProviderRequests", mock.Anything).Return([]*model.ProviderRequest{}, nil)
	mockDS.On("UpdateFaxStatus", mock.Anything, "fax_1", model.StatusProcessed).Return(nil)

	result, err := service.ProcessFax(context.Background(), "fax_1")
	assert.NoError(t, err)
	assert.Equal(t, model.StatusProcessed, result.Status)
	mockDS.AssertExpectations(t)
}

func TestReprocessFax_RewindsFailureStatuses(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		rewound string
	}{
		{"download failure rewinds to received", model.StatusDownloadFailed, model.StatusReceived},
		{"extraction failure rewinds to downloaded", model.StatusExtractionFailed, model.StatusDownloaded},
		{"unmatched reruns matching", model.StatusUnmatched, model.StatusExtracted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDS := new(mocks.MockDataSource)
			service := newTestChartfax(mockDS)

			fax := &model.InboundFax{FaxID: "fax_1", Status: tt.from}
			mockDS.On("GetFax", mock.Anything, "fax_1").Return(fax, nil)
			mockDS.On("UpdateFaxStatus", mock.Anything, "fax_1", mock.Anything).Return(nil)
			mockDS.On("GetOpenProviderRequests", mock.Anything).Return([]*model.ProviderRequest{}, nil)

			// The pipeline resumes from the rewound stage and may fail
			// further along; this test only cares about the rewind.
			_, _ = service.ReprocessFax(context.Background(), "fax_1")
			mockDS.AssertCalled(t, "UpdateFaxStatus", mock.Anything, "fax_1", tt.rewound)
		})
	}
}

func TestReprocessFax_RejectsMidPipelineStatus(t *testing.T) {
	mockDS := new(mocks.MockDataSource)
	service := newTestChartfax(mockDS)

	fax := &model.InboundFax{FaxID: "fax_1", Status: model.StatusProcessed}
	mockDS.On("GetFax", mock.Anything, "fax_1").Return(fax, nil)

	_, err := service.ReprocessFax(context.Background(), "fax_1")
	assert.Error(t, err)
	assert.Equal(t, apierror.ErrConflict, err.(apierror.APIError).Code)
}

func TestSortFaxesForCompilation(t *testing.T) {
	received := func(day int) time.Time {
		return time.Date(2024, 2, day, 10, 0, 0, 0, time.UTC)
	}

	faxes := []*model.InboundFax{
		{FaxID: "fax_late_receipt", ReceivedAt: received(20)},
		{FaxID: "fax_old_encounter", ReceivedAt: received(18), EncounterDate: datePtr(2024, 1, 5)},
		{FaxID: "fax_early_receipt", ReceivedAt: received(10)},
		{FaxID: "fax_new_encounter", ReceivedAt: received(1), EncounterDate: datePtr(2024, 2, 15)},
	}

	SortFaxesForCompilation(faxes)

	order := make([]string, len(faxes))
	for i, fax := range faxes {
		order[i] = fax.FaxID
	}
	// Encounter dates order documents clinically even when receipt
	// order says otherwise.
	assert.Equal(t, []string{"fax_old_encounter", "fax_early_receipt", "fax_new_encounter", "fax_late_receipt"}, order)
}

func TestSortFaxesForCompilation_StableOnTies(t *testing.T) {
	at := time.Date(2024, 2, 10, 10, 0, 0, 0, time.UTC)
	faxes := []*model.InboundFax{
		{FaxID: "fax_first", ReceivedAt: at},
		{FaxID: "fax_second", ReceivedAt: at},
	}

	SortFaxesForCompilation(faxes)
	assert.Equal(t, "fax_first", faxes[0].FaxID)
	assert.Equal(t, "fax_second", faxes[1].FaxID)
}
