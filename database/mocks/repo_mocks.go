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
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/chartfax/chartfax/model"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Inbound fax methods

func (m *MockDataSource) ClaimInboundFax(ctx context.Context, fax *model.InboundFax) (*model.InboundFax, bool, error) {
	args := m.Called(ctx, fax)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.InboundFax), args.Bool(1), args.Error(2)
}

func (m *MockDataSource) GetFax(ctx context.Context, faxID string) (*model.InboundFax, error) {
	args := m.Called(ctx, faxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InboundFax), args.Error(1)
}

func (m *MockDataSource) GetFaxByCarrierIDs(ctx context.Context, jobID, transactionID string) (*model.InboundFax, error) {
	args := m.Called(ctx, jobID, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InboundFax), args.Error(1)
}

func (m *MockDataSource) UpdateFaxStatus(ctx context.Context, faxID, status string) error {
	args := m.Called(ctx, faxID, status)
	return args.Error(0)
}

func (m *MockDataSource) MarkFaxDownloaded(ctx context.Context, faxID, filePath string, pageCount int) error {
	args := m.Called(ctx, faxID, filePath, pageCount)
	return args.Error(0)
}

func (m *MockDataSource) RecordFaxExtraction(ctx context.Context, faxID, text, patientName string, dob, encounterDate *time.Time) error {
	args := m.Called(ctx, faxID, text, patientName, dob, encounterDate)
	return args.Error(0)
}

func (m *MockDataSource) LinkFaxPatient(ctx context.Context, faxID, patientID string, confidence float64) error {
	args := m.Called(ctx, faxID, patientID, confidence)
	return args.Error(0)
}

func (m *MockDataSource) LinkFaxProviderRequest(ctx context.Context, faxID, providerRequestID string) error {
	args := m.Called(ctx, faxID, providerRequestID)
	return args.Error(0)
}

func (m *MockDataSource) GetFaxesByPatient(ctx context.Context, patientID string) ([]*model.InboundFax, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.InboundFax), args.Error(1)
}

func (m *MockDataSource) GetFaxesByStatus(ctx context.Context, status string, limit int) ([]*model.InboundFax, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.InboundFax), args.Error(1)
}

// Patient methods

func (m *MockDataSource) CreatePatient(ctx context.Context, patient model.Patient) (model.Patient, error) {
	args := m.Called(ctx, patient)
	return args.Get(0).(model.Patient), args.Error(1)
}

func (m *MockDataSource) GetPatientByID(ctx context.Context, id string) (*model.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Patient), args.Error(1)
}

func (m *MockDataSource) GetAllPatients(ctx context.Context, limit, offset int) ([]model.Patient, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Patient), args.Error(1)
}

func (m *MockDataSource) GetPatientsByDOB(ctx context.Context, dob time.Time) ([]model.Patient, error) {
	args := m.Called(ctx, dob)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Patient), args.Error(1)
}

func (m *MockDataSource) UpdatePatient(ctx context.Context, patient *model.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *MockDataSource) DeletePatient(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Provider methods

func (m *MockDataSource) CreateProvider(ctx context.Context, provider model.Provider) (model.Provider, error) {
	args := m.Called(ctx, provider)
	return args.Get(0).(model.Provider), args.Error(1)
}

func (m *MockDataSource) GetProviderByID(ctx context.Context, id string) (*model.Provider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Provider), args.Error(1)
}

func (m *MockDataSource) GetAllProviders(ctx context.Context, limit, offset int) ([]model.Provider, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Provider), args.Error(1)
}

func (m *MockDataSource) UpdateProvider(ctx context.Context, provider *model.Provider) error {
	args := m.Called(ctx, provider)
	return args.Error(0)
}

func (m *MockDataSource) DeleteProvider(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Record request methods

func (m *MockDataSource) CreateRecordRequest(ctx context.Context, request model.RecordRequest) (model.RecordRequest, error) {
	args := m.Called(ctx, request)
	return args.Get(0).(model.RecordRequest), args.Error(1)
}

func (m *MockDataSource) GetRecordRequest(ctx context.Context, id string) (*model.RecordRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RecordRequest), args.Error(1)
}

func (m *MockDataSource) GetRecordRequestsByPatient(ctx context.Context, patientID string) ([]*model.RecordRequest, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.RecordRequest), args.Error(1)
}

func (m *MockDataSource) CompleteRecordRequest(ctx context.Context, requestID string) (bool, error) {
	args := m.Called(ctx, requestID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) CreateProviderRequest(ctx context.Context, leg model.ProviderRequest) (model.ProviderRequest, error) {
	args := m.Called(ctx, leg)
	return args.Get(0).(model.ProviderRequest), args.Error(1)
}

func (m *MockDataSource) GetProviderRequest(ctx context.Context, id string) (*model.ProviderRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProviderRequest), args.Error(1)
}

func (m *MockDataSource) GetProviderRequestsByRequest(ctx context.Context, requestID string) ([]*model.ProviderRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ProviderRequest), args.Error(1)
}

func (m *MockDataSource) GetOpenProviderRequests(ctx context.Context) ([]*model.ProviderRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ProviderRequest), args.Error(1)
}

func (m *MockDataSource) MarkLegSent(ctx context.Context, legID, outboundJobID string) error {
	args := m.Called(ctx, legID, outboundJobID)
	return args.Error(0)
}

func (m *MockDataSource) UpdateLegDeliveryStatus(ctx context.Context, outboundJobID, status string) (*model.ProviderRequest, error) {
	args := m.Called(ctx, outboundJobID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProviderRequest), args.Error(1)
}

func (m *MockDataSource) MarkResponseReceived(ctx context.Context, legID, responseFaxID string) (bool, error) {
	args := m.Called(ctx, legID, responseFaxID)
	return args.Bool(0), args.Error(1)
}
