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

package database

import (
	"context"
	"time"

	"github.com/chartfax/chartfax/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	inboundFax    // Interface for inbound fax operations
	patient       // Interface for patient registry operations
	provider      // Interface for provider registry operations
	recordRequest // Interface for record request and leg operations
}

// inboundFax defines methods for handling inbound fax documents.
type inboundFax interface {
	ClaimInboundFax(ctx context.Context, fax *model.InboundFax) (*model.InboundFax, bool, error)        // Inserts a fax, claiming its (job_id, transaction_id) pair; returns false when already claimed
	GetFax(ctx context.Context, faxID string) (*model.InboundFax, error)                                // Retrieves a fax by internal ID
	GetFaxByCarrierIDs(ctx context.Context, jobID, transactionID string) (*model.InboundFax, error)     // Retrieves a fax by its carrier-side identity
	UpdateFaxStatus(ctx context.Context, faxID string, status string) error                             // Updates the lifecycle status of a fax
	MarkFaxDownloaded(ctx context.Context, faxID, filePath string, pageCount int) error                 // Records the downloaded document and advances status
	RecordFaxExtraction(ctx context.Context, faxID, text, patientName string, dob, encounterDate *time.Time) error // Stores OCR output and parsed fields
	LinkFaxPatient(ctx context.Context, faxID, patientID string, confidence float64) error              // Attaches the matched patient and advances status
	LinkFaxProviderRequest(ctx context.Context, faxID, providerRequestID string) error                  // Attributes the fax to an outbound leg
	GetFaxesByPatient(ctx context.Context, patientID string) ([]*model.InboundFax, error)               // Retrieves all documents matched to a patient
	GetFaxesByStatus(ctx context.Context, status string, limit int) ([]*model.InboundFax, error)        // Retrieves faxes sitting in a given status
}

// patient defines methods for the patient registry.
type patient interface {
	CreatePatient(ctx context.Context, patient model.Patient) (model.Patient, error) // Creates a new patient
	GetPatientByID(ctx context.Context, id string) (*model.Patient, error)           // Retrieves a patient by ID
	GetAllPatients(ctx context.Context, limit, offset int) ([]model.Patient, error)  // Retrieves all patients
	GetPatientsByDOB(ctx context.Context, dob time.Time) ([]model.Patient, error)    // Retrieves candidates sharing a date of birth, oldest record first
	UpdatePatient(ctx context.Context, patient *model.Patient) error                 // Updates a patient
	DeletePatient(ctx context.Context, id string) error                              // Deletes a patient
}

// provider defines methods for the provider registry.
type provider interface {
	CreateProvider(ctx context.Context, provider model.Provider) (model.Provider, error) // Creates a new provider
	GetProviderByID(ctx context.Context, id string) (*model.Provider, error)             // Retrieves a provider by ID
	GetAllProviders(ctx context.Context, limit, offset int) ([]model.Provider, error)    // Retrieves all providers
	UpdateProvider(ctx context.Context, provider *model.Provider) error                  // Updates a provider
	DeleteProvider(ctx context.Context, id string) error                                 // Deletes a provider
}

// recordRequest defines methods for record requests and their outbound legs.
type recordRequest interface {
	CreateRecordRequest(ctx context.Context, request model.RecordRequest) (model.RecordRequest, error)                 // Creates a new record request
	GetRecordRequest(ctx context.Context, id string) (*model.RecordRequest, error)                                     // Retrieves a record request by ID
	GetRecordRequestsByPatient(ctx context.Context, patientID string) ([]*model.RecordRequest, error)                  // Retrieves a patient's record requests
	CompleteRecordRequest(ctx context.Context, requestID string) (bool, error)                                         // Transitions open -> complete when every leg is settled; reports whether this call won
	CreateProviderRequest(ctx context.Context, leg model.ProviderRequest) (model.ProviderRequest, error)               // Creates an outbound leg
	GetProviderRequest(ctx context.Context, id string) (*model.ProviderRequest, error)                                 // Retrieves a leg by ID
	GetProviderRequestsByRequest(ctx context.Context, requestID string) ([]*model.ProviderRequest, error)              // Retrieves all legs of a request
	GetOpenProviderRequests(ctx context.Context) ([]*model.ProviderRequest, error)                                     // Retrieves legs still awaiting a response, with provider name and fax line
	MarkLegSent(ctx context.Context, legID, outboundJobID string) error                                                // Transitions pending -> fax_sent
	UpdateLegDeliveryStatus(ctx context.Context, outboundJobID, status string) (*model.ProviderRequest, error)         // Applies a carrier delivery status to the leg carrying the job ID
	MarkResponseReceived(ctx context.Context, legID, responseFaxID string) (bool, error)                               // Transitions fax_sent/fax_delivered -> response_received; reports whether this call won
}
