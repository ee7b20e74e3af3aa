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

// CreatePatient registers a patient in the matching registry.
func (c *Chartfax) CreatePatient(ctx context.Context, patient model.Patient) (model.Patient, error) {
	ctx, span := tracer.Start(ctx, "Creating Patient")
	defer span.End()
	return c.datasource.CreatePatient(ctx, patient)
}

// GetPatient retrieves a patient by ID.
func (c *Chartfax) GetPatient(ctx context.Context, id string) (*model.Patient, error) {
	return c.datasource.GetPatientByID(ctx, id)
}

// GetAllPatients retrieves a page of patients.
func (c *Chartfax) GetAllPatients(ctx context.Context, limit, offset int) ([]model.Patient, error) {
	return c.datasource.GetAllPatients(ctx, limit, offset)
}

// UpdatePatient updates a patient's demographic fields.
func (c *Chartfax) UpdatePatient(ctx context.Context, patient *model.Patient) error {
	return c.datasource.UpdatePatient(ctx, patient)
}

// PatientRecords bundles everything on file for one patient: the
// documents matched to them and the record requests opened on their
// behalf.
type PatientRecords struct {
	Patient  *model.Patient         `json:"patient"`
	Faxes    []*model.InboundFax    `json:"faxes"`
	Requests []*model.RecordRequest `json:"requests"`
}

// GetPatientRecords retrieves a patient's collected documents and
// record requests. Documents come back in the order a compiled record
// would bind them.
func (c *Chartfax) GetPatientRecords(ctx context.Context, patientID string) (*PatientRecords, error) {
	ctx, span := tracer.Start(ctx, "Fetching Patient Records")
	defer span.End()

	patient, err := c.datasource.GetPatientByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	faxes, err := c.datasource.GetFaxesByPatient(ctx, patient.PatientID)
	if err != nil {
		return nil, err
	}
	SortFaxesForCompilation(faxes)

	requests, err := c.datasource.GetRecordRequestsByPatient(ctx, patient.PatientID)
	if err != nil {
		return nil, err
	}
	return &PatientRecords{Patient: patient, Faxes: faxes, Requests: requests}, nil
}
