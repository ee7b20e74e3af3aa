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

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/chartfax/chartfax/model"
)

// IFaxWebhook is the body iFax posts when an inbound fax arrives.
type IFaxWebhook struct {
	JobID          string `json:"jobId"`
	TransactionID  string `json:"transactionId"`
	FaxNumber      string `json:"faxNumber"`
	ReceiverNumber string `json:"receiverNumber"`
	FaxCallStart   string `json:"faxCallStart"`
}

func (w *IFaxWebhook) ValidateIFaxWebhook() error {
	return validation.ValidateStruct(w,
		validation.Field(&w.JobID, validation.Required),
		validation.Field(&w.TransactionID, validation.Required),
	)
}

// HumbleFaxWebhook is the envelope HumbleFax posts for incoming fax
// events. Only the nested IncomingFax block is meaningful here.
type HumbleFaxWebhook struct {
	Type string `json:"type"`
	Data struct {
		IncomingFax struct {
			ID         string `json:"id"`
			FromNumber string `json:"fromNumber"`
			ToNumber   string `json:"toNumber"`
			Time       string `json:"time"`
		} `json:"incomingFax"`
	} `json:"data"`
}

func (w *HumbleFaxWebhook) ValidateHumbleFaxWebhook() error {
	if w.Data.IncomingFax.ID == "" {
		return errors.New("incomingFax.id is required")
	}
	return nil
}

// FaxStatusWebhook is the delivery report carriers post about an
// outbound fax job.
type FaxStatusWebhook struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

func (w *FaxStatusWebhook) ValidateFaxStatusWebhook() error {
	return validation.ValidateStruct(w,
		validation.Field(&w.JobID, validation.Required),
		validation.Field(&w.Status, validation.Required),
	)
}

type CreatePatient struct {
	FirstName string                 `json:"first_name"`
	LastName  string                 `json:"last_name"`
	DOB       string                 `json:"dob"`
	MetaData  map[string]interface{} `json:"meta_data"`
}

func (p *CreatePatient) ValidateCreatePatient() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.FirstName, validation.Required),
		validation.Field(&p.LastName, validation.Required),
		validation.Field(&p.DOB, validation.Required, validation.By(func(interface{}) error {
			return validateDateFormat("2006-01-02", p.DOB)
		})),
	)
}

func (p *CreatePatient) ToPatient() model.Patient {
	dob, _ := time.Parse("2006-01-02", p.DOB)
	return model.Patient{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		DOB:       dob,
		MetaData:  p.MetaData,
	}
}

type CreateProvider struct {
	Name      string                 `json:"name"`
	FaxNumber string                 `json:"fax_number"`
	Phone     string                 `json:"phone"`
	MetaData  map[string]interface{} `json:"meta_data"`
}

func (p *CreateProvider) ValidateCreateProvider() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.FaxNumber, validation.Required),
	)
}

func (p *CreateProvider) ToProvider() model.Provider {
	return model.Provider{
		Name:      p.Name,
		FaxNumber: p.FaxNumber,
		Phone:     p.Phone,
		MetaData:  p.MetaData,
	}
}

type CreateRecordRequest struct {
	PatientID   string   `json:"patient_id"`
	ProviderIDs []string `json:"provider_ids"`
}

func (r *CreateRecordRequest) ValidateCreateRecordRequest() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PatientID, validation.Required),
		validation.Field(&r.ProviderIDs, validation.Required, validation.Length(1, 0)),
	)
}

func validateDateFormat(format, value string) error {
	_, err := time.Parse(format, value)
	if err != nil {
		return errors.New("please format the date as 'YYYY-MM-DD' (e.g., 1980-03-15)")
	}
	return nil
}
