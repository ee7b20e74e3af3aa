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
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/chartfax/chartfax/internal/apierror"
	"github.com/chartfax/chartfax/model"
)

var faxTestColumns = []string{
	"id", "fax_id", "job_id", "transaction_id", "carrier", "from_number", "to_number",
	"page_count", "status", "file_path", "extracted_text", "patient_name",
	"patient_dob", "encounter_date", "matched_patient_id", "match_confidence",
	"provider_request_id", "received_at", "created_at",
}

func TestClaimInboundFax_New(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	fax := &model.InboundFax{
		JobID:         "job-100",
		TransactionID: "txn-200",
		Carrier:       "ifax",
		FromNumber:    "+16177260000",
		ToNumber:      "+18005550100",
	}

	mock.ExpectExec("INSERT INTO inbound_faxes").
		WithArgs(sqlmock.AnyArg(), fax.JobID, fax.TransactionID, fax.Carrier, fax.FromNumber, fax.ToNumber, model.StatusReceived, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	claimed, created, err := ds.ClaimInboundFax(context.Background(), fax)
	assert.NoError(t, err)
	assert.True(t, created)
	assert.Contains(t, claimed.FaxID, "fax_")
	assert.Equal(t, model.StatusReceived, claimed.Status)
	assert.WithinDuration(t, time.Now(), claimed.ReceivedAt, time.Second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimInboundFax_DuplicateDelivery(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	now := time.Now()
	mock.ExpectExec("INSERT INTO inbound_faxes").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT (.+) FROM inbound_faxes").
		WithArgs("job-100", "txn-200").
		WillReturnRows(sqlmock.NewRows(faxTestColumns).
			AddRow(7, "fax_existing", "job-100", "txn-200", "ifax", "+16177260000", "+18005550100",
				3, model.StatusDownloaded, "/faxes/inbox/fax_existing.pdf", nil, nil,
				nil, nil, nil, 0.0, nil, now, now))

	claimed, created, err := ds.ClaimInboundFax(context.Background(), &model.InboundFax{
		JobID:         "job-100",
		TransactionID: "txn-200",
		Carrier:       "ifax",
	})
	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "fax_existing", claimed.FaxID)
	assert.Equal(t, model.StatusDownloaded, claimed.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimInboundFax_InsertFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("INSERT INTO inbound_faxes").
		WillReturnError(fmt.Errorf("connection reset"))

	_, _, err = ds.ClaimInboundFax(context.Background(), &model.InboundFax{JobID: "j", TransactionID: "t"})
	assert.Error(t, err)
	assert.Equal(t, apierror.ErrInternalServer, err.(apierror.APIError).Code)
}

func TestGetFax_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("SELECT (.+) FROM inbound_faxes").
		WithArgs("fax_missing").
		WillReturnError(sql.ErrNoRows)

	_, err = ds.GetFax(context.Background(), "fax_missing")
	assert.Error(t, err)
	assert.Equal(t, apierror.ErrNotFound, err.(apierror.APIError).Code)
}

func TestUpdateFaxStatus_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE inbound_faxes").
		WithArgs("fax_missing", model.StatusProcessed).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = ds.UpdateFaxStatus(context.Background(), "fax_missing", model.StatusProcessed)
	assert.Error(t, err)
	assert.Equal(t, apierror.ErrNotFound, err.(apierror.APIError).Code)
}

func TestMarkFaxDownloaded_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE inbound_faxes").
		WithArgs("fax_1", "/faxes/inbox/fax_1.pdf", 4, model.StatusDownloaded).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = ds.MarkFaxDownloaded(context.Background(), "fax_1", "/faxes/inbox/fax_1.pdf", 4)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordFaxExtraction_NilDates(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE inbound_faxes").
		WithArgs("fax_1", "some text", "", sql.NullTime{}, sql.NullTime{}, model.StatusExtracted).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = ds.RecordFaxExtraction(context.Background(), "fax_1", "some text", "", nil, nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkFaxPatient_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE inbound_faxes").
		WithArgs("fax_1", "pat_9", 0.86, model.StatusMatched).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = ds.LinkFaxPatient(context.Background(), "fax_1", "pat_9", 0.86)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFaxesByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM inbound_faxes").
		WithArgs(model.StatusReceived, 10).
		WillReturnRows(sqlmock.NewRows(faxTestColumns).
			AddRow(1, "fax_a", "j1", "t1", "ifax", "+1", "+2", 0, model.StatusReceived, nil, nil, nil, nil, nil, nil, 0.0, nil, now, now).
			AddRow(2, "fax_b", "j2", "t2", "humblefax", "+3", "+4", 0, model.StatusReceived, nil, nil, nil, nil, nil, nil, 0.0, nil, now, now))

	faxes, err := ds.GetFaxesByStatus(context.Background(), model.StatusReceived, 10)
	assert.NoError(t, err)
	assert.Len(t, faxes, 2)
	assert.Equal(t, "fax_a", faxes[0].FaxID)
	assert.Equal(t, "humblefax", faxes[1].Carrier)
}
