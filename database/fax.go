package database

import (
	"context"
	"database/sql"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/chartfax/chartfax/internal/apierror"
	"github.com/chartfax/chartfax/model"
)

const faxColumns = `
	id, fax_id, job_id, transaction_id, carrier, from_number, to_number,
	page_count, status, file_path, extracted_text, patient_name,
	patient_dob, encounter_date, matched_patient_id, match_confidence,
	provider_request_id, received_at, created_at
`

// ClaimInboundFax inserts a fax row keyed by its carrier identity. The
// ON CONFLICT DO NOTHING on (job_id, transaction_id) makes the claim
// atomic: exactly one of any number of concurrent deliveries of the same
// webhook gets created=true, and everyone else sees the existing row.
func (d Datasource) ClaimInboundFax(ctx context.Context, fax *model.InboundFax) (*model.InboundFax, bool, error) {
	ctx, span := otel.Tracer("Fax").Start(ctx, "Claiming inbound fax")
	defer span.End()

	fax.FaxID = GenerateUUIDWithSuffix("fax")
	fax.Status = model.StatusReceived
	fax.CreatedAt = time.Now()
	if fax.ReceivedAt.IsZero() {
		fax.ReceivedAt = fax.CreatedAt
	}

	result, err := d.Conn.ExecContext(ctx, `
		INSERT INTO inbound_faxes (fax_id, job_id, transaction_id, carrier, from_number, to_number, status, received_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (job_id, transaction_id) DO NOTHING
	`, fax.FaxID, fax.JobID, fax.TransactionID, fax.Carrier, fax.FromNumber, fax.ToNumber, fax.Status, fax.ReceivedAt, fax.CreatedAt)
	if err != nil {
		return nil, false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record inbound fax", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if rows == 0 {
		// Duplicate delivery. Return the row that won the claim.
		existing, err := d.GetFaxByCarrierIDs(ctx, fax.JobID, fax.TransactionID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return fax, true, nil
}

// GetFax retrieves a fax by its internal ID.
func (d Datasource) GetFax(ctx context.Context, faxID string) (*model.InboundFax, error) {
	ctx, span := otel.Tracer("Fax").Start(ctx, "Fetching fax from db")
	defer span.End()

	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+faxColumns+`
		FROM inbound_faxes
		WHERE fax_id = $1
	`, faxID)
	return scanFax(row)
}

// GetFaxByCarrierIDs retrieves a fax by its carrier-side identity.
func (d Datasource) GetFaxByCarrierIDs(ctx context.Context, jobID, transactionID string) (*model.InboundFax, error) {
	ctx, span := otel.Tracer("Fax").Start(ctx, "Fetching fax by carrier identity")
	defer span.End()

	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+faxColumns+`
		FROM inbound_faxes
		WHERE job_id = $1 AND transaction_id = $2
	`, jobID, transactionID)
	return scanFax(row)
}

// UpdateFaxStatus sets the lifecycle status of a fax.
func (d Datasource) UpdateFaxStatus(ctx context.Context, faxID string, status string) error {
	ctx, span := otel.Tracer("Fax").Start(ctx, "Updating fax status")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE inbound_faxes SET status = $2 WHERE fax_id = $1
	`, faxID, status)
	if err != nil {
		return err
	}
	return requireRowAffected(result, faxID)
}

// MarkFaxDownloaded records where the document landed on disk and how
// many pages it has, advancing the status to downloaded.
func (d Datasource) MarkFaxDownloaded(ctx context.Context, faxID, filePath string, pageCount int) error {
	ctx, span := otel.Tracer("Fax").Start(ctx, "Marking fax downloaded")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE inbound_faxes
		SET file_path = $2, page_count = $3, status = $4
		WHERE fax_id = $1
	`, faxID, filePath, pageCount, model.StatusDownloaded)
	if err != nil {
		return err
	}
	return requireRowAffected(result, faxID)
}

// RecordFaxExtraction stores the OCR text and the fields parsed from it,
// advancing the status to extracted. Extracted content lives in its own
// columns so a later reprocess never has to re-run OCR.
func (d Datasource) RecordFaxExtraction(ctx context.Context, faxID, text, patientName string, dob, encounterDate *time.Time) error {
	ctx, span := otel.Tracer("Fax").Start(ctx, "Recording fax extraction")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE inbound_faxes
		SET extracted_text = $2, patient_name = $3, patient_dob = $4, encounter_date = $5, status = $6
		WHERE fax_id = $1
	`, faxID, text, patientName, nullTime(dob), nullTime(encounterDate), model.StatusExtracted)
	if err != nil {
		return err
	}
	return requireRowAffected(result, faxID)
}

// LinkFaxPatient attaches the matched patient with the match confidence,
// advancing the status to matched.
func (d Datasource) LinkFaxPatient(ctx context.Context, faxID, patientID string, confidence float64) error {
	ctx, span := otel.Tracer("Fax").Start(ctx, "Linking fax to patient")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE inbound_faxes
		SET matched_patient_id = $2, match_confidence = $3, status = $4
		WHERE fax_id = $1
	`, faxID, patientID, confidence, model.StatusMatched)
	if err != nil {
		return err
	}
	return requireRowAffected(result, faxID)
}

// LinkFaxProviderRequest attributes the fax to the outbound leg it
// answers. Status is untouched; request attribution and the patient
// match advance the document independently.
func (d Datasource) LinkFaxProviderRequest(ctx context.Context, faxID, providerRequestID string) error {
	ctx, span := otel.Tracer("Fax").Start(ctx, "Linking fax to provider request")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE inbound_faxes SET provider_request_id = $2 WHERE fax_id = $1
	`, faxID, providerRequestID)
	if err != nil {
		return err
	}
	return requireRowAffected(result, faxID)
}

// GetFaxesByPatient retrieves every document matched to a patient in
// receipt order. Chronological compilation re-sorts in memory where
// encounter dates take precedence.
func (d Datasource) GetFaxesByPatient(ctx context.Context, patientID string) ([]*model.InboundFax, error) {
	ctx, span := otel.Tracer("Fax").Start(ctx, "Fetching faxes for patient")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+faxColumns+`
		FROM inbound_faxes
		WHERE matched_patient_id = $1
		ORDER BY received_at ASC, id ASC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFaxes(rows)
}

// GetFaxesByStatus retrieves faxes sitting in a given lifecycle status,
// oldest first. The poller and reprocess flows page through these.
func (d Datasource) GetFaxesByStatus(ctx context.Context, status string, limit int) ([]*model.InboundFax, error) {
	ctx, span := otel.Tracer("Fax").Start(ctx, "Fetching faxes by status")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+faxColumns+`
		FROM inbound_faxes
		WHERE status = $1
		ORDER BY received_at ASC, id ASC
		LIMIT $2
	`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFaxes(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFax(row rowScanner) (*model.InboundFax, error) {
	fax := &model.InboundFax{}
	var filePath, extractedText, patientName, matchedPatientID, providerRequestID sql.NullString
	var patientDOB, encounterDate sql.NullTime

	err := row.Scan(
		&fax.ID, &fax.FaxID, &fax.JobID, &fax.TransactionID, &fax.Carrier,
		&fax.FromNumber, &fax.ToNumber, &fax.PageCount, &fax.Status,
		&filePath, &extractedText, &patientName, &patientDOB, &encounterDate,
		&matchedPatientID, &fax.MatchConfidence, &providerRequestID,
		&fax.ReceivedAt, &fax.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Fax not found", err)
		}
		return nil, err
	}

	fax.FilePath = filePath.String
	fax.ExtractedText = extractedText.String
	fax.PatientName = patientName.String
	fax.MatchedPatientID = matchedPatientID.String
	fax.ProviderRequestID = providerRequestID.String
	if patientDOB.Valid {
		dob := patientDOB.Time
		fax.PatientDOB = &dob
	}
	if encounterDate.Valid {
		enc := encounterDate.Time
		fax.EncounterDate = &enc
	}
	return fax, nil
}

func scanFaxes(rows *sql.Rows) ([]*model.InboundFax, error) {
	var faxes []*model.InboundFax
	for rows.Next() {
		fax, err := scanFax(rows)
		if err != nil {
			return nil, err
		}
		faxes = append(faxes, fax)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return faxes, nil
}

func requireRowAffected(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Fax not found: "+id, nil)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
