package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"

	"github.com/chartfax/chartfax/internal/apierror"
	"github.com/chartfax/chartfax/model"
)

// CreatePatient inserts a new patient into the registry. Date of birth
// is truncated to the day; matching never cares about the time part.
func (d Datasource) CreatePatient(ctx context.Context, patient model.Patient) (model.Patient, error) {
	ctx, span := otel.Tracer("Patient").Start(ctx, "Creating patient record")
	defer span.End()

	metaDataJSON, err := json.Marshal(patient.MetaData)
	if err != nil {
		return patient, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	patient.PatientID = GenerateUUIDWithSuffix("pat")
	patient.CreatedAt = time.Now()
	patient.DOB = patient.DOB.Truncate(24 * time.Hour)

	_, err = d.Conn.ExecContext(ctx, `
		INSERT INTO patients (patient_id, first_name, last_name, dob, meta_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, patient.PatientID, patient.FirstName, patient.LastName, patient.DOB, metaDataJSON, patient.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return patient, apierror.NewAPIError(apierror.ErrConflict, "Patient with this ID already exists", err)
		}
		return patient, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create patient", err)
	}
	return patient, nil
}

// GetPatientByID retrieves a patient by ID.
func (d Datasource) GetPatientByID(ctx context.Context, id string) (*model.Patient, error) {
	ctx, span := otel.Tracer("Patient").Start(ctx, "Fetching patient from db")
	defer span.End()

	patient := &model.Patient{}
	var metaDataJSON []byte
	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, patient_id, first_name, last_name, dob, meta_data, created_at
		FROM patients
		WHERE patient_id = $1
	`, id).Scan(&patient.ID, &patient.PatientID, &patient.FirstName, &patient.LastName, &patient.DOB, &metaDataJSON, &patient.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Patient not found", err)
		}
		return nil, err
	}
	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &patient.MetaData); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
		}
	}
	return patient, nil
}

// GetAllPatients retrieves patients with pagination, newest first.
func (d Datasource) GetAllPatients(ctx context.Context, limit, offset int) ([]model.Patient, error) {
	ctx, span := otel.Tracer("Patient").Start(ctx, "Fetching all patients")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, patient_id, first_name, last_name, dob, meta_data, created_at
		FROM patients
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPatients(rows)
}

// GetPatientsByDOB retrieves every patient born on the given date. The
// id ASC ordering makes the first-candidate tie-break deterministic:
// the earliest registered patient wins an exact score tie.
func (d Datasource) GetPatientsByDOB(ctx context.Context, dob time.Time) ([]model.Patient, error) {
	ctx, span := otel.Tracer("Patient").Start(ctx, "Fetching patients by date of birth")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, patient_id, first_name, last_name, dob, meta_data, created_at
		FROM patients
		WHERE dob = $1
		ORDER BY id ASC
	`, dob.Truncate(24*time.Hour))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPatients(rows)
}

// UpdatePatient updates a patient's demographic fields.
func (d Datasource) UpdatePatient(ctx context.Context, patient *model.Patient) error {
	ctx, span := otel.Tracer("Patient").Start(ctx, "Updating patient record")
	defer span.End()

	metaDataJSON, err := json.Marshal(patient.MetaData)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE patients
		SET first_name = $2, last_name = $3, dob = $4, meta_data = $5
		WHERE patient_id = $1
	`, patient.PatientID, patient.FirstName, patient.LastName, patient.DOB.Truncate(24*time.Hour), metaDataJSON)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Patient not found: "+patient.PatientID, nil)
	}
	return nil
}

// DeletePatient removes a patient from the registry.
func (d Datasource) DeletePatient(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("Patient").Start(ctx, "Deleting patient record")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx, `DELETE FROM patients WHERE patient_id = $1`, id)
	return err
}

func scanPatients(rows *sql.Rows) ([]model.Patient, error) {
	var patients []model.Patient
	for rows.Next() {
		patient := model.Patient{}
		var metaDataJSON []byte
		err := rows.Scan(&patient.ID, &patient.PatientID, &patient.FirstName, &patient.LastName, &patient.DOB, &metaDataJSON, &patient.CreatedAt)
		if err != nil {
			return nil, err
		}
		if len(metaDataJSON) > 0 {
			if err := json.Unmarshal(metaDataJSON, &patient.MetaData); err != nil {
				return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
			}
		}
		patients = append(patients, patient)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return patients, nil
}
