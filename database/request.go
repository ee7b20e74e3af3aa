package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/wacul/ptr"
	"go.opentelemetry.io/otel"

	"github.com/chartfax/chartfax/internal/apierror"
	"github.com/chartfax/chartfax/model"
)

// CreateRecordRequest opens a new record request for a patient.
func (d Datasource) CreateRecordRequest(ctx context.Context, request model.RecordRequest) (model.RecordRequest, error) {
	ctx, span := otel.Tracer("RecordRequest").Start(ctx, "Creating record request")
	defer span.End()

	request.RequestID = GenerateUUIDWithSuffix("req")
	request.Status = model.RequestStatusOpen
	request.CreatedAt = time.Now()

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO record_requests (request_id, patient_id, status, created_at)
		VALUES ($1, $2, $3, $4)
	`, request.RequestID, request.PatientID, request.Status, request.CreatedAt)
	if err != nil {
		return request, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create record request", err)
	}
	return request, nil
}

// GetRecordRequest retrieves a record request by ID.
func (d Datasource) GetRecordRequest(ctx context.Context, id string) (*model.RecordRequest, error) {
	ctx, span := otel.Tracer("RecordRequest").Start(ctx, "Fetching record request")
	defer span.End()

	request := &model.RecordRequest{}
	var completedAt sql.NullTime
	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, request_id, patient_id, status, created_at, completed_at
		FROM record_requests
		WHERE request_id = $1
	`, id).Scan(&request.ID, &request.RequestID, &request.PatientID, &request.Status, &request.CreatedAt, &completedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Record request not found", err)
		}
		return nil, err
	}
	if completedAt.Valid {
		request.CompletedAt = ptr.Time(completedAt.Time)
	}
	return request, nil
}

// GetRecordRequestsByPatient retrieves a patient's record requests,
// newest first.
func (d Datasource) GetRecordRequestsByPatient(ctx context.Context, patientID string) ([]*model.RecordRequest, error) {
	ctx, span := otel.Tracer("RecordRequest").Start(ctx, "Fetching record requests for patient")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, request_id, patient_id, status, created_at, completed_at
		FROM record_requests
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*model.RecordRequest
	for rows.Next() {
		request := &model.RecordRequest{}
		var completedAt sql.NullTime
		if err := rows.Scan(&request.ID, &request.RequestID, &request.PatientID, &request.Status, &request.CreatedAt, &completedAt); err != nil {
			return nil, err
		}
		if completedAt.Valid {
			request.CompletedAt = ptr.Time(completedAt.Time)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

// CompleteRecordRequest transitions a request from open to complete,
// but only when it has at least one leg and every leg is settled. The
// guards live in the statement itself so two workers finishing the last
// two legs concurrently cannot both complete the request: the row
// filter on status = 'open' lets exactly one UPDATE through.
func (d Datasource) CompleteRecordRequest(ctx context.Context, requestID string) (bool, error) {
	ctx, span := otel.Tracer("RecordRequest").Start(ctx, "Completing record request")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE record_requests r
		SET status = $2, completed_at = $3
		WHERE r.request_id = $1
		  AND r.status = $4
		  AND EXISTS (
			SELECT 1 FROM provider_requests pr WHERE pr.request_id = r.request_id
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM provider_requests pr
			WHERE pr.request_id = r.request_id
			  AND pr.status NOT IN ($5, $6)
		  )
	`, requestID, model.RequestStatusComplete, time.Now(), model.RequestStatusOpen,
		model.LegStatusResponseReceived, model.LegStatusFaxFailed)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// CreateProviderRequest creates an outbound leg on a record request.
func (d Datasource) CreateProviderRequest(ctx context.Context, leg model.ProviderRequest) (model.ProviderRequest, error) {
	ctx, span := otel.Tracer("RecordRequest").Start(ctx, "Creating provider request leg")
	defer span.End()

	leg.ProviderRequestID = GenerateUUIDWithSuffix("leg")
	if leg.Status == "" {
		leg.Status = model.LegStatusPending
	}
	leg.CreatedAt = time.Now()

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO provider_requests (provider_request_id, request_id, provider_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, leg.ProviderRequestID, leg.RequestID, leg.ProviderID, leg.Status, leg.CreatedAt)
	if err != nil {
		return leg, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create provider request", err)
	}
	return leg, nil
}

const providerRequestColumns = `
	pr.id, pr.provider_request_id, pr.request_id, pr.provider_id,
	p.name, p.fax_number, pr.status, pr.outbound_job_id,
	pr.response_fax_id, pr.sent_at, pr.responded_at, pr.created_at
`

// GetProviderRequest retrieves a leg by ID along with its provider's
// name and fax line.
func (d Datasource) GetProviderRequest(ctx context.Context, id string) (*model.ProviderRequest, error) {
	ctx, span := otel.Tracer("RecordRequest").Start(ctx, "Fetching provider request leg")
	defer span.End()

	row := d.Conn.QueryRowContext(ctx, `
		SELECT `+providerRequestColumns+`
		FROM provider_requests pr
		JOIN providers p ON p.provider_id = pr.provider_id
		WHERE pr.provider_request_id = $1
	`, id)
	leg, err := scanProviderRequest(row)
	if err == sql.ErrNoRows {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "Provider request not found", err)
	}
	return leg, err
}

// GetProviderRequestsByRequest retrieves every leg of a record request
// in creation order.
func (d Datasource) GetProviderRequestsByRequest(ctx context.Context, requestID string) ([]*model.ProviderRequest, error) {
	ctx, span := otel.Tracer("RecordRequest").Start(ctx, "Fetching legs for record request")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+providerRequestColumns+`
		FROM provider_requests pr
		JOIN providers p ON p.provider_id = pr.provider_id
		WHERE pr.request_id = $1
		ORDER BY pr.id ASC
	`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProviderRequests(rows)
}

// GetOpenProviderRequests retrieves legs still awaiting a response,
// oldest first. These are the candidates an inbound fax can be
// attributed to.
func (d Datasource) GetOpenProviderRequests(ctx context.Context) ([]*model.ProviderRequest, error) {
	ctx, span := otel.Tracer("RecordRequest").Start(ctx, "Fetching open provider requests")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+providerRequestColumns+`
		FROM provider_requests pr
		JOIN providers p ON p.provider_id = pr.provider_id
		WHERE pr.status IN ($1, $2)
		ORDER BY pr.id ASC
	`, model.LegStatusFaxSent, model.LegStatusFaxDelivered)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProviderRequests(rows)
}

// MarkLegSent transitions a leg from pending to fax_sent and records
// the carrier job that carries it.
func (d Datasource) MarkLegSent(ctx context.Context, legID, outboundJobID string) error {
	ctx, span := otel.Tracer("RecordRequest").Start(ctx, "Marking leg sent")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE provider_requests
		SET status = $2, outbound_job_id = $3, sent_at = $4
		WHERE provider_request_id = $1 AND status = $5
	`, legID, model.LegStatusFaxSent, outboundJobID, time.Now(), model.LegStatusPending)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apierror.NewAPIError(apierror.ErrConflict, "Leg is not pending: "+legID, nil)
	}
	return nil
}

// UpdateLegDeliveryStatus applies a carrier delivery report to the leg
// carrying the given outbound job. Legs that already received a response
// are left alone; a late delivery report must not regress them.
func (d Datasource) UpdateLegDeliveryStatus(ctx context.Context, outboundJobID, status string) (*model.ProviderRequest, error) {
	ctx, span := otel.Tracer("RecordRequest").Start(ctx, "Updating leg delivery status")
	defer span.End()

	var legID string
	err := d.Conn.QueryRowContext(ctx, `
		UPDATE provider_requests
		SET status = $2
		WHERE outbound_job_id = $1
		  AND status IN ($3, $4, $5)
		RETURNING provider_request_id
	`, outboundJobID, status, model.LegStatusPending, model.LegStatusFaxSent, model.LegStatusFaxDelivered).Scan(&legID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "No updatable leg for job "+outboundJobID, err)
		}
		return nil, err
	}
	return d.GetProviderRequest(ctx, legID)
}

// MarkResponseReceived transitions a leg to response_received and
// attaches the inbound fax that answered it. The compare-and-set on
// status means only one of several concurrent attributions wins; callers
// check the returned flag before counting the leg as newly settled.
func (d Datasource) MarkResponseReceived(ctx context.Context, legID, responseFaxID string) (bool, error) {
	ctx, span := otel.Tracer("RecordRequest").Start(ctx, "Marking leg response received")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE provider_requests
		SET status = $2, response_fax_id = $3, responded_at = $4
		WHERE provider_request_id = $1 AND status IN ($5, $6)
	`, legID, model.LegStatusResponseReceived, responseFaxID, time.Now(),
		model.LegStatusFaxSent, model.LegStatusFaxDelivered)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func scanProviderRequest(row rowScanner) (*model.ProviderRequest, error) {
	leg := &model.ProviderRequest{}
	var outboundJobID, responseFaxID sql.NullString
	var sentAt, respondedAt sql.NullTime

	err := row.Scan(
		&leg.ID, &leg.ProviderRequestID, &leg.RequestID, &leg.ProviderID,
		&leg.ProviderName, &leg.ProviderFaxNumber, &leg.Status,
		&outboundJobID, &responseFaxID, &sentAt, &respondedAt, &leg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	leg.OutboundJobID = outboundJobID.String
	leg.ResponseFaxID = responseFaxID.String
	if sentAt.Valid {
		leg.SentAt = ptr.Time(sentAt.Time)
	}
	if respondedAt.Valid {
		leg.RespondedAt = ptr.Time(respondedAt.Time)
	}
	return leg, nil
}

func scanProviderRequests(rows *sql.Rows) ([]*model.ProviderRequest, error) {
	var legs []*model.ProviderRequest
	for rows.Next() {
		leg, err := scanProviderRequest(rows)
		if err != nil {
			return nil, err
		}
		legs = append(legs, leg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return legs, nil
}
