package carrier

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/chartfax/chartfax/internal/request"
)

// IFaxClient calls the iFax customer API. Authentication is a bearer
// access token sent in the accessToken header on every call.
type IFaxClient struct {
	BaseURL     string
	AccessToken string
}

// NewIFaxClient creates an iFax API client. An empty baseURL falls back
// to the production endpoint.
func NewIFaxClient(baseURL, accessToken string) *IFaxClient {
	if baseURL == "" {
		baseURL = "https://api.ifaxapp.com"
	}
	return &IFaxClient{BaseURL: baseURL, AccessToken: accessToken}
}

type iFaxDownloadResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

type iFaxSendResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	JobID   string `json:"jobId"`
	Data    struct {
		JobID string `json:"jobId"`
	} `json:"data"`
}

type iFaxInboundEntry struct {
	JobID          string `json:"jobId"`
	TransactionID  string `json:"transactionId"`
	FaxNumber      string `json:"faxNumber"`
	ReceiverNumber string `json:"receiverNumber"`
	FaxCallStart   string `json:"faxCallStart"`
}

type iFaxListResponse struct {
	Status  int                `json:"status"`
	Message string             `json:"message"`
	Data    []iFaxInboundEntry `json:"data"`
}

// Download fetches the PDF for a received fax. The API wraps the file
// in base64 inside a JSON envelope with status 1 meaning success.
func (c *IFaxClient) Download(ctx context.Context, jobID, transactionID string) ([]byte, error) {
	payload := map[string]string{"jobId": jobID, "transactionId": transactionID}
	body, err := request.ToJsonReq(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/customer/inbound/fax-download", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accessToken", c.AccessToken)

	var downloadResp iFaxDownloadResponse
	resp, err := request.Call(req, &downloadResp)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			Carrier:    IFax,
			Operation:  "download",
			StatusCode: resp.StatusCode,
			Message:    downloadResp.Message,
			Transient:  resp.StatusCode >= 500,
		}
	}
	if downloadResp.Status != 1 {
		// The carrier returns status 0 with HTTP 200 while the document
		// is still being written on their side. Treat it as retryable.
		return nil, &APIError{
			Carrier:    IFax,
			Operation:  "download",
			StatusCode: resp.StatusCode,
			Message:    downloadResp.Message,
			Transient:  true,
		}
	}
	if downloadResp.Data == "" {
		return nil, &APIError{
			Carrier:   IFax,
			Operation: "download",
			Message:   "no file data in response",
			Transient: false,
		}
	}

	pdf, err := base64.StdEncoding.DecodeString(downloadResp.Data)
	if err != nil {
		return nil, fmt.Errorf("decoding fax payload: %w", err)
	}
	return pdf, nil
}

// SendFile is a single attachment on an outbound fax.
type SendFile struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// Send submits an outbound fax and returns the carrier job ID. The
// destination number is validated and normalized to E.164 first.
func (c *IFaxClient) Send(ctx context.Context, toNumber, coverText string, files []SendFile, callbackURL string) (string, error) {
	if !ValidateFaxNumber(toNumber) {
		return "", &APIError{
			Carrier:   IFax,
			Operation: "send",
			Message:   fmt.Sprintf("invalid fax number: %s", toNumber),
			Transient: false,
		}
	}

	payload := map[string]interface{}{
		"faxNumber": FormatE164(toNumber),
		"files":     files,
		"coverPage": map[string]string{"text": coverText},
	}
	if callbackURL != "" {
		payload["webhook"] = map[string]string{"statusUrl": callbackURL}
	}

	body, err := request.ToJsonReq(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/customer/fax-send", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("accessToken", c.AccessToken)

	var sendResp iFaxSendResponse
	resp, err := request.Call(req, &sendResp)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{
			Carrier:    IFax,
			Operation:  "send",
			StatusCode: resp.StatusCode,
			Message:    sendResp.Message,
			Transient:  resp.StatusCode >= 500,
		}
	}

	jobID := sendResp.JobID
	if jobID == "" {
		jobID = sendResp.Data.JobID
	}
	if sendResp.Status != 1 || jobID == "" {
		return "", &APIError{
			Carrier:    IFax,
			Operation:  "send",
			StatusCode: resp.StatusCode,
			Message:    sendResp.Message,
			Transient:  false,
		}
	}
	return jobID, nil
}

// InboundFaxRecord is one entry from the carrier's inbound list, used by
// the polling fallback when webhooks were missed.
type InboundFaxRecord struct {
	JobID         string
	TransactionID string
	FromNumber    string
	ToNumber      string
	ReceivedAt    string
}

// ListInbound fetches recently received faxes from the carrier. The
// poller feeds these through the same ingest path as webhooks; already
// seen (jobID, transactionID) pairs are dropped there.
func (c *IFaxClient) ListInbound(ctx context.Context) ([]InboundFaxRecord, error) {
	body, err := request.ToJsonReq(map[string]string{})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/customer/inbound/fax-list", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accessToken", c.AccessToken)

	var listResp iFaxListResponse
	resp, err := request.Call(req, &listResp)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK || listResp.Status != 1 {
		return nil, &APIError{
			Carrier:    IFax,
			Operation:  "list",
			StatusCode: resp.StatusCode,
			Message:    listResp.Message,
			Transient:  resp.StatusCode >= 500,
		}
	}

	records := make([]InboundFaxRecord, 0, len(listResp.Data))
	for _, entry := range listResp.Data {
		records = append(records, InboundFaxRecord{
			JobID:         entry.JobID,
			TransactionID: entry.TransactionID,
			FromNumber:    entry.FaxNumber,
			ToNumber:      entry.ReceiverNumber,
			ReceivedAt:    entry.FaxCallStart,
		})
	}
	return records, nil
}

// EncodeAttachment reads nothing from disk; it wraps already-loaded file
// bytes as a named base64 attachment for Send.
func EncodeAttachment(path string, data []byte) SendFile {
	return SendFile{
		Name: filepath.Base(path),
		Data: base64.StdEncoding.EncodeToString(data),
	}
}
