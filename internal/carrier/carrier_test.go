package carrier

import (
	"context"
	"encoding/base64"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFaxNumber(t *testing.T) {
	assert.True(t, ValidateFaxNumber("+1 (617) 726-0000"))
	assert.True(t, ValidateFaxNumber("6177260000"))
	assert.False(t, ValidateFaxNumber(""))
	assert.False(t, ValidateFaxNumber("12345"))
	assert.False(t, ValidateFaxNumber("1234567890123456"))
}

func TestFormatE164(t *testing.T) {
	assert.Equal(t, "+16177260000", FormatE164("617-726-0000"))
	assert.Equal(t, "+16177260000", FormatE164("16177260000"))
	assert.Equal(t, "+16177260000", FormatE164("+1 (617) 726-0000"))
	assert.Equal(t, "+446177260000", FormatE164("446177260000"))
}

func TestIFaxDownload(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	pdf := []byte("%PDF-1.4 fake document")
	httpmock.RegisterResponder("POST", "https://api.ifaxapp.com/v1/customer/inbound/fax-download",
		httpmock.NewJsonResponderOrPanic(200, map[string]interface{}{
			"status": 1,
			"data":   base64.StdEncoding.EncodeToString(pdf),
		}))

	client := NewIFaxClient("", "test-token")
	got, err := client.Download(context.Background(), "12345", "67890")
	require.NoError(t, err)
	assert.Equal(t, pdf, got)
}

func TestIFaxDownloadNotReadyIsTransient(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "https://api.ifaxapp.com/v1/customer/inbound/fax-download",
		httpmock.NewJsonResponderOrPanic(200, map[string]interface{}{
			"status":  0,
			"message": "document not ready",
		}))

	client := NewIFaxClient("", "test-token")
	_, err := client.Download(context.Background(), "12345", "67890")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestIFaxDownloadClientErrorIsPermanent(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "https://api.ifaxapp.com/v1/customer/inbound/fax-download",
		httpmock.NewJsonResponderOrPanic(404, map[string]interface{}{
			"status":  0,
			"message": "unknown job",
		}))

	client := NewIFaxClient("", "test-token")
	_, err := client.Download(context.Background(), "missing", "67890")
	require.Error(t, err)
	assert.False(t, IsTransient(err))
}

func TestIFaxDownloadServerErrorIsTransient(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "https://api.ifaxapp.com/v1/customer/inbound/fax-download",
		httpmock.NewJsonResponderOrPanic(503, map[string]interface{}{
			"status":  0,
			"message": "upstream overloaded",
		}))

	client := NewIFaxClient("", "test-token")
	_, err := client.Download(context.Background(), "12345", "67890")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestIFaxSend(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "https://api.ifaxapp.com/v1/customer/fax-send",
		httpmock.NewJsonResponderOrPanic(200, map[string]interface{}{
			"status": 1,
			"jobId":  "98765",
		}))

	client := NewIFaxClient("", "test-token")
	files := []SendFile{EncodeAttachment("/tmp/request.pdf", []byte("%PDF-1.4"))}
	jobID, err := client.Send(context.Background(), "617-726-0000", "Medical Records Request", files, "")
	require.NoError(t, err)
	assert.Equal(t, "98765", jobID)
}

func TestIFaxSendRejectsInvalidNumber(t *testing.T) {
	client := NewIFaxClient("", "test-token")
	_, err := client.Send(context.Background(), "12345", "", nil, "")
	require.Error(t, err)
	assert.False(t, IsTransient(err))
}

func TestIFaxListInbound(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "https://api.ifaxapp.com/v1/customer/inbound/fax-list",
		httpmock.NewJsonResponderOrPanic(200, map[string]interface{}{
			"status": 1,
			"data": []map[string]interface{}{
				{
					"jobId":          "111",
					"transactionId":  "222",
					"faxNumber":      "+16177260000",
					"receiverNumber": "+16175550100",
					"faxCallStart":   "2024-05-10 14:30:00",
				},
			},
		}))

	client := NewIFaxClient("", "test-token")
	records, err := client.ListInbound(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "111", records[0].JobID)
	assert.Equal(t, "222", records[0].TransactionID)
	assert.Equal(t, "+16177260000", records[0].FromNumber)
}

func TestHumbleFaxDownloadDirectPDF(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	pdf := []byte("%PDF-1.4 humble document")
	httpmock.RegisterResponder("GET", "https://api.humblefax.com/fax/555",
		func(req *http.Request) (*http.Response, error) {
			resp := httpmock.NewBytesResponse(200, pdf)
			resp.Header.Set("Content-Type", "application/pdf")
			return resp, nil
		})

	client := NewHumbleFaxClient("", "key:secret")
	got, err := client.Download(context.Background(), "555", "")
	require.NoError(t, err)
	assert.Equal(t, pdf, got)
}

func TestHumbleFaxDownloadJSONEnvelope(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	pdf := []byte("%PDF-1.4 humble document")
	httpmock.RegisterResponder("GET", "https://api.humblefax.com/fax/556",
		httpmock.NewJsonResponderOrPanic(200, map[string]interface{}{
			"data": map[string]interface{}{
				"file": base64.StdEncoding.EncodeToString(pdf),
			},
		}))

	client := NewHumbleFaxClient("", "key:secret")
	got, err := client.Download(context.Background(), "556", "")
	require.NoError(t, err)
	assert.Equal(t, pdf, got)
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"jobId":"12345"}`)
	sig := SignPayload("topsecret", body)

	assert.True(t, VerifySignature("topsecret", body, sig))
	assert.False(t, VerifySignature("topsecret", body, "deadbeef"))
	assert.False(t, VerifySignature("topsecret", []byte(`{"jobId":"tampered"}`), sig))

	// No configured secret disables verification.
	assert.True(t, VerifySignature("", body, ""))
}
