package carrier

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/chartfax/chartfax/internal/request"
)

// HumbleFaxClient calls the HumbleFax API using HTTP basic auth. The
// access key and secret key map to username and password.
type HumbleFaxClient struct {
	BaseURL   string
	AccessKey string
	SecretKey string
}

// NewHumbleFaxClient creates a HumbleFax API client. An empty baseURL
// falls back to the production endpoint. The accessToken parameter is
// "accessKey:secretKey".
func NewHumbleFaxClient(baseURL, accessToken string) *HumbleFaxClient {
	if baseURL == "" {
		baseURL = "https://api.humblefax.com"
	}
	key, secret, _ := strings.Cut(accessToken, ":")
	return &HumbleFaxClient{BaseURL: baseURL, AccessKey: key, SecretKey: secret}
}

type humbleFaxDownloadResponse struct {
	Message string `json:"message"`
	Data    struct {
		File string `json:"file"`
	} `json:"data"`
}

// Download fetches the PDF for a received fax. HumbleFax identifies
// inbound faxes by a single ID, so transactionID is ignored. The
// response is either the PDF itself or a JSON envelope with the file
// base64-encoded.
func (c *HumbleFaxClient) Download(ctx context.Context, jobID, _ string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/fax/%s", c.BaseURL, jobID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Basic "+request.BasicAuth(c.AccessKey, c.SecretKey))

	resp, err := request.CallRaw(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{
			Carrier:    HumbleFax,
			Operation:  "download",
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Transient:  resp.StatusCode >= 500,
		}
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/pdf") {
		return io.ReadAll(resp.Body)
	}

	var downloadResp humbleFaxDownloadResponse
	if err := json.NewDecoder(resp.Body).Decode(&downloadResp); err != nil {
		return nil, fmt.Errorf("decoding fax download response: %w", err)
	}
	if downloadResp.Data.File == "" {
		return nil, &APIError{
			Carrier:   HumbleFax,
			Operation: "download",
			Message:   "no pdf data in response",
			Transient: false,
		}
	}
	pdf, err := base64.StdEncoding.DecodeString(downloadResp.Data.File)
	if err != nil {
		return nil, fmt.Errorf("decoding fax payload: %w", err)
	}
	return pdf, nil
}
