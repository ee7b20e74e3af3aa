// Package ocr extracts text from fax documents through an external OCR
// HTTP service. The service URL and credentials come from configuration;
// swapping engines is a config change, not a code change.
package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/chartfax/chartfax/config"
	"github.com/chartfax/chartfax/internal/request"
)

// TextExtractor turns a PDF on disk into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// HTTPExtractor posts documents to a configured OCR service and returns
// the recognized text.
type HTTPExtractor struct {
	URL           string
	Authorization string
	Timeout       time.Duration
}

// NewExtractorFromConfig builds an HTTPExtractor from the loaded
// configuration.
func NewExtractorFromConfig(cnf *config.Configuration) *HTTPExtractor {
	timeout := time.Duration(cnf.OCR.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &HTTPExtractor{
		URL:           cnf.OCR.Url,
		Authorization: cnf.OCR.Headers.Authorization,
		Timeout:       timeout,
	}
}

type ocrResponse struct {
	Text    string `json:"text"`
	Message string `json:"message"`
}

// ExtractText reads the document and submits it for recognition. The
// service receives the file base64-encoded and responds with the full
// concatenated text of every page.
func (e *HTTPExtractor) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	if e.URL == "" {
		return "", fmt.Errorf("ocr service url not configured")
	}

	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return "", errors.Wrap(err, "reading document")
	}

	body, err := request.ToJsonReq(map[string]string{
		"document": base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, body)
	if err != nil {
		return "", err
	}
	if e.Authorization != "" {
		req.Header.Set("Authorization", e.Authorization)
	}

	var ocrResp ocrResponse
	resp, err := request.Call(req, &ocrResp)
	if err != nil {
		return "", errors.Wrap(err, "calling ocr service")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocr service returned HTTP %d: %s", resp.StatusCode, ocrResp.Message)
	}
	return ocrResp.Text, nil
}
