package ocr

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fax.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644))
	return path
}

func TestExtractText(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "http://ocr.local/extract",
		httpmock.NewJsonResponderOrPanic(200, map[string]interface{}{
			"text": "Patient Name: Sarah Johnson\nDOB: 03/15/1980",
		}))

	extractor := &HTTPExtractor{URL: "http://ocr.local/extract", Timeout: 5 * time.Second}
	text, err := extractor.ExtractText(context.Background(), writeTempPDF(t))
	require.NoError(t, err)
	assert.Contains(t, text, "Sarah Johnson")
}

func TestExtractTextServiceError(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "http://ocr.local/extract",
		httpmock.NewJsonResponderOrPanic(500, map[string]interface{}{
			"message": "engine crashed",
		}))

	extractor := &HTTPExtractor{URL: "http://ocr.local/extract", Timeout: 5 * time.Second}
	_, err := extractor.ExtractText(context.Background(), writeTempPDF(t))
	assert.Error(t, err)
}

func TestExtractTextMissingFile(t *testing.T) {
	extractor := &HTTPExtractor{URL: "http://ocr.local/extract", Timeout: 5 * time.Second}
	_, err := extractor.ExtractText(context.Background(), "/nonexistent/fax.pdf")
	assert.Error(t, err)
}

func TestExtractTextUnconfigured(t *testing.T) {
	extractor := &HTTPExtractor{}
	_, err := extractor.ExtractText(context.Background(), "/tmp/fax.pdf")
	assert.Error(t, err)
}
