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

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/chartfax/chartfax/api/middleware"
	"github.com/chartfax/chartfax/config"
	"github.com/chartfax/chartfax/internal/carrier"
)

type TestRequest struct {
	Payload  io.Reader
	Router   *gin.Engine
	Response interface{}
	Method   string
	Route    string
	Header   map[string]string
}

func SetUpTestRequest(s TestRequest) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(s.Method, s.Route, s.Payload)
	for key, value := range s.Header {
		req.Header.Set(key, value)
	}
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	s.Router.ServeHTTP(resp, req)

	err := json.NewDecoder(resp.Body).Decode(&s.Response)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// setupRouter builds a router around a nil service. Every test here
// exercises requests that are rejected before any service method runs,
// so no database or queue is needed.
func setupRouter(conf *config.Configuration) *gin.Engine {
	config.MockConfig(conf)
	return NewAPI(nil).Router()
}

func TestWebhookSignatureRejected(t *testing.T) {
	secret := "carrier-shared-secret"
	router := setupRouter(&config.Configuration{
		Carriers: config.CarriersConfig{
			IFax: config.CarrierConfig{WebhookSecret: secret},
		},
	})

	body := []byte(`{"jobId":"job_1","transactionId":"txn_1"}`)
	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  bytes.NewReader(body),
		Response: &response,
		Method:   "POST",
		Route:    "/webhooks/ifax",
		Router:   router,
		Header:   map[string]string{"X-Signature": "deadbeef"},
	})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestIFaxWebhookRejectsMissingIdentifiers(t *testing.T) {
	secret := "carrier-shared-secret"
	router := setupRouter(&config.Configuration{
		Carriers: config.CarriersConfig{
			IFax: config.CarrierConfig{WebhookSecret: secret},
		},
	})

	// Signed correctly but missing transactionId.
	body := []byte(`{"jobId":"job_1","faxNumber":"+16175550100"}`)
	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  bytes.NewReader(body),
		Response: &response,
		Method:   "POST",
		Route:    "/webhooks/ifax",
		Router:   router,
		Header:   map[string]string{"X-Signature": carrier.SignPayload(secret, body)},
	})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestFaxStatusWebhookRejectsMissingJobID(t *testing.T) {
	router := setupRouter(&config.Configuration{})

	body := []byte(`{"status":"delivered"}`)
	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  bytes.NewReader(body),
		Response: &response,
		Method:   "POST",
		Route:    "/webhooks/fax-status",
		Router:   router,
	})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreatePatientValidation(t *testing.T) {
	router := setupRouter(&config.Configuration{})

	tests := []struct {
		name    string
		payload string
	}{
		{
			name:    "Missing Name",
			payload: `{"dob":"1984-03-07"}`,
		},
		{
			name:    "Bad DOB Format",
			payload: `{"first_name":"Sarah","last_name":"Johnson","dob":"03/07/1984"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var response map[string]interface{}
			resp, err := SetUpTestRequest(TestRequest{
				Payload:  bytes.NewReader([]byte(tt.payload)),
				Response: &response,
				Method:   "POST",
				Route:    "/patients",
				Router:   router,
			})
			if err != nil {
				t.Fatal(err)
			}
			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
}

func TestCreateRecordRequestNeedsProviders(t *testing.T) {
	router := setupRouter(&config.Configuration{})

	body := []byte(`{"patient_id":"pat_123","provider_ids":[]}`)
	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  bytes.NewReader(body),
		Response: &response,
		Method:   "POST",
		Route:    "/record-requests",
		Router:   router,
	})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetFaxesNeedsLookupParams(t *testing.T) {
	router := setupRouter(&config.Configuration{})

	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  nil,
		Response: &response,
		Method:   "GET",
		Route:    "/faxes",
		Router:   router,
	})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSecretKeyGuardsManagementRoutes(t *testing.T) {
	router := setupRouter(&config.Configuration{
		Server: config.ServerConfig{Secure: true, SecretKey: "management-key"},
	})

	tests := []struct {
		name         string
		route        string
		method       string
		header       map[string]string
		expectedCode int
	}{
		{
			name:         "Missing Key",
			route:        "/",
			method:       "GET",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Wrong Key",
			route:        "/",
			method:       "GET",
			header:       map[string]string{middleware.KeyHeader: "not-the-key"},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Valid Key",
			route:        "/",
			method:       "GET",
			header:       map[string]string{middleware.KeyHeader: "management-key"},
			expectedCode: http.StatusOK,
		},
		{
			// Webhooks bypass the management key and fall through to
			// payload validation instead.
			name:         "Webhook Exempt",
			route:        "/webhooks/fax-status",
			method:       "POST",
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var response interface{}
			resp, err := SetUpTestRequest(TestRequest{
				Payload:  bytes.NewReader([]byte(`{}`)),
				Response: &response,
				Method:   tt.method,
				Route:    tt.route,
				Router:   router,
				Header:   tt.header,
			})
			if err != nil {
				t.Fatal(err)
			}
			assert.Equal(t, tt.expectedCode, resp.Code)
		})
	}
}
