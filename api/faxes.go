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
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chartfax/chartfax"
	model2 "github.com/chartfax/chartfax/api/model"
	"github.com/chartfax/chartfax/config"
	"github.com/chartfax/chartfax/internal/apierror"
	"github.com/chartfax/chartfax/internal/carrier"
	"github.com/chartfax/chartfax/model"
)

const signatureHeader = "X-Signature"

// readSignedBody reads the raw request body and checks its HMAC
// signature against the given secret. Verification happens on the raw
// bytes, before any JSON decoding touches them.
func readSignedBody(c *gin.Context, secret string) ([]byte, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return nil, false
	}
	if !carrier.VerifySignature(secret, body, c.GetHeader(signatureHeader)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook signature"})
		return nil, false
	}
	return body, true
}

func (a Api) IFaxWebhook(c *gin.Context) {
	conf, err := config.Fetch()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	body, ok := readSignedBody(c, conf.Carriers.IFax.WebhookSecret)
	if !ok {
		return
	}

	var hook model2.IFaxWebhook
	if err := json.Unmarshal(body, &hook); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := hook.ValidateIFaxWebhook(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	fax := &model.InboundFax{
		JobID:         hook.JobID,
		TransactionID: hook.TransactionID,
		Carrier:       carrier.IFax,
		FromNumber:    hook.FaxNumber,
		ToNumber:      hook.ReceiverNumber,
		ReceivedAt:    chartfax.ParseCarrierTime(hook.FaxCallStart),
	}

	claimed, created, err := a.chartfax.IngestFax(c.Request.Context(), fax)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, claimed)
}

func (a Api) HumbleFaxWebhook(c *gin.Context) {
	conf, err := config.Fetch()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	body, ok := readSignedBody(c, conf.Carriers.HumbleFax.WebhookSecret)
	if !ok {
		return
	}

	var hook model2.HumbleFaxWebhook
	if err := json.Unmarshal(body, &hook); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := hook.ValidateHumbleFaxWebhook(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	incoming := hook.Data.IncomingFax
	fax := &model.InboundFax{
		// HumbleFax has a single fax ID; it serves as both halves of
		// the carrier identity.
		JobID:         incoming.ID,
		TransactionID: incoming.ID,
		Carrier:       carrier.HumbleFax,
		FromNumber:    incoming.FromNumber,
		ToNumber:      incoming.ToNumber,
		ReceivedAt:    chartfax.ParseCarrierTime(incoming.Time),
	}

	claimed, created, err := a.chartfax.IngestFax(c.Request.Context(), fax)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, claimed)
}

func (a Api) FaxStatusWebhook(c *gin.Context) {
	conf, err := config.Fetch()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	body, ok := readSignedBody(c, conf.Carriers.IFax.WebhookSecret)
	if !ok {
		return
	}

	var hook model2.FaxStatusWebhook
	if err := json.Unmarshal(body, &hook); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := hook.ValidateFaxStatusWebhook(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	leg, err := a.chartfax.ApplyDeliveryReport(c.Request.Context(), hook.JobID, hook.Status)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, leg)
}

func (a Api) GetFax(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.chartfax.GetFax(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetFaxes looks up faxes either by carrier identity
// (?job_id=&transaction_id=) or by pipeline status (?status=&limit=).
func (a Api) GetFaxes(c *gin.Context) {
	jobID := c.Query("job_id")
	transactionID := c.Query("transaction_id")
	if jobID != "" && transactionID != "" {
		resp, err := a.chartfax.FindFaxByCarrierIDs(c.Request.Context(), jobID, transactionID)
		if err != nil {
			c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	status := c.Query("status")
	if status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pass job_id and transaction_id, or status"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	resp, err := a.chartfax.GetFaxesByStatus(c.Request.Context(), status, limit)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (a Api) ReprocessFax(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	resp, err := a.chartfax.ReprocessFax(c.Request.Context(), id)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (a Api) PollIFax(c *gin.Context) {
	claimed, err := a.chartfax.PollInboundFaxes(c.Request.Context())
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"claimed": claimed})
}
