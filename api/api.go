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
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/chartfax/chartfax"
	"github.com/chartfax/chartfax/api/middleware"
	"github.com/chartfax/chartfax/config"
)

type Api struct {
	chartfax *chartfax.Chartfax
	router   *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router

	// Carrier-facing surface. Signature checks happen inside the
	// handlers because each carrier signs differently.
	router.POST("/webhooks/ifax", a.IFaxWebhook)
	router.POST("/webhooks/humblefax", a.HumbleFaxWebhook)
	router.POST("/webhooks/fax-status", a.FaxStatusWebhook)

	router.GET("/faxes/:id", a.GetFax)
	router.GET("/faxes", a.GetFaxes)
	router.POST("/faxes/:id/reprocess", a.ReprocessFax)
	router.POST("/poll/ifax", a.PollIFax)

	router.POST("/patients", a.CreatePatient)
	router.GET("/patients/:id", a.GetPatient)
	router.GET("/patients", a.GetAllPatients)
	router.GET("/patients/:id/records", a.GetPatientRecords)
	router.POST("/patients/:id/compile", a.CompilePatientRecord)

	router.POST("/providers", a.CreateProvider)
	router.GET("/providers/:id", a.GetProvider)
	router.GET("/providers", a.GetAllProviders)

	router.POST("/record-requests", a.CreateRecordRequest)
	router.GET("/record-requests/:id", a.GetRecordRequest)
	router.POST("/record-requests/legs/:id/send", a.SendProviderRequest)

	return a.router
}

func NewAPI(c *chartfax.Chartfax) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	r.Use(otelgin.Middleware(conf.ProjectName))
	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		// Webhooks stay open; carriers authenticate with payload
		// signatures instead of the management secret.
		auth := middleware.SecretKeyAuthMiddleware()
		r.Use(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/webhooks") {
				c.Next()
				return
			}
			auth(c)
		})
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{chartfax: c, router: r}
}
