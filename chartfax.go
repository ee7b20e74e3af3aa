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

package chartfax

import (
	"embed"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/chartfax/chartfax/config"
	"github.com/chartfax/chartfax/database"
	"github.com/chartfax/chartfax/internal/carrier"
	"github.com/chartfax/chartfax/internal/notification"
	"github.com/chartfax/chartfax/internal/ocr"
	redis_db "github.com/chartfax/chartfax/internal/redis-db"
)

var tracer = otel.Tracer("chartfax.pipeline")

func logAndRecordError(span trace.Span, msg string, err error) error {
	span.RecordError(err)
	logrus.Error(msg, err)
	return err
}

// Chartfax represents the main struct for the Chartfax application.
type Chartfax struct {
	queue      *Queue
	redis      redis.UniversalClient
	datasource database.IDataSource
	carriers   map[string]carrier.Downloader
	extractor  ocr.TextExtractor
}

//go:embed sql/*.sql
var SQLFiles embed.FS

// NewChartfax initializes a new instance of Chartfax with the provided database datasource.
// It fetches the configuration and initializes the Redis client, task queue,
// carrier clients, and OCR extractor.
func NewChartfax(db database.IDataSource) (*Chartfax, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient, err := redis_db.NewRedisClient([]string{fmt.Sprintf("redis://%s", configuration.Redis.Dns)}, configuration.Redis.SkipTLSVerify)
	if err != nil {
		return nil, err
	}
	newQueue := NewQueue(configuration)

	carriers := map[string]carrier.Downloader{
		carrier.IFax:      carrier.NewIFaxClient(configuration.Carriers.IFax.BaseURL, configuration.Carriers.IFax.AccessToken),
		carrier.HumbleFax: carrier.NewHumbleFaxClient(configuration.Carriers.HumbleFax.BaseURL, configuration.Carriers.HumbleFax.AccessToken),
	}

	notification.RegisterWebhookSender(func(event string, payload interface{}) error {
		return SendWebhook(NewWebhook{Event: event, Payload: payload})
	})

	newChartfax := &Chartfax{
		datasource: db,
		queue:      newQueue,
		redis:      redisClient.Client(),
		carriers:   carriers,
		extractor:  ocr.NewExtractorFromConfig(configuration),
	}
	return newChartfax, nil
}

// Carrier returns the download client registered for the given carrier
// name, or an error for a carrier this deployment does not know.
func (c *Chartfax) Carrier(name string) (carrier.Downloader, error) {
	client, ok := c.carriers[name]
	if !ok {
		return nil, fmt.Errorf("unknown carrier: %s", name)
	}
	return client, nil
}
