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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5001"

	// Matching thresholds. Scores are 0..100; patient matching is the
	// stricter of the two because it decides whose chart a page lands in.
	DEFAULT_PATIENT_MATCH_THRESHOLD  = 80
	DEFAULT_PROVIDER_MATCH_THRESHOLD = 70
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"CHARTFAX_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"CHARTFAX_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"CHARTFAX_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"CHARTFAX_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"CHARTFAX_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"CHARTFAX_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"CHARTFAX_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns           string `json:"dns" envconfig:"CHARTFAX_REDIS_DNS"`
	SkipTLSVerify bool   `json:"skip_tls_verify" envconfig:"CHARTFAX_REDIS_SKIP_TLS_VERIFY"`
}

// CarrierConfig holds credentials and endpoints for one fax carrier.
// AccessToken authenticates downloads; WebhookSecret verifies inbound
// webhook signatures when set.
type CarrierConfig struct {
	BaseURL       string `json:"base_url"`
	AccessToken   string `json:"access_token"`
	WebhookSecret string `json:"webhook_secret"`
}

type CarriersConfig struct {
	IFax       CarrierConfig `json:"ifax"`
	HumbleFax  CarrierConfig `json:"humblefax"`
	MaxRetries int           `json:"max_retries" envconfig:"CHARTFAX_CARRIER_MAX_RETRIES"`

	// StatusCallbackURL is handed to carriers on outbound sends so
	// delivery reports come back to this deployment.
	StatusCallbackURL string `json:"status_callback_url" envconfig:"CHARTFAX_CARRIER_STATUS_CALLBACK_URL"`
}

type StorageConfig struct {
	InboxDir    string `json:"inbox_dir" envconfig:"CHARTFAX_STORAGE_INBOX_DIR"`
	CompiledDir string `json:"compiled_dir" envconfig:"CHARTFAX_STORAGE_COMPILED_DIR"`
}

type OCRConfig struct {
	Url     string `json:"url" envconfig:"CHARTFAX_OCR_URL"`
	Timeout int    `json:"timeout" envconfig:"CHARTFAX_OCR_TIMEOUT"`
	Headers struct {
		Authorization string `json:"Authorization"`
	} `json:"headers"`
}

// MatchingConfig carries the fuzzy score thresholds. Both are 0..100 and
// compared inclusively.
type MatchingConfig struct {
	PatientThreshold  int `json:"patient_threshold" envconfig:"CHARTFAX_MATCHING_PATIENT_THRESHOLD"`
	ProviderThreshold int `json:"provider_threshold" envconfig:"CHARTFAX_MATCHING_PROVIDER_THRESHOLD"`
}

type QueueConfig struct {
	FaxQueue       string `json:"fax_queue" envconfig:"CHARTFAX_QUEUE_FAX"`
	WebhookQueue   string `json:"webhook_queue" envconfig:"CHARTFAX_QUEUE_WEBHOOK"`
	NumberOfQueues int    `json:"number_of_queues" envconfig:"CHARTFAX_QUEUE_NUMBER_OF_QUEUES"`
	MonitoringPort string `json:"monitoring_port" envconfig:"CHARTFAX_QUEUE_MONITORING_PORT"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"CHARTFAX_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"CHARTFAX_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"CHARTFAX_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack   SlackWebhook `json:"slack"`
	Webhook struct {
		Url     string            `json:"url"`
		Headers map[string]string `json:"headers"`
	} `json:"webhook"`
}

type OtelGrafanaCloud struct {
	OtelExporterOtlpProtocol string `json:"otel_exporter_otlp_protocol" envconfig:"OTEL_EXPORTER_OTLP_PROTOCOL"`
	OtelExporterOtlpEndpoint string `json:"otel_exporter_otlp_endpoint" envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpHeaders  string `json:"otel_exporter_otlp_headers" envconfig:"OTEL_EXPORTER_OTLP_HEADERS"`
}

type Configuration struct {
	ProjectName      string           `json:"project_name" envconfig:"CHARTFAX_PROJECT_NAME"`
	Server           ServerConfig     `json:"server"`
	DataSource       DataSourceConfig `json:"data_source"`
	Redis            RedisConfig      `json:"redis"`
	Carriers         CarriersConfig   `json:"carriers"`
	Storage          StorageConfig    `json:"storage"`
	OCR              OCRConfig        `json:"ocr"`
	Matching         MatchingConfig   `json:"matching"`
	Queue            QueueConfig      `json:"queue"`
	Notification     Notification     `json:"notification"`
	RateLimit        RateLimitConfig  `json:"rate_limit"`
	OtelGrafanaCloud OtelGrafanaCloud `json:"otel_grafana_cloud"`
}

// SetGrafanaExporterEnvs copies the OTLP exporter settings into the
// process environment so the OpenTelemetry SDK picks them up.
func SetGrafanaExporterEnvs() error {
	cnf, err := Fetch()
	if err != nil {
		return err
	}
	if err := os.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", cnf.OtelGrafanaCloud.OtelExporterOtlpProtocol); err != nil {
		return err
	}
	if err := os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cnf.OtelGrafanaCloud.OtelExporterOtlpEndpoint); err != nil {
		return err
	}
	if err := os.Setenv("OTEL_EXPORTER_OTLP_HEADERS", cnf.OtelGrafanaCloud.OtelExporterOtlpHeaders); err != nil {
		return err
	}
	return nil
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("chartfax", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called chartfax.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Chartfax Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	// Set default value for Port if it's empty
	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Storage.InboxDir == "" {
		cnf.Storage.InboxDir = "./faxes/inbox"
	}
	if cnf.Storage.CompiledDir == "" {
		cnf.Storage.CompiledDir = "./faxes/compiled"
	}

	if cnf.Matching.PatientThreshold <= 0 || cnf.Matching.PatientThreshold > 100 {
		cnf.Matching.PatientThreshold = DEFAULT_PATIENT_MATCH_THRESHOLD
	}
	if cnf.Matching.ProviderThreshold <= 0 || cnf.Matching.ProviderThreshold > 100 {
		cnf.Matching.ProviderThreshold = DEFAULT_PROVIDER_MATCH_THRESHOLD
	}

	if cnf.Carriers.MaxRetries <= 0 {
		cnf.Carriers.MaxRetries = 3
	}

	if cnf.Queue.FaxQueue == "" {
		cnf.Queue.FaxQueue = "new:fax"
	}
	if cnf.Queue.WebhookQueue == "" {
		cnf.Queue.WebhookQueue = "new:webhook"
	}
	if cnf.Queue.NumberOfQueues <= 0 {
		cnf.Queue.NumberOfQueues = 4
	}
	if cnf.Queue.MonitoringPort == "" {
		cnf.Queue.MonitoringPort = "5003"
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}

	// Set default cleanup interval if not specified
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
		log.Printf("Warning: Rate limit cleanup interval not specified. Setting default value: %d seconds", defaultCleanup)
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
