package database

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/chartfax/chartfax/config"
	"github.com/chartfax/chartfax/internal/cache"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn  *sql.DB
	Cache cache.Cache
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		newCache, errCache := cache.NewCache()
		if errCache != nil {
			// Run without a cache when Redis is unreachable.
			log.Printf("cache unavailable, provider lookups uncached: %v", errCache)
			newCache = nil
		}
		instance = &Datasource{Conn: con, Cache: newCache}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		return nil, err
	}
	err = createPatientTable(db)
	if err != nil {
		return nil, err
	}
	err = createProviderTable(db)
	if err != nil {
		return nil, err
	}
	err = createRecordRequestTable(db)
	if err != nil {
		return nil, err
	}
	err = createProviderRequestTable(db)
	if err != nil {
		return nil, err
	}
	err = createInboundFaxTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func GenerateUUIDWithSuffix(module string) string {
	// Generate a new UUID
	id := uuid.New()

	// Convert the UUID to a string
	uuidStr := id.String()

	// Add the module prefix
	idWithSuffix := fmt.Sprintf("%s_%s", module, uuidStr)

	return idWithSuffix
}

// createPatientTable creates a PostgreSQL table for the Patient struct
func createPatientTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS patients (
			id SERIAL PRIMARY KEY,
			patient_id TEXT NOT NULL UNIQUE,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			dob DATE NOT NULL,
			meta_data JSONB,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (first_name, last_name, dob)
		);

		CREATE INDEX IF NOT EXISTS idx_patients_dob ON patients(dob);
	`)
	return err
}

// createProviderTable creates a PostgreSQL table for the Provider struct
func createProviderTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS providers (
			id SERIAL PRIMARY KEY,
			provider_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			fax_number TEXT NOT NULL UNIQUE,
			phone TEXT,
			meta_data JSONB,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

// createRecordRequestTable creates a PostgreSQL table for record requests
func createRecordRequestTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS record_requests (
			id SERIAL PRIMARY KEY,
			request_id TEXT NOT NULL UNIQUE,
			patient_id TEXT NOT NULL REFERENCES patients(patient_id),
			status TEXT NOT NULL DEFAULT 'open',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP
		);
	`)
	return err
}

// createProviderRequestTable creates a PostgreSQL table for the outbound
// legs of record requests
func createProviderRequestTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS provider_requests (
			id SERIAL PRIMARY KEY,
			provider_request_id TEXT NOT NULL UNIQUE,
			request_id TEXT NOT NULL REFERENCES record_requests(request_id),
			provider_id TEXT NOT NULL REFERENCES providers(provider_id),
			status TEXT NOT NULL DEFAULT 'pending',
			outbound_job_id TEXT,
			response_fax_id TEXT,
			sent_at TIMESTAMP,
			responded_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_provider_requests_status ON provider_requests(status);
		CREATE INDEX IF NOT EXISTS idx_provider_requests_request ON provider_requests(request_id);
	`)
	return err
}

// createInboundFaxTable creates a PostgreSQL table for inbound faxes.
// The unique (job_id, transaction_id) pair is what makes webhook
// ingestion idempotent.
func createInboundFaxTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS inbound_faxes (
			id SERIAL PRIMARY KEY,
			fax_id TEXT NOT NULL UNIQUE,
			job_id TEXT NOT NULL,
			transaction_id TEXT NOT NULL,
			carrier TEXT NOT NULL DEFAULT 'ifax',
			from_number TEXT,
			to_number TEXT,
			page_count INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'received',
			file_path TEXT,
			extracted_text TEXT,
			patient_name TEXT,
			patient_dob DATE,
			encounter_date DATE,
			matched_patient_id TEXT REFERENCES patients(patient_id),
			match_confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
			provider_request_id TEXT REFERENCES provider_requests(provider_request_id),
			received_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (job_id, transaction_id)
		);

		CREATE INDEX IF NOT EXISTS idx_inbound_faxes_status ON inbound_faxes(status);
		CREATE INDEX IF NOT EXISTS idx_inbound_faxes_patient ON inbound_faxes(matched_patient_id);
	`)
	return err
}
