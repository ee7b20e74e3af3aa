package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"

	"github.com/chartfax/chartfax/internal/apierror"
	"github.com/chartfax/chartfax/model"
)

const providerCacheTTL = 5 * time.Minute

func providerCacheKey(id string) string {
	return "provider:" + id
}

// CreateProvider inserts a new provider into the registry.
func (d Datasource) CreateProvider(ctx context.Context, provider model.Provider) (model.Provider, error) {
	ctx, span := otel.Tracer("Provider").Start(ctx, "Creating provider record")
	defer span.End()

	metaDataJSON, err := json.Marshal(provider.MetaData)
	if err != nil {
		return provider, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	provider.ProviderID = GenerateUUIDWithSuffix("prov")
	provider.CreatedAt = time.Now()

	_, err = d.Conn.ExecContext(ctx, `
		INSERT INTO providers (provider_id, name, fax_number, phone, meta_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, provider.ProviderID, provider.Name, provider.FaxNumber, provider.Phone, metaDataJSON, provider.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return provider, apierror.NewAPIError(apierror.ErrConflict, "Provider with this fax number already exists", err)
		}
		return provider, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create provider", err)
	}
	return provider, nil
}

// GetProviderByID retrieves a provider by ID. The provider directory is
// small and read-heavy, so lookups go through the cache when one is
// configured.
func (d Datasource) GetProviderByID(ctx context.Context, id string) (*model.Provider, error) {
	ctx, span := otel.Tracer("Provider").Start(ctx, "Fetching provider from db")
	defer span.End()

	if d.Cache != nil {
		cached := &model.Provider{}
		if err := d.Cache.Get(ctx, providerCacheKey(id), cached); err == nil && cached.ProviderID != "" {
			return cached, nil
		}
	}

	provider := &model.Provider{}
	var phone sql.NullString
	var metaDataJSON []byte
	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, provider_id, name, fax_number, phone, meta_data, created_at
		FROM providers
		WHERE provider_id = $1
	`, id).Scan(&provider.ID, &provider.ProviderID, &provider.Name, &provider.FaxNumber, &phone, &metaDataJSON, &provider.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, "Provider not found", err)
		}
		return nil, err
	}
	provider.Phone = phone.String
	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &provider.MetaData); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
		}
	}
	if d.Cache != nil {
		if err := d.Cache.Set(ctx, providerCacheKey(id), provider, providerCacheTTL); err != nil {
			log.Printf("Failed to cache provider %s: %v", id, err)
		}
	}
	return provider, nil
}

// GetAllProviders retrieves providers with pagination, newest first.
func (d Datasource) GetAllProviders(ctx context.Context, limit, offset int) ([]model.Provider, error) {
	ctx, span := otel.Tracer("Provider").Start(ctx, "Fetching all providers")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, provider_id, name, fax_number, phone, meta_data, created_at
		FROM providers
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var providers []model.Provider
	for rows.Next() {
		provider := model.Provider{}
		var phone sql.NullString
		var metaDataJSON []byte
		err := rows.Scan(&provider.ID, &provider.ProviderID, &provider.Name, &provider.FaxNumber, &phone, &metaDataJSON, &provider.CreatedAt)
		if err != nil {
			return nil, err
		}
		provider.Phone = phone.String
		if len(metaDataJSON) > 0 {
			if err := json.Unmarshal(metaDataJSON, &provider.MetaData); err != nil {
				return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
			}
		}
		providers = append(providers, provider)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return providers, nil
}

// UpdateProvider updates a provider's contact fields.
func (d Datasource) UpdateProvider(ctx context.Context, provider *model.Provider) error {
	ctx, span := otel.Tracer("Provider").Start(ctx, "Updating provider record")
	defer span.End()

	metaDataJSON, err := json.Marshal(provider.MetaData)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE providers
		SET name = $2, fax_number = $3, phone = $4, meta_data = $5
		WHERE provider_id = $1
	`, provider.ProviderID, provider.Name, provider.FaxNumber, provider.Phone, metaDataJSON)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Provider not found: "+provider.ProviderID, nil)
	}
	if d.Cache != nil {
		if err := d.Cache.Delete(ctx, providerCacheKey(provider.ProviderID)); err != nil {
			log.Printf("Failed to evict provider %s from cache: %v", provider.ProviderID, err)
		}
	}
	return nil
}

// DeleteProvider removes a provider from the registry.
func (d Datasource) DeleteProvider(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("Provider").Start(ctx, "Deleting provider record")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx, `DELETE FROM providers WHERE provider_id = $1`, id)
	if err != nil {
		return err
	}
	if d.Cache != nil {
		if err := d.Cache.Delete(ctx, providerCacheKey(id)); err != nil {
			log.Printf("Failed to evict provider %s from cache: %v", id, err)
		}
	}
	return nil
}
