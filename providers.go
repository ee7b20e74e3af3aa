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
	"context"

	"github.com/chartfax/chartfax/internal/apierror"
	"github.com/chartfax/chartfax/internal/carrier"
	"github.com/chartfax/chartfax/model"
)

// CreateProvider registers a provider and its fax line.
func (c *Chartfax) CreateProvider(ctx context.Context, provider model.Provider) (model.Provider, error) {
	ctx, span := tracer.Start(ctx, "Creating Provider")
	defer span.End()

	if !carrier.ValidateFaxNumber(provider.FaxNumber) {
		return provider, apierror.NewAPIError(apierror.ErrInvalidInput, "invalid fax number: "+provider.FaxNumber, nil)
	}
	return c.datasource.CreateProvider(ctx, provider)
}

// GetProvider retrieves a provider by ID.
func (c *Chartfax) GetProvider(ctx context.Context, id string) (*model.Provider, error) {
	return c.datasource.GetProviderByID(ctx, id)
}

// GetAllProviders retrieves a page of providers.
func (c *Chartfax) GetAllProviders(ctx context.Context, limit, offset int) ([]model.Provider, error) {
	return c.datasource.GetAllProviders(ctx, limit, offset)
}

// UpdateProvider updates a provider's contact fields.
func (c *Chartfax) UpdateProvider(ctx context.Context, provider *model.Provider) error {
	if provider.FaxNumber != "" {
		if !carrier.ValidateFaxNumber(provider.FaxNumber) {
			return apierror.NewAPIError(apierror.ErrInvalidInput, "invalid fax number: "+provider.FaxNumber, nil)
		}
	}
	return c.datasource.UpdateProvider(ctx, provider)
}
