package model

import "time"

// Provider is a medical provider or facility that record requests are
// faxed to. FaxNumber is the line we send to and the primary signal for
// attributing a response back to the provider.
type Provider struct {
	ID         int64                  `json:"-"`
	ProviderID string                 `json:"provider_id"`
	Name       string                 `json:"name"`
	FaxNumber  string                 `json:"fax_number"`
	Phone      string                 `json:"phone,omitempty"`
	MetaData   map[string]interface{} `json:"meta_data,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}
