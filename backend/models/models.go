// ABOUTME: Shared API response models
// ABOUTME: JSON-serializable error and health structures used by handlers and clients

package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" yaml:"error"`
	Details string `json:"details,omitempty" yaml:"details,omitempty"`
	Code    int    `json:"code" yaml:"code"`
	Kind    string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Field   string `json:"field,omitempty" yaml:"field,omitempty"`
}

// HealthResponse reports service status and which catalog sources are live
type HealthResponse struct {
	Status         string   `json:"status" yaml:"status"`
	CatalogSources []string `json:"catalog_sources" yaml:"catalog_sources"`
	CacheTTL       int      `json:"cache_ttl_seconds" yaml:"cache_ttl_seconds"`
}
