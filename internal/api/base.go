package api

import "time"

// DefaultBaseURL is the single source of truth for the default backend target.
const DefaultBaseURL = "http://127.0.0.1:8011"

// Versioned route prefixes exposed by the backend.
const (
	loginPath       = "/api/v1.6/auth/login"
	taxonomyPrefix  = "/api/v1.12/kb-taxonomy"
	taxReviewPrefix = "/api/v1.14/kb-taxonomy-review"
	reviewPrefix    = "/api/v1.4"
	bulkPrefix      = "/api/v1.8"
	knowledgePrefix = "/api/v1.4.1/knowledge-items"
	scenarioPrefix  = "/api/v1.3/scenarios"
	adminPrefix     = "/api/v1.10/admin"
)

// Timeouts for calls that outlive the default.
const (
	DefaultTimeout  = 30 * time.Second
	ValidateTimeout = 60 * time.Second
	ImportTimeout   = 5 * time.Minute
	SyncTimeout     = 15 * time.Minute
	JobTimeout      = 30 * time.Second
)

// NewDefaultClient builds a client pointed at the default backend URL.
func NewDefaultClient(token string, timeout ...time.Duration) *Client {
	return NewClient(DefaultBaseURL, token, timeout...)
}
