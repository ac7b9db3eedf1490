// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for StudioOps.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, log level); AppConfig is everything
// specific to this service.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer-token verification
	JWTSecret string

	// Employee-code allocation
	CodePattern     string        // default pattern when a request has none
	CodeMaxAttempts int           // transaction retry budget
	CodeBaseDelay   time.Duration // backoff seed between retries

	// Org-code resolution cache
	CodeCacheBackend string // "memory" or "redis"
	CodeCacheTTL     time.Duration

	// Redis (only used when CodeCacheBackend is "redis")
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}
