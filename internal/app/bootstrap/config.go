// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/astoriahq/studioops/internal/app/codes"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for StudioOps.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: STUDIOOPS_MONGO_URI, STUDIOOPS_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "studioops", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "jwt_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "HMAC secret for bearer-token verification (must be strong in production)"},

	// Employee-code allocation
	{Name: "code_pattern", Default: codes.DefaultPattern, Desc: "Default employee-code pattern (tokens: {ORGCODE}, {ROLE}, {NUMBER:N})"},
	{Name: "code_max_attempts", Default: codes.DefaultMaxAttempts, Desc: "Allocation transaction retry budget"},
	{Name: "code_base_delay", Default: "50ms", Desc: "Backoff seed between allocation retries (e.g., 50ms, 200ms)"},

	// Org-code resolution cache
	{Name: "code_cache_backend", Default: "memory", Desc: "Org-code cache backend: 'memory' or 'redis'"},
	{Name: "code_cache_ttl", Default: "5m", Desc: "How long resolved org codes are cached (e.g., 5m, 1h)"},

	// Redis (only used with code_cache_backend=redis)
	{Name: "redis_addr", Default: "localhost:6379", Desc: "Redis address for the shared org-code cache"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis logical database"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "STUDIOOPS", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),

		CodePattern:     appValues.String("code_pattern"),
		CodeMaxAttempts: appValues.Int("code_max_attempts"),
		CodeBaseDelay:   appValues.Duration("code_base_delay", codes.DefaultBaseDelay),

		CodeCacheBackend: appValues.String("code_cache_backend"),
		CodeCacheTTL:     appValues.Duration("code_cache_ttl", 5*time.Minute),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation before any
// backends are touched.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	switch appCfg.CodeCacheBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("code_cache_backend must be 'memory' or 'redis', got %q", appCfg.CodeCacheBackend)
	}
	if appCfg.CodeMaxAttempts < 1 {
		return fmt.Errorf("code_max_attempts must be >= 1, got %d", appCfg.CodeMaxAttempts)
	}
	return nil
}
