// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/astoriahq/studioops/internal/app/codes"
	healthfeature "github.com/astoriahq/studioops/internal/app/features/health"
	organizationsfeature "github.com/astoriahq/studioops/internal/app/features/organizations"
	teammatesfeature "github.com/astoriahq/studioops/internal/app/features/teammates"
	orgcodestore "github.com/astoriahq/studioops/internal/app/store/orgcodes"
	organizationstore "github.com/astoriahq/studioops/internal/app/store/organizations"
	teammatestore "github.com/astoriahq/studioops/internal/app/store/teammates"
	"github.com/astoriahq/studioops/internal/app/system/auth"
	"github.com/astoriahq/studioops/internal/app/system/codecache"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. StudioOps mounts the health endpoint,
// organization provisioning, and the teammate roster with its employee-code
// operations; claims verification applies globally so every handler can read
// the caller's identity from context.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	verifier := auth.NewVerifier(appCfg.JWTSecret, logger)

	var cache codecache.Cache
	if deps.Redis != nil {
		cache = codecache.NewRedis(deps.Redis, appCfg.CodeCacheTTL, logger)
	} else {
		cache = codecache.NewMemory(appCfg.CodeCacheTTL)
	}

	allocator := codes.NewAllocator(deps.Docs, logger,
		codes.WithMaxAttempts(appCfg.CodeMaxAttempts),
		codes.WithBaseDelay(appCfg.CodeBaseDelay),
		codes.WithDefaultPattern(appCfg.CodePattern))
	resolver := codes.NewResolver(deps.Docs, cache, logger)

	orgStore := organizationstore.New(deps.Docs)
	codeStore := orgcodestore.New(deps.Docs)
	tmStore := teammatestore.New(deps.Docs)

	r := chi.NewRouter()

	// Global auth middleware: loads verified claims into context.
	r.Use(verifier.LoadClaims)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	orgHandler := organizationsfeature.NewHandler(orgStore, codeStore, logger)
	r.Mount("/organizations", organizationsfeature.Routes(orgHandler))

	tmHandler := teammatesfeature.NewHandler(tmStore, allocator, resolver, logger)
	r.Mount("/teammates", teammatesfeature.Routes(tmHandler))

	// Org-code resolution for the caller's tenant.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Get("/org-code", tmHandler.ServeResolveOrgCode)
	})

	return r, nil
}
