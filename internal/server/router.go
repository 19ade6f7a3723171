package server

import (
	"database/sql"
	"os"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/refdata-dev/reftab/internal/api/handler"
	"github.com/refdata-dev/reftab/internal/auth"
	"github.com/refdata-dev/reftab/internal/business"
	"github.com/refdata-dev/reftab/internal/cache"
	"github.com/refdata-dev/reftab/internal/logger"
	"github.com/refdata-dev/reftab/internal/refdata"
	"github.com/refdata-dev/reftab/internal/repository/refitems"
	"github.com/refdata-dev/reftab/internal/server/middleware"
	"github.com/refdata-dev/reftab/pkg/util"
)

// New assembles the HTTP API: CORS, metrics endpoint, tenant extraction,
// authentication, and the reference table and business routes. rdb may be nil,
// in which case list caching is disabled.
func New(db *sql.DB, rdb *redis.Client, reg *refdata.Registry, cfg DBConfig) huma.API {
	r := chi.NewRouter()

	allowed := os.Getenv("ALLOWED_ORIGINS")
	if allowed == "" {
		allowed = "http://localhost:5173"
	}
	origins := strings.Split(allowed, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Tenant-ID"},
		AllowCredentials: true,
	}))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	dialect := util.DialectFromDriver(cfg.Driver)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.L.Error("JWT_SECRET environment variable is not set. Application cannot start.")
		os.Exit(1)
	}

	api := humachi.New(r, huma.DefaultConfig("Reference Table API", "1.0.0"))
	jwtHandler := auth.NewJWT(secret, 15*time.Minute)

	// Apply tenant middleware to all endpoints, including login.
	api.UseMiddleware(middleware.ExtractTenant(api))

	// Register login & refresh handlers before applying auth middleware so
	// that they remain publicly accessible. Refresh validates its bearer
	// token itself.
	auth.Register(api, &auth.Handler{Repo: &auth.UserRepo{DB: db, Dialect: dialect, TablePrefix: cfg.TablePrefix}, JWT: jwtHandler})

	// Apply authentication middleware for subsequent endpoints.
	api.UseMiddleware(auth.Middleware(api, jwtHandler))
	api.UseMiddleware(middleware.MetricsMW)

	if reg == nil {
		reg = refdata.Default()
	}
	var itemCache *cache.ItemCache
	if rdb != nil {
		itemCache = cache.New(rdb)
	}
	bizRepo := &business.Repo{DB: db, Dialect: dialect, TablePrefix: cfg.TablePrefix}
	store := &refitems.Repo{DB: db, Dialect: dialect}

	handler.RegisterReferenceTables(api, &handler.ReferenceTables{
		Registry:   reg,
		Store:      store,
		Businesses: bizRepo,
		Cache:      itemCache,
		Mocks:      refdata.NewMockStores(),
	})
	handler.RegisterBusinesses(api, &handler.Businesses{Repo: bizRepo})

	return api
}
