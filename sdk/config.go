package sdk

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/refdata-dev/reftab/internal/refdata"
)

// ServiceConfig holds optional configuration for Service.
type ServiceConfig struct {
	Logger *zap.SugaredLogger

	// Connection to the reference data store.
	DB     *sql.DB
	Driver string // mysql|postgres

	// TablePrefix applies to the service's own tables (businesses), not to
	// the reference tables themselves.
	TablePrefix string

	// Registry overrides the built-in table catalogue.
	Registry *refdata.Registry
}
