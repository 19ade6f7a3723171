// Package sdk exposes the reference table operations for embedding in other
// Go programs without going through the HTTP API.
package sdk

import (
	"context"

	"go.uber.org/zap"

	"github.com/refdata-dev/reftab/internal/business"
	"github.com/refdata-dev/reftab/internal/refdata"
	"github.com/refdata-dev/reftab/internal/repository/refitems"
	"github.com/refdata-dev/reftab/pkg/util"
)

// Service exposes high level operations over reference tables. All scoping
// and validation rules of the HTTP API apply identically here.
type Service interface {
	// Tables returns the catalogued table descriptions.
	Tables() []TableInfo
	// ListItems reads a table under the given tenant and business scope.
	// businessID may be empty for global tables or to use the tenant's
	// first business.
	ListItems(ctx context.Context, tenantID, table, businessID string) ([]Item, error)
	// AddItem validates and inserts a value. relationID selects the parent
	// entity for relation dependent tables.
	AddItem(ctx context.Context, tenantID, table, value, businessID, relationID string) (Item, error)
	// RenameItem updates the value of an existing row.
	RenameItem(ctx context.Context, tenantID, table, id, value, businessID string) (Item, error)
	// ToggleItem flips the row's active flag.
	ToggleItem(ctx context.Context, tenantID, table, id, businessID string) (Item, error)
	// DeleteItem removes a row.
	DeleteItem(ctx context.Context, tenantID, table, id, businessID string) error
	// Options returns the parent options of a relation dependent table.
	Options(ctx context.Context, table string) ([]Option, error)
	// Businesses returns the tenant's businesses.
	Businesses(ctx context.Context, tenantID string) ([]Business, error)
}

// New returns a Service initialized with the given configuration.
func New(cfg ServiceConfig) Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	reg := cfg.Registry
	if reg == nil {
		reg = refdata.Default()
	}
	dialect := util.DialectFromDriver(cfg.Driver)
	return &service{
		logger:     logger,
		registry:   reg,
		store:      &refitems.Repo{DB: cfg.DB, Dialect: dialect},
		businesses: &business.Repo{DB: cfg.DB, Dialect: dialect, TablePrefix: cfg.TablePrefix},
		mocks:      refdata.NewMockStores(),
	}
}

type service struct {
	logger     *zap.SugaredLogger
	registry   *refdata.Registry
	store      refdata.Store
	businesses refdata.BusinessLister
	// mocks backs uncatalogued tables across calls on this service.
	mocks *refdata.MockStores
}

func (s *service) Tables() []TableInfo {
	keys := s.registry.Keys()
	out := make([]TableInfo, 0, len(keys))
	for _, k := range keys {
		cfg, _ := s.registry.Lookup(k)
		info := TableInfo{
			Key:          k,
			Scoped:       cfg.Scoped,
			HasToggle:    cfg.ToggleColumn != "",
			HideIDColumn: cfg.HideIDColumn,
		}
		if cfg.Relation != nil {
			info.Relation = cfg.Relation.Name
		}
		for _, d := range cfg.Display {
			info.Display = append(info.Display, d.Label)
		}
		out = append(out, info)
	}
	return out
}

// editor builds an editor with the business scope resolved.
func (s *service) editor(ctx context.Context, tenantID, table, businessID string) (*refdata.Editor, error) {
	ed := refdata.NewEditor(table, s.registry, s.store, s.businesses, tenantID,
		refdata.WithMockStores(s.mocks))
	if ed.Config().Scoped {
		if _, err := ed.LoadBusinesses(ctx); err != nil {
			return nil, err
		}
		if businessID != "" {
			ed.SelectBusiness(businessID)
		}
	}
	return ed, nil
}

func (s *service) ListItems(ctx context.Context, tenantID, table, businessID string) ([]Item, error) {
	ed, err := s.editor(ctx, tenantID, table, businessID)
	if err != nil {
		return nil, err
	}
	items, err := ed.LoadItems(ctx)
	if err != nil {
		s.logger.Errorw("load items", "table", table, "err", err)
		return nil, err
	}
	return items, nil
}

func (s *service) AddItem(ctx context.Context, tenantID, table, value, businessID, relationID string) (Item, error) {
	ed, err := s.editor(ctx, tenantID, table, businessID)
	if err != nil {
		return Item{}, err
	}
	if relationID != "" {
		ed.SelectRelation(relationID)
	}
	if _, err := ed.LoadItems(ctx); err != nil {
		return Item{}, err
	}
	return ed.Add(ctx, value)
}

func (s *service) RenameItem(ctx context.Context, tenantID, table, id, value, businessID string) (Item, error) {
	ed, err := s.editor(ctx, tenantID, table, businessID)
	if err != nil {
		return Item{}, err
	}
	if _, err := ed.LoadItems(ctx); err != nil {
		return Item{}, err
	}
	return ed.SaveEdit(ctx, id, value)
}

func (s *service) ToggleItem(ctx context.Context, tenantID, table, id, businessID string) (Item, error) {
	ed, err := s.editor(ctx, tenantID, table, businessID)
	if err != nil {
		return Item{}, err
	}
	if _, err := ed.LoadItems(ctx); err != nil {
		return Item{}, err
	}
	return ed.ToggleActive(ctx, id)
}

func (s *service) DeleteItem(ctx context.Context, tenantID, table, id, businessID string) error {
	ed, err := s.editor(ctx, tenantID, table, businessID)
	if err != nil {
		return err
	}
	if _, err := ed.LoadItems(ctx); err != nil {
		return err
	}
	_, err = ed.Delete(ctx, id)
	return err
}

func (s *service) Options(ctx context.Context, table string) ([]Option, error) {
	ed := refdata.NewEditor(table, s.registry, s.store, s.businesses, "",
		refdata.WithMockStores(s.mocks))
	return ed.LoadRelationOptions(ctx)
}

func (s *service) Businesses(ctx context.Context, tenantID string) ([]Business, error) {
	return s.businesses.ListBusinesses(ctx, tenantID)
}
