// Package handler wires the reference table operations into the HTTP API.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/refdata-dev/reftab/internal/api/schema"
	"github.com/refdata-dev/reftab/internal/cache"
	"github.com/refdata-dev/reftab/internal/logger"
	"github.com/refdata-dev/reftab/internal/metrics"
	"github.com/refdata-dev/reftab/internal/refdata"
	"github.com/refdata-dev/reftab/internal/tenant"
)

// ReferenceTables serves the catalogue and item CRUD endpoints. Every request
// builds a short-lived editor for its table so all scoping and validation
// rules live in one place.
type ReferenceTables struct {
	Registry   *refdata.Registry
	Store      refdata.Store
	Businesses refdata.BusinessLister
	Cache      *cache.ItemCache
	// Mocks backs uncatalogued tables; shared so mock mutations survive
	// across requests.
	Mocks *refdata.MockStores
}

type tableListOutput struct {
	Body []schema.ReferenceTable
}

type itemsInput struct {
	Table      string `path:"table"`
	BusinessID string `query:"business_id"`
}

type itemsOutput struct {
	Body []schema.ReferenceItem
}

type createItemInput struct {
	Table string `path:"table"`
	Body  schema.NewItem
}

type itemOutput struct {
	Body schema.ReferenceItem
}

type updateItemInput struct {
	Table      string `path:"table"`
	ID         string `path:"id"`
	BusinessID string `query:"business_id"`
	Body       schema.ItemEdit
}

type itemIDInput struct {
	Table      string `path:"table"`
	ID         string `path:"id"`
	BusinessID string `query:"business_id"`
}

type optionsInput struct {
	Table string `path:"table"`
}

type optionsOutput struct {
	Body []schema.Option
}

// RegisterReferenceTables registers the reference table routes.
func RegisterReferenceTables(api huma.API, h *ReferenceTables) {
	huma.Register(api, huma.Operation{
		OperationID: "listReferenceTables",
		Method:      http.MethodGet,
		Path:        "/v1/reference-tables",
		Summary:     "List catalogued reference tables",
		Tags:        []string{"reference-tables"},
	}, h.listTables)
	huma.Register(api, huma.Operation{
		OperationID: "listReferenceItems",
		Method:      http.MethodGet,
		Path:        "/v1/reference-tables/{table}/items",
		Summary:     "List items of a reference table",
		Tags:        []string{"reference-tables"},
	}, h.listItems)
	huma.Register(api, huma.Operation{
		OperationID: "createReferenceItem",
		Method:      http.MethodPost,
		Path:        "/v1/reference-tables/{table}/items",
		Summary:     "Add a reference item",
		Tags:        []string{"reference-tables"},
	}, h.createItem)
	huma.Register(api, huma.Operation{
		OperationID: "updateReferenceItem",
		Method:      http.MethodPut,
		Path:        "/v1/reference-tables/{table}/items/{id}",
		Summary:     "Rename a reference item",
		Tags:        []string{"reference-tables"},
	}, h.updateItem)
	huma.Register(api, huma.Operation{
		OperationID: "toggleReferenceItem",
		Method:      http.MethodPost,
		Path:        "/v1/reference-tables/{table}/items/{id}/toggle",
		Summary:     "Flip a reference item's active flag",
		Tags:        []string{"reference-tables"},
	}, h.toggleItem)
	huma.Register(api, huma.Operation{
		OperationID:   "deleteReferenceItem",
		Method:        http.MethodDelete,
		Path:          "/v1/reference-tables/{table}/items/{id}",
		Summary:       "Delete a reference item",
		Tags:          []string{"reference-tables"},
		DefaultStatus: http.StatusNoContent,
	}, h.deleteItem)
	huma.Register(api, huma.Operation{
		OperationID: "listReferenceOptions",
		Method:      http.MethodGet,
		Path:        "/v1/reference-tables/{table}/options",
		Summary:     "List parent options for a relation dependent table",
		Tags:        []string{"reference-tables"},
	}, h.listOptions)
}

func (h *ReferenceTables) listTables(ctx context.Context, _ *struct{}) (*tableListOutput, error) {
	keys := h.Registry.Keys()
	out := make([]schema.ReferenceTable, 0, len(keys))
	for _, k := range keys {
		cfg, _ := h.Registry.Lookup(k)
		out = append(out, tableView(k, cfg))
	}
	return &tableListOutput{Body: out}, nil
}

func (h *ReferenceTables) listItems(ctx context.Context, in *itemsInput) (*itemsOutput, error) {
	ed, err := h.editor(ctx, in.Table, in.BusinessID)
	if err != nil {
		return nil, mapEditorErr(in.Table, err)
	}
	tid := tenant.FromContext(ctx)
	if ed.Catalogued() {
		if items, ok, err := h.Cache.Get(ctx, tid, in.Table, ed.SelectedBusiness()); err != nil {
			logger.L.Warn("item cache read failed", "table", in.Table, "err", err)
		} else if ok {
			return &itemsOutput{Body: itemViews(ed.Config(), items)}, nil
		}
	}
	items, err := ed.LoadItems(ctx)
	if err != nil {
		return nil, mapEditorErr(in.Table, err)
	}
	if ed.Catalogued() {
		if err := h.Cache.Set(ctx, tid, in.Table, ed.SelectedBusiness(), items); err != nil {
			logger.L.Warn("item cache write failed", "table", in.Table, "err", err)
		}
	}
	metrics.Items.WithLabelValues(in.Table).Set(float64(len(items)))
	return &itemsOutput{Body: itemViews(ed.Config(), items)}, nil
}

func (h *ReferenceTables) createItem(ctx context.Context, in *createItemInput) (*itemOutput, error) {
	ed, err := h.editor(ctx, in.Table, in.Body.BusinessID)
	if err != nil {
		return nil, mapEditorErr(in.Table, err)
	}
	if in.Body.RelationID != "" {
		ed.SelectRelation(in.Body.RelationID)
	}
	if _, err := ed.LoadItems(ctx); err != nil {
		return nil, mapEditorErr(in.Table, err)
	}
	it, err := ed.Add(ctx, in.Body.Value)
	if err != nil && !errors.Is(err, refdata.ErrStaleScope) {
		return nil, mapEditorErr(in.Table, err)
	}
	// A scope change during the insert only skips the local list graft; the
	// row itself was stored, so report it as created.
	h.invalidate(ctx, ed, in.Table)
	return &itemOutput{Body: itemView(ed.Config(), it)}, nil
}

func (h *ReferenceTables) updateItem(ctx context.Context, in *updateItemInput) (*itemOutput, error) {
	ed, err := h.loadedEditor(ctx, in.Table, in.BusinessID)
	if err != nil {
		return nil, mapEditorErr(in.Table, err)
	}
	it, err := ed.SaveEdit(ctx, in.ID, in.Body.Value)
	if err != nil {
		return nil, mapEditorErr(in.Table, err)
	}
	h.invalidate(ctx, ed, in.Table)
	return &itemOutput{Body: itemView(ed.Config(), it)}, nil
}

func (h *ReferenceTables) toggleItem(ctx context.Context, in *itemIDInput) (*itemOutput, error) {
	ed, err := h.loadedEditor(ctx, in.Table, in.BusinessID)
	if err != nil {
		return nil, mapEditorErr(in.Table, err)
	}
	it, err := ed.ToggleActive(ctx, in.ID)
	if err != nil {
		return nil, mapEditorErr(in.Table, err)
	}
	h.invalidate(ctx, ed, in.Table)
	return &itemOutput{Body: itemView(ed.Config(), it)}, nil
}

func (h *ReferenceTables) deleteItem(ctx context.Context, in *itemIDInput) (*struct{}, error) {
	ed, err := h.loadedEditor(ctx, in.Table, in.BusinessID)
	if err != nil {
		return nil, mapEditorErr(in.Table, err)
	}
	// DELETE is the confirmation; the interactive prompt lives in the clients.
	if _, err := ed.Delete(ctx, in.ID); err != nil {
		return nil, mapEditorErr(in.Table, err)
	}
	h.invalidate(ctx, ed, in.Table)
	return nil, nil
}

func (h *ReferenceTables) listOptions(ctx context.Context, in *optionsInput) (*optionsOutput, error) {
	ed := refdata.NewEditor(in.Table, h.Registry, h.Store, h.Businesses, tenant.FromContext(ctx),
		refdata.WithMockStores(h.Mocks))
	rel := ed.Config().Relation
	if rel == nil {
		return nil, huma.Error404NotFound("table has no relation")
	}
	if opts, ok, err := h.Cache.GetOptions(ctx, rel.OptionTable); err != nil {
		logger.L.Warn("options cache read failed", "table", rel.OptionTable, "err", err)
	} else if ok {
		return &optionsOutput{Body: optionViews(opts)}, nil
	}
	opts, err := ed.LoadRelationOptions(ctx)
	if err != nil {
		return nil, mapEditorErr(in.Table, err)
	}
	if err := h.Cache.SetOptions(ctx, rel.OptionTable, opts); err != nil {
		logger.L.Warn("options cache write failed", "table", rel.OptionTable, "err", err)
	}
	return &optionsOutput{Body: optionViews(opts)}, nil
}

// editor builds an editor bound to the request tenant with the business scope
// resolved. An explicit business_id wins over the default first business.
func (h *ReferenceTables) editor(ctx context.Context, table, businessID string) (*refdata.Editor, error) {
	ed := refdata.NewEditor(table, h.Registry, h.Store, h.Businesses, tenant.FromContext(ctx),
		refdata.WithMockStores(h.Mocks))
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

// loadedEditor additionally loads the item list, which row level operations
// need for key resolution and duplicate checks.
func (h *ReferenceTables) loadedEditor(ctx context.Context, table, businessID string) (*refdata.Editor, error) {
	ed, err := h.editor(ctx, table, businessID)
	if err != nil {
		return nil, err
	}
	if _, err := ed.LoadItems(ctx); err != nil {
		return nil, err
	}
	return ed, nil
}

func (h *ReferenceTables) invalidate(ctx context.Context, ed *refdata.Editor, table string) {
	if !ed.Catalogued() {
		return
	}
	if err := h.Cache.Invalidate(ctx, tenant.FromContext(ctx), table); err != nil {
		logger.L.Warn("item cache invalidation failed", "table", table, "err", err)
	}
	// Mutated tables may serve as option sources for dependent tables.
	if err := h.Cache.InvalidateOptions(ctx, ed.Config().Table); err != nil {
		logger.L.Warn("options cache invalidation failed", "table", table, "err", err)
	}
}

// mapEditorErr translates editor errors into HTTP errors. Field level
// validation becomes 422 with the offending location, duplicates become 409,
// store failures are logged and surfaced as 502.
func mapEditorErr(table string, err error) error {
	var verr *refdata.ValidationError
	if errors.As(err, &verr) {
		if verr.Duplicate {
			return huma.Error409Conflict(verr.Message)
		}
		return huma.NewError(http.StatusUnprocessableEntity, verr.Message, &huma.ErrorDetail{
			Location: "body." + verr.Field,
			Message:  verr.Message,
		})
	}
	if errors.Is(err, refdata.ErrNotFound) {
		return huma.Error404NotFound("reference item not found")
	}
	if errors.Is(err, refdata.ErrNoToggle) {
		return huma.Error422UnprocessableEntity(refdata.ErrNoToggle.Error())
	}
	if errors.Is(err, refdata.ErrStaleScope) {
		return huma.Error409Conflict(refdata.ErrStaleScope.Error())
	}
	var serr *refdata.StoreError
	if errors.As(err, &serr) {
		metrics.StoreErrors.WithLabelValues(table, serr.Op).Inc()
		logger.L.Error("store operation failed", "table", table, "op", serr.Op, "err", serr.Err)
		return huma.Error502BadGateway(serr.Op + " failed")
	}
	return err
}

func tableView(key string, cfg refdata.TableConfig) schema.ReferenceTable {
	v := schema.ReferenceTable{
		Key:          key,
		Scoped:       cfg.Scoped,
		HasToggle:    cfg.ToggleColumn != "",
		HideIDColumn: cfg.HideIDColumn,
		Catalogued:   true,
	}
	if cfg.Relation != nil {
		v.Relation = cfg.Relation.Name
	}
	for _, d := range cfg.Display {
		v.Display = append(v.Display, d.Label)
	}
	return v
}

func itemView(cfg refdata.TableConfig, it refdata.Item) schema.ReferenceItem {
	v := schema.ReferenceItem{
		ID:         it.ID,
		Value:      it.Value,
		BusinessID: it.BusinessID,
		IsActive:   it.IsActive,
	}
	if len(cfg.Display) > 0 {
		v.Display = make(map[string]string, len(cfg.Display))
		for _, d := range cfg.Display {
			v.Display[d.Label] = d.Render(it.Raw)
		}
	}
	return v
}

func itemViews(cfg refdata.TableConfig, items []refdata.Item) []schema.ReferenceItem {
	out := make([]schema.ReferenceItem, 0, len(items))
	for _, it := range items {
		out = append(out, itemView(cfg, it))
	}
	return out
}

func optionViews(opts []refdata.Option) []schema.Option {
	out := make([]schema.Option, 0, len(opts))
	for _, o := range opts {
		out = append(out, schema.Option{ID: o.ID, Label: o.Label})
	}
	return out
}
