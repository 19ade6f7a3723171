package handler

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/refdata-dev/reftab/internal/api/schema"
	"github.com/refdata-dev/reftab/internal/business"
	"github.com/refdata-dev/reftab/internal/tenant"
	"github.com/refdata-dev/reftab/internal/validate"
)

// Businesses serves the tenant's business sub-units.
type Businesses struct {
	Repo *business.Repo
}

type businessListOutput struct {
	Body []schema.Business
}

type createBusinessInput struct {
	Body schema.NewBusiness
}

type businessOutput struct {
	Body schema.Business
}

// RegisterBusinesses registers the business routes.
func RegisterBusinesses(api huma.API, h *Businesses) {
	huma.Register(api, huma.Operation{
		OperationID: "listBusinesses",
		Method:      http.MethodGet,
		Path:        "/v1/businesses",
		Summary:     "List the tenant's businesses",
		Tags:        []string{"businesses"},
	}, h.list)
	huma.Register(api, huma.Operation{
		OperationID:   "createBusiness",
		Method:        http.MethodPost,
		Path:          "/v1/businesses",
		Summary:       "Create a business",
		Tags:          []string{"businesses"},
		DefaultStatus: http.StatusCreated,
	}, h.create)
}

func (h *Businesses) list(ctx context.Context, _ *struct{}) (*businessListOutput, error) {
	list, err := h.Repo.List(ctx, tenant.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]schema.Business, 0, len(list))
	for _, b := range list {
		out = append(out, schema.Business{ID: b.ID, Name: b.Name})
	}
	return &businessListOutput{Body: out}, nil
}

func (h *Businesses) create(ctx context.Context, in *createBusinessInput) (*businessOutput, error) {
	if ok, msg := validate.TextField(in.Body.Name, validate.Rules{
		Required:  true,
		MinLength: 2,
		MaxLength: 100,
		FieldName: "name",
	}); !ok {
		return nil, huma.NewError(http.StatusUnprocessableEntity, msg, &huma.ErrorDetail{
			Location: "body.name",
			Message:  msg,
		})
	}
	b, err := h.Repo.Create(ctx, tenant.FromContext(ctx), in.Body.Name)
	if err != nil {
		return nil, err
	}
	return &businessOutput{Body: schema.Business{ID: b.ID, Name: b.Name}}, nil
}
