// Package client provides REST access to the reference table API.
package client

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	sdk "github.com/refdata-dev/reftab/sdk"
)

// Item is the API projection of a reference row.
type Item struct {
	ID         string            `json:"id"`
	Value      string            `json:"value"`
	BusinessID string            `json:"business_id,omitempty"`
	IsActive   bool              `json:"is_active"`
	Display    map[string]string `json:"display,omitempty"`
}

// Client provides REST access to the reference table API.
type Client interface {
	Tables(ctx context.Context) ([]sdk.TableInfo, error)
	ListItems(ctx context.Context, table, businessID string) ([]Item, error)
	AddItem(ctx context.Context, table, value, businessID, relationID string) (Item, error)
	RenameItem(ctx context.Context, table, id, value, businessID string) (Item, error)
	ToggleItem(ctx context.Context, table, id, businessID string) (Item, error)
	DeleteItem(ctx context.Context, table, id, businessID string) error
	Options(ctx context.Context, table string) ([]sdk.Option, error)
	Businesses(ctx context.Context) ([]sdk.Business, error)
}

type httpClient struct {
	base string
	http *resty.Client
}

type Option func(*httpClient)

// WithToken sets the Authorization token
func WithToken(tok string) Option {
	return func(c *httpClient) {
		c.http.SetAuthToken(tok)
	}
}

// WithTenant sets the X-Tenant-ID header sent with every request.
func WithTenant(id string) Option {
	return func(c *httpClient) {
		c.http.SetHeader("X-Tenant-ID", id)
	}
}

// NewHTTP returns a new Client for the given base URL.
func NewHTTP(base string, opts ...Option) Client {
	c := &httpClient{base: base, http: resty.New()}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Tables(ctx context.Context) ([]sdk.TableInfo, error) {
	var out []sdk.TableInfo
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get(c.base + "/v1/reference-tables")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	return out, nil
}

func (c *httpClient) ListItems(ctx context.Context, table, businessID string) ([]Item, error) {
	var out []Item
	req := c.http.R().SetContext(ctx).SetResult(&out)
	if businessID != "" {
		req.SetQueryParam("business_id", businessID)
	}
	resp, err := req.Get(c.base + "/v1/reference-tables/" + table + "/items")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	return out, nil
}

func (c *httpClient) AddItem(ctx context.Context, table, value, businessID, relationID string) (Item, error) {
	body := map[string]any{"value": value}
	if businessID != "" {
		body["business_id"] = businessID
	}
	if relationID != "" {
		body["relation_id"] = relationID
	}
	var out Item
	resp, err := c.http.R().SetContext(ctx).SetBody(body).SetResult(&out).
		Post(c.base + "/v1/reference-tables/" + table + "/items")
	if err != nil {
		return Item{}, err
	}
	if resp.IsError() {
		return Item{}, restyErr(resp)
	}
	return out, nil
}

func (c *httpClient) RenameItem(ctx context.Context, table, id, value, businessID string) (Item, error) {
	var out Item
	req := c.http.R().SetContext(ctx).SetBody(map[string]any{"value": value}).SetResult(&out)
	if businessID != "" {
		req.SetQueryParam("business_id", businessID)
	}
	resp, err := req.Put(c.base + "/v1/reference-tables/" + table + "/items/" + id)
	if err != nil {
		return Item{}, err
	}
	if resp.IsError() {
		return Item{}, restyErr(resp)
	}
	return out, nil
}

func (c *httpClient) ToggleItem(ctx context.Context, table, id, businessID string) (Item, error) {
	var out Item
	req := c.http.R().SetContext(ctx).SetResult(&out)
	if businessID != "" {
		req.SetQueryParam("business_id", businessID)
	}
	resp, err := req.Post(c.base + "/v1/reference-tables/" + table + "/items/" + id + "/toggle")
	if err != nil {
		return Item{}, err
	}
	if resp.IsError() {
		return Item{}, restyErr(resp)
	}
	return out, nil
}

func (c *httpClient) DeleteItem(ctx context.Context, table, id, businessID string) error {
	req := c.http.R().SetContext(ctx)
	if businessID != "" {
		req.SetQueryParam("business_id", businessID)
	}
	resp, err := req.Delete(c.base + "/v1/reference-tables/" + table + "/items/" + id)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return restyErr(resp)
	}
	return nil
}

func (c *httpClient) Options(ctx context.Context, table string) ([]sdk.Option, error) {
	var out []sdk.Option
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).
		Get(c.base + "/v1/reference-tables/" + table + "/options")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	return out, nil
}

func (c *httpClient) Businesses(ctx context.Context) ([]sdk.Business, error) {
	var out []sdk.Business
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get(c.base + "/v1/businesses")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	return out, nil
}

func restyErr(resp *resty.Response) error {
	return fmt.Errorf("%s", resp.Status())
}
