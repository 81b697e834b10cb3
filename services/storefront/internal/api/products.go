package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/utafrali/storefront/services/storefront/internal/domain"
)

// ProductQuery holds the listing parameters understood by GET /products.
type ProductQuery struct {
	Category string
	Sort     string
	Search   string
	Featured bool
	Limit    int
}

func (q ProductQuery) params() map[string]string {
	p := map[string]string{
		"sort":   q.Sort,
		"search": q.Search,
	}
	if q.Category != domain.CategoryAll {
		p["category"] = q.Category
	}
	if q.Featured {
		p["featured"] = "true"
	}
	if q.Limit > 0 {
		p["limit"] = strconv.Itoa(q.Limit)
	}
	return p
}

// ProductsAPI wraps the /products endpoints.
type ProductsAPI struct {
	c *Client
}

// List returns the products matching q.
func (p *ProductsAPI) List(ctx context.Context, q ProductQuery) ([]domain.Product, error) {
	var products []domain.Product
	if _, err := p.c.Do(ctx, http.MethodGet, "/products"+Query(q.params()), nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Get returns one product.
func (p *ProductsAPI) Get(ctx context.Context, id domain.ID) (*domain.Product, error) {
	var product domain.Product
	if _, err := p.c.Do(ctx, http.MethodGet, "/products/"+url.PathEscape(id.String()), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Create adds a product. Admin only on the backend.
func (p *ProductsAPI) Create(ctx context.Context, product domain.Product) (*domain.Product, error) {
	var created domain.Product
	if _, err := p.c.Do(ctx, http.MethodPost, "/products", product, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces a product.
func (p *ProductsAPI) Update(ctx context.Context, id domain.ID, product domain.Product) (*domain.Product, error) {
	var updated domain.Product
	if _, err := p.c.Do(ctx, http.MethodPut, "/products/"+url.PathEscape(id.String()), product, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a product.
func (p *ProductsAPI) Delete(ctx context.Context, id domain.ID) error {
	_, err := p.c.Do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id.String()), nil, nil)
	return err
}
