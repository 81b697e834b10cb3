package service

import (
	"cmp"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/slug"
	"github.com/utafrali/storefront/services/storefront/internal/api"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
)

// Sort keys accepted by the listing.
const (
	SortName      = "name"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
)

// Listing sources.
const (
	SourceBackend = "backend"
	SourceSeed    = "seed"
)

//go:embed seed/products.json
var seedJSON []byte

var seedProducts = sync.OnceValue(func() []domain.Product {
	var products []domain.Product
	if err := json.Unmarshal(seedJSON, &products); err != nil {
		panic(fmt.Sprintf("decode seed catalog: %v", err))
	}
	return products
})

// SeedProducts returns a copy of the bundled catalog.
func SeedProducts() []domain.Product {
	return slices.Clone(seedProducts())
}

// ProductSource is where the catalog fetches products from.
type ProductSource interface {
	List(ctx context.Context, q api.ProductQuery) ([]domain.Product, error)
	Get(ctx context.Context, id domain.ID) (*domain.Product, error)
}

// CatalogQuery filters, sorts and pages a listing.
type CatalogQuery struct {
	Category string
	Sort     string
	Search   string
	Featured bool
	Limit    int
	Page     pagination.Params
}

// Listing is one page of products plus where they came from.
type Listing struct {
	pagination.Result[domain.Product]
	Source string `json:"source"`
}

// Catalog serves product listings from the backend, falling back to the
// bundled catalog while the backend is unreachable.
type Catalog struct {
	source ProductSource
	logger *slog.Logger
}

// NewCatalog creates a catalog. A nil source serves the bundled catalog only.
func NewCatalog(source ProductSource, l *slog.Logger) *Catalog {
	if l == nil {
		l = logger.Discard()
	}
	return &Catalog{source: source, logger: l}
}

// List returns the page of products matching q.
func (c *Catalog) List(ctx context.Context, q CatalogQuery) (*Listing, error) {
	products, source, err := c.fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	products = Filter(products, q)
	SortProducts(products, q.Sort)
	if q.Limit > 0 && len(products) > q.Limit {
		products = products[:q.Limit]
	}

	page := q.Page
	if page.PerPage <= 0 {
		page = pagination.DefaultParams()
	}
	return &Listing{Result: pagination.Slice(products, page), Source: source}, nil
}

func (c *Catalog) fetch(ctx context.Context, q CatalogQuery) ([]domain.Product, string, error) {
	if c.source == nil {
		return SeedProducts(), SourceSeed, nil
	}

	products, err := c.source.List(ctx, api.ProductQuery{
		Category: q.Category,
		Sort:     q.Sort,
		Search:   q.Search,
		Featured: q.Featured,
		Limit:    q.Limit,
	})
	if err == nil {
		return usable(ctx, c.logger, products), SourceBackend, nil
	}
	if !errors.Is(err, apperrors.ErrUpstream) {
		return nil, "", err
	}

	logger.WithContext(ctx, c.logger).Warn("backend unavailable, serving bundled catalog",
		slog.String("error", err.Error()))
	return SeedProducts(), SourceSeed, nil
}

// usable drops records without any id; they cannot be carted or liked.
func usable(ctx context.Context, l *slog.Logger, products []domain.Product) []domain.Product {
	return slices.DeleteFunc(products, func(p domain.Product) bool {
		if p.Key().IsZero() {
			logger.WithContext(ctx, l).Warn("dropping product without id", slog.String("name", p.Name))
			return true
		}
		return false
	})
}

// Get returns one product by id. The bundled catalog also resolves
// name slugs such as "marble-ganesha-murti".
func (c *Catalog) Get(ctx context.Context, id domain.ID) (*domain.Product, error) {
	if c.source != nil {
		p, err := c.source.Get(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, apperrors.ErrUpstream) {
			return nil, err
		}
		logger.WithContext(ctx, c.logger).Warn("backend unavailable, resolving product from bundled catalog",
			slog.String("product_id", id.String()),
			slog.String("error", err.Error()))
	}

	if p, ok := FindSeedProduct(id); ok {
		return &p, nil
	}
	return nil, apperrors.NotFound("product", id.String())
}

// FindSeedProduct looks id up in the bundled catalog by id or name slug.
func FindSeedProduct(id domain.ID) (domain.Product, bool) {
	for _, p := range seedProducts() {
		if p.Key() == id || slug.Match(p.Name, id.String()) {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Filter keeps the products matching the category, search and featured
// criteria of q. Category "All" or "" matches everything.
func Filter(products []domain.Product, q CatalogQuery) []domain.Product {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if q.Category != "" && q.Category != domain.CategoryAll && !slug.Match(q.Category, p.Category) {
			continue
		}
		if q.Featured && !p.Featured {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SortProducts orders products in place. Unknown keys sort by name.
func SortProducts(products []domain.Product, key string) {
	switch key {
	case SortPriceLow:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(a.Price, b.Price)
		})
	case SortPriceHigh:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(b.Price, a.Price)
		})
	default:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	}
}

// CategoryCount is a listing filter option with the number of products it
// matches.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Categories counts the full catalog per category. "All" counts every
// product. The source reports where the products came from.
func (c *Catalog) Categories(ctx context.Context) ([]CategoryCount, string, error) {
	products, source, err := c.fetch(ctx, CatalogQuery{})
	if err != nil {
		return nil, "", err
	}

	names := domain.Categories()
	out := make([]CategoryCount, 0, len(names))
	for _, name := range names {
		out = append(out, CategoryCount{
			Name:  name,
			Count: len(Filter(products, CatalogQuery{Category: name})),
		})
	}
	return out, source, nil
}

// SortKeys returns the accepted sort keys.
func SortKeys() []string {
	return []string{SortName, SortPriceLow, SortPriceHigh}
}
