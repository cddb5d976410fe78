package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/pcforge-backend/internal/store"
	"github.com/angelmondragon/pcforge-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/pcforge-backend/pkg/errors"
)

// ProductFilter narrows ListProducts. Zero values mean "no filter".
type ProductFilter struct {
	CategorySlug string
	FeaturedOnly bool
}

// Service answers read-only catalog queries. Products are always returned in
// ascending id order.
type Service interface {
	AllCategories(ctx context.Context) ([]models.Category, error)
	CategoryBySlug(ctx context.Context, slug string) (models.Category, error)
	CategoryByID(ctx context.Context, id int64) (models.Category, error)
	AllProducts(ctx context.Context) ([]models.Product, error)
	ProductByID(ctx context.Context, id int64) (models.Product, error)
	ProductsByCategory(ctx context.Context, categoryID int64) ([]models.Product, error)
	FeaturedProducts(ctx context.Context) ([]models.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
}

type service struct {
	store *store.Store
}

// NewService builds a catalog service over st.
func NewService(st *store.Store) (Service, error) {
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	return &service{store: st}, nil
}

func (s *service) AllCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.store.Categories.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	return categories, nil
}

func (s *service) CategoryBySlug(ctx context.Context, slug string) (models.Category, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return models.Category{}, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	matches, err := s.store.Categories.List(ctx, store.Where("slug", slug, func(c *models.Category) bool {
		return c.Slug == slug
	}))
	if err != nil {
		return models.Category{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup category")
	}
	if len(matches) == 0 {
		return models.Category{}, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return matches[0], nil
}

func (s *service) CategoryByID(ctx context.Context, id int64) (models.Category, error) {
	category, err := s.store.Categories.Get(ctx, id)
	if err != nil {
		return models.Category{}, notFoundOr(err, "category not found", "lookup category")
	}
	return category, nil
}

func (s *service) AllProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.store.Products.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return products, nil
}

func (s *service) ProductByID(ctx context.Context, id int64) (models.Product, error) {
	product, err := s.store.Products.Get(ctx, id)
	if err != nil {
		return models.Product{}, notFoundOr(err, "product not found", "lookup product")
	}
	return product, nil
}

func (s *service) ProductsByCategory(ctx context.Context, categoryID int64) ([]models.Product, error) {
	products, err := s.store.Products.List(ctx, byCategory(categoryID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products by category")
	}
	return products, nil
}

func (s *service) FeaturedProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.store.Products.List(ctx, featured())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list featured products")
	}
	return products, nil
}

// ListProducts combines the category and featured filters. An unknown
// category slug is a NOT_FOUND error rather than an empty list.
func (s *service) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	preds := []store.Predicate[models.Product]{}
	if filter.CategorySlug != "" {
		category, err := s.CategoryBySlug(ctx, filter.CategorySlug)
		if err != nil {
			return nil, err
		}
		preds = append(preds, byCategory(category.ID))
	}
	if filter.FeaturedOnly {
		preds = append(preds, featured())
	}

	products, err := s.store.Products.List(ctx, preds...)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return products, nil
}

func byCategory(categoryID int64) store.Predicate[models.Product] {
	return store.Where("category_id", categoryID, func(p *models.Product) bool {
		return p.CategoryID == categoryID
	})
}

func featured() store.Predicate[models.Product] {
	return store.Where("featured", true, func(p *models.Product) bool {
		return p.Featured
	})
}

func notFoundOr(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, internalMsg)
}
