package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fandomia/internal/domain"
	"fandomia/internal/repos"
	"fandomia/internal/validate"
)

const (
	// GridLimit caps one page of the catalog grid.
	GridLimit = 60
	// MaxProductImages caps the gallery of a product page.
	MaxProductImages = 6
)

type CatalogService struct {
	Products   *repos.ProductRepo
	Categories *repos.CategoryRepo
}

func NewCatalogService(products *repos.ProductRepo, categories *repos.CategoryRepo) *CatalogService {
	return &CatalogService{Products: products, Categories: categories}
}

// Search lists active products for the catalog grid. Both filters are
// optional; an unknown category yields an empty grid.
func (s *CatalogService) Search(ctx context.Context, q, category string) ([]domain.CatalogItem, error) {
	q, ok := validate.Query(q)
	if !ok {
		return nil, fmt.Errorf("%w: q", ErrInvalidInput)
	}
	if category != "" {
		if category, ok = validate.Slug(category); !ok {
			return nil, fmt.Errorf("%w: category", ErrInvalidInput)
		}
	}
	return s.Products.Search(ctx, q, category, GridLimit, 0)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Categories.List(ctx)
}

func (s *CatalogService) Product(ctx context.Context, slug string) (domain.ProductDetail, error) {
	p, err := s.Products.BySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ProductDetail{}, ErrNotFound
	}
	if err != nil {
		return domain.ProductDetail{}, err
	}
	vs, err := s.Products.Variants(ctx, p.ID)
	if err != nil {
		return domain.ProductDetail{}, err
	}
	imgs, err := s.Products.Images(ctx, p.ID, MaxProductImages)
	if err != nil {
		return domain.ProductDetail{}, err
	}
	return domain.ProductDetail{Product: p, Variants: vs, Images: imgs}, nil
}
