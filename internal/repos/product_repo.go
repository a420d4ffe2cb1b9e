package repos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"fandomia/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) BySlug(ctx context.Context, slug string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`
	  SELECT id, slug, name, description, category_id, price_from, is_active
	  FROM products
	  WHERE slug = ? AND is_active
	`), slug)
	return p, err
}

// Variants lists active variants with stock, cheapest first.
func (r *ProductRepo) Variants(ctx context.Context, productID int64) ([]domain.Variant, error) {
	out := []domain.Variant{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
	  SELECT id, product_id, size, color, price, stock
	  FROM product_variants
	  WHERE product_id = ? AND is_active AND stock > 0
	  ORDER BY price ASC, id ASC
	`), productID)
	return out, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns the catalog grid, newest first. q matches the product name
// case-insensitively and categorySlug narrows to one category; empty values
// disable the filter.
func (r *ProductRepo) Search(ctx context.Context, q, categorySlug string, limit, offset int) ([]domain.CatalogItem, error) {
	where := `p.is_active`
	args := []any{}
	if q != "" {
		where += ` AND LOWER(p.name) LIKE ? ESCAPE '\'`
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(q))+"%")
	}
	if categorySlug != "" {
		where += ` AND c.slug = ?`
		args = append(args, categorySlug)
	}

	query := `
	  SELECT
	    p.id AS product_id, p.slug, p.name, p.price_from,
	    (SELECT COUNT(*) FROM product_variants v
	       WHERE v.product_id = p.id AND v.is_active AND v.stock > 0) AS variants_available,
	    COALESCE((SELECT i.url FROM product_images i
	       WHERE i.product_id = p.id ORDER BY i.sort_order, i.id LIMIT 1), '') AS cover_url
	  FROM products p
	  LEFT JOIN categories c ON c.id = p.category_id
	  WHERE ` + where + `
	  ORDER BY p.id DESC
	  LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	out := []domain.CatalogItem{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...)
	return out, err
}

// Images lists at most limit images of a product in display order.
func (r *ProductRepo) Images(ctx context.Context, productID int64, limit int) ([]domain.ProductImage, error) {
	out := []domain.ProductImage{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
	  SELECT url, sort_order
	  FROM product_images
	  WHERE product_id = ?
	  ORDER BY sort_order ASC, id ASC
	  LIMIT ?
	`), productID, limit)
	return out, err
}
