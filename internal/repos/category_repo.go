package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"fandomia/internal/domain"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT id, slug, name
	  FROM categories
	  ORDER BY name, id
	`)
	return out, err
}
