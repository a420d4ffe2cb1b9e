package services

import (
	"context"
	"fmt"

	"fandomia/internal/domain"
	"fandomia/internal/repos"
	"fandomia/internal/validate"
)

// MaxRowsPerUpsert bounds one upsert request.
const MaxRowsPerUpsert = 200

// CartRowService applies row-level access rules to cart_items: a caller
// only ever reads or writes rows whose customer_id is their own id.
type CartRowService struct {
	Items *repos.CartItemRepo
}

func NewCartRowService(items *repos.CartItemRepo) *CartRowService {
	return &CartRowService{Items: items}
}

func (s *CartRowService) Upsert(ctx context.Context, caller *domain.User, rows []domain.RemoteCartRow) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if len(rows) > MaxRowsPerUpsert {
		return fmt.Errorf("%w: too many rows", ErrInvalidInput)
	}
	clean := make([]domain.RemoteCartRow, 0, len(rows))
	for _, r := range rows {
		if r.CustomerID != caller.ID {
			return ErrForbidden
		}
		if _, ok := validate.Token(r.SessionID); !ok {
			return fmt.Errorf("%w: session_id", ErrInvalidInput)
		}
		if r.ProductID <= 0 {
			return fmt.Errorf("%w: product_id", ErrInvalidInput)
		}
		line := r.Line().Normalize()
		r.VariantID, r.Quantity = line.VariantID, line.Quantity
		clean = append(clean, r)
	}
	return s.Items.Upsert(ctx, clean)
}

func (s *CartRowService) Fetch(ctx context.Context, caller *domain.User, customerID string) ([]domain.RemoteCartRow, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	if customerID != caller.ID {
		return nil, ErrForbidden
	}
	return s.Items.ByCustomer(ctx, customerID)
}
