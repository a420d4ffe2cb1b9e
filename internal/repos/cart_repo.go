package repos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"fandomia/internal/domain"
)

// Fixed-width UTC timestamps so SQLite TEXT ordering matches time ordering.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

type CartItemRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewCartItemRepo(db *sqlx.DB) *CartItemRepo {
	return &CartItemRepo{db: db, now: time.Now}
}

type cartItemRow struct {
	ID         int64         `db:"id"`
	CustomerID string        `db:"customer_id"`
	SessionID  string        `db:"session_id"`
	ProductID  int64         `db:"product_id"`
	VariantID  sql.NullInt64 `db:"variant_id"`
	Quantity   int           `db:"quantity"`
	AddedAt    string        `db:"added_at"`
}

func (r cartItemRow) toDomain() domain.RemoteCartRow {
	out := domain.RemoteCartRow{
		CustomerID: r.CustomerID,
		SessionID:  r.SessionID,
		ProductID:  r.ProductID,
		Quantity:   r.Quantity,
	}
	if r.VariantID.Valid {
		v := r.VariantID.Int64
		out.VariantID = &v
	}
	if t, err := time.Parse(time.RFC3339Nano, r.AddedAt); err == nil {
		out.AddedAt = t
	}
	return out
}

// Upsert writes every row in one transaction. An existing row with the same
// (customer_id, session_id, product_id, variant) takes the new quantity and
// keeps its added_at.
func (r *CartItemRepo) Upsert(ctx context.Context, rows []domain.RemoteCartRow) error {
	if len(rows) == 0 {
		return nil
	}
	ts := r.now().UTC().Format(tsLayout)
	q := r.db.Rebind(`
		INSERT INTO cart_items(customer_id,session_id,product_id,variant_id,variant_key,quantity,added_at,updated_at)
		VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(customer_id,session_id,product_id,variant_key) DO UPDATE
		SET quantity = excluded.quantity, updated_at = excluded.updated_at
	`)
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, row := range rows {
			line := row.Line()
			var variant sql.NullInt64
			if line.VariantID != nil {
				variant = sql.NullInt64{Int64: *line.VariantID, Valid: true}
			}
			if _, err := tx.ExecContext(ctx, q,
				row.CustomerID, row.SessionID, row.ProductID, variant, line.VariantKey(), row.Quantity, ts, ts); err != nil {
				return fmt.Errorf("upsert cart_items(%d): %w", row.ProductID, err)
			}
		}
		return nil
	})
}

// ByCustomer lists the customer's rows across sessions, oldest first.
func (r *CartItemRepo) ByCustomer(ctx context.Context, customerID string) ([]domain.RemoteCartRow, error) {
	rows := []cartItemRow{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
	  SELECT id, customer_id, session_id, product_id, variant_id, quantity, added_at
	  FROM cart_items
	  WHERE customer_id = ?
	  ORDER BY added_at ASC, id ASC
	`), customerID); err != nil {
		return nil, err
	}
	out := make([]domain.RemoteCartRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
