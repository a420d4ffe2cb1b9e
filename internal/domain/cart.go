package domain

import (
	"math"
	"time"
)

// MaxQuantity caps a line's quantity; it fits the INTEGER quantity column.
const MaxQuantity = math.MaxInt32

// CartLine is one entry of a cart. Identity is (ProductID, VariantID); a nil
// VariantID means no variant has been picked yet.
type CartLine struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// SameKey reports whether two lines share the identity key.
func (l CartLine) SameKey(o CartLine) bool {
	if l.ProductID != o.ProductID {
		return false
	}
	if l.VariantID == nil || o.VariantID == nil {
		return l.VariantID == nil && o.VariantID == nil
	}
	return *l.VariantID == *o.VariantID
}

// Normalize applies the input rules: variant ids <= 0 become nil and the
// quantity is clamped to [1, MaxQuantity]. The product id is left untouched.
func (l CartLine) Normalize() CartLine {
	out := CartLine{ProductID: l.ProductID, Quantity: l.Quantity}
	if l.VariantID != nil && *l.VariantID > 0 {
		v := *l.VariantID
		out.VariantID = &v
	}
	if out.Quantity < 1 {
		out.Quantity = 1
	}
	if out.Quantity > MaxQuantity {
		out.Quantity = MaxQuantity
	}
	return out
}

// AddQuantity sums two normalized quantities, saturating at MaxQuantity.
func AddQuantity(a, b int) int {
	if a > MaxQuantity-b {
		return MaxQuantity
	}
	return a + b
}

// VariantKey is the variant id or 0, the form used in unique indexes.
func (l CartLine) VariantKey() int64 {
	if l.VariantID == nil {
		return 0
	}
	return *l.VariantID
}

// MergeLines folds lines with the same key into the first occurrence by
// summing quantities, keeping first-seen order.
func MergeLines(lines []CartLine) []CartLine {
	out := make([]CartLine, 0, len(lines))
	for _, l := range lines {
		merged := false
		for i := range out {
			if out[i].SameKey(l) {
				out[i].Quantity = AddQuantity(out[i].Quantity, l.Quantity)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, l)
		}
	}
	return out
}

// RemoteCartRow is a cart line persisted by the backend for a customer.
// At most one row exists per (CustomerID, SessionID, ProductID, VariantID).
type RemoteCartRow struct {
	CustomerID string    `json:"customer_id" db:"customer_id"`
	SessionID  string    `json:"session_id" db:"session_id"`
	ProductID  int64     `json:"product_id" db:"product_id"`
	VariantID  *int64    `json:"variant_id" db:"variant_id"`
	Quantity   int       `json:"quantity" db:"quantity"`
	AddedAt    time.Time `json:"added_at,omitempty" db:"-"`
}

// Line drops the ownership columns.
func (r RemoteCartRow) Line() CartLine {
	return CartLine{ProductID: r.ProductID, VariantID: r.VariantID, Quantity: r.Quantity}
}

func Int64(v int64) *int64 { return &v }
