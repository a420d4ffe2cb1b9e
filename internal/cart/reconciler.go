// Package cart keeps the device cart and, for signed-in customers, the
// backend's cart_items rows in step.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fandomia/internal/devicestore"
	"fandomia/internal/domain"
)

// Backend is the remote side of the cart.
type Backend interface {
	// CurrentUser returns nil and no error when nobody is signed in.
	CurrentUser(ctx context.Context) (*domain.Identity, error)
	// WhoAmIRole returns "" when the backend has no role for the caller.
	WhoAmIRole(ctx context.Context) (string, error)
	ProfileRole(ctx context.Context, userID string) (string, error)
	// UpsertCartRows inserts or updates rows keyed on
	// (customer_id, session_id, product_id, variant_id).
	UpsertCartRows(ctx context.Context, rows []domain.RemoteCartRow) error
	// FetchCartRows returns the customer's rows ordered by added_at.
	FetchCartRows(ctx context.Context, customerID string) ([]domain.CartLine, error)
}

type Option func(*Reconciler)

func WithLogger(l *zap.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.log = l
		}
	}
}

func WithSessionIDFunc(fn func() string) Option {
	return func(r *Reconciler) {
		if fn != nil {
			r.newSessionID = fn
		}
	}
}

// Reconciler owns the device cart. Read-modify-write cycles on the device
// store are serialized by mu; backend calls never run under it.
type Reconciler struct {
	store        devicestore.Store
	backend      Backend
	log          *zap.Logger
	newSessionID func() string

	mu sync.Mutex
}

// New builds a Reconciler. A nil backend makes every sync a skip.
func New(store devicestore.Store, backend Backend, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:        store,
		backend:      backend,
		log:          zap.NewNop(),
		newSessionID: uuid.NewString,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// AddToCart adds quantity of (productID, variantID) to the device cart and
// then mirrors the cart remotely if the caller is a signed-in customer.
// Only a failed device read or write is returned; sync problems are logged.
// Quantities saturate at domain.MaxQuantity.
func (r *Reconciler) AddToCart(ctx context.Context, productID int64, variantID *int64, quantity int) error {
	if productID <= 0 {
		return ErrInvalidLine
	}
	item := domain.CartLine{ProductID: productID, VariantID: variantID, Quantity: quantity}.Normalize()

	r.mu.Lock()
	lines, err := r.loadLines(ctx)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	found := false
	for i := range lines {
		if lines[i].SameKey(item) {
			lines[i].Quantity = domain.AddQuantity(lines[i].Quantity, item.Quantity)
			found = true
			break
		}
	}
	if !found {
		lines = append(lines, item)
	}
	err = r.writeLines(ctx, lines)
	if err == nil {
		if _, serr := r.sessionIDLocked(ctx); serr != nil {
			r.log.Warn("cart.session.unavailable", zap.Error(serr))
		}
	}
	r.mu.Unlock()
	if err != nil {
		return err
	}

	r.log.Debug("cart.add",
		zap.Int64("product_id", item.ProductID),
		zap.Int64("variant_key", item.VariantKey()),
		zap.Int("quantity", item.Quantity))
	r.SyncCartToDbIfClient(ctx)
	return nil
}

// CartCount is the sum of quantities in the device cart.
func (r *Reconciler) CartCount(ctx context.Context) int {
	n := 0
	for _, l := range r.Lines(ctx) {
		n += l.Quantity
	}
	return n
}

// Lines returns the normalized device cart.
func (r *Reconciler) Lines(ctx context.Context) []domain.CartLine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readLines(ctx)
}

// Clear empties the device cart. The device session id is kept.
func (r *Reconciler) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.Delete(ctx, devicestore.KeyCart); err != nil {
		return fmt.Errorf("%w: clear: %w", ErrLocalStorage, err)
	}
	return nil
}

// SessionID returns the device session id, creating it on first use.
func (r *Reconciler) SessionID(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionIDLocked(ctx)
}

func (r *Reconciler) sessionIDLocked(ctx context.Context) (string, error) {
	sid, ok, err := r.store.Get(ctx, devicestore.KeySessionID)
	if err != nil {
		return "", fmt.Errorf("%w: read session id: %w", ErrLocalStorage, err)
	}
	if ok && sid != "" {
		return sid, nil
	}
	sid = r.newSessionID()
	if err := r.store.Set(ctx, devicestore.KeySessionID, sid); err != nil {
		return "", fmt.Errorf("%w: write session id: %w", ErrLocalStorage, err)
	}
	return sid, nil
}

// SyncCartToDbIfClient pushes the device cart to the backend when the
// signed-in identity is a client. With an empty device cart it instead
// pulls the customer's remote rows into the device store.
func (r *Reconciler) SyncCartToDbIfClient(ctx context.Context) SyncResult {
	res := r.sync(ctx)
	switch res.Status {
	case SyncOK:
		r.log.Info("cart.sync.ok", zap.Stringer("sync_action", res.Action), zap.Int("rows", res.Rows))
	case SyncSkippedNotEligible:
		r.log.Debug("cart.sync.skipped", zap.Error(res.Reason))
	case SyncFailed:
		r.log.Warn("cart.sync.failed", zap.Error(res.Reason))
	}
	return res
}

func (r *Reconciler) sync(ctx context.Context) SyncResult {
	if r.backend == nil {
		return skipped(ErrNoIdentity)
	}
	user, err := r.backend.CurrentUser(ctx)
	if err != nil {
		return skipped(fmt.Errorf("%w: current user: %w", ErrAuthResolution, err))
	}
	if user == nil || user.ID == "" {
		return skipped(ErrNoIdentity)
	}

	role, err := r.resolveRole(ctx, user.ID)
	if err != nil {
		return skipped(err)
	}
	if !IsSyncEligible(role) {
		return skipped(fmt.Errorf("%w: %s", ErrRoleNotEligible, role))
	}

	sid, err := r.SessionID(ctx)
	if err != nil {
		return failed(err)
	}

	r.mu.Lock()
	lines, err := r.loadLines(ctx)
	r.mu.Unlock()
	if err != nil {
		return failed(err)
	}
	if len(lines) == 0 {
		return r.hydrate(ctx, user.ID)
	}

	rows := make([]domain.RemoteCartRow, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, domain.RemoteCartRow{
			CustomerID: user.ID,
			SessionID:  sid,
			ProductID:  l.ProductID,
			VariantID:  l.VariantID,
			Quantity:   l.Quantity,
		})
	}
	if err := r.backend.UpsertCartRows(ctx, rows); err != nil {
		return failed(fmt.Errorf("%w: upsert: %w", ErrRemoteWrite, err))
	}
	return SyncResult{Status: SyncOK, Action: ActionPushed, Rows: len(rows)}
}

// resolveRole asks the role RPC first and falls back to the profile row.
func (r *Reconciler) resolveRole(ctx context.Context, userID string) (domain.Role, error) {
	s, rpcErr := r.backend.WhoAmIRole(ctx)
	if rpcErr == nil && s != "" {
		return domain.ParseRole(s), nil
	}
	s, profErr := r.backend.ProfileRole(ctx, userID)
	if profErr == nil && s != "" {
		return domain.ParseRole(s), nil
	}
	cause := errors.Join(rpcErr, profErr)
	if cause == nil {
		cause = errors.New("no role on record")
	}
	return domain.RoleUnknown, fmt.Errorf("%w: role unresolved: %w", ErrAuthResolution, cause)
}

func (r *Reconciler) hydrate(ctx context.Context, customerID string) SyncResult {
	remote, err := r.backend.FetchCartRows(ctx, customerID)
	if err != nil {
		return failed(fmt.Errorf("%w: fetch: %w", ErrRemoteWrite, err))
	}
	lines := cleanLines(remote)
	if len(lines) == 0 {
		return SyncResult{Status: SyncOK, Action: ActionNone}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	cur, err := r.loadLines(ctx)
	if err != nil {
		return failed(err)
	}
	// Something was added while the fetch was in flight; keep it.
	if len(cur) > 0 {
		return SyncResult{Status: SyncOK, Action: ActionNone}
	}
	if err := r.writeLines(ctx, lines); err != nil {
		return failed(err)
	}
	return SyncResult{Status: SyncOK, Action: ActionHydrated, Rows: len(lines)}
}

// readLines must be called with mu held. For display only: an unreadable
// store counts as an empty cart.
func (r *Reconciler) readLines(ctx context.Context) []domain.CartLine {
	lines, err := r.loadLines(ctx)
	if err != nil {
		r.log.Warn("cart.store.unreadable", zap.Error(err))
		return nil
	}
	return lines
}

// loadLines must be called with mu held. A missing value or corrupt JSON is
// an empty cart; a failed store read is an ErrLocalStorage error, and callers
// about to write must not treat it as empty.
func (r *Reconciler) loadLines(ctx context.Context) ([]domain.CartLine, error) {
	raw, ok, err := r.store.Get(ctx, devicestore.KeyCart)
	if err != nil {
		return nil, fmt.Errorf("%w: read: %w", ErrLocalStorage, err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var lines []domain.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		r.log.Warn("cart.store.corrupt", zap.Error(fmt.Errorf("%w: %w", ErrLocalStorage, err)))
		return nil, nil
	}
	return cleanLines(lines), nil
}

// writeLines must be called with mu held.
func (r *Reconciler) writeLines(ctx context.Context, lines []domain.CartLine) error {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrLocalStorage, err)
	}
	if err := r.store.Set(ctx, devicestore.KeyCart, string(b)); err != nil {
		return fmt.Errorf("%w: write: %w", ErrLocalStorage, err)
	}
	return nil
}

func cleanLines(in []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(in))
	for _, l := range in {
		if l.ProductID <= 0 {
			continue
		}
		out = append(out, l.Normalize())
	}
	return domain.MergeLines(out)
}
