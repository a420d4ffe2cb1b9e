package services

import (
	"context"
	"errors"

	"fandomia/internal/cart"
	"fandomia/internal/devicestore"
	"fandomia/internal/domain"
)

var _ cart.Backend = (*LocalBackend)(nil)

// LocalBackend serves the reconciler in-process, acting for the session
// whose id is SID. When Device is set the session id is read from its
// auth key on every call instead.
type LocalBackend struct {
	Auth   *AuthService
	Cart   *CartRowService
	SID    string
	Device devicestore.Store
}

func (b *LocalBackend) sid(ctx context.Context) (string, error) {
	if b.Device == nil {
		return b.SID, nil
	}
	sid, _, err := b.Device.Get(ctx, devicestore.KeyAuth)
	return sid, err
}

func (b *LocalBackend) caller(ctx context.Context) (*domain.User, error) {
	sid, err := b.sid(ctx)
	if err != nil {
		return nil, err
	}
	u, err := b.Auth.CurrentUser(ctx, sid)
	if errors.Is(err, ErrUnauthenticated) {
		return nil, nil
	}
	return u, err
}

func (b *LocalBackend) CurrentUser(ctx context.Context) (*domain.Identity, error) {
	u, err := b.caller(ctx)
	if err != nil || u == nil {
		return nil, err
	}
	id := u.Identity()
	return &id, nil
}

func (b *LocalBackend) WhoAmIRole(ctx context.Context) (string, error) {
	u, err := b.caller(ctx)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrUnauthenticated
	}
	return b.Auth.WhoAmIRole(ctx, u.ID)
}

func (b *LocalBackend) ProfileRole(ctx context.Context, userID string) (string, error) {
	u, err := b.caller(ctx)
	if err != nil {
		return "", err
	}
	p, err := b.Auth.Profile(ctx, u, userID)
	if err != nil {
		return "", err
	}
	return p.Role, nil
}

func (b *LocalBackend) UpsertCartRows(ctx context.Context, rows []domain.RemoteCartRow) error {
	u, err := b.caller(ctx)
	if err != nil {
		return err
	}
	return b.Cart.Upsert(ctx, u, rows)
}

func (b *LocalBackend) FetchCartRows(ctx context.Context, customerID string) ([]domain.CartLine, error) {
	u, err := b.caller(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := b.Cart.Fetch(ctx, u, customerID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CartLine, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Line())
	}
	return out, nil
}
