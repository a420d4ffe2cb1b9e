package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"fandomia/internal/cart"
	"fandomia/internal/devicestore"
	"fandomia/internal/domain"
	applog "fandomia/internal/log"
	"fandomia/internal/remote"
	"fandomia/internal/repos"
	"fandomia/internal/services"
)

// storefront is what the device commands need besides the cart itself.
type storefront interface {
	Login(ctx context.Context, email, password string) (*domain.Identity, error)
	Logout(ctx context.Context) error
	SignUp(ctx context.Context, in remote.SignUpRequest) (*domain.Identity, error)
	Product(ctx context.Context, slug string) (domain.ProductDetail, error)
	Catalog(ctx context.Context, q, category string) ([]domain.CatalogItem, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

type device struct {
	store   *devicestore.SQLiteStore
	front   storefront
	cart    *cart.Reconciler
	closers []func() error
}

func (d *device) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		_ = d.closers[i]()
	}
}

// openDevice opens the device profile and connects it to the backend,
// over HTTP or, with --direct, in-process.
func openDevice() (*device, error) {
	cfg := loadConfig()
	closeLog := setupLogOutput(cfg, os.Stderr)

	store, err := devicestore.OpenDir(cfg.DeviceDir)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("open device profile: %w", err)
	}
	d := &device{store: store}
	d.closers = append(d.closers, func() error { closeLog(); return nil }, store.Close)

	var backend cart.Backend
	if direct {
		db, err := repos.OpenDB(cfg.DBDSN)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.closers = append(d.closers, db.Close)
		deps := directStorefront{
			store:   store,
			auth:    services.NewAuthService(repos.NewUserRepo(db), repos.NewProfileRepo(db), repos.NewRoleRepo(db)),
			rows:    services.NewCartRowService(repos.NewCartItemRepo(db)),
			catalog: services.NewCatalogService(repos.NewProductRepo(db), repos.NewCategoryRepo(db)),
		}
		backend = &services.LocalBackend{Auth: deps.auth, Cart: deps.rows, Device: store}
		d.front = deps
	} else {
		c := remote.New(cfg.BackendURL, store, cfg.HTTPTimeout)
		backend = c
		d.front = c
	}

	d.cart = cart.New(store, backend, cart.WithLogger(applog.Logger().Named("cart")))
	return d, nil
}

// directStorefront serves the account and catalog commands from the
// backend database.
type directStorefront struct {
	store   devicestore.Store
	auth    *services.AuthService
	rows    *services.CartRowService
	catalog *services.CatalogService
}

func (a directStorefront) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	sid, u, err := a.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := a.store.Set(ctx, devicestore.KeyAuth, sid); err != nil {
		return nil, fmt.Errorf("save auth session: %w", err)
	}
	id := u.Identity()
	return &id, nil
}

func (a directStorefront) Logout(ctx context.Context) error {
	sid, _, err := a.store.Get(ctx, devicestore.KeyAuth)
	if err != nil {
		return err
	}
	var logoutErr error
	if sid != "" {
		logoutErr = a.auth.Logout(ctx, sid)
	}
	return errors.Join(logoutErr, a.store.Delete(ctx, devicestore.KeyAuth))
}

func (a directStorefront) SignUp(ctx context.Context, in remote.SignUpRequest) (*domain.Identity, error) {
	u, err := a.auth.SignUp(ctx, services.SignUpInput{
		Email: in.Email, Password: in.Password, FullName: in.FullName, Phone: in.Phone,
	})
	if err != nil {
		return nil, err
	}
	id := u.Identity()
	return &id, nil
}

func (a directStorefront) Product(ctx context.Context, slug string) (domain.ProductDetail, error) {
	return a.catalog.Product(ctx, slug)
}

func (a directStorefront) Catalog(ctx context.Context, q, category string) ([]domain.CatalogItem, error) {
	return a.catalog.Search(ctx, q, category)
}

func (a directStorefront) Categories(ctx context.Context) ([]domain.Category, error) {
	return a.catalog.ListCategories(ctx)
}
