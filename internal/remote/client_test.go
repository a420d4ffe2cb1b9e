package remote_test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fandomia/internal/cart"
	"fandomia/internal/devicestore"
	"fandomia/internal/domain"
	"fandomia/internal/http/handlers"
	"fandomia/internal/remote"
	"fandomia/internal/repos"
)

const seedPassword = "Passw0rd!"

// startBackend serves a fresh in-memory backend on a loopback port.
func startBackend(t *testing.T) string {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	app := handlers.NewApp(handlers.NewDeps(db), handlers.AppOptions{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() {
		_ = app.ShutdownWithTimeout(2 * time.Second)
		_ = db.Close()
	})
	return "http://" + ln.Addr().String()
}

func newDevice(t *testing.T, endpoint string) (*remote.Client, *cart.Reconciler, *devicestore.MemStore) {
	t.Helper()
	store := devicestore.NewMemStore()
	c := remote.New(endpoint, store, 5*time.Second)
	return c, cart.New(store, c), store
}

func TestClient_LoginStoresToken(t *testing.T) {
	ctx := context.Background()
	endpoint := startBackend(t)
	c, _, store := newDevice(t, endpoint)

	who, err := c.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, who, "no token means anonymous")

	id, err := c.Login(ctx, "ana@fandomia.test", seedPassword)
	require.NoError(t, err)
	assert.Equal(t, "u-ana", id.ID)

	tok, ok, err := store.Get(ctx, devicestore.KeyAuth)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, tok)

	who, err = c.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, who)
	assert.Equal(t, "ana@fandomia.test", who.Email)

	require.NoError(t, c.Logout(ctx))
	_, ok, _ = store.Get(ctx, devicestore.KeyAuth)
	assert.False(t, ok)
}

func TestClient_StaleTokenIsAnonymous(t *testing.T) {
	ctx := context.Background()
	endpoint := startBackend(t)
	c, _, store := newDevice(t, endpoint)
	require.NoError(t, store.Set(ctx, devicestore.KeyAuth, "revoked-token"))

	who, err := c.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, who)
}

func TestClient_BadCredentials(t *testing.T) {
	endpoint := startBackend(t)
	c, _, _ := newDevice(t, endpoint)

	_, err := c.Login(context.Background(), "ana@fandomia.test", "Wr0ngPass!")
	require.Error(t, err)
	assert.True(t, remote.IsStatus(err, http.StatusUnauthorized))
}

func TestClient_RoleLookups(t *testing.T) {
	ctx := context.Background()
	endpoint := startBackend(t)

	client, _, _ := newDevice(t, endpoint)
	_, err := client.Login(ctx, "beto@fandomia.test", seedPassword)
	require.NoError(t, err)
	role, err := client.WhoAmIRole(ctx)
	require.NoError(t, err)
	assert.Empty(t, role, "clients have no explicit role row")
	role, err = client.ProfileRole(ctx, "u-beto")
	require.NoError(t, err)
	assert.Equal(t, "client", role)

	staff, _, _ := newDevice(t, endpoint)
	_, err = staff.Login(ctx, "sofia@fandomia.test", seedPassword)
	require.NoError(t, err)
	role, err = staff.WhoAmIRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, "staff", role)
}

func TestClient_Product(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newDevice(t, startBackend(t))

	d, err := c.Product(ctx, "taza-studio-ghibli-totoro")
	require.NoError(t, err)
	assert.Equal(t, "Taza Studio Ghibli Totoro", d.Product.Name)
	assert.Empty(t, d.Variants)

	_, err = c.Product(ctx, "no-existe")
	assert.True(t, remote.IsStatus(err, http.StatusNotFound))
}

func TestClient_CatalogAndCategories(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newDevice(t, startBackend(t))

	all, err := c.Catalog(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	hits, err := c.Catalog(ctx, "súper saiyajin", "figuras")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "figura-goku-super-saiyajin", hits[0].Slug)
	assert.Equal(t, "899.5", hits[0].PriceFrom.String())

	_, err = c.Catalog(ctx, "", "Bad Slug")
	assert.True(t, remote.IsStatus(err, http.StatusBadRequest))

	cats, err := c.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 4)
	assert.Equal(t, "Figuras", cats[0].Name)
}

func TestReconcilerOverHTTP_MirrorsAndHydrates(t *testing.T) {
	ctx := context.Background()
	endpoint := startBackend(t)

	phone, phoneCart, _ := newDevice(t, endpoint)
	_, err := phone.Login(ctx, "ana@fandomia.test", seedPassword)
	require.NoError(t, err)
	require.NoError(t, phoneCart.AddToCart(ctx, 1, domain.Int64(1), 2))
	require.NoError(t, phoneCart.AddToCart(ctx, 4, nil, 1))

	rows, err := phone.FetchCartRows(ctx, "u-ana")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Quantity)

	laptop, laptopCart, _ := newDevice(t, endpoint)
	_, err = laptop.Login(ctx, "ana@fandomia.test", seedPassword)
	require.NoError(t, err)
	res := laptopCart.SyncCartToDbIfClient(ctx)
	require.True(t, res.OK(), "sync: %v", res.Reason)
	assert.Equal(t, cart.ActionHydrated, res.Action)
	assert.Equal(t, 3, laptopCart.CartCount(ctx))
}

func TestReconcilerOverHTTP_StaffStaysLocal(t *testing.T) {
	ctx := context.Background()
	endpoint := startBackend(t)

	c, rc, _ := newDevice(t, endpoint)
	_, err := c.Login(ctx, "sofia@fandomia.test", seedPassword)
	require.NoError(t, err)
	require.NoError(t, rc.AddToCart(ctx, 2, nil, 1))
	assert.Equal(t, 1, rc.CartCount(ctx))

	res := rc.SyncCartToDbIfClient(ctx)
	assert.Equal(t, cart.SyncSkippedNotEligible, res.Status)
	assert.ErrorIs(t, res.Reason, cart.ErrRoleNotEligible)

	_, err = c.FetchCartRows(ctx, "u-sofia")
	require.NoError(t, err)
}

func TestReconcilerOverHTTP_BackendDown(t *testing.T) {
	ctx := context.Background()
	c, rc, _ := newDevice(t, "http://127.0.0.1:1")
	require.NoError(t, rc.AddToCart(ctx, 1, nil, 1), "device writes never depend on the backend")
	assert.Equal(t, 1, rc.CartCount(ctx))

	_, err := c.Product(ctx, "x")
	assert.Error(t, err)
}
