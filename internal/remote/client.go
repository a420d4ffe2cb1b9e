// Package remote talks to the fandomia backend over HTTP on behalf of a
// device. The bearer token lives in the device store so every command
// sees the same sign-in.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fandomia/internal/cart"
	"fandomia/internal/devicestore"
	"fandomia/internal/domain"
)

var _ cart.Backend = (*Client)(nil)

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Code)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Message)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

type Client struct {
	endpoint string
	store    devicestore.Store
	http     *http.Client
}

// New builds a client for the backend at endpoint. A zero timeout means 10s.
func New(endpoint string, store devicestore.Store, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		store:    store,
		http:     &http.Client{Timeout: timeout},
	}
}

func (c *Client) token(ctx context.Context) (string, error) {
	tok, _, err := c.store.Get(ctx, devicestore.KeyAuth)
	if err != nil {
		return "", fmt.Errorf("read auth session: %w", err)
	}
	return tok, nil
}

// do sends in (if non-nil) as JSON and decodes a 2xx body into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		_ = json.Unmarshal(b, &e)
		return &StatusError{Code: resp.StatusCode, Message: e.Error}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Login exchanges credentials for a token and keeps it on the device.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	var out struct {
		AccessToken string          `json:"access_token"`
		User        domain.Identity `json:"user"`
	}
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token", in, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, errors.New("backend returned an empty token")
	}
	if err := c.store.Set(ctx, devicestore.KeyAuth, out.AccessToken); err != nil {
		return nil, fmt.Errorf("save auth session: %w", err)
	}
	return &out.User, nil
}

// Logout revokes the token remotely and forgets it locally. The local
// token is dropped even when the backend cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	remoteErr := c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, nil)
	if err := c.store.Delete(ctx, devicestore.KeyAuth); err != nil {
		return fmt.Errorf("drop auth session: %w", err)
	}
	return remoteErr
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
}

func (c *Client) SignUp(ctx context.Context, in SignUpRequest) (*domain.Identity, error) {
	var id domain.Identity
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", in, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

func (c *Client) Product(ctx context.Context, slug string) (domain.ProductDetail, error) {
	var d domain.ProductDetail
	err := c.do(ctx, http.MethodGet, "/rest/v1/products/"+url.PathEscape(slug), nil, &d)
	return d, err
}

// CurrentUser returns nil without error when no token is stored or the
// backend no longer accepts it.
// Catalog fetches the product grid; empty q and category list everything.
func (c *Client) Catalog(ctx context.Context, q, category string) ([]domain.CatalogItem, error) {
	v := url.Values{}
	if q != "" {
		v.Set("q", q)
	}
	if category != "" {
		v.Set("category", category)
	}
	path := "/rest/v1/products"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	out := []domain.CatalogItem{}
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := c.do(ctx, http.MethodGet, "/rest/v1/categories", nil, &out)
	return out, err
}

func (c *Client) CurrentUser(ctx context.Context) (*domain.Identity, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return nil, err
	}
	if tok == "" {
		return nil, nil
	}
	var id domain.Identity
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, &id); err != nil {
		if IsStatus(err, http.StatusUnauthorized) {
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}

func (c *Client) WhoAmIRole(ctx context.Context) (string, error) {
	var role *string
	if err := c.do(ctx, http.MethodPost, "/rest/v1/rpc/whoami_role", nil, &role); err != nil {
		return "", err
	}
	if role == nil {
		return "", nil
	}
	return *role, nil
}

func (c *Client) ProfileRole(ctx context.Context, userID string) (string, error) {
	var p domain.Profile
	if err := c.do(ctx, http.MethodGet, "/rest/v1/profiles/"+url.PathEscape(userID), nil, &p); err != nil {
		return "", err
	}
	return p.Role, nil
}

func (c *Client) UpsertCartRows(ctx context.Context, rows []domain.RemoteCartRow) error {
	return c.do(ctx, http.MethodPost, "/rest/v1/cart_items", rows, nil)
}

func (c *Client) FetchCartRows(ctx context.Context, customerID string) ([]domain.CartLine, error) {
	var rows []domain.RemoteCartRow
	q := url.Values{"customer_id": {customerID}}
	if err := c.do(ctx, http.MethodGet, "/rest/v1/cart_items?"+q.Encode(), nil, &rows); err != nil {
		return nil, err
	}
	out := make([]domain.CartLine, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Line())
	}
	return out, nil
}
