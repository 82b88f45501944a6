package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/codecache"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/auth"
	"github.com/mohammedshafiuddin/meatfarmer-sub002/internal/domain/product"
)

type stubKeyRepo struct {
	accounts map[string]*auth.Account
}

func (r *stubKeyRepo) FindByHash(_ context.Context, hash string) (*auth.Account, error) {
	if a, ok := r.accounts[hash]; ok {
		return a, nil
	}
	return nil, auth.ErrNotFound
}

type stubProductRepo struct {
	products []product.Product
}

func (r *stubProductRepo) List(context.Context) ([]product.Product, error) {
	return r.products, nil
}

func (r *stubProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	for i := range r.products {
		if r.products[i].ID == id {
			return &r.products[i], nil
		}
	}
	return nil, product.ErrNotFound
}

func (r *stubProductRepo) GetByIDs(context.Context, []string) ([]product.Product, error) {
	return r.products, nil
}

func (r *stubProductRepo) SetOutOfStock(_ context.Context, id string, v bool) error {
	for i := range r.products {
		if r.products[i].ID == id {
			r.products[i].OutOfStock = v
			return nil
		}
	}
	return product.ErrNotFound
}

const (
	testPepper   = "test-pepper"
	userKey      = "user-key"
	adminKey     = "admin-key"
	unknownKey   = "nobody-key"
	testUserID   = "11111111-1111-1111-1111-111111111111"
	testAdminID  = "22222222-2222-2222-2222-222222222222"
	testProdID   = "33333333-3333-3333-3333-333333333333"
	testProdName = "Atlantic Salmon"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	keys := &stubKeyRepo{accounts: map[string]*auth.Account{}}
	for _, k := range []struct {
		key    string
		userID string
		admin  bool
	}{
		{userKey, testUserID, false},
		{adminKey, testAdminID, true},
	} {
		hash := HashKey([]byte(testPepper), k.key)
		keys.accounts[hash] = &auth.Account{KeyHash: hash, UserID: k.userID, Admin: k.admin}
	}

	products := &stubProductRepo{products: []product.Product{
		{ID: testProdID, Name: testProdName, Price: decimal.NewFromInt(300)},
	}}

	codes := codecache.New(filepath.Join(t.TempDir(), "codes.gz"))
	require.NoError(t, codes.Load())

	return NewHandler(products, nil, nil, nil, nil, nil, nil, codes, keys, []byte(testPepper))
}

func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.Register(mux)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestAuthMissingKey(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	w := serve(h, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthUnknownKey(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set(apiKeyHeader, unknownKey)
	w := serve(h, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListProducts(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set(apiKeyHeader, userKey)
	w := serve(h, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), testProdName)
	assert.Contains(t, w.Body.String(), `"price":"300.00"`)
}

func TestAdminRouteRejectsRegularUser(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/products/"+testProdID+"/stock",
		strings.NewReader(`{"outOfStock":true}`))
	req.Header.Set(apiKeyHeader, userKey)
	w := serve(h, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminTogglesStock(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/products/"+testProdID+"/stock",
		strings.NewReader(`{"outOfStock":true}`))
	req.Header.Set(apiKeyHeader, adminKey)
	w := serve(h, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"outOfStock":true`)
}

func TestValidateUnknownCodeSkipsLookup(t *testing.T) {
	h := newTestHandler(t)
	h.codes.Add("REALCODE")

	// The coupon repository is nil: reaching it would panic, so a 404 here
	// proves the prescreen answered without a lookup.
	req := httptest.NewRequest(http.MethodPost, "/api/coupons/validate",
		strings.NewReader(`{"code":"GARBAGE1"}`))
	req.Header.Set(apiKeyHeader, userKey)
	w := serve(h, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
