package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chero-kobuleti/menu/internal/auth"
	"github.com/chero-kobuleti/menu/internal/store"
	"github.com/chero-kobuleti/menu/pkg/types"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fixture struct {
	t       *testing.T
	store   *store.Store
	handler http.Handler
	cookie  *http.Cookie
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	st, err := store.New(types.Config{
		DataDir:           t.TempDir(),
		LockTimeout:       time.Second,
		LockRetryInterval: 5 * time.Millisecond,
	}, nil)
	require.NoError(t, err)
	_, err = st.Init(context.Background())
	require.NoError(t, err)

	am := auth.NewManager(auth.Config{Password: "letmein", Secret: "s3cret"})
	return &fixture{t: t, store: st, handler: New(st, am, opts, nil).Handler()}
}

func (f *fixture) do(method, path string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if f.cookie != nil {
		req.AddCookie(f.cookie)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) login() {
	f.t.Helper()
	rec := f.do(http.MethodPost, "/api/admin/login", gin.H{"password": "letmein"})
	require.Equal(f.t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			f.cookie = c
		}
	}
	require.NotNil(f.t, f.cookie)
	assert.True(f.t, f.cookie.HttpOnly)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, Options{})
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/healthz", nil).Code)

	f.do(http.MethodGet, "/api/menu", nil)
	rec := f.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "menu_http_requests_total")
}

func TestAdminRequiresSession(t *testing.T) {
	f := newFixture(t, Options{})
	rec := f.do(http.MethodGet, "/api/admin/categories", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	f.cookie = &http.Cookie{Name: auth.CookieName, Value: "forged"}
	rec = f.do(http.MethodGet, "/api/admin/categories", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin(t *testing.T) {
	f := newFixture(t, Options{})
	rec := f.do(http.MethodPost, "/api/admin/login", gin.H{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, decode(t, rec)["ok"])

	f.login()
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/admin/categories", nil).Code)

	rec = f.do(http.MethodPost, "/api/admin/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := rec.Result().Cookies()
	require.NotEmpty(t, cleared)
	assert.Equal(t, "", cleared[0].Value)
}

func TestLoginRateLimited(t *testing.T) {
	f := newFixture(t, Options{LoginRate: 0.001, LoginBurst: 2})
	for range 2 {
		assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPost, "/api/admin/login", gin.H{"password": "x"}).Code)
	}
	rec := f.do(http.MethodPost, "/api/admin/login", gin.H{"password": "letmein"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestLoginRateLimitIgnoresForwardedFor(t *testing.T) {
	f := newFixture(t, Options{LoginRate: 0.001, LoginBurst: 2})
	throttled := 0
	for i := range 20 {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewBufferString(`{"password":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			throttled++
		}
	}
	assert.Equal(t, 18, throttled)
}

func TestLoginRateLimitTrustedProxy(t *testing.T) {
	// httptest requests come from 192.0.2.1.
	f := newFixture(t, Options{LoginRate: 0.001, LoginBurst: 1, TrustedProxies: []string{"192.0.2.0/24"}})
	send := func(client string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewBufferString(`{"password":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusUnauthorized, send("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.1"))
	assert.Equal(t, http.StatusUnauthorized, send("203.0.113.2"))
}

func TestLoginMalformedBody(t *testing.T) {
	f := newFixture(t, Options{})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewBufferString(`{"password":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, rec.Result().Cookies())
}

func TestMenuFlow(t *testing.T) {
	f := newFixture(t, Options{})
	f.login()

	rec := f.do(http.MethodPost, "/api/admin/categories", gin.H{
		"id": "bakery", "title": gin.H{"ka": "საცხობი", "en": "Bakery"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/admin/dishes", gin.H{
		"id": "khachapuri", "categoryId": "bakery", "priceMinor": 1890,
		"title": gin.H{"ka": "ხაჭაპური", "en": "Khachapuri"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/admin/dishes/photo", gin.H{"dishId": "khachapuri"})
	require.Equal(t, http.StatusOK, rec.Code)
	photo := decode(t, rec)["photo"].(map[string]any)
	assert.Equal(t, "/uploads/dishes/dish_khachapuri_1600.webp", photo["full"])

	f.cookie = nil
	rec = f.do(http.MethodGet, "/api/menu?lang=EN", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=30", rec.Header().Get("Cache-Control"))

	var menu struct {
		Lang       string               `json:"lang"`
		Categories []types.CategoryView `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &menu))
	assert.Equal(t, "en", menu.Lang)
	require.Len(t, menu.Categories, 1)
	assert.Equal(t, "Bakery", menu.Categories[0].Title)
	require.Len(t, menu.Categories[0].Dishes, 1)
	assert.Equal(t, "Khachapuri", menu.Categories[0].Dishes[0].Title)
	require.NotNil(t, menu.Categories[0].Dishes[0].Photo)
	assert.Equal(t, "/uploads/dishes/dish_khachapuri_800.webp", menu.Categories[0].Dishes[0].Photo.Small)

	rec = f.do(http.MethodGet, "/api/menu?lang=de", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ka", decode(t, rec)["lang"])
}

func TestErrorMapping(t *testing.T) {
	f := newFixture(t, Options{})
	f.login()
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/admin/categories", gin.H{"id": "bakery"}).Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/admin/dishes", gin.H{"id": "d1", "categoryId": "bakery"}).Code)

	rec := f.do(http.MethodDelete, "/api/admin/categories/bakery", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "confirmation required")

	rec = f.do(http.MethodDelete, "/api/admin/categories/bakery?confirm=true", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "cannot delete category bakery: it contains 1 dish(es)", decode(t, rec)["error"])

	rec = f.do(http.MethodPost, "/api/admin/categories/bulk", gin.H{"items": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/admin/dishes/status", gin.H{"id": "ghost", "status": "hidden"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPost, "/api/admin/dishes", gin.H{"id": "d2", "categoryId": "ghost"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.NoError(t, os.WriteFile(filepath.Join(f.store.Config().DataDir, types.LockFileName), nil, 0o644))
	rec = f.do(http.MethodPost, "/api/admin/categories", gin.H{"id": "salads"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "busy, try again", decode(t, rec)["error"])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"in use", &types.CategoryInUseError{CategoryID: "c", DishCount: 2}, http.StatusBadRequest},
		{"validation", types.ErrValidation, http.StatusBadRequest},
		{"confirmation", types.ErrConfirmationRequired, http.StatusBadRequest},
		{"not found", types.ErrNotFound, http.StatusNotFound},
		{"missing file", fmt.Errorf("%w: /srv/data/dishes.json: %w", types.ErrNotFound, fs.ErrNotExist), http.StatusNotFound},
		{"lock", types.ErrLockTimeout, http.StatusServiceUnavailable},
		{"io", types.ErrIO, http.StatusInternalServerError},
		{"parse", types.ErrParse, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := statusFor(tt.err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMissingDocumentHidesPath(t *testing.T) {
	f := newFixture(t, Options{})
	dir := f.store.Config().DataDir
	require.NoError(t, os.Remove(filepath.Join(dir, types.KindDishes.FileName())))

	rec := f.do(http.MethodGet, "/api/menu", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", decode(t, rec)["error"])
	assert.NotContains(t, rec.Body.String(), dir)

	_, msg := statusFor(fmt.Errorf("%w: dish %q", types.ErrNotFound, "ghost"))
	assert.Equal(t, `not found: dish "ghost"`, msg)
}

func TestHistoryAndRestore(t *testing.T) {
	f := newFixture(t, Options{})
	f.login()
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/admin/categories", gin.H{"id": "a"}).Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/admin/categories", gin.H{"id": "b"}).Code)

	rec := f.do(http.MethodGet, "/api/admin/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history map[string][]types.Backup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history["categories"], 2)
	assert.Empty(t, history["dishes"])
	newest := history["categories"][0].File

	rec = f.do(http.MethodPost, "/api/admin/history/restore", gin.H{"kind": "categories", "file": newest})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "confirmation required")

	rec = f.do(http.MethodPost, "/api/admin/history/restore", gin.H{"kind": "categories", "file": "../etc/passwd", "confirm": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/admin/history/restore", gin.H{"kind": "menus", "file": newest, "confirm": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/admin/history/restore", gin.H{"kind": "categories", "file": "categories.json.bak.nope", "confirm": true})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPost, "/api/admin/history/restore", gin.H{"kind": "categories", "file": newest, "confirm": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	doc, err := f.store.LoadCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "a", doc.Items[0].ID)

	rec = f.do(http.MethodPost, "/api/admin/history/prune", gin.H{"kind": "categories"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["removed"])
}
