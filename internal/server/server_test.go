package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/domain"
	"marketplace/internal/repository"
	"marketplace/internal/service"
	"marketplace/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Host: "127.0.0.1", Port: "0", Env: "test"},
		RateLimit: config.RateLimitConfig{Requests: 3, Window: time.Minute},
	}
}

func seedDocument() domain.Catalog {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return domain.Catalog{
		Products: []domain.Product{
			{ID: "prd-seed", Name: "Seed", Description: "seeded", Price: 12.5, Image: "seed.png", CreatedAt: base},
		},
		Affiliates: []domain.Affiliate{
			{ID: "aff-seed", Name: "Fleet", Description: "partner", Image: "fleet.png", DiscordURL: "https://discord.gg/fleet", RobloxURL: "https://roblox.com/fleet", CreatedAt: base},
		},
	}
}

func newTestRouter(t *testing.T, deps Dependencies) http.Handler {
	t.Helper()
	return newObservedRouter(t, zap.NewNop(), deps)
}

func newObservedRouter(t *testing.T, logger *zap.Logger, deps Dependencies) chi.Router {
	t.Helper()
	ctx := context.Background()

	store := storage.NewMemoryStore()
	require.NoError(t, store.Initialize(ctx, seedDocument))
	catalog, err := repository.NewCatalog(ctx, store, zap.NewNop())
	require.NoError(t, err)

	deps.Catalog = catalog
	deps.Store = store
	return NewRouter(testConfig(), logger, deps)
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["message"]
}

func TestScenario_CreateProduct(t *testing.T) {
	router := newTestRouter(t, Dependencies{})

	w := do(t, router, http.MethodPost, "/api/products",
		`{"name":"X","description":"Y","image":"z.png","price":10}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Regexp(t, regexp.MustCompile(`^prd-`), created["id"])
	assert.Equal(t, float64(10), created["price"])
	assert.NotEmpty(t, created["createdAt"])

	list := do(t, router, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, list.Code)
	var products []domain.Product
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &products))
	require.Len(t, products, 2)
	assert.Equal(t, created["id"], products[0].ID, "newest product is listed first")
}

func TestScenario_PatchUnknownProduct(t *testing.T) {
	router := newTestRouter(t, Dependencies{})

	w := do(t, router, http.MethodPatch, "/api/products/prd-missing", `{"price":5}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Producto no encontrado.", decodeMessage(t, w))
}

func TestScenario_CreateProductWithEmptyName(t *testing.T) {
	router := newTestRouter(t, Dependencies{})

	w := do(t, router, http.MethodPost, "/api/products",
		`{"name":"","description":"Y","image":"z.png","price":10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "El nombre es obligatorio.", decodeMessage(t, w))
}

func TestScenario_DeleteAffiliate(t *testing.T) {
	router := newTestRouter(t, Dependencies{})

	w := do(t, router, http.MethodDelete, "/api/affiliates/aff-seed", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	list := do(t, router, http.MethodGet, "/api/affiliates", "")
	require.Equal(t, http.StatusOK, list.Code)
	assert.NotContains(t, list.Body.String(), "aff-seed")
	assert.JSONEq(t, `[]`, list.Body.String())

	again := do(t, router, http.MethodDelete, "/api/affiliates/aff-seed", "")
	assert.Equal(t, http.StatusNotFound, again.Code)
	assert.Equal(t, "Afiliado no encontrado.", decodeMessage(t, again))
}

func TestScenario_CreateAffiliate(t *testing.T) {
	router := newTestRouter(t, Dependencies{})

	w := do(t, router, http.MethodPost, "/api/affiliates",
		`{"name":"Guild","description":"Builders","image":"guild.png","discordUrl":"https://discord.gg/guild","robloxUrl":"https://roblox.com/guild"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created domain.Affiliate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Regexp(t, regexp.MustCompile(`^aff-`), created.ID)
	assert.Equal(t, "https://discord.gg/guild", created.DiscordURL)
	assert.False(t, created.CreatedAt.IsZero())

	list := do(t, router, http.MethodGet, "/api/affiliates", "")
	require.Equal(t, http.StatusOK, list.Code)
	var affiliates []domain.Affiliate
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &affiliates))
	require.Len(t, affiliates, 2)
	assert.Equal(t, created.ID, affiliates[0].ID)
}

func TestScenario_CreateAffiliateWithBlankDiscord(t *testing.T) {
	router := newTestRouter(t, Dependencies{})

	w := do(t, router, http.MethodPost, "/api/affiliates",
		`{"name":"Guild","description":"Builders","image":"guild.png","discordUrl":"","robloxUrl":"https://roblox.com/guild"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "El enlace de comunicaciones es obligatorio.", decodeMessage(t, w))
}

func TestScenario_PatchAffiliate(t *testing.T) {
	router := newTestRouter(t, Dependencies{})

	w := do(t, router, http.MethodPatch, "/api/affiliates/aff-seed", `{"name":"Fleet Prime"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var updated domain.Affiliate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	seeded := seedDocument().Affiliates[0]
	assert.Equal(t, "aff-seed", updated.ID)
	assert.Equal(t, "Fleet Prime", updated.Name)
	assert.Equal(t, seeded.DiscordURL, updated.DiscordURL)
	assert.True(t, seeded.CreatedAt.Equal(updated.CreatedAt), "createdAt is preserved")

	missing := do(t, router, http.MethodPatch, "/api/affiliates/aff-missing", `{"name":"Ghost"}`)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "Afiliado no encontrado.", decodeMessage(t, missing))
}

func TestRouter_LogsRecoveredPanics(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	router := newObservedRouter(t, zap.New(core), Dependencies{})
	router.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	w := do(t, router, http.MethodGet, "/boom", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	entries := logs.FilterMessage("Request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(http.StatusInternalServerError), entries[0].ContextMap()["status"])
}

func TestRouter_Ambient(t *testing.T) {
	router := newTestRouter(t, Dependencies{})

	t.Run("liveness", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, LivenessMessage, w.Body.String())
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("health", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("unknown route", func(t *testing.T) {
		w := do(t, router, http.MethodGet, "/api/orders", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Ruta no encontrada.", decodeMessage(t, w))
	})

	t.Run("unsupported method", func(t *testing.T) {
		w := do(t, router, http.MethodPut, "/api/products/prd-seed", `{}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Ruta no encontrada.", decodeMessage(t, w))
	})

	t.Run("preflight", func(t *testing.T) {
		w := do(t, router, http.MethodOptions, "/api/products", "",
			"Origin", "https://shop.example", "Access-Control-Request-Method", "POST")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("session route absent without owner auth", func(t *testing.T) {
		w := do(t, router, http.MethodPost, "/api/session", `{"username":"a","password":"b"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRouter_OwnerAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	owners := service.NewOwnerService("FormalDev", string(hash), "jwt-secret", time.Hour, nil)
	router := newTestRouter(t, Dependencies{Owners: owners})

	payload := `{"name":"X","description":"Y","image":"z.png","price":"3.5"}`

	w := do(t, router, http.MethodPost, "/api/products", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	bad := do(t, router, http.MethodPost, "/api/session", `{"username":"FormalDev","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, bad.Code)

	session := do(t, router, http.MethodPost, "/api/session", `{"username":"FormalDev","password":"secret-pass"}`)
	require.Equal(t, http.StatusOK, session.Code)
	var tokens map[string]string
	require.NoError(t, json.Unmarshal(session.Body.Bytes(), &tokens))
	require.NotEmpty(t, tokens["accessToken"])

	w = do(t, router, http.MethodPost, "/api/products", payload, "Authorization", "Bearer "+tokens["accessToken"])
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 3.5, created.Price)

	// Reads stay public.
	list := do(t, router, http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusOK, list.Code)
}

func TestRouter_RateLimitsMutations(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	router := newTestRouter(t, Dependencies{Redis: redisClient})

	for i := 0; i < 3; i++ {
		w := do(t, router, http.MethodPatch, "/api/products/prd-seed", `{}`)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}
	w := do(t, router, http.MethodPatch, "/api/products/prd-seed", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	for i := 0; i < 5; i++ {
		list := do(t, router, http.MethodGet, "/api/products", "")
		assert.Equal(t, http.StatusOK, list.Code, "reads are not limited")
	}
}
