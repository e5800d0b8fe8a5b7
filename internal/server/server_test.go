package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/apikey"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/catalog"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/clock"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/config"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/gateway"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/models"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/ratelimit"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/registry"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminToken = "test-admin-token"

type testServer struct {
	srv   *PublicServer
	keys  *apikey.MemoryStore
	clk   *clock.Fake
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{Env: "test"},
		Gateway: config.GatewayConfig{
			Title:      "Dog Walking API",
			Version:    "1.0",
			BaseURL:    "https://api.example.com/api/v1",
			AuthHeader: "X-API-Key",
			AdminToken: adminToken,
		},
		RateLimit: config.RateLimitConfig{DefaultCeiling: 1000, MaxCeiling: 10000},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
	}

	clk := clock.NewFake(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	keys := apikey.NewMemoryStore(clk, cfg.RateLimit.DefaultCeiling, cfg.RateLimit.MaxCeiling)
	reg := registry.New(registry.Info{
		Title:            cfg.Gateway.Title,
		Version:          cfg.Gateway.Version,
		BaseURL:          cfg.Gateway.BaseURL,
		AuthHeader:       cfg.Gateway.AuthHeader,
		DefaultRateLimit: cfg.RateLimit.DefaultCeiling,
		MaxRateLimit:     cfg.RateLimit.MaxCeiling,
	})
	catalog.RegisterRoutes(reg, catalog.NewSeededStore(clk))
	gw := gateway.New(clk, keys, reg, ratelimit.NewMemoryLimiter(clk), telemetry.NewRecorder())

	result, err := keys.Issue(context.Background(), apikey.IssueRequest{
		Name: "test-integrator",
		Permissions: []models.Permission{
			{Resource: "walkers", Actions: []models.Action{models.ActionRead}},
			{Resource: "services", Actions: []models.Action{models.ActionRead}},
			{Resource: "bookings", Actions: []models.Action{models.ActionRead, models.ActionWrite, models.ActionDelete}},
			{Resource: "reviews", Actions: []models.Action{models.ActionRead, models.ActionWrite}},
		},
	})
	require.NoError(t, err)

	return &testServer{
		srv:   NewPublicServer(cfg, gw, keys),
		keys:  keys,
		clk:   clk,
		token: result.Token,
	}
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("X-API-Key", token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	ts.srv.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthEndpointNeedsNoKey(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
}

func TestWalkersSearchOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/v1/walkers?city=Paris", ts.token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(1), pagination["total"])

	walkers := body["data"].([]any)
	require.Len(t, walkers, 1)
	assert.Equal(t, "Amélie Rousseau", walkers[0].(map[string]any)["name"])
}

func TestMissingKeyIs401(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/v1/walkers", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_API_KEY", decode(t, w)["error"])
}

func TestBogusKeyIs401(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/v1/walkers", "not-a-real-key", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_API_KEY", decode(t, w)["error"])
}

func TestQueryCoercionOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	// Query values arrive as strings; the schema declares numbers.
	w := ts.do(http.MethodGet, "/api/v1/walkers?minRating=4.8&limit=1", ts.token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["total"])
	assert.Len(t, body["data"].([]any), 1)
}

func TestValidationErrorEnvelopeOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/v1/bookings", ts.token, map[string]any{
		"date":     "2025-06-05",
		"timeSlot": "morning",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	assert.Equal(t, "VALIDATION_ERROR", body["error"])
	details := body["details"].([]any)
	require.Len(t, details, 2)
	assert.Equal(t, "parameter 'walkerId' is required", details[0])
	assert.Equal(t, "parameter 'serviceId' is required", details[1])
}

func TestMalformedBodyIs400(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader([]byte("not json")))
	req.Header.Set("X-API-Key", ts.token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	ts.srv.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, w)["error"])
}

func TestBookingFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/v1/bookings", ts.token, map[string]any{
		"walkerId":  "wlk_amelie",
		"serviceId": "svc_solo_30",
		"date":      "2025-06-05",
		"timeSlot":  "morning",
	})
	require.Equal(t, http.StatusOK, w.Code)

	booking := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "pending", booking["status"])
	id := booking["id"].(string)

	w = ts.do(http.MethodDelete, "/api/v1/bookings/"+id, ts.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cancelled", decode(t, w)["data"].(map[string]any)["status"])
}

func TestDomainNotFoundOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/v1/walkers/wlk_ghost", ts.token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "WALKER_NOT_FOUND", decode(t, w)["error"])
}

func TestDocsAreServedWithoutAKey(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/v1/docs", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	info := body["info"].(map[string]any)
	assert.Equal(t, "Dog Walking API", info["title"])
	endpoints := body["endpoints"].([]any)
	assert.Len(t, endpoints, 10)
}

func TestCodeSamplesEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/v1/docs/samples?lang=go", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "go", body["language"])
	samples := body["samples"].(map[string]any)
	assert.Contains(t, samples, "GET /walkers")
	assert.Contains(t, samples["GET /walkers"], "X-API-Key")

	w = ts.do(http.MethodGet, "/api/v1/docs/samples?lang=rust", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRequiresToken(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/keys", nil)
	w := httptest.NewRecorder()
	ts.srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminKeyLifecycle(t *testing.T) {
	ts := newTestServer(t)

	adminDo := func(method, path string, body any) *httptest.ResponseRecorder {
		var reader *bytes.Reader
		if body != nil {
			payload, _ := json.Marshal(body)
			reader = bytes.NewReader(payload)
		} else {
			reader = bytes.NewReader(nil)
		}
		req := httptest.NewRequest(method, path, reader)
		req.Header.Set("X-Admin-Token", adminToken)
		w := httptest.NewRecorder()
		ts.srv.Router().ServeHTTP(w, req)
		return w
	}

	w := adminDo(http.MethodPost, "/admin/keys", map[string]any{
		"name": "new-partner",
		"permissions": []map[string]any{
			{"resource": "walkers", "actions": []string{"read"}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	issued := decode(t, w)
	token := issued["token"].(string)
	keyID := issued["key"].(map[string]any)["id"].(string)
	require.NotEmpty(t, token)

	// The fresh token works on the public surface.
	pub := ts.do(http.MethodGet, "/api/v1/walkers", token, nil)
	assert.Equal(t, http.StatusOK, pub.Code)

	w = adminDo(http.MethodGet, "/admin/keys", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["total"])

	w = adminDo(http.MethodDelete, "/admin/keys/"+keyID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	pub = ts.do(http.MethodGet, "/api/v1/walkers", token, nil)
	assert.Equal(t, http.StatusUnauthorized, pub.Code)

	// History survives revocation. The post-revocation attempt landed in the
	// unauthenticated bucket, so only the successful call shows here.
	w = adminDo(http.MethodGet, "/admin/keys/"+keyID+"/usage", nil)
	require.Equal(t, http.StatusOK, w.Code)
	usage := decode(t, w)["usage"].(map[string]any)
	assert.Equal(t, float64(1), usage["total"])
}

func TestRateLimitOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	result, err := ts.keys.Issue(context.Background(), apikey.IssueRequest{
		Name:        "tiny-ceiling",
		Permissions: []models.Permission{{Resource: "walkers", Actions: []models.Action{models.ActionRead}}},
		RateCeiling: 2,
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		w := ts.do(http.MethodGet, "/api/v1/walkers", result.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := ts.do(http.MethodGet, "/api/v1/walkers", result.Token, nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", decode(t, w)["error"])

	ts.clk.Advance(time.Hour)
	w = ts.do(http.MethodGet, "/api/v1/walkers", result.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
