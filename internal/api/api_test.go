package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dinefine-workers/internal/common/logger"
	"dinefine-workers/internal/engine"
	"dinefine-workers/internal/extraction"
	"dinefine-workers/internal/menucache"
	"dinefine-workers/internal/models"
	"dinefine-workers/internal/quota"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	items []models.MenuItem
	err   error
}

func (s *stubExtractor) Extract(context.Context, extraction.Request) ([]models.MenuItem, error) {
	return s.items, s.err
}

func thaiMenu() []models.MenuItem {
	return []models.MenuItem{
		{Name: "Pad Thai", Ingredients: []string{"rice noodles", "egg", "crushed peanuts"}},
		{Name: "Green Curry", Ingredients: []string{"coconut", "green chili", "tofu"}},
		{Name: "Mango Sticky Rice", Ingredients: []string{"mango", "glutinous rice"}},
	}
}

func testRouter(t *testing.T, limit int, ext *stubExtractor, checks map[string]ReadinessCheck) http.Handler {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	eng := engine.New(engine.Deps{
		Store:      menucache.NewRedisStore(client, 0),
		Ledger:     quota.NewRedisLedger(client, limit),
		DailyLimit: limit,
		Extractor:  ext,
	}, logger.NewTestLogger(t))

	return NewRouter(eng, checks, logger.NewTestLogger(t))
}

func post(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestScanRestaurant(t *testing.T) {
	h := testRouter(t, 5, &stubExtractor{}, nil)

	rec := post(t, h, "/api/v1/restaurants/scan", map[string]interface{}{
		"restaurant": map[string]interface{}{"name": "Bangkok Garden", "cuisineType": "Thai peanut curry specialists"},
		"diner":      map[string]interface{}{"allergies": []string{"Peanuts"}, "dietaryRestrictions": []string{}},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var verdict models.ScanVerdict
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verdict))
	assert.Equal(t, models.RiskDanger, verdict.RiskLevel)
	assert.Equal(t, []string{"Contains peanuts: peanut"}, verdict.AllergenWarnings)
	assert.False(t, verdict.IsSafe)
}

func TestScanRestaurant_RequiresName(t *testing.T) {
	h := testRouter(t, 5, &stubExtractor{}, nil)

	rec := post(t, h, "/api/v1/restaurants/scan", map[string]interface{}{
		"restaurant": map[string]interface{}{"cuisineType": "Thai"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeBody(t, rec)["code"])
}

func TestEvaluateMenu(t *testing.T) {
	h := testRouter(t, 5, &stubExtractor{}, nil)

	rec := post(t, h, "/api/v1/menus/evaluate", map[string]interface{}{
		"items": thaiMenu(),
		"diner": map[string]interface{}{"allergies": []string{"Peanuts"}},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp evaluateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.TotalItems)
	assert.Equal(t, 2, resp.SafeItemsCount)
	require.Len(t, resp.Items, 3)
	assert.True(t, resp.Items[0].Restricted)
}

func TestEvaluateMenu_EmptyMenu(t *testing.T) {
	h := testRouter(t, 5, &stubExtractor{}, nil)

	rec := post(t, h, "/api/v1/menus/evaluate", `{"diner":{"allergies":["Peanuts"]}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(0), body["totalItems"])
	assert.Equal(t, true, body["hasSafeItems"])
}

func TestEvaluateMenu_ItemWithoutName(t *testing.T) {
	h := testRouter(t, 5, &stubExtractor{}, nil)

	rec := post(t, h, "/api/v1/menus/evaluate", `{"items":[{"ingredients":["egg"]}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeMenu(t *testing.T) {
	h := testRouter(t, 5, &stubExtractor{items: thaiMenu()}, nil)
	body := map[string]interface{}{
		"sourceKey": "https://bangkok.example",
		"userId":    "user-123",
		"diner":     map[string]interface{}{"allergies": []string{"Peanuts"}},
	}

	first := post(t, h, "/api/v1/menus/analyze", body)
	require.Equal(t, http.StatusOK, first.Code)
	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &resp))
	assert.False(t, resp.ServedFromCache)
	assert.Equal(t, 2, resp.Summary.SafeItemsCount)
	require.NotNil(t, resp.QuotaRemaining)
	assert.Equal(t, 4, *resp.QuotaRemaining)

	second := post(t, h, "/api/v1/menus/analyze", body)
	require.Equal(t, http.StatusOK, second.Code)
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.True(t, resp.ServedFromCache)
	assert.Equal(t, "hit", resp.CacheDecision)
}

func TestAnalyzeMenu_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		ext        *stubExtractor
		wantStatus int
		wantCode   string
	}{
		{"quota exhausted", 0, &stubExtractor{items: thaiMenu()}, http.StatusTooManyRequests, "QUOTA_EXCEEDED"},
		{"extraction failed", 5, &stubExtractor{err: extraction.ErrExtractionFailed}, http.StatusBadGateway, "EXTRACTION_FAILED"},
		{"extraction timeout", 5, &stubExtractor{err: extraction.ErrExtractionTimeout}, http.StatusGatewayTimeout, "EXTRACTION_TIMEOUT"},
		{"nothing extracted", 5, &stubExtractor{items: []models.MenuItem{}}, http.StatusBadGateway, "EXTRACTION_EMPTY"},
		{"unexpected failure", 5, &stubExtractor{err: errors.New("boom")}, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testRouter(t, tt.limit, tt.ext, nil)

			rec := post(t, h, "/api/v1/menus/analyze", map[string]interface{}{
				"sourceKey": "place-1",
				"userId":    "user-123",
			})

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeBody(t, rec)["code"])
		})
	}
}

func TestAnalyzeMenu_Validation(t *testing.T) {
	h := testRouter(t, 5, &stubExtractor{items: thaiMenu()}, nil)

	assert.Equal(t, http.StatusBadRequest, post(t, h, "/api/v1/menus/analyze", `{"userId":"user-123"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, h, "/api/v1/menus/analyze", `{"sourceKey":"place-1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, h, "/api/v1/menus/analyze", `{"sourceKey":`).Code)
}

func TestUserWithoutProfileStore(t *testing.T) {
	h := testRouter(t, 5, &stubExtractor{}, nil)

	rec := post(t, h, "/api/v1/restaurants/scan", map[string]interface{}{
		"restaurant": map[string]interface{}{"name": "Bangkok Garden"},
		"userId":     "user-123",
	})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "PROFILE_LOOKUP_FAILED", decodeBody(t, rec)["code"])
}

func TestHealthReadyMetrics(t *testing.T) {
	h := testRouter(t, 5, &stubExtractor{}, map[string]ReadinessCheck{
		"redis": func(context.Context) error { return nil },
	})

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestReady_FailingCheck(t *testing.T) {
	h := testRouter(t, 5, &stubExtractor{}, map[string]ReadinessCheck{
		"postgres": func(context.Context) error { return errors.New("connection refused") },
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "connection refused", body["failed"].(map[string]interface{})["postgres"])
}
