package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dinefine-workers/internal/common/config"
	commonhttp "dinefine-workers/internal/common/http"
	"dinefine-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, timeoutMs int) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.ExtractionAPIConfig{
		BaseURL: srv.URL + "/",
		APIKey:  "secret",
		Timeout: timeoutMs,
	}, logger.NewTestLogger(t))
}

func TestExtract_Success(t *testing.T) {
	var got Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/menus/extract", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"name":" Pad Thai ","category":"Noodles","ingredients":["rice noodles"," peanuts ",""]},
			{"name":"   ","ingredients":["water"]},
			{"name":"Satay","containsRestricted":["Peanuts"]}
		]}`))
	}, 1000)

	items, err := client.Extract(context.Background(), Request{SourceKey: "place-1", Query: "thai"})
	require.NoError(t, err)

	assert.Equal(t, "place-1", got.SourceKey)
	assert.Equal(t, "thai", got.Query)

	require.Len(t, items, 2)
	assert.Equal(t, "Pad Thai", items[0].Name)
	assert.Equal(t, []string{"rice noodles", "peanuts"}, items[0].Ingredients)
	assert.Equal(t, []string{"Peanuts"}, items[1].ContainsRestricted)
	assert.Empty(t, items[1].Ingredients)
}

func TestExtract_EmptyResultIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	}, 1000)

	items, err := client.Extract(context.Background(), Request{SourceKey: "place-1"})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestExtract_UpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("scraper unavailable"))
	}, 1000)

	_, err := client.Extract(context.Background(), Request{SourceKey: "place-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtractionFailed)
	assert.False(t, errors.Is(err, ErrExtractionTimeout))

	var statusErr *commonhttp.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "scraper unavailable")
}

func TestExtract_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":`))
	}, 1000)

	_, err := client.Extract(context.Background(), Request{SourceKey: "place-1"})
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestExtract_Timeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, 50)

	_, err := client.Extract(context.Background(), Request{SourceKey: "place-1"})
	assert.ErrorIs(t, err, ErrExtractionTimeout)
}
