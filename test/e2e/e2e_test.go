//go:build e2e

// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dinefine-workers/internal/common/config"
	"dinefine-workers/internal/common/database"
	"dinefine-workers/internal/common/logger"
	"dinefine-workers/internal/engine"
	"dinefine-workers/internal/extraction"
	"dinefine-workers/internal/menucache"
	"dinefine-workers/internal/models"
	"dinefine-workers/internal/profile"
	"dinefine-workers/internal/quota"

	am "dinefine-workers/internal/workers/dietary/analyze-menu"
	em "dinefine-workers/internal/workers/dietary/evaluate-menu"
	sr "dinefine-workers/internal/workers/dietary/scan-restaurant"
)

// services holds live connections to the local docker-compose stack.
type services struct {
	cfg *config.Config
	pg  *database.PostgresClient
	rdb *database.RedisClient
	es  *database.ElasticsearchClient
}

func connect(t *testing.T) *services {
	t.Helper()
	ctx := context.Background()

	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Database.Postgres.Host = "localhost"
	cfg.Database.Redis.Address = "localhost:6379"
	cfg.Database.Elasticsearch.Addresses = []string{"http://localhost:9200"}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "PostgreSQL connection failed")
	require.NoError(t, pg.Ping(ctx), "PostgreSQL ping failed")
	require.NoError(t, pg.EnsureSchema(ctx))
	t.Cleanup(func() { pg.Close() })

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "Redis client creation failed")
	require.NoError(t, rdb.Ping(ctx), "Redis ping failed")
	t.Cleanup(func() { rdb.Close() })

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err, "Elasticsearch client creation failed")
	require.NoError(t, es.Ping(ctx), "Elasticsearch ping failed")

	return &services{cfg: cfg, pg: pg, rdb: rdb, es: es}
}

// seedDiner writes a users row the profile store can read.
func seedDiner(t *testing.T, s *services, allergies, restrictions []string) string {
	t.Helper()
	ctx := context.Background()

	_, err := s.pg.DB.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS users (
		id                   TEXT PRIMARY KEY,
		allergies            JSONB,
		dietary_restrictions JSONB
	)`)
	require.NoError(t, err)

	a, _ := json.Marshal(allergies)
	d, _ := json.Marshal(restrictions)
	id := "e2e-" + uuid.NewString()
	_, err = s.pg.DB.ExecContext(ctx,
		`INSERT INTO users (id, allergies, dietary_restrictions) VALUES ($1, $2, $3)`, id, a, d)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = s.pg.DB.ExecContext(context.Background(), `DELETE FROM users WHERE id = $1`, id)
		_, _ = s.pg.DB.ExecContext(context.Background(), `DELETE FROM scrape_quota WHERE diner_id = $1`, id)
	})
	return id
}

// fakeExtractor stands in for the extraction service and counts calls.
func fakeExtractor(t *testing.T, items []models.MenuItem) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"items": items})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func thaiMenu() []models.MenuItem {
	return []models.MenuItem{
		{Name: "Pad Thai", Ingredients: []string{"rice noodles", "egg", "crushed peanuts"}},
		{Name: "Green Curry", Ingredients: []string{"coconut", "green chili", "tofu"}},
		{Name: "Mango Sticky Rice", Ingredients: []string{"mango", "glutinous rice"}},
	}
}

func newEngine(t *testing.T, s *services, store menucache.Store, ledger quota.Ledger, extractorURL string) *engine.Engine {
	t.Helper()
	log := logger.NewTestLogger(t)
	return engine.New(engine.Deps{
		Store:      store,
		Ledger:     ledger,
		DailyLimit: 2,
		Extractor: extraction.NewClient(config.ExtractionAPIConfig{
			BaseURL: extractorURL,
			Timeout: 5000,
		}, log),
		Profiles: profile.NewStore(s.pg.DB, s.rdb.Client, time.Minute, log),
	}, log)
}

func TestDietaryWorkers(t *testing.T) {
	s := connect(t)
	ctx := context.Background()
	dinerID := seedDiner(t, s, []string{"Peanuts"}, []string{"Vegan"})
	srv, _ := fakeExtractor(t, thaiMenu())

	eng := newEngine(t, s,
		menucache.NewRedisStore(s.rdb.Client, time.Hour),
		quota.NewRedisLedger(s.rdb.Client, 2),
		srv.URL)
	log := logger.NewTestLogger(t)
	wcfg := config.WorkerConfig{Enabled: true, Timeout: 10000}

	scan, err := sr.NewHandler(sr.LoadConfig(wcfg), eng, log).Execute(ctx, &sr.Input{
		Restaurant: models.Restaurant{Name: "Bangkok Garden", CuisineType: "Thai peanut curry"},
		UserID:     dinerID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RiskDanger, scan.RiskLevel)

	eval, err := em.NewHandler(em.LoadConfig(wcfg), eng, log).Execute(ctx, &em.Input{
		Items:  thaiMenu(),
		UserID: dinerID,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, eval.TotalItems)
	assert.Contains(t, eval.RestrictedItems, "Pad Thai")

	analyze := am.NewHandler(am.LoadConfig(wcfg, s.cfg.APIs.Extraction), eng, log)
	input := &am.Input{SourceKey: "e2e-" + uuid.NewString(), UserID: dinerID}
	t.Cleanup(func() { s.rdb.Client.Del(context.Background(), "menu:extraction:"+input.SourceKey) })

	first, err := analyze.Execute(ctx, input)
	require.NoError(t, err)
	assert.False(t, first.ServedFromCache)
	require.NotNil(t, first.QuotaRemaining)
	assert.Equal(t, 1, *first.QuotaRemaining)

	second, err := analyze.Execute(ctx, input)
	require.NoError(t, err)
	assert.True(t, second.ServedFromCache)
	assert.Equal(t, 1, *second.QuotaRemaining)
}

func TestDurableBackends(t *testing.T) {
	s := connect(t)
	ctx := context.Background()
	dinerID := seedDiner(t, s, []string{"Peanuts"}, nil)
	srv, calls := fakeExtractor(t, thaiMenu())

	esStore := menucache.NewElasticStore(s.es.Client, fmt.Sprintf("e2e-menus-%d", time.Now().UnixNano()))
	require.NoError(t, esStore.EnsureIndex(ctx))

	stores := map[string]menucache.Store{
		"postgres":      menucache.NewPostgresStore(s.pg.DB),
		"elasticsearch": esStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			atomic.StoreInt32(calls, 0)
			_, _ = s.pg.DB.ExecContext(ctx, `DELETE FROM scrape_quota WHERE diner_id = $1`, dinerID)

			eng := newEngine(t, s, store, quota.NewPostgresLedger(s.pg.DB, 2), srv.URL)
			req := engine.MenuRequest{SourceKey: "e2e-" + uuid.NewString(), DinerID: dinerID}

			for i := 0; i < 3; i++ {
				res, err := eng.GetOrExtractMenu(ctx, req)
				require.NoError(t, err)
				assert.Len(t, res.Items, 3)
			}
			assert.Equal(t, int32(1), atomic.LoadInt32(calls))

			left, err := quota.NewPostgresLedger(s.pg.DB, 2).Remaining(ctx, dinerID)
			require.NoError(t, err)
			assert.Equal(t, 1, left)
		})
	}
}
