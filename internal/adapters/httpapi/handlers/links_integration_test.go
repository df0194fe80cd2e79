//go:build integration

package handlers_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpg "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"shorty/internal/adapters/httpapi"
	"shorty/internal/adapters/httpapi/handlers"
	"shorty/internal/adapters/httpapi/plugins"
	pgrepo "shorty/internal/adapters/postgres"
	"shorty/internal/app/links"
	"shorty/internal/platform/config"
	"shorty/internal/platform/postgres"
	"shorty/internal/testutils"
)

var (
	tcCtx     = context.Background()
	pgC       *tcpg.PostgresContainer
	db        *sql.DB
	itRouter  *gin.Engine
	itBaseURL string
)

var codeRe = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

func TestMain(m *testing.M) {
	os.Exit(runMain(m))
}

func runMain(m *testing.M) int {
	var err error

	pgC, err = tcpg.RunContainer(
		tcCtx,
		testcontainers.WithImage("postgres:16-alpine"),
		tcpg.WithDatabase("appdb"),
		tcpg.WithUsername("postgres"),
		tcpg.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp").WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "start postgres:", err)

		return 1
	}
	defer func() { _ = pgC.Terminate(tcCtx) }()

	dsn, err := pgC.ConnectionString(tcCtx, "sslmode=disable")
	if err != nil {
		fmt.Fprintln(os.Stderr, "dsn:", err)

		return 1
	}

	db, err = testutils.OpenDBWithRetry(tcCtx, postgres.OpenConfig{
		DSN:             dsn,
		MaxOpenConns:    5,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}, testutils.DefaultDBRetryConfig())
	if err != nil {
		fmt.Fprintln(os.Stderr, "open db:", err)

		return 1
	}
	defer func() { _ = db.Close() }()

	goose.SetDialect("postgres")
	if err := goose.Up(db, filepath.Join(projectRoot(), "db", "migrations")); err != nil {
		fmt.Fprintln(os.Stderr, "goose up:", err)

		return 1
	}

	os.Setenv("BASE_URL", "http://localhost:8080")
	os.Setenv("DATABASE_URL", dsn)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config load:", err)

		return 1
	}

	itBaseURL = cfg.BaseURL

	repo := pgrepo.NewRepo(db)
	svc := links.New(repo, links.NopCache{}, links.NewRandomGenerator(cfg.CodeLength), links.Options{
		CacheMaxTTL: cfg.CacheMaxTTL,
	})

	itRouter = httpapi.NewEngine(
		plugins.Logger(),
		plugins.Recovery(),
		plugins.RequestTimeout(cfg.RequestBudget),
	)

	httpapi.RegisterRoutes(itRouter, httpapi.RouterDeps{
		Links:   svc,
		BaseURL: cfg.BaseURL,
	})

	return m.Run()
}

func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			panic("go.mod not found from working dir")
		}

		dir = parent
	}
}

func resetLinks(t *testing.T) {
	t.Helper()

	_, err := db.ExecContext(tcCtx, "TRUNCATE links")
	require.NoError(t, err)
}

func doIT(t *testing.T, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	rec := httptest.NewRecorder()
	itRouter.ServeHTTP(rec, req)

	return rec
}

func createLinkIT(t *testing.T, body map[string]any) map[string]any {
	t.Helper()

	rec := doIT(t, http.MethodPost, "/api/links", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return resp
}

func TestAPI_RoundTrip(t *testing.T) {
	resetLinks(t)

	created := createLinkIT(t, map[string]any{
		"target_url":  "https://example.com/long-url",
		"owner_token": "tok-1",
	})

	code, _ := created["code"].(string)
	require.Regexp(t, codeRe, code)
	require.Equal(t, itBaseURL+"/r/"+code, created["short_url"])

	rec := doIT(t, http.MethodGet, "/r/"+code, nil, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "https://example.com/long-url", rec.Header().Get("Location"))

	rec = doIT(t, http.MethodGet, "/api/links/"+code+"/stats", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		HitCount   int64      `json:"hit_count"`
		LastUsedAt *time.Time `json:"last_used_at"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.EqualValues(t, 1, stats.HitCount)
	require.NotNil(t, stats.LastUsedAt)

	h := http.Header{}
	h.Set(handlers.OwnerTokenHeader, "tok-1")

	rec = doIT(t, http.MethodDelete, "/api/links/"+code, nil, h)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doIT(t, http.MethodGet, "/r/"+code, nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_CustomCodeConflict(t *testing.T) {
	resetLinks(t)

	createLinkIT(t, map[string]any{
		"target_url": "https://example.com/a",
		"code":       "mycode99",
	})

	rec := doIT(t, http.MethodPost, "/api/links", map[string]any{
		"target_url": "https://example.com/b",
		"code":       "mycode99",
	}, nil)

	testutils.RequireProblem(t, rec.Result(), http.StatusConflict, "conflict")
}

func TestAPI_ExpiredLinkIsGone(t *testing.T) {
	resetLinks(t)

	created := createLinkIT(t, map[string]any{
		"target_url":  "https://example.com/ephemeral",
		"ttl_seconds": 3600,
	})
	code, _ := created["code"].(string)

	_, err := db.ExecContext(tcCtx,
		"UPDATE links SET expires_at = now() - interval '1 hour' WHERE code = $1", code)
	require.NoError(t, err)

	rec := doIT(t, http.MethodGet, "/r/"+code, nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doIT(t, http.MethodGet, "/api/links/"+code+"/stats", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// sweep reclaims the row
	repo := pgrepo.NewRepo(db)
	n, err := repo.DeleteExpired(tcCtx, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	var count int
	require.NoError(t, db.QueryRowContext(tcCtx,
		"SELECT count(*) FROM links WHERE code = $1", code).Scan(&count))
	require.Zero(t, count)
}

func TestAPI_OwnerGate(t *testing.T) {
	resetLinks(t)

	created := createLinkIT(t, map[string]any{
		"target_url":  "https://example.com/owned",
		"owner_token": "tok-1",
	})
	code, _ := created["code"].(string)

	wrong := http.Header{}
	wrong.Set(handlers.OwnerTokenHeader, "tok-2")

	rec := doIT(t, http.MethodDelete, "/api/links/"+code, nil, wrong)
	testutils.RequireProblem(t, rec.Result(), http.StatusForbidden, "forbidden")

	rec = doIT(t, http.MethodPut, "/api/links/"+code, map[string]any{
		"target_url": "https://example.com/hijack",
	}, wrong)
	require.Equal(t, http.StatusForbidden, rec.Code)

	right := http.Header{}
	right.Set(handlers.OwnerTokenHeader, "tok-1")

	rec = doIT(t, http.MethodPut, "/api/links/"+code, map[string]any{
		"target_url": "https://example.com/moved",
	}, right)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doIT(t, http.MethodGet, "/r/"+code, nil, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "https://example.com/moved", rec.Header().Get("Location"))
}

func TestAPI_ConcurrentHits(t *testing.T) {
	resetLinks(t)

	created := createLinkIT(t, map[string]any{
		"target_url": "https://example.com/hot",
	})
	code, _ := created["code"].(string)

	const workers = 100

	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()

			req := httptest.NewRequest(http.MethodGet, "/r/"+code, nil)
			rec := httptest.NewRecorder()
			itRouter.ServeHTTP(rec, req)
		}()
	}

	wg.Wait()

	rec := doIT(t, http.MethodGet, "/api/links/"+code+"/stats", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		HitCount int64 `json:"hit_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.EqualValues(t, workers, stats.HitCount)
}

func TestAPI_InvalidTarget(t *testing.T) {
	resetLinks(t)

	for _, target := range []string{"ftp://example.com", "not a url", "https://"} {
		rec := doIT(t, http.MethodPost, "/api/links", map[string]any{
			"target_url": target,
		}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code, "target %q", target)
	}

	var count int
	require.NoError(t, db.QueryRowContext(tcCtx, "SELECT count(*) FROM links").Scan(&count))
	require.Zero(t, count)
}
