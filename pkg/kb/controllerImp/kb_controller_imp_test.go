package controllerImp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agrisentry/database"
	"agrisentry/entities"
	"agrisentry/pkg/kb/fetcher"
	"agrisentry/pkg/kb/repositoryImp"
	"agrisentry/pkg/kb/service"
	"agrisentry/pkg/kb/serviceImp"
)

func newServer(t *testing.T, allowed ...string) *echo.Echo {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", zap.NewNop())
	require.NoError(t, err)
	h := New(serviceImp.New(repositoryImp.New(db), nil, zap.NewNop()), fetcher.New(allowed, 0))

	e := echo.New()
	e.POST("/kb/ingest", h.IngestText)
	e.POST("/kb/ingest/url", h.IngestURL)
	e.GET("/kb/search", h.Search)
	e.GET("/kb/docs", h.ListDocs)
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestIngestAndSearch(t *testing.T) {
	e := newServer(t)

	rec := do(e, http.MethodPost, "/kb/ingest", `{"title":"Paddy water","text":"Keep 5 cm standing water in paddy after transplanting."}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"chunks":1`)

	rec = do(e, http.MethodPost, "/kb/ingest", `{"title":"","text":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/kb/search?q=paddy+water&k=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var hits []service.Hit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, "Paddy water", hits[0].DocTitle)

	rec = do(e, http.MethodGet, "/kb/search?q=locust", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(e, http.MethodGet, "/kb/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/kb/docs", "")
	var docs []entities.KBDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	assert.Len(t, docs, 1)
}

func TestIngestURL(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(`<html><body><script>1</script></body></html>`))
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Mustard aphid</title></head><body><p>Spray neem oil at 5 ml per litre.</p></body></html>`))
	}))
	defer upstream.Close()
	u, _ := url.Parse(upstream.URL)
	e := newServer(t, u.Host)

	rec := do(e, http.MethodPost, "/kb/ingest/url", `{"url":"`+upstream.URL+`/aphid","tags":"pest"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct {
		Doc    entities.KBDocument `json:"doc"`
		Chunks int                 `json:"chunks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Mustard aphid", out.Doc.Title)
	assert.Equal(t, upstream.URL+"/aphid", out.Doc.SourceURL)
	assert.Equal(t, 1, out.Chunks)

	rec = do(e, http.MethodPost, "/kb/ingest/url", `{"url":"https://example.org/x"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, http.MethodPost, "/kb/ingest/url", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/kb/ingest/url", `{"url":"`+upstream.URL+`/empty"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestIngestURLRedirectOffAllowList(t *testing.T) {
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("internal"))
	}))
	defer other.Close()
	front := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, other.URL+"/secret", http.StatusFound)
	}))
	defer front.Close()
	u, _ := url.Parse(front.URL)
	e := newServer(t, u.Host)

	rec := do(e, http.MethodPost, "/kb/ingest/url", `{"url":"`+front.URL+`/go"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "redirected")

	rec = do(e, http.MethodGet, "/kb/docs", "")
	var docs []entities.KBDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	assert.Empty(t, docs)
}
