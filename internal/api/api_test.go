package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"photos/internal/account"
	"photos/internal/app"
	"photos/internal/session"
	"photos/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.New(store.Config{Backend: store.BackendSQLite, SQLitePath: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	accounts := account.NewManager(st, t.TempDir(), zap.NewNop())
	application := app.New(st, accounts, session.New(), zap.NewNop())

	srv := httptest.NewServer(New(application, zap.NewNop()).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func loginUser(t *testing.T, srv *httptest.Server, username string) {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/users/", map[string]string{"username": username})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = doJSON(t, http.MethodPost, srv.URL+"/login", map[string]string{"username": username})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginAndAlbumFlow(t *testing.T) {
	srv := newTestServer(t)
	loginUser(t, srv, "alice")

	resp := doJSON(t, http.MethodPost, srv.URL+"/albums/", map[string]string{"name": "trip"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	album := decode[map[string]any](t, resp)
	assert.Equal(t, "trip", album["name"])
	assert.EqualValues(t, 0, album["photoCount"])

	resp = doJSON(t, http.MethodPost, srv.URL+"/albums/trip/photos", map[string]any{
		"filepath":  "/img/a.jpg",
		"dateTaken": time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/albums/trip", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode[struct {
		Name   string `json:"name"`
		Photos []struct {
			Filepath string `json:"filepath"`
		} `json:"photos"`
	}](t, resp)
	require.Len(t, detail.Photos, 1)
	assert.Equal(t, "/img/a.jpg", detail.Photos[0].Filepath)
}

func TestLoginUnknownUserIs404(t *testing.T) {
	srv := newTestServer(t)
	resp := doJSON(t, http.MethodPost, srv.URL+"/login", map[string]string{"username": "ghost"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAlbumsRequireLogin(t *testing.T) {
	srv := newTestServer(t)
	resp := doJSON(t, http.MethodGet, srv.URL+"/albums/", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDuplicateAlbumIsConflict(t *testing.T) {
	srv := newTestServer(t)
	loginUser(t, srv, "alice")

	resp := doJSON(t, http.MethodPost, srv.URL+"/albums/", map[string]string{"name": "trip"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = doJSON(t, http.MethodPost, srv.URL+"/albums/", map[string]string{"name": "Trip"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestReservedUserIsConflict(t *testing.T) {
	srv := newTestServer(t)
	resp := doJSON(t, http.MethodPost, srv.URL+"/users/", map[string]string{"username": "stock"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/users/stock", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSearchEndpoints(t *testing.T) {
	srv := newTestServer(t)
	loginUser(t, srv, "alice")

	resp := doJSON(t, http.MethodPost, srv.URL+"/albums/", map[string]string{"name": "trip"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = doJSON(t, http.MethodPost, srv.URL+"/albums/trip/photos", map[string]any{
		"filepath":  "/img/a.jpg",
		"dateTaken": time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = doJSON(t, http.MethodPost, srv.URL+"/photos/tags", map[string]string{
		"album": "trip", "filepath": "/img/a.jpg", "name": "person", "value": "bob",
	})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/search/tags?q=person%3Dbob", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	results := decode[[]struct {
		Filepath string `json:"filepath"`
	}](t, resp)
	require.Len(t, results, 1)
	assert.Equal(t, "/img/a.jpg", results[0].Filepath)

	resp = doJSON(t, http.MethodGet, srv.URL+"/search/date?start=2024-06-01&end=2024-06-02", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/search/date?start=2024-06-02&end=2024-06-01", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/search/tags?q=broken", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/search/album", map[string]string{"name": "found"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestTagTypesEndpoint(t *testing.T) {
	srv := newTestServer(t)
	loginUser(t, srv, "alice")

	resp := doJSON(t, http.MethodGet, srv.URL+"/tagtypes/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	types := decode[[]string](t, resp)
	assert.ElementsMatch(t, []string{"location", "person"}, types)

	resp = doJSON(t, http.MethodPost, srv.URL+"/tagtypes/", map[string]string{"name": "mood"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	types = decode[[]string](t, resp)
	assert.Contains(t, types, "mood")
}
