package module

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"hubconnect/internal/core/card"
	"hubconnect/internal/core/dispatch"
	"hubconnect/internal/core/errtrans"
	"hubconnect/internal/core/i18n"
	modkit "hubconnect/internal/modkit"
	"hubconnect/internal/modkit/connkit"
	phttp "hubconnect/internal/platform/net/http"
	"hubconnect/internal/platform/testkit"
	"hubconnect/internal/services/github/assets"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const host = "http://connector.test"

// fakeGitHub serves the few REST routes the connector calls
func fakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search/issues", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Query().Get("q"), "review-requested:mona") {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		_, _ = io.WriteString(w, `{"total_count":1,"items":[{"id":70,"number":7,"title":"Fix",
			"repository_url":"`+srv.URL+`/repos/acme/api","pull_request":{"url":"x"}}]}`)
	})
	mux.HandleFunc("GET /repos/acme/api/pulls/7", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"number":7,"title":"Fix flaky test","html_url":"https://github.com/acme/api/pull/7",
			"user":{"login":"octocat"},"additions":1,"deletions":1,"changed_files":1,"created_at":"2026-09-30T08:00:00Z"}`)
	})
	mux.HandleFunc("POST /repos/acme/api/pulls/7/reviews", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer ghp_x" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Bad credentials"}`)
			return
		}
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		_, _ = io.WriteString(w, `{"id":5,"state":"`+in["event"]+`","body":"`+in["body"]+`"}`)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newConnector(t *testing.T) (http.Handler, string) {
	t.Helper()
	cat, err := i18n.Load(assets.Messages(), assets.MessagesDir, "en")
	require.NoError(t, err)

	d := dispatch.New(dispatch.Options{Workers: 2})
	t.Cleanup(d.Close)

	nop := zerolog.Nop()
	deps := modkit.Deps{
		Dispatcher: d,
		Kit:        &connkit.Kit{Catalog: cat, Errors: errtrans.Translator{Log: &nop}},
	}
	m := New(deps, Options{})
	assert.Equal(t, "github", m.Name())

	mux := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(mux))
	return mux, fakeGitHub(t).URL
}

func send(t *testing.T, h http.Handler, path, ctype, body, token, base string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, host+path, strings.NewReader(body))
	req.Header.Set("Content-Type", ctype)
	req.Header.Set("Authorization", testkit.Bearer(t, jwt.MapClaims{"prn": "mona", "aud": host + path}))
	req.Header.Set(connkit.HeaderConnectorAuth, token)
	req.Header.Set(connkit.HeaderConnectorBaseURL, base)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func form(v url.Values) string { return v.Encode() }

const formType = "application/x-www-form-urlencoded"

func TestDiscovery(t *testing.T) {
	h, _ := newConnector(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, host+"/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"href": "`+host+`/cards/requests"`)
	assert.NotContains(t, rec.Body.String(), connkit.HostPlaceholder)
}

func TestCardsEndToEnd(t *testing.T) {
	h, gh := newConnector(t)
	rec := send(t, h, "/cards/requests", "application/json", `{"tokens":{"username":["mona"]}}`, "ghp_x", gh)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res card.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Cards, 1)
	c := res.Cards[0]
	assert.Equal(t, "Fix flaky test", c.Header.Title)
	assert.Equal(t, host+"/api/v1/acme/api/7/approve", c.Actions[0].URL)
}

func TestCards_UnknownUserSurfacesBackendStatus(t *testing.T) {
	h, gh := newConnector(t)
	rec := send(t, h, "/cards/requests", "application/json", `{"tokens":{"username":["ghost"]}}`, "ghp_x", gh)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "422", rec.Header().Get(errtrans.BackendStatusHeader))
}

func TestActions(t *testing.T) {
	h, gh := newConnector(t)

	rec := send(t, h, "/api/v1/acme/api/7/comment", formType, form(url.Values{"message": {"nit"}}), "ghp_x", gh)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"id":5,"state":"COMMENT"}`, rec.Body.String())

	rec = send(t, h, "/api/v1/acme/api/7/approve", formType, "", "ghp_x", gh)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"id":5,"state":"APPROVE"}`, rec.Body.String())

	rec = send(t, h, "/api/v1/acme/api/7/request-changes", formType, "", "ghp_x", gh)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reason"`)

	rec = send(t, h, "/api/v1/acme/api/seven/approve", formType, "", "ghp_x", gh)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)

	rec = send(t, h, "/api/v1/acme/api/7/approve", formType, "", "expired", gh)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid_connector_token"}`, rec.Body.String())
	assert.Equal(t, "401", rec.Header().Get(errtrans.BackendStatusHeader))
}
