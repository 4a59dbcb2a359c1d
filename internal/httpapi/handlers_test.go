package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/apperr"
	"github.com/sells-group/company-profiler/internal/profile"
	"github.com/sells-group/company-profiler/internal/service"
	"github.com/sells-group/company-profiler/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// stubService returns canned results and records the arguments it saw.
type stubService struct {
	analyzeResult *service.AnalyzeResult
	analyzeErr    error
	getRecord     *store.Record
	getErr        error
	listRecords   []store.Record
	listErr       error
	updateRecord  *store.Record
	updateErr     error

	gotURL        string
	gotID         string
	gotUpdateURL  string
	gotRawProfile any
	gotLimit      int
}

func (s *stubService) Analyze(_ context.Context, url string) (*service.AnalyzeResult, error) {
	s.gotURL = url
	return s.analyzeResult, s.analyzeErr
}

func (s *stubService) Get(_ context.Context, id string) (*store.Record, error) {
	s.gotID = id
	return s.getRecord, s.getErr
}

func (s *stubService) List(_ context.Context, limit int) ([]store.Record, error) {
	s.gotLimit = limit
	return s.listRecords, s.listErr
}

func (s *stubService) Update(_ context.Context, id, url string, rawProfile any) (*store.Record, error) {
	s.gotID = id
	s.gotUpdateURL = url
	s.gotRawProfile = rawProfile
	return s.updateRecord, s.updateErr
}

func sampleRecord() *store.Record {
	p := profile.Empty()
	name := "Acme"
	p.CompanyName = &name
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &store.Record{
		ID:            "rec-1",
		URL:           "acme.com",
		NormalizedURL: "https://acme.com/",
		Profile:       p,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func doRequest(t *testing.T, svc ProfileService, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	NewRouter(svc).ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	rr := doRequest(t, &stubService{}, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestAnalyzeSuccess(t *testing.T) {
	t.Parallel()

	svc := &stubService{analyzeResult: &service.AnalyzeResult{Record: sampleRecord(), Cached: false}}
	rr := doRequest(t, svc, http.MethodPost, "/api/analyze", `{"url":"acme.com"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "acme.com", svc.gotURL)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "rec-1", resp["id"])
	assert.Equal(t, "https://acme.com/", resp["normalized_url"])
	assert.Equal(t, false, resp["cached"])
	assert.Equal(t, "2026-03-01T12:00:00Z", resp["created_at"])
}

func TestAnalyzeCachedFlag(t *testing.T) {
	t.Parallel()

	svc := &stubService{analyzeResult: &service.AnalyzeResult{Record: sampleRecord(), Cached: true}}
	rr := doRequest(t, svc, http.MethodPost, "/api/analyze", `{"url":"acme.com"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["cached"])
}

func TestAnalyzeMissingURL(t *testing.T) {
	t.Parallel()

	for _, body := range []string{``, `{}`, `{"url":""}`, `{"url":5}`, `not json`} {
		rr := doRequest(t, &stubService{}, http.MethodPost, "/api/analyze", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "body %q", body)
	}
}

func TestAnalyzeFetchFailure(t *testing.T) {
	t.Parallel()

	svc := &stubService{analyzeErr: apperr.FetchFailed("Unable to retrieve content from https://acme.com/", "503 Service Unavailable")}
	rr := doRequest(t, svc, http.MethodPost, "/api/analyze", `{"url":"acme.com"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "Unable to retrieve content")
	assert.Contains(t, resp["detail"], "503")
}

func TestAnalyzeAIFailure(t *testing.T) {
	t.Parallel()

	svc := &stubService{analyzeErr: apperr.AIFailure("The AI service returned an empty response.")}
	rr := doRequest(t, svc, http.MethodPost, "/api/analyze", `{"url":"acme.com"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestAnalyzeUnknownErrorIsGeneric500(t *testing.T) {
	t.Parallel()

	svc := &stubService{analyzeErr: eris.New("pool exhausted: secret dsn")}
	rr := doRequest(t, svc, http.MethodPost, "/api/analyze", `{"url":"acme.com"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Internal server error.", resp["error"])
	assert.NotContains(t, rr.Body.String(), "secret dsn")
}

func TestListProfiles(t *testing.T) {
	t.Parallel()

	svc := &stubService{listRecords: []store.Record{*sampleRecord()}}
	rr := doRequest(t, svc, http.MethodGet, "/api/profiles", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 50, svc.gotLimit)

	var resp struct {
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "rec-1", resp.Items[0]["id"])
	_, hasCached := resp.Items[0]["cached"]
	assert.False(t, hasCached, "list items carry no cached flag")
}

func TestListProfilesEmpty(t *testing.T) {
	t.Parallel()

	rr := doRequest(t, &stubService{}, http.MethodGet, "/api/profiles", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"items":[]}`, rr.Body.String())
}

func TestGetProfile(t *testing.T) {
	t.Parallel()

	svc := &stubService{getRecord: sampleRecord()}
	rr := doRequest(t, svc, http.MethodGet, "/api/profiles/rec-1", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "rec-1", svc.gotID)
}

func TestGetProfileNotFound(t *testing.T) {
	t.Parallel()

	svc := &stubService{getErr: apperr.NotFound("Profile not found.")}
	rr := doRequest(t, svc, http.MethodGet, "/api/profiles/missing", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	svc := &stubService{updateRecord: sampleRecord()}
	rr := doRequest(t, svc, http.MethodPut, "/api/profiles/rec-1",
		`{"url":"acme.io","profile":{"company_name":"Acme"}}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "rec-1", svc.gotID)
	assert.Equal(t, "acme.io", svc.gotUpdateURL)
	assert.Equal(t, map[string]any{"company_name": "Acme"}, svc.gotRawProfile)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["cached"])
}

func TestUpdateProfileMissingBody(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`{}`, `{"profile":null}`, `{"profile":"nope"}`, `{"profile":7}`, `bad`} {
		rr := doRequest(t, &stubService{}, http.MethodPut, "/api/profiles/rec-1", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "body %q", body)
	}
}

func TestUpdateProfileConflict(t *testing.T) {
	t.Parallel()

	svc := &stubService{updateErr: apperr.Conflict("Another profile already exists for this website.")}
	rr := doRequest(t, svc, http.MethodPut, "/api/profiles/rec-1", `{"profile":{}}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestUpdateProfileNotFound(t *testing.T) {
	t.Parallel()

	svc := &stubService{updateErr: apperr.NotFound("Profile not found.")}
	rr := doRequest(t, svc, http.MethodPut, "/api/profiles/missing", `{"profile":{}}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
