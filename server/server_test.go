package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/contactlens-org/contactlens/config"
)

// ============================================================================
// API TESTS
// ============================================================================

const apiCSV = `Ad Group Name,Ad Campaign Name,Company ICP Priority for Contacts,Lifecycle Stage,Job Title,Department
Alpha,Q1 Launch,High,Lead,Engineer,Engineering
Alpha,Q1 Launch,Low,MQL,Manager,Marketing
Beta,Q2 Nurture,High,Lead,Director,Sales
`

type fakeNarrator struct {
	narrative string
	err       error
	before    func() // runs before returning, simulating a slow AI call
}

func (f *fakeNarrator) Generate(prompt string) (string, error) {
	if f.before != nil {
		f.before()
	}
	return f.narrative, f.err
}

func newTestServer(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := New(&config.Config{MaxUploadBytes: 1 << 20}).
		WithNarrator(&fakeNarrator{narrative: "looks healthy"})
	return srv, srv.Router()
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, parsed
}

func uploadCSV(t *testing.T, r *gin.Engine, csv string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "contacts.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte(csv))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("decode upload response %q: %v", w.Body.String(), err)
	}
	return w, parsed
}

func TestUploadAndView(t *testing.T) {
	_, r := newTestServer(t)

	w, body := uploadCSV(t, r, apiCSV)
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d: %v", w.Code, body)
	}
	if body["records"].(float64) != 3 {
		t.Errorf("records = %v, want 3", body["records"])
	}
	if body["session"] == "" {
		t.Error("upload should mint a session token")
	}

	w, body = doJSON(t, r, http.MethodGet, "/api/view", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("view status = %d", w.Code)
	}
	rows := body["rows"].([]any)
	if len(rows) != 2 {
		t.Errorf("rows = %d, want 2 groups", len(rows))
	}
	if body["dimension"] != "Ad Group Name" || body["drillDown"] != "none" {
		t.Errorf("defaults = %v/%v", body["dimension"], body["drillDown"])
	}
}

func TestUploadMissingColumns(t *testing.T) {
	_, r := newTestServer(t)
	w, body := uploadCSV(t, r, "Ad Group Name,Job Title\nAlpha,Engineer\n")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if body["error"] != "missing_columns" {
		t.Errorf("error = %v", body["error"])
	}
	cols := body["columns"].([]any)
	if len(cols) != 4 {
		t.Errorf("columns = %v, want the 4 absent required columns", cols)
	}
}

func TestUploadEmpty(t *testing.T) {
	_, r := newTestServer(t)
	w, body := uploadCSV(t, r, "\n\n")
	if w.Code != http.StatusBadRequest || body["error"] != "empty_or_invalid" {
		t.Errorf("status = %d, error = %v", w.Code, body["error"])
	}
}

func TestUploadFailureKeepsState(t *testing.T) {
	_, r := newTestServer(t)
	uploadCSV(t, r, apiCSV)
	uploadCSV(t, r, "broken") // rejected

	_, body := doJSON(t, r, http.MethodGet, "/api/view", nil)
	if body["records"].(float64) != 3 {
		t.Errorf("failed upload must leave the previous record set untouched, got %v", body["records"])
	}
}

func TestDrillDownTogglesAndReset(t *testing.T) {
	_, r := newTestServer(t)
	uploadCSV(t, r, apiCSV)

	w, body := doJSON(t, r, http.MethodPut, "/api/drilldown", map[string]string{"drillDown": "combined"})
	if w.Code != http.StatusOK {
		t.Fatalf("drilldown status = %d", w.Code)
	}
	headers := body["headers"].([]any)
	if len(headers) != 4 {
		t.Errorf("headers = %v, want dimension + total + High + Low", headers)
	}

	_, body = doJSON(t, r, http.MethodPost, "/api/toggle", map[string]string{"primary": "Alpha", "key": "High"})
	if body["expanded"] == nil {
		t.Fatal("toggle should expand the cell")
	}

	// Re-setting the same drill-down clears the expansion.
	_, body = doJSON(t, r, http.MethodPut, "/api/drilldown", map[string]string{"drillDown": "combined"})
	if body["expanded"] != nil {
		t.Errorf("drill-down change must clear the expanded cell, got %v", body["expanded"])
	}

	w, _ = doJSON(t, r, http.MethodPut, "/api/drilldown", map[string]string{"drillDown": "bogus"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid drill-down status = %d, want 422", w.Code)
	}

	_, body = doJSON(t, r, http.MethodPost, "/api/reset", nil)
	if body["records"].(float64) != 0 {
		t.Errorf("reset should clear records, got %v", body["records"])
	}
}

func TestInsight(t *testing.T) {
	srv, r := newTestServer(t)
	uploadCSV(t, r, apiCSV)

	w, body := doJSON(t, r, http.MethodPost, "/api/insight", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("insight status = %d: %v", w.Code, body)
	}
	if body["narrative"] != "looks healthy" {
		t.Errorf("narrative = %v", body["narrative"])
	}

	// No data → 400 without touching the AI boundary.
	srv.WithNarrator(&fakeNarrator{err: nil})
	doJSON(t, r, http.MethodPost, "/api/reset", nil)
	w, body = doJSON(t, r, http.MethodPost, "/api/insight", nil)
	if w.Code != http.StatusBadRequest || body["error"] != "no_data" {
		t.Errorf("status = %d, error = %v", w.Code, body["error"])
	}
}

func TestInsightStaleSession(t *testing.T) {
	srv, r := newTestServer(t)
	uploadCSV(t, r, apiCSV)

	// The narrator supersedes the session mid-call, as a concurrent upload
	// would; no lock is held while it runs.
	srv.WithNarrator(&fakeNarrator{
		narrative: "from the old data",
		before: func() {
			uploadCSV(t, r, apiCSV)
		},
	})

	w, body := doJSON(t, r, http.MethodPost, "/api/insight", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 for a superseded session", w.Code)
	}
	if body["error"] != "stale_insight" {
		t.Errorf("error = %v", body["error"])
	}
	if strings.Contains(w.Body.String(), "from the old data") {
		t.Error("stale narratives must never reach the client")
	}
}

func TestInsightStaleAfterViewChange(t *testing.T) {
	// Dimension and drill-down changes also supersede in-flight narratives;
	// the aggregate view they describe no longer exists.
	cases := []struct {
		name   string
		path   string
		body   map[string]string
		method string
	}{
		{"dimension", "/api/dimension", map[string]string{"dimension": "Ad Campaign Name"}, http.MethodPut},
		{"drilldown", "/api/drilldown", map[string]string{"drillDown": "icp"}, http.MethodPut},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, r := newTestServer(t)
			uploadCSV(t, r, apiCSV)
			srv.WithNarrator(&fakeNarrator{
				narrative: "from the old view",
				before: func() {
					if w, _ := doJSON(t, r, tc.method, tc.path, tc.body); w.Code != http.StatusOK {
						t.Fatalf("%s status = %d", tc.path, w.Code)
					}
				},
			})

			w, body := doJSON(t, r, http.MethodPost, "/api/insight", nil)
			if w.Code != http.StatusConflict || body["error"] != "stale_insight" {
				t.Errorf("status = %d, error = %v, want 409 stale_insight", w.Code, body["error"])
			}
		})
	}
}

func TestInsightSurvivesToggle(t *testing.T) {
	// Toggling a cell never changes the aggregates, so it must not
	// invalidate an in-flight narrative.
	srv, r := newTestServer(t)
	uploadCSV(t, r, apiCSV)
	doJSON(t, r, http.MethodPut, "/api/drilldown", map[string]string{"drillDown": "icp"})
	srv.WithNarrator(&fakeNarrator{
		narrative: "still valid",
		before: func() {
			doJSON(t, r, http.MethodPost, "/api/toggle", map[string]string{"primary": "Alpha", "key": "High"})
		},
	})

	w, body := doJSON(t, r, http.MethodPost, "/api/insight", nil)
	if w.Code != http.StatusOK || body["narrative"] != "still valid" {
		t.Errorf("status = %d, narrative = %v, toggle must not supersede", w.Code, body["narrative"])
	}
}

func TestInsightFailure(t *testing.T) {
	srv, r := newTestServer(t)
	uploadCSV(t, r, apiCSV)
	srv.WithNarrator(&fakeNarrator{err: errTest})

	w, body := doJSON(t, r, http.MethodPost, "/api/insight", nil)
	if w.Code != http.StatusBadGateway || body["error"] != "insight_request_failure" {
		t.Errorf("status = %d, error = %v", w.Code, body["error"])
	}
}

var errTest = &testError{}

type testError struct{}

func (*testError) Error() string { return "upstream unavailable" }
