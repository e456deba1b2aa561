package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew(t *testing.T) {
	m := New()
	if m.Registry() == nil {
		t.Fatal("Registry() returned nil")
	}

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	// Vectors without observations are not gathered, gauges always are
	if len(families) < 2 {
		t.Errorf("expected gauges to be gathered, got %d families", len(families))
	}
}

func TestHelpersWithoutGlobal(t *testing.T) {
	SetGlobal(nil)

	// Must not panic
	ObserveAPIRequest("preview", "200", 0.1)
	IncAPIErrors("io")
	IncCampaignAction("start", "ok")
	IncPolls("ok")
	SetPollCampaigns(3)
	SetPollPaused(true)
}

func TestHelpers(t *testing.T) {
	m := New()
	SetGlobal(m)
	defer SetGlobal(nil)

	ObserveAPIRequest("preview", "200", 0.2)
	ObserveAPIRequest("preview", "200", 0.3)
	IncAPIErrors("http-status")
	IncCampaignAction("cancel", "error")
	IncPolls("skipped")
	SetPollCampaigns(7)
	SetPollPaused(true)

	if got := testutil.ToFloat64(m.APIRequestsTotal.WithLabelValues("preview", "200")); got != 2 {
		t.Errorf("APIRequestsTotal = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.APIErrorsTotal.WithLabelValues("http-status")); got != 1 {
		t.Errorf("APIErrorsTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CampaignActionsTotal.WithLabelValues("cancel", "error")); got != 1 {
		t.Errorf("CampaignActionsTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PollsTotal.WithLabelValues("skipped")); got != 1 {
		t.Errorf("PollsTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PollCampaigns); got != 7 {
		t.Errorf("PollCampaigns = %v, want 7", got)
	}
	if got := testutil.ToFloat64(m.PollPaused); got != 1 {
		t.Errorf("PollPaused = %v, want 1", got)
	}

	SetPollPaused(false)
	if got := testutil.ToFloat64(m.PollPaused); got != 0 {
		t.Errorf("PollPaused = %v, want 0", got)
	}
}

func TestResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	rw := wrapResponseWriter(w)

	if rw.status != http.StatusOK {
		t.Errorf("Expected initial status %d, got %d", http.StatusOK, rw.status)
	}

	rw.WriteHeader(http.StatusNotFound)
	if rw.status != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, rw.status)
	}

	// Second WriteHeader is ignored
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.status != http.StatusNotFound {
		t.Errorf("Expected status to remain %d, got %d", http.StatusNotFound, rw.status)
	}
}

func TestHTTPMiddleware(t *testing.T) {
	m := New()
	SetGlobal(m)
	defer SetGlobal(nil)

	r := chi.NewRouter()
	r.Use(HTTPMiddleware)
	r.Get("/api/v1/campaigns/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/campaigns/42", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/campaigns/{id}", "418"))
	if got != 1 {
		t.Errorf("HTTPRequestsTotal = %v, want 1", got)
	}
}

func TestCategorizeStatus(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{500, "server_error"},
		{503, "server_error"},
		{429, "rate_limited"},
		{401, "auth_error"},
		{403, "auth_error"},
		{404, "not_found"},
		{400, "bad_request"},
		{422, "client_error"},
		{200, "unknown"},
	}

	for _, tt := range tests {
		if got := CategorizeStatus(tt.status); got != tt.want {
			t.Errorf("CategorizeStatus(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
