package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bingotables/bulkmsg/internal/config"
	"github.com/bingotables/bulkmsg/internal/metrics"
	"github.com/bingotables/bulkmsg/internal/models"
	"github.com/bingotables/bulkmsg/internal/monitor"
)

type fakeSource struct {
	err error
}

func (f *fakeSource) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.Campaign{{ID: 1, Name: "Entrega", Status: models.CampaignRunning}}, nil
}

func (f *fakeSource) CampaignDetails(ctx context.Context, id int64) (*models.CampaignDetail, error) {
	return &models.CampaignDetail{Stats: models.CampaignStats{Sent: 3}}, nil
}

func newTestServer(t *testing.T, apiKey string, src *fakeSource) (*Server, *monitor.Gate) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gate := monitor.NewGate()
	poller := monitor.NewPoller(src, gate, monitor.Config{Interval: time.Hour}, logger)
	cfg := &config.ServerConfig{ListenAddr: ":0", APIKey: apiKey}
	return New(cfg, poller, gate, metrics.New(), "test", logger), gate
}

func do(s *Server, method, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, "", &fakeSource{})

	w := do(s, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Version != "test" {
		t.Errorf("unexpected health response: %+v", resp)
	}
	if resp.LastPoll != nil {
		t.Error("expected no last poll before polling")
	}
}

func TestDashboardBeforeFirstPoll(t *testing.T) {
	s, _ := newTestServer(t, "", &fakeSource{})

	w := do(s, http.MethodGet, "/api/v1/dashboard", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestDashboardRefresh(t *testing.T) {
	s, _ := newTestServer(t, "", &fakeSource{})

	w := do(s, http.MethodPost, "/api/v1/dashboard/refresh", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = do(s, http.MethodGet, "/api/v1/dashboard", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp DashboardResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Snapshot == nil || len(resp.Snapshot.Campaigns) != 1 {
		t.Fatalf("unexpected snapshot: %+v", resp.Snapshot)
	}
	if resp.Snapshot.Totals.Sent != 3 {
		t.Errorf("expected 3 sent, got %d", resp.Snapshot.Totals.Sent)
	}
	if resp.Snapshot.Details[1] == nil {
		t.Error("expected detail of campaign 1")
	}
}

func TestDashboardRefreshError(t *testing.T) {
	s, _ := newTestServer(t, "", &fakeSource{err: errors.New("down")})

	w := do(s, http.MethodPost, "/api/v1/dashboard/refresh", "")
	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}

	w = do(s, http.MethodGet, "/api/v1/dashboard", "")
	var resp DashboardResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if !strings.Contains(resp.LastError, "down") {
		t.Errorf("expected last error to mention the failure, got %q", resp.LastError)
	}
}

func TestPauseResume(t *testing.T) {
	s, gate := newTestServer(t, "", &fakeSource{})

	tests := []struct {
		path        string
		wantPaused  bool
		wantChanged bool
	}{
		{"/api/v1/dashboard/pause", true, true},
		{"/api/v1/dashboard/pause", true, false},
		{"/api/v1/dashboard/resume", false, true},
		{"/api/v1/dashboard/resume", false, false},
	}
	for _, tt := range tests {
		w := do(s, http.MethodPost, tt.path, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tt.path, w.Code)
		}
		var resp GateResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Paused != tt.wantPaused || resp.Changed != tt.wantChanged {
			t.Errorf("%s: got %+v", tt.path, resp)
		}
		if gate.Paused() != tt.wantPaused {
			t.Errorf("%s: gate paused = %v", tt.path, gate.Paused())
		}
	}
}

func TestPauseHoldsNest(t *testing.T) {
	s, gate := newTestServer(t, "", &fakeSource{})

	do(s, http.MethodPost, "/api/v1/dashboard/pause?hold=create-1", "")
	do(s, http.MethodPost, "/api/v1/dashboard/pause?hold=start-2", "")
	do(s, http.MethodPost, "/api/v1/dashboard/resume?hold=create-1", "")
	if !gate.Paused() {
		t.Fatal("gate released while another hold is active")
	}
	do(s, http.MethodPost, "/api/v1/dashboard/resume?hold=start-2", "")
	if gate.Paused() {
		t.Fatal("gate still paused after every hold was released")
	}
}

func TestRefreshWhilePaused(t *testing.T) {
	s, _ := newTestServer(t, "", &fakeSource{})
	do(s, http.MethodPost, "/api/v1/dashboard/pause", "")

	w := do(s, http.MethodPost, "/api/v1/dashboard/refresh", "")
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestAuth(t *testing.T) {
	s, _ := newTestServer(t, "key", &fakeSource{})

	tests := []struct {
		name string
		key  string
		want int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "nope", http.StatusUnauthorized},
		{"valid", "key", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(s, http.MethodGet, "/api/v1/dashboard", tt.key)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}

	if w := do(s, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("health must not require auth, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, "", &fakeSource{})
	do(s, http.MethodGet, "/health", "")

	w := do(s, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "bulkmsg_poll_paused") {
		t.Error("expected poll gauge in metrics output")
	}
}
