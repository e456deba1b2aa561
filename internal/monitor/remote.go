package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// ErrRemotePause is returned when a running dashboard refused to pause
var ErrRemotePause = errors.New("no se pudo pausar el monitoreo del tablero")

// Holder pauses dashboard polling around a campaign sensitive operation.
// *Gate holds a poller in the same process; *RemoteGate holds the poller
// of a running serve instance.
type Holder interface {
	Hold(ctx context.Context) (release func(), err error)
}

// RemoteGate holds the gate of a serve instance through its dashboard
// pause and resume routes. Each Hold uses its own hold key, so holds from
// several processes nest on the server.
type RemoteGate struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

var (
	_ Holder = (*Gate)(nil)
	_ Holder = (*RemoteGate)(nil)
)

type gateResponse struct {
	Paused  bool   `json:"paused"`
	Changed bool   `json:"changed"`
	Error   string `json:"error"`
}

// NewRemoteGate creates a gate for the serve instance at baseURL
func NewRemoteGate(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *RemoteGate {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemoteGate{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "remote_gate"),
	}
}

// Hold pauses the remote poller. The request returns once any poll in
// flight there has finished. When nothing listens at the address there is
// no poller to exclude and the hold is a no-op.
func (g *RemoteGate) Hold(ctx context.Context) (func(), error) {
	key := uuid.New().String()
	if _, err := g.post(ctx, "pause", key); err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			g.logger.Warn("dashboard not reachable, continuing without pause", "url", g.baseURL)
			return func() {}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRemotePause, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
			defer cancel()
			if _, err := g.post(ctx, "resume", key); err != nil {
				g.logger.Warn("failed to resume dashboard polling", "hold", key, "error", err)
			}
		})
	}, nil
}

func (g *RemoteGate) post(ctx context.Context, action, key string) (*gateResponse, error) {
	u := g.baseURL + "/api/v1/dashboard/" + action + "?hold=" + url.QueryEscape(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// one pause and one resume per operation
	req.Close = true
	req.Header.Set("Accept", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var body gateResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode response (HTTP %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: HTTP %d: %s", action, resp.StatusCode, body.Error)
	}
	g.logger.Debug("dashboard gate", "action", action, "hold", key, "paused", body.Paused)
	return &body, nil
}
