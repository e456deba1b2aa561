package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bingotables/bulkmsg/internal/metrics"
	"github.com/bingotables/bulkmsg/internal/models"
)

// ErrPaused is returned by PollOnce while the gate is held
var ErrPaused = errors.New("polling is paused")

// Source is what the poller reads from the API
type Source interface {
	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	CampaignDetails(ctx context.Context, id int64) (*models.CampaignDetail, error)
}

// Snapshot is the dashboard state after one poll
type Snapshot struct {
	TakenAt   time.Time                        `json:"taken_at"`
	Campaigns []models.Campaign                `json:"campaigns"`
	Details   map[int64]*models.CampaignDetail `json:"details"`
	Totals    models.CampaignStats             `json:"totals"`
}

// Running returns the campaigns currently sending
func (s *Snapshot) Running() []models.Campaign {
	var out []models.Campaign
	for _, c := range s.Campaigns {
		if c.Status == models.CampaignRunning {
			out = append(out, c)
		}
	}
	return out
}

// Config holds poller configuration
type Config struct {
	Interval    time.Duration
	Concurrency int
}

// DefaultConfig returns default poller configuration
func DefaultConfig() Config {
	return Config{
		Interval:    30 * time.Second,
		Concurrency: 4,
	}
}

// Poller refreshes a Snapshot on a fixed interval. The timer is only
// re-armed while the gate is open; a poll in flight is never cancelled
// by a hold.
type Poller struct {
	src    Source
	gate   *Gate
	cfg    Config
	logger *slog.Logger

	mu       sync.RWMutex
	snapshot *Snapshot
	lastErr  error

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a poller
func NewPoller(src Source, gate *Gate, cfg Config, logger *slog.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConfig().Concurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		src:    src,
		gate:   gate,
		cfg:    cfg,
		logger: logger.With("component", "poller"),
	}
}

// Start starts polling in the background. The first poll runs at once.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go p.run(ctx)
	p.logger.Info("poller started", "interval", p.cfg.Interval, "concurrency", p.cfg.Concurrency)
}

// Stop stops polling and waits for the loop to exit
func (p *Poller) Stop() {
	if p.cancel == nil {
		return
	}
	p.logger.Info("stopping poller...")
	p.cancel()
	p.wg.Wait()
	p.logger.Info("poller stopped")
}

// Snapshot returns the last successful snapshot, or nil
func (p *Poller) Snapshot() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

// LastError returns the error of the last poll, or nil if it succeeded
func (p *Poller) LastError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if _, err := p.PollOnce(ctx); err != nil {
			if errors.Is(err, ErrPaused) {
				p.logger.Debug("poll skipped, gate held")
			} else if ctx.Err() == nil {
				p.logger.Warn("poll failed", "error", err)
			}
		}

		if err := p.gate.Wait(ctx); err != nil {
			return
		}
		timer.Reset(p.cfg.Interval)
	}
}

// PollOnce lists campaigns and fetches the details of running ones. The
// snapshot is replaced only when the whole poll succeeds.
func (p *Poller) PollOnce(ctx context.Context) (*Snapshot, error) {
	leave, ok := p.gate.enter()
	if !ok {
		metrics.IncPolls("skipped")
		return nil, ErrPaused
	}
	defer leave()

	snap, err := p.poll(ctx)

	p.mu.Lock()
	p.lastErr = err
	if err == nil {
		p.snapshot = snap
	}
	p.mu.Unlock()

	if err != nil {
		metrics.IncPolls("error")
		return nil, err
	}
	metrics.IncPolls("success")
	return snap, nil
}

func (p *Poller) poll(ctx context.Context) (*Snapshot, error) {
	campaigns, err := p.src.ListCampaigns(ctx)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}

	snap := &Snapshot{
		TakenAt:   time.Now(),
		Campaigns: campaigns,
		Details:   make(map[int64]*models.CampaignDetail),
	}
	running := snap.Running()
	metrics.SetPollCampaigns(len(running))

	details := make([]*models.CampaignDetail, len(running))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for i, c := range running {
		g.Go(func() error {
			d, err := p.src.CampaignDetails(gctx, c.ID)
			if err != nil {
				return fmt.Errorf("campaign %d details: %w", c.ID, err)
			}
			details[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, c := range running {
		d := details[i]
		if d == nil {
			continue
		}
		snap.Details[c.ID] = d
		snap.Totals.Sent += d.Stats.Sent
		snap.Totals.Error += d.Stats.Error
		snap.Totals.Pending += d.Stats.Pending
		snap.Totals.Cancelled += d.Stats.Cancelled
	}

	p.logger.Debug("poll completed", "campaigns", len(campaigns), "running", len(running))
	return snap, nil
}
