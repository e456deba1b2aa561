// Package campaign drives the campaign lifecycle against the bulk messaging API.
package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/bingotables/bulkmsg/internal/bulkapi"
	"github.com/bingotables/bulkmsg/internal/metrics"
	"github.com/bingotables/bulkmsg/internal/models"
)

// API is the part of the bulk messaging API the lifecycle uses
type API interface {
	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	CreateCampaign(ctx context.Context, req *bulkapi.CreateCampaignRequest) (*models.Campaign, error)
	CampaignAction(ctx context.Context, id int64, action bulkapi.Action) error
	DeleteCampaign(ctx context.Context, id int64) error
}

// Lifecycle mirrors the campaign list held by the server. Status is never
// patched locally: every successful action reloads the list.
type Lifecycle struct {
	api    API
	logger *slog.Logger

	mu        sync.RWMutex
	campaigns []models.Campaign
	loaded    bool
}

// NewLifecycle creates a lifecycle client
func NewLifecycle(api API, logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lifecycle{
		api:    api,
		logger: logger.With("component", "lifecycle"),
	}
}

// Refresh reloads the campaign list. On error the current list is kept.
func (l *Lifecycle) Refresh(ctx context.Context) error {
	list, err := l.api.ListCampaigns(ctx)
	if err != nil {
		return fmt.Errorf("list campaigns: %w", err)
	}
	l.mu.Lock()
	l.campaigns = list
	l.loaded = true
	l.mu.Unlock()
	return nil
}

// Campaigns returns the last loaded list
func (l *Lifecycle) Campaigns() []models.Campaign {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.campaigns)
}

// Loaded reports whether the list was loaded at least once
func (l *Lifecycle) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Find looks up a campaign in the last loaded list
func (l *Lifecycle) Find(id int64) (models.Campaign, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, c := range l.campaigns {
		if c.ID == id {
			return c, true
		}
	}
	return models.Campaign{}, false
}

// Create validates the draft and submits it with the active recipients.
// Nothing is sent when validation fails.
func (l *Lifecycle) Create(ctx context.Context, d *Draft, active models.CandidateList, filters any) (*models.Campaign, error) {
	if err := d.Validate(active); err != nil {
		metrics.IncCampaignAction("create", "invalid")
		return nil, err
	}

	created, err := l.api.CreateCampaign(ctx, d.request(active, filters))
	if err != nil {
		metrics.IncCampaignAction("create", "error")
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	metrics.IncCampaignAction("create", "success")
	l.logger.Info("campaign created", "name", d.Name, "recipients", len(active), "campaign_id", created.ID)

	l.refreshAfter(ctx, "create")
	return created, nil
}

// Start requests a pending campaign to start sending
func (l *Lifecycle) Start(ctx context.Context, id int64) error {
	return l.act(ctx, id, bulkapi.ActionStart)
}

// Pause requests a running campaign to pause
func (l *Lifecycle) Pause(ctx context.Context, id int64) error {
	return l.act(ctx, id, bulkapi.ActionPause)
}

// Resume requests a paused campaign to continue
func (l *Lifecycle) Resume(ctx context.Context, id int64) error {
	return l.act(ctx, id, bulkapi.ActionResume)
}

// Cancel cancels a campaign. Cancellation cannot be undone, so it is only
// sent when confirmed is true.
func (l *Lifecycle) Cancel(ctx context.Context, id int64, confirmed bool) error {
	if !confirmed {
		metrics.IncCampaignAction(ActionCancel, "unconfirmed")
		return ErrNotConfirmed
	}
	return l.act(ctx, id, bulkapi.ActionCancel)
}

// Delete removes a campaign once req passed both confirmation steps
func (l *Lifecycle) Delete(ctx context.Context, req *DeleteRequest) error {
	if err := req.check(); err != nil {
		metrics.IncCampaignAction(ActionDelete, "unconfirmed")
		return err
	}
	if err := l.api.DeleteCampaign(ctx, req.CampaignID); err != nil {
		metrics.IncCampaignAction(ActionDelete, "error")
		return fmt.Errorf("delete campaign %d: %w", req.CampaignID, err)
	}
	metrics.IncCampaignAction(ActionDelete, "success")
	l.logger.Info("campaign deleted", "campaign_id", req.CampaignID)

	l.refreshAfter(ctx, ActionDelete)
	return nil
}

// Do dispatches an action by name. Cancel and delete are not reachable
// here since they need their own confirmation.
func (l *Lifecycle) Do(ctx context.Context, id int64, action string) error {
	switch action {
	case ActionStart:
		return l.Start(ctx, id)
	case ActionPause:
		return l.Pause(ctx, id)
	case ActionResume:
		return l.Resume(ctx, id)
	}
	return fmt.Errorf("%w: %s", ErrUnknownAction, action)
}

func (l *Lifecycle) act(ctx context.Context, id int64, action bulkapi.Action) error {
	if err := l.api.CampaignAction(ctx, id, action); err != nil {
		metrics.IncCampaignAction(string(action), "error")
		return fmt.Errorf("%s campaign %d: %w", action, id, err)
	}
	metrics.IncCampaignAction(string(action), "success")
	l.logger.Info("campaign action applied", "campaign_id", id, "action", action)

	l.refreshAfter(ctx, string(action))
	return nil
}

// refreshAfter reloads the list after a successful action. A failed reload
// does not undo the action, it only leaves the previous list in place.
func (l *Lifecycle) refreshAfter(ctx context.Context, action string) {
	if err := l.Refresh(ctx); err != nil {
		l.logger.Warn("failed to refresh campaigns", "after", action, "error", err)
	}
}
