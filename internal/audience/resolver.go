package audience

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bingotables/bulkmsg/internal/bulkapi"
	"github.com/bingotables/bulkmsg/internal/models"
)

// PreviewSource runs the audience preview query
type PreviewSource interface {
	PreviewUsers(ctx context.Context, filters any, limit int) (*bulkapi.PreviewResult, error)
}

// Resolver resolves a Filter into a candidate list
type Resolver struct {
	src    PreviewSource
	limit  int
	logger *slog.Logger
}

// NewResolver creates a resolver asking for at most limit candidates
func NewResolver(src PreviewSource, limit int, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		src:    src,
		limit:  limit,
		logger: logger.With("component", "resolver"),
	}
}

// Limit returns the preview cap
func (r *Resolver) Limit() int {
	return r.limit
}

// Preview fetches the candidates matching f. The caller keeps its previous
// list when an error is returned.
func (r *Resolver) Preview(ctx context.Context, f Filter) (models.CandidateList, error) {
	payload := f.Payload()

	res, err := r.src.PreviewUsers(ctx, payload, r.limit)
	if err != nil {
		return nil, fmt.Errorf("preview audience: %w", err)
	}

	var users models.CandidateList
	if res != nil {
		users = res.Users
	}
	if users == nil {
		users = models.CandidateList{}
	}

	r.logger.Info("audience resolved",
		"candidates", len(users),
		"province_id", payload.ProvinceID,
		"canton_id", payload.CantonID,
		"neighborhoods", len(payload.BarrioIDs),
	)
	if r.limit > 0 && len(users) >= r.limit {
		r.logger.Warn("preview reached the candidate cap, list may be incomplete", "limit", r.limit)
	}
	return users, nil
}
