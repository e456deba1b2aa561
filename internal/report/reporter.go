package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bingotables/bulkmsg/internal/models"
)

// DetailSource fetches the delivery detail of a campaign
type DetailSource interface {
	CampaignDetails(ctx context.Context, id int64) (*models.CampaignDetail, error)
}

// Reporter reads campaign details and writes exports. Details are fetched
// on every call and never cached.
type Reporter struct {
	src    DetailSource
	logger *slog.Logger
}

// NewReporter creates a reporter
func NewReporter(src DetailSource, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{src: src, logger: logger.With("component", "reporter")}
}

// FetchDetail loads the current detail of a campaign
func (r *Reporter) FetchDetail(ctx context.Context, id int64) (*models.CampaignDetail, error) {
	d, err := r.src.CampaignDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch campaign %d detail: %w", id, err)
	}
	return d, nil
}

// Export fetches a fresh detail of c and writes the workbook into dir.
// It returns the path of the written file.
func (r *Reporter) Export(ctx context.Context, c models.Campaign, dir string, now time.Time) (string, error) {
	d, err := r.FetchDetail(ctx, c.ID)
	if err != nil {
		return "", err
	}
	return r.ExportDetail(c, d, dir, now)
}

// ExportDetail writes the workbook of an already fetched detail into dir
func (r *Reporter) ExportDetail(c models.Campaign, d *models.CampaignDetail, dir string, now time.Time) (string, error) {
	if d == nil {
		d = &models.CampaignDetail{}
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(dir, FileName(c, now))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}

	if err := WriteXLSX(file, BuildWorkbook(c, d, now)); err != nil {
		file.Close()
		os.Remove(path)
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}

	r.logger.Info("campaign exported", "campaign_id", c.ID, "path", path, "logs", len(d.Logs))
	return path, nil
}
