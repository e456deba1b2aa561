package audience

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bingotables/bulkmsg/internal/models"
)

// LocationSource lists the location options of the cascade
type LocationSource interface {
	Provinces(ctx context.Context) ([]models.Location, error)
	Cantons(ctx context.Context, provinceID string) ([]models.Location, error)
	Neighborhoods(ctx context.Context, cantonID string) ([]models.Location, error)
}

// Cascade owns a Filter and the option lists for its location levels.
// Every selection bumps the generation of the levels below it; a fetch
// that completes after a newer selection is dropped instead of replacing
// the newer options.
type Cascade struct {
	src    LocationSource
	logger *slog.Logger

	mu            sync.Mutex
	filter        Filter
	provinces     []models.Location
	cantons       []models.Location
	neighborhoods []models.Location
	cantonGen     uint64
	barrioGen     uint64
}

// NewCascade creates a cascade starting from filter
func NewCascade(src LocationSource, filter Filter, logger *slog.Logger) *Cascade {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cascade{
		src:    src,
		filter: filter.Clone(),
		logger: logger.With("component", "cascade"),
	}
}

// Filter returns a copy of the current filter
func (c *Cascade) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter.Clone()
}

// Provinces returns the province options, fetching them on first use
func (c *Cascade) Provinces(ctx context.Context) ([]models.Location, error) {
	c.mu.Lock()
	if c.provinces != nil {
		out := slices.Clone(c.provinces)
		c.mu.Unlock()
		return out, nil
	}
	c.mu.Unlock()

	list, err := c.src.Provinces(ctx)
	if err != nil {
		return nil, fmt.Errorf("list provinces: %w", err)
	}
	if list == nil {
		list = []models.Location{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.provinces = list
	return slices.Clone(list), nil
}

// Cantons returns the canton options of the selected province
func (c *Cascade) Cantons() []models.Location {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.cantons)
}

// Neighborhoods returns the neighborhood options of the selected canton
func (c *Cascade) Neighborhoods() []models.Location {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.neighborhoods)
}

// SelectProvince sets the province, clears the levels below and loads
// the cantons of the new province.
func (c *Cascade) SelectProvince(ctx context.Context, id string) error {
	c.mu.Lock()
	same := strings.TrimSpace(id) == c.filter.ProvinceID
	c.filter.SetProvince(id)
	c.cantonGen++
	if !same {
		// the canton was cleared, its neighborhoods go with it
		c.barrioGen++
		c.cantons = nil
		c.neighborhoods = nil
	}
	gen := c.cantonGen
	provinceID := c.filter.ProvinceID
	c.mu.Unlock()

	if provinceID == "" {
		return nil
	}

	list, err := c.src.Cantons(ctx, provinceID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.cantonGen {
		c.logger.Debug("dropping stale canton options", "province_id", provinceID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("list cantons of province %s: %w", provinceID, err)
	}
	c.cantons = list
	return nil
}

// SelectCanton sets the canton, clears neighborhoods and loads the
// neighborhoods of the new canton.
func (c *Cascade) SelectCanton(ctx context.Context, id string) error {
	c.mu.Lock()
	if err := c.filter.SetCanton(id); err != nil {
		c.mu.Unlock()
		return err
	}
	c.barrioGen++
	c.neighborhoods = nil
	gen := c.barrioGen
	cantonID := c.filter.CantonID
	c.mu.Unlock()

	if cantonID == "" {
		return nil
	}

	list, err := c.src.Neighborhoods(ctx, cantonID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.barrioGen {
		c.logger.Debug("dropping stale neighborhood options", "canton_id", cantonID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("list neighborhoods of canton %s: %w", cantonID, err)
	}
	c.neighborhoods = list
	return nil
}

// SelectNeighborhoods replaces the selected neighborhoods
func (c *Cascade) SelectNeighborhoods(ids []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter.SetNeighborhoods(ids)
}

// ToggleNeighborhood adds or removes one neighborhood
func (c *Cascade) ToggleNeighborhood(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter.ToggleNeighborhood(id)
}

// SetRegisteredRange sets the registration date range
func (c *Cascade) SetRegisteredRange(from, to *time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter.SetRegisteredRange(from, to)
}

// Clear resets the filter and the dependent option lists. Fetches in
// flight are invalidated.
func (c *Cascade) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter.Clear()
	c.cantonGen++
	c.barrioGen++
	c.cantons = nil
	c.neighborhoods = nil
}
