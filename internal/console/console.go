// Package console coordinates the campaign authoring workflow: audience,
// exclusions, message preview and the campaign lifecycle.
package console

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bingotables/bulkmsg/internal/audience"
	"github.com/bingotables/bulkmsg/internal/bulkapi"
	"github.com/bingotables/bulkmsg/internal/campaign"
	"github.com/bingotables/bulkmsg/internal/config"
	"github.com/bingotables/bulkmsg/internal/models"
	"github.com/bingotables/bulkmsg/internal/monitor"
	"github.com/bingotables/bulkmsg/internal/report"
	"github.com/bingotables/bulkmsg/internal/selection"
	"github.com/bingotables/bulkmsg/internal/session"
	"github.com/bingotables/bulkmsg/internal/template"
)

// API is every remote operation the console needs
type API interface {
	audience.LocationSource
	audience.PreviewSource
	campaign.API
	report.DetailSource
}

// Console owns the authoring state and turns every failure into a
// notification. Errors are also returned so callers can stop.
type Console struct {
	cfg      *config.Config
	logger   *slog.Logger
	notifier Notifier
	gate     monitor.Holder

	cascade   *audience.Cascade
	resolver  *audience.Resolver
	set       *selection.Set
	lifecycle *campaign.Lifecycle
	reporter  *report.Reporter
	api       API

	draft        campaign.Draft
	imagePath    string
	previewIndex int
	draftID      string
}

// New creates a console with an empty session
func New(api API, cfg *config.Config, gate monitor.Holder, notifier Notifier, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	if gate == nil {
		gate = monitor.NewGate()
	}
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	return &Console{
		cfg:       cfg,
		logger:    logger.With("component", "console"),
		notifier:  notifier,
		gate:      gate,
		cascade:   audience.NewCascade(api, audience.Filter{}, logger),
		resolver:  audience.NewResolver(api, cfg.API.PreviewLimit, logger),
		set:       selection.New(nil),
		lifecycle: campaign.NewLifecycle(api, logger),
		reporter:  report.NewReporter(api, logger),
		api:       api,
		draft:     newDraft(cfg),
	}
}

func newDraft(cfg *config.Config) campaign.Draft {
	return campaign.Draft{
		IntervalMinutes:    cfg.Campaign.IntervalMinutes,
		MaxMessagesPerHour: cfg.Campaign.MaxMessagesPerHour,
		CreatedBy:          cfg.Campaign.CreatedBy,
	}
}

// Restore loads a persisted session
func (c *Console) Restore(st *session.State) {
	c.cascade = audience.NewCascade(c.api, st.Filter, c.logger)
	c.set = selection.Restore(st.Candidates, st.Excluded)
	c.draft = newDraft(c.cfg)
	c.draft.Name = st.Name
	c.draft.Message = st.Message
	if st.IntervalMinutes > 0 {
		c.draft.IntervalMinutes = st.IntervalMinutes
	}
	if st.MaxMessagesPerHour > 0 {
		c.draft.MaxMessagesPerHour = st.MaxMessagesPerHour
	}
	c.imagePath = st.ImagePath
	c.previewIndex = st.PreviewIndex
	c.draftID = st.DraftID
}

// State captures the session for persistence
func (c *Console) State() *session.State {
	st := &session.State{
		DraftID:            c.draftID,
		Filter:             c.cascade.Filter(),
		Candidates:         c.set.Candidates(),
		Excluded:           c.set.Excluded(),
		Name:               c.draft.Name,
		Message:            c.draft.Message,
		IntervalMinutes:    c.draft.IntervalMinutes,
		MaxMessagesPerHour: c.draft.MaxMessagesPerHour,
		ImagePath:          c.imagePath,
		PreviewIndex:       c.previewIndex,
	}
	return st
}

// fail notifies the operator and returns err unchanged
func (c *Console) fail(action string, err error) error {
	c.logger.Warn("operation failed", "action", action, "error", err)
	c.notifier.Notify(LevelError, bulkapi.UserMessage(err))
	return err
}

func (c *Console) ok(format string, args ...any) {
	c.notifier.Notify(LevelSuccess, fmt.Sprintf(format, args...))
}

// hold pauses dashboard polling for a campaign sensitive operation
func (c *Console) hold(ctx context.Context, action string) (func(), error) {
	release, err := c.gate.Hold(ctx)
	if err != nil {
		return nil, c.fail(action, err)
	}
	return release, nil
}

// Filter returns the current audience filter
func (c *Console) Filter() audience.Filter {
	return c.cascade.Filter()
}

// Provinces lists the province options
func (c *Console) Provinces(ctx context.Context) ([]models.Location, error) {
	list, err := c.cascade.Provinces(ctx)
	if err != nil {
		return nil, c.fail("provinces", err)
	}
	return list, nil
}

// SelectProvince selects a province and loads its cantons
func (c *Console) SelectProvince(ctx context.Context, id string) ([]models.Location, error) {
	if err := c.cascade.SelectProvince(ctx, id); err != nil {
		return nil, c.fail("select_province", err)
	}
	return c.cascade.Cantons(), nil
}

// SelectCanton selects a canton and loads its neighborhoods
func (c *Console) SelectCanton(ctx context.Context, id string) ([]models.Location, error) {
	if err := c.cascade.SelectCanton(ctx, id); err != nil {
		return nil, c.fail("select_canton", err)
	}
	return c.cascade.Neighborhoods(), nil
}

// SelectNeighborhoods replaces the selected neighborhoods
func (c *Console) SelectNeighborhoods(ids []string) error {
	if err := c.cascade.SelectNeighborhoods(ids); err != nil {
		return c.fail("select_neighborhoods", err)
	}
	return nil
}

// SetRegisteredRange sets the registration date range
func (c *Console) SetRegisteredRange(from, to *time.Time) error {
	if err := c.cascade.SetRegisteredRange(from, to); err != nil {
		return c.fail("registered_range", err)
	}
	return nil
}

// ClearAudience clears the filter, the candidates and the exclusions
func (c *Console) ClearAudience() {
	c.cascade.Clear()
	c.set.Reset()
	c.previewIndex = 0
}

// Preview resolves the current filter. The candidate list and the
// exclusions are only replaced on success.
func (c *Console) Preview(ctx context.Context) (models.CandidateList, error) {
	list, err := c.resolver.Preview(ctx, c.cascade.Filter())
	if err != nil {
		return nil, c.fail("preview", err)
	}
	c.set.Replace(list)
	if c.previewIndex >= len(list) {
		c.previewIndex = 0
	}
	c.notifier.Notify(LevelInfo, fmt.Sprintf("%d destinatarios encontrados", len(list)))
	return list, nil
}

// Selection exposes the inclusion set
func (c *Console) Selection() *selection.Set {
	return c.set
}

// Row is a candidate with its exclusion flag, as listed to the operator
type Row struct {
	models.Recipient
	Excluded bool
}

// Rows returns page number of the candidate list. Paging never changes
// the exclusions.
func (c *Console) Rows(number int) selection.Page[Row] {
	candidates := c.set.Candidates()
	rows := make([]Row, len(candidates))
	for i, r := range candidates {
		rows[i] = Row{Recipient: r, Excluded: c.set.IsExcluded(r.ID)}
	}
	return selection.Paginate(rows, number, selection.PageSize)
}

// Draft returns a copy of the campaign draft
func (c *Console) Draft() campaign.Draft {
	return c.draft
}

// ImagePath returns the attached image path, if any
func (c *Console) ImagePath() string {
	return c.imagePath
}

// SetName sets the campaign name
func (c *Console) SetName(name string) {
	c.draft.Name = name
}

// SetMessage sets the message template
func (c *Console) SetMessage(msg string) {
	c.draft.Message = msg
}

// SetSchedule sets the send interval and hourly cap. Zero keeps the current value.
func (c *Console) SetSchedule(intervalMinutes, maxPerHour int) {
	if intervalMinutes > 0 {
		c.draft.IntervalMinutes = intervalMinutes
	}
	if maxPerHour > 0 {
		c.draft.MaxMessagesPerHour = maxPerHour
	}
}

// AttachImage validates and attaches an image. A rejected image leaves
// the previous one in place.
func (c *Console) AttachImage(path string) error {
	att, err := campaign.LoadImage(path, c.cfg.Campaign.ImageMaxBytes, c.cfg.Campaign.ImageTypes)
	if err != nil {
		return c.fail("attach_image", err)
	}
	c.draft.Image = att
	c.imagePath = path
	return nil
}

// ClearImage drops the attached image
func (c *Console) ClearImage() {
	c.draft.Image = nil
	c.imagePath = ""
}

// SelectPreviewRecipient chooses which active recipient the preview renders
func (c *Console) SelectPreviewRecipient(index int) {
	c.previewIndex = index
}

// RenderPreview renders the draft message for the selected active recipient
func (c *Console) RenderPreview() (string, error) {
	out, err := template.Preview(c.draft.Message, c.set.Active(), c.previewIndex)
	if err != nil {
		return "", c.fail("render_preview", err)
	}
	return out, nil
}

// Create submits the draft with the active recipients. On success the
// filter, the candidates, the exclusions and the image are cleared.
func (c *Console) Create(ctx context.Context) (*models.Campaign, error) {
	if c.draft.Image == nil && c.imagePath != "" {
		if err := c.AttachImage(c.imagePath); err != nil {
			return nil, err
		}
	}

	release, err := c.hold(ctx, "create")
	if err != nil {
		return nil, err
	}
	defer release()

	created, err := c.lifecycle.Create(ctx, &c.draft, c.set.Active(), c.cascade.Filter().Payload())
	if err != nil {
		return nil, c.fail("create", err)
	}

	c.ClearAudience()
	c.ClearImage()
	c.draftID = ""
	c.ok("Campaña %q creada", created.Name)
	return created, nil
}

// Refresh reloads the campaign list
func (c *Console) Refresh(ctx context.Context) ([]models.Campaign, error) {
	if err := c.lifecycle.Refresh(ctx); err != nil {
		return nil, c.fail("refresh", err)
	}
	return c.lifecycle.Campaigns(), nil
}

// Campaigns returns the last loaded campaign list
func (c *Console) Campaigns() []models.Campaign {
	return c.lifecycle.Campaigns()
}

// Do applies start, pause or resume by name
func (c *Console) Do(ctx context.Context, id int64, action string) error {
	return c.action(ctx, action, id, func(ctx context.Context) error {
		return c.lifecycle.Do(ctx, id, action)
	})
}

// Start starts a campaign
func (c *Console) Start(ctx context.Context, id int64) error {
	return c.action(ctx, campaign.ActionStart, id, func(ctx context.Context) error {
		return c.lifecycle.Start(ctx, id)
	})
}

// Pause pauses a campaign
func (c *Console) Pause(ctx context.Context, id int64) error {
	return c.action(ctx, campaign.ActionPause, id, func(ctx context.Context) error {
		return c.lifecycle.Pause(ctx, id)
	})
}

// Resume resumes a campaign
func (c *Console) Resume(ctx context.Context, id int64) error {
	return c.action(ctx, campaign.ActionResume, id, func(ctx context.Context) error {
		return c.lifecycle.Resume(ctx, id)
	})
}

// Cancel cancels a campaign once confirmed
func (c *Console) Cancel(ctx context.Context, id int64, confirmed bool) error {
	return c.action(ctx, campaign.ActionCancel, id, func(ctx context.Context) error {
		return c.lifecycle.Cancel(ctx, id, confirmed)
	})
}

// Delete deletes a campaign once req passed both confirmation steps
func (c *Console) Delete(ctx context.Context, req *campaign.DeleteRequest) error {
	return c.action(ctx, campaign.ActionDelete, req.CampaignID, func(ctx context.Context) error {
		return c.lifecycle.Delete(ctx, req)
	})
}

func (c *Console) action(ctx context.Context, name string, id int64, fn func(context.Context) error) error {
	release, err := c.hold(ctx, name)
	if err != nil {
		return err
	}
	defer release()

	if err := fn(ctx); err != nil {
		return c.fail(name, err)
	}
	c.ok("Acción %s aplicada a la campaña %d", name, id)
	return nil
}

// Detail fetches the delivery detail of a campaign
func (c *Console) Detail(ctx context.Context, id int64) (*models.CampaignDetail, error) {
	d, err := c.reporter.FetchDetail(ctx, id)
	if err != nil {
		return nil, c.fail("detail", err)
	}
	return d, nil
}

// Export writes the workbook of a campaign into dir and returns its path
func (c *Console) Export(ctx context.Context, id int64, dir string, now time.Time) (string, error) {
	camp, ok := c.lifecycle.Find(id)
	if !ok {
		if err := c.lifecycle.Refresh(ctx); err != nil {
			return "", c.fail("export", err)
		}
		if camp, ok = c.lifecycle.Find(id); !ok {
			return "", c.fail("export", fmt.Errorf("campaña %d no encontrada", id))
		}
	}

	path, err := c.reporter.Export(ctx, camp, dir, now)
	if err != nil {
		return "", c.fail("export", err)
	}
	c.ok("Reporte exportado a %s", path)
	return path, nil
}
