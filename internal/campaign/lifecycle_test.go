package campaign

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bingotables/bulkmsg/internal/bulkapi"
	"github.com/bingotables/bulkmsg/internal/models"
)

type fakeAPI struct {
	campaigns []models.Campaign
	listErr   error
	actionErr error

	lists   int
	created []*bulkapi.CreateCampaignRequest
	actions []string
	deleted []int64
}

func (f *fakeAPI) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.campaigns, nil
}

func (f *fakeAPI) CreateCampaign(ctx context.Context, req *bulkapi.CreateCampaignRequest) (*models.Campaign, error) {
	f.created = append(f.created, req)
	if f.actionErr != nil {
		return nil, f.actionErr
	}
	c := models.Campaign{ID: 42, Name: req.Name, Status: models.CampaignPending, TotalUsers: len(req.UserIDs)}
	f.campaigns = append(f.campaigns, c)
	return &c, nil
}

func (f *fakeAPI) CampaignAction(ctx context.Context, id int64, action bulkapi.Action) error {
	f.actions = append(f.actions, string(action))
	if f.actionErr != nil {
		return f.actionErr
	}
	for i := range f.campaigns {
		if f.campaigns[i].ID == id && action == bulkapi.ActionStart {
			f.campaigns[i].Status = models.CampaignRunning
		}
	}
	return nil
}

func (f *fakeAPI) DeleteCampaign(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return f.actionErr
}

func validDraft() *Draft {
	return &Draft{Name: "Entrega", Message: "Hola {firstName}", IntervalMinutes: 1, MaxMessagesPerHour: 60}
}

func TestCreateWithoutRecipientsSendsNothing(t *testing.T) {
	api := &fakeAPI{}
	l := NewLifecycle(api, nil)

	_, err := l.Create(context.Background(), validDraft(), models.CandidateList{}, nil)
	assert.ErrorIs(t, err, ErrNoRecipients)
	assert.Empty(t, api.created)
	assert.Zero(t, api.lists)
}

func TestCreateValidation(t *testing.T) {
	active := models.CandidateList{{ID: 1}}
	tests := []struct {
		name  string
		draft Draft
		want  error
	}{
		{"no name", Draft{Message: "x", IntervalMinutes: 1, MaxMessagesPerHour: 1}, ErrNameRequired},
		{"blank name", Draft{Name: "  ", Message: "x", IntervalMinutes: 1, MaxMessagesPerHour: 1}, ErrNameRequired},
		{"no message", Draft{Name: "x", IntervalMinutes: 1, MaxMessagesPerHour: 1}, ErrMessageRequired},
		{"no interval", Draft{Name: "x", Message: "x", MaxMessagesPerHour: 1}, ErrInvalidSchedule},
		{"no rate", Draft{Name: "x", Message: "x", IntervalMinutes: 1}, ErrInvalidSchedule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			_, err := NewLifecycle(api, nil).Create(context.Background(), &tt.draft, active, nil)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, api.created)
		})
	}
}

func TestCreateSubmitsActiveIDs(t *testing.T) {
	api := &fakeAPI{}
	l := NewLifecycle(api, nil)
	active := models.CandidateList{{ID: 1}, {ID: 3}}
	filters := map[string]string{"provinceId": "1"}

	c, err := l.Create(context.Background(), validDraft(), active, filters)
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.ID)

	require.Len(t, api.created, 1)
	assert.Equal(t, []int64{1, 3}, api.created[0].UserIDs)
	assert.Equal(t, filters, api.created[0].Filters)
	assert.Equal(t, 1, api.lists)
	assert.Len(t, l.Campaigns(), 1)
}

func TestActionRefreshesList(t *testing.T) {
	api := &fakeAPI{campaigns: []models.Campaign{{ID: 7, Status: models.CampaignPending}}}
	l := NewLifecycle(api, nil)
	require.NoError(t, l.Refresh(context.Background()))

	require.NoError(t, l.Start(context.Background(), 7))
	c, ok := l.Find(7)
	require.True(t, ok)
	assert.Equal(t, models.CampaignRunning, c.Status)
	assert.Equal(t, []string{"start"}, api.actions)
	assert.Equal(t, 2, api.lists)
}

func TestActionFailureKeepsProjection(t *testing.T) {
	api := &fakeAPI{campaigns: []models.Campaign{{ID: 7, Status: models.CampaignRunning}}}
	l := NewLifecycle(api, nil)
	require.NoError(t, l.Refresh(context.Background()))

	api.actionErr = &bulkapi.APIError{Operation: "campaign_pause", Type: bulkapi.TypeBusiness, Message: "La campaña ya terminó"}
	err := l.Pause(context.Background(), 7)
	require.Error(t, err)
	assert.Equal(t, "La campaña ya terminó", bulkapi.UserMessage(err))

	c, _ := l.Find(7)
	assert.Equal(t, models.CampaignRunning, c.Status)
	assert.Equal(t, 1, api.lists)
}

func TestRefreshFailureKeepsList(t *testing.T) {
	api := &fakeAPI{campaigns: []models.Campaign{{ID: 1}}}
	l := NewLifecycle(api, nil)
	require.NoError(t, l.Refresh(context.Background()))

	api.listErr = errors.New("down")
	assert.Error(t, l.Refresh(context.Background()))
	assert.Len(t, l.Campaigns(), 1)
	assert.True(t, l.Loaded())
}

func TestCancelRequiresConfirmation(t *testing.T) {
	api := &fakeAPI{}
	l := NewLifecycle(api, nil)

	assert.ErrorIs(t, l.Cancel(context.Background(), 1, false), ErrNotConfirmed)
	assert.Empty(t, api.actions)

	require.NoError(t, l.Cancel(context.Background(), 1, true))
	assert.Equal(t, []string{"cancel"}, api.actions)
}

func TestDeleteTwoSteps(t *testing.T) {
	api := &fakeAPI{}
	l := NewLifecycle(api, nil)
	ctx := context.Background()

	req := NewDeleteRequest(9)
	assert.ErrorIs(t, l.Delete(ctx, req), ErrNotConfirmed)
	assert.ErrorIs(t, req.Verify(DeleteToken), ErrNotConfirmed)

	req.Confirm()
	assert.ErrorIs(t, l.Delete(ctx, req), ErrTokenMismatch)
	assert.ErrorIs(t, req.Verify("eliminar"), ErrTokenMismatch)
	assert.ErrorIs(t, req.Verify(" ELIMINAR"), ErrTokenMismatch)
	assert.False(t, req.Ready())
	assert.Empty(t, api.deleted)

	require.NoError(t, req.Verify("ELIMINAR"))
	assert.True(t, req.Ready())
	require.NoError(t, l.Delete(ctx, req))
	assert.Equal(t, []int64{9}, api.deleted)
	assert.Equal(t, 1, api.lists)
}

func TestDoDispatch(t *testing.T) {
	api := &fakeAPI{}
	l := NewLifecycle(api, nil)
	ctx := context.Background()

	require.NoError(t, l.Do(ctx, 1, ActionPause))
	require.NoError(t, l.Do(ctx, 1, ActionResume))
	assert.ErrorIs(t, l.Do(ctx, 1, ActionCancel), ErrUnknownAction)
	assert.Equal(t, []string{"pause", "resume"}, api.actions)
}

func TestAllowedActions(t *testing.T) {
	assert.Equal(t, []string{ActionStart, ActionCancel, ActionDelete}, AllowedActions(models.CampaignPending))
	assert.Equal(t, []string{ActionPause, ActionCancel, ActionDelete}, AllowedActions(models.CampaignRunning))
	assert.Equal(t, []string{ActionResume, ActionCancel, ActionDelete}, AllowedActions(models.CampaignPaused))
	assert.Equal(t, []string{ActionDelete}, AllowedActions(models.CampaignCompleted))
	assert.Equal(t, []string{ActionDelete}, AllowedActions(models.CampaignCancelled))
}
