package campaign

import "github.com/bingotables/bulkmsg/internal/models"

// Operator actions offered on a campaign
const (
	ActionStart  = "start"
	ActionPause  = "pause"
	ActionResume = "resume"
	ActionCancel = "cancel"
	ActionDelete = "delete"
)

// AllowedActions lists the actions the console offers for status. The
// server remains the authority on whether a transition is accepted.
func AllowedActions(status models.CampaignStatus) []string {
	switch status {
	case models.CampaignPending:
		return []string{ActionStart, ActionCancel, ActionDelete}
	case models.CampaignRunning:
		return []string{ActionPause, ActionCancel, ActionDelete}
	case models.CampaignPaused:
		return []string{ActionResume, ActionCancel, ActionDelete}
	default:
		return []string{ActionDelete}
	}
}
