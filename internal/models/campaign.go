package models

import "time"

// CampaignStatus is the server-reported state of a campaign
type CampaignStatus string

const (
	CampaignPending   CampaignStatus = "pending"
	CampaignRunning   CampaignStatus = "running"
	CampaignPaused    CampaignStatus = "paused"
	CampaignCompleted CampaignStatus = "completed"
	CampaignCancelled CampaignStatus = "cancelled"
)

// Terminal reports whether no further lifecycle action applies
func (s CampaignStatus) Terminal() bool {
	return s == CampaignCompleted || s == CampaignCancelled
}

// Campaign is the client projection of a server-owned campaign
type Campaign struct {
	ID                 int64          `json:"id"`
	Name               string         `json:"name"`
	Message            string         `json:"message"`
	Status             CampaignStatus `json:"status"`
	TotalUsers         int            `json:"total_users"`
	ImageURL           string         `json:"image_url,omitempty"`
	CreatedBy          string         `json:"created_by,omitempty"`
	CreatedAt          *time.Time     `json:"created_at,omitempty"`
	StartedAt          *time.Time     `json:"started_at,omitempty"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	IntervalMinutes    int            `json:"interval_minutes"`
	MaxMessagesPerHour int            `json:"max_messages_per_hour"`
}
