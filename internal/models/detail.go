package models

import "time"

// Delivery outcomes reported in campaign logs
const (
	OutcomeSent      = "sent"
	OutcomeError     = "error"
	OutcomePending   = "pending"
	OutcomeCancelled = "cancelled"
)

// CampaignStats holds counts by delivery outcome
type CampaignStats struct {
	Sent      int `json:"sent"`
	Error     int `json:"error"`
	Pending   int `json:"pending"`
	Cancelled int `json:"cancelled"`
}

// Total returns the sum of all outcomes
func (s CampaignStats) Total() int {
	return s.Sent + s.Error + s.Pending + s.Cancelled
}

// LogEntry is one per-recipient delivery attempt
type LogEntry struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	Name         string     `json:"name,omitempty"`
	Phone        string     `json:"phone"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Attempts     int        `json:"attempts,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// FailedNumber is a per-recipient failure record
type FailedNumber struct {
	UserID   int64      `json:"user_id,omitempty"`
	Name     string     `json:"name,omitempty"`
	Phone    string     `json:"phone"`
	Error    string     `json:"error,omitempty"`
	Attempts int        `json:"attempts,omitempty"`
	FailedAt *time.Time `json:"failed_at,omitempty"`
}

// CampaignDetail is the read-only delivery report of one campaign
type CampaignDetail struct {
	Stats         CampaignStats  `json:"stats"`
	Logs          []LogEntry     `json:"logs"`
	FailedNumbers []FailedNumber `json:"failed_numbers"`
}
