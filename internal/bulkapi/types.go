package bulkapi

import (
	"encoding/json"

	"github.com/bingotables/bulkmsg/internal/models"
)

// envelope is the common response wrapper of the API
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *envelope) serverMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// PreviewRequest is the body of the audience preview call
type PreviewRequest struct {
	Filters any `json:"filters"`
	Limit   int `json:"limit"`
}

// PreviewResult is the data of the audience preview call
type PreviewResult struct {
	Users models.CandidateList `json:"users"`
	Total int                  `json:"total,omitempty"`
}

// Attachment is an optional image sent along a new campaign
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CreateCampaignRequest holds the fields of the campaign creation form
type CreateCampaignRequest struct {
	Name               string
	Message            string
	UserIDs            []int64
	Filters            any
	IntervalMinutes    int
	MaxMessagesPerHour int
	CreatedBy          string
	Image              *Attachment
}

// Action is a lifecycle action posted to /campaigns/{id}/{action}
type Action string

const (
	ActionStart  Action = "start"
	ActionPause  Action = "pause"
	ActionResume Action = "resume"
	ActionCancel Action = "cancel"
)

// Valid reports whether a is one of the known actions
func (a Action) Valid() bool {
	switch a {
	case ActionStart, ActionPause, ActionResume, ActionCancel:
		return true
	}
	return false
}
