package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is an identifier the API may encode either as a JSON number or string
type ID string

// UnmarshalJSON accepts both 12 and "12"
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the raw identifier
func (id ID) String() string {
	return string(id)
}

// Recipient is a person eligible for a campaign, as returned by the audience preview
type Recipient struct {
	ID             int64  `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Phone          string `json:"phone"`
	Neighborhood   string `json:"barrio"`
	Canton         string `json:"canton"`
	Province       string `json:"provincia"`
	TableID        ID     `json:"table_id,omitempty"`
	TableCode      string `json:"table_code,omitempty"`
	TableDelivered bool   `json:"table_delivered"`
	OCRValidated   bool   `json:"ocr_validated"`
}

// UnmarshalJSON accepts the recipient id as a JSON number or string
func (r *Recipient) UnmarshalJSON(data []byte) error {
	type plain Recipient
	aux := struct {
		*plain
		ID ID `json:"id"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.ID = 0
	if aux.ID == "" {
		return nil
	}
	id, err := strconv.ParseInt(aux.ID.String(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid recipient id %q: %w", aux.ID, err)
	}
	r.ID = id
	return nil
}

// FullName joins first and last name
func (r Recipient) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}

// CandidateList is the ordered result of one audience preview
type CandidateList []Recipient

// IDs returns recipient ids in list order
func (l CandidateList) IDs() []int64 {
	ids := make([]int64, len(l))
	for i, r := range l {
		ids[i] = r.ID
	}
	return ids
}

// Index returns the position of the recipient with the given id, or -1
func (l CandidateList) Index(id int64) int {
	for i, r := range l {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Location is one option of the province/canton/barrio cascade
type Location struct {
	ID   ID     `json:"id"`
	Name string `json:"nombre"`
}
