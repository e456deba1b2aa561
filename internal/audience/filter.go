// Package audience turns location and date criteria into a candidate list.
package audience

import (
	"errors"
	"slices"
	"strings"
	"time"
)

// DateLayout is the wire format of the registration date range
const DateLayout = "2006-01-02"

var (
	ErrNoProvince   = errors.New("select a province before a canton")
	ErrNoCanton     = errors.New("select a canton before neighborhoods")
	ErrInvalidRange = errors.New("registration start date is after end date")
)

// Filter is the operator's audience selection. A canton is only meaningful
// with a province and neighborhoods only with a canton; the setters keep it
// that way.
type Filter struct {
	ProvinceID      string     `json:"province_id,omitempty"`
	CantonID        string     `json:"canton_id,omitempty"`
	NeighborhoodIDs []string   `json:"neighborhood_ids,omitempty"`
	RegisteredFrom  *time.Time `json:"registered_from,omitempty"`
	RegisteredTo    *time.Time `json:"registered_to,omitempty"`
}

// Payload is the filter as sent to the preview endpoint. Unset
// dimensions are omitted, never sent as empty strings.
type Payload struct {
	ProvinceID     string   `json:"provinceId,omitempty"`
	CantonID       string   `json:"cantonId,omitempty"`
	BarrioIDs      []string `json:"barrioIds,omitempty"`
	RegisteredFrom string   `json:"registeredFrom,omitempty"`
	RegisteredTo   string   `json:"registeredTo,omitempty"`
}

// SetProvince selects a province and clears canton and neighborhoods
func (f *Filter) SetProvince(id string) {
	id = strings.TrimSpace(id)
	if id == f.ProvinceID {
		return
	}
	f.ProvinceID = id
	f.CantonID = ""
	f.NeighborhoodIDs = nil
}

// SetCanton selects a canton and clears neighborhoods
func (f *Filter) SetCanton(id string) error {
	id = strings.TrimSpace(id)
	if id != "" && f.ProvinceID == "" {
		return ErrNoProvince
	}
	if id == f.CantonID {
		return nil
	}
	f.CantonID = id
	f.NeighborhoodIDs = nil
	return nil
}

// SetNeighborhoods replaces the selected neighborhoods
func (f *Filter) SetNeighborhoods(ids []string) error {
	ids = normalizeIDs(ids)
	if len(ids) > 0 && f.CantonID == "" {
		return ErrNoCanton
	}
	f.NeighborhoodIDs = ids
	return nil
}

// ToggleNeighborhood adds or removes one neighborhood
func (f *Filter) ToggleNeighborhood(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	if i := slices.Index(f.NeighborhoodIDs, id); i >= 0 {
		f.NeighborhoodIDs = slices.Delete(slices.Clone(f.NeighborhoodIDs), i, i+1)
		if len(f.NeighborhoodIDs) == 0 {
			f.NeighborhoodIDs = nil
		}
		return nil
	}
	return f.SetNeighborhoods(append(slices.Clone(f.NeighborhoodIDs), id))
}

// SetRegisteredRange sets the registration date range; nil leaves a bound open
func (f *Filter) SetRegisteredRange(from, to *time.Time) error {
	if from != nil && to != nil && from.After(*to) {
		return ErrInvalidRange
	}
	f.RegisteredFrom = from
	f.RegisteredTo = to
	return nil
}

// Clear resets every dimension
func (f *Filter) Clear() {
	*f = Filter{}
}

// IsEmpty reports whether no dimension is set
func (f Filter) IsEmpty() bool {
	p := f.Payload()
	return p.ProvinceID == "" && p.RegisteredFrom == "" && p.RegisteredTo == ""
}

// Payload normalizes the filter for the API
func (f Filter) Payload() Payload {
	var p Payload
	p.ProvinceID = strings.TrimSpace(f.ProvinceID)
	if p.ProvinceID != "" {
		p.CantonID = strings.TrimSpace(f.CantonID)
	}
	if p.CantonID != "" {
		p.BarrioIDs = normalizeIDs(f.NeighborhoodIDs)
	}
	if f.RegisteredFrom != nil {
		p.RegisteredFrom = f.RegisteredFrom.Format(DateLayout)
	}
	if f.RegisteredTo != nil {
		p.RegisteredTo = f.RegisteredTo.Format(DateLayout)
	}
	return p
}

// Clone returns a deep copy
func (f Filter) Clone() Filter {
	c := f
	c.NeighborhoodIDs = slices.Clone(f.NeighborhoodIDs)
	if f.RegisteredFrom != nil {
		t := *f.RegisteredFrom
		c.RegisteredFrom = &t
	}
	if f.RegisteredTo != nil {
		t := *f.RegisteredTo
		c.RegisteredTo = &t
	}
	return c
}

// ParseDate parses an optional YYYY-MM-DD value; empty input yields nil
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// normalizeIDs trims, drops empties and duplicates, and sorts
func normalizeIDs(ids []string) []string {
	var out []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
