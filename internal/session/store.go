// Package session persists the campaign authoring state between CLI runs.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/bingotables/bulkmsg/internal/audience"
	"github.com/bingotables/bulkmsg/internal/models"
)

// DefaultName is the session used when none is given
const DefaultName = "default"

var bucketSessions = []byte("sessions")

// ErrNotFound is returned by Load for unknown sessions
var ErrNotFound = errors.New("session not found")

// State is one authoring session: the audience, the exclusions and the
// campaign draft.
type State struct {
	DraftID            string               `json:"draft_id"`
	Filter             audience.Filter      `json:"filter"`
	Candidates         models.CandidateList `json:"candidates,omitempty"`
	Excluded           []int64              `json:"excluded,omitempty"`
	Name               string               `json:"name,omitempty"`
	Message            string               `json:"message,omitempty"`
	IntervalMinutes    int                  `json:"interval_minutes,omitempty"`
	MaxMessagesPerHour int                  `json:"max_messages_per_hour,omitempty"`
	ImagePath          string               `json:"image_path,omitempty"`
	PreviewIndex       int                  `json:"preview_index,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// NewState returns an empty state with a fresh draft id
func NewState() *State {
	now := time.Now()
	return &State{
		DraftID:   uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Summary describes a stored session
type Summary struct {
	Name       string
	DraftID    string
	Candidates int
	Excluded   int
	UpdatedAt  time.Time
}

// Store keeps sessions in a BoltDB file
type Store struct {
	db *bolt.DB
}

// Open opens or creates the session database at path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSessions)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sessions bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the session called name
func (s *Store) Load(name string) (*State, error) {
	var st *State
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSessions).Get([]byte(name))
		if data == nil {
			return ErrNotFound
		}
		var v State
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("failed to unmarshal session %s: %w", name, err)
		}
		st = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// LoadOrNew reads the session called name, starting a new one if missing
func (s *Store) LoadOrNew(name string) (*State, error) {
	st, err := s.Load(name)
	if errors.Is(err, ErrNotFound) {
		return NewState(), nil
	}
	return st, err
}

// Save writes st under name
func (s *Store) Save(name string, st *State) error {
	if st.DraftID == "" {
		st.DraftID = uuid.New().String()
	}
	if st.CreatedAt.IsZero() {
		st.CreatedAt = time.Now()
	}
	st.UpdatedAt = time.Now()

	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketSessions).Put([]byte(name), data); err != nil {
			return fmt.Errorf("failed to store session %s: %w", name, err)
		}
		return nil
	})
}

// Delete removes the session called name. Missing sessions are ignored.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).Delete([]byte(name))
	})
}

// List returns a summary of every stored session, most recent first
func (s *Store) List() ([]Summary, error) {
	var out []Summary
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).ForEach(func(k, v []byte) error {
			var st State
			if err := json.Unmarshal(v, &st); err != nil {
				// Skip corrupt entries
				return nil
			}
			out = append(out, Summary{
				Name:       string(k),
				DraftID:    st.DraftID,
				Candidates: len(st.Candidates),
				Excluded:   len(st.Excluded),
				UpdatedAt:  st.UpdatedAt,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}
