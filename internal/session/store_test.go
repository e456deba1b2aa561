package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bingotables/bulkmsg/internal/audience"
	"github.com/bingotables/bulkmsg/internal/models"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoad(t *testing.T) {
	s := openStore(t)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	st := NewState()
	st.Filter = audience.Filter{ProvinceID: "1", CantonID: "5", NeighborhoodIDs: []string{"9"}, RegisteredFrom: &from}
	st.Candidates = models.CandidateList{{ID: 1, FirstName: "Ana"}, {ID: 2}}
	st.Excluded = []int64{2}
	st.Name = "Entrega"
	st.Message = "Hola {firstName}"
	st.IntervalMinutes = 2

	require.NoError(t, s.Save(DefaultName, st))

	got, err := s.Load(DefaultName)
	require.NoError(t, err)
	assert.Equal(t, st.DraftID, got.DraftID)
	assert.Equal(t, "5", got.Filter.CantonID)
	assert.True(t, from.Equal(*got.Filter.RegisteredFrom))
	assert.Equal(t, []int64{1, 2}, got.Candidates.IDs())
	assert.Equal(t, "Ana", got.Candidates[0].FirstName)
	assert.Equal(t, []int64{2}, got.Excluded)
	assert.Equal(t, "Hola {firstName}", got.Message)
}

func TestLoadMissing(t *testing.T) {
	s := openStore(t)

	_, err := s.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	st, err := s.LoadOrNew("nope")
	require.NoError(t, err)
	assert.NotEmpty(t, st.DraftID)
	assert.Empty(t, st.Candidates)
}

func TestSaveAssignsDraftID(t *testing.T) {
	s := openStore(t)
	st := &State{}
	require.NoError(t, s.Save("x", st))
	assert.NotEmpty(t, st.DraftID)
	assert.False(t, st.CreatedAt.IsZero())
	assert.False(t, st.UpdatedAt.IsZero())
}

func TestDeleteAndList(t *testing.T) {
	s := openStore(t)

	a := NewState()
	a.Candidates = models.CandidateList{{ID: 1}}
	require.NoError(t, s.Save("a", a))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, s.Save("b", NewState()))

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].Name)
	assert.Equal(t, 1, list[1].Candidates)

	require.NoError(t, s.Delete("b"))
	require.NoError(t, s.Delete("missing"))

	list, err = s.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].Name)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	s, err := Open(path)
	require.NoError(t, err)
	st := NewState()
	st.Name = "persisted"
	require.NoError(t, s.Save(DefaultName, st))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load(DefaultName)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Name)
}
