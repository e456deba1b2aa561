package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bingotables/bulkmsg/internal/models"
)

func candidates(ids ...int64) models.CandidateList {
	list := make(models.CandidateList, len(ids))
	for i, id := range ids {
		list[i] = models.Recipient{ID: id, FirstName: "user"}
	}
	return list
}

func TestToggleTwiceRestoresState(t *testing.T) {
	s := New(candidates(1, 2, 3))
	s.Exclude(3)
	before := s.Excluded()

	for _, id := range []int64{1, 2, 3} {
		_, ok := s.Toggle(id)
		require.True(t, ok)
		_, ok = s.Toggle(id)
		require.True(t, ok)
		assert.Equal(t, before, s.Excluded(), "toggle(%d) twice", id)
	}
}

func TestToggle(t *testing.T) {
	s := New(candidates(1, 2))

	excluded, ok := s.Toggle(1)
	assert.True(t, ok)
	assert.True(t, excluded)
	assert.True(t, s.IsExcluded(1))

	excluded, ok = s.Toggle(1)
	assert.True(t, ok)
	assert.False(t, excluded)
	assert.False(t, s.IsExcluded(1))

	_, ok = s.Toggle(99)
	assert.False(t, ok, "unknown id must not be tracked")
	assert.Empty(t, s.Excluded())
}

func TestActiveComplement(t *testing.T) {
	s := New(candidates(1, 2, 3, 4, 5))
	s.Exclude(2)
	s.Exclude(4)
	s.Exclude(42)

	active := s.ActiveIDs()
	excluded := s.Excluded()

	union := map[int64]int{}
	for _, id := range active {
		union[id]++
	}
	for _, id := range excluded {
		union[id]++
	}
	assert.Len(t, union, 5)
	for id, n := range union {
		assert.Equal(t, 1, n, "id %d must be in exactly one of active/excluded", id)
	}
	assert.Equal(t, []int64{1, 3, 5}, active)
	assert.Equal(t, []int64{2, 4}, excluded)
}

func TestExcludeAllIncludeAll(t *testing.T) {
	s := New(candidates(1, 2, 3))

	s.ExcludeAll()
	assert.Empty(t, s.Active())
	assert.Equal(t, []int64{1, 2, 3}, s.Excluded())

	s.IncludeAll()
	assert.Empty(t, s.Excluded())
	assert.Equal(t, []int64{1, 2, 3}, s.ActiveIDs())
}

func TestIncludeExclude(t *testing.T) {
	s := New(candidates(1, 2))

	assert.True(t, s.Exclude(1))
	assert.True(t, s.Exclude(1))
	assert.Equal(t, []int64{1}, s.Excluded())

	assert.True(t, s.Include(1))
	assert.Empty(t, s.Excluded())

	assert.False(t, s.Include(7))
	assert.False(t, s.Exclude(7))
}

func TestReplacePurgesOutOfScope(t *testing.T) {
	s := New(candidates(1, 2, 3))
	s.Exclude(1)
	s.Exclude(3)

	s.Replace(candidates(3, 4, 5))

	assert.Equal(t, []int64{3}, s.Excluded())
	assert.Equal(t, []int64{4, 5}, s.ActiveIDs())
}

func TestActiveNotCached(t *testing.T) {
	s := New(candidates(1, 2))
	first := s.Active()

	s.Replace(candidates(7, 8, 9))
	assert.Len(t, first, 2)
	assert.Equal(t, []int64{7, 8, 9}, s.ActiveIDs())
}

func TestEndToEndExclusion(t *testing.T) {
	s := New(candidates(1, 2, 3))
	s.Exclude(2)

	active := s.Active()
	require.Len(t, active, 2)
	assert.Equal(t, int64(1), active[0].ID)
	assert.Equal(t, int64(3), active[1].ID)
	assert.Equal(t, []int64{1, 3}, s.ActiveIDs())
}

func TestCandidatesCopy(t *testing.T) {
	src := candidates(1, 2)
	s := New(src)
	src[0].ID = 100

	got := s.Candidates()
	got[1].ID = 200
	assert.Equal(t, []int64{1, 2}, s.Candidates().IDs())
}

func TestResetAndRestore(t *testing.T) {
	s := Restore(candidates(1, 2, 3), []int64{2, 9})
	assert.Equal(t, []int64{2}, s.Excluded())
	assert.Equal(t, 3, s.Len())

	s.Reset()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Excluded())
}
