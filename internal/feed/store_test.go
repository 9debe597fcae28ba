package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LengthMismatchReplacesWholesale(t *testing.T) {
	s := NewStore()
	s.Apply([]DreamRecord{
		{ID: "a", LikeCount: 10, ViewerHasLiked: true},
		{ID: "b", LikeCount: 2},
	})

	// One record disappeared: structural change, local deltas invalidated.
	s.Apply([]DreamRecord{{ID: "a", LikeCount: 1}})

	records := s.Records()
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].LikeCount)
	assert.False(t, records[0].ViewerHasLiked)
}

func TestStore_MergeKeepsMaxLikeCountAndDivergedFlag(t *testing.T) {
	// Local state holds D with likeCount=5, viewerHasLiked=false; a like
	// toggle bumps it to 6/true; a stale refetch returns 5/false. The merge
	// keeps 6/true.
	s := NewStore()
	s.Apply([]DreamRecord{{ID: "D", LikeCount: 5, ViewerHasLiked: false}})

	ok := s.Update("D", func(r *DreamRecord) {
		r.LikeCount++
		r.ViewerHasLiked = true
	})
	require.True(t, ok)

	s.Apply([]DreamRecord{{ID: "D", LikeCount: 5, ViewerHasLiked: false}})

	record, found := s.Get("D")
	require.True(t, found)
	assert.Equal(t, 6, record.LikeCount)
	assert.True(t, record.ViewerHasLiked)
}

func TestStore_MergeTakesServerCountWhenHigher(t *testing.T) {
	s := NewStore()
	s.Apply([]DreamRecord{{ID: "D", LikeCount: 5}})

	s.Apply([]DreamRecord{{ID: "D", LikeCount: 9}})

	record, _ := s.Get("D")
	assert.Equal(t, 9, record.LikeCount)
}

func TestStore_MergeAdoptsFetchOrderAndNewIDs(t *testing.T) {
	s := NewStore()
	s.Apply([]DreamRecord{
		{ID: "a", LikeCount: 3},
		{ID: "b", LikeCount: 1},
	})

	// Same length, one ID swapped out; fresh record passes through as-is.
	s.Apply([]DreamRecord{
		{ID: "b", LikeCount: 1},
		{ID: "c", LikeCount: 7},
	})

	records := s.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].ID)
	assert.Equal(t, "c", records[1].ID)
	assert.Equal(t, 7, records[1].LikeCount)
}

func TestStore_RecordsReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Apply([]DreamRecord{{ID: "a", LikeCount: 1}})

	records := s.Records()
	records[0].LikeCount = 99

	held, _ := s.Get("a")
	assert.Equal(t, 1, held.LikeCount)
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	s.Apply([]DreamRecord{{ID: "a"}})
	s.Clear()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Records())
}
