package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"reverie/internal/feed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGateway lets each test override just the calls it cares about.
type stubGateway struct {
	likeFn        func(ctx context.Context, userID uint, dreamID string) error
	unlikeFn      func(ctx context.Context, userID uint, dreamID string) error
	addCommentFn  func(ctx context.Context, userID uint, dreamID, body string) error
	followFn      func(ctx context.Context, followerID, followedID uint) error
	unfollowFn    func(ctx context.Context, followerID, followedID uint) error
	isFollowingFn func(ctx context.Context, followerID, followedID uint) (bool, error)
	blockFn       func(ctx context.Context, blockerID, blockedID uint) error
	unblockFn     func(ctx context.Context, blockerID, blockedID uint) error
	blockedIDsFn  func(ctx context.Context, userID uint) ([]uint, error)
	visibilityFn  func(ctx context.Context, userID uint, dreamID string, isPublic bool) error
}

func (g *stubGateway) Like(ctx context.Context, userID uint, dreamID string) error {
	if g.likeFn != nil {
		return g.likeFn(ctx, userID, dreamID)
	}
	return nil
}

func (g *stubGateway) Unlike(ctx context.Context, userID uint, dreamID string) error {
	if g.unlikeFn != nil {
		return g.unlikeFn(ctx, userID, dreamID)
	}
	return nil
}

func (g *stubGateway) AddComment(ctx context.Context, userID uint, dreamID, body string) error {
	if g.addCommentFn != nil {
		return g.addCommentFn(ctx, userID, dreamID, body)
	}
	return nil
}

func (g *stubGateway) Follow(ctx context.Context, followerID, followedID uint) error {
	if g.followFn != nil {
		return g.followFn(ctx, followerID, followedID)
	}
	return nil
}

func (g *stubGateway) Unfollow(ctx context.Context, followerID, followedID uint) error {
	if g.unfollowFn != nil {
		return g.unfollowFn(ctx, followerID, followedID)
	}
	return nil
}

func (g *stubGateway) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	if g.isFollowingFn != nil {
		return g.isFollowingFn(ctx, followerID, followedID)
	}
	return false, nil
}

func (g *stubGateway) Block(ctx context.Context, blockerID, blockedID uint) error {
	if g.blockFn != nil {
		return g.blockFn(ctx, blockerID, blockedID)
	}
	return nil
}

func (g *stubGateway) Unblock(ctx context.Context, blockerID, blockedID uint) error {
	if g.unblockFn != nil {
		return g.unblockFn(ctx, blockerID, blockedID)
	}
	return nil
}

func (g *stubGateway) BlockedIDs(ctx context.Context, userID uint) ([]uint, error) {
	if g.blockedIDsFn != nil {
		return g.blockedIDsFn(ctx, userID)
	}
	return nil, nil
}

func (g *stubGateway) SetDreamVisibility(ctx context.Context, userID uint, dreamID string, isPublic bool) error {
	if g.visibilityFn != nil {
		return g.visibilityFn(ctx, userID, dreamID, isPublic)
	}
	return nil
}

func newTestSession(t *testing.T, userID uint, gw Gateway, records ...feed.DreamRecord) *Session {
	t.Helper()
	s := New(userID, gw, nil)
	s.privatizeDelay = time.Millisecond
	s.Store().Apply(records)
	return s
}

func TestToggleLike_RoundTripRestoresOriginalState(t *testing.T) {
	s := newTestSession(t, 1, &stubGateway{},
		feed.DreamRecord{ID: "D", AuthorID: 2, LikeCount: 5, ViewerHasLiked: false})
	ctx := context.Background()

	res := s.ToggleLike(ctx, "D")
	assert.Equal(t, StatusCommitted, res.Status)

	record, _ := s.Store().Get("D")
	assert.Equal(t, 6, record.LikeCount)
	assert.True(t, record.ViewerHasLiked)

	// Second toggle after the first settled returns to the original values.
	res = s.ToggleLike(ctx, "D")
	assert.Equal(t, StatusCommitted, res.Status)

	record, _ = s.Store().Get("D")
	assert.Equal(t, 5, record.LikeCount)
	assert.False(t, record.ViewerHasLiked)
}

func TestToggleLike_CountNeverGoesNegative(t *testing.T) {
	// A record that arrives already at zero with a stale liked flag.
	s := newTestSession(t, 1, &stubGateway{},
		feed.DreamRecord{ID: "D", AuthorID: 2, LikeCount: 0, ViewerHasLiked: true})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		s.ToggleLike(ctx, "D")
		record, _ := s.Store().Get("D")
		assert.GreaterOrEqual(t, record.LikeCount, 0)
	}
}

func TestToggleLike_RollsBackOnGatewayFailure(t *testing.T) {
	gw := &stubGateway{
		likeFn: func(context.Context, uint, string) error {
			return errors.New("insert rejected")
		},
	}
	s := newTestSession(t, 1, gw,
		feed.DreamRecord{ID: "D", AuthorID: 2, LikeCount: 5, ViewerHasLiked: false})

	res := s.ToggleLike(context.Background(), "D")
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, "insert rejected", res.Reason)

	record, _ := s.Store().Get("D")
	assert.Equal(t, 5, record.LikeCount)
	assert.False(t, record.ViewerHasLiked)
}

func TestToggleLike_SecondToggleWhilePendingIsRejected(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	gw := &stubGateway{
		likeFn: func(context.Context, uint, string) error {
			close(entered)
			<-release
			return nil
		},
	}
	s := newTestSession(t, 1, gw,
		feed.DreamRecord{ID: "D", AuthorID: 2, LikeCount: 0})

	done := make(chan MutationResult)
	go func() { done <- s.ToggleLike(context.Background(), "D") }()
	<-entered

	res := s.ToggleLike(context.Background(), "D")
	assert.Equal(t, StatusPending, res.Status)

	close(release)
	assert.Equal(t, StatusCommitted, (<-done).Status)
}

func TestComment_EmptyBodyFailsBeforeNetwork(t *testing.T) {
	called := false
	gw := &stubGateway{
		addCommentFn: func(context.Context, uint, string, string) error {
			called = true
			return nil
		},
	}
	s := newTestSession(t, 1, gw, feed.DreamRecord{ID: "D", AuthorID: 2})

	res := s.Comment(context.Background(), "D", "   ")
	assert.Equal(t, StatusFailed, res.Status)
	assert.False(t, called, "validation failures must not reach the gateway")
}

func TestComment_OptimisticCountRollsBackOnFailure(t *testing.T) {
	gw := &stubGateway{
		addCommentFn: func(context.Context, uint, string, string) error {
			return errors.New("down")
		},
	}
	s := newTestSession(t, 1, gw,
		feed.DreamRecord{ID: "D", AuthorID: 2, CommentCount: 2})

	res := s.Comment(context.Background(), "D", "wild one")
	assert.Equal(t, StatusFailed, res.Status)

	record, _ := s.Store().Get("D")
	assert.Equal(t, 2, record.CommentCount)
}

func TestToggleVisibility_AuthorOnly(t *testing.T) {
	called := false
	gw := &stubGateway{
		visibilityFn: func(context.Context, uint, string, bool) error {
			called = true
			return nil
		},
	}
	s := newTestSession(t, 1, gw,
		feed.DreamRecord{ID: "D", AuthorID: 99, IsPublic: true})

	res := s.ToggleVisibility(context.Background(), "D", nil)
	assert.Equal(t, StatusFailed, res.Status)
	assert.False(t, called, "authorization short-circuits before the write")

	record, _ := s.Store().Get("D")
	assert.True(t, record.IsPublic)
}

func TestToggleVisibility_PrivatizeFiresCallbackAfterDelay(t *testing.T) {
	s := newTestSession(t, 1, &stubGateway{},
		feed.DreamRecord{ID: "D", AuthorID: 1, IsPublic: true})

	fired := make(chan struct{})
	res := s.ToggleVisibility(context.Background(), "D", func() { close(fired) })
	require.Equal(t, StatusCommitted, res.Status)

	record, _ := s.Store().Get("D")
	assert.False(t, record.IsPublic)

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("privatize callback never fired")
	}
}

func TestToggleVisibility_MakePublicDoesNotFireCallback(t *testing.T) {
	s := newTestSession(t, 1, &stubGateway{},
		feed.DreamRecord{ID: "D", AuthorID: 1, IsPublic: false})

	res := s.ToggleVisibility(context.Background(), "D", func() {
		t.Error("callback must not fire when making a dream public")
	})
	require.Equal(t, StatusCommitted, res.Status)
	time.Sleep(10 * time.Millisecond)
}

func TestToggleFollow_RefetchesAuthoritativeStatus(t *testing.T) {
	var followed bool
	gw := &stubGateway{
		isFollowingFn: func(context.Context, uint, uint) (bool, error) {
			return followed, nil
		},
		followFn: func(context.Context, uint, uint) error {
			followed = true
			return nil
		},
		unfollowFn: func(context.Context, uint, uint) error {
			followed = false
			return nil
		},
	}
	s := newTestSession(t, 1, gw)
	ctx := context.Background()

	following, res := s.ToggleFollow(ctx, 2)
	assert.Equal(t, StatusCommitted, res.Status)
	assert.True(t, following)

	following, res = s.ToggleFollow(ctx, 2)
	assert.Equal(t, StatusCommitted, res.Status)
	assert.False(t, following)
}

func TestToggleFollow_SelfFollowRejected(t *testing.T) {
	s := newTestSession(t, 1, &stubGateway{})
	_, res := s.ToggleFollow(context.Background(), 1)
	assert.Equal(t, StatusFailed, res.Status)
}

func TestBlock_FiltersRendersImmediatelyAndSeversFollows(t *testing.T) {
	var severedWith uint
	gw := &stubGateway{
		blockFn: func(_ context.Context, _, blockedID uint) error {
			severedWith = blockedID
			return nil
		},
	}
	s := newTestSession(t, 1, gw,
		feed.DreamRecord{ID: "mine", AuthorID: 2, IsPublic: true},
		feed.DreamRecord{ID: "theirs", AuthorID: 66, IsPublic: true},
	)

	res := s.Block(context.Background(), 66)
	require.Equal(t, StatusCommitted, res.Status)
	assert.Equal(t, uint(66), severedWith)

	// No refetch: the next render already filters the blocked author.
	visible := s.VisibleRecords()
	require.Len(t, visible, 1)
	assert.Equal(t, "mine", visible[0].ID)
	assert.True(t, s.Blocks().IsBlocked(66))
}

func TestBlock_RollsBackInMemorySetOnGatewayFailure(t *testing.T) {
	gw := &stubGateway{
		blockFn: func(context.Context, uint, uint) error {
			return errors.New("write failed")
		},
	}
	s := newTestSession(t, 1, gw)

	res := s.Block(context.Background(), 66)
	assert.Equal(t, StatusFailed, res.Status)
	assert.False(t, s.Blocks().IsBlocked(66))
}

func TestSessionLifecycle_StartPopulatesAndEndClears(t *testing.T) {
	gw := &stubGateway{
		blockedIDsFn: func(context.Context, uint) ([]uint, error) {
			return []uint{7, 8}, nil
		},
	}
	s := newTestSession(t, 1, gw, feed.DreamRecord{ID: "D", AuthorID: 2})

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.Blocks().IsBlocked(7))
	assert.True(t, s.Blocks().IsBlocked(8))

	s.End()
	assert.False(t, s.Blocks().IsBlocked(7))
	assert.Zero(t, s.Store().Len())
}
