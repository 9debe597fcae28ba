package service

import (
	"context"
	"testing"

	"reverie/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocialService_Follow_SelfRejected(t *testing.T) {
	t.Parallel()

	svc := NewSocialService(noopSocialRepo(), noopUserRepo(), noopNotifRepo(), nil)
	err := svc.Follow(context.Background(), 1, 1)
	assertValidationError(t, err)
}

func TestSocialService_Follow_BlockedForbidden(t *testing.T) {
	t.Parallel()

	sr := noopSocialRepo()
	sr.isBlockedEitherWayFn = func(_ context.Context, _, _ uint) (bool, error) { return true, nil }
	followed := false
	sr.followFn = func(_ context.Context, _, _ uint) error {
		followed = true
		return nil
	}
	svc := NewSocialService(sr, noopUserRepo(), noopNotifRepo(), nil)

	err := svc.Follow(context.Background(), 1, 2)
	assertForbiddenError(t, err)
	assert.False(t, followed)
}

func TestSocialService_Follow_NotifiesFollowedUser(t *testing.T) {
	t.Parallel()

	var notified *models.Notification
	nr := noopNotifRepo()
	nr.createFn = func(_ context.Context, n *models.Notification) error {
		notified = n
		return nil
	}
	svc := NewSocialService(noopSocialRepo(), noopUserRepo(), nr, nil)

	require.NoError(t, svc.Follow(context.Background(), 1, 2))
	require.NotNil(t, notified)
	assert.Equal(t, models.NotificationKindFollow, notified.Kind)
	assert.Equal(t, uint(2), notified.UserID)
	assert.Equal(t, uint(1), notified.ActorID)
}

func TestSocialService_Unfollow_IsSilent(t *testing.T) {
	t.Parallel()

	nr := noopNotifRepo()
	nr.createFn = func(_ context.Context, _ *models.Notification) error {
		t.Fatal("unfollow must not notify")
		return nil
	}
	unfollowed := false
	sr := noopSocialRepo()
	sr.unfollowFn = func(_ context.Context, _, _ uint) error {
		unfollowed = true
		return nil
	}
	svc := NewSocialService(sr, noopUserRepo(), nr, nil)

	require.NoError(t, svc.Unfollow(context.Background(), 1, 2))
	assert.True(t, unfollowed)
}

func TestSocialService_Block_SelfRejected(t *testing.T) {
	t.Parallel()

	svc := NewSocialService(noopSocialRepo(), noopUserRepo(), noopNotifRepo(), nil)
	err := svc.Block(context.Background(), 3, 3)
	assertValidationError(t, err)
}

func TestSocialService_Block_DelegatesToRepo(t *testing.T) {
	t.Parallel()

	var gotBlocker, gotBlocked uint
	sr := noopSocialRepo()
	sr.blockUserFn = func(_ context.Context, blockerID, blockedID uint) error {
		gotBlocker, gotBlocked = blockerID, blockedID
		return nil
	}
	svc := NewSocialService(sr, noopUserRepo(), noopNotifRepo(), nil)

	require.NoError(t, svc.Block(context.Background(), 3, 9))
	assert.Equal(t, uint(3), gotBlocker)
	assert.Equal(t, uint(9), gotBlocked)
}

func TestSocialService_Followers_ResolvesUsers(t *testing.T) {
	t.Parallel()

	sr := noopSocialRepo()
	sr.followerIDsFn = func(_ context.Context, _ uint) ([]uint, error) { return []uint{4, 5}, nil }
	ur := noopUserRepo()
	ur.getByIDsFn = func(_ context.Context, ids []uint) ([]*models.User, error) {
		assert.Equal(t, []uint{4, 5}, ids)
		return []*models.User{{ID: 4}, {ID: 5}}, nil
	}
	svc := NewSocialService(sr, ur, noopNotifRepo(), nil)

	users, err := svc.Followers(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
