package service

import (
	"context"
	"errors"
	"testing"

	"reverie/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// dreamRepoStub is a stub for repository.DreamRepository.
type dreamRepoStub struct {
	createFn              func(context.Context, *models.Dream) error
	getByIDFn             func(context.Context, string, uint) (*models.Dream, error)
	getByUserIDFn         func(context.Context, uint, int, int, uint, bool) ([]*models.Dream, error)
	listPublicFn          func(context.Context, int, int, uint) ([]*models.Dream, error)
	listPublicByAuthorsFn func(context.Context, []uint, int, uint) ([]*models.Dream, error)
	searchPublicFn        func(context.Context, string, int, uint) ([]*models.Dream, error)
	updateFn              func(context.Context, *models.Dream) error
	setVisibilityFn       func(context.Context, string, bool) error
	deleteFn              func(context.Context, string) error
	isLikedFn             func(context.Context, uint, string) (bool, error)
	likeCountFn           func(context.Context, string) (int, error)
	commentCountFn        func(context.Context, string) (int, error)
	likeFn                func(context.Context, uint, string) error
	unlikeFn              func(context.Context, uint, string) error
}

func (s *dreamRepoStub) Create(ctx context.Context, dream *models.Dream) error {
	return s.createFn(ctx, dream)
}
func (s *dreamRepoStub) GetByID(ctx context.Context, id string, viewerID uint) (*models.Dream, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *dreamRepoStub) GetByUserID(ctx context.Context, userID uint, limit, offset int, viewerID uint, includePrivate bool) ([]*models.Dream, error) {
	return s.getByUserIDFn(ctx, userID, limit, offset, viewerID, includePrivate)
}
func (s *dreamRepoStub) ListPublic(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Dream, error) {
	return s.listPublicFn(ctx, limit, offset, viewerID)
}
func (s *dreamRepoStub) ListPublicByAuthors(ctx context.Context, authorIDs []uint, limit int, viewerID uint) ([]*models.Dream, error) {
	return s.listPublicByAuthorsFn(ctx, authorIDs, limit, viewerID)
}
func (s *dreamRepoStub) SearchPublic(ctx context.Context, query string, limit int, viewerID uint) ([]*models.Dream, error) {
	return s.searchPublicFn(ctx, query, limit, viewerID)
}
func (s *dreamRepoStub) Update(ctx context.Context, dream *models.Dream) error {
	return s.updateFn(ctx, dream)
}
func (s *dreamRepoStub) SetVisibility(ctx context.Context, id string, isPublic bool) error {
	return s.setVisibilityFn(ctx, id, isPublic)
}
func (s *dreamRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
func (s *dreamRepoStub) IsLiked(ctx context.Context, userID uint, dreamID string) (bool, error) {
	return s.isLikedFn(ctx, userID, dreamID)
}
func (s *dreamRepoStub) LikeCount(ctx context.Context, dreamID string) (int, error) {
	return s.likeCountFn(ctx, dreamID)
}
func (s *dreamRepoStub) CommentCount(ctx context.Context, dreamID string) (int, error) {
	return s.commentCountFn(ctx, dreamID)
}
func (s *dreamRepoStub) Like(ctx context.Context, userID uint, dreamID string) error {
	return s.likeFn(ctx, userID, dreamID)
}
func (s *dreamRepoStub) Unlike(ctx context.Context, userID uint, dreamID string) error {
	return s.unlikeFn(ctx, userID, dreamID)
}

func noopDreamRepo() *dreamRepoStub {
	return &dreamRepoStub{
		createFn:  func(_ context.Context, _ *models.Dream) error { return nil },
		getByIDFn: func(_ context.Context, _ string, _ uint) (*models.Dream, error) { return &models.Dream{}, nil },
		getByUserIDFn: func(_ context.Context, _ uint, _, _ int, _ uint, _ bool) ([]*models.Dream, error) {
			return nil, nil
		},
		listPublicFn: func(_ context.Context, _, _ int, _ uint) ([]*models.Dream, error) { return nil, nil },
		listPublicByAuthorsFn: func(_ context.Context, _ []uint, _ int, _ uint) ([]*models.Dream, error) {
			return nil, nil
		},
		searchPublicFn:  func(_ context.Context, _ string, _ int, _ uint) ([]*models.Dream, error) { return nil, nil },
		updateFn:        func(_ context.Context, _ *models.Dream) error { return nil },
		setVisibilityFn: func(_ context.Context, _ string, _ bool) error { return nil },
		deleteFn:        func(_ context.Context, _ string) error { return nil },
		isLikedFn:       func(_ context.Context, _ uint, _ string) (bool, error) { return false, nil },
		likeCountFn:     func(_ context.Context, _ string) (int, error) { return 0, nil },
		commentCountFn:  func(_ context.Context, _ string) (int, error) { return 0, nil },
		likeFn:          func(_ context.Context, _ uint, _ string) error { return nil },
		unlikeFn:        func(_ context.Context, _ uint, _ string) error { return nil },
	}
}

// tagRepoStub is a stub for repository.TagRepository.
type tagRepoStub struct {
	listFn             func(context.Context) ([]models.Tag, error)
	getByIDsFn         func(context.Context, []string) ([]models.Tag, error)
	replaceDreamTagsFn func(context.Context, *models.Dream, []string) error
}

func (s *tagRepoStub) List(ctx context.Context) ([]models.Tag, error) { return s.listFn(ctx) }
func (s *tagRepoStub) GetByIDs(ctx context.Context, ids []string) ([]models.Tag, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *tagRepoStub) ReplaceDreamTags(ctx context.Context, dream *models.Dream, tagIDs []string) error {
	return s.replaceDreamTagsFn(ctx, dream, tagIDs)
}

func noopTagRepo() *tagRepoStub {
	return &tagRepoStub{
		listFn:             func(_ context.Context) ([]models.Tag, error) { return nil, nil },
		getByIDsFn:         func(_ context.Context, _ []string) ([]models.Tag, error) { return nil, nil },
		replaceDreamTagsFn: func(_ context.Context, _ *models.Dream, _ []string) error { return nil },
	}
}

// notifRepoStub is a stub for repository.NotificationRepository.
type notifRepoStub struct {
	createFn              func(context.Context, *models.Notification) error
	listByUserFn          func(context.Context, uint, int, int) ([]*models.Notification, error)
	unreadCountFn         func(context.Context, uint) (int64, error)
	markReadFn            func(context.Context, uint, []uint) error
	markAllReadFn         func(context.Context, uint) error
	activeAnnouncementsFn func(context.Context) ([]*models.Announcement, error)
}

func (s *notifRepoStub) Create(ctx context.Context, n *models.Notification) error {
	return s.createFn(ctx, n)
}
func (s *notifRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Notification, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}
func (s *notifRepoStub) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.unreadCountFn(ctx, userID)
}
func (s *notifRepoStub) MarkRead(ctx context.Context, userID uint, ids []uint) error {
	return s.markReadFn(ctx, userID, ids)
}
func (s *notifRepoStub) MarkAllRead(ctx context.Context, userID uint) error {
	return s.markAllReadFn(ctx, userID)
}
func (s *notifRepoStub) ActiveAnnouncements(ctx context.Context) ([]*models.Announcement, error) {
	return s.activeAnnouncementsFn(ctx)
}

func noopNotifRepo() *notifRepoStub {
	return &notifRepoStub{
		createFn:              func(_ context.Context, _ *models.Notification) error { return nil },
		listByUserFn:          func(_ context.Context, _ uint, _, _ int) ([]*models.Notification, error) { return nil, nil },
		unreadCountFn:         func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		markReadFn:            func(_ context.Context, _ uint, _ []uint) error { return nil },
		markAllReadFn:         func(_ context.Context, _ uint) error { return nil },
		activeAnnouncementsFn: func(_ context.Context) ([]*models.Announcement, error) { return nil, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn       func(context.Context, *models.Comment) error
	getByIDFn      func(context.Context, uint) (*models.Comment, error)
	getByDreamIDFn func(context.Context, string, int, int) ([]*models.Comment, error)
	updateFn       func(context.Context, *models.Comment) error
	deleteFn       func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) GetByDreamID(ctx context.Context, dreamID string, limit, offset int) ([]*models.Comment, error) {
	return s.getByDreamIDFn(ctx, dreamID, limit, offset)
}
func (s *commentRepoStub) Update(ctx context.Context, c *models.Comment) error {
	return s.updateFn(ctx, c)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:       func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:      func(_ context.Context, _ uint) (*models.Comment, error) { return &models.Comment{}, nil },
		getByDreamIDFn: func(_ context.Context, _ string, _, _ int) ([]*models.Comment, error) { return nil, nil },
		updateFn:       func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
	}
}

// socialRepoStub is a stub for repository.SocialRepository.
type socialRepoStub struct {
	followFn               func(context.Context, uint, uint) error
	unfollowFn             func(context.Context, uint, uint) error
	isFollowingFn          func(context.Context, uint, uint) (bool, error)
	followedIDsFn          func(context.Context, uint) ([]uint, error)
	followerIDsFn          func(context.Context, uint) ([]uint, error)
	removeFollowsBetweenFn func(context.Context, uint, uint) error
	blockUserFn            func(context.Context, uint, uint) error
	unblockUserFn          func(context.Context, uint, uint) error
	blockedIDsFn           func(context.Context, uint) ([]uint, error)
	isBlockedEitherWayFn   func(context.Context, uint, uint) (bool, error)
}

func (s *socialRepoStub) Follow(ctx context.Context, a, b uint) error { return s.followFn(ctx, a, b) }
func (s *socialRepoStub) Unfollow(ctx context.Context, a, b uint) error {
	return s.unfollowFn(ctx, a, b)
}
func (s *socialRepoStub) IsFollowing(ctx context.Context, a, b uint) (bool, error) {
	return s.isFollowingFn(ctx, a, b)
}
func (s *socialRepoStub) FollowedIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followedIDsFn(ctx, userID)
}
func (s *socialRepoStub) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followerIDsFn(ctx, userID)
}
func (s *socialRepoStub) RemoveFollowsBetween(ctx context.Context, a, b uint) error {
	return s.removeFollowsBetweenFn(ctx, a, b)
}
func (s *socialRepoStub) BlockUser(ctx context.Context, a, b uint) error {
	return s.blockUserFn(ctx, a, b)
}
func (s *socialRepoStub) UnblockUser(ctx context.Context, a, b uint) error {
	return s.unblockUserFn(ctx, a, b)
}
func (s *socialRepoStub) BlockedIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.blockedIDsFn(ctx, userID)
}
func (s *socialRepoStub) IsBlockedEitherWay(ctx context.Context, a, b uint) (bool, error) {
	return s.isBlockedEitherWayFn(ctx, a, b)
}

func noopSocialRepo() *socialRepoStub {
	return &socialRepoStub{
		followFn:               func(_ context.Context, _, _ uint) error { return nil },
		unfollowFn:             func(_ context.Context, _, _ uint) error { return nil },
		isFollowingFn:          func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		followedIDsFn:          func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		followerIDsFn:          func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		removeFollowsBetweenFn: func(_ context.Context, _, _ uint) error { return nil },
		blockUserFn:            func(_ context.Context, _, _ uint) error { return nil },
		unblockUserFn:          func(_ context.Context, _, _ uint) error { return nil },
		blockedIDsFn:           func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		isBlockedEitherWayFn:   func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn           func(context.Context, *models.User) error
	getByIDFn          func(context.Context, uint) (*models.User, error)
	getByEmailFn       func(context.Context, string) (*models.User, error)
	getByUsernameFn    func(context.Context, string) (*models.User, error)
	searchByUsernameFn func(context.Context, string, int) ([]*models.User, error)
	getByIDsFn         func(context.Context, []uint) ([]*models.User, error)
	updateFn           func(context.Context, *models.User) error
}

func (s *userRepoStub) Create(ctx context.Context, u *models.User) error { return s.createFn(ctx, u) }
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) SearchByUsername(ctx context.Context, query string, limit int) ([]*models.User, error) {
	return s.searchByUsernameFn(ctx, query, limit)
}
func (s *userRepoStub) GetByIDs(ctx context.Context, ids []uint) ([]*models.User, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *userRepoStub) Update(ctx context.Context, u *models.User) error { return s.updateFn(ctx, u) }

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:           func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn:          func(_ context.Context, _ uint) (*models.User, error) { return &models.User{}, nil },
		getByEmailFn:       func(_ context.Context, _ string) (*models.User, error) { return &models.User{}, nil },
		getByUsernameFn:    func(_ context.Context, _ string) (*models.User, error) { return &models.User{}, nil },
		searchByUsernameFn: func(_ context.Context, _ string, _ int) ([]*models.User, error) { return nil, nil },
		getByIDsFn:         func(_ context.Context, _ []uint) ([]*models.User, error) { return nil, nil },
		updateFn:           func(_ context.Context, _ *models.User) error { return nil },
	}
}

// learningRepoStub is a stub for repository.LearningRepository.
type learningRepoStub struct {
	syncCatalogFn      func(context.Context, []models.LearningPath) error
	listPathsFn        func(context.Context) ([]models.LearningPath, error)
	getStepFn          func(context.Context, string) (*models.LearningStep, error)
	completeStepFn     func(context.Context, uint, string) error
	completedStepIDsFn func(context.Context, uint) ([]string, error)
}

func (s *learningRepoStub) SyncCatalog(ctx context.Context, paths []models.LearningPath) error {
	return s.syncCatalogFn(ctx, paths)
}
func (s *learningRepoStub) ListPaths(ctx context.Context) ([]models.LearningPath, error) {
	return s.listPathsFn(ctx)
}
func (s *learningRepoStub) GetStep(ctx context.Context, stepID string) (*models.LearningStep, error) {
	return s.getStepFn(ctx, stepID)
}
func (s *learningRepoStub) CompleteStep(ctx context.Context, userID uint, stepID string) error {
	return s.completeStepFn(ctx, userID, stepID)
}
func (s *learningRepoStub) CompletedStepIDs(ctx context.Context, userID uint) ([]string, error) {
	return s.completedStepIDsFn(ctx, userID)
}

func noopLearningRepo() *learningRepoStub {
	return &learningRepoStub{
		syncCatalogFn: func(_ context.Context, _ []models.LearningPath) error { return nil },
		listPathsFn:   func(_ context.Context) ([]models.LearningPath, error) { return nil, nil },
		getStepFn: func(_ context.Context, _ string) (*models.LearningStep, error) {
			return &models.LearningStep{}, nil
		},
		completeStepFn:     func(_ context.Context, _ uint, _ string) error { return nil },
		completedStepIDsFn: func(_ context.Context, _ uint) ([]string, error) { return nil, nil },
	}
}

// subscriptionRepoStub is a stub for repository.SubscriptionRepository.
type subscriptionRepoStub struct {
	getByUserIDFn func(context.Context, uint) (*models.Subscription, error)
	upsertFn      func(context.Context, *models.Subscription) error
}

func (s *subscriptionRepoStub) GetByUserID(ctx context.Context, userID uint) (*models.Subscription, error) {
	return s.getByUserIDFn(ctx, userID)
}
func (s *subscriptionRepoStub) Upsert(ctx context.Context, sub *models.Subscription) error {
	return s.upsertFn(ctx, sub)
}

func noopSubscriptionRepo() *subscriptionRepoStub {
	return &subscriptionRepoStub{
		getByUserIDFn: func(_ context.Context, _ uint) (*models.Subscription, error) {
			return nil, gorm.ErrRecordNotFound
		},
		upsertFn: func(_ context.Context, _ *models.Subscription) error { return nil },
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

// assertNotFoundError asserts that err is an AppError with code NOT_FOUND.
func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "NOT_FOUND")
}

// assertForbiddenError asserts that err is an AppError with code FORBIDDEN.
func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "FORBIDDEN")
}
