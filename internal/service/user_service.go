package service

import (
	"context"
	"errors"
	"strings"

	"reverie/internal/models"
	"reverie/internal/repository"

	"gorm.io/gorm"
)

const (
	maxDisplayNameLen = 60
	maxBioLen         = 500
)

// UserService owns profile reads and edits.
type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput is the payload for editing one's own profile.
type UpdateProfileInput struct {
	UserID      uint
	DisplayName string
	Bio         string
	AvatarURL   string
}

// NewUserService creates a user service.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile returns a user with follower and following counts.
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", userID)
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// GetProfileByUsername resolves a profile by handle.
func (s *UserService) GetProfileByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// UpdateProfile edits the caller's own display name, bio, and avatar.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if len(in.DisplayName) > maxDisplayNameLen {
		return nil, models.NewValidationError("Display name too long (max 60 characters)")
	}
	if len(in.Bio) > maxBioLen {
		return nil, models.NewValidationError("Bio too long (max 500 characters)")
	}

	user, err := s.GetProfile(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	user.DisplayName = strings.TrimSpace(in.DisplayName)
	user.Bio = strings.TrimSpace(in.Bio)
	if in.AvatarURL != "" {
		user.AvatarURL = in.AvatarURL
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// SearchUsers finds users by username or display name.
func (s *UserService) SearchUsers(ctx context.Context, query string, limit int) ([]*models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*models.User{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	users, err := s.userRepo.SearchByUsername(ctx, query, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
