package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"reverie/internal/feed"
	"reverie/internal/observability"
)

// ToggleLike flips the viewer's like on a dream. The store is updated
// optimistically before the gateway write; a confirmed failure rolls the
// optimistic change back and reports the reason.
func (s *Session) ToggleLike(ctx context.Context, dreamID string) MutationResult {
	key := "like:" + dreamID
	if !s.begin(key) {
		return Pending()
	}
	defer s.settle(key)

	record, ok := s.store.Get(dreamID)
	if !ok {
		return Failed(ReasonNotInLocalState)
	}

	liking := !record.ViewerHasLiked
	s.store.Update(dreamID, func(r *feed.DreamRecord) {
		applyLike(r, liking)
	})

	var err error
	if liking {
		err = s.gateway.Like(ctx, s.UserID, dreamID)
	} else {
		err = s.gateway.Unlike(ctx, s.UserID, dreamID)
	}
	if err != nil {
		// Roll back rather than leaving unconfirmed optimistic state.
		s.store.Update(dreamID, func(r *feed.DreamRecord) {
			applyLike(r, !liking)
		})
		observability.LikeToggles.WithLabelValues("failed").Inc()
		s.logger.ErrorContext(ctx, "like toggle failed",
			slog.String("dream_id", dreamID),
			slog.String("error", err.Error()),
		)
		return Failed(err.Error())
	}

	observability.LikeToggles.WithLabelValues("committed").Inc()
	return Committed()
}

// applyLike moves viewerHasLiked and likeCount together, flooring the
// count at zero.
func applyLike(r *feed.DreamRecord, liked bool) {
	if r.ViewerHasLiked == liked {
		return
	}
	r.ViewerHasLiked = liked
	if liked {
		r.LikeCount++
	} else if r.LikeCount > 0 {
		r.LikeCount--
	}
}

// Comment posts a comment and bumps the local count optimistically.
// An empty body fails validation before any network call.
func (s *Session) Comment(ctx context.Context, dreamID, body string) MutationResult {
	if strings.TrimSpace(body) == "" {
		return Failed("comment body is required")
	}

	key := "comment:" + dreamID
	if !s.begin(key) {
		return Pending()
	}
	defer s.settle(key)

	s.store.Update(dreamID, func(r *feed.DreamRecord) {
		r.CommentCount++
	})

	if err := s.gateway.AddComment(ctx, s.UserID, dreamID, body); err != nil {
		s.store.Update(dreamID, func(r *feed.DreamRecord) {
			if r.CommentCount > 0 {
				r.CommentCount--
			}
		})
		s.logger.ErrorContext(ctx, "comment failed",
			slog.String("dream_id", dreamID),
			slog.String("error", err.Error()),
		)
		return Failed(err.Error())
	}
	return Committed()
}

// ToggleVisibility flips a dream between public and private. Author-only:
// acting on another user's record short-circuits before any write. When a
// dream was just made private, onPrivatized fires after a fixed delay so
// open detail views can close instead of showing unreachable content.
func (s *Session) ToggleVisibility(ctx context.Context, dreamID string, onPrivatized func()) MutationResult {
	key := "visibility:" + dreamID
	if !s.begin(key) {
		return Pending()
	}
	defer s.settle(key)

	record, ok := s.store.Get(dreamID)
	if !ok {
		return Failed(ReasonNotInLocalState)
	}
	if record.AuthorID != s.UserID {
		return Failed("only the author can change visibility")
	}

	makePublic := !record.IsPublic
	s.store.Update(dreamID, func(r *feed.DreamRecord) {
		r.IsPublic = makePublic
	})

	if err := s.gateway.SetDreamVisibility(ctx, s.UserID, dreamID, makePublic); err != nil {
		s.store.Update(dreamID, func(r *feed.DreamRecord) {
			r.IsPublic = !makePublic
		})
		s.logger.ErrorContext(ctx, "visibility toggle failed",
			slog.String("dream_id", dreamID),
			slog.String("error", err.Error()),
		)
		return Failed(err.Error())
	}

	if !makePublic && onPrivatized != nil {
		time.AfterFunc(s.privatizeDelay, onPrivatized)
	}
	return Committed()
}

// ToggleFollow follows or unfollows a user, then re-fetches the
// authoritative follow status rather than trusting the optimistic flip,
// because follow state also drives follower/following counts. Returns the
// authoritative status alongside the result.
func (s *Session) ToggleFollow(ctx context.Context, followedID uint) (bool, MutationResult) {
	if followedID == s.UserID {
		return false, Failed("cannot follow yourself")
	}

	key := "follow"
	if !s.begin(key) {
		return false, Pending()
	}
	defer s.settle(key)

	following, err := s.gateway.IsFollowing(ctx, s.UserID, followedID)
	if err != nil {
		return false, Failed(err.Error())
	}

	if following {
		err = s.gateway.Unfollow(ctx, s.UserID, followedID)
	} else {
		err = s.gateway.Follow(ctx, s.UserID, followedID)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "follow toggle failed",
			slog.Uint64("followed_id", uint64(followedID)),
			slog.String("error", err.Error()),
		)
		return following, Failed(err.Error())
	}

	confirmed, err := s.gateway.IsFollowing(ctx, s.UserID, followedID)
	if err != nil {
		// The write landed; report committed with the expected state.
		return !following, Committed()
	}
	return confirmed, Committed()
}

// Block severs the relationship with another user: follows in both
// directions are removed and the block relation inserted. The in-memory
// block set is updated first so subsequent renders filter the blocked
// author without waiting for a refetch.
func (s *Session) Block(ctx context.Context, blockedID uint) MutationResult {
	if blockedID == s.UserID {
		return Failed("cannot block yourself")
	}

	s.blocks.Add(blockedID)

	if err := s.gateway.Block(ctx, s.UserID, blockedID); err != nil {
		s.blocks.Remove(blockedID)
		s.logger.ErrorContext(ctx, "block failed",
			slog.Uint64("blocked_id", uint64(blockedID)),
			slog.String("error", err.Error()),
		)
		return Failed(err.Error())
	}
	return Committed()
}

// Unblock removes the block relation and drops the user from the
// in-memory set on confirmation.
func (s *Session) Unblock(ctx context.Context, blockedID uint) MutationResult {
	if err := s.gateway.Unblock(ctx, s.UserID, blockedID); err != nil {
		return Failed(err.Error())
	}
	s.blocks.Remove(blockedID)
	return Committed()
}
