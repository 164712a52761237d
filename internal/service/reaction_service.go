package service

import (
	"context"
	"errors"

	"hushwall/internal/authz"
	"hushwall/internal/cache"
	"hushwall/internal/identity"
	"hushwall/internal/models"
	"hushwall/internal/policy"
	"hushwall/internal/repository"
	"hushwall/internal/validation"

	"gorm.io/gorm"
)

type ReactionService struct {
	reactions   repository.ReactionRepository
	confessions repository.ConfessionRepository
	comments    repository.CommentRepository
	guard       *authz.Engine
	limiter     *policy.RateLimiter
}

func NewReactionService(
	reactions repository.ReactionRepository,
	confessions repository.ConfessionRepository,
	comments repository.CommentRepository,
	guard *authz.Engine,
	limiter *policy.RateLimiter,
) *ReactionService {
	return &ReactionService{
		reactions:   reactions,
		confessions: confessions,
		comments:    comments,
		guard:       guard,
		limiter:     limiter,
	}
}

// CreateReactionInput targets exactly one of confession or comment.
type CreateReactionInput struct {
	ConfessionID *uint  `json:"confession"`
	CommentID    *uint  `json:"comment"`
	Emoji        string `json:"emoji"`
}

// HistogramInput selects the target whose tally is wanted.
type HistogramInput struct {
	ConfessionID *uint
	CommentID    *uint
}

func (s *ReactionService) checkTarget(ctx context.Context, confessionID, commentID *uint) error {
	if (confessionID == nil) == (commentID == nil) {
		return models.NewValidationError("Exactly one of confession or comment must be set")
	}
	if confessionID != nil {
		if _, err := s.confessions.GetByID(ctx, *confessionID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Confession", *confessionID)
			}
			return err
		}
		return nil
	}
	if _, err := s.comments.GetByID(ctx, *commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment", *commentID)
		}
		return err
	}
	return nil
}

// Create records an emoji reaction for the caller's session. Repeating the
// same emoji on the same target is rejected; sessions are limited to three
// reactions per trailing hour.
func (s *ReactionService) Create(ctx context.Context, id identity.Identity, in CreateReactionInput) (*models.Reaction, error) {
	if err := s.guard.Authorize(ctx, id, authz.ResourceReaction, authz.ActionCreate, authz.Object{}); err != nil {
		return nil, err
	}

	fields := validation.Errors{}
	fields.CheckEmoji("emoji", in.Emoji)
	if !fields.Empty() {
		return nil, models.NewFieldValidationError(fields)
	}

	if err := s.checkTarget(ctx, in.ConfessionID, in.CommentID); err != nil {
		return nil, err
	}

	exists, err := s.reactions.Exists(ctx, id.SessionID(), in.ConfessionID, in.CommentID, in.Emoji)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewValidationError("You already reacted with this emoji")
	}

	if err := s.limiter.CheckReaction(ctx, id.SessionID()); err != nil {
		return nil, err
	}

	reaction := &models.Reaction{
		SessionID:    ptr(id.SessionID()),
		ConfessionID: in.ConfessionID,
		CommentID:    in.CommentID,
		Emoji:        in.Emoji,
	}
	if err := s.reactions.Create(ctx, reaction); err != nil {
		return nil, err
	}

	cache.InvalidateReactions(ctx, in.ConfessionID, in.CommentID)
	return reaction, nil
}

// ListOwn returns the caller's own reactions.
func (s *ReactionService) ListOwn(ctx context.Context, id identity.Identity, limit, offset int) ([]*models.Reaction, error) {
	return s.reactions.ListBySession(ctx, id.SessionID(), limit, offset)
}

// Histogram aggregates a target's reactions into per-emoji buckets. The
// shared tally is served through the cache; the caller's own-reaction flag is
// re-applied afterwards so cached entries stay viewer-neutral. Only
// authenticated callers get their contributions flagged; anonymous viewers
// always read false.
func (s *ReactionService) Histogram(ctx context.Context, id identity.Identity, in HistogramInput) ([]models.EmojiBucket, error) {
	if err := s.checkTarget(ctx, in.ConfessionID, in.CommentID); err != nil {
		return nil, err
	}

	var key string
	if in.ConfessionID != nil {
		key = cache.ConfessionReactionsKey(*in.ConfessionID)
	} else {
		key = cache.CommentReactionsKey(*in.CommentID)
	}

	var buckets []models.EmojiBucket
	err := cache.Aside(ctx, key, &buckets, cache.ReactionsTTL, func() error {
		var fetchErr error
		buckets, fetchErr = s.reactions.Histogram(ctx, in.ConfessionID, in.CommentID)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	mine := map[string]bool{}
	if id.Authenticated() {
		own, err := s.reactions.EmojisBySession(ctx, id.SessionID(), in.ConfessionID, in.CommentID)
		if err != nil {
			return nil, err
		}
		for _, e := range own {
			mine[e] = true
		}
	}
	for i := range buckets {
		isAuthor := mine[buckets[i].Emoji]
		buckets[i].IsAuthor = &isAuthor
	}
	return buckets, nil
}

// Delete removes a reaction: the owning session or an admin.
func (s *ReactionService) Delete(ctx context.Context, id identity.Identity, reactionID uint) error {
	reaction, err := s.reactions.GetByID(ctx, reactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Reaction", reactionID)
		}
		return err
	}

	obj := authz.Object{Owned: id.OwnsSession(reaction.SessionID)}
	if err := s.guard.Authorize(ctx, id, authz.ResourceReaction, authz.ActionDelete, obj); err != nil {
		return err
	}

	if err := s.reactions.Delete(ctx, reactionID); err != nil {
		return err
	}
	cache.InvalidateReactions(ctx, reaction.ConfessionID, reaction.CommentID)
	return nil
}

func ptr[T any](v T) *T { return &v }
