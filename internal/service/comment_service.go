package service

import (
	"context"
	"errors"

	"hushwall/internal/authz"
	"hushwall/internal/identity"
	"hushwall/internal/models"
	"hushwall/internal/policy"
	"hushwall/internal/repository"
	"hushwall/internal/validation"

	"gorm.io/gorm"
)

type CommentService struct {
	comments    repository.CommentRepository
	confessions repository.ConfessionRepository
	guard       *authz.Engine
	limiter     *policy.RateLimiter
}

func NewCommentService(
	comments repository.CommentRepository,
	confessions repository.ConfessionRepository,
	guard *authz.Engine,
	limiter *policy.RateLimiter,
) *CommentService {
	return &CommentService{comments: comments, confessions: confessions, guard: guard, limiter: limiter}
}

type CreateCommentInput struct {
	ConfessionID uint   `json:"confession"`
	Text         string `json:"text"`
}

type ListCommentsInput struct {
	ConfessionID *uint
	Own          bool
	Limit        int
	Offset       int
}

// Create attaches a comment to a confession for the caller's session. At
// most three comments per session per trailing hour.
func (s *CommentService) Create(ctx context.Context, id identity.Identity, in CreateCommentInput) (*models.Comment, error) {
	if err := s.guard.Authorize(ctx, id, authz.ResourceComment, authz.ActionCreate, authz.Object{}); err != nil {
		return nil, err
	}

	fields := validation.Errors{}
	fields.CheckLength("text", in.Text, validation.CommentMinLen, validation.CommentMaxLen)
	if !fields.Empty() {
		return nil, models.NewFieldValidationError(fields)
	}

	if _, err := s.confessions.GetByID(ctx, in.ConfessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Confession", in.ConfessionID)
		}
		return nil, err
	}

	if err := s.limiter.CheckComment(ctx, id.SessionID()); err != nil {
		return nil, err
	}

	sessionID := id.SessionID()
	comment := &models.Comment{
		SessionID:    &sessionID,
		ConfessionID: in.ConfessionID,
		Text:         in.Text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) List(ctx context.Context, id identity.Identity, in ListCommentsInput) ([]*models.Comment, error) {
	opts := repository.CommentListOptions{
		ConfessionID: in.ConfessionID,
		Limit:        in.Limit,
		Offset:       in.Offset,
	}
	if in.Own {
		sessionID := id.SessionID()
		opts.SessionID = &sessionID
	}
	return s.comments.List(ctx, opts)
}

func (s *CommentService) Get(ctx context.Context, commentID uint) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", commentID)
		}
		return nil, err
	}
	return comment, nil
}

// Delete removes a comment. Only the owning session may delete its own
// comments; admins may delete any.
func (s *CommentService) Delete(ctx context.Context, id identity.Identity, commentID uint) error {
	comment, err := s.Get(ctx, commentID)
	if err != nil {
		return err
	}

	obj := authz.Object{Owned: id.OwnsSession(comment.SessionID)}
	if err := s.guard.Authorize(ctx, id, authz.ResourceComment, authz.ActionDelete, obj); err != nil {
		return err
	}
	return s.comments.Delete(ctx, commentID)
}
