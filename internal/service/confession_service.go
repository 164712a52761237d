// Package service implements the business rules on top of the repositories:
// permission and blocklist gating, creation throttles, field shaping inputs
// and the moderation vote engine.
package service

import (
	"context"
	"errors"

	"hushwall/internal/authz"
	"hushwall/internal/identity"
	"hushwall/internal/models"
	"hushwall/internal/policy"
	"hushwall/internal/repository"
	"hushwall/internal/shape"
	"hushwall/internal/validation"

	"gorm.io/gorm"
)

// ProvisionedAccount carries the credentials of an implicitly created
// account back to a first-time anonymous poster.
type ProvisionedAccount struct {
	Account  *models.Account
	Password string // plaintext, shown exactly once
}

// AccountProvisioner creates an account with generated credentials and binds
// it to the caller's session (implicit login).
type AccountProvisioner interface {
	ProvisionAnonymous(ctx context.Context, sessionID uint) (*ProvisionedAccount, error)
}

type ConfessionService struct {
	confessions repository.ConfessionRepository
	categories  repository.CategoryRepository
	guard       *authz.Engine
	limiter     *policy.RateLimiter
	provisioner AccountProvisioner
}

func NewConfessionService(
	confessions repository.ConfessionRepository,
	categories repository.CategoryRepository,
	guard *authz.Engine,
	limiter *policy.RateLimiter,
	provisioner AccountProvisioner,
) *ConfessionService {
	return &ConfessionService{
		confessions: confessions,
		categories:  categories,
		guard:       guard,
		limiter:     limiter,
		provisioner: provisioner,
	}
}

// CreateConfessionInput is the client-writable surface of a new confession.
// The author is never part of it; the server owns that field.
type CreateConfessionInput struct {
	Title      string   `json:"title"`
	Text       string   `json:"text"`
	Categories []uint   `json:"categories"`
	Tags       []string `json:"tags"`
}

// ListConfessionsInput mirrors the list query parameters.
type ListConfessionsInput struct {
	Own    bool
	Search string
	SortBy string
	Limit  int
	Offset int
}

func (s *ConfessionService) validate(in CreateConfessionInput) error {
	fields := validation.Errors{}
	fields.CheckLength("title", in.Title, validation.TitleMinLen, validation.TitleMaxLen)
	fields.CheckLength("text", in.Text, validation.BodyMinLen, validation.BodyMaxLen)
	if !fields.Empty() {
		return models.NewFieldValidationError(fields)
	}
	return nil
}

// Create persists a new confession for the acting identity. Anonymous
// callers get an account provisioned and bound to their session first; the
// returned ProvisionedAccount is non-nil in that case so the handler can hand
// the generated credentials back. Authenticated authors are throttled to one
// confession per trailing day.
func (s *ConfessionService) Create(ctx context.Context, id identity.Identity, in CreateConfessionInput) (*models.Confession, *ProvisionedAccount, error) {
	if err := s.guard.Authorize(ctx, id, authz.ResourceConfession, authz.ActionCreate, authz.Object{}); err != nil {
		return nil, nil, err
	}
	if err := s.validate(in); err != nil {
		return nil, nil, err
	}

	var provisioned *ProvisionedAccount
	if !id.Authenticated() {
		p, err := s.provisioner.ProvisionAnonymous(ctx, id.SessionID())
		if err != nil {
			return nil, nil, err
		}
		provisioned = p
		id.Account = p.Account
	} else if err := s.limiter.CheckConfession(ctx, id.Account.ID); err != nil {
		return nil, nil, err
	}

	categories, err := s.categories.GetByIDs(ctx, in.Categories)
	if err != nil {
		return nil, nil, err
	}
	tags, err := s.confessions.EnsureTags(ctx, normalizeTags(in.Tags))
	if err != nil {
		return nil, nil, err
	}

	confession := &models.Confession{
		Title:      in.Title,
		Text:       in.Text,
		AccountID:  id.AccountID(),
		Categories: categories,
		Tags:       tags,
	}
	if err := s.confessions.Create(ctx, confession); err != nil {
		return nil, nil, err
	}

	created, err := s.confessions.GetByID(ctx, confession.ID)
	if err != nil {
		return nil, nil, err
	}
	return created, provisioned, nil
}

// List builds the visibility-filtered confession view for the caller.
func (s *ConfessionService) List(ctx context.Context, id identity.Identity, in ListConfessionsInput) ([]*models.Confession, error) {
	opts := repository.ConfessionListOptions{
		ViewerAccountID: id.AccountID(),
		Staff:           id.Role() == identity.RoleAdmin || id.Role() == identity.RoleModerator,
		Own:             in.Own && id.Authenticated(),
		Search:          in.Search,
		SortBy:          in.SortBy,
		Limit:           in.Limit,
		Offset:          in.Offset,
	}
	return s.confessions.List(ctx, opts)
}

// Get retrieves one confession, applying the same visibility rule as List.
func (s *ConfessionService) Get(ctx context.Context, id identity.Identity, confessionID uint) (*models.Confession, error) {
	confession, err := s.confessions.GetByID(ctx, confessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Confession", confessionID)
		}
		return nil, err
	}

	visible := confession.IsApproved ||
		id.OwnsAccount(confession.AccountID) ||
		id.Role() == identity.RoleAdmin || id.Role() == identity.RoleModerator
	if !visible {
		return nil, models.NewNotFoundError("Confession", confessionID)
	}
	return confession, nil
}

// Update applies a shaped patch: fields the caller may not write were
// already dropped, the remainder still applies.
func (s *ConfessionService) Update(ctx context.Context, id identity.Identity, confessionID uint, patch shape.ConfessionPatch) (*models.Confession, error) {
	confession, err := s.confessions.GetByID(ctx, confessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Confession", confessionID)
		}
		return nil, err
	}

	isAuthor := id.OwnsAccount(confession.AccountID)
	obj := authz.Object{Owned: isAuthor, Approved: confession.IsApproved}
	if err := s.guard.Authorize(ctx, id, authz.ResourceConfession, authz.ActionUpdate, obj); err != nil {
		return nil, err
	}

	shape.ShapeConfessionPatch(&patch, id.Role(), isAuthor)

	fields := validation.Errors{}
	if patch.Title != nil {
		fields.CheckLength("title", *patch.Title, validation.TitleMinLen, validation.TitleMaxLen)
	}
	if patch.Text != nil {
		fields.CheckLength("text", *patch.Text, validation.BodyMinLen, validation.BodyMaxLen)
	}
	if !fields.Empty() {
		return nil, models.NewFieldValidationError(fields)
	}

	if patch.Title != nil {
		confession.Title = *patch.Title
	}
	if patch.Text != nil {
		confession.Text = *patch.Text
	}
	if patch.IsApproved != nil {
		confession.IsApproved = *patch.IsApproved
	}
	if err := s.confessions.Update(ctx, confession); err != nil {
		return nil, err
	}

	if patch.Categories != nil {
		categories, err := s.categories.GetByIDs(ctx, patch.Categories)
		if err != nil {
			return nil, err
		}
		if err := s.confessions.ReplaceCategories(ctx, confession, categories); err != nil {
			return nil, err
		}
	}
	if patch.Tags != nil {
		tags, err := s.confessions.EnsureTags(ctx, normalizeTags(patch.Tags))
		if err != nil {
			return nil, err
		}
		if err := s.confessions.ReplaceTags(ctx, confession, tags); err != nil {
			return nil, err
		}
	}

	return s.confessions.GetByID(ctx, confession.ID)
}

// Delete removes a confession and everything hanging off it.
func (s *ConfessionService) Delete(ctx context.Context, id identity.Identity, confessionID uint) error {
	confession, err := s.confessions.GetByID(ctx, confessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Confession", confessionID)
		}
		return err
	}

	obj := authz.Object{Owned: id.OwnsAccount(confession.AccountID), Approved: confession.IsApproved}
	if err := s.guard.Authorize(ctx, id, authz.ResourceConfession, authz.ActionDelete, obj); err != nil {
		return err
	}
	return s.confessions.Delete(ctx, confessionID)
}

func normalizeTags(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
