package service

import (
	"context"
	"errors"

	"hushwall/internal/authz"
	"hushwall/internal/identity"
	"hushwall/internal/models"
	"hushwall/internal/observability"
	"hushwall/internal/repository"
	"hushwall/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type ReportService struct {
	reports     repository.ReportRepository
	confessions repository.ConfessionRepository
	comments    repository.CommentRepository
	guard       *authz.Engine
}

func NewReportService(
	reports repository.ReportRepository,
	confessions repository.ConfessionRepository,
	comments repository.CommentRepository,
	guard *authz.Engine,
) *ReportService {
	return &ReportService{reports: reports, confessions: confessions, comments: comments, guard: guard}
}

// CreateReportInput targets exactly one of confession or comment.
type CreateReportInput struct {
	ConfessionID *uint  `json:"confession"`
	CommentID    *uint  `json:"comment"`
	Reason       string `json:"reason"`
}

type ListReportsInput struct {
	ConfessionID *uint
	CommentID    *uint
	SortBy       string
	Limit        int
	Offset       int
}

func (s *ReportService) checkTarget(ctx context.Context, confessionID, commentID *uint) error {
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

// Create files a report against a confession or a comment. One report per
// session per target.
func (s *ReportService) Create(ctx context.Context, id identity.Identity, in CreateReportInput) (*models.Report, error) {
	if err := s.guard.Authorize(ctx, id, authz.ResourceReport, authz.ActionCreate, authz.Object{}); err != nil {
		return nil, err
	}

	fields := validation.Errors{}
	fields.CheckLength("reason", in.Reason, validation.ReasonMinLen, validation.ReasonMaxLen)
	if !fields.Empty() {
		return nil, models.NewFieldValidationError(fields)
	}

	if err := s.checkTarget(ctx, in.ConfessionID, in.CommentID); err != nil {
		return nil, err
	}

	exists, err := s.reports.ExistsForTarget(ctx, id.SessionID(), in.ConfessionID, in.CommentID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewValidationError("You already reported this")
	}

	report := &models.Report{
		SessionID:    ptr(id.SessionID()),
		ConfessionID: in.ConfessionID,
		CommentID:    in.CommentID,
		Reason:       in.Reason,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// List returns reports for the moderation queue. Staff only.
func (s *ReportService) List(ctx context.Context, id identity.Identity, in ListReportsInput) ([]*models.Report, error) {
	if err := s.guard.Authorize(ctx, id, authz.ResourceReport, authz.ActionRead, authz.Object{}); err != nil {
		return nil, err
	}
	return s.reports.List(ctx, repository.ReportListOptions{
		ConfessionID: in.ConfessionID,
		CommentID:    in.CommentID,
		SortBy:       in.SortBy,
		Limit:        in.Limit,
		Offset:       in.Offset,
	})
}

func (s *ReportService) Get(ctx context.Context, id identity.Identity, reportID uint) (*models.Report, error) {
	if err := s.guard.Authorize(ctx, id, authz.ResourceReport, authz.ActionRead, authz.Object{}); err != nil {
		return nil, err
	}
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Report", reportID)
		}
		return nil, err
	}
	return report, nil
}

// Vote records the caller's removal vote on a report. A second vote from the
// same account is rejected. The whole step runs inside one locked transaction
// so a concurrent final vote cannot remove the target twice; when the vote
// count reaches the threshold the reported confession or comment is deleted
// and the report survives with its target reference nulled.
func (s *ReportService) Vote(ctx context.Context, id identity.Identity, reportID uint) (*models.Report, error) {
	if err := s.guard.Authorize(ctx, id, authz.ResourceReport, authz.ActionUpdate, authz.Object{}); err != nil {
		return nil, err
	}

	span, ctx := observability.NewSpan(ctx, "report.vote")
	defer span.End()
	span.AddAttributes(attribute.Int("report.id", int(reportID)))

	voterID := *id.AccountID()
	var removed string
	err := s.reports.Vote(ctx, reportID, func(tx *gorm.DB, report *models.Report) error {
		var dup int64
		if err := tx.Table("report_voters").
			Where("report_id = ? AND account_id = ?", report.ID, voterID).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return models.NewValidationError("You already voted on this report")
		}

		if err := tx.Exec("INSERT INTO report_voters (report_id, account_id) VALUES (?, ?)",
			report.ID, voterID).Error; err != nil {
			return err
		}

		var votes int64
		if err := tx.Table("report_voters").
			Where("report_id = ?", report.ID).
			Count(&votes).Error; err != nil {
			return err
		}
		if votes < models.VoteThreshold {
			return nil
		}

		// Threshold reached: remove the target. The report itself stays, its
		// reference nulled by the cascade. A report whose target is already
		// gone is a no-op here.
		switch {
		case report.ConfessionID != nil:
			removed = "confession"
			return repository.CascadeDeleteConfession(tx, *report.ConfessionID)
		case report.CommentID != nil:
			removed = "comment"
			return repository.CascadeDeleteComment(tx, *report.CommentID)
		}
		return nil
	})
	if err != nil {
		span.SetError(err)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Report", reportID)
		}
		return nil, err
	}

	observability.ModerationVotes.Inc()
	if removed != "" {
		span.AddAttributes(attribute.String("report.removed_target", removed))
		observability.ModerationRemovals.WithLabelValues(removed).Inc()
	}

	return s.reports.GetByID(ctx, reportID)
}

// Delete removes a report from the queue. Staff only.
func (s *ReportService) Delete(ctx context.Context, id identity.Identity, reportID uint) error {
	if err := s.guard.Authorize(ctx, id, authz.ResourceReport, authz.ActionDelete, authz.Object{}); err != nil {
		return err
	}
	if _, err := s.reports.GetByID(ctx, reportID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Report", reportID)
		}
		return err
	}
	return s.reports.Delete(ctx, reportID)
}
