package repository

import (
	"context"

	"hushwall/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Report sort orders.
const (
	SortVoteCount = "vote_count"
	SortNewest    = "newest"
)

// ReportListOptions narrow and order the report listing.
type ReportListOptions struct {
	ConfessionID *uint
	CommentID    *uint
	SortBy       string
	Limit        int
	Offset       int
}

// ReportRepository defines interface for report operations, including the
// vote bookkeeping used by the moderation vote engine.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	List(ctx context.Context, opts ReportListOptions) ([]*models.Report, error)
	Delete(ctx context.Context, id uint) error
	ExistsForTarget(ctx context.Context, sessionID uint, confessionID, commentID *uint) (bool, error)

	// Vote runs fn inside one transaction with the report row locked, so a
	// concurrent final vote cannot double-trigger the cascade.
	Vote(ctx context.Context, reportID uint, fn func(tx *gorm.DB, report *models.Report) error) error
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).Preload("Voters").First(&report, id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, opts ReportListOptions) ([]*models.Report, error) {
	q := r.db.WithContext(ctx).Model(&models.Report{}).Preload("Voters")

	if opts.ConfessionID != nil {
		q = q.Where("confession_id = ?", *opts.ConfessionID)
	}
	if opts.CommentID != nil {
		q = q.Where("comment_id = ?", *opts.CommentID)
	}

	switch opts.SortBy {
	case SortVoteCount:
		q = q.Order("(SELECT COUNT(*) FROM report_voters WHERE report_voters.report_id = reports.id) DESC")
	case SortNewest:
		q = q.Order("id DESC")
	default:
		q = q.Order("id ASC")
	}

	var reports []*models.Report
	err := q.Limit(opts.Limit).Offset(opts.Offset).Find(&reports).Error
	return reports, err
}

func (r *reportRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Report{ID: id}).Association("Voters").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.Report{}, id).Error
	})
}

// ExistsForTarget reports whether the session already reported the target.
func (r *reportRepository) ExistsForTarget(ctx context.Context, sessionID uint, confessionID, commentID *uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("session_id = ?", sessionID)
	q = targetScope(q, confessionID, commentID)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *reportRepository) Vote(ctx context.Context, reportID uint, fn func(tx *gorm.DB, report *models.Report) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		// sqlite (tests) has no SELECT ... FOR UPDATE; its transactions
		// serialize writes anyway.
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var report models.Report
		if err := q.First(&report, reportID).Error; err != nil {
			return err
		}
		return fn(tx, &report)
	})
}
