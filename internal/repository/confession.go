package repository

import (
	"context"
	"time"

	"hushwall/internal/models"

	"gorm.io/gorm"
)

// Confession sort orders accepted by the list endpoint.
const (
	SortPopularity    = "popularity"
	SortMostReactions = "most_reactions"
	SortMostComments  = "most_comments"
	SortOldest        = "oldest"
)

// ConfessionListOptions carry the policy inputs of the confession view:
// role-based visibility, the "mine only" toggle, free-text search and a named
// sort order.
type ConfessionListOptions struct {
	ViewerAccountID *uint // nil for anonymous viewers
	Staff           bool  // moderators and admins see everything
	Own             bool  // restrict to the viewer's confessions
	Search          string
	SortBy          string
	Limit           int
	Offset          int
}

// ConfessionRepository defines interface for confession operations
type ConfessionRepository interface {
	Create(ctx context.Context, confession *models.Confession) error
	GetByID(ctx context.Context, id uint) (*models.Confession, error)
	List(ctx context.Context, opts ConfessionListOptions) ([]*models.Confession, error)
	Update(ctx context.Context, confession *models.Confession) error
	ReplaceCategories(ctx context.Context, confession *models.Confession, categories []models.Category) error
	ReplaceTags(ctx context.Context, confession *models.Confession, tags []models.Tag) error
	Delete(ctx context.Context, id uint) error
	CountByAccountSince(ctx context.Context, accountID uint, since time.Time) (int64, error)
	EnsureTags(ctx context.Context, names []string) ([]models.Tag, error)
}

type confessionRepository struct {
	db *gorm.DB
}

// NewConfessionRepository creates a new ConfessionRepository
func NewConfessionRepository(db *gorm.DB) ConfessionRepository {
	return &confessionRepository{db: db}
}

// withCounts annotates each row with its comment and reaction counts.
func (r *confessionRepository) withCounts(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Confession{}).
		Select("confessions.*, " +
			"(SELECT COUNT(*) FROM comments WHERE comments.confession_id = confessions.id) AS comment_count, " +
			"(SELECT COUNT(*) FROM reactions WHERE reactions.confession_id = confessions.id) AS reaction_count")
}

func (r *confessionRepository) Create(ctx context.Context, confession *models.Confession) error {
	return r.db.WithContext(ctx).Create(confession).Error
}

func (r *confessionRepository) GetByID(ctx context.Context, id uint) (*models.Confession, error) {
	var confession models.Confession
	if err := r.withCounts(ctx).
		Preload("Categories").
		Preload("Tags").
		Where("confessions.id = ?", id).
		First(&confession).Error; err != nil {
		return nil, err
	}
	return &confession, nil
}

func (r *confessionRepository) List(ctx context.Context, opts ConfessionListOptions) ([]*models.Confession, error) {
	q := r.withCounts(ctx).Preload("Categories").Preload("Tags")

	switch {
	case opts.ViewerAccountID == nil:
		q = q.Where("is_approved = ?", true)
	case !opts.Staff:
		q = q.Where("account_id = ? OR is_approved = ?", *opts.ViewerAccountID, true)
	}
	if opts.Own && opts.ViewerAccountID != nil {
		q = q.Where("account_id = ?", *opts.ViewerAccountID)
	}

	if opts.Search != "" {
		like := "%" + opts.Search + "%"
		q = q.Where(
			"title LIKE ? OR text LIKE ?"+
				" OR confessions.id IN (?)"+
				" OR confessions.id IN (?)",
			like, like,
			r.db.Table("confession_tags").
				Select("confession_tags.confession_id").
				Joins("JOIN tags ON tags.id = confession_tags.tag_id").
				Where("tags.name LIKE ?", like),
			r.db.Table("confession_categories").
				Select("confession_categories.confession_id").
				Joins("JOIN categories ON categories.id = confession_categories.category_id").
				Where("categories.name LIKE ?", like),
		)
	}

	// The staff moderation queue fronts unapproved rows. Regular members
	// keep the requested order even though their own unapproved rows are
	// visible.
	if opts.Staff {
		q = q.Order("is_approved ASC")
	}

	switch opts.SortBy {
	case SortPopularity:
		// Reaction count with a fallback to comment count for rows nobody
		// reacted to yet.
		q = q.Order("COALESCE(NULLIF((SELECT COUNT(*) FROM reactions WHERE reactions.confession_id = confessions.id), 0), " +
			"(SELECT COUNT(*) FROM comments WHERE comments.confession_id = confessions.id)) DESC")
	case SortMostReactions:
		q = q.Order("reaction_count DESC")
	case SortMostComments:
		q = q.Order("comment_count DESC")
	case SortOldest:
		q = q.Order("confessions.created_at ASC")
	default:
		q = q.Order("confessions.id DESC")
	}

	var confessions []*models.Confession
	err := q.Limit(opts.Limit).Offset(opts.Offset).Find(&confessions).Error
	return confessions, err
}

func (r *confessionRepository) Update(ctx context.Context, confession *models.Confession) error {
	// Save would try to upsert associations; the m2m sets are replaced
	// explicitly instead.
	return r.db.WithContext(ctx).Omit("Categories", "Tags").Save(confession).Error
}

func (r *confessionRepository) ReplaceCategories(ctx context.Context, confession *models.Confession, categories []models.Category) error {
	return r.db.WithContext(ctx).Model(confession).Association("Categories").Replace(categories)
}

func (r *confessionRepository) ReplaceTags(ctx context.Context, confession *models.Confession, tags []models.Tag) error {
	return r.db.WithContext(ctx).Model(confession).Association("Tags").Replace(tags)
}

// Delete removes a confession and its dependent comments and reactions.
func (r *confessionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return CascadeDeleteConfession(tx, id)
	})
}

// CascadeDeleteConfession removes a confession and its dependent comments and
// reactions inside the caller's transaction, nulling report references so
// reports outlive their target. The explicit child deletes keep the cascade
// portable across backends that do not enforce the FK constraints (the sqlite
// test database).
func CascadeDeleteConfession(tx *gorm.DB, id uint) error {
	if err := tx.Where("confession_id = ?", id).Delete(&models.Reaction{}).Error; err != nil {
		return err
	}
	if err := tx.Where("comment_id IN (?)", tx.Model(&models.Comment{}).
		Select("id").Where("confession_id = ?", id)).
		Delete(&models.Reaction{}).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Report{}).
		Where("comment_id IN (?)", tx.Model(&models.Comment{}).
			Select("id").Where("confession_id = ?", id)).
		Update("comment_id", nil).Error; err != nil {
		return err
	}
	if err := tx.Where("confession_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Report{}).
		Where("confession_id = ?", id).
		Update("confession_id", nil).Error; err != nil {
		return err
	}
	return tx.Select("Categories", "Tags").Delete(&models.Confession{ID: id}).Error
}

func (r *confessionRepository) CountByAccountSince(ctx context.Context, accountID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Confession{}).
		Where("account_id = ? AND created_at >= ?", accountID, since).
		Count(&count).Error
	return count, err
}

// EnsureTags resolves tag names to rows, creating missing ones.
func (r *confessionRepository) EnsureTags(ctx context.Context, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		var tag models.Tag
		if err := r.db.WithContext(ctx).
			Where(models.Tag{Name: name}).
			FirstOrCreate(&tag).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
