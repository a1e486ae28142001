package repository

import (
	"context"
	"errors"

	"campdir/internal/models"
	"campdir/internal/observability"
	"campdir/internal/query"

	"gorm.io/gorm"
)

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Review, error)
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, q *query.ListQuery, bootcampID uint) ([]models.Review, int64, error)
	// AverageRating returns the mean rating across a bootcamp's reviews, or
	// nil when it has none.
	AverageRating(ctx context.Context, bootcampID uint) (*float64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository returns a new ReviewRepository implementation.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) GetByID(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).
		Preload("Bootcamp", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "description")
		}).
		First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Review", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &review, nil
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	defer observability.TrackQuery("create", "reviews")()
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Review already submitted for this bootcamp")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	defer observability.TrackQuery("update", "reviews")()
	if err := r.db.WithContext(ctx).Save(review).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "reviews")()
	if err := r.db.WithContext(ctx).Delete(&models.Review{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ReviewQueryFields maps exposed query fields to review columns for the query processor.
var ReviewQueryFields = map[string]string{
	"title":       "title",
	"rating":      "rating",
	"bootcamp_id": "bootcamp_id",
	"user_id":     "user_id",
	"created_at":  "created_at",
}

func (r *reviewRepository) List(ctx context.Context, q *query.ListQuery, bootcampID uint) ([]models.Review, int64, error) {
	defer observability.TrackQuery("list", "reviews")()

	base := func() *gorm.DB {
		tx := q.Filtered(r.db.WithContext(ctx).Model(&models.Review{}))
		if bootcampID != 0 {
			tx = tx.Where("bootcamp_id = ?", bootcampID)
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	tx := q.Windowed(base())
	// Parent-scoped requests already imply the bootcamp; do not re-expand.
	if bootcampID == 0 && len(q.Select) == 0 {
		tx = tx.Preload("Bootcamp", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "description")
		})
	}

	var reviews []models.Review
	if err := tx.Find(&reviews).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return reviews, total, nil
}

func (r *reviewRepository) AverageRating(ctx context.Context, bootcampID uint) (*float64, error) {
	var row struct {
		Avg   float64
		Count int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("bootcamp_id = ?", bootcampID).
		Scan(&row).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if row.Count == 0 {
		return nil, nil
	}
	return &row.Avg, nil
}
