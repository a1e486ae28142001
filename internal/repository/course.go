package repository

import (
	"context"
	"errors"

	"campdir/internal/models"
	"campdir/internal/observability"
	"campdir/internal/query"

	"gorm.io/gorm"
)

// CourseRepository defines persistence operations for courses.
type CourseRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id uint) error
	// List returns courses, scoped to a bootcamp when bootcampID is non-zero.
	// The bootcamp relation is expanded only on unscoped reads.
	List(ctx context.Context, q *query.ListQuery, bootcampID uint) ([]models.Course, int64, error)
	// AverageTuition returns the mean tuition across a bootcamp's courses,
	// or nil when it has none.
	AverageTuition(ctx context.Context, bootcampID uint) (*float64, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository returns a new CourseRepository implementation.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).
		Preload("Bootcamp", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "description")
		}).
		First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Course", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &course, nil
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	defer observability.TrackQuery("create", "courses")()
	if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	defer observability.TrackQuery("update", "courses")()
	if err := r.db.WithContext(ctx).Save(course).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *courseRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "courses")()
	if err := r.db.WithContext(ctx).Delete(&models.Course{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// CourseQueryFields maps exposed query fields to course columns for the query processor.
var CourseQueryFields = map[string]string{
	"title":                  "title",
	"weeks":                  "weeks",
	"tuition":                "tuition",
	"minimum_skill":          "minimum_skill",
	"scholarships_available": "scholarships_available",
	"bootcamp_id":            "bootcamp_id",
	"user_id":                "user_id",
	"created_at":             "created_at",
}

func (r *courseRepository) List(ctx context.Context, q *query.ListQuery, bootcampID uint) ([]models.Course, int64, error) {
	defer observability.TrackQuery("list", "courses")()

	base := func() *gorm.DB {
		tx := q.Filtered(r.db.WithContext(ctx).Model(&models.Course{}))
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

	var courses []models.Course
	if err := tx.Find(&courses).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return courses, total, nil
}

func (r *courseRepository) AverageTuition(ctx context.Context, bootcampID uint) (*float64, error) {
	var row struct {
		Avg   float64
		Count int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Course{}).
		Select("COALESCE(AVG(tuition), 0) AS avg, COUNT(*) AS count").
		Where("bootcamp_id = ?", bootcampID).
		Scan(&row).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if row.Count == 0 {
		return nil, nil
	}
	return &row.Avg, nil
}
