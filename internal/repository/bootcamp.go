package repository

import (
	"context"
	"errors"

	"campdir/internal/cache"
	"campdir/internal/geo"
	"campdir/internal/models"
	"campdir/internal/observability"
	"campdir/internal/query"

	"gorm.io/gorm"
)

// BootcampRepository defines persistence operations for bootcamps.
type BootcampRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Bootcamp, error)
	GetByIDExpanded(ctx context.Context, id uint) (*models.Bootcamp, error)
	ExistsForUser(ctx context.Context, userID uint) (bool, error)
	Create(ctx context.Context, bootcamp *models.Bootcamp) error
	Update(ctx context.Context, bootcamp *models.Bootcamp) error
	// DeleteCascade removes the bootcamp together with its courses and
	// reviews in one transaction.
	DeleteCascade(ctx context.Context, id uint) error
	List(ctx context.Context, q *query.ListQuery, expand bool) ([]models.Bootcamp, int64, error)
	// ListWithinRadius returns bootcamps within radiusMiles of the point.
	ListWithinRadius(ctx context.Context, lat, lng, radiusMiles float64) ([]models.Bootcamp, error)
	UpdateAverageCost(ctx context.Context, id uint, avg *float64) error
	UpdateAverageRating(ctx context.Context, id uint, avg *float64) error
}

type bootcampRepository struct {
	db *gorm.DB
}

// NewBootcampRepository returns a new BootcampRepository implementation.
func NewBootcampRepository(db *gorm.DB) BootcampRepository {
	return &bootcampRepository{db: db}
}

func (r *bootcampRepository) GetByID(ctx context.Context, id uint) (*models.Bootcamp, error) {
	var bootcamp models.Bootcamp
	key := cache.BootcampKey(id)

	err := cache.Aside(ctx, key, &bootcamp, cache.BootcampTTL, func() error {
		if err := r.db.WithContext(ctx).First(&bootcamp, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Bootcamp", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &bootcamp, nil
}

func (r *bootcampRepository) GetByIDExpanded(ctx context.Context, id uint) (*models.Bootcamp, error) {
	var bootcamp models.Bootcamp
	if err := r.db.WithContext(ctx).
		Preload("Courses").
		Preload("Reviews").
		First(&bootcamp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Bootcamp", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &bootcamp, nil
}

func (r *bootcampRepository) ExistsForUser(ctx context.Context, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Bootcamp{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *bootcampRepository) Create(ctx context.Context, bootcamp *models.Bootcamp) error {
	defer observability.TrackQuery("create", "bootcamps")()
	if err := r.db.WithContext(ctx).Create(bootcamp).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Duplicate field value entered for 'name'")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *bootcampRepository) Update(ctx context.Context, bootcamp *models.Bootcamp) error {
	defer observability.TrackQuery("update", "bootcamps")()
	if err := r.db.WithContext(ctx).Save(bootcamp).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Duplicate field value entered for 'name'")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateBootcamp(ctx, bootcamp.ID)
	return nil
}

func (r *bootcampRepository) DeleteCascade(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete_cascade", "bootcamps")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bootcamp_id = ?", id).Delete(&models.Course{}).Error; err != nil {
			return err
		}
		if err := tx.Where("bootcamp_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Bootcamp{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBootcamp(ctx, id)
	return nil
}

// BootcampQueryFields maps exposed query fields to bootcamp columns for the
// query processor. Careers is a JSON array column with no portable SQL
// translation and is intentionally absent.
var BootcampQueryFields = map[string]string{
	"name":           "name",
	"slug":           "slug",
	"description":    "description",
	"city":           "location_city",
	"state":          "location_state",
	"zipcode":        "location_zipcode",
	"average_cost":   "average_cost",
	"average_rating": "average_rating",
	"housing":        "housing",
	"job_assistance": "job_assistance",
	"job_guarantee":  "job_guarantee",
	"accept_gi":      "accept_gi",
	"user_id":        "user_id",
	"created_at":     "created_at",
}

func (r *bootcampRepository) List(ctx context.Context, q *query.ListQuery, expand bool) ([]models.Bootcamp, int64, error) {
	defer observability.TrackQuery("list", "bootcamps")()

	base := func() *gorm.DB {
		return q.Filtered(r.db.WithContext(ctx).Model(&models.Bootcamp{}))
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	tx := q.Windowed(base())
	// A projected select cannot guarantee the columns preloads hang off, so
	// expansion only applies to full-row reads.
	if expand && len(q.Select) == 0 {
		tx = tx.Preload("Courses").Preload("Reviews")
	}

	var bootcamps []models.Bootcamp
	if err := tx.Find(&bootcamps).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return bootcamps, total, nil
}

func (r *bootcampRepository) ListWithinRadius(ctx context.Context, lat, lng, radiusMiles float64) ([]models.Bootcamp, error) {
	defer observability.TrackQuery("list_radius", "bootcamps")()

	minLat, maxLat, minLng, maxLng := geo.BoundingBox(lat, lng, radiusMiles)

	var candidates []models.Bootcamp
	if err := r.db.WithContext(ctx).
		Where("location_lat BETWEEN ? AND ?", minLat, maxLat).
		Where("location_lng BETWEEN ? AND ?", minLng, maxLng).
		Find(&candidates).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	// Exact great-circle check on the bounding-box candidates.
	bootcamps := make([]models.Bootcamp, 0, len(candidates))
	for _, b := range candidates {
		if geo.Haversine(lat, lng, b.Location.Lat, b.Location.Lng) <= radiusMiles {
			bootcamps = append(bootcamps, b)
		}
	}
	return bootcamps, nil
}

func (r *bootcampRepository) UpdateAverageCost(ctx context.Context, id uint, avg *float64) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Bootcamp{}).
		Where("id = ?", id).
		Update("average_cost", avg).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBootcamp(ctx, id)
	return nil
}

func (r *bootcampRepository) UpdateAverageRating(ctx context.Context, id uint, avg *float64) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Bootcamp{}).
		Where("id = ?", id).
		Update("average_rating", avg).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateBootcamp(ctx, id)
	return nil
}
