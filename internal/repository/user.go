package repository

import (
	"context"
	"errors"
	"time"

	"campdir/internal/cache"
	"campdir/internal/models"
	"campdir/internal/observability"
	"campdir/internal/query"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByResetTokenHash(ctx context.Context, hash string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, q *query.ListQuery) ([]models.User, int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// cachedUser is the cache serialization of a User. The API model hides the
// password hash and reset token behind json:"-", so marshaling it directly
// would strip them from every cache hit and hand callers a principal with an
// empty credential set.
type cachedUser struct {
	ID                  uint        `json:"id"`
	Name                string      `json:"name"`
	Email               string      `json:"email"`
	Password            string      `json:"password"`
	Role                models.Role `json:"role"`
	ResetPasswordToken  string      `json:"reset_password_token"`
	ResetPasswordExpire *time.Time  `json:"reset_password_expire"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

func newCachedUser(u *models.User) cachedUser {
	return cachedUser{
		ID:                  u.ID,
		Name:                u.Name,
		Email:               u.Email,
		Password:            u.Password,
		Role:                u.Role,
		ResetPasswordToken:  u.ResetPasswordToken,
		ResetPasswordExpire: u.ResetPasswordExpire,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

func (c *cachedUser) toModel() *models.User {
	return &models.User{
		ID:                  c.ID,
		Name:                c.Name,
		Email:               c.Email,
		Password:            c.Password,
		Role:                c.Role,
		ResetPasswordToken:  c.ResetPasswordToken,
		ResetPasswordExpire: c.ResetPasswordExpire,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var cached cachedUser

	err := cache.Aside(ctx, cache.UserKey(id), &cached, cache.UserTTL, func() error {
		var user models.User
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		cached = newCachedUser(&user)
		return nil
	})

	if err != nil {
		return nil, err
	}
	return cached.toModel(), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByResetTokenHash(ctx context.Context, hash string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("reset_password_token = ?", hash).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("create", "users")()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Duplicate field value entered for 'email'")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("update", "users")()
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Duplicate field value entered for 'email'")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "users")()
	if err := r.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

// UserQueryFields maps exposed query fields to user columns for the query processor.
var UserQueryFields = map[string]string{
	"name":       "name",
	"email":      "email",
	"role":       "role",
	"created_at": "created_at",
}

func (r *userRepository) List(ctx context.Context, q *query.ListQuery) ([]models.User, int64, error) {
	defer observability.TrackQuery("list", "users")()

	// Fresh chain per statement; GORM sessions are not safely reusable
	// across Count and Find.
	base := func() *gorm.DB {
		return q.Filtered(r.db.WithContext(ctx).Model(&models.User{}))
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var users []models.User
	if err := q.Windowed(base()).Find(&users).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return users, total, nil
}
