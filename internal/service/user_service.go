package service

import (
	"context"

	"campdir/internal/models"
	"campdir/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// UserService implements admin-facing user management.
type UserService struct {
	users repository.UserRepository
}

// NewUserService returns a new UserService.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// CreateUserInput is the admin payload for creating a user with any role.
type CreateUserInput struct {
	Name     string      `json:"name" validate:"required,max=50"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     models.Role `json:"role"`
}

// UpdateUserInput is the admin payload for a partial user update.
type UpdateUserInput struct {
	Name     *string      `json:"name" validate:"omitempty,max=50"`
	Email    *string      `json:"email" validate:"omitempty,email"`
	Password *string      `json:"password" validate:"omitempty,min=6"`
	Role     *models.Role `json:"role"`
}

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hash), nil
}

// Create makes a new user with any valid role, defaulting to "user".
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, models.NewValidationError("Role must be one of: user, publisher, admin")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Role:     role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update applies a partial update to a user.
func (s *UserService) Update(ctx context.Context, id uint, in UpdateUserInput) (*models.User, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Role != nil {
		if !models.ValidRole(*in.Role) {
			return nil, models.NewValidationError("Role must be one of: user, publisher, admin")
		}
		user.Role = *in.Role
	}
	if in.Password != nil {
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id uint) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}
