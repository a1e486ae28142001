package service

import (
	"context"
	"math"

	"campdir/internal/authz"
	"campdir/internal/middleware"
	"campdir/internal/models"
	"campdir/internal/observability"
	"campdir/internal/repository"
)

// CourseService implements course write operations and keeps the owning
// bootcamp's average cost in sync.
type CourseService struct {
	courses   repository.CourseRepository
	bootcamps repository.BootcampRepository
}

// NewCourseService returns a new CourseService.
func NewCourseService(courses repository.CourseRepository, bootcamps repository.BootcampRepository) *CourseService {
	return &CourseService{courses: courses, bootcamps: bootcamps}
}

// CreateCourseInput is the payload for adding a course to a bootcamp.
type CreateCourseInput struct {
	Title                 string  `json:"title" validate:"required,max=100"`
	Description           string  `json:"description" validate:"required"`
	Weeks                 string  `json:"weeks" validate:"required"`
	Tuition               float64 `json:"tuition" validate:"required,gt=0"`
	MinimumSkill          string  `json:"minimum_skill" validate:"required"`
	ScholarshipsAvailable bool    `json:"scholarships_available"`
}

// UpdateCourseInput is the partial payload for updating a course.
type UpdateCourseInput struct {
	Title                 *string  `json:"title" validate:"omitempty,max=100"`
	Description           *string  `json:"description"`
	Weeks                 *string  `json:"weeks"`
	Tuition               *float64 `json:"tuition" validate:"omitempty,gt=0"`
	MinimumSkill          *string  `json:"minimum_skill"`
	ScholarshipsAvailable *bool    `json:"scholarships_available"`
}

// Create adds a course under the bootcamp. Only the bootcamp's owner (or an
// admin) may add courses to it.
func (s *CourseService) Create(ctx context.Context, principal *models.User, bootcampID uint, in CreateCourseInput) (*models.Course, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if !models.ValidSkill(in.MinimumSkill) {
		return nil, models.NewValidationError("Minimum skill must be one of: beginner, intermediate, advanced")
	}

	bootcamp, err := s.bootcamps.GetByID(ctx, bootcampID)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwner(principal, bootcamp.UserID, "add a course to", "bootcamp"); err != nil {
		return nil, err
	}

	course := &models.Course{
		Title:                 in.Title,
		Description:           in.Description,
		Weeks:                 in.Weeks,
		Tuition:               in.Tuition,
		MinimumSkill:          in.MinimumSkill,
		ScholarshipsAvailable: in.ScholarshipsAvailable,
		BootcampID:            bootcampID,
		UserID:                principal.ID,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}

	s.recomputeAverageCost(ctx, bootcampID)
	return course, nil
}

// Update applies a partial update; owner or admin only.
func (s *CourseService) Update(ctx context.Context, principal *models.User, id uint, in UpdateCourseInput) (*models.Course, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwner(principal, course.UserID, "update", "course"); err != nil {
		return nil, err
	}

	if in.Title != nil {
		course.Title = *in.Title
	}
	if in.Description != nil {
		course.Description = *in.Description
	}
	if in.Weeks != nil {
		course.Weeks = *in.Weeks
	}
	if in.Tuition != nil {
		course.Tuition = *in.Tuition
	}
	if in.MinimumSkill != nil {
		if !models.ValidSkill(*in.MinimumSkill) {
			return nil, models.NewValidationError("Minimum skill must be one of: beginner, intermediate, advanced")
		}
		course.MinimumSkill = *in.MinimumSkill
	}
	if in.ScholarshipsAvailable != nil {
		course.ScholarshipsAvailable = *in.ScholarshipsAvailable
	}

	course.Bootcamp = nil
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, err
	}

	s.recomputeAverageCost(ctx, course.BootcampID)
	return course, nil
}

// Delete removes the course; owner or admin only.
func (s *CourseService) Delete(ctx context.Context, principal *models.User, id uint) error {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireOwner(principal, course.UserID, "delete", "course"); err != nil {
		return err
	}
	if err := s.courses.Delete(ctx, id); err != nil {
		return err
	}

	s.recomputeAverageCost(ctx, course.BootcampID)
	return nil
}

// recomputeAverageCost refreshes the bootcamp's average cost from its current
// courses. The write that triggered it has already succeeded, so a failure
// here is logged and counted rather than surfaced to the client.
func (s *CourseService) recomputeAverageCost(ctx context.Context, bootcampID uint) {
	avg, err := s.courses.AverageTuition(ctx, bootcampID)
	if err == nil {
		if avg != nil {
			rounded := math.Ceil(*avg/10) * 10
			avg = &rounded
		}
		err = s.bootcamps.UpdateAverageCost(ctx, bootcampID, avg)
	}
	if err != nil {
		observability.AggregateRecomputeFailures.WithLabelValues("average_cost").Inc()
		middleware.Logger.ErrorContext(ctx, "failed to recompute average cost",
			"bootcamp_id", bootcampID, "error", err)
	}
}
