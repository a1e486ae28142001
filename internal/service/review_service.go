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

// ReviewService implements review write operations and keeps the reviewed
// bootcamp's average rating in sync.
type ReviewService struct {
	reviews   repository.ReviewRepository
	bootcamps repository.BootcampRepository
}

// NewReviewService returns a new ReviewService.
func NewReviewService(reviews repository.ReviewRepository, bootcamps repository.BootcampRepository) *ReviewService {
	return &ReviewService{reviews: reviews, bootcamps: bootcamps}
}

// CreateReviewInput is the payload for reviewing a bootcamp.
type CreateReviewInput struct {
	Title  string `json:"title" validate:"required,max=100"`
	Text   string `json:"text" validate:"required"`
	Rating int    `json:"rating" validate:"required,min=1,max=10"`
}

// UpdateReviewInput is the partial payload for updating a review.
type UpdateReviewInput struct {
	Title  *string `json:"title" validate:"omitempty,max=100"`
	Text   *string `json:"text"`
	Rating *int    `json:"rating" validate:"omitempty,min=1,max=10"`
}

// Create submits a review of the bootcamp. Publishers cannot review; at most
// one review per user per bootcamp.
func (s *ReviewService) Create(ctx context.Context, principal *models.User, bootcampID uint, in CreateReviewInput) (*models.Review, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := authz.RequireRole(principal, models.RoleUser, models.RoleAdmin); err != nil {
		return nil, err
	}

	if _, err := s.bootcamps.GetByID(ctx, bootcampID); err != nil {
		return nil, err
	}

	review := &models.Review{
		Title:      in.Title,
		Text:       in.Text,
		Rating:     in.Rating,
		BootcampID: bootcampID,
		UserID:     principal.ID,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	s.recomputeAverageRating(ctx, bootcampID)
	return review, nil
}

// Update applies a partial update; author or admin only.
func (s *ReviewService) Update(ctx context.Context, principal *models.User, id uint, in UpdateReviewInput) (*models.Review, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwner(principal, review.UserID, "update", "review"); err != nil {
		return nil, err
	}

	if in.Title != nil {
		review.Title = *in.Title
	}
	if in.Text != nil {
		review.Text = *in.Text
	}
	if in.Rating != nil {
		review.Rating = *in.Rating
	}

	review.Bootcamp = nil
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}

	s.recomputeAverageRating(ctx, review.BootcampID)
	return review, nil
}

// Delete removes the review; author or admin only.
func (s *ReviewService) Delete(ctx context.Context, principal *models.User, id uint) error {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireOwner(principal, review.UserID, "delete", "review"); err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}

	s.recomputeAverageRating(ctx, review.BootcampID)
	return nil
}

// recomputeAverageRating refreshes the bootcamp's average rating, rounded to
// one decimal place. Best-effort: failures are logged and counted only.
func (s *ReviewService) recomputeAverageRating(ctx context.Context, bootcampID uint) {
	avg, err := s.reviews.AverageRating(ctx, bootcampID)
	if err == nil {
		if avg != nil {
			rounded := math.Round(*avg*10) / 10
			avg = &rounded
		}
		err = s.bootcamps.UpdateAverageRating(ctx, bootcampID, avg)
	}
	if err != nil {
		observability.AggregateRecomputeFailures.WithLabelValues("average_rating").Inc()
		middleware.Logger.ErrorContext(ctx, "failed to recompute average rating",
			"bootcamp_id", bootcampID, "error", err)
	}
}
