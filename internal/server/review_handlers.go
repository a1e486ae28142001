package server

import (
	"campdir/internal/models"
	"campdir/internal/repository"
	"campdir/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetReviews handles GET /api/v1/reviews and GET /api/v1/bootcamps/:bootcampId/reviews
// @Summary List reviews, optionally scoped to a bootcamp
// @Tags reviews
// @Produce json
// @Success 200 {object} object{success=bool,count=int,total=int,data=[]models.Review}
// @Failure 400 {object} models.ErrorResponse
// @Router /reviews [get]
func (s *Server) GetReviews(c *fiber.Ctx) error {
	var bootcampID uint
	if c.Params("bootcampId") != "" {
		id, err := parseID(c, "bootcampId")
		if err != nil {
			return models.RespondWithError(c, err)
		}
		if _, err := s.bootcampRepo.GetByID(c.Context(), id); err != nil {
			return models.RespondWithError(c, err)
		}
		bootcampID = id
	}

	q, err := parseListQuery(c, repository.ReviewQueryFields)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	reviews, total, err := s.reviewRepo.List(c.Context(), q, bootcampID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondList(c, reviews, len(reviews), total, q)
}

// GetReview handles GET /api/v1/reviews/:id
// @Summary Get a single review with its bootcamp summary
// @Tags reviews
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} object{success=bool,data=models.Review}
// @Failure 404 {object} models.ErrorResponse
// @Router /reviews/{id} [get]
func (s *Server) GetReview(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	review, err := s.reviewRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondOK(c, review)
}

// CreateReview handles POST /api/v1/bootcamps/:bootcampId/reviews
// @Summary Review a bootcamp (one per user per bootcamp; publishers cannot review)
// @Tags reviews
// @Accept json
// @Produce json
// @Param bootcampId path int true "Bootcamp ID"
// @Success 201 {object} object{success=bool,data=models.Review}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /bootcamps/{bootcampId}/reviews [post]
func (s *Server) CreateReview(c *fiber.Ctx) error {
	bootcampID, err := parseID(c, "bootcampId")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var in service.CreateReviewInput
	if err := parseBody(c, &in); err != nil {
		return models.RespondWithError(c, err)
	}

	review, err := s.reviewService.Create(c.Context(), currentUser(c), bootcampID, in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondCreated(c, review)
}

// UpdateReview handles PUT /api/v1/reviews/:id
// @Summary Update a review (author or admin)
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} object{success=bool,data=models.Review}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /reviews/{id} [put]
func (s *Server) UpdateReview(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var in service.UpdateReviewInput
	if err := parseBody(c, &in); err != nil {
		return models.RespondWithError(c, err)
	}

	review, err := s.reviewService.Update(c.Context(), currentUser(c), id, in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondOK(c, review)
}

// DeleteReview handles DELETE /api/v1/reviews/:id
// @Summary Delete a review (author or admin)
// @Tags reviews
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /reviews/{id} [delete]
func (s *Server) DeleteReview(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.reviewService.Delete(c.Context(), currentUser(c), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return respondOK(c, fiber.Map{})
}
