package server

import (
	"io"
	"strconv"

	"campdir/internal/models"
	"campdir/internal/repository"
	"campdir/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetBootcamps handles GET /api/v1/bootcamps
// @Summary List bootcamps
// @Description Supports field filters (e.g. averageCost[lte]=10000), select, sort, page and limit
// @Tags bootcamps
// @Produce json
// @Success 200 {object} object{success=bool,count=int,total=int,data=[]models.Bootcamp}
// @Failure 400 {object} models.ErrorResponse
// @Router /bootcamps [get]
func (s *Server) GetBootcamps(c *fiber.Ctx) error {
	q, err := parseListQuery(c, repository.BootcampQueryFields)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	bootcamps, total, err := s.bootcampRepo.List(c.Context(), q, true)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondList(c, bootcamps, len(bootcamps), total, q)
}

// GetBootcamp handles GET /api/v1/bootcamps/:id
// @Summary Get a single bootcamp with its courses and reviews
// @Tags bootcamps
// @Produce json
// @Param id path int true "Bootcamp ID"
// @Success 200 {object} object{success=bool,data=models.Bootcamp}
// @Failure 404 {object} models.ErrorResponse
// @Router /bootcamps/{id} [get]
func (s *Server) GetBootcamp(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	bootcamp, err := s.bootcampRepo.GetByIDExpanded(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondOK(c, bootcamp)
}

// GetBootcampsInRadius handles GET /api/v1/bootcamps/radius/:zipcode/:distance
// @Summary List bootcamps within a radius of a zipcode
// @Tags bootcamps
// @Produce json
// @Param zipcode path string true "Center zipcode"
// @Param distance path number true "Radius in miles"
// @Success 200 {object} object{success=bool,count=int,data=[]models.Bootcamp}
// @Failure 400 {object} models.ErrorResponse
// @Router /bootcamps/radius/{zipcode}/{distance} [get]
func (s *Server) GetBootcampsInRadius(c *fiber.Ctx) error {
	distance, err := strconv.ParseFloat(c.Params("distance"), 64)
	if err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid distance '"+c.Params("distance")+"'"))
	}

	bootcamps, err := s.bootcampService.WithinRadius(c.Context(), c.Params("zipcode"), distance)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	count := len(bootcamps)
	return c.Status(fiber.StatusOK).JSON(Response{
		Success: true,
		Count:   &count,
		Data:    bootcamps,
	})
}

// CreateBootcamp handles POST /api/v1/bootcamps
// @Summary Publish a new bootcamp
// @Tags bootcamps
// @Accept json
// @Produce json
// @Success 201 {object} object{success=bool,data=models.Bootcamp}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /bootcamps [post]
func (s *Server) CreateBootcamp(c *fiber.Ctx) error {
	var in service.CreateBootcampInput
	if err := parseBody(c, &in); err != nil {
		return models.RespondWithError(c, err)
	}

	bootcamp, err := s.bootcampService.Create(c.Context(), currentUser(c), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondCreated(c, bootcamp)
}

// UpdateBootcamp handles PUT /api/v1/bootcamps/:id
// @Summary Update a bootcamp (owner or admin)
// @Tags bootcamps
// @Accept json
// @Produce json
// @Param id path int true "Bootcamp ID"
// @Success 200 {object} object{success=bool,data=models.Bootcamp}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /bootcamps/{id} [put]
func (s *Server) UpdateBootcamp(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var in service.UpdateBootcampInput
	if err := parseBody(c, &in); err != nil {
		return models.RespondWithError(c, err)
	}

	bootcamp, err := s.bootcampService.Update(c.Context(), currentUser(c), id, in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondOK(c, bootcamp)
}

// DeleteBootcamp handles DELETE /api/v1/bootcamps/:id
// @Summary Delete a bootcamp and everything under it (owner or admin)
// @Tags bootcamps
// @Produce json
// @Param id path int true "Bootcamp ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /bootcamps/{id} [delete]
func (s *Server) DeleteBootcamp(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.bootcampService.Delete(c.Context(), currentUser(c), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return respondOK(c, fiber.Map{})
}

// UploadBootcampPhoto handles PUT /api/v1/bootcamps/:id/photo
// @Summary Upload a bootcamp photo (multipart field "file")
// @Tags bootcamps
// @Accept mpfd
// @Produce json
// @Param id path int true "Bootcamp ID"
// @Success 200 {object} object{success=bool,data=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /bootcamps/{id}/photo [put]
func (s *Server) UploadBootcampPhoto(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Please upload a file"))
	}
	if fileHeader.Size > s.photoStore.MaxBytes() {
		return models.RespondWithError(c, models.NewValidationError(
			"Please upload an image less than "+strconv.FormatInt(s.photoStore.MaxBytes(), 10)+" bytes"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	name, err := s.bootcampService.UploadPhoto(c.Context(), currentUser(c), id, s.photoStore, data)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondOK(c, name)
}
