package server

import (
	"campdir/internal/models"
	"campdir/internal/repository"
	"campdir/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCourses handles GET /api/v1/courses and GET /api/v1/bootcamps/:bootcampId/courses
// @Summary List courses, optionally scoped to a bootcamp
// @Tags courses
// @Produce json
// @Success 200 {object} object{success=bool,count=int,total=int,data=[]models.Course}
// @Failure 400 {object} models.ErrorResponse
// @Router /courses [get]
func (s *Server) GetCourses(c *fiber.Ctx) error {
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

	q, err := parseListQuery(c, repository.CourseQueryFields)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	courses, total, err := s.courseRepo.List(c.Context(), q, bootcampID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondList(c, courses, len(courses), total, q)
}

// GetCourse handles GET /api/v1/courses/:id
// @Summary Get a single course with its bootcamp summary
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} object{success=bool,data=models.Course}
// @Failure 404 {object} models.ErrorResponse
// @Router /courses/{id} [get]
func (s *Server) GetCourse(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	course, err := s.courseRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondOK(c, course)
}

// CreateCourse handles POST /api/v1/bootcamps/:bootcampId/courses
// @Summary Add a course to a bootcamp (bootcamp owner or admin)
// @Tags courses
// @Accept json
// @Produce json
// @Param bootcampId path int true "Bootcamp ID"
// @Success 201 {object} object{success=bool,data=models.Course}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /bootcamps/{bootcampId}/courses [post]
func (s *Server) CreateCourse(c *fiber.Ctx) error {
	bootcampID, err := parseID(c, "bootcampId")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var in service.CreateCourseInput
	if err := parseBody(c, &in); err != nil {
		return models.RespondWithError(c, err)
	}

	course, err := s.courseService.Create(c.Context(), currentUser(c), bootcampID, in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondCreated(c, course)
}

// UpdateCourse handles PUT /api/v1/courses/:id
// @Summary Update a course (owner or admin)
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} object{success=bool,data=models.Course}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /courses/{id} [put]
func (s *Server) UpdateCourse(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var in service.UpdateCourseInput
	if err := parseBody(c, &in); err != nil {
		return models.RespondWithError(c, err)
	}

	course, err := s.courseService.Update(c.Context(), currentUser(c), id, in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondOK(c, course)
}

// DeleteCourse handles DELETE /api/v1/courses/:id
// @Summary Delete a course (owner or admin)
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /courses/{id} [delete]
func (s *Server) DeleteCourse(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.courseService.Delete(c.Context(), currentUser(c), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return respondOK(c, fiber.Map{})
}
