package server

import (
	"campdir/internal/models"
	"campdir/internal/repository"
	"campdir/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUsers handles GET /api/v1/users (admin only)
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {object} object{success=bool,count=int,total=int,data=[]models.User}
// @Failure 403 {object} models.ErrorResponse
// @Router /users [get]
func (s *Server) GetUsers(c *fiber.Ctx) error {
	q, err := parseListQuery(c, repository.UserQueryFields)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	users, total, err := s.userRepo.List(c.Context(), q)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondList(c, users, len(users), total, q)
}

// GetUser handles GET /api/v1/users/:id (admin only)
// @Summary Get a single user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{success=bool,data=models.User}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	user, err := s.userRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondOK(c, user)
}

// CreateUser handles POST /api/v1/users (admin only)
// @Summary Create a user with any role
// @Tags users
// @Accept json
// @Produce json
// @Success 201 {object} object{success=bool,data=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var in service.CreateUserInput
	if err := parseBody(c, &in); err != nil {
		return models.RespondWithError(c, err)
	}

	user, err := s.userService.Create(c.Context(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondCreated(c, user)
}

// UpdateUser handles PUT /api/v1/users/:id (admin only)
// @Summary Update a user
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{success=bool,data=models.User}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [put]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var in service.UpdateUserInput
	if err := parseBody(c, &in); err != nil {
		return models.RespondWithError(c, err)
	}

	user, err := s.userService.Update(c.Context(), id, in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respondOK(c, user)
}

// DeleteUser handles DELETE /api/v1/users/:id (admin only)
// @Summary Delete a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [delete]
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.userService.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return respondOK(c, fiber.Map{})
}
