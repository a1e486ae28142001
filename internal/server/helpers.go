package server

import (
	"strconv"

	"campdir/internal/models"
	"campdir/internal/query"

	"github.com/gofiber/fiber/v2"
)

// Response is the success half of the API envelope.
type Response struct {
	Success    bool              `json:"success"`
	Count      *int              `json:"count,omitempty"`
	Total      *int64            `json:"total,omitempty"`
	Pagination *query.Pagination `json:"pagination,omitempty"`
	Data       any               `json:"data"`
}

func respondOK(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(Response{Success: true, Data: data})
}

func respondCreated(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Response{Success: true, Data: data})
}

// respondList writes a collection response with count, filtered total and
// pagination cursors.
func respondList(c *fiber.Ctx, data any, count int, total int64, q *query.ListQuery) error {
	pagination := q.PageInfo(total)
	return c.Status(fiber.StatusOK).JSON(Response{
		Success:    true,
		Count:      &count,
		Total:      &total,
		Pagination: &pagination,
		Data:       data,
	})
}

// parseID reads a positive integer route parameter. A malformed identifier
// can never name a resource, so it reports 404 like any other miss.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, &models.AppError{
			Status:  fiber.StatusNotFound,
			Message: "Resource not found",
		}
	}
	return uint(id), nil
}

// parseListQuery builds a ListQuery from the request's query string against a
// field allow-list.
func parseListQuery(c *fiber.Ctx, allowed map[string]string) (*query.ListQuery, error) {
	values := make(map[string]string)
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		values[string(k)] = string(v)
	})
	return query.Parse(values, allowed)
}

// currentUser returns the authenticated principal placed in locals by
// AuthRequired, or nil on public routes.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

func parseBody(c *fiber.Ctx, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}
