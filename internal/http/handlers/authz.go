package handlers

import (
	"errors"

	"fandomia/internal/domain"
	applog "fandomia/internal/log"
	"fandomia/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Authenticate attaches the session's user, if any, to the request.
func Authenticate(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := bearerToken(c)
		if sid == "" {
			return c.Next()
		}
		u, err := auth.CurrentUser(c.UserContext(), sid)
		if err != nil && !errors.Is(err, services.ErrUnauthenticated) {
			return err
		}
		if u != nil {
			c.Locals("user", u)
			c.Locals("user_id", u.ID)
			c.Locals("sid", sid)
		}
		return c.Next()
	}
}

// RequireUser rejects anonymous requests with 401.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			applog.Security(c, "access.denied.anonymous", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not signed in"})
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// respondErr maps service errors onto HTTP statuses.
func respondErr(c *fiber.Ctx, action string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrBadCreds), errors.Is(err, services.ErrUnauthenticated):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = fiber.StatusForbidden
		applog.Security(c, "access.denied."+action, nil)
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrEmailTaken):
		status = fiber.StatusConflict
	default:
		return err
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
