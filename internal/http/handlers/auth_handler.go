package handlers

import (
	"fandomia/internal/log"
	"fandomia/internal/services"
	"fandomia/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var in credentials
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	email, ok := validate.Email(in.Email)
	if !ok || !validate.Password(in.Password) {
		log.Security(c, "auth.login.fail", map[string]any{"email": in.Email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": services.ErrBadCreds.Error()})
	}

	sid, u, err := h.Auth.Login(c.UserContext(), email, in.Password)
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return respondErr(c, "login", err)
	}

	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.JSON(fiber.Map{"access_token": sid, "token_type": "bearer", "user": u.Identity()})
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var in services.SignUpInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	u, err := h.Auth.SignUp(c.UserContext(), in)
	if err != nil {
		return respondErr(c, "signup", err)
	}
	log.Audit(c, "auth.signup", map[string]any{"user_id": u.ID})
	return c.Status(fiber.StatusCreated).JSON(u.Identity())
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := bearerToken(c)
	if sid != "" {
		if err := h.Auth.Logout(c.UserContext(), sid); err != nil {
			return err
		}
	}
	log.Audit(c, "auth.logout", nil)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) User(c *fiber.Ctx) error {
	return c.JSON(currentUser(c).Identity())
}
