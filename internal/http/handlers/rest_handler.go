package handlers

import (
	"fandomia/internal/domain"
	"fandomia/internal/log"
	"fandomia/internal/services"
	"fandomia/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type RoleHandler struct {
	Auth *services.AuthService
}

// WhoAmI answers with the caller's explicit role as a JSON string, or null.
func (h *RoleHandler) WhoAmI(c *fiber.Ctx) error {
	role, err := h.Auth.WhoAmIRole(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}
	if role == "" {
		return c.JSON(nil)
	}
	return c.JSON(role)
}

func (h *RoleHandler) Profile(c *fiber.Ctx) error {
	p, err := h.Auth.Profile(c.UserContext(), currentUser(c), c.Params("id"))
	if err != nil {
		return respondErr(c, "profile", err)
	}
	return c.JSON(p)
}

type CartItemsHandler struct {
	Rows *services.CartRowService
}

func (h *CartItemsHandler) Upsert(c *fiber.Ctx) error {
	var rows []domain.RemoteCartRow
	if err := c.BodyParser(&rows); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := h.Rows.Upsert(c.UserContext(), currentUser(c), rows); err != nil {
		return respondErr(c, "cart_items", err)
	}
	log.Info(c, "cart_items.upsert", map[string]any{"rows": len(rows)})
	return c.SendStatus(fiber.StatusCreated)
}

func (h *CartItemsHandler) List(c *fiber.Ctx) error {
	rows, err := h.Rows.Fetch(c.UserContext(), currentUser(c), c.Query("customer_id"))
	if err != nil {
		return respondErr(c, "cart_items", err)
	}
	return c.JSON(rows)
}

type ProductHandler struct {
	Catalog *services.CatalogService
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	slug, ok := validate.Slug(c.Params("slug"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "This item is no longer available"})
	}
	d, err := h.Catalog.Product(c.UserContext(), slug)
	if err != nil {
		return respondErr(c, "product", err)
	}
	return c.JSON(d)
}
