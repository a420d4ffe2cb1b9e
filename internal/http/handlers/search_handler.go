package handlers

import (
	"strings"

	"fandomia/internal/log"
	"fandomia/internal/services"
	"fandomia/internal/validate"

	"github.com/gofiber/fiber/v2"
)

// SearchHandler serves the read-only catalog: the product grid and the
// category menu.
type SearchHandler struct {
	Catalog *services.CatalogService
}

func (h *SearchHandler) Search(c *fiber.Ctx) error {
	rawQ := c.Query("q")
	q, ok := validate.Query(rawQ)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "q"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Enter a shorter keyword"})
	}
	category := strings.TrimSpace(c.Query("category"))
	if category != "" {
		if _, ok := validate.Slug(category); !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "category"})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid category"})
		}
	}

	items, err := h.Catalog.Search(c.UserContext(), q, category)
	if err != nil {
		return respondErr(c, "catalog", err)
	}
	return c.JSON(items)
}

func (h *SearchHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(cats)
}
