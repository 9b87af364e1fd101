package handlers

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	applog "backoffice/internal/log"
	"backoffice/internal/services"
	"backoffice/internal/validate"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		applog.Error(c, "catalog.categories", err, nil)
		return failFor(c, err)
	}
	return c.JSON(cats)
}

func (h *CatalogHandler) ProductsByCategory(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid category id")
	}
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)
	prods, err := h.Catalog.ListProductsByCategory(id, page, pageSize)
	if err != nil {
		applog.Error(c, "catalog.list", err, map[string]any{"category": id})
		return failFor(c, err)
	}
	return c.JSON(prods)
}

func (h *CatalogHandler) ProductDetail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid product id")
	}
	p, err := h.Catalog.GetProduct(id)
	if err == sql.ErrNoRows {
		return jsonError(c, fiber.StatusNotFound, "product not found")
	}
	if err != nil {
		applog.Error(c, "catalog.detail", err, map[string]any{"product": id})
		return failFor(c, err)
	}
	variants, err := h.Catalog.Variants(id)
	if err != nil {
		applog.Error(c, "catalog.variants", err, map[string]any{"product": id})
		return failFor(c, err)
	}
	return c.JSON(fiber.Map{"product": p, "variants": variants})
}
