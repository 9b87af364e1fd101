package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "backoffice/internal/log"
	"backoffice/internal/services"
	"backoffice/internal/validate"
)

type PricingHandler struct {
	Pricing *services.PricingService
}

// Quote resolves the unit price for ?group=&qty=. An empty group means
// the default retail group. A 404 here means the product has no price
// at all, not that the request was malformed.
func (h *PricingHandler) Quote(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid product id")
	}
	group, ok := validate.Group(c.Query("group"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid group")
	}
	qty, ok := validate.Qty(c.Query("qty", "1"))
	if !ok {
		applog.Warn(c, "validation.fail", map[string]any{"field": "qty"})
		return jsonError(c, fiber.StatusBadRequest, "qty must be a positive integer")
	}

	price, found, err := h.Pricing.ResolvePrice(id, group, qty)
	if err != nil {
		applog.Error(c, "pricing.quote", err, map[string]any{"product": id})
		return failFor(c, err)
	}
	if !found {
		return jsonError(c, fiber.StatusNotFound, "no price for product")
	}
	return c.JSON(fiber.Map{"product_id": id, "quantity": qty, "unit_price": price})
}

// Tiers lists the price breaks for display. An empty list is a valid
// answer: the group has no dedicated tiers for this product.
func (h *PricingHandler) Tiers(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid product id")
	}
	group, ok := validate.Group(c.Query("group"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid group")
	}

	tiers, err := h.Pricing.TiersFor(id, group)
	if err != nil {
		applog.Error(c, "pricing.tiers", err, map[string]any{"product": id})
		return failFor(c, err)
	}
	return c.JSON(tiers)
}
