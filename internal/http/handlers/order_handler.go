package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"backoffice/internal/domain"
	applog "backoffice/internal/log"
	"backoffice/internal/repos"
	"backoffice/internal/services"
	"backoffice/internal/validate"
)

type OrderHandler struct {
	Checkout *services.CheckoutService
	Order    *services.OrderService
	Repo     *repos.OrderRepo
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var in services.CheckoutInput
	if err := c.BodyParser(&in); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "malformed body")
	}
	if _, ok := validate.ID(in.CustomerID); !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid customer id")
	}
	code, ok := validate.Currency(in.CurrencyCode)
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid currency code")
	}
	in.CurrencyCode = code

	orderID, err := h.Checkout.PlaceOrder(in)
	if err != nil {
		applog.Error(c, "order.place", err, map[string]any{"customer": in.CustomerID})
		return failFor(c, err)
	}
	applog.Audit(c, "order.placed", map[string]any{"order": orderID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"order_id": orderID})
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid order id")
	}
	o, err := h.Repo.Get(id)
	if err != nil {
		return failFor(c, err)
	}
	lines, err := h.Repo.Lines(id)
	if err != nil {
		return failFor(c, err)
	}
	addrs, err := h.Repo.Addresses(id)
	if err != nil {
		return failFor(c, err)
	}
	hist, err := h.Repo.History(id)
	if err != nil {
		return failFor(c, err)
	}
	cancelled, err := h.Order.IsCancelled(id)
	if err != nil {
		return failFor(c, err)
	}
	return c.JSON(fiber.Map{
		"order":     o,
		"lines":     lines,
		"addresses": addrs,
		"history":   hist,
		"cancelled": cancelled,
	})
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid order id")
	}
	var body struct {
		Status string `json:"status"`
		Actor  string `json:"actor"`
	}
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "malformed body")
	}
	to := domain.OrderStatus(strings.ToLower(strings.TrimSpace(body.Status)))
	if !to.Valid() {
		return jsonError(c, fiber.StatusBadRequest, "unknown status")
	}

	if err := h.Order.UpdateStatus(id, to, body.Actor); err != nil {
		applog.Error(c, "order.status", err, map[string]any{"order": id, "to": string(to)})
		return failFor(c, err)
	}
	applog.Audit(c, "order.status", map[string]any{"order": id, "to": string(to)})
	return c.JSON(fiber.Map{"order_id": id, "status": to})
}

func (h *OrderHandler) Pay(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid order id")
	}
	changed, err := h.Order.MarkAsPaid(id, actorFrom(c))
	if err != nil {
		applog.Error(c, "order.pay", err, map[string]any{"order": id})
		return failFor(c, err)
	}
	if changed {
		applog.Audit(c, "order.paid", map[string]any{"order": id})
	}
	return c.JSON(fiber.Map{"order_id": id, "changed": changed})
}

func (h *OrderHandler) Unpay(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid order id")
	}
	changed, err := h.Order.MarkAsUnpaid(id, actorFrom(c))
	if err != nil {
		applog.Error(c, "order.unpay", err, map[string]any{"order": id})
		return failFor(c, err)
	}
	if changed {
		applog.Audit(c, "order.unpaid", map[string]any{"order": id})
	}
	return c.JSON(fiber.Map{"order_id": id, "changed": changed})
}

func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid order id")
	}
	var body struct {
		Note string `json:"note"`
	}
	_ = c.BodyParser(&body)

	if err := h.Order.Cancel(id, actorFrom(c), body.Note); err != nil {
		applog.Error(c, "order.cancel", err, map[string]any{"order": id})
		return failFor(c, err)
	}
	applog.Audit(c, "order.cancelled", map[string]any{"order": id})
	return c.JSON(fiber.Map{"order_id": id, "status": domain.StatusCancelled})
}

func (h *OrderHandler) ListByCustomer(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid customer id")
	}
	orders, err := h.Repo.ListByCustomer(id)
	if err != nil {
		applog.Error(c, "order.list", err, map[string]any{"customer": id})
		return failFor(c, err)
	}
	return c.JSON(orders)
}

// actorFrom reads the acting user from the X-Actor header; empty means
// a system action.
func actorFrom(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Get("X-Actor"))
}
