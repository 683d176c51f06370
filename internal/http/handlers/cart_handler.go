package handlers

import (
	"strconv"

	applog "avecplaisir/internal/log"
	"avecplaisir/internal/services"
	"avecplaisir/internal/validate"

	"github.com/gofiber/fiber/v2"
)

// CartHandler serves the signed-in user's cart. Routes sit behind
// RequireUser, so currentUser is never nil here.
type CartHandler struct {
	Cart *services.CartService
}

// GET /cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	view, err := h.Cart.View(currentUser(c).ID)
	if err != nil {
		applog.Error(c, "cart.view.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load your cart")
	}
	return render(c, "cart", fiber.Map{"Cart": view, "MaxQuantity": services.MaxQuantity})
}

// POST /cart/add/:productId
func (h *CartHandler) Add(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.Params("productId"))
	if !ok {
		return fail(c, services.ErrNotFound, "/catalog", "cart.add")
	}
	item, created, err := h.Cart.Add(currentUser(c).ID, pid)
	if err != nil {
		return fail(c, err, "/catalog", "cart.add")
	}
	applog.Audit(c, "cart.add", map[string]any{"product_id": pid, "item_id": item.ID, "quantity": item.Quantity, "created": created})
	if created {
		return redirectWith(c, "/catalog", "success", "Added to your cart.")
	}
	return redirectWith(c, "/catalog", "success", "Quantity increased to "+strconv.Itoa(item.Quantity)+".")
}

// POST /cart/remove/:itemId
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("itemId"))
	if !ok {
		return fail(c, services.ErrNotFound, "/cart", "cart.remove")
	}
	if err := h.Cart.Remove(currentUser(c).ID, id); err != nil {
		return fail(c, err, "/cart", "cart.remove")
	}
	applog.Audit(c, "cart.remove", map[string]any{"item_id": id})
	return redirectWith(c, "/cart", "success", "Removed from your cart.")
}

// POST /cart/update/:itemId
func (h *CartHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("itemId"))
	if !ok {
		return fail(c, services.ErrNotFound, "/cart", "cart.update")
	}
	qty, ok := validate.Int(c.FormValue("quantity"))
	if !ok {
		return fail(c, &services.ValidationError{Field: "quantity", Msg: "must be a whole number"}, "/cart", "cart.update")
	}
	removed, err := h.Cart.UpdateQuantity(currentUser(c).ID, id, qty)
	if err != nil {
		return fail(c, err, "/cart", "cart.update")
	}
	applog.Audit(c, "cart.update", map[string]any{"item_id": id, "quantity": qty, "removed": removed})
	if removed {
		return redirectWith(c, "/cart", "success", "Removed from your cart.")
	}
	return redirectWith(c, "/cart", "success", "Quantity updated.")
}

// POST /cart/clear
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	n, err := h.Cart.Clear(currentUser(c).ID)
	if err != nil {
		return fail(c, err, "/cart", "cart.clear")
	}
	applog.Audit(c, "cart.clear", map[string]any{"removed": n})
	return redirectWith(c, "/cart", "success", "Cart cleared ("+strconv.Itoa(n)+" items removed).")
}
