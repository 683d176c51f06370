package handlers

import (
	"avecplaisir/internal/access"

	"github.com/gofiber/fiber/v2"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := currentUser(c); u != nil {
		data["User"] = u
		data["CanManage"] = access.CanPerform(principal(c), access.UseBackOffice, access.Resource{})
		data["CartCount"], _ = c.Locals("cart_count").(int)
	}
	if f, ok := popFlash(c); ok {
		data["Flash"] = f
	}
	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

// notFound renders the friendly error page with the given status.
func notFound(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).Render("notfound", fiber.Map{"Message": msg})
}
