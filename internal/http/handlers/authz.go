package handlers

import (
	"avecplaisir/internal/access"
	"avecplaisir/internal/domain"
	applog "avecplaisir/internal/log"
	"avecplaisir/internal/services"

	"github.com/gofiber/fiber/v2"
)

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

func principal(c *fiber.Ctx) access.Principal { return access.Of(currentUser(c)) }

// allowed checks the guard for the current request and logs a denial.
func allowed(c *fiber.Ctx, a access.Action, r access.Resource) bool {
	if access.CanPerform(principal(c), a, r) {
		return true
	}
	applog.Security(c, "access.denied."+a.String(), nil)
	return false
}

// LoadUser attaches the session user, if any, and its cart badge count.
func LoadUser(auth *services.AuthService, cart *services.CartService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := auth.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
				c.Locals(applog.UserKey, u.ID)
				if n, err := cart.Count(u.ID); err == nil {
					c.Locals("cart_count", n)
				}
			}
		}
		return c.Next()
	}
}

// RequireUser enforces that a user is logged in; otherwise redirect to login.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			return redirectWith(c, "/login", "info", "Please sign in first.")
		}
		return c.Next()
	}
}

// RequireStaff guards the back office.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			return redirectWith(c, "/login", "info", "Please sign in first.")
		}
		if !allowed(c, access.UseBackOffice, access.Resource{}) {
			return notFound(c, fiber.StatusForbidden, "Access denied")
		}
		return c.Next()
	}
}
