package handlers

import (
	"errors"
	"time"

	"avecplaisir/internal/log"
	"avecplaisir/internal/services"
	"avecplaisir/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false,
		})
	}
	return sid
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if _, ok := validate.Email(email); !ok || pass == "" {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": "Invalid email or password", "CSRFToken": c.Cookies("csrf_")})
	}

	u, err := h.Auth.Login(sid, email, pass)
	if errors.Is(err, services.ErrBlocked) {
		log.Security(c, "auth.login.blocked", map[string]any{"email": email})
		return c.Status(fiber.StatusForbidden).Render("login", fiber.Map{"Err": "This account is blocked.", "CSRFToken": c.Cookies("csrf_")})
	}
	if err != nil {
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{"Err": "Invalid email or password", "CSRFToken": c.Cookies("csrf_")})
	}

	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return redirectWith(c, "/", "success", "Welcome, "+u.Name+"!")
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{})
}

// Register creates the account and signs it in.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if pass != c.FormValue("password_confirm") {
		return redirectWith(c, "/register", "error", "Passwords do not match.")
	}
	u, err := h.Auth.Register(email, c.FormValue("name"), pass)
	if err != nil {
		return fail(c, err, "/register", "auth.register")
	}
	sid := ensureSID(c)
	if _, err := h.Auth.Login(sid, u.Email, pass); err != nil {
		return fail(c, err, "/login", "auth.register")
	}
	log.Audit(c, "auth.register", map[string]any{"email": u.Email})
	return redirectWith(c, "/", "success", "Registration successful!")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := ensureSID(c)
	_ = h.Auth.Logout(sid)
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", nil)
	return redirectWith(c, "/", "info", "You have been signed out.")
}
