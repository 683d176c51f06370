package handlers

import (
	"errors"
	"net/url"
	"strings"
	"time"

	applog "avecplaisir/internal/log"
	"avecplaisir/internal/services"

	"github.com/gofiber/fiber/v2"
)

const flashCookie = "flash"

// Flash is the one-shot message shown on the next rendered page.
type Flash struct {
	Kind string // success, info, warning, error
	Msg  string
}

func setFlash(c *fiber.Ctx, kind, msg string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(kind + "|" + msg),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(time.Minute),
	})
}

func popFlash(c *fiber.Ctx) (Flash, bool) {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return Flash{}, false
	}
	c.Cookie(&fiber.Cookie{Name: flashCookie, Value: "", Path: "/", Expires: time.Now().Add(-time.Hour)})
	v, err := url.QueryUnescape(raw)
	if err != nil {
		return Flash{}, false
	}
	kind, msg, ok := strings.Cut(v, "|")
	if !ok {
		return Flash{}, false
	}
	switch kind {
	case "success", "info", "warning", "error":
	default:
		kind = "info"
	}
	return Flash{Kind: kind, Msg: msg}, true
}

// redirectWith sets a flash message and sends the browser to `to`.
func redirectWith(c *fiber.Ctx, to, kind, msg string) error {
	setFlash(c, kind, msg)
	return c.Redirect(to)
}

// fail turns a service error into a flash message and a redirect to back.
// action names the attempted operation in the log line.
func fail(c *fiber.Ctx, err error, back, action string) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		applog.Info(c, action+".invalid", map[string]any{"field": verr.Field})
		return redirectWith(c, back, "error", "Please check the form: "+verr.Error())
	case errors.Is(err, services.ErrForbidden):
		applog.Security(c, "access.denied."+action, nil)
		return redirectWith(c, back, "error", "You do not have permission to do that.")
	case errors.Is(err, services.ErrNotFound):
		applog.Info(c, action+".not_found", nil)
		return redirectWith(c, back, "error", "That item could not be found.")
	case errors.Is(err, services.ErrConflict):
		return redirectWith(c, back, "error", "That already exists.")
	default:
		applog.Error(c, action+".fail", err, nil)
		return redirectWith(c, back, "error", "Something went wrong. Please try again.")
	}
}
