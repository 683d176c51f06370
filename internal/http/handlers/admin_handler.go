package handlers

import (
	"strconv"

	applog "avecplaisir/internal/log"
	"avecplaisir/internal/services"
	"avecplaisir/internal/validate"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler is the staff back office. Every route sits behind
// RequireStaff; the services still check the guard.
type AdminHandler struct {
	Blog     *services.BlogService
	Feedback *services.FeedbackService
	Auth     *services.AuthService
	Catalog  *services.CatalogService
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	prods, err := h.Catalog.List()
	if err != nil {
		applog.Error(c, "admin.dashboard.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load the dashboard")
	}
	arts, err := h.Blog.ListArticles()
	if err != nil {
		applog.Error(c, "admin.dashboard.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load the dashboard")
	}
	fb, err := h.Feedback.List()
	if err != nil {
		applog.Error(c, "admin.dashboard.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load the dashboard")
	}
	return render(c, "admin_dashboard", fiber.Map{
		"Products": len(prods),
		"Articles": arts,
		"Feedback": fb,
	})
}

// GET /admin/comments
func (h *AdminHandler) Comments(c *fiber.Ctx) error {
	rows, err := h.Blog.Moderation(principal(c))
	if err != nil {
		return fail(c, err, "/admin", "admin.comments.list")
	}
	return render(c, "admin_comments", fiber.Map{"Rows": rows})
}

func formIDs(c *fiber.Ctx, key string) []int64 {
	var raw []string
	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		if string(k) == key {
			raw = append(raw, string(v))
		}
	})
	return validate.IDs(raw)
}

// POST /admin/comments/approve
func (h *AdminHandler) ApproveComments(c *fiber.Ctx) error { return h.setApproval(c, true) }

// POST /admin/comments/hide
func (h *AdminHandler) HideComments(c *fiber.Ctx) error { return h.setApproval(c, false) }

func (h *AdminHandler) setApproval(c *fiber.Ctx, approved bool) error {
	ids := formIDs(c, "ids")
	n, err := h.Blog.SetApproval(principal(c), ids, approved)
	if err != nil {
		return fail(c, err, "/admin/comments", "admin.comments.moderate")
	}
	applog.Audit(c, "admin.comments.moderate", map[string]any{"ids": ids, "approved": approved, "changed": n})
	if approved {
		return redirectWith(c, "/admin/comments", "success", "Approved "+strconv.Itoa(n)+" comments.")
	}
	return redirectWith(c, "/admin/comments", "warning", "Hid "+strconv.Itoa(n)+" comments.")
}

// POST /admin/articles/publish
func (h *AdminHandler) PublishArticles(c *fiber.Ctx) error {
	ids := formIDs(c, "ids")
	n, err := h.Blog.Publish(principal(c), ids)
	if err != nil {
		return fail(c, err, "/admin", "admin.articles.publish")
	}
	applog.Audit(c, "admin.articles.publish", map[string]any{"ids": ids, "changed": n})
	return redirectWith(c, "/admin", "success", "Published "+strconv.Itoa(n)+" articles.")
}

// GET /admin/users
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	users, err := h.Auth.Members(principal(c))
	if err != nil {
		return fail(c, err, "/admin", "admin.users.list")
	}
	return render(c, "admin_users", fiber.Map{"Users": users})
}

// POST /admin/users/:id/delete
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, services.ErrNotFound, "/admin/users", "admin.users.delete")
	}
	if err := h.Auth.DeleteMember(principal(c), id); err != nil {
		return fail(c, err, "/admin/users", "admin.users.delete")
	}
	applog.Audit(c, "admin.users.delete", map[string]any{"target_user_id": id})
	return redirectWith(c, "/admin/users", "success", "User deleted.")
}

// POST /admin/users/:id/block
func (h *AdminHandler) BlockUser(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, services.ErrNotFound, "/admin/users", "admin.users.block")
	}
	blocked := c.FormValue("blocked") == "1"
	until := c.FormValue("until")
	if err := h.Auth.SetBlocked(principal(c), id, blocked, until); err != nil {
		return fail(c, err, "/admin/users", "admin.users.block")
	}
	applog.Audit(c, "admin.users.block", map[string]any{"target_user_id": id, "blocked": blocked, "until": until})
	if blocked {
		return redirectWith(c, "/admin/users", "warning", "User blocked.")
	}
	return redirectWith(c, "/admin/users", "success", "User unblocked.")
}
