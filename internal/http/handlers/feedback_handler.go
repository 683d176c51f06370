package handlers

import (
	"bytes"
	"time"

	"avecplaisir/internal/access"
	applog "avecplaisir/internal/log"
	"avecplaisir/internal/services"
	"avecplaisir/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type FeedbackHandler struct {
	Feedback *services.FeedbackService
}

// GET /feedback
func (h *FeedbackHandler) Form(c *fiber.Ctx) error {
	return render(c, "feedback", fiber.Map{
		"Ratings":     services.Ratings,
		"Features":    services.Features,
		"Frequencies": services.Frequencies,
	})
}

// POST /feedback
func (h *FeedbackHandler) Submit(c *fiber.Ctx) error {
	var liked []string
	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		if string(k) == "liked_features" {
			liked = append(liked, string(v))
		}
	})
	if form, err := c.MultipartForm(); err == nil {
		liked = append(liked, form.Value["liked_features"]...)
	}

	in := services.FeedbackInput{
		Name:           c.FormValue("name"),
		OverallRating:  c.FormValue("overall_rating"),
		LikedFeatures:  liked,
		VisitFrequency: c.FormValue("visit_frequency"),
		Recommendation: c.FormValue("recommendation"),
		Suggestions:    c.FormValue("suggestions"),
		AgreeToTerms:   c.FormValue("agree_to_terms") != "",
	}
	f, err := h.Feedback.Submit(currentUser(c), in)
	if err != nil {
		return fail(c, err, "/feedback", "feedback.submit")
	}
	applog.Audit(c, "feedback.submit", map[string]any{"feedback_id": f.ID, "recommendation": f.Recommendation})
	return redirectWith(c, "/feedback/all", "success", "Thank you for your feedback!")
}

// GET /feedback/all
func (h *FeedbackHandler) List(c *fiber.Ctx) error {
	list, err := h.Feedback.List()
	if err != nil {
		applog.Error(c, "feedback.list.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load feedback")
	}
	p := principal(c)
	return render(c, "feedback_list", fiber.Map{
		"List":              list,
		"CanExport":         access.CanPerform(p, access.ExportFeedback, access.Resource{}),
		"CanDeleteFeedback": access.CanPerform(p, access.DeleteFeedback, access.Resource{}),
	})
}

// GET /my-feedbacks
func (h *FeedbackHandler) Mine(c *fiber.Ctx) error {
	items, err := h.Feedback.Mine(currentUser(c))
	if err != nil {
		return fail(c, err, "/", "feedback.mine")
	}
	return render(c, "my_feedbacks", fiber.Map{"Items": items})
}

// POST /feedback/delete/:id
func (h *FeedbackHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, services.ErrNotFound, "/feedback/all", "feedback.delete")
	}
	if err := h.Feedback.Delete(principal(c), id); err != nil {
		return fail(c, err, "/feedback/all", "feedback.delete")
	}
	applog.Audit(c, "feedback.delete", map[string]any{"feedback_id": id})
	return redirectWith(c, "/feedback/all", "success", "Feedback deleted.")
}

// GET /feedback/export
func (h *FeedbackHandler) Export(c *fiber.Ctx) error {
	var buf bytes.Buffer
	n, err := h.Feedback.Export(principal(c), &buf)
	if err != nil {
		return fail(c, err, "/feedback/all", "feedback.export")
	}
	applog.Audit(c, "feedback.export", map[string]any{"rows": n})
	name := "feedback-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(buf.Bytes())
}
