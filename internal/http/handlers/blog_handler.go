package handlers

import (
	"errors"
	"strconv"

	"avecplaisir/internal/access"
	"avecplaisir/internal/domain"
	applog "avecplaisir/internal/log"
	"avecplaisir/internal/services"
	"avecplaisir/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type BlogHandler struct {
	Blog     *services.BlogService
	MediaDir string
}

func articlePath(id int64) string { return "/blog/article/" + strconv.FormatInt(id, 10) }

// GET /blog
func (h *BlogHandler) List(c *fiber.Ctx) error {
	arts, err := h.Blog.ListArticles()
	if err != nil {
		applog.Error(c, "blog.list.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load the blog")
	}
	return render(c, "blog_list", fiber.Map{
		"Articles": arts,
		"CanEdit":  access.CanPerform(principal(c), access.CreateArticle, access.Resource{}),
	})
}

// GET /blog/article/:id
func (h *BlogHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Article not found")
	}
	page, err := h.Blog.Article(id)
	if err != nil {
		return notFound(c, fiber.StatusNotFound, "Article not found")
	}
	p := principal(c)
	canDelete := map[int64]bool{}
	for _, cm := range page.Comments {
		canDelete[cm.ID] = access.CanPerform(p, access.DeleteComment, access.Resource{OwnerID: cm.AuthorID})
	}
	return render(c, "article", fiber.Map{
		"Article":   page.Article,
		"Comments":  page.Comments,
		"CanDelete": canDelete,
		"CanEdit":   access.CanPerform(p, access.EditArticle, access.Resource{}),
	})
}

// POST /blog/article/:id
func (h *BlogHandler) Comment(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Article not found")
	}
	cm, err := h.Blog.AddComment(currentUser(c), id, c.FormValue("text"))
	if err != nil {
		back := articlePath(id)
		if errors.Is(err, services.ErrNotFound) {
			back = "/blog"
		}
		return fail(c, err, back, "blog.comment.create")
	}
	applog.Audit(c, "blog.comment.create", map[string]any{"article_id": id, "comment_id": cm.ID})
	return redirectWith(c, articlePath(id), "success", "Your comment has been added!")
}

// POST /blog/comment/delete/:id
func (h *BlogHandler) DeleteComment(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, services.ErrNotFound, "/blog", "blog.comment.delete")
	}
	articleID, err := h.Blog.DeleteComment(principal(c), id)
	if err != nil {
		back := "/blog"
		if articleID != 0 {
			back = articlePath(articleID)
		}
		return fail(c, err, back, "blog.comment.delete")
	}
	applog.Audit(c, "blog.comment.delete", map[string]any{"comment_id": id, "article_id": articleID})
	return redirectWith(c, articlePath(articleID), "success", "Comment deleted.")
}

// GET /blog/create
func (h *BlogHandler) NewForm(c *fiber.Ctx) error {
	if !allowed(c, access.CreateArticle, access.Resource{}) {
		return redirectWith(c, "/blog", "error", "You do not have permission to create articles.")
	}
	return render(c, "article_form", fiber.Map{"Heading": "New article", "Action": "/blog/create", "Article": domain.BlogArticle{}})
}

// POST /blog/create
func (h *BlogHandler) Create(c *fiber.Ctx) error {
	if !allowed(c, access.CreateArticle, access.Resource{}) {
		return redirectWith(c, "/blog", "error", "You do not have permission to create articles.")
	}
	img, err := saveImage(c, "image", h.MediaDir, "blog_images")
	if err != nil {
		return fail(c, err, "/blog/create", "blog.article.create")
	}
	a, err := h.Blog.CreateArticle(principal(c), articleInput(c, img))
	if err != nil {
		discardImage(c, h.MediaDir, img)
		return fail(c, err, "/blog/create", "blog.article.create")
	}
	applog.Audit(c, "blog.article.create", map[string]any{"article_id": a.ID})
	return redirectWith(c, "/blog", "success", "Article \""+a.Title+"\" created.")
}

// GET /blog/edit/:id
func (h *BlogHandler) EditForm(c *fiber.Ctx) error {
	if !allowed(c, access.EditArticle, access.Resource{}) {
		return redirectWith(c, "/blog", "error", "You do not have permission to edit articles.")
	}
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Article not found")
	}
	page, err := h.Blog.Article(id)
	if err != nil {
		return fail(c, err, "/blog", "blog.article.edit")
	}
	return render(c, "article_form", fiber.Map{"Heading": "Edit article", "Action": "/blog/edit/" + strconv.FormatInt(id, 10), "Article": page.Article})
}

// POST /blog/edit/:id
func (h *BlogHandler) Update(c *fiber.Ctx) error {
	if !allowed(c, access.EditArticle, access.Resource{}) {
		return redirectWith(c, "/blog", "error", "You do not have permission to edit articles.")
	}
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Article not found")
	}
	back := "/blog/edit/" + strconv.FormatInt(id, 10)
	prev, err := h.Blog.Article(id)
	if err != nil {
		return fail(c, err, "/blog", "blog.article.edit")
	}
	img, err := saveImage(c, "image", h.MediaDir, "blog_images")
	if err != nil {
		return fail(c, err, back, "blog.article.edit")
	}
	a, err := h.Blog.UpdateArticle(principal(c), id, articleInput(c, img))
	if err != nil {
		discardImage(c, h.MediaDir, img)
		return fail(c, err, back, "blog.article.edit")
	}
	if img != "" && prev.Article.Image != img {
		discardImage(c, h.MediaDir, prev.Article.Image)
	}
	applog.Audit(c, "blog.article.edit", map[string]any{"article_id": a.ID})
	return redirectWith(c, articlePath(a.ID), "success", "Article \""+a.Title+"\" updated.")
}

// POST /blog/delete/:id
func (h *BlogHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "Article not found")
	}
	prev, err := h.Blog.Article(id)
	if err != nil {
		return fail(c, err, "/blog", "blog.article.delete")
	}
	if err := h.Blog.DeleteArticle(principal(c), id); err != nil {
		return fail(c, err, "/blog", "blog.article.delete")
	}
	discardImage(c, h.MediaDir, prev.Article.Image)
	applog.Audit(c, "blog.article.delete", map[string]any{"article_id": id})
	return redirectWith(c, "/blog", "success", "Article deleted.")
}

func articleInput(c *fiber.Ctx, img string) services.ArticleInput {
	return services.ArticleInput{
		Title:        c.FormValue("title"),
		ShortContent: c.FormValue("short_content"),
		FullContent:  c.FormValue("full_content"),
		Image:        img,
	}
}
