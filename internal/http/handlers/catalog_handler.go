package handlers

import (
	"strconv"

	"avecplaisir/internal/access"
	"avecplaisir/internal/domain"
	applog "avecplaisir/internal/log"
	"avecplaisir/internal/services"
	"avecplaisir/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type CatalogHandler struct {
	Catalog  *services.CatalogService
	Blog     *services.BlogService
	MediaDir string
}

// GET /
func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	prods, err := h.Catalog.List()
	if err != nil {
		applog.Error(c, "home.products.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load the shop")
	}
	arts, err := h.Blog.ListArticles()
	if err != nil {
		applog.Error(c, "home.articles.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load the shop")
	}
	if len(prods) > 4 {
		prods = prods[:4]
	}
	if len(arts) > 3 {
		arts = arts[:3]
	}
	return render(c, "home", fiber.Map{"Products": prods, "Articles": arts})
}

// GET /catalog
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	prods, err := h.Catalog.List()
	if err != nil {
		applog.Error(c, "catalog.list.fail", err, nil)
		return notFound(c, fiber.StatusInternalServerError, "Could not load products")
	}
	return render(c, "catalog", fiber.Map{
		"Products": prods,
		"CanEdit":  access.CanPerform(principal(c), access.EditProduct, access.Resource{}),
	})
}

// GET /catalog/add
func (h *CatalogHandler) NewForm(c *fiber.Ctx) error {
	if !allowed(c, access.CreateProduct, access.Resource{}) {
		return redirectWith(c, "/catalog", "error", "You do not have permission to create products.")
	}
	return render(c, "product_form", fiber.Map{"Heading": "Add product", "Action": "/catalog/add", "Product": domain.Product{}})
}

// POST /catalog/add
func (h *CatalogHandler) Create(c *fiber.Ctx) error {
	if !allowed(c, access.CreateProduct, access.Resource{}) {
		return redirectWith(c, "/catalog", "error", "You do not have permission to create products.")
	}
	img, err := saveImage(c, "image", h.MediaDir, "products")
	if err != nil {
		return fail(c, err, "/catalog/add", "catalog.product.create")
	}
	p, err := h.Catalog.Create(principal(c), productInput(c, img))
	if err != nil {
		discardImage(c, h.MediaDir, img)
		return fail(c, err, "/catalog/add", "catalog.product.create")
	}
	applog.Audit(c, "catalog.product.create", map[string]any{"product_id": p.ID, "price": p.Price.StringFixed(2)})
	return redirectWith(c, "/catalog", "success", "Product \""+p.Name+"\" created.")
}

// GET /catalog/edit/:id
func (h *CatalogHandler) EditForm(c *fiber.Ctx) error {
	if !allowed(c, access.EditProduct, access.Resource{}) {
		return redirectWith(c, "/catalog", "error", "You do not have permission to edit products.")
	}
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "This item is no longer available")
	}
	p, err := h.Catalog.Get(id)
	if err != nil {
		return fail(c, err, "/catalog", "catalog.product.edit")
	}
	return render(c, "product_form", fiber.Map{"Heading": "Edit product", "Action": "/catalog/edit/" + strconv.FormatInt(id, 10), "Product": p})
}

// POST /catalog/edit/:id
func (h *CatalogHandler) Update(c *fiber.Ctx) error {
	if !allowed(c, access.EditProduct, access.Resource{}) {
		return redirectWith(c, "/catalog", "error", "You do not have permission to edit products.")
	}
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "This item is no longer available")
	}
	back := "/catalog/edit/" + strconv.FormatInt(id, 10)
	prev, err := h.Catalog.Get(id)
	if err != nil {
		return fail(c, err, "/catalog", "catalog.product.edit")
	}
	img, err := saveImage(c, "image", h.MediaDir, "products")
	if err != nil {
		return fail(c, err, back, "catalog.product.edit")
	}
	p, err := h.Catalog.Update(principal(c), id, productInput(c, img))
	if err != nil {
		discardImage(c, h.MediaDir, img)
		return fail(c, err, back, "catalog.product.edit")
	}
	if img != "" && prev.Image != img {
		discardImage(c, h.MediaDir, prev.Image)
	}
	applog.Audit(c, "catalog.product.edit", map[string]any{"product_id": p.ID, "price": p.Price.StringFixed(2)})
	return redirectWith(c, "/catalog", "success", "Product \""+p.Name+"\" updated.")
}

// POST /catalog/delete/:id
func (h *CatalogHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, fiber.StatusNotFound, "This item is no longer available")
	}
	prev, err := h.Catalog.Get(id)
	if err != nil {
		return fail(c, err, "/catalog", "catalog.product.delete")
	}
	if err := h.Catalog.Delete(principal(c), id); err != nil {
		return fail(c, err, "/catalog", "catalog.product.delete")
	}
	discardImage(c, h.MediaDir, prev.Image)
	applog.Audit(c, "catalog.product.delete", map[string]any{"product_id": id})
	return redirectWith(c, "/catalog", "success", "Product deleted.")
}

func productInput(c *fiber.Ctx, img string) services.ProductInput {
	return services.ProductInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Price:       c.FormValue("price"),
		Category:    c.FormValue("category"),
		Image:       img,
	}
}
