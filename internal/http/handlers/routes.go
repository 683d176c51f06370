package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Routes mounts the session loader and every page. Transport middleware
// (request id, CSRF, limiter, static files) is installed by the caller
// beforehand; the 404 fallback is installed last. loginGuards run in front
// of POST /login (the login throttle in production).
func Routes(app *fiber.App, d *Deps, loginGuards ...fiber.Handler) {
	app.Use(LoadUser(d.Auth, d.CartSvc))
	signedIn := RequireUser()

	// Public pages
	app.Get("/", d.Catalog.Home)
	app.Get("/catalog", d.Catalog.List)
	app.Get("/blog", d.Blog.List)
	app.Get("/blog/article/:id", d.Blog.Detail)
	app.Get("/feedback/all", d.Feedback.List)

	// Account
	app.Get("/login", d.Account.LoginForm)
	app.Post("/login", append(loginGuards, d.Account.Login)...)
	app.Get("/register", d.Account.RegisterForm)
	app.Post("/register", d.Account.Register)
	app.Post("/logout", d.Account.Logout)

	// Cart
	cart := app.Group("/cart", signedIn)
	cart.Get("/", d.Cart.View)
	cart.Post("/add/:productId", d.Cart.Add)
	cart.Post("/remove/:itemId", d.Cart.Remove)
	cart.Post("/update/:itemId", d.Cart.Update)
	cart.Post("/clear", d.Cart.Clear)

	// Comments & feedback
	app.Post("/blog/article/:id", signedIn, d.Blog.Comment)
	app.Post("/blog/comment/delete/:id", signedIn, d.Blog.DeleteComment)
	app.Get("/feedback", signedIn, d.Feedback.Form)
	app.Post("/feedback", signedIn, d.Feedback.Submit)
	app.Get("/my-feedbacks", signedIn, d.Feedback.Mine)

	// Staff actions, guard-checked in the handlers
	app.Get("/catalog/add", signedIn, d.Catalog.NewForm)
	app.Post("/catalog/add", signedIn, d.Catalog.Create)
	app.Get("/catalog/edit/:id", signedIn, d.Catalog.EditForm)
	app.Post("/catalog/edit/:id", signedIn, d.Catalog.Update)
	app.Post("/catalog/delete/:id", signedIn, d.Catalog.Delete)
	app.Get("/blog/create", signedIn, d.Blog.NewForm)
	app.Post("/blog/create", signedIn, d.Blog.Create)
	app.Get("/blog/edit/:id", signedIn, d.Blog.EditForm)
	app.Post("/blog/edit/:id", signedIn, d.Blog.Update)
	app.Post("/blog/delete/:id", signedIn, d.Blog.Delete)
	app.Post("/feedback/delete/:id", signedIn, d.Feedback.Delete)
	app.Get("/feedback/export", signedIn, d.Feedback.Export)

	// Back office
	admin := app.Group("/admin", RequireStaff())
	admin.Get("/", d.Admin.Dashboard)
	admin.Get("/comments", d.Admin.Comments)
	admin.Post("/comments/approve", d.Admin.ApproveComments)
	admin.Post("/comments/hide", d.Admin.HideComments)
	admin.Post("/articles/publish", d.Admin.PublishArticles)
	admin.Get("/users", d.Admin.Users)
	admin.Post("/users/:id/block", d.Admin.BlockUser)
	admin.Post("/users/:id/delete", d.Admin.DeleteUser)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return notFound(c, fiber.StatusNotFound, "Page not found")
	})
}
