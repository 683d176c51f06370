package handlers

import (
	"avecplaisir/internal/config"
	"avecplaisir/internal/repos"
	"avecplaisir/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	Auth     *services.AuthService
	CartSvc  *services.CartService
	Catalog  *CatalogHandler
	Cart     *CartHandler
	Blog     *BlogHandler
	Feedback *FeedbackHandler
	Account  *AuthHandler
	Admin    *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	prodRepo := repos.NewProductRepo(db)
	cartRepo := repos.NewCartRepo(db)
	userRepo := repos.NewUserRepo(db)

	authSvc := services.NewAuthService(userRepo)
	catalogSvc := services.NewCatalogService(prodRepo)
	cartSvc := services.NewCartService(cartRepo, prodRepo)
	blogSvc := services.NewBlogService(repos.NewArticleRepo(db), repos.NewCommentRepo(db))
	feedbackSvc := services.NewFeedbackService(repos.NewFeedbackRepo(db))

	return &Deps{
		Auth:     authSvc,
		CartSvc:  cartSvc,
		Catalog:  &CatalogHandler{Catalog: catalogSvc, Blog: blogSvc, MediaDir: cfg.MediaDir},
		Cart:     &CartHandler{Cart: cartSvc},
		Blog:     &BlogHandler{Blog: blogSvc, MediaDir: cfg.MediaDir},
		Feedback: &FeedbackHandler{Feedback: feedbackSvc},
		Account:  &AuthHandler{Auth: authSvc},
		Admin:    &AdminHandler{Blog: blogSvc, Feedback: feedbackSvc, Auth: authSvc, Catalog: catalogSvc},
	}
}
