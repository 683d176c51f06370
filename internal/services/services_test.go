package services

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"avecplaisir/internal/access"
	"avecplaisir/internal/domain"
	"avecplaisir/internal/repos"
)

type env struct {
	db       *sqlx.DB
	users    *repos.UserRepo
	catalog  *CatalogService
	cart     *CartService
	blog     *BlogService
	feedback *FeedbackService
	auth     *AuthService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvAt(t, ":memory:")
}

// newFileEnv backs the services with a SQLite file, for tests that run
// callers concurrently through the connection pool.
func newFileEnv(t *testing.T) *env {
	t.Helper()
	return newEnvAt(t, filepath.Join(t.TempDir(), "shop.db"))
}

func newEnvAt(t *testing.T, dsn string) *env {
	t.Helper()
	db, err := repos.OpenDB(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	prods := repos.NewProductRepo(db)
	users := repos.NewUserRepo(db)
	return &env{
		db:       db,
		users:    users,
		catalog:  NewCatalogService(prods),
		cart:     NewCartService(repos.NewCartRepo(db), prods),
		blog:     NewBlogService(repos.NewArticleRepo(db), repos.NewCommentRepo(db)),
		feedback: NewFeedbackService(repos.NewFeedbackRepo(db)),
		auth:     NewAuthService(users),
	}
}

func (e *env) user(t *testing.T, name string) *domain.User {
	t.Helper()
	u, err := e.users.ByEmail(name + "@avecplaisir.test")
	require.NoError(t, err)
	return u
}

func (e *env) principal(t *testing.T, name string) access.Principal {
	return access.Of(e.user(t, name))
}

func (e *env) products(t *testing.T) []domain.Product {
	t.Helper()
	ps, err := e.catalog.List()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(ps), 2)
	return ps
}
