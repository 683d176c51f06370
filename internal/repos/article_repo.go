package repos

import (
	"avecplaisir/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ArticleRepo struct{ db *sqlx.DB }

func NewArticleRepo(db *sqlx.DB) *ArticleRepo { return &ArticleRepo{db: db} }

const articleSelect = `
	SELECT a.id, a.title, a.short_content, a.full_content, a.image, a.published_date,
	       a.created_at, a.updated_at,
	       (SELECT COUNT(*) FROM comments c WHERE c.article_id = a.id AND c.approved) AS comment_count
	FROM articles a`

// List returns articles newest first with their approved comment counts.
func (r *ArticleRepo) List() ([]domain.BlogArticle, error) {
	out := []domain.BlogArticle{}
	err := r.db.Select(&out, articleSelect+` ORDER BY a.published_date DESC, a.id DESC`)
	return out, err
}

func (r *ArticleRepo) Get(id int64) (domain.BlogArticle, error) {
	var a domain.BlogArticle
	err := r.db.Get(&a, r.db.Rebind(articleSelect+` WHERE a.id = ?`), id)
	return a, err
}

func (r *ArticleRepo) Create(a *domain.BlogArticle) error {
	ts := Now()
	a.CreatedAt, a.UpdatedAt = ts, ts
	if a.PublishedDate == "" {
		a.PublishedDate = ts
	}
	return r.db.Get(&a.ID, r.db.Rebind(`
		INSERT INTO articles(title, short_content, full_content, image, published_date, created_at, updated_at)
		VALUES(?,?,?,?,?,?,?)
		RETURNING id
	`), a.Title, a.ShortContent, a.FullContent, a.Image, a.PublishedDate, ts, ts)
}

func (r *ArticleRepo) Update(a *domain.BlogArticle) (bool, error) {
	a.UpdatedAt = Now()
	res, err := r.db.Exec(r.db.Rebind(`
		UPDATE articles SET title=?, short_content=?, full_content=?, image=?, updated_at=?
		WHERE id=?
	`), a.Title, a.ShortContent, a.FullContent, a.Image, a.UpdatedAt, a.ID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes the article and, by cascade, its comments.
func (r *ArticleRepo) Delete(id int64) (bool, error) {
	res, err := r.db.Exec(r.db.Rebind(`DELETE FROM articles WHERE id=?`), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Publish stamps the given articles with the current time so they lead the
// list. Returns the number of rows touched.
func (r *ArticleRepo) Publish(ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ts := Now()
	q, args, err := sqlx.In(`UPDATE articles SET published_date=?, updated_at=? WHERE id IN (?)`, ts, ts, ids)
	if err != nil {
		return 0, err
	}
	res, err := r.db.Exec(r.db.Rebind(q), args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
