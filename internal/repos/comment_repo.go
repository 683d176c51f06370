package repos

import (
	"avecplaisir/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CommentRepo struct{ db *sqlx.DB }

func NewCommentRepo(db *sqlx.DB) *CommentRepo { return &CommentRepo{db: db} }

const commentSelect = `
	SELECT c.id, c.article_id, c.author_id, u.name AS author_name, c.text, c.created_date, c.approved
	FROM comments c JOIN users u ON u.id = c.author_id`

func (r *CommentRepo) Create(c *domain.Comment) error {
	c.CreatedDate = Now()
	c.Approved = true
	return r.db.Get(&c.ID, r.db.Rebind(`
		INSERT INTO comments(article_id, author_id, text, created_date, approved)
		VALUES(?,?,?,?,?)
		RETURNING id
	`), c.ArticleID, c.AuthorID, c.Text, c.CreatedDate, c.Approved)
}

// ListApproved returns the visible comments of one article, newest first.
func (r *CommentRepo) ListApproved(articleID int64) ([]domain.Comment, error) {
	out := []domain.Comment{}
	err := r.db.Select(&out, r.db.Rebind(commentSelect+`
		WHERE c.article_id = ? AND c.approved
		ORDER BY c.created_date DESC, c.id DESC`), articleID)
	return out, err
}

func (r *CommentRepo) Get(id int64) (domain.Comment, error) {
	var c domain.Comment
	err := r.db.Get(&c, r.db.Rebind(commentSelect+` WHERE c.id = ?`), id)
	return c, err
}

func (r *CommentRepo) Delete(id int64) error {
	_, err := r.db.Exec(r.db.Rebind(`DELETE FROM comments WHERE id=?`), id)
	return err
}

// ListAll feeds the moderation page: every comment with its article title.
func (r *CommentRepo) ListAll() ([]domain.ModerationRow, error) {
	out := []domain.ModerationRow{}
	err := r.db.Select(&out, `
		SELECT c.id, c.article_id, c.author_id, u.name AS author_name, c.text, c.created_date, c.approved,
		       a.title AS article_title
		FROM comments c
		JOIN users u ON u.id = c.author_id
		JOIN articles a ON a.id = c.article_id
		ORDER BY c.created_date DESC, c.id DESC`)
	return out, err
}

// SetApproval sets the approved flag on every listed comment and returns
// how many rows changed.
func (r *CommentRepo) SetApproval(ids []int64, approved bool) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In(`UPDATE comments SET approved=? WHERE id IN (?)`, approved, ids)
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
