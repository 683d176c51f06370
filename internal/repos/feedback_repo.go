package repos

import (
	"avecplaisir/internal/domain"

	"github.com/jmoiron/sqlx"
)

type FeedbackRepo struct{ db *sqlx.DB }

func NewFeedbackRepo(db *sqlx.DB) *FeedbackRepo { return &FeedbackRepo{db: db} }

const feedbackCols = `id, name, email, overall_rating, liked_features, visit_frequency,
	recommendation, suggestions, agree_to_terms, created_at`

func (r *FeedbackRepo) Create(f *domain.Feedback) error {
	f.CreatedAt = Now()
	return r.db.Get(&f.ID, r.db.Rebind(`
		INSERT INTO feedback(name, email, overall_rating, liked_features, visit_frequency,
		                     recommendation, suggestions, agree_to_terms, created_at)
		VALUES(?,?,?,?,?,?,?,?,?)
		RETURNING id
	`), f.Name, f.Email, f.OverallRating, f.LikedFeatures, f.VisitFrequency,
		f.Recommendation, f.Suggestions, f.AgreeToTerms, f.CreatedAt)
}

// ListNewest returns all feedback, most recent first.
func (r *FeedbackRepo) ListNewest() ([]domain.Feedback, error) {
	out := []domain.Feedback{}
	err := r.db.Select(&out, `SELECT `+feedbackCols+` FROM feedback ORDER BY created_at DESC, id DESC`)
	return out, err
}

// ByEmail matches case-insensitively, newest first.
func (r *FeedbackRepo) ByEmail(email string) ([]domain.Feedback, error) {
	out := []domain.Feedback{}
	err := r.db.Select(&out, r.db.Rebind(`SELECT `+feedbackCols+`
		FROM feedback WHERE LOWER(email) = LOWER(?)
		ORDER BY created_at DESC, id DESC`), email)
	return out, err
}

func (r *FeedbackRepo) Delete(id int64) (bool, error) {
	res, err := r.db.Exec(r.db.Rebind(`DELETE FROM feedback WHERE id=?`), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
