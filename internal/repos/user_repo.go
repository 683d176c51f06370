package repos

import (
	"database/sql"

	"avecplaisir/internal/domain"

	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, email, name, password_hash, role`

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, r.DB.Rebind(`SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`), email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateWithProfile inserts the user and its empty profile together. A
// taken email is ErrDuplicate.
func (r *UserRepo) CreateWithProfile(u *domain.User) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ts := Now()
	if err := tx.Get(&u.ID, tx.Rebind(`
		INSERT INTO users(email,name,password_hash,role,created_at)
		VALUES(?,?,?,?,?)
		RETURNING id
	`), u.Email, u.Name, u.Hash, u.Role, ts); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	if _, err := tx.Exec(tx.Rebind(`INSERT INTO user_profiles(user_id, created_at) VALUES(?,?)`), u.ID, ts); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *UserRepo) Profile(userID int64) (*domain.Profile, error) {
	var p domain.Profile
	err := r.DB.Get(&p, r.DB.Rebind(`
		SELECT user_id, phone, address, is_blocked, blocked_until, created_at
		FROM user_profiles WHERE user_id=?`), userID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SetBlocked flips the block flag; until may be empty for an open-ended
// block. Superuser profiles are left alone and report false.
func (r *UserRepo) SetBlocked(userID int64, blocked bool, until string) (bool, error) {
	res, err := r.DB.Exec(r.DB.Rebind(`
		UPDATE user_profiles SET is_blocked=?, blocked_until=?
		WHERE user_id=? AND user_id NOT IN (SELECT id FROM users WHERE role = ?)`),
		blocked, sql.NullString{String: until, Valid: until != ""}, userID, domain.RoleSuperuser)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *UserRepo) BindSession(sid string, userID int64) error {
	ts := Now()
	_, err := r.DB.Exec(r.DB.Rebind(`
		INSERT INTO sessions(id,user_id,created_at,last_seen)
		VALUES(?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id, last_seen=excluded.last_seen
	`), sid, userID, ts, ts)
	return err
}

func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, r.DB.Rebind(`
		SELECT u.id,u.email,u.name,u.password_hash,u.role
		FROM sessions s
		JOIN users u ON u.id=s.user_id
		WHERE s.id=?`), sid)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.DB.Exec(r.DB.Rebind(`UPDATE sessions SET user_id=NULL, last_seen=? WHERE id=?`), Now(), sid)
	return err
}

// ListMembers returns every account except superusers with its block
// state, for the back office.
func (r *UserRepo) ListMembers() ([]domain.Member, error) {
	out := []domain.Member{}
	err := r.DB.Select(&out, r.DB.Rebind(`
		SELECT u.id, u.email, u.name, u.password_hash, u.role,
		       COALESCE(p.is_blocked, FALSE) AS is_blocked, p.blocked_until
		FROM users u LEFT JOIN user_profiles p ON p.user_id = u.id
		WHERE u.role <> ?
		ORDER BY u.email`), domain.RoleSuperuser)
	return out, err
}

// Delete removes a user. Profile, sessions, carts, comments cascade.
// Superusers are never deleted here.
func (r *UserRepo) Delete(userID int64) (bool, error) {
	res, err := r.DB.Exec(r.DB.Rebind(`DELETE FROM users WHERE id=? AND role <> ?`), userID, domain.RoleSuperuser)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
