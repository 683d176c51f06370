package services

import (
	"database/sql"
	"errors"
	"strings"

	"avecplaisir/internal/access"
	"avecplaisir/internal/domain"
	"avecplaisir/internal/repos"
	"avecplaisir/internal/validate"

	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	Users *repos.UserRepo
}

func NewAuthService(users *repos.UserRepo) *AuthService { return &AuthService{Users: users} }

// Register creates a USER account and its profile. A taken email is
// ErrConflict.
func (s *AuthService) Register(email, name, password string) (*domain.User, error) {
	email, ok := validate.Email(email)
	if !ok {
		return nil, invalid("email", "enter a valid email address")
	}
	name, ok = validate.Name(name)
	if !ok {
		return nil, invalid("name", "must be 2 to 100 characters")
	}
	if !validate.Password(password) {
		return nil, invalid("password", "8 to 64 characters with upper and lower case, a digit and a symbol")
	}
	if _, err := s.Users.ByEmail(email); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{Email: strings.ToLower(email), Name: name, Hash: string(hash), Role: domain.RoleUser}
	if err := s.Users.CreateWithProfile(u); errors.Is(err, repos.ErrDuplicate) {
		return nil, ErrConflict
	} else if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if blocked, err := s.blocked(u.ID); err != nil {
		return nil, err
	} else if blocked {
		return nil, ErrBlocked
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// blocked is true for an open-ended block or one that ends in the future.
func (s *AuthService) blocked(userID int64) (bool, error) {
	p, err := s.Users.Profile(userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !p.IsBlocked {
		return false, nil
	}
	return !p.BlockedUntil.Valid || p.BlockedUntil.String > repos.Now(), nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}

func (s *AuthService) Members(p access.Principal) ([]domain.Member, error) {
	if !access.CanPerform(p, access.ManageUsers, access.Resource{}) {
		return nil, ErrForbidden
	}
	return s.Users.ListMembers()
}

// DeleteMember removes a non-superuser account other than the caller's.
func (s *AuthService) DeleteMember(p access.Principal, id int64) error {
	if !access.CanPerform(p, access.ManageUsers, access.Resource{}) || id == p.UserID {
		return ErrForbidden
	}
	ok, err := s.Users.Delete(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// SetBlocked blocks or unblocks a member. until is an optional last day
// ("2006-01-02"); the block lifts at the start of that day. Unblocking
// clears it.
func (s *AuthService) SetBlocked(p access.Principal, id int64, blocked bool, until string) error {
	if !access.CanPerform(p, access.ManageUsers, access.Resource{}) || id == p.UserID {
		return ErrForbidden
	}
	stamp := ""
	if blocked && strings.TrimSpace(until) != "" {
		d, ok := validate.Date(until)
		if !ok {
			return invalid("blocked_until", "must be a date")
		}
		stamp = d.UTC().Format(repos.TimeLayout)
	}
	ok, err := s.Users.SetBlocked(id, blocked, stamp)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
