// Package access decides who may do what. Every role check in the
// application goes through CanPerform.
package access

import "avecplaisir/internal/domain"

type Kind int

const (
	Anonymous Kind = iota
	Authenticated
	Staff
	Superuser
)

func (k Kind) String() string {
	switch k {
	case Authenticated:
		return "authenticated"
	case Staff:
		return "staff"
	case Superuser:
		return "superuser"
	default:
		return "anonymous"
	}
}

// Principal is the acting identity for one decision.
type Principal struct {
	Kind   Kind
	UserID int64
}

func (p Principal) SignedIn() bool { return p.Kind != Anonymous && p.UserID != 0 }
func (p Principal) IsStaff() bool  { return p.Kind == Staff || p.Kind == Superuser }

// Of maps a session user to a principal. A nil user is anonymous.
func Of(u *domain.User) Principal {
	if u == nil || u.ID == 0 {
		return Principal{Kind: Anonymous}
	}
	switch u.Role {
	case domain.RoleSuperuser:
		return Principal{Kind: Superuser, UserID: u.ID}
	case domain.RoleStaff:
		return Principal{Kind: Staff, UserID: u.ID}
	default:
		return Principal{Kind: Authenticated, UserID: u.ID}
	}
}

type Action int

const (
	CreateProduct Action = iota
	EditProduct
	DeleteProduct
	CreateArticle
	EditArticle
	DeleteArticle
	DeleteComment
	DeleteFeedback
	PostComment
	SubmitFeedback
	UseCart
	ModerateComments
	PublishArticles
	ExportFeedback
	ManageUsers
	UseBackOffice
)

var actionNames = map[Action]string{
	CreateProduct:    "product.create",
	EditProduct:      "product.edit",
	DeleteProduct:    "product.delete",
	CreateArticle:    "article.create",
	EditArticle:      "article.edit",
	DeleteArticle:    "article.delete",
	DeleteComment:    "comment.delete",
	DeleteFeedback:   "feedback.delete",
	PostComment:      "comment.post",
	SubmitFeedback:   "feedback.submit",
	UseCart:          "cart.use",
	ModerateComments: "comment.moderate",
	PublishArticles:  "article.publish",
	ExportFeedback:   "feedback.export",
	ManageUsers:      "user.manage",
	UseBackOffice:    "admin.access",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "unknown"
}

// Resource carries what a rule needs to know about the target.
// OwnerID is the author for comments and zero otherwise.
type Resource struct {
	OwnerID int64
}

type rule func(Principal, Resource) bool

func staffOnly(p Principal, _ Resource) bool { return p.IsStaff() }

func signedIn(p Principal, _ Resource) bool { return p.SignedIn() }

func staffOrOwner(p Principal, r Resource) bool {
	return p.IsStaff() || (p.SignedIn() && r.OwnerID != 0 && r.OwnerID == p.UserID)
}

var policy = map[Action]rule{
	CreateProduct:    staffOnly,
	EditProduct:      staffOnly,
	DeleteProduct:    staffOnly,
	CreateArticle:    staffOnly,
	EditArticle:      staffOnly,
	DeleteArticle:    staffOnly,
	DeleteComment:    staffOrOwner,
	DeleteFeedback:   staffOnly,
	ModerateComments: staffOnly,
	PublishArticles:  staffOnly,
	ExportFeedback:   staffOnly,
	ManageUsers:      staffOnly,
	UseBackOffice:    staffOnly,
	PostComment:      signedIn,
	SubmitFeedback:   signedIn,
	UseCart:          signedIn,
}

// CanPerform reports whether p may perform a on r. Unknown actions are denied.
func CanPerform(p Principal, a Action, r Resource) bool {
	allow, ok := policy[a]
	if !ok {
		return false
	}
	return allow(p, r)
}
