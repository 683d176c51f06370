package services

import (
	"avecplaisir/internal/access"
	"avecplaisir/internal/domain"
	"avecplaisir/internal/repos"
	"avecplaisir/internal/validate"
)

type BlogService struct {
	Articles *repos.ArticleRepo
	Comments *repos.CommentRepo
}

func NewBlogService(articles *repos.ArticleRepo, comments *repos.CommentRepo) *BlogService {
	return &BlogService{Articles: articles, Comments: comments}
}

// ArticleInput is the article form. Image is the stored media path,
// empty to keep the current image on update.
type ArticleInput struct {
	Title        string
	ShortContent string
	FullContent  string
	Image        string
}

func (in ArticleInput) build() (domain.BlogArticle, error) {
	var a domain.BlogArticle
	var ok bool
	if a.Title, ok = validate.Title(in.Title); !ok {
		return a, invalid("title", "must be 1 to 200 characters")
	}
	if a.ShortContent, ok = validate.Text(in.ShortContent, 0, 500); !ok {
		return a, invalid("short_content", "must be at most 500 characters")
	}
	if a.FullContent, ok = validate.Text(in.FullContent, 1, 50000); !ok {
		return a, invalid("full_content", "is required")
	}
	a.Image = in.Image
	return a, nil
}

type ArticlePage struct {
	Article  domain.BlogArticle
	Comments []domain.Comment
}

func (s *BlogService) ListArticles() ([]domain.BlogArticle, error) {
	return s.Articles.List()
}

// Article loads one article with its approved comments, newest first.
func (s *BlogService) Article(id int64) (ArticlePage, error) {
	a, err := s.Articles.Get(id)
	if err != nil {
		return ArticlePage{}, notFound(err)
	}
	cs, err := s.Comments.ListApproved(id)
	if err != nil {
		return ArticlePage{}, err
	}
	return ArticlePage{Article: a, Comments: cs}, nil
}

func (s *BlogService) CreateArticle(p access.Principal, in ArticleInput) (domain.BlogArticle, error) {
	if !access.CanPerform(p, access.CreateArticle, access.Resource{}) {
		return domain.BlogArticle{}, ErrForbidden
	}
	a, err := in.build()
	if err != nil {
		return a, err
	}
	if err := s.Articles.Create(&a); err != nil {
		return domain.BlogArticle{}, err
	}
	return a, nil
}

func (s *BlogService) UpdateArticle(p access.Principal, id int64, in ArticleInput) (domain.BlogArticle, error) {
	if !access.CanPerform(p, access.EditArticle, access.Resource{}) {
		return domain.BlogArticle{}, ErrForbidden
	}
	cur, err := s.Articles.Get(id)
	if err != nil {
		return domain.BlogArticle{}, notFound(err)
	}
	a, err := in.build()
	if err != nil {
		return a, err
	}
	a.ID, a.PublishedDate, a.CreatedAt = cur.ID, cur.PublishedDate, cur.CreatedAt
	if a.Image == "" {
		a.Image = cur.Image
	}
	ok, err := s.Articles.Update(&a)
	if err != nil {
		return domain.BlogArticle{}, err
	}
	if !ok {
		return domain.BlogArticle{}, ErrNotFound
	}
	return a, nil
}

func (s *BlogService) DeleteArticle(p access.Principal, id int64) error {
	if !access.CanPerform(p, access.DeleteArticle, access.Resource{}) {
		return ErrForbidden
	}
	ok, err := s.Articles.Delete(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// AddComment posts an approved comment on an existing article.
func (s *BlogService) AddComment(u *domain.User, articleID int64, text string) (domain.Comment, error) {
	if !access.CanPerform(access.Of(u), access.PostComment, access.Resource{}) {
		return domain.Comment{}, ErrForbidden
	}
	body, ok := validate.Text(text, 3, 2000)
	if !ok {
		return domain.Comment{}, invalid("text", "must be 3 to 2000 characters")
	}
	if _, err := s.Articles.Get(articleID); err != nil {
		return domain.Comment{}, notFound(err)
	}
	c := domain.Comment{ArticleID: articleID, AuthorID: u.ID, AuthorName: u.Name, Text: body}
	if err := s.Comments.Create(&c); err != nil {
		return domain.Comment{}, err
	}
	return c, nil
}

// DeleteComment removes a comment when p is its author or staff. It
// returns the article id so the caller can go back to it.
func (s *BlogService) DeleteComment(p access.Principal, commentID int64) (int64, error) {
	c, err := s.Comments.Get(commentID)
	if err != nil {
		return 0, notFound(err)
	}
	if !access.CanPerform(p, access.DeleteComment, access.Resource{OwnerID: c.AuthorID}) {
		return c.ArticleID, ErrForbidden
	}
	return c.ArticleID, s.Comments.Delete(commentID)
}

// Moderation lists every comment, hidden ones included.
func (s *BlogService) Moderation(p access.Principal) ([]domain.ModerationRow, error) {
	if !access.CanPerform(p, access.ModerateComments, access.Resource{}) {
		return nil, ErrForbidden
	}
	return s.Comments.ListAll()
}

// SetApproval approves or hides the listed comments and returns how many
// changed.
func (s *BlogService) SetApproval(p access.Principal, ids []int64, approved bool) (int, error) {
	if !access.CanPerform(p, access.ModerateComments, access.Resource{}) {
		return 0, ErrForbidden
	}
	return s.Comments.SetApproval(ids, approved)
}

func (s *BlogService) Publish(p access.Principal, ids []int64) (int, error) {
	if !access.CanPerform(p, access.PublishArticles, access.Resource{}) {
		return 0, ErrForbidden
	}
	return s.Articles.Publish(ids)
}
