package services

import (
	"io"
	"strings"

	"avecplaisir/internal/access"
	"avecplaisir/internal/domain"
	"avecplaisir/internal/repos"
	"avecplaisir/internal/validate"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

var (
	Ratings      = []string{"1", "2", "3", "4", "5"}
	Features     = []string{"design", "navigation", "products", "prices", "delivery", "support"}
	Frequencies  = []string{"first", "rarely", "monthly", "weekly", "daily"}
	exportHeader = []string{"ID", "Name", "Email", "Rating", "Liked", "Visits", "Recommendation", "Suggestions", "Submitted"}
)

type FeedbackService struct {
	Feedback *repos.FeedbackRepo
}

func NewFeedbackService(fb *repos.FeedbackRepo) *FeedbackService {
	return &FeedbackService{Feedback: fb}
}

// FeedbackInput is the survey form as submitted.
type FeedbackInput struct {
	Name           string
	OverallRating  string
	LikedFeatures  []string
	VisitFrequency string
	Recommendation string
	Suggestions    string
	AgreeToTerms   bool
}

type FeedbackList struct {
	Items                 []domain.Feedback
	Total                 int
	AverageRecommendation decimal.Decimal
}

// List returns every submission newest first with the average
// recommendation rounded to one decimal (zero when there is none).
func (s *FeedbackService) List() (FeedbackList, error) {
	items, err := s.Feedback.ListNewest()
	if err != nil {
		return FeedbackList{}, err
	}
	return FeedbackList{Items: items, Total: len(items), AverageRecommendation: average(items)}, nil
}

func average(items []domain.Feedback) decimal.Decimal {
	if len(items) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, f := range items {
		sum = sum.Add(decimal.NewFromInt(int64(f.Recommendation)))
	}
	return sum.Div(decimal.NewFromInt(int64(len(items)))).Round(1)
}

// Submit stores a survey answer from a signed-in user. The stored email
// is always the account email.
func (s *FeedbackService) Submit(u *domain.User, in FeedbackInput) (domain.Feedback, error) {
	if !access.CanPerform(access.Of(u), access.SubmitFeedback, access.Resource{}) {
		return domain.Feedback{}, ErrForbidden
	}
	f, err := in.build()
	if err != nil {
		return domain.Feedback{}, err
	}
	f.Email = u.Email
	if err := s.Feedback.Create(&f); err != nil {
		return domain.Feedback{}, err
	}
	return f, nil
}

func (in FeedbackInput) build() (domain.Feedback, error) {
	var f domain.Feedback
	var ok bool
	if f.Name, ok = validate.Name(in.Name); !ok {
		return f, invalid("name", "must be 2 to 100 characters")
	}
	if f.OverallRating, ok = validate.OneOf(in.OverallRating, Ratings...); !ok {
		return f, invalid("overall_rating", "pick a rating from 1 to 5")
	}
	if f.LikedFeatures, ok = validate.SubsetOf(in.LikedFeatures, Features...); !ok {
		return f, invalid("liked_features", "unknown feature")
	}
	if f.VisitFrequency, ok = validate.OneOf(in.VisitFrequency, Frequencies...); !ok {
		return f, invalid("visit_frequency", "pick how often you visit")
	}
	rec, ok := validate.Int(in.Recommendation)
	if !ok || rec < 0 || rec > 10 {
		return f, invalid("recommendation", "must be between 0 and 10")
	}
	f.Recommendation = rec
	if f.Suggestions, ok = validate.Text(in.Suggestions, 0, 1000); !ok {
		return f, invalid("suggestions", "must be at most 1000 characters")
	}
	if !in.AgreeToTerms {
		return f, invalid("agree_to_terms", "you must agree to the terms")
	}
	f.AgreeToTerms = true
	return f, nil
}

// Mine lists what the user submitted, matched on the account email.
func (s *FeedbackService) Mine(u *domain.User) ([]domain.Feedback, error) {
	if u == nil {
		return nil, ErrForbidden
	}
	return s.Feedback.ByEmail(u.Email)
}

func (s *FeedbackService) Delete(p access.Principal, id int64) error {
	if !access.CanPerform(p, access.DeleteFeedback, access.Resource{}) {
		return ErrForbidden
	}
	ok, err := s.Feedback.Delete(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Export writes all submissions as an xlsx workbook with one sheet.
func (s *FeedbackService) Export(p access.Principal, w io.Writer) (int, error) {
	if !access.CanPerform(p, access.ExportFeedback, access.Resource{}) {
		return 0, ErrForbidden
	}
	items, err := s.Feedback.ListNewest()
	if err != nil {
		return 0, err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Feedback")
	if err != nil {
		return 0, err
	}
	header := sheet.AddRow()
	for _, h := range exportHeader {
		header.AddCell().SetValue(h)
	}
	for _, f := range items {
		row := sheet.AddRow()
		row.AddCell().SetValue(f.ID)
		row.AddCell().SetValue(f.Name)
		row.AddCell().SetValue(f.Email)
		row.AddCell().SetValue(f.OverallRating)
		row.AddCell().SetValue(strings.ReplaceAll(f.LikedFeatures, ",", ", "))
		row.AddCell().SetValue(f.VisitFrequency)
		row.AddCell().SetValue(f.Recommendation)
		row.AddCell().SetValue(f.Suggestions)
		row.AddCell().SetValue(f.CreatedAt)
	}
	return len(items), file.Write(w)
}
