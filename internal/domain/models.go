package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID          int64           `db:"id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Image       string          `db:"image"`
	Category    string          `db:"category"`
	CreatedAt   string          `db:"created_at"`
	UpdatedAt   string          `db:"updated_at"`
}

type Cart struct {
	ID        int64  `db:"id"`
	OwnerID   int64  `db:"owner_id"`
	CreatedAt string `db:"created_at"`
	IsActive  bool   `db:"is_active"`
}

type CartItem struct {
	ID        int64  `db:"id"`
	CartID    int64  `db:"cart_id"`
	ProductID int64  `db:"product_id"`
	Quantity  int    `db:"quantity"`
	AddedAt   string `db:"added_at"`
}

// CartLine is a cart item joined with the product it points at.
type CartLine struct {
	ItemID    int64           `db:"item_id"`
	ProductID int64           `db:"product_id"`
	Name      string          `db:"name"`
	Image     string          `db:"image"`
	Price     decimal.Decimal `db:"price"`
	Quantity  int             `db:"quantity"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type BlogArticle struct {
	ID            int64  `db:"id"`
	Title         string `db:"title"`
	ShortContent  string `db:"short_content"`
	FullContent   string `db:"full_content"`
	Image         string `db:"image"`
	PublishedDate string `db:"published_date"`
	CreatedAt     string `db:"created_at"`
	UpdatedAt     string `db:"updated_at"`
	CommentCount  int    `db:"comment_count"`
}

// Preview trims the full text for list pages.
func (a BlogArticle) Preview() string {
	r := []rune(a.FullContent)
	if len(r) > 150 {
		return string(r[:147]) + "..."
	}
	return a.FullContent
}

type Comment struct {
	ID          int64  `db:"id"`
	ArticleID   int64  `db:"article_id"`
	AuthorID    int64  `db:"author_id"`
	AuthorName  string `db:"author_name"`
	Text        string `db:"text"`
	CreatedDate string `db:"created_date"`
	Approved    bool   `db:"approved"`
}

// ModerationRow is a comment as shown on the staff moderation list.
type ModerationRow struct {
	Comment
	ArticleTitle string `db:"article_title"`
}

type Feedback struct {
	ID             int64  `db:"id"`
	Name           string `db:"name"`
	Email          string `db:"email"`
	OverallRating  string `db:"overall_rating"`
	LikedFeatures  string `db:"liked_features"`
	VisitFrequency string `db:"visit_frequency"`
	Recommendation int    `db:"recommendation"`
	Suggestions    string `db:"suggestions"`
	AgreeToTerms   bool   `db:"agree_to_terms"`
	CreatedAt      string `db:"created_at"`
}
