package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	reEmail    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reCategory = regexp.MustCompile(`^[a-z][a-z0-9-]{0,39}$`)
	maxPrice   = decimal.NewFromInt(1_000_000)
)

func runes(s string) int { return utf8.RuneCountInString(s) }

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Name validates a person's name as typed into the feedback and
// registration forms.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if n := runes(s); n < 2 || n > 100 {
		return "", false
	}
	return s, true
}

// Title is used for product names and article titles.
func Title(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if n := runes(s); n == 0 || n > 200 {
		return "", false
	}
	return s, true
}

// Text trims s and checks its length in characters against [min,max].
func Text(s string, min, max int) (string, bool) {
	s = strings.TrimSpace(s)
	n := runes(s)
	return s, n >= min && n <= max
}

// ID parses a positive database id from a path parameter or form field.
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// IDs parses every entry and drops the invalid ones.
func IDs(ss []string) []int64 {
	out := make([]int64, 0, len(ss))
	for _, s := range ss {
		if id, ok := ID(s); ok {
			out = append(out, id)
		}
	}
	return out
}

// Date parses a calendar day as sent by an <input type="date">, in UTC.
func Date(s string) (time.Time, bool) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	return d, err == nil
}

// Int parses a whole number; range checks are left to the caller.
func Int(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}

// Price accepts a non-negative amount with at most two fraction digits.
func Price(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() || d.GreaterThanOrEqual(maxPrice) {
		return decimal.Zero, false
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return decimal.Zero, false
	}
	return d.Round(2), true
}

// Category is a lowercase slug; empty means the default.
func Category(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "souvenirs", true
	}
	return s, reCategory.MatchString(s)
}

// OneOf reports whether s is one of the allowed values.
func OneOf(s string, allowed ...string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, a := range allowed {
		if s == a {
			return s, true
		}
	}
	return "", false
}

// SubsetOf joins the selected values with commas after checking each one
// against allowed. Duplicates are dropped, order is kept.
func SubsetOf(selected []string, allowed ...string) (string, bool) {
	seen := map[string]bool{}
	out := make([]string, 0, len(selected))
	for _, s := range selected {
		v, ok := OneOf(s, allowed...)
		if !ok {
			return "", false
		}
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return strings.Join(out, ","), true
}

// Password enforces a length window plus the four character classes.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 64 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
