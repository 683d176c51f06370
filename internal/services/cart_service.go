package services

import (
	"avecplaisir/internal/domain"
	"avecplaisir/internal/repos"

	"github.com/shopspring/decimal"
)

// MaxQuantity bounds a single cart line.
const MaxQuantity = 99

type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

// Add puts one unit of the product into the user's active cart. created
// tells a new line apart from an incremented one.
func (s *CartService) Add(userID, productID int64) (item domain.CartItem, created bool, err error) {
	if _, err := s.Prods.Get(productID); err != nil {
		return domain.CartItem{}, false, notFound(err)
	}
	cart, err := s.Carts.EnsureActive(userID)
	if err != nil {
		return domain.CartItem{}, false, err
	}
	return s.Carts.AddItem(cart.ID, productID)
}

// Remove deletes a line from one of the user's carts. Lines owned by
// anybody else are reported as missing.
func (s *CartService) Remove(userID, itemID int64) error {
	ok, err := s.Carts.RemoveOwned(userID, itemID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// UpdateQuantity sets the line quantity; zero or less removes the line.
func (s *CartService) UpdateQuantity(userID, itemID int64, qty int) (removed bool, err error) {
	if qty > MaxQuantity {
		return false, invalid("quantity", "must be at most 99")
	}
	if qty <= 0 {
		return true, s.Remove(userID, itemID)
	}
	ok, err := s.Carts.SetQuantityOwned(userID, itemID, qty)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrNotFound
	}
	return false, nil
}

type CartView struct {
	Cart       domain.Cart
	Items      []domain.CartLine
	TotalPrice decimal.Decimal
	TotalItems int
}

// View always prices lines at the current product price.
func (s *CartService) View(userID int64) (CartView, error) {
	cart, err := s.Carts.EnsureActive(userID)
	if err != nil {
		return CartView{}, err
	}
	lines, err := s.Carts.Lines(cart.ID)
	if err != nil {
		return CartView{}, err
	}
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return CartView{Cart: cart, Items: lines, TotalPrice: total, TotalItems: len(lines)}, nil
}

// Clear empties the active cart and returns how many lines it held.
func (s *CartService) Clear(userID int64) (int, error) {
	cart, err := s.Carts.EnsureActive(userID)
	if err != nil {
		return 0, err
	}
	return s.Carts.Clear(cart.ID)
}

func (s *CartService) Count(userID int64) (int, error) {
	return s.Carts.CountActive(userID)
}
