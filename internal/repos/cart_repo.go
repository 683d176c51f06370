package repos

import (
	"avecplaisir/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// EnsureActive returns the owner's active cart, creating it if needed. The
// partial unique index on carts(owner_id) makes concurrent callers converge
// on one row.
func (r *CartRepo) EnsureActive(ownerID int64) (domain.Cart, error) {
	var c domain.Cart
	err := r.db.Get(&c, r.db.Rebind(`
		INSERT INTO carts(owner_id, created_at, is_active)
		VALUES(?,?,?)
		ON CONFLICT (owner_id) WHERE is_active
		DO UPDATE SET is_active = excluded.is_active
		RETURNING id, owner_id, created_at, is_active
	`), ownerID, Now(), true)
	return c, err
}

// AddItem inserts the product with quantity 1 or bumps an existing line by
// one in a single statement. created is true when the line is new.
func (r *CartRepo) AddItem(cartID, productID int64) (item domain.CartItem, created bool, err error) {
	err = r.db.Get(&item, r.db.Rebind(`
		INSERT INTO cart_items(cart_id, product_id, quantity, added_at)
		VALUES(?,?,1,?)
		ON CONFLICT(cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + 1
		RETURNING id, cart_id, product_id, quantity, added_at
	`), cartID, productID, Now())
	return item, item.Quantity == 1, err
}

func (r *CartRepo) Lines(cartID int64) ([]domain.CartLine, error) {
	out := []domain.CartLine{}
	err := r.db.Select(&out, r.db.Rebind(`
		SELECT ci.id AS item_id, ci.product_id, p.name, p.image, p.price, ci.quantity
		FROM cart_items ci JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = ?
		ORDER BY ci.added_at, ci.id
	`), cartID)
	return out, err
}

// ownedItem scopes an item id to carts of the given owner.
const ownedItem = `id = ? AND cart_id IN (SELECT id FROM carts WHERE owner_id = ?)`

// RemoveOwned deletes the item only when it sits in one of the owner's
// carts. It reports false when nothing matched.
func (r *CartRepo) RemoveOwned(ownerID, itemID int64) (bool, error) {
	res, err := r.db.Exec(r.db.Rebind(`DELETE FROM cart_items WHERE `+ownedItem), itemID, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *CartRepo) SetQuantityOwned(ownerID, itemID int64, qty int) (bool, error) {
	res, err := r.db.Exec(r.db.Rebind(`UPDATE cart_items SET quantity = ? WHERE `+ownedItem), qty, itemID, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Clear empties the cart and returns how many lines were removed.
func (r *CartRepo) Clear(cartID int64) (int, error) {
	res, err := r.db.Exec(r.db.Rebind(`DELETE FROM cart_items WHERE cart_id = ?`), cartID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// CountActive is the number of distinct lines in the owner's active cart,
// zero when there is none. Used by the header badge.
func (r *CartRepo) CountActive(ownerID int64) (int, error) {
	var n int
	err := r.db.Get(&n, r.db.Rebind(`
		SELECT COUNT(ci.id)
		FROM carts c JOIN cart_items ci ON ci.cart_id = c.id
		WHERE c.owner_id = ? AND c.is_active
	`), ownerID)
	return n, err
}
