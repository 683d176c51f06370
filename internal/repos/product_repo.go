package repos

import (
	"avecplaisir/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, name, description, price, image, category, created_at, updated_at`

func (r *ProductRepo) List() ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.Select(&out, `SELECT `+productCols+` FROM products ORDER BY name, id`)
	return out, err
}

func (r *ProductRepo) Get(id int64) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, r.db.Rebind(`SELECT `+productCols+` FROM products WHERE id = ?`), id)
	return p, err
}

func (r *ProductRepo) Create(p *domain.Product) error {
	ts := Now()
	p.CreatedAt, p.UpdatedAt = ts, ts
	return r.db.Get(&p.ID, r.db.Rebind(`
		INSERT INTO products(name, description, price, image, category, created_at, updated_at)
		VALUES(?,?,?,?,?,?,?)
		RETURNING id
	`), p.Name, p.Description, p.Price.StringFixed(2), p.Image, p.Category, ts, ts)
}

// Update rewrites every editable column. It reports false when no row matched.
func (r *ProductRepo) Update(p *domain.Product) (bool, error) {
	p.UpdatedAt = Now()
	res, err := r.db.Exec(r.db.Rebind(`
		UPDATE products SET name=?, description=?, price=?, image=?, category=?, updated_at=?
		WHERE id=?
	`), p.Name, p.Description, p.Price.StringFixed(2), p.Image, p.Category, p.UpdatedAt, p.ID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes the product; cart lines pointing at it go with it.
func (r *ProductRepo) Delete(id int64) (bool, error) {
	res, err := r.db.Exec(r.db.Rebind(`DELETE FROM products WHERE id=?`), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
