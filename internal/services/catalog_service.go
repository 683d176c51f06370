package services

import (
	"avecplaisir/internal/access"
	"avecplaisir/internal/domain"
	"avecplaisir/internal/repos"
	"avecplaisir/internal/validate"
)

type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

// ProductInput is the product form as submitted. Image is the stored
// media path, empty to keep the current one on update.
type ProductInput struct {
	Name        string
	Description string
	Price       string
	Category    string
	Image       string
}

func (in ProductInput) build() (domain.Product, error) {
	name, ok := validate.Title(in.Name)
	if !ok {
		return domain.Product{}, invalid("name", "must be 1 to 200 characters")
	}
	desc, ok := validate.Text(in.Description, 0, 5000)
	if !ok {
		return domain.Product{}, invalid("description", "is too long")
	}
	price, ok := validate.Price(in.Price)
	if !ok {
		return domain.Product{}, invalid("price", "must be a non-negative amount with at most 2 decimals")
	}
	cat, ok := validate.Category(in.Category)
	if !ok {
		return domain.Product{}, invalid("category", "must be a lowercase word")
	}
	return domain.Product{Name: name, Description: desc, Price: price, Category: cat, Image: in.Image}, nil
}

func (s *CatalogService) List() ([]domain.Product, error) {
	return s.Prods.List()
}

func (s *CatalogService) Get(id int64) (domain.Product, error) {
	p, err := s.Prods.Get(id)
	return p, notFound(err)
}

func (s *CatalogService) Create(p access.Principal, in ProductInput) (domain.Product, error) {
	if !access.CanPerform(p, access.CreateProduct, access.Resource{}) {
		return domain.Product{}, ErrForbidden
	}
	prod, err := in.build()
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.Prods.Create(&prod); err != nil {
		return domain.Product{}, err
	}
	return prod, nil
}

func (s *CatalogService) Update(p access.Principal, id int64, in ProductInput) (domain.Product, error) {
	if !access.CanPerform(p, access.EditProduct, access.Resource{}) {
		return domain.Product{}, ErrForbidden
	}
	cur, err := s.Get(id)
	if err != nil {
		return domain.Product{}, err
	}
	prod, err := in.build()
	if err != nil {
		return domain.Product{}, err
	}
	prod.ID, prod.CreatedAt = cur.ID, cur.CreatedAt
	if prod.Image == "" {
		prod.Image = cur.Image
	}
	ok, err := s.Prods.Update(&prod)
	if err != nil {
		return domain.Product{}, err
	}
	if !ok {
		return domain.Product{}, ErrNotFound
	}
	return prod, nil
}

func (s *CatalogService) Delete(p access.Principal, id int64) error {
	if !access.CanPerform(p, access.DeleteProduct, access.Resource{}) {
		return ErrForbidden
	}
	ok, err := s.Prods.Delete(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
