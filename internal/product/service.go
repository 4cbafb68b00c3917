package product

import (
	"errors"
	"time"
)

var ErrAlreadyReviewed = errors.New("product already reviewed")

// ServiceInterface lets other packages depend on the product service
// without binding to the concrete type.
type ServiceInterface interface {
	List(f ListFilter) (ListResult, error)
	ListFeatured() ([]Product, error)
	GetByID(id int) (Product, error)
	Create(p Product) (Product, error)
	Update(id int, p Product) (Product, error)
	Delete(id int) error
	AddReview(productID int, rev Review) (Product, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

const (
	defaultPageSize  = 12
	maxPageSize      = 100
	featuredPageSize = 8
)

func (s *Service) List(f ListFilter) (ListResult, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}

	products, total, err := s.repo.List(f)
	if err != nil {
		return ListResult{}, err
	}

	totalPages := (total + f.Limit - 1) / f.Limit
	return ListResult{
		Products:      products,
		CurrentPage:   f.Page,
		TotalPages:    totalPages,
		TotalProducts: total,
	}, nil
}

func (s *Service) ListFeatured() ([]Product, error) {
	return s.repo.ListFeatured(featuredPageSize)
}

func (s *Service) GetByID(id int) (Product, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Create(p Product) (Product, error) {
	return s.repo.Create(p)
}

func (s *Service) Update(id int, p Product) (Product, error) {
	return s.repo.Update(id, p)
}

func (s *Service) Delete(id int) error {
	return s.repo.Delete(id)
}

// AddReview appends rev to the product's embedded review list. A user gets
// at most one review per product. Rating and NumReviews are recomputed from
// the full list rather than adjusted incrementally, so repeated mutations
// cannot accumulate floating-point drift.
func (s *Service) AddReview(productID int, rev Review) (Product, error) {
	p, err := s.repo.GetByID(productID)
	if err != nil {
		return Product{}, err
	}

	for _, existing := range p.Reviews {
		if existing.User == rev.User {
			return Product{}, ErrAlreadyReviewed
		}
	}

	if rev.CreatedAt == "" {
		rev.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	reviews := append(append([]Review{}, p.Reviews...), rev)

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	rating := float64(sum) / float64(len(reviews))

	return s.repo.SaveReviews(productID, reviews, rating, len(reviews))
}

// ResetProducts replaces all products with the given list (used for dev / seeding).
func (s *Service) ResetProducts(products []Product) error {
	return s.repo.Reset(products)
}
