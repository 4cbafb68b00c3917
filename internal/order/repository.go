package order

import (
	"errors"
	"sort"
	"sync"

	"furniture-shop-backend/internal/product"
)

var ErrNotFound = errors.New("order not found")

// Repository defines persistence operations for orders. Create must reserve
// stock and insert the order atomically: either every line is reserved and
// the order exists, or nothing changed.
type Repository interface {
	Create(ord Order) (Order, error)
	GetByID(id int) (Order, error)
	ListByUser(userID, page, limit int) ([]Order, int, error)
	ListAll(status string, page, limit int) ([]Order, int, error)
	Update(id int, ord Order) (Order, error)
	// MarkPaid stores the payment result only while the order is still
	// unpaid, so the first of two concurrent payments wins and the other
	// gets ErrAlreadyPaid.
	MarkPaid(id int, ord Order) (Order, error)
	// Restock returns the reserved units of a cancelled order to the catalog.
	Restock(items []OrderItem) error
	// ListStalePending returns unpaid pending orders created before the given
	// RFC3339 timestamp.
	ListStalePending(before string) ([]Order, error)
}

// InMemoryRepository keeps orders in memory and reserves stock against an
// in-memory product repository. Reservation mirrors the conditional
// decrement the Postgres implementation performs in SQL, with explicit
// compensation when a later line fails.
type InMemoryRepository struct {
	mu       sync.RWMutex
	products *product.InMemoryRepository
	storage  []Order
	nextID   int
}

func NewInMemoryRepository(products *product.InMemoryRepository) *InMemoryRepository {
	return &InMemoryRepository{products: products, nextID: 1}
}

func (r *InMemoryRepository) Create(ord Order) (Order, error) {
	reserved := make([]OrderItem, 0, len(ord.Items))
	for _, item := range ord.Items {
		available, err := r.products.Reserve(item.Product, item.Quantity)
		if err != nil {
			// roll back the lines already reserved
			for _, done := range reserved {
				r.products.Release(done.Product, done.Quantity)
			}
			if err == product.ErrInsufficientStock {
				return Order{}, &InsufficientStockError{ProductID: item.Product, Name: item.Name, Available: available}
			}
			return Order{}, product.ErrNotFound
		}
		reserved = append(reserved, item)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ord.ID == 0 {
		ord.ID = r.nextID
		r.nextID++
	}
	r.storage = append(r.storage, ord)
	return ord, nil
}

func (r *InMemoryRepository) GetByID(id int) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ord := range r.storage {
		if ord.ID == id {
			return ord, nil
		}
	}
	return Order{}, ErrNotFound
}

func paginate(orders []Order, page, limit int) ([]Order, int) {
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt > orders[j].CreatedAt })
	total := len(orders)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return orders[start:end], total
}

func (r *InMemoryRepository) ListByUser(userID, page, limit int) ([]Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]Order, 0)
	for _, ord := range r.storage {
		if ord.User == userID {
			matched = append(matched, ord)
		}
	}
	out, total := paginate(matched, page, limit)
	return out, total, nil
}

func (r *InMemoryRepository) ListAll(status string, page, limit int) ([]Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]Order, 0)
	for _, ord := range r.storage {
		if status == "" || ord.Status == status {
			matched = append(matched, ord)
		}
	}
	out, total := paginate(matched, page, limit)
	return out, total, nil
}

func (r *InMemoryRepository) Update(id int, ord Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			ord.ID = id
			r.storage[i] = ord
			return ord, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) MarkPaid(id int, ord Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			if r.storage[i].IsPaid {
				return Order{}, ErrAlreadyPaid
			}
			ord.ID = id
			r.storage[i] = ord
			return ord, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) Restock(items []OrderItem) error {
	for _, item := range items {
		r.products.Release(item.Product, item.Quantity)
	}
	return nil
}

func (r *InMemoryRepository) ListStalePending(before string) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]Order, 0)
	for _, ord := range r.storage {
		if ord.Status == StatusPending && !ord.IsPaid && ord.CreatedAt < before {
			matched = append(matched, ord)
		}
	}
	return matched, nil
}
