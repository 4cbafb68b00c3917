package wishlist

import (
	"errors"
	"sync"

	"furniture-shop-backend/internal/user"
)

var (
	ErrAlreadyInWishlist = errors.New("product already in wishlist")
	ErrNotInWishlist     = errors.New("product not in wishlist")
)

// Repository manipulates the wishlist array stored on the user row.
type Repository interface {
	Add(userID int, productID int, updatedAt string) ([]int, error)
	Remove(userID int, productID int, updatedAt string) ([]int, error)
	Get(userID int) ([]int, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users []user.User
}

func NewInMemoryRepository(seed []user.User) *InMemoryRepository {
	r := &InMemoryRepository{users: make([]user.User, 0, len(seed))}
	r.users = append(r.users, seed...)
	return r
}

func (r *InMemoryRepository) Add(userID int, productID int, updatedAt string) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.ID == userID {
			for _, pid := range u.Wishlist {
				if pid == productID {
					return nil, ErrAlreadyInWishlist
				}
			}
			u.Wishlist = append(u.Wishlist, productID)
			if updatedAt != "" {
				u.UpdatedAt = updatedAt
			}
			r.users[i] = u
			res := make([]int, len(u.Wishlist))
			copy(res, u.Wishlist)
			return res, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *InMemoryRepository) Remove(userID int, productID int, updatedAt string) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.ID == userID {
			found := false
			next := make([]int, 0, len(u.Wishlist))
			for _, pid := range u.Wishlist {
				if pid == productID {
					found = true
					continue
				}
				next = append(next, pid)
			}
			if !found {
				return nil, ErrNotInWishlist
			}
			u.Wishlist = next
			if updatedAt != "" {
				u.UpdatedAt = updatedAt
			}
			r.users[i] = u
			res := make([]int, len(u.Wishlist))
			copy(res, u.Wishlist)
			return res, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *InMemoryRepository) Get(userID int) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ID == userID {
			res := make([]int, len(u.Wishlist))
			copy(res, u.Wishlist)
			return res, nil
		}
	}
	return nil, user.ErrNotFound
}
