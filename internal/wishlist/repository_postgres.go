package wishlist

import (
	"database/sql"

	"github.com/lib/pq"

	"furniture-shop-backend/internal/user"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	addToWishlistQuery = `
		UPDATE users
		SET wishlist = array_append(coalesce(wishlist, ARRAY[]::integer[]), $2),
			updated_at = $3
		WHERE user_id = $1
			AND NOT ($2 = ANY(coalesce(wishlist, ARRAY[]::integer[])))
		RETURNING wishlist
	`
	removeFromWishlistQuery = `
		UPDATE users
		SET wishlist = array_remove(coalesce(wishlist, ARRAY[]::integer[]), $2),
			updated_at = $3
		WHERE user_id = $1
			AND ($2 = ANY(coalesce(wishlist, ARRAY[]::integer[])))
		RETURNING wishlist
	`
	getWishlistQuery = `SELECT coalesce(wishlist, ARRAY[]::integer[]) FROM users WHERE user_id = $1`
	userExistsQuery  = `SELECT 1 FROM users WHERE user_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func toInts(arr pq.Int64Array) []int {
	out := make([]int, 0, len(arr))
	for _, v := range arr {
		out = append(out, int(v))
	}
	return out
}

// Add appends productID unless it is already present; the guard lives in the
// WHERE clause so concurrent adds cannot duplicate an entry.
func (r *PostgresRepository) Add(userID int, productID int, updatedAt string) ([]int, error) {
	var arr pq.Int64Array
	err := r.db.QueryRow(addToWishlistQuery, userID, productID, updatedAt).Scan(&arr)
	if err != nil {
		if err == sql.ErrNoRows {
			var exists int
			if err2 := r.db.QueryRow(userExistsQuery, userID).Scan(&exists); err2 == sql.ErrNoRows {
				return nil, user.ErrNotFound
			}
			return nil, ErrAlreadyInWishlist
		}
		return nil, err
	}
	return toInts(arr), nil
}

func (r *PostgresRepository) Remove(userID int, productID int, updatedAt string) ([]int, error) {
	var arr pq.Int64Array
	err := r.db.QueryRow(removeFromWishlistQuery, userID, productID, updatedAt).Scan(&arr)
	if err != nil {
		if err == sql.ErrNoRows {
			var exists int
			if err2 := r.db.QueryRow(userExistsQuery, userID).Scan(&exists); err2 == sql.ErrNoRows {
				return nil, user.ErrNotFound
			}
			return nil, ErrNotInWishlist
		}
		return nil, err
	}
	return toInts(arr), nil
}

func (r *PostgresRepository) Get(userID int) ([]int, error) {
	var arr pq.Int64Array
	err := r.db.QueryRow(getWishlistQuery, userID).Scan(&arr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return toInts(arr), nil
}
