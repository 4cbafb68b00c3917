package user

import (
	"database/sql"
	"strings"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	userColumns = `user_id, name, email, password, role, phone, address, wishlist, created_at, updated_at`

	listUsersQuery = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY user_id
	`
	getUserByIDQuery = `
		SELECT ` + userColumns + `
		FROM users
		WHERE user_id = $1
	`
	getUserByEmailQuery = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`
	insertUserQuery = `
		INSERT INTO users (name, email, password, role, phone, address, wishlist, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING user_id
	`
	updateUserQuery = `
		UPDATE users
		SET name = $1,
			email = $2,
			password = $3,
			role = $4,
			phone = $5,
			address = $6,
			wishlist = $7,
			updated_at = $8
		WHERE user_id = $9
	`
	deleteUserQuery = `DELETE FROM users WHERE user_id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(row rowScanner) (User, error) {
	var (
		u        User
		phone    sql.NullString
		address  sql.NullString
		wishlist pq.Int64Array
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &phone, &address, &wishlist, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	u.Phone = phone.String
	u.Address = address.String
	u.Wishlist = make([]int, 0, len(wishlist))
	for _, id := range wishlist {
		u.Wishlist = append(u.Wishlist, int(id))
	}
	return u, nil
}

func (r *PostgresRepository) List() []User {
	rows, err := r.db.Query(listUsersQuery)
	if err != nil {
		return []User{}
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			continue
		}
		users = append(users, u)
	}
	return users
}

func (r *PostgresRepository) GetByID(id int) (User, error) {
	u, err := scanUser(r.db.QueryRow(getUserByIDQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) GetByEmail(email string) (User, error) {
	u, err := scanUser(r.db.QueryRow(getUserByEmailQuery, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) Create(user User) (User, error) {
	wishlist := make(pq.Int64Array, 0, len(user.Wishlist))
	for _, id := range user.Wishlist {
		wishlist = append(wishlist, int64(id))
	}

	err := r.db.QueryRow(
		insertUserQuery,
		user.Name, user.Email, user.Password, user.Role, user.Phone, user.Address,
		wishlist, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		// the unique index on email is the last line of defence against a
		// concurrent duplicate registration
		if strings.Contains(err.Error(), "duplicate key") {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}
	return user, nil
}

func (r *PostgresRepository) Update(id int, user User) (User, error) {
	wishlist := make(pq.Int64Array, 0, len(user.Wishlist))
	for _, pid := range user.Wishlist {
		wishlist = append(wishlist, int64(pid))
	}

	res, err := r.db.Exec(
		updateUserQuery,
		user.Name, user.Email, user.Password, user.Role, user.Phone, user.Address,
		wishlist, user.UpdatedAt, id,
	)
	if err != nil {
		return User{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return User{}, ErrNotFound
	}
	user.ID = id
	return user, nil
}

func (r *PostgresRepository) Delete(id int) error {
	res, err := r.db.Exec(deleteUserQuery, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
