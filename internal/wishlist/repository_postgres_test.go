package wishlist

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"furniture-shop-backend/internal/user"
)

func TestPostgresAdd(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("array_append").
		WithArgs(1, 10, "2026-08-01T10:00:00Z").
		WillReturnRows(sqlmock.NewRows([]string{"wishlist"}).AddRow("{10}"))

	ids, err := repo.Add(1, 10, "2026-08-01T10:00:00Z")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != 10 {
		t.Fatalf("unexpected wishlist: %v", ids)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresAdd_Duplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	// guarded update matches no row, but the user exists: duplicate entry
	mock.ExpectQuery("array_append").
		WithArgs(1, 10, "2026-08-01T10:00:00Z").
		WillReturnRows(sqlmock.NewRows([]string{"wishlist"}))
	mock.ExpectQuery("SELECT 1 FROM users").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	if _, err := repo.Add(1, 10, "2026-08-01T10:00:00Z"); !errors.Is(err, ErrAlreadyInWishlist) {
		t.Fatalf("expected ErrAlreadyInWishlist, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresAdd_UnknownUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("array_append").
		WithArgs(42, 10, "2026-08-01T10:00:00Z").
		WillReturnRows(sqlmock.NewRows([]string{"wishlist"}))
	mock.ExpectQuery("SELECT 1 FROM users").
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	if _, err := repo.Add(42, 10, "2026-08-01T10:00:00Z"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected user.ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRemove_NotInWishlist(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("array_remove").
		WithArgs(1, 10, "2026-08-01T10:00:00Z").
		WillReturnRows(sqlmock.NewRows([]string{"wishlist"}))
	mock.ExpectQuery("SELECT 1 FROM users").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	if _, err := repo.Remove(1, 10, "2026-08-01T10:00:00Z"); !errors.Is(err, ErrNotInWishlist) {
		t.Fatalf("expected ErrNotInWishlist, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM users WHERE user_id").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"wishlist"}).AddRow("{10,11}"))

	ids, err := repo.Get(1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != 10 || ids[1] != 11 {
		t.Fatalf("unexpected wishlist: %v", ids)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
