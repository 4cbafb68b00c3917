package order

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"furniture-shop-backend/internal/product"
)

func sampleOrder() Order {
	return Order{
		User: 3,
		Items: []OrderItem{
			{Product: 1, Name: "Arc Chair", Price: 89, Quantity: 2},
		},
		ShippingAddress: ShippingAddress{Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US"},
		PaymentMethod:   "card",
		ItemsPrice:      178,
		TaxPrice:        26.70,
		ShippingPrice:   0,
		TotalPrice:      204.70,
		Status:          StatusPending,
		CreatedAt:       "2026-08-01T10:00:00Z",
		UpdatedAt:       "2026-08-01T10:00:00Z",
	}
}

func TestPostgresCreate_CommitsWhenStockSuffices(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}).AddRow(42))
	mock.ExpectExec("UPDATE product").
		WithArgs(2, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, err := repo.Create(sampleOrder())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID != 42 {
		t.Fatalf("expected order id 42, got %d", created.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresCreate_RollsBackOnInsufficientStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}).AddRow(43))
	// the conditional decrement matches no row: not enough stock
	mock.ExpectExec("UPDATE product").
		WithArgs(2, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT product_name, count_in_stock").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"product_name", "count_in_stock"}).AddRow("Arc Chair", 1))
	mock.ExpectRollback()

	_, err = repo.Create(sampleOrder())

	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ProductID != 1 || stockErr.Name != "Arc Chair" || stockErr.Available != 1 {
		t.Fatalf("unexpected error detail: %+v", stockErr)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresCreate_NotFoundWhenProductRowMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}).AddRow(44))
	mock.ExpectExec("UPDATE product").
		WithArgs(2, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT product_name, count_in_stock").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"product_name", "count_in_stock"}))
	mock.ExpectRollback()

	_, err = repo.Create(sampleOrder())
	if !errors.Is(err, product.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGetByID_MapsMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM orders WHERE order_id").
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}))

	if _, err := repo.GetByID(9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresMarkPaid_SecondPaymentLoses(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	// the guarded update matches no row: someone already paid
	mock.ExpectExec("is_paid = TRUE").
		WillReturnResult(sqlmock.NewResult(0, 0))
	cols := []string{"order_id", "user_id", "order_items", "shipping_address", "payment_method", "payment_result", "items_price", "tax_price", "shipping_price", "total_price", "is_paid", "paid_at", "is_delivered", "delivered_at", "status", "created_at", "updated_at"}
	mock.ExpectQuery("FROM orders WHERE order_id").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			7, 3, []byte(`[]`), []byte(`{}`), "card", []byte(`{"id":"pp-first"}`),
			178.0, 26.70, 0.0, 204.70, true, "2026-08-01T10:05:00Z",
			false, nil, StatusProcessing, "2026-08-01T10:00:00Z", "2026-08-01T10:05:00Z",
		))

	ord := sampleOrder()
	ord.IsPaid = true
	ord.PaidAt = "2026-08-01T10:06:00Z"
	ord.PaymentResult = &PaymentResult{ID: "pp-second"}
	ord.Status = StatusProcessing

	if _, err := repo.MarkPaid(7, ord); !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresRestock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("count_in_stock \\+").
		WithArgs(2, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Restock(sampleOrder().Items); err != nil {
		t.Fatalf("restock failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
