package order

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"furniture-shop-backend/internal/product"
)

func newTestService(seed []product.Product) (*Service, *InMemoryRepository, *product.InMemoryRepository) {
	productRepo := product.NewInMemoryRepository(seed)
	repo := NewInMemoryRepository(productRepo)
	svc := NewService(repo, product.NewService(productRepo), nil)
	return svc, repo, productRepo
}

func testAddress() ShippingAddress {
	return ShippingAddress{
		FullName:   "Jane Doe",
		Address:    "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	}
}

func TestCreateOrder_RecomputesPricesFromCatalog(t *testing.T) {
	svc, _, productRepo := newTestService([]product.Product{
		{ID: 1, Name: "Nordmark Sofa", Price: 120, CountInStock: 5, IsAvailable: true, Images: []string{"/img/sofa.jpg"}},
	})

	ord, err := svc.Create(7, CreateInput{
		Items:           []LineInput{{Product: 1, Quantity: 2}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "card",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// above the free-shipping threshold: 240 items, no shipping, 15% tax
	if ord.ItemsPrice != 240 || ord.ShippingPrice != 0 || ord.TaxPrice != 36 || ord.TotalPrice != 276 {
		t.Fatalf("unexpected totals: items=%v shipping=%v tax=%v total=%v",
			ord.ItemsPrice, ord.ShippingPrice, ord.TaxPrice, ord.TotalPrice)
	}
	if ord.Status != StatusPending {
		t.Fatalf("expected pending status, got %q", ord.Status)
	}
	if len(ord.Items) != 1 || ord.Items[0].Name != "Nordmark Sofa" || ord.Items[0].Price != 120 {
		t.Fatalf("line snapshot not taken from catalog: %+v", ord.Items)
	}

	p, _ := productRepo.GetByID(1)
	if p.CountInStock != 3 {
		t.Fatalf("expected stock 3 after reserving 2, got %d", p.CountInStock)
	}
	if p.TotalSold != 2 {
		t.Fatalf("expected totalSold 2, got %d", p.TotalSold)
	}
}

func TestCreateOrder_FlatShippingBelowThreshold(t *testing.T) {
	svc, _, _ := newTestService([]product.Product{
		{ID: 1, Name: "Side Table", Price: 30, CountInStock: 10, IsAvailable: true},
	})

	ord, err := svc.Create(1, CreateInput{
		Items:           []LineInput{{Product: 1, Quantity: 1}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "paypal",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if ord.ItemsPrice != 30 || ord.ShippingPrice != 10 || ord.TaxPrice != 4.50 || ord.TotalPrice != 44.50 {
		t.Fatalf("unexpected totals: items=%v shipping=%v tax=%v total=%v",
			ord.ItemsPrice, ord.ShippingPrice, ord.TaxPrice, ord.TotalPrice)
	}
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	svc, repo, productRepo := newTestService([]product.Product{
		{ID: 1, Name: "Arc Chair", Price: 89, CountInStock: 2, IsAvailable: true},
	})

	_, err := svc.Create(1, CreateInput{
		Items:           []LineInput{{Product: 1, Quantity: 3}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "card",
	})

	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ProductID != 1 || stockErr.Available != 2 {
		t.Fatalf("unexpected error detail: %+v", stockErr)
	}

	// nothing persisted, nothing reserved
	orders, total, _ := repo.ListByUser(1, 1, 10)
	if len(orders) != 0 || total != 0 {
		t.Fatalf("failed checkout left an order behind: %d orders", total)
	}
	p, _ := productRepo.GetByID(1)
	if p.CountInStock != 2 || p.TotalSold != 0 {
		t.Fatalf("failed checkout mutated stock: stock=%d sold=%d", p.CountInStock, p.TotalSold)
	}
}

func TestCreateOrder_MultiLineFailureReleasesEarlierLines(t *testing.T) {
	svc, _, productRepo := newTestService([]product.Product{
		{ID: 1, Name: "Desk", Price: 459, CountInStock: 5, IsAvailable: true},
		{ID: 2, Name: "Lamp", Price: 75, CountInStock: 1, IsAvailable: true},
	})

	_, err := svc.Create(1, CreateInput{
		Items: []LineInput{
			{Product: 1, Quantity: 2},
			{Product: 2, Quantity: 4},
		},
		ShippingAddress: testAddress(),
		PaymentMethod:   "card",
	})

	var stockErr *InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}

	desk, _ := productRepo.GetByID(1)
	if desk.CountInStock != 5 || desk.TotalSold != 0 {
		t.Fatalf("first line not released after failure: stock=%d sold=%d", desk.CountInStock, desk.TotalSold)
	}
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	svc, _, _ := newTestService(nil)

	_, err := svc.Create(1, CreateInput{
		Items:           []LineInput{{Product: 99, Quantity: 1}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "card",
	})
	if !errors.Is(err, product.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateOrder_Empty(t *testing.T) {
	svc, _, _ := newTestService(nil)
	if _, err := svc.Create(1, CreateInput{}); !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("expected ErrEmptyOrder, got %v", err)
	}
}

// Two shoppers race for the last unit. Exactly one checkout must succeed and
// stock must end at zero, never negative.
func TestConcurrentCheckout_LastUnit(t *testing.T) {
	svc, _, productRepo := newTestService([]product.Product{
		{ID: 1, Name: "Vault Cabinet", Price: 340, CountInStock: 1, IsAvailable: true},
	})

	const shoppers = 8
	var wg sync.WaitGroup
	errs := make([]error, shoppers)
	for i := 0; i < shoppers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(i+1, CreateInput{
				Items:           []LineInput{{Product: 1, Quantity: 1}},
				ShippingAddress: testAddress(),
				PaymentMethod:   "card",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var stockErr *InsufficientStockError
		if !errors.As(err, &stockErr) {
			t.Fatalf("unexpected failure mode: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly 1 successful checkout, got %d", succeeded)
	}

	p, _ := productRepo.GetByID(1)
	if p.CountInStock != 0 {
		t.Fatalf("expected stock 0, got %d", p.CountInStock)
	}
	if p.TotalSold != 1 {
		t.Fatalf("expected totalSold 1, got %d", p.TotalSold)
	}
}

func TestPayOrder(t *testing.T) {
	svc, _, _ := newTestService([]product.Product{
		{ID: 1, Name: "Bed", Price: 649, CountInStock: 3, IsAvailable: true},
	})

	ord, err := svc.Create(5, CreateInput{
		Items:           []LineInput{{Product: 1, Quantity: 1}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "paypal",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// someone else cannot pay it
	if _, err := svc.Pay(ord.ID, 99, PaymentResult{ID: "pp-1"}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	paid, err := svc.Pay(ord.ID, 5, PaymentResult{ID: "pp-1", Status: "COMPLETED"})
	if err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if !paid.IsPaid || paid.PaidAt == "" {
		t.Fatalf("payment flags not stamped: %+v", paid)
	}
	if paid.Status != StatusProcessing {
		t.Fatalf("expected processing after payment, got %q", paid.Status)
	}
	if paid.PaymentResult == nil || paid.PaymentResult.ID != "pp-1" {
		t.Fatalf("payment result not recorded: %+v", paid.PaymentResult)
	}

	// paying twice is rejected
	if _, err := svc.Pay(ord.ID, 5, PaymentResult{ID: "pp-2"}); !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}
}

func TestConcurrentPay_FirstPaymentWins(t *testing.T) {
	svc, _, _ := newTestService([]product.Product{
		{ID: 1, Name: "Bed", Price: 649, CountInStock: 3, IsAvailable: true},
	})
	ord, err := svc.Create(5, CreateInput{
		Items:           []LineInput{{Product: 1, Quantity: 1}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "paypal",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Pay(ord.ID, 5, PaymentResult{ID: fmt.Sprintf("pp-%d", i), Status: "COMPLETED"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrAlreadyPaid):
		default:
			t.Fatalf("attempt %d: unexpected error %v", i, err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one payment to win, got %d", succeeded)
	}

	paid, _ := svc.GetByID(ord.ID)
	if paid.PaymentResult == nil || !paid.IsPaid {
		t.Fatalf("winning payment not recorded: %+v", paid)
	}
}

func TestTransition_StateMachine(t *testing.T) {
	svc, _, _ := newTestService([]product.Product{
		{ID: 1, Name: "Sofa", Price: 899, CountInStock: 3, IsAvailable: true},
	})
	ord, _ := svc.Create(1, CreateInput{
		Items:           []LineInput{{Product: 1, Quantity: 1}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "card",
	})

	// pending cannot jump straight to delivered
	if _, err := svc.Transition(ord.ID, StatusDelivered); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	for _, status := range []string{StatusProcessing, StatusShipped, StatusDelivered} {
		updated, err := svc.Transition(ord.ID, status)
		if err != nil {
			t.Fatalf("transition to %s failed: %v", status, err)
		}
		if updated.Status != status {
			t.Fatalf("expected status %s, got %s", status, updated.Status)
		}
	}

	delivered, _ := svc.GetByID(ord.ID)
	if !delivered.IsDelivered || delivered.DeliveredAt == "" {
		t.Fatalf("delivery flags not stamped: %+v", delivered)
	}

	// delivered is terminal
	if _, err := svc.Transition(ord.ID, StatusCancelled); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected terminal state to reject cancel, got %v", err)
	}
}

func TestTransition_CancelRestocks(t *testing.T) {
	svc, _, productRepo := newTestService([]product.Product{
		{ID: 1, Name: "Table", Price: 520, CountInStock: 4, IsAvailable: true},
	})
	ord, _ := svc.Create(1, CreateInput{
		Items:           []LineInput{{Product: 1, Quantity: 3}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "card",
	})

	p, _ := productRepo.GetByID(1)
	if p.CountInStock != 1 {
		t.Fatalf("expected stock 1 after checkout, got %d", p.CountInStock)
	}

	cancelled, err := svc.Transition(ord.ID, StatusCancelled)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	p, _ = productRepo.GetByID(1)
	if p.CountInStock != 4 {
		t.Fatalf("expected stock restored to 4, got %d", p.CountInStock)
	}
}

func TestCancelStalePending(t *testing.T) {
	svc, repo, productRepo := newTestService([]product.Product{
		{ID: 1, Name: "Chair", Price: 89, CountInStock: 10, IsAvailable: true},
	})

	// a fresh order stays; a week-old unpaid one gets cancelled
	fresh, _ := svc.Create(1, CreateInput{
		Items:           []LineInput{{Product: 1, Quantity: 1}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "card",
	})

	stale := fresh
	stale.ID = 0
	stale.CreatedAt = time.Now().UTC().Add(-7 * 24 * time.Hour).Format(time.RFC3339)
	staleCreated, err := repo.Create(stale)
	if err != nil {
		t.Fatalf("seeding stale order failed: %v", err)
	}

	cancelled := svc.CancelStalePending(72 * time.Hour)
	if cancelled != 1 {
		t.Fatalf("expected 1 cancelled order, got %d", cancelled)
	}

	got, _ := svc.GetByID(staleCreated.ID)
	if got.Status != StatusCancelled {
		t.Fatalf("stale order not cancelled: %s", got.Status)
	}
	kept, _ := svc.GetByID(fresh.ID)
	if kept.Status != StatusPending {
		t.Fatalf("fresh order should be untouched: %s", kept.Status)
	}

	// stale order's unit came back; the fresh order still holds its unit
	p, _ := productRepo.GetByID(1)
	if p.CountInStock != 9 {
		t.Fatalf("expected stock 9 (one live reservation), got %d", p.CountInStock)
	}
}
