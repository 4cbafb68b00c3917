package order

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"furniture-shop-backend/internal/pricing"
	"furniture-shop-backend/internal/product"
)

var (
	ErrEmptyOrder        = errors.New("no order items")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyPaid       = errors.New("order already paid")
	ErrNotOwner          = errors.New("not authorized for this order")
)

// LineInput is one requested line in a checkout: which product and how many
// units. Everything else about the line is resolved server-side.
type LineInput struct {
	Product  int `json:"product"`
	Quantity int `json:"quantity"`
}

// CreateInput is a checkout request after boundary validation.
type CreateInput struct {
	Items           []LineInput
	ShippingAddress ShippingAddress
	PaymentMethod   string
}

// Service provides business logic for orders.
type Service struct {
	repo     Repository
	products product.ServiceInterface
	logger   *zap.Logger
}

func NewService(repo Repository, products product.ServiceInterface, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, products: products, logger: logger}
}

const defaultPageSize = 10

// Create converts a cart snapshot into a durable order. Line snapshots and
// all four price components are recomputed from the current catalog; the
// client never gets to name its own prices. The pre-flight stock check gives
// a friendly error early, but the repository's conditional decrement is what
// actually guarantees stock never goes negative under concurrent checkouts.
func (s *Service) Create(userID int, in CreateInput) (Order, error) {
	if len(in.Items) == 0 {
		return Order{}, ErrEmptyOrder
	}

	items := make([]OrderItem, 0, len(in.Items))
	lines := make([]pricing.Line, 0, len(in.Items))
	for _, line := range in.Items {
		p, err := s.products.GetByID(line.Product)
		if err != nil {
			return Order{}, product.ErrNotFound
		}
		if p.CountInStock < line.Quantity {
			return Order{}, &InsufficientStockError{ProductID: p.ID, Name: p.Name, Available: p.CountInStock}
		}

		image := ""
		if len(p.Images) > 0 {
			image = p.Images[0]
		}
		items = append(items, OrderItem{
			Product:  p.ID,
			Name:     p.Name,
			Image:    image,
			Price:    p.Price,
			Quantity: line.Quantity,
		})
		lines = append(lines, pricing.Line{Price: p.Price, Quantity: line.Quantity})
	}

	quote := pricing.Compute(lines)
	now := time.Now().UTC().Format(time.RFC3339)
	ord := Order{
		User:            userID,
		Items:           items,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		ItemsPrice:      quote.ItemsPrice,
		TaxPrice:        quote.TaxPrice,
		ShippingPrice:   quote.ShippingPrice,
		TotalPrice:      quote.TotalPrice,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.repo.Create(ord)
	if err != nil {
		return Order{}, err
	}
	s.logger.Info("order created",
		zap.Int("orderId", created.ID),
		zap.Int("userId", userID),
		zap.Float64("total", created.TotalPrice))
	return created, nil
}

func (s *Service) GetByID(id int) (Order, error) {
	return s.repo.GetByID(id)
}

func (s *Service) ListByUser(userID, page, limit int) (ListResult, error) {
	page, limit = normalizePage(page, limit)
	orders, total, err := s.repo.ListByUser(userID, page, limit)
	if err != nil {
		return ListResult{}, err
	}
	return listResult(orders, total, page, limit), nil
}

func (s *Service) ListAll(status string, page, limit int) (ListResult, error) {
	page, limit = normalizePage(page, limit)
	orders, total, err := s.repo.ListAll(status, page, limit)
	if err != nil {
		return ListResult{}, err
	}
	return listResult(orders, total, page, limit), nil
}

// Pay marks the order paid on behalf of its owner and moves it from pending
// to processing. This is the only status transition a customer can trigger.
func (s *Service) Pay(id, userID int, result PaymentResult) (Order, error) {
	ord, err := s.repo.GetByID(id)
	if err != nil {
		return Order{}, err
	}
	if ord.User != userID {
		return Order{}, ErrNotOwner
	}
	if ord.IsPaid {
		return Order{}, ErrAlreadyPaid
	}

	now := time.Now().UTC().Format(time.RFC3339)
	ord.IsPaid = true
	ord.PaidAt = now
	ord.PaymentResult = &result
	if ord.Status == StatusPending {
		ord.Status = StatusProcessing
	}
	ord.UpdatedAt = now
	// the repository re-checks is_paid under its own guard, so a concurrent
	// payment that slipped past the check above still loses exactly once
	return s.repo.MarkPaid(id, ord)
}

// Transition applies an admin status change, enforcing the lifecycle state
// machine. Reaching delivered stamps the delivery flags; cancelling returns
// the reserved stock to the catalog.
func (s *Service) Transition(id int, status string) (Order, error) {
	ord, err := s.repo.GetByID(id)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(ord.Status, status) {
		return Order{}, ErrInvalidTransition
	}

	now := time.Now().UTC().Format(time.RFC3339)
	ord.Status = status
	ord.UpdatedAt = now
	if status == StatusDelivered {
		ord.IsDelivered = true
		ord.DeliveredAt = now
	}

	updated, err := s.repo.Update(id, ord)
	if err != nil {
		return Order{}, err
	}
	if status == StatusCancelled {
		if err := s.repo.Restock(updated.Items); err != nil {
			s.logger.Warn("could not restock cancelled order", zap.Int("orderId", id), zap.Error(err))
		}
	}
	return updated, nil
}

// CancelStalePending cancels unpaid pending orders older than maxAge and
// restocks them. It is run periodically from the API server.
func (s *Service) CancelStalePending(maxAge time.Duration) int {
	before := time.Now().UTC().Add(-maxAge).Format(time.RFC3339)
	stale, err := s.repo.ListStalePending(before)
	if err != nil {
		s.logger.Warn("could not list stale orders", zap.Error(err))
		return 0
	}

	cancelled := 0
	for _, ord := range stale {
		if _, err := s.Transition(ord.ID, StatusCancelled); err != nil {
			s.logger.Warn("could not cancel stale order", zap.Int("orderId", ord.ID), zap.Error(err))
			continue
		}
		cancelled++
	}
	if cancelled > 0 {
		s.logger.Info("cancelled stale pending orders", zap.Int("count", cancelled))
	}
	return cancelled
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func listResult(orders []Order, total, page, limit int) ListResult {
	return ListResult{
		Orders:      orders,
		CurrentPage: page,
		TotalPages:  (total + limit - 1) / limit,
		TotalOrders: total,
	}
}
