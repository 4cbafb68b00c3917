package order

import "fmt"

// Order lifecycle statuses. An order starts pending; cancelled is reachable
// from every non-terminal status.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

var validTransitions = map[string][]string{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedPaymentMethods is the closed set of accepted payment methods.
var AllowedPaymentMethods = []string{"cash-on-delivery", "paypal", "card"}

func validPaymentMethod(m string) bool {
	for _, allowed := range AllowedPaymentMethods {
		if m == allowed {
			return true
		}
	}
	return false
}

// OrderItem is an immutable snapshot of one purchased line. Name, image and
// unit price are copied from the catalog at creation time; line items are
// never edited afterwards.
type OrderItem struct {
	Product  int     `json:"product"`
	Name     string  `json:"name"`
	Image    string  `json:"image,omitempty"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// ShippingAddress is the delivery address snapshot stored on the order.
type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// PaymentResult records the payment provider's confirmation.
type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"updateTime,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
}

// Order represents a purchase made by a user. Orders are created once;
// afterwards only payment and status fields change.
type Order struct {
	ID              int             `json:"orderId"`
	User            int             `json:"user"`
	Items           []OrderItem     `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentResult   *PaymentResult  `json:"paymentResult,omitempty"`
	ItemsPrice      float64         `json:"itemsPrice"`
	TaxPrice        float64         `json:"taxPrice"`
	ShippingPrice   float64         `json:"shippingPrice"`
	TotalPrice      float64         `json:"totalPrice"`
	IsPaid          bool            `json:"isPaid"`
	PaidAt          string          `json:"paidAt,omitempty"`
	IsDelivered     bool            `json:"isDelivered"`
	DeliveredAt     string          `json:"deliveredAt,omitempty"`
	Status          string          `json:"status"`
	CreatedAt       string          `json:"createdAt"`
	UpdatedAt       string          `json:"updatedAt"`
}

// ListResult is the paginated order listing response shape.
type ListResult struct {
	Orders      []Order `json:"orders"`
	CurrentPage int     `json:"currentPage"`
	TotalPages  int     `json:"totalPages"`
	TotalOrders int     `json:"totalOrders"`
}

// InsufficientStockError names the product a checkout could not reserve and
// how many units were actually available.
type InsufficientStockError struct {
	ProductID int
	Name      string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q (product %d): %d available", e.Name, e.ProductID, e.Available)
}
