package session

import (
	"encoding/json"
	"sync"

	"furniture-shop-backend/internal/pricing"
)

// CartItem is a snapshot of a product taken at the moment it was added to
// the cart. Price and stock are copied so the cart stays meaningful while
// the catalog changes underneath it; the server re-checks both at checkout.
type CartItem struct {
	Product      int     `json:"product"`
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	Price        float64 `json:"price"`
	CountInStock int     `json:"countInStock"`
	Quantity     int     `json:"quantity"`
}

// WishlistItem mirrors the server-side wishlist entry for offline display.
type WishlistItem struct {
	Product int     `json:"product"`
	Name    string  `json:"name"`
	Image   string  `json:"image"`
	Price   float64 `json:"price"`
}

// Address is the shipping address draft edited during checkout.
type Address struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// Store holds what the shopper intends to buy, independent of server round
// trips. Every mutation is mirrored to the Storage port; reads never touch
// storage. Construction never fails: unreadable or corrupt persisted state
// falls back to an empty default so the shopper always gets a working cart.
type Store struct {
	mu      sync.RWMutex
	storage Storage

	cart     []CartItem
	wishlist []WishlistItem
	address  Address
	payment  string
	token    string
}

func NewStore(storage Storage) *Store {
	s := &Store{storage: storage}
	loadJSON(storage, KeyCartItems, &s.cart)
	loadJSON(storage, KeyWishlistItems, &s.wishlist)
	loadJSON(storage, KeyShippingAddress, &s.address)
	loadJSON(storage, KeyPaymentMethod, &s.payment)
	loadJSON(storage, KeyToken, &s.token)
	return s
}

// loadJSON reads one key best-effort. A missing key, a read error or corrupt
// JSON all leave dst at its zero value.
func loadJSON(storage Storage, key string, dst any) {
	b, err := storage.Load(key)
	if err != nil || len(b) == 0 {
		return
	}
	_ = json.Unmarshal(b, dst)
}

// persist writes one key best-effort; persistence failures are not allowed
// to fail the mutation that triggered them.
func (s *Store) persist(key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = s.storage.Save(key, b)
}

// SaveToken records the auth token issued at login.
func (s *Store) SaveToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.persist(KeyToken, token)
}

// ClearToken forgets the auth token. Called on logout and whenever the
// server answers 401, so a stale token never gets retried.
func (s *Store) ClearToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	_ = s.storage.Delete(KeyToken)
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// AddItem puts item in the cart. If an entry for the same product already
// exists its quantity, price and stock snapshot are replaced wholesale (last
// write wins) so the entry always reflects the catalog as of the latest add.
// The cart never holds two entries for the same product.
func (s *Store) AddItem(item CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cart {
		if s.cart[i].Product == item.Product {
			s.cart[i] = item
			s.persist(KeyCartItems, s.cart)
			return
		}
	}
	s.cart = append(s.cart, item)
	s.persist(KeyCartItems, s.cart)
}

// RemoveItem drops the entry for productID. Removing an absent id is a no-op.
func (s *Store) RemoveItem(productID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cart {
		if s.cart[i].Product == productID {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			s.persist(KeyCartItems, s.cart)
			return
		}
	}
}

// UpdateQuantity sets the quantity for productID directly. A quantity of
// zero or less removes the entry. Clamping to stock is left to the caller.
func (s *Store) UpdateQuantity(productID, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(productID)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cart {
		if s.cart[i].Product == productID {
			s.cart[i].Quantity = quantity
			s.persist(KeyCartItems, s.cart)
			return
		}
	}
}

// Clear empties the cart and wishlist, as after a successful checkout.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = nil
	s.wishlist = nil
	s.persist(KeyCartItems, s.cart)
	s.persist(KeyWishlistItems, s.wishlist)
}

// AddWishlistItem records item unless the product is already wishlisted.
func (s *Store) AddWishlistItem(item WishlistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.wishlist {
		if w.Product == item.Product {
			return
		}
	}
	s.wishlist = append(s.wishlist, item)
	s.persist(KeyWishlistItems, s.wishlist)
}

// RemoveWishlistItem drops the wishlist entry for productID; idempotent.
func (s *Store) RemoveWishlistItem(productID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.wishlist {
		if s.wishlist[i].Product == productID {
			s.wishlist = append(s.wishlist[:i], s.wishlist[i+1:]...)
			s.persist(KeyWishlistItems, s.wishlist)
			return
		}
	}
}

// SaveShippingAddress overwrites the checkout address draft.
func (s *Store) SaveShippingAddress(addr Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.address = addr
	s.persist(KeyShippingAddress, s.address)
}

// SavePaymentMethod overwrites the selected payment method.
func (s *Store) SavePaymentMethod(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payment = method
	s.persist(KeyPaymentMethod, s.payment)
}

func (s *Store) CartItems() []CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CartItem, len(s.cart))
	copy(out, s.cart)
	return out
}

func (s *Store) WishlistItems() []WishlistItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]WishlistItem, len(s.wishlist))
	copy(out, s.wishlist)
	return out
}

func (s *Store) ShippingAddress() Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.address
}

func (s *Store) PaymentMethod() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.payment
}

// ItemCount is the number of units across all cart lines.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, it := range s.cart {
		n += it.Quantity
	}
	return n
}

// Totals derives the current price breakdown. Derived values are never
// stored; they are recomputed from the line list on every read.
func (s *Store) Totals() pricing.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines := make([]pricing.Line, 0, len(s.cart))
	for _, it := range s.cart {
		lines = append(lines, pricing.Line{Price: it.Price, Quantity: it.Quantity})
	}
	return pricing.Compute(lines)
}
