// Package cli implements the HTTP client behind the shopctl command. It
// pairs a local session store with the storefront API: catalog reads and
// cart edits work offline, checkout and auth go over the wire.
package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"furniture-shop-backend/internal/order"
	"furniture-shop-backend/internal/product"
	"furniture-shop-backend/internal/session"
)

// ErrUnauthorized is returned when the server rejects the stored token.
// The token is already cleared by the time the caller sees this.
var ErrUnauthorized = errors.New("not logged in")

// APIError carries the server's error body for non-401 failures.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

type Client struct {
	baseURL string
	http    *http.Client
	store   *session.Store
}

func NewClient(baseURL string, store *session.Store) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		store:   store,
	}
}

func (c *Client) Store() *session.Store {
	return c.store
}

// do runs one API call. A 401 response clears the stored token before
// returning, so the next command starts from a clean logged-out state.
func (c *Client) do(method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.store.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.store.ClearToken()
		return ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		var errBody struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Message == "" {
			errBody.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: errBody.Message}
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// AuthResponse is the body of register and login responses.
type AuthResponse struct {
	UserID int    `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Token  string `json:"token"`
}

func (c *Client) Login(email, password string) (AuthResponse, error) {
	var res AuthResponse
	err := c.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &res)
	if err != nil {
		return AuthResponse{}, err
	}
	c.store.SaveToken(res.Token)
	return res, nil
}

func (c *Client) Register(name, email, password string) (AuthResponse, error) {
	var res AuthResponse
	err := c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &res)
	if err != nil {
		return AuthResponse{}, err
	}
	c.store.SaveToken(res.Token)
	return res, nil
}

func (c *Client) Logout() {
	c.store.ClearToken()
}

func (c *Client) Products(query string) (product.ListResult, error) {
	path := "/api/products"
	if query != "" {
		path += "?" + query
	}
	var res product.ListResult
	err := c.do(http.MethodGet, path, nil, &res)
	return res, err
}

func (c *Client) Product(id int) (product.Product, error) {
	var res product.Product
	err := c.do(http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil, &res)
	return res, err
}

// Checkout posts the local cart as a new order. The server recomputes every
// price from the catalog; the local totals are a preview only. On success
// the cart is cleared and the created order returned.
func (c *Client) Checkout() (order.Order, error) {
	items := c.store.CartItems()
	lines := make([]order.LineInput, 0, len(items))
	for _, item := range items {
		lines = append(lines, order.LineInput{Product: item.Product, Quantity: item.Quantity})
	}
	addr := c.store.ShippingAddress()

	payload := map[string]any{
		"orderItems": lines,
		"shippingAddress": order.ShippingAddress{
			FullName:   addr.FullName,
			Address:    addr.Address,
			City:       addr.City,
			PostalCode: addr.PostalCode,
			Country:    addr.Country,
			Phone:      addr.Phone,
		},
		"paymentMethod": c.store.PaymentMethod(),
	}

	var created order.Order
	if err := c.do(http.MethodPost, "/api/orders", payload, &created); err != nil {
		return order.Order{}, err
	}
	c.store.Clear()
	return created, nil
}

func (c *Client) MyOrders() (order.ListResult, error) {
	var res order.ListResult
	err := c.do(http.MethodGet, "/api/orders/myorders", nil, &res)
	return res, err
}

func (c *Client) Order(id int) (order.Order, error) {
	var res order.Order
	err := c.do(http.MethodGet, fmt.Sprintf("/api/orders/%d", id), nil, &res)
	return res, err
}

func (c *Client) PayOrder(id int, paymentID string) (order.Order, error) {
	var res order.Order
	err := c.do(http.MethodPut, fmt.Sprintf("/api/orders/%d/pay", id), map[string]string{
		"id":     paymentID,
		"status": "COMPLETED",
	}, &res)
	return res, err
}
