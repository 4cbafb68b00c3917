package order

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"furniture-shop-backend/internal/product"
	"furniture-shop-backend/internal/user"
)

// makeApp wires the order handler behind a lightweight auth shim: the
// X-User-ID header stands in for a verified JWT. This keeps the tests off
// the real jwtware middleware while exercising the same Locals contract.
func makeApp(h *Handler, userService user.ServiceInterface) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				claims := jwt.MapClaims{"user_id": id}
				c.Locals("user", &jwt.Token{Claims: claims})
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app, user.RequireAdmin(userService))
	return app
}

func fixture(t *testing.T) (*fiber.App, *Service, *product.InMemoryRepository) {
	t.Helper()

	productRepo := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Nordmark Sofa", Price: 120, CountInStock: 5, IsAvailable: true},
		{ID: 2, Name: "Arc Chair", Price: 89, CountInStock: 1, IsAvailable: true},
	})
	svc := NewService(NewInMemoryRepository(productRepo), product.NewService(productRepo), nil)

	userRepo := user.NewInMemoryRepository([]user.User{
		{ID: 1, Name: "Casey", Email: "casey@example.com", Role: user.RoleCustomer},
		{ID: 2, Name: "Riley", Email: "riley@example.com", Role: user.RoleCustomer},
		{ID: 9, Name: "Root", Email: "admin@example.com", Role: user.RoleAdmin},
	})
	userService := user.NewService(userRepo)

	app := makeApp(NewHandler(svc, userService), userService)
	return app, svc, productRepo
}

const createBody = `{
	"orderItems": [{"product": 1, "quantity": 2}],
	"shippingAddress": {"fullName": "Casey", "address": "1 Main St", "city": "Springfield", "postalCode": "12345", "country": "US"},
	"paymentMethod": "card"
}`

func TestCreateOrderEndpoint(t *testing.T) {
	app, _, _ := fixture(t)

	req := httptest.NewRequest("POST", "/api/orders", strings.NewReader(createBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusCreated {
		b, _ := io.ReadAll(res.Body)
		t.Fatalf("expected 201, got %d: %s", res.StatusCode, b)
	}

	var created Order
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	// totals come from the catalog, whatever the client might claim
	if created.ItemsPrice != 240 || created.TotalPrice != 276 {
		t.Fatalf("unexpected totals: %+v", created)
	}
	if created.User != 1 {
		t.Fatalf("order not attributed to caller: %d", created.User)
	}
}

func TestCreateOrderEndpoint_ClientPricesIgnored(t *testing.T) {
	app, _, _ := fixture(t)

	// client tries to name its own prices; the extra fields are discarded
	body := `{
		"orderItems": [{"product": 1, "quantity": 2}],
		"shippingAddress": {"address": "1 Main St", "city": "Springfield", "postalCode": "12345", "country": "US"},
		"paymentMethod": "card",
		"itemsPrice": 1,
		"totalPrice": 1
	}`
	req := httptest.NewRequest("POST", "/api/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}

	var created Order
	json.NewDecoder(res.Body).Decode(&created)
	if created.TotalPrice != 276 {
		t.Fatalf("client-supplied total leaked through: %v", created.TotalPrice)
	}
}

func TestCreateOrderEndpoint_InsufficientStock(t *testing.T) {
	app, _, productRepo := fixture(t)

	body := `{
		"orderItems": [{"product": 2, "quantity": 3}],
		"shippingAddress": {"address": "1 Main St", "city": "Springfield", "postalCode": "12345", "country": "US"},
		"paymentMethod": "card"
	}`
	req := httptest.NewRequest("POST", "/api/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}

	var errBody struct {
		Message   string `json:"message"`
		Product   int    `json:"product"`
		Available int    `json:"available"`
	}
	json.NewDecoder(res.Body).Decode(&errBody)
	if errBody.Product != 2 || errBody.Available != 1 {
		t.Fatalf("error body missing stock detail: %+v", errBody)
	}

	p, _ := productRepo.GetByID(2)
	if p.CountInStock != 1 {
		t.Fatalf("failed checkout changed stock: %d", p.CountInStock)
	}
}

func TestCreateOrderEndpoint_Validation(t *testing.T) {
	app, _, _ := fixture(t)

	cases := []string{
		`{"orderItems": [], "shippingAddress": {"address": "a", "city": "b", "postalCode": "c", "country": "d"}, "paymentMethod": "card"}`,
		`{"orderItems": [{"product": 1, "quantity": 0}], "shippingAddress": {"address": "a", "city": "b", "postalCode": "c", "country": "d"}, "paymentMethod": "card"}`,
		`{"orderItems": [{"product": 1, "quantity": 1}], "shippingAddress": {"address": "a", "city": "b", "postalCode": "c", "country": "d"}, "paymentMethod": "bitcoin"}`,
		`{"orderItems": [{"product": 1, "quantity": 1}], "shippingAddress": {"city": "b"}, "paymentMethod": "card"}`,
	}
	for i, body := range cases {
		req := httptest.NewRequest("POST", "/api/orders", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "1")
		res, err := app.Test(req)
		if err != nil {
			t.Fatalf("case %d failed: %v", i, err)
		}
		if res.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("case %d: expected 400, got %d", i, res.StatusCode)
		}
	}
}

func TestCreateOrderEndpoint_RequiresAuth(t *testing.T) {
	app, _, _ := fixture(t)

	req := httptest.NewRequest("POST", "/api/orders", strings.NewReader(createBody))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", res.StatusCode)
	}
}

func TestGetOrder_OwnerOrAdminOnly(t *testing.T) {
	app, svc, _ := fixture(t)

	ord, err := svc.Create(1, CreateInput{
		Items:           []LineInput{{Product: 1, Quantity: 1}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "card",
	})
	if err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	path := "/api/orders/" + strconv.Itoa(ord.ID)

	cases := []struct {
		userID string
		want   int
	}{
		{"1", fiber.StatusOK},        // owner
		{"2", fiber.StatusForbidden}, // another customer
		{"9", fiber.StatusOK},        // admin
	}
	for _, tc := range cases {
		req := httptest.NewRequest("GET", path, nil)
		req.Header.Set("X-User-ID", tc.userID)
		res, err := app.Test(req)
		if err != nil {
			t.Fatalf("request as user %s failed: %v", tc.userID, err)
		}
		if res.StatusCode != tc.want {
			t.Fatalf("user %s: expected %d, got %d", tc.userID, tc.want, res.StatusCode)
		}
	}
}

func TestAdminOrderRoutes_RejectCustomers(t *testing.T) {
	app, svc, _ := fixture(t)

	ord, _ := svc.Create(1, CreateInput{
		Items:           []LineInput{{Product: 1, Quantity: 1}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "card",
	})
	id := strconv.Itoa(ord.ID)

	cases := []struct {
		method, path, body string
	}{
		{"GET", "/api/orders", ""},
		{"PUT", "/api/orders/" + id + "/deliver", ""},
		{"PUT", "/api/orders/" + id + "/status", `{"status":"processing"}`},
	}
	for _, tc := range cases {
		var reader io.Reader
		if tc.body != "" {
			reader = strings.NewReader(tc.body)
		}
		req := httptest.NewRequest(tc.method, tc.path, reader)
		if tc.body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("X-User-ID", "1")
		res, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s %s failed: %v", tc.method, tc.path, err)
		}
		if res.StatusCode != fiber.StatusForbidden {
			t.Fatalf("%s %s: expected 403 for customer, got %d", tc.method, tc.path, res.StatusCode)
		}
	}
}

func TestPayOrderEndpoint(t *testing.T) {
	app, svc, _ := fixture(t)

	ord, _ := svc.Create(1, CreateInput{
		Items:           []LineInput{{Product: 1, Quantity: 1}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "cash-on-delivery",
	})
	path := "/api/orders/" + strconv.Itoa(ord.ID) + "/pay"

	// another customer cannot pay it
	req := httptest.NewRequest("PUT", path, strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "2")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", res.StatusCode)
	}

	// the owner pays without a provider reference; one is minted
	req = httptest.NewRequest("PUT", path, strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "1")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("pay request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var paid Order
	json.NewDecoder(res.Body).Decode(&paid)
	if !paid.IsPaid || paid.Status != StatusProcessing {
		t.Fatalf("payment not applied: %+v", paid)
	}
	if paid.PaymentResult == nil || paid.PaymentResult.ID == "" {
		t.Fatalf("expected a minted payment reference: %+v", paid.PaymentResult)
	}
}

func TestMyOrdersEndpoint(t *testing.T) {
	app, svc, _ := fixture(t)

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(1, CreateInput{
			Items:           []LineInput{{Product: 1, Quantity: 1}},
			ShippingAddress: testAddress(),
			PaymentMethod:   "card",
		}); err != nil {
			t.Fatalf("seed order %d failed: %v", i, err)
		}
	}
	svc.Create(2, CreateInput{
		Items:           []LineInput{{Product: 2, Quantity: 1}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "card",
	})

	req := httptest.NewRequest("GET", "/api/orders/myorders", nil)
	req.Header.Set("X-User-ID", "1")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var result ListResult
	json.NewDecoder(res.Body).Decode(&result)
	if result.TotalOrders != 3 || len(result.Orders) != 3 {
		t.Fatalf("expected caller's 3 orders, got %d/%d", len(result.Orders), result.TotalOrders)
	}
	for _, ord := range result.Orders {
		if ord.User != 1 {
			t.Fatalf("another user's order leaked: %+v", ord)
		}
	}
}
