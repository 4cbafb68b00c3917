package order

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"furniture-shop-backend/internal/product"
	"furniture-shop-backend/internal/user"
)

// Handler delegates order operations to the order service. It also needs the
// user service to decide owner-or-admin access on single order reads.
type Handler struct {
	service     *Service
	userService user.ServiceInterface
}

func NewHandler(s *Service, us user.ServiceInterface) *Handler {
	return &Handler{service: s, userService: us}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App, requireAdmin fiber.Handler) {
	app.Post("/api/orders", h.createOrder)
	// /myorders must be registered before /:id
	app.Get("/api/orders/myorders", h.getMyOrders)
	app.Get("/api/orders", requireAdmin, h.getAllOrders)
	app.Get("/api/orders/:id<[0-9]+>", h.getOrder)
	app.Put("/api/orders/:id<[0-9]+>/pay", h.payOrder)
	app.Put("/api/orders/:id<[0-9]+>/deliver", requireAdmin, h.deliverOrder)
	app.Put("/api/orders/:id<[0-9]+>/status", requireAdmin, h.updateStatus)
}

type createOrderRequest struct {
	OrderItems      []LineInput     `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
}

func (p *createOrderRequest) validate() map[string]string {
	errs := map[string]string{}
	if len(p.OrderItems) == 0 {
		errs["orderItems"] = "orderItems cannot be empty"
	}
	for _, item := range p.OrderItems {
		if item.Product <= 0 {
			errs["orderItems"] = "every line must name a product"
			break
		}
		if item.Quantity <= 0 {
			errs["orderItems"] = "every quantity must be positive"
			break
		}
	}
	if !validPaymentMethod(p.PaymentMethod) {
		errs["paymentMethod"] = "paymentMethod must be one of cash-on-delivery, paypal, card"
	}
	if p.ShippingAddress.Address == "" || p.ShippingAddress.City == "" ||
		p.ShippingAddress.PostalCode == "" || p.ShippingAddress.Country == "" {
		errs["shippingAddress"] = "address, city, postalCode and country are required"
	}
	return errs
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	payload := new(createOrderRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if ves := payload.validate(); len(ves) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": ves})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	created, err := h.service.Create(userID, CreateInput{
		Items:           payload.OrderItems,
		ShippingAddress: payload.ShippingAddress,
		PaymentMethod:   payload.PaymentMethod,
	})
	if err != nil {
		var stockErr *InsufficientStockError
		switch {
		case errors.Is(err, ErrEmptyOrder):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "No order items"})
		case errors.Is(err, product.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
		case errors.As(err, &stockErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message":   stockErr.Error(),
				"product":   stockErr.ProductID,
				"available": stockErr.Available,
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not create order"})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) getMyOrders(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	result, err := h.service.ListByUser(userID, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not list orders"})
	}
	return c.JSON(result)
}

func (h *Handler) getAllOrders(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	result, err := h.service.ListAll(c.Query("status"), page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not list orders"})
	}
	return c.JSON(result)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	ord, err := h.service.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found"})
	}

	if ord.User != userID {
		caller, err := h.userService.GetByID(userID)
		if err != nil || !caller.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "not authorized to view this order"})
		}
	}
	return c.JSON(ord)
}

type payOrderRequest struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"updateTime"`
	EmailAddress string `json:"emailAddress"`
}

func (h *Handler) payOrder(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(payOrderRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ID == "" {
		// cash on delivery and card confirmations arrive without a provider
		// reference, so mint one
		payload.ID = uuid.NewString()
	}

	updated, err := h.service.Pay(id, userID, PaymentResult{
		ID:           payload.ID,
		Status:       payload.Status,
		UpdateTime:   payload.UpdateTime,
		EmailAddress: payload.EmailAddress,
	})
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found"})
		case ErrNotOwner:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "not authorized to pay this order"})
		case ErrAlreadyPaid:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Order already paid"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not update order"})
		}
	}
	return c.JSON(updated)
}

func (h *Handler) deliverOrder(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}
	return h.transition(c, id, StatusDelivered)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order id"})
	}
	payload := new(statusRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	return h.transition(c, id, payload.Status)
}

func (h *Handler) transition(c *fiber.Ctx, id int, status string) error {
	updated, err := h.service.Transition(id, status)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found"})
		case ErrInvalidTransition:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid status transition"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not update order"})
		}
	}
	return c.JSON(updated)
}
