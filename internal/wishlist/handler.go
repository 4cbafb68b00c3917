package wishlist

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"furniture-shop-backend/internal/product"
	"furniture-shop-backend/internal/user"
)

// Handler keeps wishlist-specific HTTP routing isolated from the user
// handler. The product service is used to populate entries and to verify a
// product exists before it is added.
type Handler struct {
	service        *Service
	productService product.ServiceInterface
}

func NewHandler(s *Service, ps product.ServiceInterface) *Handler {
	return &Handler{service: s, productService: ps}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/users/wishlist", h.getWishlist)
	app.Post("/api/users/wishlist/:id<[0-9]+>", h.addToWishlist)
	app.Delete("/api/users/wishlist/:id<[0-9]+>", h.removeFromWishlist)
}

func (h *Handler) addToWishlist(c *fiber.Ctx) error {
	productID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	if _, err := h.productService.GetByID(productID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := h.service.Add(userID, productID, now); err != nil {
		switch err {
		case user.ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
		case ErrAlreadyInWishlist:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Product already in wishlist"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not update wishlist"})
		}
	}
	return c.JSON(fiber.Map{"message": "Product added to wishlist"})
}

func (h *Handler) removeFromWishlist(c *fiber.Ctx) error {
	productID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := h.service.Remove(userID, productID, now); err != nil {
		switch err {
		case user.ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
		case ErrNotInWishlist:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Product not in wishlist"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not update wishlist"})
		}
	}
	return c.JSON(fiber.Map{"message": "Product removed from wishlist"})
}

func (h *Handler) getWishlist(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	ids, err := h.service.Get(userID)
	if err != nil {
		switch err {
		case user.ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not load wishlist"})
		}
	}

	// populate entries; products deleted since they were wishlisted are
	// silently skipped
	products := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		p, err := h.productService.GetByID(id)
		if err != nil {
			continue
		}
		products = append(products, p)
	}
	return c.JSON(products)
}
