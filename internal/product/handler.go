package product

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"furniture-shop-backend/internal/user"
)

type Handler struct {
	service     *Service
	userService user.ServiceInterface
}

func NewHandler(service *Service, userService user.ServiceInterface) *Handler {
	return &Handler{service: service, userService: userService}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	// /featured must be registered before /:id so it is not swallowed by the
	// id parameter
	app.Get("/api/products/featured", h.getFeaturedProducts)
	app.Get("/api/products", h.getProducts)
	app.Get("/api/products/:id<[0-9]+>", h.getProduct)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App, requireAdmin fiber.Handler) {
	app.Post("/api/products/:id<[0-9]+>/reviews", h.createReview)
	app.Post("/api/products", requireAdmin, h.createProduct)
	app.Put("/api/products/:id<[0-9]+>", requireAdmin, h.updateProduct)
	app.Delete("/api/products/:id<[0-9]+>", requireAdmin, h.deleteProduct)
}

func parseListFilter(c *fiber.Ctx) ListFilter {
	f := ListFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
	}
	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		f.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		f.Limit = v
	}
	if v, err := strconv.ParseFloat(c.Query("minPrice"), 64); err == nil {
		f.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(c.Query("maxPrice"), 64); err == nil {
		f.MaxPrice = &v
	}
	if v, err := strconv.ParseFloat(c.Query("rating"), 64); err == nil {
		f.MinRating = &v
	}
	return f
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	result, err := h.service.List(parseListFilter(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not list products"})
	}
	return c.JSON(result)
}

func (h *Handler) getFeaturedProducts(c *fiber.Ctx) error {
	products, err := h.service.ListFeatured()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not list featured products"})
	}
	return c.JSON(products)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	p, err := h.service.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
	}
	return c.JSON(p)
}

func validateProductPayload(p *Product) map[string]string {
	errs := map[string]string{}
	if p.Name == "" {
		errs["name"] = "name is required"
	}
	if p.Description == "" {
		errs["description"] = "description is required"
	}
	if p.Price < 0 {
		errs["price"] = "price must be >= 0"
	}
	if p.CountInStock < 0 {
		errs["countInStock"] = "countInStock must be >= 0"
	}
	if !validCategory(p.Category) {
		errs["category"] = "invalid category"
	}
	if p.Brand == "" {
		errs["brand"] = "brand is required"
	}
	return errs
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	p := new(Product)
	if err := c.BodyParser(p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	// validate payload and return all validation errors together
	if ves := validateProductPayload(p); len(ves) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": ves})
	}

	now := nowRFC3339()
	if p.CreatedAt == "" {
		p.CreatedAt = now
	}
	if p.UpdatedAt == "" {
		p.UpdatedAt = now
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	// derived fields are never trusted from the payload
	p.Reviews = []Review{}
	p.Rating = 0
	p.NumReviews = 0
	p.TotalSold = 0

	created, err := h.service.Create(*p)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not create product"})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	existing, err := h.service.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
	}

	p := existing
	if err := c.BodyParser(&p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if ves := validateProductPayload(&p); len(ves) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": ves})
	}

	// reviews and the derived aggregates only change through the review
	// endpoint
	p.Reviews = existing.Reviews
	p.Rating = existing.Rating
	p.NumReviews = existing.NumReviews
	p.TotalSold = existing.TotalSold
	p.UpdatedAt = nowRFC3339()

	updated, err := h.service.Update(id, p)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
	}
	return c.JSON(updated)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}
	if err := h.service.Delete(id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
	}
	return c.JSON(fiber.Map{"message": "Product removed"})
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) createReview(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	payload := new(reviewRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Rating < 1 || payload.Rating > 5 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fiber.Map{"rating": "rating must be between 1 and 5"}})
	}
	if payload.Comment == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fiber.Map{"comment": "comment is required"}})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	caller, err := h.userService.GetByID(userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	updated, err := h.service.AddReview(id, Review{
		User:    caller.ID,
		Name:    caller.Name,
		Rating:  payload.Rating,
		Comment: payload.Comment,
	})
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
		case ErrAlreadyReviewed:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Product already reviewed"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not add review"})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Review added", "rating": updated.Rating, "numReviews": updated.NumReviews})
}
