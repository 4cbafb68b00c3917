package product

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productColumns = `product_id, product_name, description, price, original_price, category, brand, material, color, count_in_stock, is_available, featured, images, reviews, rating, num_reviews, total_sold, created_at, updated_at`

const (
	getProductByIDQuery = `
		SELECT ` + productColumns + `
		FROM product
		WHERE product_id = $1
	`
	listFeaturedQuery = `
		SELECT ` + productColumns + `
		FROM product
		WHERE featured = TRUE AND is_available = TRUE
		ORDER BY product_id
		LIMIT $1
	`
	insertProductQuery = `
		INSERT INTO product (product_name, description, price, original_price, category, brand, material, color, count_in_stock, is_available, featured, images, reviews, rating, num_reviews, total_sold, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING product_id
	`
	updateProductQuery = `
		UPDATE product
		SET product_name = $1,
			description = $2,
			price = $3,
			original_price = $4,
			category = $5,
			brand = $6,
			material = $7,
			color = $8,
			count_in_stock = $9,
			is_available = $10,
			featured = $11,
			images = $12,
			updated_at = $13
		WHERE product_id = $14
	`
	deleteProductQuery = `DELETE FROM product WHERE product_id = $1`
	saveReviewsQuery   = `
		UPDATE product
		SET reviews = $1,
			rating = $2,
			num_reviews = $3,
			updated_at = $4
		WHERE product_id = $5
	`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var (
		p           Product
		origPrice   sql.NullFloat64
		brand       sql.NullString
		material    sql.NullString
		color       sql.NullString
		images      pq.StringArray
		reviewsJSON []byte
		createdAt   sql.NullString
		updatedAt   sql.NullString
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &origPrice, &p.Category, &brand, &material, &color, &p.CountInStock, &p.IsAvailable, &p.Featured, &images, &reviewsJSON, &p.Rating, &p.NumReviews, &p.TotalSold, &createdAt, &updatedAt)
	if err != nil {
		return Product{}, err
	}

	if origPrice.Valid {
		p.OriginalPrice = &origPrice.Float64
	}
	p.Brand = brand.String
	p.Material = material.String
	p.Color = color.String
	p.Images = []string(images)
	p.Reviews = []Review{}
	if len(reviewsJSON) > 0 {
		json.Unmarshal(reviewsJSON, &p.Reviews)
	}
	p.CreatedAt = createdAt.String
	p.UpdatedAt = updatedAt.String
	return p, nil
}

// buildListWhere translates a ListFilter into a WHERE clause plus args.
func buildListWhere(f ListFilter) (string, []any) {
	conds := []string{}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Category != "" && f.Category != "all" {
		conds = append(conds, "category = "+arg(f.Category))
	}
	if f.Search != "" {
		needle := "%" + f.Search + "%"
		conds = append(conds, "(product_name ILIKE "+arg(needle)+" OR description ILIKE "+arg(needle)+")")
	}
	if f.MinPrice != nil {
		conds = append(conds, "price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= "+arg(*f.MaxPrice))
	}
	if f.MinRating != nil {
		conds = append(conds, "rating >= "+arg(*f.MinRating))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func sortClause(sortKey string) string {
	switch sortKey {
	case "price-low":
		return " ORDER BY price ASC, product_id"
	case "price-high":
		return " ORDER BY price DESC, product_id"
	case "rating":
		return " ORDER BY rating DESC, product_id"
	default:
		return " ORDER BY created_at DESC, product_id"
	}
}

func (r *PostgresRepository) List(f ListFilter) ([]Product, int, error) {
	where, args := buildListWhere(f)

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM product"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + productColumns + " FROM product" + where + sortClause(f.Sort)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			continue
		}
		products = append(products, p)
	}
	return products, total, nil
}

func (r *PostgresRepository) ListFeatured(limit int) ([]Product, error) {
	rows, err := r.db.Query(listFeaturedQuery, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *PostgresRepository) GetByID(id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRow(getProductByIDQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Create(p Product) (Product, error) {
	reviewsJSON, err := json.Marshal(p.Reviews)
	if err != nil {
		return Product{}, err
	}
	var origPrice any
	if p.OriginalPrice != nil {
		origPrice = *p.OriginalPrice
	}

	err = r.db.QueryRow(
		insertProductQuery,
		p.Name, p.Description, p.Price, origPrice, p.Category, p.Brand, p.Material, p.Color,
		p.CountInStock, p.IsAvailable, p.Featured, pq.Array(p.Images), reviewsJSON,
		p.Rating, p.NumReviews, p.TotalSold, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Update(id int, p Product) (Product, error) {
	var origPrice any
	if p.OriginalPrice != nil {
		origPrice = *p.OriginalPrice
	}

	res, err := r.db.Exec(
		updateProductQuery,
		p.Name, p.Description, p.Price, origPrice, p.Category, p.Brand, p.Material, p.Color,
		p.CountInStock, p.IsAvailable, p.Featured, pq.Array(p.Images), p.UpdatedAt, id,
	)
	if err != nil {
		return Product{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Product{}, ErrNotFound
	}
	return r.GetByID(id)
}

func (r *PostgresRepository) Delete(id int) error {
	res, err := r.db.Exec(deleteProductQuery, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) SaveReviews(id int, reviews []Review, rating float64, numReviews int) (Product, error) {
	reviewsJSON, err := json.Marshal(reviews)
	if err != nil {
		return Product{}, err
	}

	res, err := r.db.Exec(saveReviewsQuery, reviewsJSON, rating, numReviews, nowRFC3339(), id)
	if err != nil {
		return Product{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Product{}, ErrNotFound
	}
	return r.GetByID(id)
}

func (r *PostgresRepository) Reset(products []Product) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM product`); err != nil {
		return err
	}
	for _, p := range products {
		reviewsJSON, err := json.Marshal(p.Reviews)
		if err != nil {
			return err
		}
		var origPrice any
		if p.OriginalPrice != nil {
			origPrice = *p.OriginalPrice
		}
		if _, err := tx.Exec(
			insertProductQuery,
			p.Name, p.Description, p.Price, origPrice, p.Category, p.Brand, p.Material, p.Color,
			p.CountInStock, p.IsAvailable, p.Featured, pq.Array(p.Images), reviewsJSON,
			p.Rating, p.NumReviews, p.TotalSold, p.CreatedAt, p.UpdatedAt,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}
