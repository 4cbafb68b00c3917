package order

import (
	"database/sql"
	"encoding/json"

	"furniture-shop-backend/internal/product"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const orderColumns = `order_id, user_id, order_items, shipping_address, payment_method, payment_result, items_price, tax_price, shipping_price, total_price, is_paid, paid_at, is_delivered, delivered_at, status, created_at, updated_at`

const (
	insertOrderQuery = `
		INSERT INTO orders (user_id, order_items, shipping_address, payment_method, payment_result, items_price, tax_price, shipping_price, total_price, is_paid, paid_at, is_delivered, delivered_at, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING order_id
	`
	// decrement succeeds only when enough stock remains; a zero row count
	// means the order cannot be fulfilled and the transaction is rolled back
	reserveStockQuery = `
		UPDATE product
		SET count_in_stock = count_in_stock - $1,
			total_sold = total_sold + $1
		WHERE product_id = $2 AND count_in_stock >= $1
	`
	stockInfoQuery = `SELECT product_name, count_in_stock FROM product WHERE product_id = $1`
	restockQuery   = `
		UPDATE product
		SET count_in_stock = count_in_stock + $1,
			total_sold = total_sold - $1
		WHERE product_id = $2
	`
	getOrderByIDQuery = `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`
	updateOrderQuery  = `
		UPDATE orders
		SET payment_result = $1,
			is_paid = $2,
			paid_at = $3,
			is_delivered = $4,
			delivered_at = $5,
			status = $6,
			updated_at = $7
		WHERE order_id = $8
	`
	markPaidQuery = `
		UPDATE orders
		SET payment_result = $1,
			is_paid = TRUE,
			paid_at = $2,
			status = $3,
			updated_at = $4
		WHERE order_id = $5 AND is_paid = FALSE
	`
	listStalePendingQuery = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = 'pending' AND is_paid = FALSE AND created_at < $1
		ORDER BY order_id
	`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var (
		ord         Order
		itemsJSON   []byte
		addressJSON []byte
		resultJSON  []byte
		paidAt      sql.NullString
		deliveredAt sql.NullString
	)
	err := row.Scan(&ord.ID, &ord.User, &itemsJSON, &addressJSON, &ord.PaymentMethod, &resultJSON, &ord.ItemsPrice, &ord.TaxPrice, &ord.ShippingPrice, &ord.TotalPrice, &ord.IsPaid, &paidAt, &ord.IsDelivered, &deliveredAt, &ord.Status, &ord.CreatedAt, &ord.UpdatedAt)
	if err != nil {
		return Order{}, err
	}

	ord.Items = []OrderItem{}
	json.Unmarshal(itemsJSON, &ord.Items)
	json.Unmarshal(addressJSON, &ord.ShippingAddress)
	if len(resultJSON) > 0 && string(resultJSON) != "null" {
		ord.PaymentResult = &PaymentResult{}
		json.Unmarshal(resultJSON, ord.PaymentResult)
	}
	ord.PaidAt = paidAt.String
	ord.DeliveredAt = deliveredAt.String
	return ord, nil
}

func marshalOrder(ord Order) (items, address, result []byte, err error) {
	if items, err = json.Marshal(ord.Items); err != nil {
		return
	}
	if address, err = json.Marshal(ord.ShippingAddress); err != nil {
		return
	}
	result, err = json.Marshal(ord.PaymentResult)
	return
}

// Create inserts the order and decrements stock for every line inside one
// transaction. The conditional UPDATE is the authoritative stock check: two
// concurrent checkouts racing for the last unit serialize on the row lock
// and only one of them finds enough stock.
func (r *PostgresRepository) Create(ord Order) (Order, error) {
	itemsJSON, addressJSON, resultJSON, err := marshalOrder(ord)
	if err != nil {
		return Order{}, err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return Order{}, err
	}
	defer tx.Rollback()

	err = tx.QueryRow(
		insertOrderQuery,
		ord.User, itemsJSON, addressJSON, ord.PaymentMethod, resultJSON,
		ord.ItemsPrice, ord.TaxPrice, ord.ShippingPrice, ord.TotalPrice,
		ord.IsPaid, ord.PaidAt, ord.IsDelivered, ord.DeliveredAt,
		ord.Status, ord.CreatedAt, ord.UpdatedAt,
	).Scan(&ord.ID)
	if err != nil {
		return Order{}, err
	}

	for _, item := range ord.Items {
		res, err := tx.Exec(reserveStockQuery, item.Quantity, item.Product)
		if err != nil {
			return Order{}, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return Order{}, err
		}
		if n == 0 {
			var name string
			var available int
			if err := tx.QueryRow(stockInfoQuery, item.Product).Scan(&name, &available); err != nil {
				if err == sql.ErrNoRows {
					return Order{}, product.ErrNotFound
				}
				return Order{}, err
			}
			return Order{}, &InsufficientStockError{ProductID: item.Product, Name: name, Available: available}
		}
	}

	if err := tx.Commit(); err != nil {
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) GetByID(id int) (Order, error) {
	ord, err := scanOrder(r.db.QueryRow(getOrderByIDQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) listPage(where string, args []any, page, limit int) ([]Order, int, error) {
	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM orders"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + orderColumns + " FROM orders" + where + " ORDER BY created_at DESC, order_id DESC"
	switch len(args) {
	case 0:
		query += " LIMIT $1 OFFSET $2"
	case 1:
		query += " LIMIT $2 OFFSET $3"
	default:
		query += " LIMIT $3 OFFSET $4"
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			continue
		}
		orders = append(orders, ord)
	}
	return orders, total, nil
}

func (r *PostgresRepository) ListByUser(userID, page, limit int) ([]Order, int, error) {
	return r.listPage(" WHERE user_id = $1", []any{userID}, page, limit)
}

func (r *PostgresRepository) ListAll(status string, page, limit int) ([]Order, int, error) {
	if status == "" {
		return r.listPage("", nil, page, limit)
	}
	return r.listPage(" WHERE status = $1", []any{status}, page, limit)
}

func (r *PostgresRepository) Update(id int, ord Order) (Order, error) {
	resultJSON, err := json.Marshal(ord.PaymentResult)
	if err != nil {
		return Order{}, err
	}

	res, err := r.db.Exec(
		updateOrderQuery,
		resultJSON, ord.IsPaid, ord.PaidAt, ord.IsDelivered, ord.DeliveredAt,
		ord.Status, ord.UpdatedAt, id,
	)
	if err != nil {
		return Order{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Order{}, ErrNotFound
	}
	return r.GetByID(id)
}

func (r *PostgresRepository) MarkPaid(id int, ord Order) (Order, error) {
	resultJSON, err := json.Marshal(ord.PaymentResult)
	if err != nil {
		return Order{}, err
	}

	res, err := r.db.Exec(markPaidQuery, resultJSON, ord.PaidAt, ord.Status, ord.UpdatedAt, id)
	if err != nil {
		return Order{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// no row matched: either the order is gone or someone paid first
		if _, err := r.GetByID(id); err != nil {
			return Order{}, err
		}
		return Order{}, ErrAlreadyPaid
	}
	return r.GetByID(id)
}

func (r *PostgresRepository) Restock(items []OrderItem) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, item := range items {
		if _, err := tx.Exec(restockQuery, item.Quantity, item.Product); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *PostgresRepository) ListStalePending(before string) ([]Order, error) {
	rows, err := r.db.Query(listStalePendingQuery, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			continue
		}
		orders = append(orders, ord)
	}
	return orders, nil
}
