package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/sumifun/order-intake-api/internal/database"
	"github.com/sumifun/order-intake-api/internal/models"
	"github.com/sumifun/order-intake-api/pkg/logger"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate order id")
	ErrDatabase  = errors.New("database error")
)

// OrderRepository handles database operations for orders
type OrderRepository struct {
	db     *database.Database
	logger logger.Logger
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *database.Database, logger logger.Logger) *OrderRepository {
	return &OrderRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new order into the database. A uniqueness violation on
// order_id is reported as ErrDuplicate so callers can retry with a fresh ID.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (order_id, name, phone, quantity, price, date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.DB.ExecContext(
		ctx,
		query,
		order.OrderID,
		order.Name,
		order.Phone,
		order.Quantity,
		order.Price,
		order.Date,
		order.Status,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		r.logger.Error("Failed to create order", "error", err, "orderID", order.OrderID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	id, err := result.LastInsertId()

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	order.ID = id
	return nil
}

// GetByOrderID retrieves an order by its business identifier
func (r *OrderRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	query := `
		SELECT id, order_id, name, phone, quantity, price, date, status
		FROM orders
		WHERE order_id = ?
	`

	var order models.Order
	err := r.db.DB.GetContext(ctx, &order, query, orderID)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get order", "error", err, "orderID", orderID)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &order, nil
}

// GetAll retrieves all orders, most recent first
func (r *OrderRepository) GetAll(ctx context.Context) ([]*models.Order, error) {
	query := `
		SELECT id, order_id, name, phone, quantity, price, date, status
		FROM orders
		ORDER BY date DESC
	`

	orders := []*models.Order{}
	err := r.db.DB.SelectContext(ctx, &orders, query)

	if err != nil {
		r.logger.Error("Failed to get all orders", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return orders, nil
}

// Search retrieves all orders whose order_id, name or phone contains the
// query as a substring, most recent first. An empty query matches every row.
func (r *OrderRepository) Search(ctx context.Context, query string) ([]*models.Order, error) {
	stmt := `
		SELECT id, order_id, name, phone, quantity, price, date, status
		FROM orders
		WHERE order_id LIKE ? OR name LIKE ? OR phone LIKE ?
		ORDER BY date DESC
	`

	pattern := "%" + query + "%"
	orders := []*models.Order{}
	err := r.db.DB.SelectContext(ctx, &orders, stmt, pattern, pattern, pattern)

	if err != nil {
		r.logger.Error("Failed to search orders", "error", err, "query", query)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return orders, nil
}

// UpdateStatus overwrites the status of the order matching orderID and
// returns the number of rows that matched. Zero rows is not an error.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID, status string) (int64, error) {
	query := `UPDATE orders SET status = ? WHERE order_id = ?`

	result, err := r.db.DB.ExecContext(ctx, query, status, orderID)

	if err != nil {
		r.logger.Error("Failed to update order status", "error", err, "orderID", orderID)
		return 0, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return rowsAffected, nil
}

// InsertIfAbsent inserts the order unless a row with the same order_id
// already exists. It reports whether a row was actually inserted.
func (r *OrderRepository) InsertIfAbsent(ctx context.Context, order *models.Order) (bool, error) {
	query := `
		INSERT OR IGNORE INTO orders (order_id, name, phone, quantity, price, date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.DB.ExecContext(
		ctx,
		query,
		order.OrderID,
		order.Name,
		order.Phone,
		order.Quantity,
		order.Price,
		order.Date,
		order.Status,
	)

	if err != nil {
		r.logger.Error("Failed to insert order", "error", err, "orderID", order.OrderID)
		return false, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return rowsAffected > 0, nil
}

// Overwrite replaces all fields of the row matching the order's order_id.
// Used by the import overwrite policy for records that already exist.
func (r *OrderRepository) Overwrite(ctx context.Context, order *models.Order) error {
	query := `
		UPDATE orders
		SET name = ?, phone = ?, quantity = ?, price = ?, date = ?, status = ?
		WHERE order_id = ?
	`

	_, err := r.db.DB.ExecContext(
		ctx,
		query,
		order.Name,
		order.Phone,
		order.Quantity,
		order.Price,
		order.Date,
		order.Status,
		order.OrderID,
	)

	if err != nil {
		r.logger.Error("Failed to overwrite order", "error", err, "orderID", order.OrderID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return nil
}

// Count counts the total number of orders
func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM orders`

	err := r.db.DB.GetContext(ctx, &count, query)

	if err != nil {
		r.logger.Error("Failed to count orders", "error", err)
		return 0, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return count, nil
}

// isUniqueViolation reports whether err is a SQLite unique constraint error.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error

	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	return false
}
