package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	apperrors "github.com/sumifun/order-intake-api/pkg/errors"
	"github.com/sumifun/order-intake-api/pkg/logger"
	"github.com/sumifun/order-intake-api/pkg/retry"

	"github.com/sumifun/order-intake-api/internal/models"
	"github.com/sumifun/order-intake-api/internal/repository"
)

// EventPublisher publishes order lifecycle events to an external broker.
// Publishing is best effort: failures are logged, never surfaced to callers.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// ImportPolicy decides what happens when an imported record's order_id
// already exists in the store.
type ImportPolicy int

const (
	// ImportSkip silently skips records whose order_id already exists.
	ImportSkip ImportPolicy = iota
	// ImportOverwrite replaces the stored fields of existing records.
	ImportOverwrite
	// ImportError aborts the import on the first existing order_id.
	ImportError
)

// ImportResult reports how many records an import attempted and how many
// rows were actually inserted.
type ImportResult struct {
	Attempted int
	Inserted  int
}

// OrderService owns all order operations. Every other component reaches the
// orders table only through it.
type OrderService struct {
	orderRepo *repository.OrderRepository
	publisher EventPublisher
	logger    logger.Logger
}

// NewOrderService creates a new OrderService. publisher may be nil, which
// disables event notifications.
func NewOrderService(orderRepo *repository.OrderRepository, publisher EventPublisher, logger logger.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// Create stores a new order and returns it. The order ID is generated here;
// on the practically unreachable case of an ID collision the insert is
// retried with a fresh ID instead of failing the request.
func (s *OrderService) Create(ctx context.Context, name, phone string, quantity int) (*models.Order, error) {
	var order *models.Order

	attempt := func() error {
		order = models.NewOrder(name, phone, quantity)
		return s.orderRepo.Create(ctx, order)
	}

	cfg := &retry.Config{
		MaxAttempts:     3,
		BackoffStrategy: &retry.ConstantBackoff{Interval: 10 * time.Millisecond},
		Logger:          s.logger,
		RetryableErrors: []error{repository.ErrDuplicate},
	}

	if err := retry.Retry(ctx, attempt, cfg); err != nil {
		return nil, err
	}

	s.logger.Info("Order created", "orderID", order.OrderID, "quantity", order.Quantity, "price", order.Price)
	s.publishEvent(ctx, order.OrderID, func() ([]byte, error) {
		return models.NewOrderCreatedEvent(order)
	})

	return order, nil
}

// List returns all orders, most recent first.
func (s *OrderService) List(ctx context.Context) ([]*models.Order, error) {
	return s.orderRepo.GetAll(ctx)
}

// Search returns all orders whose order_id, name or phone contains query.
func (s *OrderService) Search(ctx context.Context, query string) ([]*models.Order, error) {
	return s.orderRepo.Search(ctx, query)
}

// UpdateStatus overwrites the status of the order matching orderID. It
// succeeds even when no row matched, mirroring the historical contract of
// the status endpoint; the zero-match case is logged for operators.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) error {
	matched, err := s.orderRepo.UpdateStatus(ctx, orderID, status)

	if err != nil {
		return err
	}

	if matched == 0 {
		s.logger.Warn("Status update matched no order", "orderID", orderID, "status", status)
	} else {
		s.logger.Info("Order status updated", "orderID", orderID, "status", status)
		s.publishEvent(ctx, orderID, func() ([]byte, error) {
			return models.NewOrderStatusChangedEvent(orderID, status)
		})
	}

	return nil
}

// ExportToFile writes all orders to path as an indented UTF-8 JSON array,
// overwriting any existing file, and returns the number of exported rows.
func (s *OrderService) ExportToFile(ctx context.Context, path string) (int, error) {
	orders, err := s.orderRepo.GetAll(ctx)

	if err != nil {
		return 0, err
	}

	f, err := os.Create(path)

	if err != nil {
		return 0, apperrors.NewInternalError(fmt.Sprintf("failed to create export file: %v", err))
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	// Keep non-ASCII characters literal in the export file.
	enc.SetEscapeHTML(false)

	if err := enc.Encode(orders); err != nil {
		return 0, apperrors.NewInternalError(fmt.Sprintf("failed to write export file: %v", err))
	}

	s.logger.Info("Orders exported", "path", path, "count", len(orders))
	return len(orders), nil
}

// importRecord mirrors the exported order shape with optional fields, so
// missing quantity, price and status take their defaults on import.
type importRecord struct {
	OrderID  string  `json:"order_id"`
	Name     string  `json:"name"`
	Phone    string  `json:"phone"`
	Quantity *int    `json:"quantity"`
	Price    *int    `json:"price"`
	Date     string  `json:"date"`
	Status   *string `json:"status"`
}

// ImportFromFile reads a JSON export from path and inserts its records
// according to the given collision policy. Per-record insertion errors are
// logged and skipped rather than aborting the whole import.
func (s *OrderService) ImportFromFile(ctx context.Context, path string, policy ImportPolicy) (*ImportResult, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("file %s not found", path))
		}
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to read import file: %v", err))
	}

	var records []importRecord

	if err := json.Unmarshal(data, &records); err != nil {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("failed to parse import file: %v", err))
	}

	result := &ImportResult{Attempted: len(records)}

	for _, rec := range records {
		order := rec.toOrder()

		inserted, err := s.orderRepo.InsertIfAbsent(ctx, order)

		if err != nil {
			s.logger.Error("Failed to import order", "error", err, "orderID", order.OrderID)
			continue
		}

		if inserted {
			result.Inserted++
			continue
		}

		// The record already exists; apply the collision policy.
		switch policy {
		case ImportOverwrite:
			if err := s.orderRepo.Overwrite(ctx, order); err != nil {
				s.logger.Error("Failed to overwrite order", "error", err, "orderID", order.OrderID)
			}
		case ImportError:
			return result, apperrors.NewConflictError(fmt.Sprintf("order %s already exists", order.OrderID))
		}
	}

	s.logger.Info("Orders imported", "path", path, "attempted", result.Attempted, "inserted", result.Inserted)
	return result, nil
}

// toOrder converts an import record into an order, applying defaults for
// the optional fields.
func (r importRecord) toOrder() *models.Order {
	order := &models.Order{
		OrderID:  r.OrderID,
		Name:     r.Name,
		Phone:    r.Phone,
		Quantity: 1,
		Price:    models.UnitPrice,
		Date:     r.Date,
		Status:   models.DefaultStatus,
	}

	if r.Quantity != nil {
		order.Quantity = *r.Quantity
	}
	if r.Price != nil {
		order.Price = *r.Price
	}
	if r.Status != nil {
		order.Status = *r.Status
	}

	return order
}

// publishEvent serializes and publishes an event when a publisher is
// configured. Failures only produce a log line.
func (s *OrderService) publishEvent(ctx context.Context, key string, build func() ([]byte, error)) {
	if s.publisher == nil {
		return
	}

	payload, err := build()

	if err != nil {
		s.logger.Error("Failed to build order event", "error", err, "orderID", key)
		return
	}

	if err := s.publisher.Publish(ctx, key, payload); err != nil {
		s.logger.Error("Failed to publish order event", "error", err, "orderID", key)
	}
}
