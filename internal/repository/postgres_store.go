package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/axssiz/ParfumeProject/internal/domain"
)

type postgresOrderStore struct {
	db      *sql.DB
	log     *logrus.Logger
	timeout time.Duration
}

// NewPostgresOrderStore wraps the durable relational store. Every call is
// bounded by the configured timeout; transport-level failures surface as
// domain.ErrUnavailable so the usecase layer can fail over deterministically.
func NewPostgresOrderStore(db *sql.DB, timeout time.Duration, logger *logrus.Logger) domain.OrderStore {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &postgresOrderStore{db: db, log: logger, timeout: timeout}
}

// InitOrderSchema creates the orders and order_events tables when missing.
func InitOrderSchema(db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS orders(
			id TEXT PRIMARY KEY,
			order_num BIGINT NOT NULL,
			items JSONB,
			total_price NUMERIC,
			status VARCHAR(32) NOT NULL,
			owner_user_id INTEGER,
			customer_name TEXT,
			customer_phone TEXT,
			customer_email TEXT,
			customer_city TEXT,
			customer_comment TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS order_events(
			id SERIAL PRIMARY KEY,
			order_id TEXT NOT NULL,
			actor_user_id INTEGER,
			event_type VARCHAR(50) NOT NULL,
			event_meta JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize order schema: %w", err)
		}
	}
	return nil
}

func (r *postgresOrderStore) boundedCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// classify maps transport-level failures onto domain.ErrUnavailable. A
// *pq.Error outside the connection-exception class means the server
// processed the request, so it surfaces as a real failure.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code.Class() == "08" {
			return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
		}
		return err
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.EOF) ||
		errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	return err
}

const orderColumns = `id, order_num, items, total_price, status, owner_user_id,
		customer_name, customer_phone, customer_email, customer_city, customer_comment, created_at`

func (r *postgresOrderStore) Create(ctx context.Context, order *domain.Order) (int64, error) {
	ctx, cancel := r.boundedCtx(ctx)
	defer cancel()

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return 0, fmt.Errorf("could not encode order items: %w", err)
	}

	// The subselect assigns order_num atomically with the insert: 1 for an
	// empty table, max+1 otherwise. Numbers are never skipped or reused.
	query := `
        INSERT INTO orders (id, order_num, items, total_price, status, owner_user_id,
                            customer_name, customer_phone, customer_email, customer_city, customer_comment, created_at)
        VALUES ($1, (SELECT COALESCE(MAX(order_num), 0) + 1 FROM orders), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING order_num
    `
	var orderNum int64
	err = r.db.QueryRowContext(ctx, query,
		order.ID, itemsJSON, order.TotalPrice, order.Status, nullableInt(order.OwnerUserID),
		order.Name, order.Phone, order.Email, order.City, order.Comment, order.CreatedAt,
	).Scan(&orderNum)
	if err != nil {
		err = classify(err)
		r.log.Errorf("Failed to insert order %s: %v", order.ID, err)
		return 0, err
	}

	r.log.Infof("Order %s created with order_num %d", order.ID, orderNum)
	return orderNum, nil
}

func (r *postgresOrderStore) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, cancel := r.boundedCtx(ctx)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order %s not found", id)
			return nil, domain.ErrNotFound
		}
		err = classify(err)
		r.log.Errorf("Failed to get order %s: %v", id, err)
		return nil, err
	}
	return order, nil
}

func (r *postgresOrderStore) ListActive(ctx context.Context, limit int) ([]domain.Order, error) {
	ctx, cancel := r.boundedCtx(ctx)
	defer cancel()

	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE status NOT IN ($1, $2)
        ORDER BY created_at DESC, order_num DESC
        LIMIT $3
    `
	rows, err := r.db.QueryContext(ctx, query, domain.StatusDelivered, domain.StatusCancelled, limit)
	if err != nil {
		err = classify(err)
		r.log.Errorf("Failed to list active orders: %v", err)
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *postgresOrderStore) ListByOwner(ctx context.Context, userID int) ([]domain.Order, error) {
	ctx, cancel := r.boundedCtx(ctx)
	defer cancel()

	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE owner_user_id = $1
        ORDER BY created_at DESC, order_num DESC
    `
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		err = classify(err)
		r.log.Errorf("Failed to list orders for user %d: %v", userID, err)
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *postgresOrderStore) SetStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	ctx, cancel := r.boundedCtx(ctx)
	defer cancel()

	query := `
        UPDATE orders SET status = $1 WHERE id = $2
        RETURNING ` + orderColumns + `
    `
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order %s not found for status update", id)
			return nil, domain.ErrNotFound
		}
		err = classify(err)
		r.log.Errorf("Failed to set status %s on order %s: %v", status, id, err)
		return nil, err
	}

	r.log.Infof("Order %s status set to %s", id, status)
	return order, nil
}

func (r *postgresOrderStore) AppendEvent(ctx context.Context, event *domain.OrderEvent) error {
	ctx, cancel := r.boundedCtx(ctx)
	defer cancel()

	metaJSON, err := json.Marshal(event.Meta)
	if err != nil {
		return fmt.Errorf("could not encode event meta: %w", err)
	}

	query := `
        INSERT INTO order_events (order_id, actor_user_id, event_type, event_meta, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err = r.db.ExecContext(ctx, query,
		event.OrderID, nullableInt(event.ActorUserID), event.EventType, metaJSON, event.CreatedAt)
	if err != nil {
		return classify(err)
	}
	return nil
}

func (r *postgresOrderStore) ListEvents(ctx context.Context, limit int) ([]domain.OrderEvent, error) {
	ctx, cancel := r.boundedCtx(ctx)
	defer cancel()

	// id DESC breaks timestamp ties by insertion sequence.
	query := `
        SELECT order_id, actor_user_id, event_type, event_meta, created_at
        FROM order_events
        ORDER BY id DESC
        LIMIT $1
    `
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		err = classify(err)
		r.log.Errorf("Failed to list order events: %v", err)
		return nil, err
	}
	defer rows.Close()

	var events []domain.OrderEvent
	for rows.Next() {
		var (
			event    domain.OrderEvent
			actorID  sql.NullInt64
			metaJSON []byte
		)
		if err := rows.Scan(&event.OrderID, &actorID, &event.EventType, &metaJSON, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning order event: %w", err)
		}
		if actorID.Valid {
			v := int(actorID.Int64)
			event.ActorUserID = &v
		}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &event.Meta); err != nil {
				r.log.Warnf("Skipping undecodable event meta for order %s: %v", event.OrderID, err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return events, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order     domain.Order
		itemsJSON []byte
		ownerID   sql.NullInt64
		total     sql.NullFloat64
	)
	err := row.Scan(
		&order.ID, &order.OrderNum, &itemsJSON, &total, &order.Status, &ownerID,
		&order.Name, &order.Phone, &order.Email, &order.City, &order.Comment, &order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if ownerID.Valid {
		v := int(ownerID.Int64)
		order.OwnerUserID = &v
	}
	if total.Valid {
		order.TotalPrice = total.Float64
	}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
			return nil, fmt.Errorf("error decoding order items: %w", err)
		}
	}
	return &order, nil
}

func collectOrders(rows *sql.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning order row: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return orders, nil
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
