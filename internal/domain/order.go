package domain

import (
	"context"
	"time"
)

const (
	RoleClient = "client"
	RoleWorker = "worker"
	RoleAdmin  = "admin"
)

// Actor is the authenticated caller as resolved by the identity collaborator.
// A nil *Actor means the request is anonymous.
type Actor struct {
	ID   int    `json:"id"`
	Role string `json:"role"`
}

func (a *Actor) IsOperator() bool {
	if a == nil {
		return false
	}
	return a.Role == RoleWorker || a.Role == RoleAdmin
}

type OrderItem struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	Brand     string  `json:"brand"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// CustomerInfo is a free-form snapshot taken at checkout. It is never
// updated after the order is created, even if the user record changes.
type CustomerInfo struct {
	Name    string `json:"customer_name"`
	Phone   string `json:"customer_phone"`
	Email   string `json:"customer_email"`
	City    string `json:"customer_city"`
	Comment string `json:"customer_comment"`
}

type Order struct {
	ID          string      `json:"id"`
	OrderNum    int64       `json:"order_num"`
	Items       []OrderItem `json:"items"`
	TotalPrice  float64     `json:"total_price"`
	Status      OrderStatus `json:"status"`
	OwnerUserID *int        `json:"owner_user_id,omitempty"`
	CustomerInfo
	CreatedAt time.Time `json:"created_at"`
}

// OrderEvent is one row of the append-only audit trail. Events are never
// updated or deleted at any layer.
type OrderEvent struct {
	OrderID     string         `json:"order_id"`
	ActorUserID *int           `json:"actor_user_id,omitempty"`
	EventType   string         `json:"event_type"`
	Meta        map[string]any `json:"event_meta,omitempty"`
	CreatedAt   time.Time      `json:"timestamp"`
}

// TotalOf computes the order total from its items. The result is fixed on
// the order at creation time and never recomputed afterwards.
func TotalOf(items []OrderItem) float64 {
	var total float64
	for _, it := range items {
		total += it.UnitPrice * float64(it.Quantity)
	}
	return total
}

// OrderStore is the uniform persistence contract shared by the durable
// primary backend and the degraded file fallback. Implementations perform
// storage mutations only; business-rule validation lives in the usecase
// layer.
type OrderStore interface {
	// Create persists a new order and assigns the next order_num for this
	// backend instance: 1 for an empty store, max+1 otherwise.
	Create(ctx context.Context, order *Order) (int64, error)

	// GetByID returns ErrNotFound when the id is absent.
	GetByID(ctx context.Context, id string) (*Order, error)

	// ListActive returns orders not in a terminal status, newest first.
	ListActive(ctx context.Context, limit int) ([]Order, error)

	// ListByOwner returns every order owned by the user, newest first.
	ListByOwner(ctx context.Context, userID int) ([]Order, error)

	// SetStatus overwrites the stored status and returns the updated order.
	// Returns ErrNotFound when the id is absent.
	SetStatus(ctx context.Context, id string, status OrderStatus) (*Order, error)

	// AppendEvent appends one audit record.
	AppendEvent(ctx context.Context, event *OrderEvent) error

	// ListEvents returns the most recent events, newest first.
	ListEvents(ctx context.Context, limit int) ([]OrderEvent, error)
}

// CartSnapshot supplies a user's pending item selections. ReadAndClear
// consumes the snapshot: a second call returns an empty list.
type CartSnapshot interface {
	ReadAndClear(ctx context.Context, userID int) ([]OrderItem, error)
}
