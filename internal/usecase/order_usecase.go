package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/axssiz/ParfumeProject/internal/domain"
)

const defaultListLimit = 200

// OrderService orchestrates order creation, the status state machine and
// backend selection. Every read and write goes to the primary store first;
// on domain.ErrUnavailable the same operation is retried once against the
// fallback store. The two backends are never reconciled: fallback-only
// writes stay invisible to the primary if it recovers later.
type OrderService interface {
	CreateFromCart(ctx context.Context, actor *domain.Actor, info domain.CustomerInfo, degradedItems []domain.OrderItem) (*domain.Order, error)
	CreateDirect(ctx context.Context, actor *domain.Actor, items []domain.OrderItem, info domain.CustomerInfo) (*domain.Order, error)
	Confirm(ctx context.Context, orderID string, actor *domain.Actor) (*domain.Order, error)
	SetStatus(ctx context.Context, orderID string, label string, actor *domain.Actor) (*domain.Order, error)
	Ack(ctx context.Context, orderID string, actor *domain.Actor) (*domain.Order, error)
	ListActive(ctx context.Context, limit int) ([]domain.Order, error)
	ListByOwner(ctx context.Context, actor *domain.Actor) ([]domain.Order, error)
	RecentEvents(ctx context.Context, limit int, actor *domain.Actor) ([]domain.OrderEvent, error)
}

type orderService struct {
	primary  domain.OrderStore
	fallback domain.OrderStore
	cart     domain.CartSnapshot
	guard    *Guard
	log      *logrus.Logger
	now      func() time.Time
}

func NewOrderService(primary, fallback domain.OrderStore, cart domain.CartSnapshot, guard *Guard, logger *logrus.Logger) OrderService {
	return &orderService{
		primary:  primary,
		fallback: fallback,
		cart:     cart,
		guard:    guard,
		log:      logger,
		now:      time.Now,
	}
}

// withStore is the failover decision: run the operation against the
// primary backend, and only on the typed unavailability signal retry it
// against the fallback. Every other error surfaces unchanged, so
// ErrUnavailable never reaches an external caller.
func (s *orderService) withStore(op string, fn func(store domain.OrderStore) error) error {
	err := fn(s.primary)
	if !errors.Is(err, domain.ErrUnavailable) {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"operation": op,
		"error":     err.Error(),
	}).Warn("Primary order store unavailable, retrying on fallback store")
	return fn(s.fallback)
}

// appendEvent records one audit record on the store that handled the
// parent operation. Failures are logged and swallowed: the audit trail is
// best-effort and never rolls back a completed state change.
func (s *orderService) appendEvent(ctx context.Context, store domain.OrderStore, event *domain.OrderEvent) {
	if err := store.AppendEvent(ctx, event); err != nil {
		s.log.WithFields(logrus.Fields{
			"order_id":   event.OrderID,
			"event_type": event.EventType,
		}).Errorf("Failed to append order event: %v", err)
	}
}

func (s *orderService) newEvent(orderID string, actor *domain.Actor, eventType string, meta map[string]any) *domain.OrderEvent {
	event := &domain.OrderEvent{
		OrderID:   orderID,
		EventType: eventType,
		Meta:      meta,
		CreatedAt: s.now(),
	}
	if actor != nil {
		id := actor.ID
		event.ActorUserID = &id
	}
	return event
}

func validateItems(items []domain.OrderItem) error {
	if len(items) == 0 {
		return domain.NewValidationError("items_empty")
	}
	for i, item := range items {
		if item.Quantity < 1 {
			return domain.NewValidationError(fmt.Sprintf("item_%d_invalid_quantity", i))
		}
		if item.UnitPrice < 0 {
			return domain.NewValidationError(fmt.Sprintf("item_%d_invalid_price", i))
		}
	}
	return nil
}

func (s *orderService) buildOrder(actor *domain.Actor, info domain.CustomerInfo, items []domain.OrderItem, status domain.OrderStatus) *domain.Order {
	ownerID := actor.ID
	return &domain.Order{
		ID:           uuid.New().String(),
		Items:        items,
		TotalPrice:   domain.TotalOf(items),
		Status:       status,
		OwnerUserID:  &ownerID,
		CustomerInfo: info,
		CreatedAt:    s.now(),
	}
}

// persistNew stores the order and its created event on whichever backend
// accepted the write.
func (s *orderService) persistNew(ctx context.Context, order *domain.Order, actor *domain.Actor) (*domain.Order, error) {
	err := s.withStore("create_order", func(store domain.OrderStore) error {
		orderNum, err := store.Create(ctx, order)
		if err != nil {
			return err
		}
		order.OrderNum = orderNum
		s.appendEvent(ctx, store, s.newEvent(order.ID, actor, "created", map[string]any{
			"customer_name":  order.Name,
			"customer_email": order.Email,
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"order_id":    order.ID,
		"order_num":   order.OrderNum,
		"total_price": order.TotalPrice,
		"status":      order.Status,
	}).Info("Order created")
	return order, nil
}

func (s *orderService) CreateFromCart(ctx context.Context, actor *domain.Actor, info domain.CustomerInfo, degradedItems []domain.OrderItem) (*domain.Order, error) {
	if err := s.guard.RequireActor(actor); err != nil {
		return nil, err
	}

	items, err := s.cart.ReadAndClear(ctx, actor.ID)
	if errors.Is(err, domain.ErrUnavailable) {
		// The cart lives in the primary store. In degraded mode accept the
		// client-supplied snapshot instead of failing checkout outright.
		s.log.Warnf("Cart snapshot unavailable for user %d, using client-supplied items", actor.ID)
		items = degradedItems
	} else if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.NewValidationError("cart_empty")
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}

	return s.persistNew(ctx, s.buildOrder(actor, info, items, domain.StatusPending), actor)
}

func (s *orderService) CreateDirect(ctx context.Context, actor *domain.Actor, items []domain.OrderItem, info domain.CustomerInfo) (*domain.Order, error) {
	if err := s.guard.RequireActor(actor); err != nil {
		return nil, err
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}

	return s.persistNew(ctx, s.buildOrder(actor, info, items, domain.StatusAwaitingConfirmation), actor)
}

func (s *orderService) Confirm(ctx context.Context, orderID string, actor *domain.Actor) (*domain.Order, error) {
	if err := s.guard.RequireActor(actor); err != nil {
		return nil, err
	}

	var confirmed *domain.Order
	err := s.withStore("confirm_order", func(store domain.OrderStore) error {
		// Check order: existence, then ownership, then state.
		order, err := store.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := s.guard.RequireOwner(actor, order); err != nil {
			return err
		}
		if order.Status != domain.StatusAwaitingConfirmation {
			s.log.Warnf("Confirm rejected for order %s in status %s", orderID, order.Status)
			return domain.ErrInvalidState
		}

		updated, err := store.SetStatus(ctx, orderID, domain.StatusConfirmed)
		if err != nil {
			return err
		}
		s.appendEvent(ctx, store, s.newEvent(orderID, actor, string(domain.StatusConfirmed), map[string]any{"by": "client"}))
		confirmed = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Order %s confirmed by owner %d", orderID, actor.ID)
	return confirmed, nil
}

func (s *orderService) SetStatus(ctx context.Context, orderID string, label string, actor *domain.Actor) (*domain.Order, error) {
	if err := s.guard.RequireOperator(actor); err != nil {
		return nil, err
	}
	status, err := domain.NormalizeStatus(label)
	if err != nil {
		return nil, err
	}

	var updated *domain.Order
	err = s.withStore("set_order_status", func(store domain.OrderStore) error {
		order, err := store.SetStatus(ctx, orderID, status)
		if err != nil {
			return err
		}
		s.appendEvent(ctx, store, s.newEvent(orderID, actor, string(status), map[string]any{}))
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": orderID,
		"status":   status,
		"actor_id": actor.ID,
	}).Info("Order status updated")
	return updated, nil
}

// Ack marks an order as taken into work. Re-acking an already acknowledged
// order simply re-persists the same status.
func (s *orderService) Ack(ctx context.Context, orderID string, actor *domain.Actor) (*domain.Order, error) {
	if err := s.guard.RequireOperator(actor); err != nil {
		return nil, err
	}

	var updated *domain.Order
	err := s.withStore("ack_order", func(store domain.OrderStore) error {
		order, err := store.SetStatus(ctx, orderID, domain.StatusInProgress)
		if err != nil {
			return err
		}
		s.appendEvent(ctx, store, s.newEvent(orderID, actor, "ack", map[string]any{}))
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Order %s acknowledged by operator %d", orderID, actor.ID)
	return updated, nil
}

func (s *orderService) ListActive(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	var orders []domain.Order
	err := s.withStore("list_active_orders", func(store domain.OrderStore) error {
		var err error
		orders, err = store.ListActive(ctx, limit)
		return err
	})
	return orders, err
}

func (s *orderService) ListByOwner(ctx context.Context, actor *domain.Actor) ([]domain.Order, error) {
	if err := s.guard.RequireActor(actor); err != nil {
		return nil, err
	}
	var orders []domain.Order
	err := s.withStore("list_owner_orders", func(store domain.OrderStore) error {
		var err error
		orders, err = store.ListByOwner(ctx, actor.ID)
		return err
	})
	return orders, err
}

func (s *orderService) RecentEvents(ctx context.Context, limit int, actor *domain.Actor) ([]domain.OrderEvent, error) {
	if err := s.guard.RequireOperator(actor); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	var events []domain.OrderEvent
	err := s.withStore("list_recent_events", func(store domain.OrderStore) error {
		var err error
		events, err = store.ListEvents(ctx, limit)
		return err
	})
	return events, err
}
