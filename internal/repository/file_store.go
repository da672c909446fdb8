package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/axssiz/ParfumeProject/internal/domain"
)

const (
	// maxFallbackOrders bounds the degraded store: the oldest orders are
	// silently dropped on overflow.
	maxFallbackOrders = 200
	maxFallbackEvents = 500
)

// fileOrderStore is the degraded-mode backend: two newest-first JSON
// documents rewritten in full on every mutation. Each operation performs a
// load-modify-save cycle with no isolation, so the store is single-writer
// only. Writes that land here while the primary is down are never
// replayed back into it.
type fileOrderStore struct {
	ordersPath string
	eventsPath string
	log        *logrus.Logger
}

func NewFileOrderStore(ordersPath, eventsPath string, logger *logrus.Logger) domain.OrderStore {
	return &fileOrderStore{ordersPath: ordersPath, eventsPath: eventsPath, log: logger}
}

func (r *fileOrderStore) loadOrders() []domain.Order {
	var orders []domain.Order
	r.loadDocument(r.ordersPath, &orders)
	return orders
}

func (r *fileOrderStore) loadEvents() []domain.OrderEvent {
	var events []domain.OrderEvent
	r.loadDocument(r.eventsPath, &events)
	return events
}

func (r *fileOrderStore) loadDocument(path string, out any) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			r.log.Warnf("Failed to read fallback document %s, treating as empty: %v", path, err)
		}
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		r.log.Warnf("Fallback document %s is not valid JSON, treating as empty: %v", path, err)
	}
}

func (r *fileOrderStore) saveDocument(path string, in any) error {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode fallback document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("could not write fallback document %s: %w", path, err)
	}
	return nil
}

func nextOrderNum(orders []domain.Order) int64 {
	var max int64
	for _, o := range orders {
		if o.OrderNum > max {
			max = o.OrderNum
		}
	}
	return max + 1
}

func (r *fileOrderStore) Create(_ context.Context, order *domain.Order) (int64, error) {
	orders := r.loadOrders()
	orderNum := nextOrderNum(orders)
	order.OrderNum = orderNum

	orders = append([]domain.Order{*order}, orders...)
	if len(orders) > maxFallbackOrders {
		orders = orders[:maxFallbackOrders]
	}
	if err := r.saveDocument(r.ordersPath, orders); err != nil {
		r.log.Errorf("Failed to persist fallback order %s: %v", order.ID, err)
		return 0, err
	}

	r.log.Infof("Fallback order %s created with order_num %d", order.ID, orderNum)
	return orderNum, nil
}

func (r *fileOrderStore) GetByID(_ context.Context, id string) (*domain.Order, error) {
	for _, o := range r.loadOrders() {
		if o.ID == id {
			order := o
			return &order, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fileOrderStore) ListActive(_ context.Context, limit int) ([]domain.Order, error) {
	var active []domain.Order
	for _, o := range r.loadOrders() {
		if o.Status.Terminal() {
			continue
		}
		active = append(active, o)
		if limit > 0 && len(active) >= limit {
			break
		}
	}
	return active, nil
}

func (r *fileOrderStore) ListByOwner(_ context.Context, userID int) ([]domain.Order, error) {
	var owned []domain.Order
	for _, o := range r.loadOrders() {
		if o.OwnerUserID != nil && *o.OwnerUserID == userID {
			owned = append(owned, o)
		}
	}
	return owned, nil
}

func (r *fileOrderStore) SetStatus(_ context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	orders := r.loadOrders()
	for i := range orders {
		if orders[i].ID != id {
			continue
		}
		orders[i].Status = status
		if err := r.saveDocument(r.ordersPath, orders); err != nil {
			r.log.Errorf("Failed to persist fallback status change for %s: %v", id, err)
			return nil, err
		}
		order := orders[i]
		r.log.Infof("Fallback order %s status set to %s", id, status)
		return &order, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fileOrderStore) AppendEvent(_ context.Context, event *domain.OrderEvent) error {
	events := append([]domain.OrderEvent{*event}, r.loadEvents()...)
	if len(events) > maxFallbackEvents {
		events = events[:maxFallbackEvents]
	}
	return r.saveDocument(r.eventsPath, events)
}

func (r *fileOrderStore) ListEvents(_ context.Context, limit int) ([]domain.OrderEvent, error) {
	events := r.loadEvents()
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}
