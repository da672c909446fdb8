package usecase

import (
	"github.com/sirupsen/logrus"

	"github.com/axssiz/ParfumeProject/internal/domain"
)

// Guard holds the authorization checks consumed by the order service.
// Authentication presence, ownership and role membership are independent
// checks and are never conflated: ownership applies only to the
// client-facing confirm operation, role membership only to operator
// operations.
type Guard struct {
	log *logrus.Logger
}

func NewGuard(logger *logrus.Logger) *Guard {
	return &Guard{log: logger}
}

// RequireActor rejects anonymous callers.
func (g *Guard) RequireActor(actor *domain.Actor) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	return nil
}

// RequireOwner checks that the actor is the creating user of the order.
// Orders without an owner can never pass this check.
func (g *Guard) RequireOwner(actor *domain.Actor, order *domain.Order) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if order.OwnerUserID == nil || *order.OwnerUserID != actor.ID {
		g.log.Warnf("User %d denied ownership access to order %s", actor.ID, order.ID)
		return domain.ErrForbidden
	}
	return nil
}

// RequireOperator checks role membership. No ownership check applies to
// operator operations: any operator may act on any order.
func (g *Guard) RequireOperator(actor *domain.Actor) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if !actor.IsOperator() {
		g.log.Warnf("User %d with role %q denied operator access", actor.ID, actor.Role)
		return domain.ErrForbidden
	}
	return nil
}
