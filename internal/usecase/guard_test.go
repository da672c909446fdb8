package usecase

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/axssiz/ParfumeProject/internal/domain"
)

func newTestGuard() *Guard {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewGuard(logger)
}

func TestRequireActor(t *testing.T) {
	guard := newTestGuard()

	assert.ErrorIs(t, guard.RequireActor(nil), domain.ErrUnauthenticated)
	assert.NoError(t, guard.RequireActor(&domain.Actor{ID: 1, Role: domain.RoleClient}))
}

func TestRequireOwner(t *testing.T) {
	guard := newTestGuard()
	ownerID := 7
	order := &domain.Order{ID: "o-1", OwnerUserID: &ownerID}

	assert.ErrorIs(t, guard.RequireOwner(nil, order), domain.ErrUnauthenticated)
	assert.ErrorIs(t, guard.RequireOwner(&domain.Actor{ID: 8, Role: domain.RoleClient}, order), domain.ErrForbidden)
	assert.NoError(t, guard.RequireOwner(&domain.Actor{ID: 7, Role: domain.RoleClient}, order))

	// an admin is still not the owner
	assert.ErrorIs(t, guard.RequireOwner(&domain.Actor{ID: 9, Role: domain.RoleAdmin}, order), domain.ErrForbidden)

	orphan := &domain.Order{ID: "o-2"}
	assert.ErrorIs(t, guard.RequireOwner(&domain.Actor{ID: 7, Role: domain.RoleClient}, orphan), domain.ErrForbidden)
}

func TestRequireOperator(t *testing.T) {
	guard := newTestGuard()

	assert.ErrorIs(t, guard.RequireOperator(nil), domain.ErrUnauthenticated)
	assert.ErrorIs(t, guard.RequireOperator(&domain.Actor{ID: 1, Role: domain.RoleClient}), domain.ErrForbidden)
	assert.NoError(t, guard.RequireOperator(&domain.Actor{ID: 2, Role: domain.RoleWorker}))
	assert.NoError(t, guard.RequireOperator(&domain.Actor{ID: 3, Role: domain.RoleAdmin}))
}
