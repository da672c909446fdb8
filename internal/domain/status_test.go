package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		label string
		want  OrderStatus
	}{
		{"pending", StatusPending},
		{"awaiting_confirmation", StatusAwaitingConfirmation},
		{"confirmed", StatusConfirmed},
		{"in_progress", StatusInProgress},
		{"shipped", StatusShipped},
		{"delivered", StatusDelivered},
		{"cancelled", StatusCancelled},
		{"new", StatusPending},
		{"in_processing", StatusInProgress},
		{"processing", StatusInProgress},
		{"sent", StatusShipped},
		{"ack", StatusInProgress},
		{" SENT ", StatusShipped},
	}
	for _, tc := range cases {
		got, err := NormalizeStatus(tc.label)
		require.NoError(t, err, "label %q", tc.label)
		assert.Equal(t, tc.want, got, "label %q", tc.label)
	}
}

func TestNormalizeStatusRejectsUnknownLabels(t *testing.T) {
	for _, label := range []string{"", "paid", "shippedd", "done", "42"} {
		_, err := NormalizeStatus(label)
		require.Error(t, err, "label %q", label)

		var validationErr *ValidationError
		require.True(t, errors.As(err, &validationErr), "label %q", label)
		assert.Equal(t, "invalid_status", validationErr.Code)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	for _, s := range []OrderStatus{StatusPending, StatusAwaitingConfirmation, StatusConfirmed, StatusInProgress, StatusShipped} {
		assert.False(t, s.Terminal(), "status %q", s)
	}
}

func TestTotalOf(t *testing.T) {
	items := []OrderItem{
		{ProductID: 1, UnitPrice: 18000, Quantity: 1},
		{ProductID: 2, UnitPrice: 20000, Quantity: 2},
	}
	assert.Equal(t, 58000.0, TotalOf(items))
	assert.Equal(t, 0.0, TotalOf(nil))
}
