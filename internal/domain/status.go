package domain

import "strings"

type OrderStatus string

const (
	StatusPending              OrderStatus = "pending"
	StatusAwaitingConfirmation OrderStatus = "awaiting_confirmation"
	StatusConfirmed            OrderStatus = "confirmed"
	StatusInProgress           OrderStatus = "in_progress"
	StatusShipped              OrderStatus = "shipped"
	StatusDelivered            OrderStatus = "delivered"
	StatusCancelled            OrderStatus = "cancelled"
)

// statusSynonyms maps legacy and alternate labels still sent by older
// clients onto the canonical enumeration.
var statusSynonyms = map[string]OrderStatus{
	"new":           StatusPending,
	"in_processing": StatusInProgress,
	"processing":    StatusInProgress,
	"sent":          StatusShipped,
	"ack":           StatusInProgress,
}

func IsValidStatus(status OrderStatus) bool {
	switch status {
	case StatusPending, StatusAwaitingConfirmation, StatusConfirmed,
		StatusInProgress, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// NormalizeStatus resolves a raw status label to a canonical member of the
// enumeration. Unknown labels fail with a ValidationError before any
// mutation takes place.
func NormalizeStatus(label string) (OrderStatus, error) {
	normalized := OrderStatus(strings.ToLower(strings.TrimSpace(label)))
	if canonical, ok := statusSynonyms[string(normalized)]; ok {
		return canonical, nil
	}
	if IsValidStatus(normalized) {
		return normalized, nil
	}
	return "", NewValidationError("invalid_status")
}

// Terminal reports whether the status ends the order lifecycle. Terminal
// orders stop appearing in active listings but are never deleted.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}
