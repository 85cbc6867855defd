package entity

import (
	"slices"
	"time"

	domainerrors "attribution/internal/domain/errors"

	"github.com/google/uuid"
)

// AttributionStatus is the lifecycle state of one broadcast round.
type AttributionStatus string

const (
	AttributionStatusPending      AttributionStatus = "PENDING"
	AttributionStatusBroadcasting AttributionStatus = "BROADCASTING"
	AttributionStatusAccepted     AttributionStatus = "ACCEPTED"
	AttributionStatusExpired      AttributionStatus = "EXPIRED"
	AttributionStatusCancelled    AttributionStatus = "CANCELLED"
)

// ActiveAttributionStatuses are the non-terminal states. A booking has at most one
// attribution in one of these states.
var ActiveAttributionStatuses = []AttributionStatus{
	AttributionStatusPending,
	AttributionStatusBroadcasting,
}

var attributionTransitions = map[AttributionStatus][]AttributionStatus{
	AttributionStatusPending: {
		AttributionStatusBroadcasting,
		AttributionStatusExpired,
		AttributionStatusCancelled,
	},
	AttributionStatusBroadcasting: {
		AttributionStatusAccepted,
		AttributionStatusExpired,
		AttributionStatusCancelled,
	},
}

// IsTerminal reports whether no further transition is allowed.
func (s AttributionStatus) IsTerminal() bool {
	switch s {
	case AttributionStatusAccepted, AttributionStatusExpired, AttributionStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s AttributionStatus) CanTransitionTo(next AttributionStatus) bool {
	return slices.Contains(attributionTransitions[s], next)
}

// PredecessorsOf lists the states from which next can be reached.
func PredecessorsOf(next AttributionStatus) []AttributionStatus {
	var from []AttributionStatus
	for state, targets := range attributionTransitions {
		if slices.Contains(targets, next) {
			from = append(from, state)
		}
	}
	slices.Sort(from)

	return from
}

// Attribution is one matching and broadcast round for a booking.
type Attribution struct {
	ID                     uuid.UUID         `json:"id"`
	BookingID              uuid.UUID         `json:"booking_id"`
	Status                 AttributionStatus `json:"status"`
	ServiceType            string            `json:"service_type"`
	ServiceLocation        Coordinates       `json:"service_location"`
	MaxRadiusKm            float64           `json:"max_radius_km"`
	AcceptedProfessionalID *uuid.UUID        `json:"accepted_professional_id,omitempty"` // Set once, by the first accept.
	BroadcastDeadline      *time.Time        `json:"broadcast_deadline,omitempty"`       // BROADCASTING rounds expire after this.
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}

// CheckTransition validates a move to next without mutating the attribution.
func (a *Attribution) CheckTransition(next AttributionStatus) error {
	if a.Status.IsTerminal() {
		return domainerrors.ErrAttributionFinalized.WithDetails(
			"attribution " + a.ID.String() + " is " + string(a.Status))
	}
	if !a.Status.CanTransitionTo(next) {
		return domainerrors.ErrInvalidTransition.WithDetails(
			string(a.Status) + " -> " + string(next))
	}

	return nil
}

// IsExpiredAt reports whether a broadcasting round has passed its deadline.
func (a *Attribution) IsExpiredAt(now time.Time) bool {
	return a.Status == AttributionStatusBroadcasting &&
		a.BroadcastDeadline != nil &&
		now.After(*a.BroadcastDeadline)
}

// AttributionUpdate is a compare-and-set status change applied by the repository.
type AttributionUpdate struct {
	To                     AttributionStatus
	AcceptedProfessionalID *uuid.UUID
	BroadcastDeadline      *time.Time
	At                     time.Time
}
