package entity

import (
	"slices"

	"github.com/google/uuid"
)

// StaffMember is an internal employee who may subscribe to booking triggers.
type StaffMember struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department"` // e.g. accounting, operations
	Active     bool      `json:"active"`
	Triggers   []Trigger `json:"triggers"` // Triggers this member receives emails for.
}

// SubscribedTo reports whether the member is active and receives trigger.
func (s *StaffMember) SubscribedTo(trigger Trigger) bool {
	return s.Active && slices.Contains(s.Triggers, trigger)
}
