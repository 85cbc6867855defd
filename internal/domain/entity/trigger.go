package entity

import "strings"

// Trigger is a booking lifecycle event that initiates notification orchestration.
type Trigger string

const (
	TriggerBookingConfirmed     Trigger = "BOOKING_CONFIRMED"
	TriggerPaymentCompleted     Trigger = "PAYMENT_COMPLETED"
	TriggerBookingCancelled     Trigger = "BOOKING_CANCELLED"
	TriggerProfessionalAssigned Trigger = "PROFESSIONAL_ASSIGNED"

	// TriggerAttributionBroadcast is the purpose of professional broadcast messages.
	// It is never accepted from upstream.
	TriggerAttributionBroadcast Trigger = "ATTRIBUTION_BROADCAST"
)

// BookingTriggers are the triggers accepted by onBookingTrigger.
var BookingTriggers = []Trigger{
	TriggerBookingConfirmed,
	TriggerPaymentCompleted,
	TriggerBookingCancelled,
	TriggerProfessionalAssigned,
}

// IsBookingTrigger reports whether t may be received from upstream.
func (t Trigger) IsBookingTrigger() bool {
	switch t {
	case TriggerBookingConfirmed, TriggerPaymentCompleted, TriggerBookingCancelled, TriggerProfessionalAssigned:
		return true
	default:
		return false
	}
}

// Purpose is the lower-case tag used in dedup keys.
func (t Trigger) Purpose() string {
	return strings.ToLower(string(t))
}

// SchedulesCustomerReminders reports whether the trigger confirms a service date.
func (t Trigger) SchedulesCustomerReminders() bool {
	return t == TriggerBookingConfirmed || t == TriggerPaymentCompleted
}
