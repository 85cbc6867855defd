// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the upstream lifecycle status of a booking.
type BookingStatus string

const (
	BookingStatusPending          BookingStatus = "PENDING"
	BookingStatusConfirmed        BookingStatus = "CONFIRMED"
	BookingStatusPaymentCompleted BookingStatus = "PAYMENT_COMPLETED"
	BookingStatusCancelled        BookingStatus = "CANCELLED"
	BookingStatusCompleted        BookingStatus = "COMPLETED"
	BookingStatusArchived         BookingStatus = "ARCHIVED"
)

// Coordinates is a decimal-degree position.
type Coordinates struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// Valid reports whether both components are inside their ranges.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Location is where the service takes place. Coordinates may be unknown.
type Location struct {
	Address     string       `json:"address"`
	PostalCode  string       `json:"postal_code"`
	City        string       `json:"city"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Customer is the person who paid for the booking.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
}

// Booking is a paid service booking, created by the upstream checkout flow.
type Booking struct {
	ID          uuid.UUID     `json:"id"`
	Reference   string        `json:"reference"`    // Human readable booking number.
	Status      BookingStatus `json:"status"`       // Upstream lifecycle status.
	ServiceType string        `json:"service_type"` // Capability a professional must offer.
	ScheduledAt time.Time     `json:"scheduled_at"` // Service date and time.
	Location    Location      `json:"location"`
	TotalAmount int64         `json:"total_amount"` // Minor currency units.
	Currency    string        `json:"currency"`
	Customer    Customer      `json:"customer"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// IsCancelled reports whether upstream cancelled the booking.
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// FullPayload is the unredacted booking view sent to the customer and internal staff.
func (b *Booking) FullPayload() map[string]any {
	payload := map[string]any{
		"booking_id":          b.ID.String(),
		"booking_reference":   b.Reference,
		"booking_status":      string(b.Status),
		"service_type":        b.ServiceType,
		"scheduled_at":        b.ScheduledAt.Format(time.RFC3339),
		"address":             b.Location.Address,
		"postal_code":         b.Location.PostalCode,
		"city":                b.Location.City,
		"total_amount":        b.TotalAmount,
		"currency":            b.Currency,
		"customer_first_name": b.Customer.FirstName,
		"customer_last_name":  b.Customer.LastName,
		"customer_email":      b.Customer.Email,
		"customer_phone":      b.Customer.Phone,
	}
	if b.Location.Coordinates != nil {
		payload["latitude"] = b.Location.Coordinates.Latitude
		payload["longitude"] = b.Location.Coordinates.Longitude
	}

	return payload
}
