package entity

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Professional is an external service provider. Read-only to the engine.
type Professional struct {
	ID           uuid.UUID    `json:"id"`
	CompanyName  string       `json:"company_name"`
	ContactName  string       `json:"contact_name"`
	Email        string       `json:"email"`           // Required contact channel.
	Phone        string       `json:"phone,omitempty"` // Optional, enables WhatsApp.
	Verified     bool         `json:"verified"`
	Available    bool         `json:"available"`
	ServiceTypes []string     `json:"service_types"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
}

// Supports reports whether the professional offers serviceType.
func (p *Professional) Supports(serviceType string) bool {
	return slices.ContainsFunc(p.ServiceTypes, func(s string) bool {
		return strings.EqualFold(s, serviceType)
	})
}

// HasPhone reports whether a phone number is on file.
func (p *Professional) HasPhone() bool {
	return strings.TrimSpace(p.Phone) != ""
}

// Candidate is a matched professional annotated with its distance to the service.
type Candidate struct {
	Professional *Professional `json:"professional"`
	DistanceKm   float64       `json:"distance_km"`
}
