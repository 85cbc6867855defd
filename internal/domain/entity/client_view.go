package entity

import (
	"strings"
	"time"
	"unicode/utf8"
)

// LimitedClientView is the redacted client data shown to professionals before
// acceptance: first name, last initial and address, without contact details.
type LimitedClientView struct {
	FirstName   string    `json:"first_name"`
	LastInitial string    `json:"last_initial"`
	Address     string    `json:"address"`
	PostalCode  string    `json:"postal_code"`
	City        string    `json:"city"`
	ServiceType string    `json:"service_type"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// NewLimitedClientView redacts b.
func NewLimitedClientView(b *Booking) LimitedClientView {
	return LimitedClientView{
		FirstName:   strings.TrimSpace(b.Customer.FirstName),
		LastInitial: initial(b.Customer.LastName),
		Address:     b.Location.Address,
		PostalCode:  b.Location.PostalCode,
		City:        b.Location.City,
		ServiceType: b.ServiceType,
		ScheduledAt: b.ScheduledAt,
	}
}

// DisplayName renders "Jane D.".
func (v LimitedClientView) DisplayName() string {
	if v.LastInitial == "" {
		return v.FirstName
	}

	return v.FirstName + " " + v.LastInitial + "."
}

// Payload renders the view as template variables.
func (v LimitedClientView) Payload() map[string]any {
	return map[string]any{
		"client_name":  v.DisplayName(),
		"address":      v.Address,
		"postal_code":  v.PostalCode,
		"city":         v.City,
		"service_type": v.ServiceType,
		"scheduled_at": v.ScheduledAt.Format(time.RFC3339),
	}
}

func initial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(name)

	return strings.ToUpper(string(r))
}
