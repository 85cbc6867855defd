package repository

import (
	"context"

	"attribution/internal/domain/entity"

	"github.com/google/uuid"
)

// BookingRepository reads bookings owned by the upstream checkout flow.
type BookingRepository interface {
	// FindByID retrieves a booking by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
}

// ProfessionalRepository reads the professional registry.
type ProfessionalRepository interface {
	// FindByServiceType lists professionals offering the service type.
	FindByServiceType(ctx context.Context, serviceType string) ([]*entity.Professional, error)

	// FindByID retrieves a professional by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Professional, error)
}

// StaffRepository reads the internal staff directory.
type StaffRepository interface {
	// FindActiveForTrigger lists active staff members subscribed to the trigger.
	FindActiveForTrigger(ctx context.Context, trigger entity.Trigger) ([]*entity.StaffMember, error)
}
