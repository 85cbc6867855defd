// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"time"

	"attribution/internal/domain/entity"

	"github.com/google/uuid"
)

// AttributionRepository defines the persistence operations for attributions.
type AttributionRepository interface {
	// CreateActive inserts a PENDING attribution unless the booking already has an active one.
	// The storage enforces at most one active attribution per booking; on conflict the
	// existing active attribution is returned with created=false.
	CreateActive(ctx context.Context, attribution *entity.Attribution) (stored *entity.Attribution, created bool, err error)

	// FindByID retrieves an attribution by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Attribution, error)

	// FindActiveByBooking retrieves the PENDING or BROADCASTING attribution of a booking.
	FindActiveByBooking(ctx context.Context, bookingID uuid.UUID) (*entity.Attribution, error)

	// CompareAndSetStatus applies update only when the current status is one of from.
	// It reports whether the row was changed.
	CompareAndSetStatus(ctx context.Context, id uuid.UUID, from []entity.AttributionStatus, update entity.AttributionUpdate) (bool, error)

	// FindStaleBroadcasts lists BROADCASTING attributions whose deadline is before now.
	FindStaleBroadcasts(ctx context.Context, now time.Time, limit int) ([]*entity.Attribution, error)
}
