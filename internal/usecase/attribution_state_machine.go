package usecase

import (
	"context"
	"time"

	"attribution/internal/domain/entity"

	"github.com/google/uuid"
)

// OpenRoundRequest carries what a new attribution is created with.
type OpenRoundRequest struct {
	BookingID       uuid.UUID
	ServiceType     string
	ServiceLocation entity.Coordinates
	MaxRadiusKm     float64
}

// AcceptOutcome tells the caller whether its accept won the round.
type AcceptOutcome struct {
	Attribution *entity.Attribution
	Won         bool // this professional holds the attribution
	Repeated    bool // Won was already true before this call
	Superseded  bool // another professional accepted first
}

// AttributionStateMachine owns the lifecycle of attributions.
type AttributionStateMachine interface {
	// OpenRound returns the active attribution of the booking, creating a PENDING one when none exists.
	OpenRound(ctx context.Context, req OpenRoundRequest) (attribution *entity.Attribution, created bool, err error)

	// Get retrieves an attribution.
	Get(ctx context.Context, id uuid.UUID) (*entity.Attribution, error)

	// FindActive retrieves the PENDING or BROADCASTING attribution of a booking.
	FindActive(ctx context.Context, bookingID uuid.UUID) (*entity.Attribution, error)

	// BeginBroadcast moves PENDING to BROADCASTING. It is a no-op when already BROADCASTING.
	BeginBroadcast(ctx context.Context, id uuid.UUID) (attribution *entity.Attribution, transitioned bool, err error)

	// Accept applies first-accept-wins. Later accepts are reported as superseded.
	Accept(ctx context.Context, id, professionalID uuid.UUID) (*AcceptOutcome, error)

	// Expire moves an active attribution to EXPIRED.
	Expire(ctx context.Context, id uuid.UUID) (*entity.Attribution, error)

	// Cancel moves an active attribution to CANCELLED.
	Cancel(ctx context.Context, id uuid.UUID) (*entity.Attribution, error)

	// ExpireStale expires every broadcasting attribution whose deadline passed before now.
	ExpireStale(ctx context.Context, now time.Time) ([]*entity.Attribution, error)
}
