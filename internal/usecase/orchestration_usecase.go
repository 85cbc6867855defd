package usecase

import (
	"context"

	"attribution/internal/domain/entity"

	"github.com/google/uuid"
)

// TriggerOptions tunes one onBookingTrigger invocation.
type TriggerOptions struct {
	SkipStaff     bool `json:"skip_staff"`
	SkipReminders bool `json:"skip_reminders"`
}

// TriggerReport summarizes an onBookingTrigger invocation.
type TriggerReport struct {
	BookingID             uuid.UUID                `json:"booking_id"`
	Trigger               entity.Trigger           `json:"trigger"`
	Deliveries            []*entity.DispatchResult `json:"deliveries"`
	RemindersCreated      int                      `json:"reminders_created"`
	RemindersCancelled    int64                    `json:"reminders_cancelled"`
	CancelledAttributions []uuid.UUID              `json:"cancelled_attributions,omitempty"`
}

// StartAttributionRequest asks for a new broadcast round for a booking.
type StartAttributionRequest struct {
	BookingID       uuid.UUID          `json:"booking_id" validate:"required"`
	ServiceLocation entity.Coordinates `json:"service_location"`
	ServiceType     string             `json:"service_type" validate:"required"`
	MaxRadiusKm     float64            `json:"max_radius_km" validate:"gte=0"`
	Booking         *entity.Booking    `json:"booking,omitempty"` // Optional snapshot; loaded when nil.
}

// AttributionOutcome distinguishes a broadcast from a round with nobody to notify.
type AttributionOutcome string

const (
	AttributionOutcomeBroadcast    AttributionOutcome = "BROADCAST"
	AttributionOutcomeNoCandidates AttributionOutcome = "NO_CANDIDATES"
	AttributionOutcomeInProgress   AttributionOutcome = "IN_PROGRESS"
	AttributionOutcomeFinalized    AttributionOutcome = "FINALIZED"
)

// StartAttributionResult is returned by StartAttribution.
type StartAttributionResult struct {
	AttributionID uuid.UUID                `json:"attribution_id"`
	Status        entity.AttributionStatus `json:"status"`
	EligibleCount int                      `json:"eligible_count"`
	Outcome       AttributionOutcome       `json:"outcome"`
	Reused        bool                     `json:"reused"`
	Deliveries    []*entity.DispatchResult `json:"deliveries,omitempty"`
}

// ResponseOutcome is what a professional response did to the attribution.
type ResponseOutcome string

const (
	ResponseOutcomeAccepted   ResponseOutcome = "ACCEPTED"
	ResponseOutcomeDeclined   ResponseOutcome = "DECLINED"
	ResponseOutcomeSuperseded ResponseOutcome = "SUPERSEDED"
	ResponseOutcomeNoOp       ResponseOutcome = "NO_OP"
)

// ResponseResult is returned by RecordProfessionalResponse.
type ResponseResult struct {
	AttributionID    uuid.UUID                `json:"attribution_id"`
	ProfessionalID   uuid.UUID                `json:"professional_id"`
	Status           entity.AttributionStatus `json:"status"`
	Outcome          ResponseOutcome          `json:"outcome"`
	RemindersCreated int                      `json:"reminders_created"`
	Warning          string                   `json:"warning,omitempty"`
}

// OrchestrationUsecase is the entrypoint invoked on booking triggers and attribution requests.
// Every operation may be re-invoked safely.
type OrchestrationUsecase interface {
	OnBookingTrigger(ctx context.Context, bookingID uuid.UUID, trigger entity.Trigger, opts TriggerOptions) (*TriggerReport, error)
	StartAttribution(ctx context.Context, req StartAttributionRequest) (*StartAttributionResult, error)
	RecordProfessionalResponse(ctx context.Context, attributionID, professionalID uuid.UUID, accepted bool) (*ResponseResult, error)
	CancelAttribution(ctx context.Context, attributionID uuid.UUID) (*entity.Attribution, error)
	ExpireStaleAttributions(ctx context.Context) (int, error)
}
