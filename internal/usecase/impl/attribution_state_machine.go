package impl

import (
	"context"
	"log/slog"
	"time"

	"attribution/config"
	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"
	"attribution/internal/domain/repository"
	"attribution/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const staleSweepBatchSize = 100

type attributionStateMachine struct {
	logger          *slog.Logger
	attributionRepo repository.AttributionRepository
	config          *config.AttributionConfig
	now             func() time.Time
}

// AttributionStateMachineParams holds dependencies for AttributionStateMachine, injected by Fx.
type AttributionStateMachineParams struct {
	fx.In

	Logger          *slog.Logger
	AttributionRepo repository.AttributionRepository
	Config          *config.Config
}

// NewAttributionStateMachine creates a new attribution state machine instance
func NewAttributionStateMachine(params AttributionStateMachineParams) usecase.AttributionStateMachine {
	attributionCfg := params.Config.Attribution
	if attributionCfg == nil {
		attributionCfg = config.DefaultAttributionConfig()
	}

	return &attributionStateMachine{
		logger:          params.Logger,
		attributionRepo: params.AttributionRepo,
		config:          attributionCfg,
		now:             time.Now,
	}
}

// OpenRound reuses the active attribution of the booking or creates a PENDING one.
func (sm *attributionStateMachine) OpenRound(ctx context.Context, req usecase.OpenRoundRequest) (*entity.Attribution, bool, error) {
	existing, err := sm.attributionRepo.FindActiveByBooking(ctx, req.BookingID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domainerrors.ErrAttributionNotFound) {
		return nil, false, errors.Wrap(err, "failed to find active attribution")
	}

	now := sm.now()
	attribution := &entity.Attribution{
		ID:              uuid.New(),
		BookingID:       req.BookingID,
		Status:          entity.AttributionStatusPending,
		ServiceType:     req.ServiceType,
		ServiceLocation: req.ServiceLocation,
		MaxRadiusKm:     req.MaxRadiusKm,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	stored, created, err := sm.attributionRepo.CreateActive(ctx, attribution)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to create attribution")
	}

	if created {
		sm.logger.Info("Attribution opened",
			slog.String("attribution_id", stored.ID.String()),
			slog.String("booking_id", stored.BookingID.String()),
		)
	}

	return stored, created, nil
}

// Get retrieves an attribution by ID.
func (sm *attributionStateMachine) Get(ctx context.Context, id uuid.UUID) (*entity.Attribution, error) {
	return sm.attributionRepo.FindByID(ctx, id)
}

// FindActive retrieves the PENDING or BROADCASTING attribution of a booking.
func (sm *attributionStateMachine) FindActive(ctx context.Context, bookingID uuid.UUID) (*entity.Attribution, error) {
	return sm.attributionRepo.FindActiveByBooking(ctx, bookingID)
}

// BeginBroadcast moves a PENDING attribution to BROADCASTING and starts its window.
func (sm *attributionStateMachine) BeginBroadcast(ctx context.Context, id uuid.UUID) (*entity.Attribution, bool, error) {
	attribution, err := sm.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if attribution.Status == entity.AttributionStatusBroadcasting {
		return attribution, false, nil
	}
	if err := attribution.CheckTransition(entity.AttributionStatusBroadcasting); err != nil {
		return attribution, false, err
	}

	now := sm.now()
	deadline := now.Add(sm.config.BroadcastWindow)
	changed, err := sm.attributionRepo.CompareAndSetStatus(ctx, id,
		[]entity.AttributionStatus{entity.AttributionStatusPending},
		entity.AttributionUpdate{
			To:                entity.AttributionStatusBroadcasting,
			BroadcastDeadline: &deadline,
			At:                now,
		},
	)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to begin broadcast")
	}

	current, err := sm.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if changed || current.Status == entity.AttributionStatusBroadcasting {
		return current, changed, nil
	}

	return current, false, current.CheckTransition(entity.AttributionStatusBroadcasting)
}

// Accept records the first accept as the winner. Any later accept is superseded.
func (sm *attributionStateMachine) Accept(ctx context.Context, id, professionalID uuid.UUID) (*usecase.AcceptOutcome, error) {
	attribution, err := sm.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if attribution.Status == entity.AttributionStatusBroadcasting {
		now := sm.now()
		changed, err := sm.attributionRepo.CompareAndSetStatus(ctx, id,
			[]entity.AttributionStatus{entity.AttributionStatusBroadcasting},
			entity.AttributionUpdate{
				To:                     entity.AttributionStatusAccepted,
				AcceptedProfessionalID: &professionalID,
				At:                     now,
			},
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to accept attribution")
		}

		attribution, err = sm.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if changed {
			sm.logger.Info("Attribution accepted",
				slog.String("attribution_id", id.String()),
				slog.String("professional_id", professionalID.String()),
			)

			return &usecase.AcceptOutcome{Attribution: attribution, Won: true}, nil
		}
	}

	return sm.resolveLateAccept(attribution, professionalID)
}

func (sm *attributionStateMachine) resolveLateAccept(attribution *entity.Attribution, professionalID uuid.UUID) (*usecase.AcceptOutcome, error) {
	if attribution.Status != entity.AttributionStatusAccepted {
		err := attribution.CheckTransition(entity.AttributionStatusAccepted)
		sm.logger.Warn("Accept rejected",
			slog.String("attribution_id", attribution.ID.String()),
			slog.String("professional_id", professionalID.String()),
			slog.String("status", string(attribution.Status)),
			slog.Any("error", err),
		)

		return &usecase.AcceptOutcome{Attribution: attribution}, err
	}

	if attribution.AcceptedProfessionalID != nil && *attribution.AcceptedProfessionalID == professionalID {
		return &usecase.AcceptOutcome{Attribution: attribution, Won: true, Repeated: true}, nil
	}

	sm.logger.Info("Accept superseded",
		slog.String("attribution_id", attribution.ID.String()),
		slog.String("professional_id", professionalID.String()),
	)

	return &usecase.AcceptOutcome{Attribution: attribution, Superseded: true}, nil
}

// Expire moves an active attribution to EXPIRED.
func (sm *attributionStateMachine) Expire(ctx context.Context, id uuid.UUID) (*entity.Attribution, error) {
	return sm.transition(ctx, id, entity.AttributionStatusExpired)
}

// Cancel moves an active attribution to CANCELLED.
func (sm *attributionStateMachine) Cancel(ctx context.Context, id uuid.UUID) (*entity.Attribution, error) {
	return sm.transition(ctx, id, entity.AttributionStatusCancelled)
}

func (sm *attributionStateMachine) transition(ctx context.Context, id uuid.UUID, to entity.AttributionStatus) (*entity.Attribution, error) {
	attribution, err := sm.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := attribution.CheckTransition(to); err != nil {
		return attribution, err
	}

	changed, err := sm.attributionRepo.CompareAndSetStatus(ctx, id,
		entity.PredecessorsOf(to),
		entity.AttributionUpdate{To: to, At: sm.now()},
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to move attribution to %s", to)
	}

	current, err := sm.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !changed {
		return current, current.CheckTransition(to)
	}

	sm.logger.Info("Attribution finalized",
		slog.String("attribution_id", id.String()),
		slog.String("status", string(to)),
	)

	return current, nil
}

// ExpireStale expires broadcasting attributions whose deadline passed before now.
func (sm *attributionStateMachine) ExpireStale(ctx context.Context, now time.Time) ([]*entity.Attribution, error) {
	var expired []*entity.Attribution

	for {
		stale, err := sm.attributionRepo.FindStaleBroadcasts(ctx, now, staleSweepBatchSize)
		if err != nil {
			return expired, errors.Wrap(err, "failed to find stale broadcasts")
		}

		progressed := false
		for _, attribution := range stale {
			changed, err := sm.attributionRepo.CompareAndSetStatus(ctx, attribution.ID,
				[]entity.AttributionStatus{entity.AttributionStatusBroadcasting},
				entity.AttributionUpdate{To: entity.AttributionStatusExpired, At: now},
			)
			if err != nil {
				return expired, errors.Wrap(err, "failed to expire attribution")
			}
			if !changed {
				continue
			}

			progressed = true
			attribution.Status = entity.AttributionStatusExpired
			attribution.UpdatedAt = now
			expired = append(expired, attribution)
		}

		if len(stale) < staleSweepBatchSize || !progressed {
			break
		}
	}

	if len(expired) > 0 {
		sm.logger.Info("Expired stale attributions", slog.Int("count", len(expired)))
	}

	return expired, nil
}
