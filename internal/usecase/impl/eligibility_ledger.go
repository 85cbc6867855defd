package impl

import (
	"context"
	"log/slog"
	"time"

	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"
	"attribution/internal/domain/repository"
	"attribution/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type eligibilityLedger struct {
	logger          *slog.Logger
	eligibilityRepo repository.EligibilityRepository
	txManager       repository.TransactionManager
	now             func() time.Time
}

// EligibilityLedgerParams holds dependencies for EligibilityLedger, injected by Fx.
type EligibilityLedgerParams struct {
	fx.In

	Logger          *slog.Logger
	EligibilityRepo repository.EligibilityRepository
	TxManager       repository.TransactionManager
}

// NewEligibilityLedger creates a new eligibility ledger instance
func NewEligibilityLedger(params EligibilityLedgerParams) usecase.EligibilityLedger {
	return &eligibilityLedger{
		logger:          params.Logger,
		eligibilityRepo: params.EligibilityRepo,
		txManager:       params.TxManager,
		now:             time.Now,
	}
}

// RecordCandidates inserts one eligibility row per distinct candidate.
func (l *eligibilityLedger) RecordCandidates(ctx context.Context, attributionID uuid.UUID, candidates []entity.Candidate) (int, error) {
	if len(candidates) == 0 {
		return 0, nil
	}

	now := l.now()
	seen := make(map[uuid.UUID]struct{}, len(candidates))
	rows := make([]*entity.Eligibility, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Professional == nil {
			continue
		}
		if _, dup := seen[candidate.Professional.ID]; dup {
			continue
		}
		seen[candidate.Professional.ID] = struct{}{}

		rows = append(rows, &entity.Eligibility{
			ID:             uuid.New(),
			AttributionID:  attributionID,
			ProfessionalID: candidate.Professional.ID,
			IsEligible:     true,
			DistanceKm:     candidate.DistanceKm,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	inserted, err := l.eligibilityRepo.CreateIfAbsent(ctx, rows)
	if err != nil {
		return 0, errors.Wrap(err, "failed to record candidates")
	}

	if inserted < len(rows) {
		l.logger.Debug("Eligibility rows already present",
			slog.String("attribution_id", attributionID.String()),
			slog.Int("requested", len(rows)),
			slog.Int("inserted", inserted),
		)
	}

	return inserted, nil
}

// MarkNotified flips the notified flag of a pair.
func (l *eligibilityLedger) MarkNotified(ctx context.Context, attributionID, professionalID uuid.UUID) error {
	found, err := l.eligibilityRepo.MarkNotified(ctx, attributionID, professionalID, l.now())
	if err != nil {
		return errors.Wrap(err, "failed to mark candidate notified")
	}

	if !found {
		l.logger.Warn("Eligibility row missing, notified flag not set",
			slog.String("attribution_id", attributionID.String()),
			slog.String("professional_id", professionalID.String()),
		)
	}

	return nil
}

// MarkResponded stores the response and flips the responded flag in one transaction.
func (l *eligibilityLedger) MarkResponded(ctx context.Context, attributionID, professionalID uuid.UUID, accepted bool) (*entity.ProfessionalResponse, error) {
	now := l.now()
	response := &entity.ProfessionalResponse{
		ID:             uuid.New(),
		AttributionID:  attributionID,
		ProfessionalID: professionalID,
		Decision:       entity.DecisionFor(accepted),
		RespondedAt:    now,
		CreatedAt:      now,
	}

	err := l.txManager.Execute(ctx, func(factory repository.RepositoryFactory) error {
		found, err := factory.NewEligibilityRepository().MarkResponded(ctx, attributionID, professionalID, now)
		if err != nil {
			return errors.Wrap(err, "failed to mark candidate responded")
		}
		if !found {
			return domainerrors.ErrEligibilityNotFound.WithDetails(professionalID.String())
		}

		return errors.Wrap(factory.NewResponseRepository().Upsert(ctx, response), "failed to store response")
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}

// Candidates lists the eligibility rows of an attribution.
func (l *eligibilityLedger) Candidates(ctx context.Context, attributionID uuid.UUID) ([]*entity.Eligibility, error) {
	rows, err := l.eligibilityRepo.FindByAttribution(ctx, attributionID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list candidates")
	}

	return rows, nil
}

// Candidate retrieves the eligibility row of a pair.
func (l *eligibilityLedger) Candidate(ctx context.Context, attributionID, professionalID uuid.UUID) (*entity.Eligibility, error) {
	return l.eligibilityRepo.Find(ctx, attributionID, professionalID)
}
