package usecase

import (
	"context"

	"attribution/internal/domain/entity"

	"github.com/google/uuid"
)

// EligibilityLedger records candidacies for an attribution.
type EligibilityLedger interface {
	// RecordCandidates inserts one row per candidate. Pairs already present are left untouched.
	RecordCandidates(ctx context.Context, attributionID uuid.UUID, candidates []entity.Candidate) (inserted int, err error)

	// MarkNotified flips the notified flag. A missing row is logged, not returned as an error.
	MarkNotified(ctx context.Context, attributionID, professionalID uuid.UUID) error

	// MarkResponded stores the response and flips the responded flag.
	MarkResponded(ctx context.Context, attributionID, professionalID uuid.UUID, accepted bool) (*entity.ProfessionalResponse, error)

	// Candidates lists the rows of an attribution ordered by distance.
	Candidates(ctx context.Context, attributionID uuid.UUID) ([]*entity.Eligibility, error)

	// Candidate retrieves the row of one pair.
	Candidate(ctx context.Context, attributionID, professionalID uuid.UUID) (*entity.Eligibility, error)
}
