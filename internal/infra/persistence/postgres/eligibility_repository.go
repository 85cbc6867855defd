package postgres

import (
	"context"
	"time"

	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"
	"attribution/internal/domain/repository"
	"attribution/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var eligibilityPairColumns = []clause.Column{{Name: "attribution_id"}, {Name: "professional_id"}}

// eligibilityRepository implements the repository.EligibilityRepository interface.
type eligibilityRepository struct {
	db *gorm.DB
}

// NewEligibilityRepository is the constructor for eligibilityRepository.
func NewEligibilityRepository(db *gorm.DB) repository.EligibilityRepository {
	return &eligibilityRepository{
		db: db,
	}
}

// CreateIfAbsent inserts the rows, skipping pairs that already exist.
func (repo *eligibilityRepository) CreateIfAbsent(ctx context.Context, rows []*entity.Eligibility) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	eligibilityModels := make([]*model.EligibilityModel, 0, len(rows))
	for _, row := range rows {
		eligibilityModels = append(eligibilityModels, fromEligibilityDomain(row))
	}

	result := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: eligibilityPairColumns, DoNothing: true}).
		Create(&eligibilityModels)
	if result.Error != nil {
		return 0, translateWriteError(result.Error, "failed to record eligibility")
	}

	return int(result.RowsAffected), nil
}

// FindByAttribution lists the eligibility rows of an attribution, nearest first.
func (repo *eligibilityRepository) FindByAttribution(ctx context.Context, attributionID uuid.UUID) ([]*entity.Eligibility, error) {
	var eligibilityModels []*model.EligibilityModel

	if err := repo.db.WithContext(ctx).
		Where("attribution_id = ?", attributionID).
		Order("distance_km ASC").
		Order("professional_id ASC").
		Find(&eligibilityModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find eligibility by attribution")
	}

	rows := make([]*entity.Eligibility, 0, len(eligibilityModels))
	for _, eligibilityM := range eligibilityModels {
		rows = append(rows, toEligibilityDomain(eligibilityM))
	}

	return rows, nil
}

// Find retrieves the eligibility row of one pair.
func (repo *eligibilityRepository) Find(ctx context.Context, attributionID, professionalID uuid.UUID) (*entity.Eligibility, error) {
	var eligibilityM model.EligibilityModel

	if err := repo.db.WithContext(ctx).
		Where("attribution_id = ? AND professional_id = ?", attributionID, professionalID).
		First(&eligibilityM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrEligibilityNotFound
		}

		return nil, errors.Wrap(err, "failed to find eligibility")
	}

	return toEligibilityDomain(&eligibilityM), nil
}

// MarkNotified sets the notified flag, keeping the first notification time.
func (repo *eligibilityRepository) MarkNotified(ctx context.Context, attributionID, professionalID uuid.UUID, at time.Time) (bool, error) {
	return repo.mark(ctx, attributionID, professionalID, map[string]any{
		"notified":    true,
		"notified_at": gorm.Expr("COALESCE(notified_at, ?)", at),
		"updated_at":  at,
	})
}

// MarkResponded sets the responded flag; the latest response time wins.
func (repo *eligibilityRepository) MarkResponded(ctx context.Context, attributionID, professionalID uuid.UUID, at time.Time) (bool, error) {
	return repo.mark(ctx, attributionID, professionalID, map[string]any{
		"responded":    true,
		"responded_at": at,
		"updated_at":   at,
	})
}

func (repo *eligibilityRepository) mark(ctx context.Context, attributionID, professionalID uuid.UUID, values map[string]any) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.EligibilityModel{}).
		Where("attribution_id = ? AND professional_id = ?", attributionID, professionalID).
		Updates(values)
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to update eligibility")
	}

	return result.RowsAffected > 0, nil
}

// responseRepository implements the repository.ResponseRepository interface.
type responseRepository struct {
	db *gorm.DB
}

// NewResponseRepository is the constructor for responseRepository.
func NewResponseRepository(db *gorm.DB) repository.ResponseRepository {
	return &responseRepository{
		db: db,
	}
}

// Upsert stores the response of a pair, replacing an earlier decision.
func (repo *responseRepository) Upsert(ctx context.Context, response *entity.ProfessionalResponse) error {
	responseM := fromResponseDomain(response)

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   eligibilityPairColumns,
			DoUpdates: clause.AssignmentColumns([]string{"decision", "responded_at", "updated_at"}),
		}).
		Create(responseM).Error; err != nil {
		return translateWriteError(err, "failed to store professional response")
	}

	return nil
}

// FindByAttribution lists the responses of an attribution by response time.
func (repo *responseRepository) FindByAttribution(ctx context.Context, attributionID uuid.UUID) ([]*entity.ProfessionalResponse, error) {
	var responseModels []*model.ProfessionalResponseModel

	if err := repo.db.WithContext(ctx).
		Where("attribution_id = ?", attributionID).
		Order("responded_at ASC").
		Find(&responseModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find responses by attribution")
	}

	responses := make([]*entity.ProfessionalResponse, 0, len(responseModels))
	for _, responseM := range responseModels {
		responses = append(responses, toResponseDomain(responseM))
	}

	return responses, nil
}

// --- Mapper Functions ---

// toEligibilityDomain converts a GORM EligibilityModel to a domain Eligibility entity.
func toEligibilityDomain(data *model.EligibilityModel) *entity.Eligibility {
	if data == nil {
		return nil
	}

	return &entity.Eligibility{
		ID:             data.ID,
		AttributionID:  data.AttributionID,
		ProfessionalID: data.ProfessionalID,
		IsEligible:     data.IsEligible,
		DistanceKm:     data.DistanceKm,
		Notified:       data.Notified,
		NotifiedAt:     data.NotifiedAt,
		Responded:      data.Responded,
		RespondedAt:    data.RespondedAt,
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}
}

// fromEligibilityDomain converts a domain Eligibility entity to a GORM EligibilityModel.
func fromEligibilityDomain(data *entity.Eligibility) *model.EligibilityModel {
	if data == nil {
		return nil
	}

	return &model.EligibilityModel{
		ID:             data.ID,
		AttributionID:  data.AttributionID,
		ProfessionalID: data.ProfessionalID,
		IsEligible:     data.IsEligible,
		DistanceKm:     data.DistanceKm,
		Notified:       data.Notified,
		NotifiedAt:     data.NotifiedAt,
		Responded:      data.Responded,
		RespondedAt:    data.RespondedAt,
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.UpdatedAt,
	}
}

// toResponseDomain converts a GORM ProfessionalResponseModel to a domain ProfessionalResponse entity.
func toResponseDomain(data *model.ProfessionalResponseModel) *entity.ProfessionalResponse {
	if data == nil {
		return nil
	}

	return &entity.ProfessionalResponse{
		ID:             data.ID,
		AttributionID:  data.AttributionID,
		ProfessionalID: data.ProfessionalID,
		Decision:       entity.ResponseDecision(data.Decision),
		RespondedAt:    data.RespondedAt,
		CreatedAt:      data.CreatedAt,
	}
}

// fromResponseDomain converts a domain ProfessionalResponse entity to a GORM ProfessionalResponseModel.
func fromResponseDomain(data *entity.ProfessionalResponse) *model.ProfessionalResponseModel {
	if data == nil {
		return nil
	}

	return &model.ProfessionalResponseModel{
		ID:             data.ID,
		AttributionID:  data.AttributionID,
		ProfessionalID: data.ProfessionalID,
		Decision:       string(data.Decision),
		RespondedAt:    data.RespondedAt,
		CreatedAt:      data.CreatedAt,
		UpdatedAt:      data.RespondedAt,
	}
}
