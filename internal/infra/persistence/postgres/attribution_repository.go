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

// attributionRepository implements the repository.AttributionRepository interface.
type attributionRepository struct {
	db *gorm.DB
}

// NewAttributionRepository is the constructor for attributionRepository.
func NewAttributionRepository(db *gorm.DB) repository.AttributionRepository {
	return &attributionRepository{
		db: db,
	}
}

// CreateActive inserts the attribution; the partial unique index on booking_id
// turns a second active round into a no-op and the existing one is returned.
func (repo *attributionRepository) CreateActive(ctx context.Context, attribution *entity.Attribution) (*entity.Attribution, bool, error) {
	attributionM := fromAttributionDomain(attribution)

	result := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(attributionM)
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return repo.existingActive(ctx, attribution.BookingID)
		}

		return nil, false, translateWriteError(result.Error, "failed to create attribution")
	}

	if result.RowsAffected == 0 {
		return repo.existingActive(ctx, attribution.BookingID)
	}

	return toAttributionDomain(attributionM), true, nil
}

func (repo *attributionRepository) existingActive(ctx context.Context, bookingID uuid.UUID) (*entity.Attribution, bool, error) {
	existing, err := repo.FindActiveByBooking(ctx, bookingID)
	if err != nil {
		return nil, false, err
	}

	return existing, false, nil
}

// FindByID retrieves an attribution by its unique ID.
func (repo *attributionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Attribution, error) {
	var attributionM model.AttributionModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&attributionM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrAttributionNotFound
		}

		return nil, errors.Wrap(err, "failed to find attribution by ID")
	}

	return toAttributionDomain(&attributionM), nil
}

// FindActiveByBooking retrieves the PENDING or BROADCASTING attribution of a booking.
func (repo *attributionRepository) FindActiveByBooking(ctx context.Context, bookingID uuid.UUID) (*entity.Attribution, error) {
	var attributionM model.AttributionModel

	if err := repo.db.WithContext(ctx).
		Where("booking_id = ? AND status IN ?", bookingID, statusStrings(entity.ActiveAttributionStatuses)).
		First(&attributionM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrAttributionNotFound
		}

		return nil, errors.Wrap(err, "failed to find active attribution by booking")
	}

	return toAttributionDomain(&attributionM), nil
}

// CompareAndSetStatus updates the row only while its status is one of from.
func (repo *attributionRepository) CompareAndSetStatus(ctx context.Context, id uuid.UUID, from []entity.AttributionStatus, update entity.AttributionUpdate) (bool, error) {
	values := map[string]any{
		"status":     string(update.To),
		"updated_at": update.At,
	}
	if update.AcceptedProfessionalID != nil {
		values["accepted_professional_id"] = *update.AcceptedProfessionalID
	}
	if update.BroadcastDeadline != nil {
		values["broadcast_deadline"] = *update.BroadcastDeadline
	}

	result := repo.db.WithContext(ctx).
		Model(&model.AttributionModel{}).
		Where("id = ? AND status IN ?", id, statusStrings(from)).
		Updates(values)
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to update attribution status")
	}

	if result.RowsAffected > 0 {
		return true, nil
	}

	// Distinguish a lost race from a missing row.
	if _, err := repo.FindByID(ctx, id); err != nil {
		return false, err
	}

	return false, nil
}

// FindStaleBroadcasts lists BROADCASTING attributions whose deadline has passed.
func (repo *attributionRepository) FindStaleBroadcasts(ctx context.Context, now time.Time, limit int) ([]*entity.Attribution, error) {
	var attributionModels []*model.AttributionModel

	query := repo.db.WithContext(ctx).
		Where("status = ? AND broadcast_deadline < ?", string(entity.AttributionStatusBroadcasting), now).
		Order("broadcast_deadline ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&attributionModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find stale broadcasts")
	}

	attributions := make([]*entity.Attribution, 0, len(attributionModels))
	for _, attributionM := range attributionModels {
		attributions = append(attributions, toAttributionDomain(attributionM))
	}

	return attributions, nil
}

func statusStrings(statuses []entity.AttributionStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, string(status))
	}

	return out
}

// --- Mapper Functions ---

// toAttributionDomain converts a GORM AttributionModel to a domain Attribution entity.
func toAttributionDomain(data *model.AttributionModel) *entity.Attribution {
	if data == nil {
		return nil
	}

	return &entity.Attribution{
		ID:                     data.ID,
		BookingID:              data.BookingID,
		Status:                 entity.AttributionStatus(data.Status),
		ServiceType:            data.ServiceType,
		ServiceLocation:        entity.Coordinates{Latitude: data.Latitude, Longitude: data.Longitude},
		MaxRadiusKm:            data.MaxRadiusKm,
		AcceptedProfessionalID: data.AcceptedProfessionalID,
		BroadcastDeadline:      data.BroadcastDeadline,
		CreatedAt:              data.CreatedAt,
		UpdatedAt:              data.UpdatedAt,
	}
}

// fromAttributionDomain converts a domain Attribution entity to a GORM AttributionModel.
func fromAttributionDomain(data *entity.Attribution) *model.AttributionModel {
	if data == nil {
		return nil
	}

	return &model.AttributionModel{
		ID:                     data.ID,
		BookingID:              data.BookingID,
		Status:                 string(data.Status),
		ServiceType:            data.ServiceType,
		Latitude:               data.ServiceLocation.Latitude,
		Longitude:              data.ServiceLocation.Longitude,
		MaxRadiusKm:            data.MaxRadiusKm,
		AcceptedProfessionalID: data.AcceptedProfessionalID,
		BroadcastDeadline:      data.BroadcastDeadline,
		CreatedAt:              data.CreatedAt,
		UpdatedAt:              data.UpdatedAt,
	}
}
