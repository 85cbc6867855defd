package postgres

import (
	"context"

	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"
	"attribution/internal/domain/repository"
	"attribution/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// bookingRepository reads the bookings table written by the checkout flow.
type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository is the constructor for bookingRepository.
func NewBookingRepository(db *gorm.DB) repository.BookingRepository {
	return &bookingRepository{
		db: db,
	}
}

// FindByID retrieves a booking by its unique ID.
func (repo *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	var bookingM model.BookingModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&bookingM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrBookingNotFound
		}

		return nil, errors.Wrap(err, "failed to find booking by ID")
	}

	return toBookingDomain(&bookingM), nil
}

// professionalRepository reads the professional registry.
type professionalRepository struct {
	db *gorm.DB
}

// NewProfessionalRepository is the constructor for professionalRepository.
func NewProfessionalRepository(db *gorm.DB) repository.ProfessionalRepository {
	return &professionalRepository{
		db: db,
	}
}

// FindByServiceType lists professionals whose service_types array contains serviceType.
// Verification and availability are left to the matcher.
func (repo *professionalRepository) FindByServiceType(ctx context.Context, serviceType string) ([]*entity.Professional, error) {
	var professionalModels []*model.ProfessionalModel

	if err := repo.db.WithContext(ctx).
		Where(datatypes.JSONArrayQuery("service_types").Contains(serviceType)).
		Order("id ASC").
		Find(&professionalModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find professionals by service type")
	}

	professionals := make([]*entity.Professional, 0, len(professionalModels))
	for _, professionalM := range professionalModels {
		professionals = append(professionals, toProfessionalDomain(professionalM))
	}

	return professionals, nil
}

// FindByID retrieves a professional by its unique ID.
func (repo *professionalRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Professional, error) {
	var professionalM model.ProfessionalModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&professionalM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrProfessionalNotFound
		}

		return nil, errors.Wrap(err, "failed to find professional by ID")
	}

	return toProfessionalDomain(&professionalM), nil
}

// staffRepository reads the staff directory.
type staffRepository struct {
	db *gorm.DB
}

// NewStaffRepository is the constructor for staffRepository.
func NewStaffRepository(db *gorm.DB) repository.StaffRepository {
	return &staffRepository{
		db: db,
	}
}

// FindActiveForTrigger lists active staff members subscribed to trigger.
func (repo *staffRepository) FindActiveForTrigger(ctx context.Context, trigger entity.Trigger) ([]*entity.StaffMember, error) {
	var staffModels []*model.StaffMemberModel

	if err := repo.db.WithContext(ctx).
		Where("active = ?", true).
		Where(datatypes.JSONArrayQuery("triggers").Contains(string(trigger))).
		Order("email ASC").
		Find(&staffModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find staff by trigger")
	}

	members := make([]*entity.StaffMember, 0, len(staffModels))
	for _, staffM := range staffModels {
		members = append(members, toStaffDomain(staffM))
	}

	return members, nil
}

// --- Mapper Functions ---

// toBookingDomain converts a GORM BookingModel to a domain Booking entity.
func toBookingDomain(data *model.BookingModel) *entity.Booking {
	if data == nil {
		return nil
	}

	return &entity.Booking{
		ID:          data.ID,
		Reference:   data.Reference,
		Status:      entity.BookingStatus(data.Status),
		ServiceType: data.ServiceType,
		ScheduledAt: data.ScheduledAt,
		Location: entity.Location{
			Address:     data.Address,
			PostalCode:  data.PostalCode,
			City:        data.City,
			Coordinates: toCoordinates(data.Latitude, data.Longitude),
		},
		TotalAmount: data.TotalAmount,
		Currency:    data.Currency,
		Customer: entity.Customer{
			ID:        data.CustomerID,
			FirstName: data.CustomerFirstName,
			LastName:  data.CustomerLastName,
			Email:     data.CustomerEmail,
			Phone:     data.CustomerPhone,
		},
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

// toProfessionalDomain converts a GORM ProfessionalModel to a domain Professional entity.
func toProfessionalDomain(data *model.ProfessionalModel) *entity.Professional {
	if data == nil {
		return nil
	}

	return &entity.Professional{
		ID:           data.ID,
		CompanyName:  data.CompanyName,
		ContactName:  data.ContactName,
		Email:        data.Email,
		Phone:        data.Phone,
		Verified:     data.Verified,
		Available:    data.Available,
		ServiceTypes: []string(data.ServiceTypes),
		Coordinates:  toCoordinates(data.Latitude, data.Longitude),
	}
}

// toStaffDomain converts a GORM StaffMemberModel to a domain StaffMember entity.
func toStaffDomain(data *model.StaffMemberModel) *entity.StaffMember {
	if data == nil {
		return nil
	}

	triggers := make([]entity.Trigger, 0, len(data.Triggers))
	for _, trigger := range data.Triggers {
		triggers = append(triggers, entity.Trigger(trigger))
	}

	return &entity.StaffMember{
		ID:         data.ID,
		Name:       data.Name,
		Email:      data.Email,
		Department: data.Department,
		Active:     data.Active,
		Triggers:   triggers,
	}
}

func toCoordinates(lat, lng *float64) *entity.Coordinates {
	if lat == nil || lng == nil {
		return nil
	}

	return &entity.Coordinates{Latitude: *lat, Longitude: *lng}
}
