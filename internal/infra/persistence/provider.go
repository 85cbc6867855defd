// Package persistence selects the storage backend behind the repository interfaces.
package persistence

import (
	"log/slog"

	"attribution/config"
	"attribution/internal/domain/constants"
	"attribution/internal/domain/repository"
	"attribution/internal/infra/persistence/memory"
	"attribution/internal/infra/persistence/postgres"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Params holds dependencies for the repositories, injected by Fx
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// Repositories exposes every repository of the selected backend to Fx.
type Repositories struct {
	fx.Out

	Bookings      repository.BookingRepository
	Professionals repository.ProfessionalRepository
	Staff         repository.StaffRepository
	Attributions  repository.AttributionRepository
	Eligibility   repository.EligibilityRepository
	Responses     repository.ResponseRepository
	Notifications repository.NotificationRepository
	Reminders     repository.ReminderRepository
	TxManager     repository.TransactionManager
}

// NewRepositories builds the repositories selected by storage.driver; postgres is the default.
func NewRepositories(params Params) (Repositories, error) {
	switch params.Config.Storage.Driver {
	case "", constants.StorageDriverPostgres:
		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lc,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return Repositories{}, err
		}

		return Repositories{
			Bookings:      postgres.NewBookingRepository(db),
			Professionals: postgres.NewProfessionalRepository(db),
			Staff:         postgres.NewStaffRepository(db),
			Attributions:  postgres.NewAttributionRepository(db),
			Eligibility:   postgres.NewEligibilityRepository(db),
			Responses:     postgres.NewResponseRepository(db),
			Notifications: postgres.NewNotificationRepository(db),
			Reminders:     postgres.NewReminderRepository(db),
			TxManager:     postgres.NewTransactionManager(db),
		}, nil

	case constants.StorageDriverMemory:
		params.Logger.Warn("Using in-memory storage, every record is lost on restart")
		store := memory.NewStore()

		return Repositories{
			Bookings:      store.Bookings(),
			Professionals: store.Professionals(),
			Staff:         store.Staff(),
			Attributions:  store.Attributions(),
			Eligibility:   store.Eligibility(),
			Responses:     store.Responses(),
			Notifications: store.Notifications(),
			Reminders:     store.Reminders(),
			TxManager:     store.TransactionManager(),
		}, nil

	default:
		return Repositories{}, errors.Errorf("unknown storage driver: %s", params.Config.Storage.Driver)
	}
}

// Module provides the repositories FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewRepositories),
)
