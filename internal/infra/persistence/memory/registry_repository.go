package memory

import (
	"bytes"
	"context"
	"sort"

	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"

	"github.com/google/uuid"
)

type bookingRepository struct {
	s *Store
}

func (r *bookingRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	booking, ok := r.s.bookings[id]
	if !ok {
		return nil, domainerrors.ErrBookingNotFound
	}

	copied := *booking
	if booking.Location.Coordinates != nil {
		coordinates := *booking.Location.Coordinates
		copied.Location.Coordinates = &coordinates
	}

	return &copied, nil
}

type professionalRepository struct {
	s *Store
}

func (r *professionalRepository) FindByServiceType(_ context.Context, serviceType string) ([]*entity.Professional, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var professionals []*entity.Professional
	for _, professional := range r.s.professionals {
		if professional.Supports(serviceType) {
			professionals = append(professionals, cloneProfessional(professional))
		}
	}

	sort.Slice(professionals, func(i, j int) bool {
		return bytes.Compare(professionals[i].ID[:], professionals[j].ID[:]) < 0
	})

	return professionals, nil
}

func (r *professionalRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Professional, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	professional, ok := r.s.professionals[id]
	if !ok {
		return nil, domainerrors.ErrProfessionalNotFound
	}

	return cloneProfessional(professional), nil
}

type staffRepository struct {
	s *Store
}

func (r *staffRepository) FindActiveForTrigger(_ context.Context, trigger entity.Trigger) ([]*entity.StaffMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var members []*entity.StaffMember
	for _, member := range r.s.staff {
		if member.SubscribedTo(trigger) {
			copied := *member
			members = append(members, &copied)
		}
	}

	sort.Slice(members, func(i, j int) bool {
		return members[i].Email < members[j].Email
	})

	return members, nil
}
