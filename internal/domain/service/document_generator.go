package service

import (
	"context"

	"attribution/internal/domain/entity"

	"github.com/google/uuid"
)

// DocumentGenerator renders the documents of a booking for a trigger.
type DocumentGenerator interface {
	GenerateDocuments(ctx context.Context, bookingID uuid.UUID, trigger entity.Trigger) ([]entity.Document, error)
}
