package service

import (
	"time"

	"attribution/internal/domain/entity"

	"github.com/google/uuid"
)

// ResponseClaims are carried by a signed professional response link.
type ResponseClaims struct {
	AttributionID  uuid.UUID
	ProfessionalID uuid.UUID
	Decision       entity.ResponseDecision
	ExpiresAt      time.Time
}

// ResponseTokenService signs and verifies accept/decline links.
type ResponseTokenService interface {
	// IssueResponseToken signs a token for one professional and decision.
	IssueResponseToken(attributionID, professionalID uuid.UUID, decision entity.ResponseDecision) (string, error)

	// ParseResponseToken verifies the token and returns its claims.
	ParseResponseToken(token string) (*ResponseClaims, error)

	// ResponseURL builds the public link for a token.
	ResponseURL(token string) string
}
