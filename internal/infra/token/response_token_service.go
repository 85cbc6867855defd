// Package token signs and verifies the accept/decline links sent to professionals.
package token

import (
	"net/url"
	"time"

	"attribution/config"
	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"
	"attribution/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	tokenType    = "attribution_response"
	defaultTTL   = 72 * time.Hour
	tokenQueryID = "token"
)

// responseClaims is the JWT body of a response link.
type responseClaims struct {
	AttributionID string `json:"aid"`
	Decision      string `json:"decision"`
	Type          string `json:"type"`
	jwt.RegisteredClaims
}

// responseTokenService is a concrete implementation of the ResponseTokenService interface using HS256 JWTs.
type responseTokenService struct {
	secret  []byte        // Secret key for signing response tokens.
	ttl     time.Duration // Time-to-live of a response link.
	baseURL string        // Public endpoint the links point to.
	now     func() time.Time
}

// NewResponseTokenService is the constructor for responseTokenService.
func NewResponseTokenService(cfg *config.Config) (service.ResponseTokenService, error) {
	if cfg.ResponseToken == nil || cfg.ResponseToken.Secret == "" {
		return nil, errors.New("response token secret must be provided")
	}

	ttl := cfg.ResponseToken.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &responseTokenService{
		secret:  []byte(cfg.ResponseToken.Secret),
		ttl:     ttl,
		baseURL: cfg.ResponseToken.BaseURL,
		now:     time.Now,
	}, nil
}

// IssueResponseToken signs a token for one professional and decision.
func (s *responseTokenService) IssueResponseToken(attributionID, professionalID uuid.UUID, decision entity.ResponseDecision) (string, error) {
	now := s.now()
	claims := responseClaims{
		AttributionID: attributionID.String(),
		Decision:      string(decision),
		Type:          tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   professionalID.String(), // The professional the link was sent to
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign response token")
	}

	return signed, nil
}

// ParseResponseToken checks the signature and expiry of a token and returns its claims.
func (s *responseTokenService) ParseResponseToken(tokenString string) (*service.ResponseClaims, error) {
	claims := &responseClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, domainerrors.ErrInvalidResponseToken.WrapMessage(err.Error())
	}

	if claims.Type != tokenType {
		return nil, domainerrors.ErrInvalidResponseToken.WithDetails("unexpected token type")
	}

	attributionID, err := uuid.Parse(claims.AttributionID)
	if err != nil {
		return nil, domainerrors.ErrInvalidResponseToken.WithDetails("malformed attribution id")
	}
	professionalID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domainerrors.ErrInvalidResponseToken.WithDetails("malformed professional id")
	}

	decision := entity.ResponseDecision(claims.Decision)
	if decision != entity.ResponseDecisionAccept && decision != entity.ResponseDecisionDecline {
		return nil, domainerrors.ErrInvalidResponseToken.WithDetails("unknown decision")
	}

	result := &service.ResponseClaims{
		AttributionID:  attributionID,
		ProfessionalID: professionalID,
		Decision:       decision,
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}

	return result, nil
}

// ResponseURL builds the public link for a token.
func (s *responseTokenService) ResponseURL(token string) string {
	base, err := url.Parse(s.baseURL)
	if err != nil || s.baseURL == "" {
		return "?" + tokenQueryID + "=" + url.QueryEscape(token)
	}

	query := base.Query()
	query.Set(tokenQueryID, token)
	base.RawQuery = query.Encode()

	return base.String()
}
