package impl

import (
	"bytes"
	"cmp"
	"context"
	"log/slog"
	"math"
	"slices"

	"attribution/config"
	"attribution/internal/domain/entity"
	domainerrors "attribution/internal/domain/errors"
	"attribution/internal/domain/repository"
	"attribution/internal/usecase"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Bounding box pre-filter is widened so that rounding never drops a point the
// haversine check would keep.
const boundPadding = 1.1

type geoMatcher struct {
	logger           *slog.Logger
	professionalRepo repository.ProfessionalRepository
	config           *config.AttributionConfig
}

// GeoMatcherParams holds dependencies for GeoMatcher, injected by Fx.
type GeoMatcherParams struct {
	fx.In

	Logger           *slog.Logger
	ProfessionalRepo repository.ProfessionalRepository
	Config           *config.Config
}

// NewGeoMatcher creates a new geo matcher instance
func NewGeoMatcher(params GeoMatcherParams) usecase.GeoMatcher {
	attributionCfg := params.Config.Attribution
	if attributionCfg == nil {
		attributionCfg = config.DefaultAttributionConfig()
	}

	return &geoMatcher{
		logger:           params.Logger,
		professionalRepo: params.ProfessionalRepo,
		config:           attributionCfg,
	}
}

// FindCandidates loads the registry for the service type and ranks the matches.
func (m *geoMatcher) FindCandidates(ctx context.Context, query usecase.MatchQuery) ([]entity.Candidate, error) {
	query, err := m.normalizeQuery(query)
	if err != nil {
		return nil, err
	}

	professionals, err := m.professionalRepo.FindByServiceType(ctx, query.ServiceType)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load professionals by service type")
	}

	candidates := MatchCandidates(professionals, query)

	m.logger.Debug("Matched candidates",
		slog.String("service_type", query.ServiceType),
		slog.Float64("max_radius_km", query.MaxRadiusKm),
		slog.Int("registry_count", len(professionals)),
		slog.Int("candidate_count", len(candidates)),
	)

	return candidates, nil
}

func (m *geoMatcher) normalizeQuery(query usecase.MatchQuery) (usecase.MatchQuery, error) {
	if !isValidCoordinate(query.ServiceLocation) {
		return query, domainerrors.ErrInvalidCoordinates.WithDetails("service location out of range")
	}
	if query.ServiceType == "" {
		return query, domainerrors.ErrValidationFailed.WithDetails("service type is required")
	}
	if math.IsNaN(query.MaxRadiusKm) || query.MaxRadiusKm < 0 {
		return query, domainerrors.ErrInvalidRadius.WithDetails("radius must be a positive number")
	}
	if query.MaxRadiusKm == 0 {
		query.MaxRadiusKm = m.config.DefaultRadiusKm
	}
	if m.config.MaxRadiusKm > 0 && query.MaxRadiusKm > m.config.MaxRadiusKm {
		return query, domainerrors.ErrInvalidRadius.WithDetails("radius exceeds the configured maximum")
	}
	if query.Limit <= 0 {
		query.Limit = m.config.MaxCandidates
	}

	return query, nil
}

// MatchCandidates filters professionals by verification, availability, capability and
// great-circle distance, then orders them by distance and professional ID.
// Professionals without coordinates are skipped.
func MatchCandidates(professionals []*entity.Professional, query usecase.MatchQuery) []entity.Candidate {
	center := toPoint(query.ServiceLocation)
	radiusMeters := query.MaxRadiusKm * 1000

	bound, usePrefilter := searchBound(center, radiusMeters)

	candidates := make([]entity.Candidate, 0)
	for _, professional := range professionals {
		if professional == nil || !professional.Verified || !professional.Available {
			continue
		}
		if !professional.Supports(query.ServiceType) {
			continue
		}
		if professional.Coordinates == nil || !isValidCoordinate(*professional.Coordinates) {
			continue
		}

		point := toPoint(*professional.Coordinates)
		if usePrefilter && !bound.Contains(point) {
			continue
		}

		distanceKm := geo.DistanceHaversine(center, point) / 1000
		if distanceKm > query.MaxRadiusKm {
			continue
		}

		candidates = append(candidates, entity.Candidate{
			Professional: professional,
			DistanceKm:   roundKm(distanceKm),
		})
	}

	slices.SortStableFunc(candidates, func(a, b entity.Candidate) int {
		if c := cmp.Compare(a.DistanceKm, b.DistanceKm); c != 0 {
			return c
		}

		return bytes.Compare(a.Professional.ID[:], b.Professional.ID[:])
	})

	if query.Limit > 0 && len(candidates) > query.Limit {
		candidates = candidates[:query.Limit]
	}

	return candidates
}

// searchBound returns a padded box around center. The box is not used when it
// would cross the antimeridian or a pole. A wrapped box has Min.Lon > Max.Lon.
func searchBound(center orb.Point, radiusMeters float64) (orb.Bound, bool) {
	bound := geo.NewBoundAroundPoint(center, radiusMeters*boundPadding)
	if bound.Min.Lon() < -180 || bound.Max.Lon() > 180 || bound.Min.Lon() > bound.Max.Lon() ||
		bound.Min.Lat() < -90 || bound.Max.Lat() > 90 {
		return bound, false
	}

	return bound, true
}

func toPoint(c entity.Coordinates) orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// isValidCoordinate checks if a coordinate is within valid ranges
func isValidCoordinate(c entity.Coordinates) bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}

	return c.Valid()
}

// roundKm keeps distances stable across runs at metre precision.
func roundKm(km float64) float64 {
	return math.Round(km*1000) / 1000
}
