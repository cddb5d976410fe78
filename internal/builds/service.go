// Package builds turns a build questionnaire into a saved, catalog-linked
// parts list. Recommender failures never reach the caller: a static fallback
// build is served instead and labelled as such.
package builds

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/pcforge-backend/internal/recommender"
	"github.com/angelmondragon/pcforge-backend/internal/store"
	"github.com/angelmondragon/pcforge-backend/pkg/db/models"
	"github.com/angelmondragon/pcforge-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pcforge-backend/pkg/errors"
	"github.com/angelmondragon/pcforge-backend/pkg/logger"
	"github.com/angelmondragon/pcforge-backend/pkg/metrics"
	"github.com/angelmondragon/pcforge-backend/pkg/types"
)

const defaultTimeout = 30 * time.Second

type productLister interface {
	AllProducts(ctx context.Context) ([]models.Product, error)
}

// Build is a saved recommendation as returned to clients.
type Build struct {
	ID int64 `json:"build_id"`
	types.BuildRecommendation
	Requirements types.BuildRequirements `json:"requirements"`
	CreatedAt    time.Time               `json:"created_at"`
}

// Service is the build advisor.
type Service interface {
	Recommend(ctx context.Context, req types.BuildRequirements) (Build, error)
	GetBuild(ctx context.Context, id int64) (Build, error)
}

// ServiceParams groups dependencies for the build advisor.
type ServiceParams struct {
	Store       *store.Store
	Catalog     productLister
	Recommender recommender.Recommender
	Fallback    *Fallback
	Timeout     time.Duration
	Metrics     *metrics.BuilderMetrics
	Logger      *logger.Logger
}

type service struct {
	builds      store.Collection[models.PCBuild]
	catalog     productLister
	recommender recommender.Recommender
	fallback    *Fallback
	timeout     time.Duration
	metrics     *metrics.BuilderMetrics
	logg        *logger.Logger
	now         func() time.Time
}

// NewService builds the advisor. A nil Fallback loads the embedded default.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if params.Recommender == nil {
		return nil, fmt.Errorf("recommender is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	fallback := params.Fallback
	if fallback == nil {
		fb, err := LoadFallback("")
		if err != nil {
			return nil, err
		}
		fallback = fb
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &service{
		builds:      params.Store.Builds,
		catalog:     params.Catalog,
		recommender: params.Recommender,
		fallback:    fallback,
		timeout:     timeout,
		metrics:     params.Metrics,
		logg:        params.Logger,
		now:         time.Now,
	}, nil
}

func (s *service) Recommend(ctx context.Context, req types.BuildRequirements) (Build, error) {
	req = trimRequirements(req)
	if err := validateRequirements(req); err != nil {
		return Build{}, err
	}

	rec := s.generate(ctx, req)
	normalize(&rec)

	products, err := s.catalog.AllProducts(ctx)
	if err != nil {
		return Build{}, err
	}
	rec.Components = Reconcile(rec.Components, products)

	saved, err := s.builds.Create(ctx, models.PCBuild{
		Purpose:         req.Purpose,
		Requirements:    req,
		Recommendations: rec,
		TotalPrice:      rec.TotalPrice,
		CreatedAt:       s.now().UTC(),
	})
	if err != nil {
		return Build{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save build")
	}

	s.metrics.IncRecommendation(rec.Source.String())
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"build_id": saved.ID,
		"source":   rec.Source.String(),
	}), "builds.recommended")

	return toBuild(saved), nil
}

// generate asks the recommender and substitutes the fallback on any failure.
func (s *service) generate(ctx context.Context, req types.BuildRequirements) types.BuildRecommendation {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	result, err := s.recommender.Recommend(callCtx, req)
	elapsed := time.Since(start)

	if err != nil {
		reason := fallbackReason(err)
		s.metrics.ObserveRecommender("error", elapsed)
		s.metrics.IncFallback(reason.String())
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"reason": reason.String(),
			"error":  err.Error(),
		}), "builds.recommender_fallback")

		rec := s.fallback.Recommendation(req.Purpose)
		rec.Source = enums.BuildSourceFallback
		rec.FallbackReason = reason
		return rec
	}
	s.metrics.ObserveRecommender("ok", elapsed)

	return types.BuildRecommendation{
		Purpose:            req.Purpose,
		Analysis:           result.Analysis,
		Components:         result.Components,
		TotalPrice:         result.TotalPrice,
		PerformanceRating:  result.PerformanceRating,
		EstimatedPowerDraw: result.EstimatedPowerDraw,
		Source:             enums.BuildSourceAI,
	}
}

func (s *service) GetBuild(ctx context.Context, id int64) (Build, error) {
	saved, err := s.builds.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Build{}, pkgerrors.New(pkgerrors.CodeNotFound, "build not found")
		}
		return Build{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup build")
	}
	return toBuild(saved), nil
}

func fallbackReason(err error) enums.FallbackReason {
	if errors.Is(err, recommender.ErrRateLimited) {
		return enums.FallbackReasonRateLimited
	}
	return enums.FallbackReasonUnavailable
}

func toBuild(saved models.PCBuild) Build {
	return Build{
		ID:                  saved.ID,
		BuildRecommendation: saved.Recommendations,
		Requirements:        saved.Requirements,
		CreatedAt:           saved.CreatedAt,
	}
}

func trimRequirements(req types.BuildRequirements) types.BuildRequirements {
	req.Purpose = strings.TrimSpace(req.Purpose)
	req.Budget = strings.TrimSpace(req.Budget)
	req.Performance = strings.TrimSpace(req.Performance)
	req.Storage = strings.TrimSpace(req.Storage)
	req.Resolution = strings.TrimSpace(req.Resolution)
	req.AdditionalRequirements = strings.TrimSpace(req.AdditionalRequirements)
	return req
}

func validateRequirements(req types.BuildRequirements) error {
	details := map[string]string{}
	required := []struct {
		field string
		value string
	}{
		{"purpose", req.Purpose},
		{"budget", req.Budget},
		{"performance", req.Performance},
		{"storage", req.Storage},
		{"resolution", req.Resolution},
	}
	for _, r := range required {
		if r.value == "" {
			details[r.field] = "is required"
		}
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}
