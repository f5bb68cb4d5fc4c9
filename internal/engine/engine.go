// Package engine is the in-process facade over the dietary safety checks,
// the menu cache and the metered extraction. Job workers and the HTTP
// surface both call into it.
package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"dinefine-workers/internal/common/logger"
	"dinefine-workers/internal/common/metrics"
	"dinefine-workers/internal/extraction"
	"dinefine-workers/internal/menucache"
	"dinefine-workers/internal/models"
	"dinefine-workers/internal/profile"
	"dinefine-workers/internal/quota"
	"dinefine-workers/internal/safety/evaluator"
	"dinefine-workers/internal/safety/scanner"
	"dinefine-workers/internal/safety/taxonomy"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("dinefine-workers/internal/engine")

var (
	ErrMissingDinerID = errors.New("MISSING_DINER_ID")
	// ErrNoProfileSource is returned when a user id must be resolved but no
	// profile store was configured.
	ErrNoProfileSource = errors.New("NO_PROFILE_SOURCE")
)

// Extractor fetches fresh menu candidates for a source.
type Extractor interface {
	Extract(ctx context.Context, req extraction.Request) ([]models.MenuItem, error)
}

// ProfileSource resolves a diner's declared restrictions.
type ProfileSource interface {
	Get(ctx context.Context, userID string) (models.DinerProfile, error)
}

// Deps are the collaborators of an Engine. Taxonomy defaults to the built-in
// tables and Policy to menucache.DefaultPolicy.
type Deps struct {
	Taxonomy      *taxonomy.Taxonomy
	Store         menucache.Store
	Policy        *menucache.Policy
	Ledger        quota.Ledger
	DailyLimit    int
	CreditTimeout time.Duration
	Extractor     Extractor
	Profiles      ProfileSource
}

type Engine struct {
	scanner    *scanner.Scanner
	evaluator  *evaluator.Evaluator
	menus      *menucache.Coordinator
	meter      *quota.Meter
	extractor  Extractor
	profiles   ProfileSource
	dailyLimit int
	logger     logger.Logger
}

func New(deps Deps, log logger.Logger) *Engine {
	policy := menucache.DefaultPolicy()
	if deps.Policy != nil {
		policy = *deps.Policy
	}

	return &Engine{
		scanner:    scanner.New(deps.Taxonomy),
		evaluator:  evaluator.New(deps.Taxonomy),
		menus:      menucache.NewCoordinator(deps.Store, policy, log),
		meter:      quota.NewMeter(deps.Ledger, deps.CreditTimeout, log),
		extractor:  deps.Extractor,
		profiles:   deps.Profiles,
		dailyLimit: deps.DailyLimit,
		logger:     logger.ForComponent(log, "engine"),
	}
}

// ScanRestaurant checks a restaurant's text against the diner's restrictions.
func (e *Engine) ScanRestaurant(r models.Restaurant, diner models.DinerProfile) models.ScanVerdict {
	verdict := e.scanner.Scan(r, diner)
	metrics.ScanVerdicts.WithLabelValues(string(verdict.RiskLevel)).Inc()
	return verdict
}

// EvaluateMenu counts the items the diner can safely order.
func (e *Engine) EvaluateMenu(items []models.MenuItem, diner models.DinerProfile) models.MenuSafetySummary {
	return e.evaluator.Evaluate(items, diner)
}

// IsItemRestricted reports whether any declared label matches the item.
func (e *Engine) IsItemRestricted(item models.MenuItem, diner models.DinerProfile) bool {
	return e.evaluator.IsItemRestricted(item, diner)
}

// Annotate explains, per item, which labels conflicted and through which
// keywords.
func (e *Engine) Annotate(items []models.MenuItem, diner models.DinerProfile) []models.ItemSafety {
	return e.evaluator.Annotate(items, diner)
}

// ResolveDiner returns inline when given, otherwise the stored profile of
// userID. With neither, the diner has no restrictions.
func (e *Engine) ResolveDiner(ctx context.Context, userID string, inline *models.DinerProfile) (models.DinerProfile, error) {
	if inline != nil {
		return *inline, nil
	}
	if strings.TrimSpace(userID) == "" {
		return models.DinerProfile{}, nil
	}
	if e.profiles == nil {
		return models.DinerProfile{}, ErrNoProfileSource
	}
	return e.profiles.Get(ctx, userID)
}

// MenuRequest identifies a menu lookup. DinerID is charged when an
// extraction is needed and may be blank otherwise.
type MenuRequest struct {
	SourceKey      string
	Query          string
	DinerID        string
	RestaurantName string
}

// MenuResult is the outcome of GetOrExtractMenu.
type MenuResult struct {
	Items           []models.MenuItem
	ServedFromCache bool
	Decision        menucache.Decision
	UpdatedAt       time.Time
}

// GetOrExtractMenu serves the cached menu when the cache policy allows it and
// otherwise runs a metered extraction. Cache hits need no DinerID; an
// extraction without one fails with ErrMissingDinerID. Extractions that fail
// or find nothing are credited back to the diner and leave the cache as it was.
func (e *Engine) GetOrExtractMenu(ctx context.Context, req MenuRequest) (*MenuResult, error) {
	ctx, span := tracer.Start(ctx, "engine.GetOrExtractMenu", trace.WithAttributes(
		attribute.String("menu.source_key", req.SourceKey),
		attribute.Int("menu.query_length", len(req.Query)),
	))
	defer span.End()

	extract := func(ctx context.Context) ([]models.MenuItem, error) {
		if strings.TrimSpace(req.DinerID) == "" {
			return nil, ErrMissingDinerID
		}
		return quota.WithMeteredAttempt(ctx, e.meter, req.DinerID,
			func(ctx context.Context) ([]models.MenuItem, error) {
				return e.extractor.Extract(ctx, extraction.Request{
					SourceKey:      req.SourceKey,
					Query:          req.Query,
					RestaurantName: req.RestaurantName,
				})
			},
			func(items []models.MenuItem) bool { return len(items) > 0 },
		)
	}

	res, err := e.menus.Resolve(ctx, req.SourceKey, req.Query, extract)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("menu.cache_decision", string(res.Decision)),
		attribute.Int("menu.items", len(res.Items)),
	)
	return &MenuResult{
		Items:           res.Items,
		ServedFromCache: res.ServedFromCache,
		Decision:        res.Decision,
		UpdatedAt:       res.UpdatedAt,
	}, nil
}

// MenuAnalysis combines a menu lookup with its safety evaluation.
type MenuAnalysis struct {
	MenuResult
	Summary        models.MenuSafetySummary
	Annotations    []models.ItemSafety
	QuotaRemaining *int
}

// AnalyzeMenu resolves the menu and evaluates it for diner. The remaining
// quota is omitted for anonymous lookups and when the ledger cannot be read.
func (e *Engine) AnalyzeMenu(ctx context.Context, req MenuRequest, diner models.DinerProfile) (*MenuAnalysis, error) {
	menu, err := e.GetOrExtractMenu(ctx, req)
	if err != nil {
		return nil, err
	}

	analysis := &MenuAnalysis{
		MenuResult:  *menu,
		Summary:     e.evaluator.Evaluate(menu.Items, diner),
		Annotations: e.evaluator.Annotate(menu.Items, diner),
	}

	if strings.TrimSpace(req.DinerID) == "" {
		return analysis, nil
	}
	if remaining, err := e.meter.Remaining(ctx, req.DinerID); err != nil {
		e.logger.Warn("could not read remaining quota", map[string]interface{}{
			"dinerId": req.DinerID,
			"error":   err,
		})
	} else {
		analysis.QuotaRemaining = &remaining
	}
	return analysis, nil
}

// Compile-time checks for the production collaborators.
var (
	_ Extractor     = (*extraction.Client)(nil)
	_ ProfileSource = (*profile.Store)(nil)
)
