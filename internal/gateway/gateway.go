// Package gateway implements the request admission and dispatch pipeline in
// front of the public API: key validation, rate limiting, endpoint
// resolution, permission and parameter checks, handler dispatch, and usage
// telemetry, in that strict order. Each step short-circuits on failure.
package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/apikey"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/clock"
	apierrors "github.com/Hamidon94/ultra.dogwalking-sub000/internal/errors"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/logging"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/models"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/monitoring"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/ratelimit"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/registry"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/telemetry"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/validation"
	"github.com/rs/zerolog"
)

// Request is one inbound public API call, transport-agnostic. Params holds
// query and body fields merged; Body is the raw decoded body for handlers
// that want it unflattened.
type Request struct {
	Path     string
	Method   string
	Token    string
	Params   map[string]any
	Body     map[string]any
	ClientIP string
}

// Service is the pipeline orchestrator. It is an explicit value holding its
// collaborators; nothing here is reachable through package globals, so tests
// build one around a fake clock and in-memory stores.
type Service struct {
	clock     clock.Clock
	keys      apikey.Store
	registry  *registry.Registry
	limiter   ratelimit.Limiter
	telemetry *telemetry.Recorder
	breaker   *BreakerManager
	logger    zerolog.Logger
}

// Option configures optional Service behavior.
type Option func(*Service)

// WithBreaker wraps handler dispatch in per-category circuit breakers.
func WithBreaker(bm *BreakerManager) Option {
	return func(s *Service) { s.breaker = bm }
}

// New assembles the pipeline.
func New(clk clock.Clock, keys apikey.Store, reg *registry.Registry, limiter ratelimit.Limiter, rec *telemetry.Recorder, opts ...Option) *Service {
	s := &Service{
		clock:     clk,
		keys:      keys,
		registry:  reg,
		limiter:   limiter,
		telemetry: rec,
		logger:    logging.NewLogger("gateway"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle runs one request through the pipeline. Telemetry is recorded for
// every outcome once the key is known; unauthenticated failures land in an
// aggregate bucket only.
func (s *Service) Handle(ctx context.Context, req Request) (*models.Envelope, *apierrors.APIError) {
	rawLabel := req.Method + " " + req.Path

	// 1. Resolve the caller.
	key, err := s.keys.Validate(ctx, req.Token)
	if err != nil {
		s.telemetry.Record(telemetry.UnauthenticatedKey, rawLabel, s.clock.Now(), false)
		monitoring.RecordRejection(string(apierrors.CodeInvalidAPIKey))
		logging.LogSecurityEvent("invalid_api_key", "", req.ClientIP, err.Error())
		return nil, apierrors.ErrInvalidAPIKey
	}
	keyID := key.ID.String()

	// 2. Admission under the key's hourly ceiling. Rejected attempts still
	// count toward the key's error telemetry.
	res, limitErr := s.limiter.Allow(ctx, keyID, key.RateCeiling)
	if limitErr != nil {
		s.finish(ctx, key, rawLabel, false)
		s.logger.Error().Err(limitErr).Str("api_key_id", keyID).Msg("Rate limit check failed")
		return nil, apierrors.NewInternal()
	}
	if !res.Allowed {
		s.finish(ctx, key, rawLabel, false)
		monitoring.RecordRejection(string(apierrors.CodeRateLimitExceeded))
		monitoring.RecordRateLimitHit(keyID)
		return nil, apierrors.ErrRateLimitExceeded
	}

	// 3. Route resolution.
	endpoint, pathParams, apiErr := s.registry.Resolve(req.Path, req.Method)
	if apiErr != nil {
		s.finish(ctx, key, rawLabel, false)
		monitoring.RecordRejection(string(apiErr.Code))
		return nil, apiErr
	}
	label := endpoint.Method + " " + endpoint.Path

	// 4. Permission check against the endpoint's category and method.
	if endpoint.AuthRequired && !key.Can(endpoint.Category, models.ActionForMethod(endpoint.Method)) {
		s.finish(ctx, key, label, false)
		monitoring.RecordRejection(string(apierrors.CodeInsufficientPermissions))
		logging.LogSecurityEvent("insufficient_permissions", keyID, req.ClientIP,
			endpoint.Method+" "+endpoint.Path)
		return nil, apierrors.ErrInsufficientPermissions
	}

	// 5. Parameter validation, fail-slow.
	params, violations := validation.Validate(endpoint.Parameters, req.Params)
	if len(violations) > 0 {
		s.finish(ctx, key, label, false)
		monitoring.RecordRejection(string(apierrors.CodeValidationError))
		return nil, apierrors.NewValidationError(violations)
	}
	// Path parameters bind after validation; they come from the matched
	// template, not the declared schema.
	for name, value := range pathParams {
		params[name] = value
	}

	// 6. Dispatch. No gateway lock is held across this call.
	envelope, apiErr := s.dispatch(ctx, endpoint, registry.Request{Params: params, Body: req.Body})
	if apiErr != nil {
		s.finish(ctx, key, label, false)
		monitoring.RecordRejection(string(apiErr.Code))
		return nil, apiErr
	}

	// 7. Success telemetry.
	s.finish(ctx, key, label, true)
	return envelope, nil
}

// dispatch invokes the endpoint's bound handler, mapping infrastructure
// failures (no handler, open breaker, deadline overrun, panic) into the
// public taxonomy. Handler domain errors pass through unchanged.
func (s *Service) dispatch(ctx context.Context, endpoint *registry.Endpoint, req registry.Request) (envelope *models.Envelope, apiErr *apierrors.APIError) {
	if endpoint.Handler == nil {
		return nil, apierrors.NewNotImplemented(endpoint.Method, endpoint.Path)
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Interface("panic", r).
				Str("endpoint", endpoint.Method+" "+endpoint.Path).
				Msg("Handler panicked")
			envelope, apiErr = nil, apierrors.NewInternal()
		}
	}()

	start := time.Now()
	defer func() {
		monitoring.RecordHandlerDuration(endpoint.Method+" "+endpoint.Path, time.Since(start))
	}()

	if s.breaker != nil {
		envelope, apiErr = s.breaker.Execute(endpoint.Category, func() (*models.Envelope, *apierrors.APIError) {
			return endpoint.Handler(ctx, req)
		})
	} else {
		envelope, apiErr = endpoint.Handler(ctx, req)
	}

	// A handler that ran past the caller's deadline is a transient internal
	// failure, not something the gateway retries.
	if apiErr == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, apierrors.NewInternal()
	}

	return envelope, apiErr
}

// finish applies the per-request telemetry for a resolved key: the aggregate
// counters and the key's own usage counter. Each side is a single guarded
// update, so a cancelled request never leaves half of it applied.
func (s *Service) finish(ctx context.Context, key *models.APIKey, endpoint string, success bool) {
	now := s.clock.Now()
	s.telemetry.Record(key.ID.String(), endpoint, now, success)
	if err := s.keys.RecordUse(ctx, key.ID, now); err != nil {
		s.logger.Warn().Err(err).Str("api_key_id", key.ID.String()).Msg("Failed to record key use")
	}
}

// Usage returns the usage aggregate for one key.
func (s *Service) Usage(keyID string) (telemetry.UsageStats, bool) {
	return s.telemetry.Snapshot(keyID)
}

// Registry exposes the catalog read model for the documentation surface.
func (s *Service) Registry() *registry.Registry {
	return s.registry
}
