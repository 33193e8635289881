// Package service implements the registration rules and the submit
// pipeline between the page controller and the repository layer.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/Shivanand-hulikatti/event-landing/internal/metrics"
	"github.com/Shivanand-hulikatti/event-landing/internal/model"
	"github.com/Shivanand-hulikatti/event-landing/internal/repository"
	"github.com/rs/zerolog"
)

// RecordStore is the persistence the pipeline writes to.
type RecordStore interface {
	Append(ctx context.Context, rec model.RegistrationRecord) error
}

// RegistrationService validates submissions and records the valid ones.
type RegistrationService struct {
	store   RecordStore
	log     zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(store RecordStore, log zerolog.Logger, m *metrics.Metrics) *RegistrationService {
	if m == nil {
		m = metrics.Nop()
	}
	return &RegistrationService{store: store, log: log, metrics: m, now: time.Now}
}

// SubmitResult is the outcome of one submit.
type SubmitResult struct {
	Validation ValidationResult
	// Record is set when validation passed.
	Record *model.RegistrationRecord
	// StorageErr is the persistence failure, if any. The submission still
	// counts as successful for the visitor.
	StorageErr error
}

// Submit validates in and, when valid, appends a record that snapshots event.
func (s *RegistrationService) Submit(ctx context.Context, event model.EventInfo, in model.RegistrationInput) SubmitResult {
	res := SubmitResult{Validation: Validate(in)}
	if !res.Validation.OK {
		outcome := "invalid"
		if len(res.Validation.Errors) == 0 && res.Validation.ConsentMissing {
			outcome = "consent_missing"
		}
		s.metrics.Submissions.WithLabelValues(outcome).Inc()
		return res
	}

	rec := model.NewRegistrationRecord(Normalize(in), event, s.now())
	res.Record = &rec

	if err := s.store.Append(ctx, rec); err != nil {
		res.StorageErr = err
		kind := string(repository.KindUnavailable)
		var storageErr *repository.StorageError
		if errors.As(err, &storageErr) {
			kind = string(storageErr.Kind)
		}
		s.metrics.StorageErrors.WithLabelValues(kind).Inc()
		s.log.Warn().Err(err).Str("kind", kind).Msg("registration not persisted")
	}

	s.metrics.Submissions.WithLabelValues("accepted").Inc()
	s.log.Info().
		Str("event", event.Title).
		Str("year", string(rec.Year)).
		Bool("persisted", res.StorageErr == nil).
		Msg("registration accepted")
	return res
}
