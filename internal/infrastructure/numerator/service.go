// Package numerator implements core/numerator.Generator over pluggable counters.
// The postgres counter runs inside the caller's transaction; redis and memory
// counters serve deployments without a shared database sequence table.
package numerator

import (
	"context"
	"fmt"
	"time"

	corenumerator "fishledger/internal/core/numerator"
)

// Counter atomically increments and returns the counter stored under key.
type Counter interface {
	Increment(ctx context.Context, cfg corenumerator.Config, period time.Time) (int64, error)
}

// Service formats counter values into document numbers.
type Service struct {
	counter Counter
}

// Ensure compile-time interface compliance.
var _ corenumerator.Generator = (*Service)(nil)

// New creates a numbering service over counter.
func New(counter Counter) *Service {
	return &Service{counter: counter}
}

// Next implements corenumerator.Generator.
func (s *Service) Next(ctx context.Context, docType corenumerator.DocumentType, scope time.Time) (string, error) {
	if s == nil || s.counter == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	cfg, err := corenumerator.ConfigFor(docType)
	if err != nil {
		return "", err
	}

	num, err := s.counter.Increment(ctx, cfg, scope)
	if err != nil {
		return "", fmt.Errorf("next %s number: %w", docType, err)
	}

	return cfg.Format(scope, num), nil
}
