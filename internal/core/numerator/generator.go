package numerator

import (
	"context"
	"time"
)

// Generator produces unique human-readable document numbers.
// Implementations live in infrastructure layer.
//
// A number is unique per (type, year); a number observed by a committed
// operation is never handed out again.
type Generator interface {
	// Next returns the next number for docType in the year of scope.
	// Pattern: PREFIX-YEAR-NNNNNN (e.g., INV-2025-000001)
	Next(ctx context.Context, docType DocumentType, scope time.Time) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, docType DocumentType, scope time.Time) (string, error)

// Next implements Generator.
func (f GeneratorFunc) Next(ctx context.Context, docType DocumentType, scope time.Time) (string, error) {
	return f(ctx, docType, scope)
}
