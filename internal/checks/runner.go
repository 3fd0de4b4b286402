// Package checks implements the named checks that gate lifecycle transitions.
package checks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"taxdocs/internal/domain"
	"taxdocs/internal/metrics"
)

// ErrUnknownCheck is returned for a check name with no registered implementation.
var ErrUnknownCheck = errors.New("unknown check")

// Check evaluates one document.
type Check interface {
	Run(ctx context.Context, rec *domain.DocumentRecord) (domain.CheckOutcome, error)
}

// CheckFunc adapts a function to Check.
type CheckFunc func(ctx context.Context, rec *domain.DocumentRecord) (domain.CheckOutcome, error)

func (f CheckFunc) Run(ctx context.Context, rec *domain.DocumentRecord) (domain.CheckOutcome, error) {
	return f(ctx, rec)
}

// Runner dispatches check names to registered checks. It implements port.CheckRunner.
type Runner struct {
	checks  map[string]Check
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewRunner creates an empty Runner. m may be nil.
func NewRunner(m *metrics.Metrics, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{checks: make(map[string]Check), metrics: m, log: log}
}

// Register adds or replaces the check for name.
func (r *Runner) Register(name string, c Check) *Runner {
	r.checks[name] = c
	return r
}

// RunCheck runs the named check and records its outcome.
func (r *Runner) RunCheck(ctx context.Context, name string, rec *domain.DocumentRecord) (domain.CheckOutcome, error) {
	c, ok := r.checks[name]
	if !ok {
		r.metrics.RecordCheck(name, false, 0)
		return domain.CheckOutcome{Name: name}, fmt.Errorf("%w: %s", ErrUnknownCheck, name)
	}

	start := time.Now()
	out, err := c.Run(ctx, rec)
	out.Name = name
	if err != nil {
		out.Passed = false
	}
	r.metrics.RecordCheck(name, out.Passed, time.Since(start))

	if err != nil {
		r.log.Warn("check errored",
			zap.String("check", name),
			zap.String("document_id", rec.ID.String()),
			zap.Error(err),
		)
	}
	return out, err
}
