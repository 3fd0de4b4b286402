package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"taxdocs/internal/domain"
	"taxdocs/internal/port"
)

// RunnerFunc adapts a function to port.CheckRunner.
type RunnerFunc func(ctx context.Context, name string, rec *domain.DocumentRecord) (domain.CheckOutcome, error)

func (f RunnerFunc) RunCheck(ctx context.Context, name string, rec *domain.DocumentRecord) (domain.CheckOutcome, error) {
	return f(ctx, name, rec)
}

// Tracker runs check-gated transitions. It holds no per-document state; the
// record and its stored copy are owned by the caller and the committer.
type Tracker struct {
	committer port.StatusCommitter
	log       *zap.Logger
	now       func() time.Time
}

// NewTracker creates a Tracker that commits through committer.
func NewTracker(committer port.StatusCommitter, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{committer: committer, log: log, now: time.Now}
}

// WithClock returns a copy of t that timestamps commits with now.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	cp := *t
	cp.now = now
	return &cp
}

// Transition moves rec from observed to target.
//
// A target not allowed from observed yields a failed result and a
// *domain.TransitionError. Failed checks yield a failed result and a nil error.
// If the stored status no longer equals observed at commit time, the result is
// failed and the committer's *domain.ConflictError is returned; the caller
// should re-read the record before trying again.
func (t *Tracker) Transition(
	ctx context.Context,
	rec *domain.DocumentRecord,
	observed, target domain.LifecycleState,
	runner port.CheckRunner,
) (*domain.TransitionResult, error) {
	res := &domain.TransitionResult{PreviousStatus: observed}

	if !CanTransition(observed, target) {
		err := &domain.TransitionError{From: observed, To: target}
		res.Errors = []string{err.Error()}
		return res, err
	}

	res.Checks = runChecks(ctx, rec, RequiredChecks(target), runner)
	for _, c := range res.Checks {
		if !c.Passed {
			res.Errors = append(res.Errors, checkFailure(c))
		}
	}
	if len(res.Errors) > 0 {
		t.log.Info("transition blocked by checks",
			zap.String("document_id", rec.ID.String()),
			zap.String("from", string(observed)),
			zap.String("to", string(target)),
			zap.Strings("errors", res.Errors),
		)
		return res, nil
	}

	at := t.now().UTC()
	entries := make(map[string]domain.CheckEntry, len(res.Checks))
	for _, c := range res.Checks {
		entries[c.Name] = domain.CheckEntry{Passed: c.Passed, Timestamp: at, Detail: c.Detail}
	}
	if err := t.committer.CompareAndSwapStatus(ctx, rec, observed, target, entries, at); err != nil {
		res.Errors = append(res.Errors, err.Error())
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			t.log.Warn("transition lost concurrent update",
				zap.String("document_id", rec.ID.String()),
				zap.String("expected", string(conflict.Expected)),
				zap.String("actual", string(conflict.Actual)),
				zap.String("to", string(target)),
			)
			return res, err
		}
		return res, fmt.Errorf("committing transition: %w", err)
	}

	res.Success = true
	res.NewStatus = target
	res.Timestamp = &at
	t.log.Info("document transitioned",
		zap.String("document_id", rec.ID.String()),
		zap.String("from", string(observed)),
		zap.String("to", string(target)),
	)
	return res, nil
}

// runChecks runs every check concurrently and returns outcomes in the order of
// names. A runner error or a missing runner counts as a failed check.
func runChecks(ctx context.Context, rec *domain.DocumentRecord, names []string, runner port.CheckRunner) []domain.CheckOutcome {
	outcomes := make([]domain.CheckOutcome, len(names))
	if runner == nil {
		for i, name := range names {
			outcomes[i] = domain.CheckOutcome{Name: name, Detail: "no check runner configured"}
		}
		return outcomes
	}

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			out, err := runner.RunCheck(ctx, name, rec)
			if err != nil {
				out = domain.CheckOutcome{Passed: false, Detail: err.Error()}
			}
			out.Name = name
			outcomes[i] = out
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func checkFailure(c domain.CheckOutcome) string {
	if c.Detail == "" {
		return fmt.Sprintf("check %s failed", c.Name)
	}
	return fmt.Sprintf("check %s failed: %s", c.Name, c.Detail)
}
