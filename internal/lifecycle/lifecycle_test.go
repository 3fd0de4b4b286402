package lifecycle_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"taxdocs/internal/domain"
	"taxdocs/internal/lifecycle"
	"taxdocs/internal/repository/memory"
)

var fixedNow = time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)

// outcomes builds a runner answering from a fixed pass/fail table; unknown checks fail.
func outcomes(table map[string]bool) lifecycle.RunnerFunc {
	return func(_ context.Context, name string, _ *domain.DocumentRecord) (domain.CheckOutcome, error) {
		passed, ok := table[name]
		if !ok {
			return domain.CheckOutcome{}, errors.New("no outcome configured")
		}
		return domain.CheckOutcome{Name: name, Passed: passed}, nil
	}
}

func allPass() lifecycle.RunnerFunc {
	return func(_ context.Context, name string, _ *domain.DocumentRecord) (domain.CheckOutcome, error) {
		return domain.CheckOutcome{Name: name, Passed: true, Detail: "ok"}, nil
	}
}

func setup(t *testing.T, status domain.LifecycleState) (*lifecycle.Tracker, *domain.DocumentRecord, func() *domain.DocumentRecord) {
	t.Helper()
	repo := memory.NewDocumentRepo()
	rec := &domain.DocumentRecord{ID: uuid.New(), Category: "W2", Status: status}
	require.NoError(t, repo.Create(context.Background(), rec))

	tracker := lifecycle.NewTracker(repo, zaptest.NewLogger(t)).WithClock(func() time.Time { return fixedNow })
	reload := func() *domain.DocumentRecord {
		got, err := repo.GetByID(context.Background(), rec.ID)
		require.NoError(t, err)
		return got
	}
	return tracker, reload(), reload
}

func TestTransitionTable(t *testing.T) {
	assert.True(t, lifecycle.IsTerminal(domain.StateArchived))
	assert.Empty(t, lifecycle.AllowedNext(domain.StateArchived))
	for _, s := range domain.AllLifecycleStates {
		if s != domain.StateArchived {
			assert.False(t, lifecycle.IsTerminal(s), s)
		}
	}

	assert.True(t, lifecycle.CanTransition(domain.StateRejected, domain.StateUploaded))
	assert.True(t, lifecycle.CanTransition(domain.StateFailed, domain.StateUploaded))
	assert.False(t, lifecycle.CanTransition(domain.StateVerified, domain.StateUploaded))
	assert.False(t, lifecycle.CanTransition(domain.StateArchived, domain.StateUploaded))
	assert.False(t, lifecycle.CanTransition(domain.StateUploaded, domain.StateValidated))

	reachesUploaded := []domain.LifecycleState{}
	for _, s := range domain.AllLifecycleStates {
		if lifecycle.CanTransition(s, domain.StateUploaded) {
			reachesUploaded = append(reachesUploaded, s)
		}
	}
	assert.Equal(t, []domain.LifecycleState{domain.StateRejected, domain.StateFailed}, reachesUploaded)

	assert.Equal(t, []string{"virus_scan", "format_check"}, lifecycle.RequiredChecks(domain.StateProcessing))
	assert.Equal(t, []string{"completeness", "compliance"}, lifecycle.RequiredChecks(domain.StateValidated))
	assert.Equal(t, []string{"final_review"}, lifecycle.RequiredChecks(domain.StateVerified))
	assert.Empty(t, lifecycle.RequiredChecks(domain.StateFailed))
	assert.Empty(t, lifecycle.RequiredChecks(domain.StateUploaded))
}

func TestTransition_InvalidTarget(t *testing.T) {
	tracker, rec, reload := setup(t, domain.StateUploaded)

	var ran atomic.Int32
	runner := lifecycle.RunnerFunc(func(_ context.Context, name string, _ *domain.DocumentRecord) (domain.CheckOutcome, error) {
		ran.Add(1)
		return domain.CheckOutcome{Name: name, Passed: true}, nil
	})

	res, err := tracker.Transition(context.Background(), rec, rec.Status, domain.StateValidated, runner)

	var terr *domain.TransitionError
	require.ErrorAs(t, err, &terr)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, domain.StateUploaded, terr.From)
	assert.Equal(t, domain.StateValidated, terr.To)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Errors)
	assert.Zero(t, ran.Load())
	assert.Equal(t, domain.StateUploaded, rec.Status)
	assert.Equal(t, domain.StateUploaded, reload().Status)
}

func TestTransition_FromTerminal(t *testing.T) {
	tracker, rec, _ := setup(t, domain.StateArchived)

	for _, target := range domain.AllLifecycleStates {
		_, err := tracker.Transition(context.Background(), rec, rec.Status, target, allPass())
		assert.ErrorIs(t, err, domain.ErrInvalidTransition, target)
	}
}

func TestTransition_FailedCheckLeavesStatus(t *testing.T) {
	tracker, rec, reload := setup(t, domain.StateProcessing)

	res, err := tracker.Transition(context.Background(), rec, rec.Status, domain.StateValidated,
		outcomes(map[string]bool{"virus_scan": true, "format_check": false}))

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Errors)
	assert.Nil(t, res.Timestamp)
	assert.Equal(t, domain.StateProcessing, rec.Status)
	assert.Equal(t, domain.StateProcessing, reload().Status)
	assert.Empty(t, reload().CheckHistory)
}

func TestTransition_CollectsEveryCheckFailure(t *testing.T) {
	tracker, rec, _ := setup(t, domain.StateUploaded)

	res, err := tracker.Transition(context.Background(), rec, rec.Status, domain.StateProcessing,
		outcomes(map[string]bool{"format_check": false}))

	require.NoError(t, err)
	assert.False(t, res.Success)
	require.Len(t, res.Checks, 2)
	assert.Equal(t, "virus_scan", res.Checks[0].Name)
	assert.Equal(t, "format_check", res.Checks[1].Name)
	assert.Equal(t, []string{
		"check virus_scan failed: no outcome configured",
		"check format_check failed",
	}, res.Errors)
}

func TestTransition_NilRunnerFailsGatedTransition(t *testing.T) {
	tracker, rec, _ := setup(t, domain.StateVerified)

	res, err := tracker.Transition(context.Background(), rec, rec.Status, domain.StateArchived, nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"check final_review failed: no check runner configured"}, res.Errors)
}

func TestTransition_Success(t *testing.T) {
	tracker, rec, reload := setup(t, domain.StateUploaded)

	res, err := tracker.Transition(context.Background(), rec, rec.Status, domain.StateProcessing, allPass())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Empty(t, res.Errors)
	assert.Equal(t, domain.StateUploaded, res.PreviousStatus)
	assert.Equal(t, domain.StateProcessing, res.NewStatus)
	require.NotNil(t, res.Timestamp)
	assert.Equal(t, fixedNow, *res.Timestamp)

	for _, r := range []*domain.DocumentRecord{rec, reload()} {
		assert.Equal(t, domain.StateProcessing, r.Status)
		require.Contains(t, r.CheckHistory, "virus_scan")
		require.Contains(t, r.CheckHistory, "format_check")
		assert.Equal(t, domain.CheckEntry{Passed: true, Timestamp: fixedNow, Detail: "ok"}, r.CheckHistory["virus_scan"])
	}
}

func TestTransition_UngatedTargetNeedsNoRunner(t *testing.T) {
	tracker, rec, _ := setup(t, domain.StateUploaded)

	res, err := tracker.Transition(context.Background(), rec, rec.Status, domain.StateFailed, nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.Checks)
	assert.Equal(t, domain.StateFailed, rec.Status)
}

func TestTransition_StaleObservedStatusConflicts(t *testing.T) {
	tracker, rec, reload := setup(t, domain.StateUploaded)

	stale := rec.Clone()
	_, err := tracker.Transition(context.Background(), rec, rec.Status, domain.StateFailed, nil)
	require.NoError(t, err)

	res, err := tracker.Transition(context.Background(), stale, domain.StateUploaded, domain.StateProcessing, allPass())

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.StateUploaded, conflict.Expected)
	assert.Equal(t, domain.StateFailed, conflict.Actual)
	assert.False(t, res.Success)
	assert.Equal(t, domain.StateUploaded, stale.Status)
	assert.Equal(t, domain.StateFailed, reload().Status)
}

func TestTransition_ConcurrentRaceHasOneWinner(t *testing.T) {
	for i := 0; i < 50; i++ {
		tracker, _, reload := setup(t, domain.StateUploaded)

		targets := []domain.LifecycleState{domain.StateProcessing, domain.StateFailed}
		results := make([]*domain.TransitionResult, len(targets))
		errs := make([]error, len(targets))

		var start, wg sync.WaitGroup
		start.Add(1)
		for j, target := range targets {
			rec := reload()
			wg.Add(1)
			go func() {
				defer wg.Done()
				start.Wait()
				results[j], errs[j] = tracker.Transition(context.Background(), rec, rec.Status, target, allPass())
			}()
		}
		start.Done()
		wg.Wait()

		successes, conflicts := 0, 0
		for j := range targets {
			if results[j].Success {
				successes++
				require.NoError(t, errs[j])
				assert.Equal(t, targets[j], reload().Status)
			} else {
				assert.ErrorIs(t, errs[j], domain.ErrConflict)
				conflicts++
			}
		}
		assert.Equal(t, 1, successes)
		assert.Equal(t, 1, conflicts)
	}
}

func TestTransition_RunnerSeesContext(t *testing.T) {
	tracker, rec, _ := setup(t, domain.StateUploaded)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := lifecycle.RunnerFunc(func(ctx context.Context, name string, _ *domain.DocumentRecord) (domain.CheckOutcome, error) {
		if err := ctx.Err(); err != nil {
			return domain.CheckOutcome{}, err
		}
		return domain.CheckOutcome{Name: name, Passed: true}, nil
	})

	res, err := tracker.Transition(ctx, rec, rec.Status, domain.StateProcessing, runner)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, domain.StateUploaded, rec.Status)
}

func TestChecklist(t *testing.T) {
	rec := &domain.DocumentRecord{
		ID:     uuid.New(),
		Status: domain.StateValidated,
		CheckHistory: map[string]domain.CheckEntry{
			"completeness": {Passed: true, Timestamp: fixedNow},
			"virus_scan":   {Passed: true, Timestamp: fixedNow},
		},
	}

	cl := lifecycle.Checklist(rec)
	assert.Equal(t, rec.ID, cl.DocumentID)
	assert.Equal(t, domain.StateValidated, cl.CurrentState)
	assert.Equal(t, []domain.LifecycleState{domain.StateVerified, domain.StateRejected}, cl.NextStates)
	assert.Equal(t, []string{"completeness"}, cl.Completed)
	assert.Empty(t, cl.Failed)
	assert.Equal(t, []string{"compliance"}, cl.Pending)

	rec.CheckHistory["compliance"] = domain.CheckEntry{Passed: false, Detail: "rule failed"}
	cl = lifecycle.Checklist(rec)
	assert.Equal(t, []string{"compliance"}, cl.Failed)
	assert.Empty(t, cl.Pending)

	cl = lifecycle.Checklist(&domain.DocumentRecord{Status: domain.StateUploaded})
	assert.Empty(t, cl.Completed)
	assert.Empty(t, cl.Pending)
	assert.Equal(t, []domain.LifecycleState{domain.StateProcessing, domain.StateFailed}, cl.NextStates)
}
