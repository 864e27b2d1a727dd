package aggregates

import (
	"context"
	"sync"
	"testing"
	"time"

	domainagg "github.com/splitcpg/splitcpg-backend/internal/domain/aggregates"
	"github.com/splitcpg/splitcpg-backend/internal/pkg/dbctx"
)

// recorderHooks collects hook events for assertions.
type recorderHooks struct {
	mu         sync.Mutex
	operations []string
	statuses   []string
	conflicts  int
	retries    int
}

func (r *recorderHooks) ObserveOperation(name, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.operations = append(r.operations, name)
	r.statuses = append(r.statuses, status)
}

func (r *recorderHooks) IncConflict(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflicts++
}

func (r *recorderHooks) IncRetry(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retries++
}

// passthroughRunner runs the write body without a database.
type passthroughRunner struct{}

func (passthroughRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	return fn(dbctx.Context{Ctx: ctx})
}

func retryDeps(hooks Hooks) BaseDeps {
	return BaseDeps{Runner: passthroughRunner{}, Hooks: hooks}
}

func TestExecuteWriteRetryRetriesBareCASConflicts(t *testing.T) {
	hooks := &recorderHooks{}
	attempts := 0
	err := executeWriteRetry(context.Background(), retryDeps(hooks), "Split.Join", func(dbctx.Context) error {
		attempts++
		if attempts < 3 {
			return ConflictError("split changed concurrently")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success on third attempt: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if hooks.retries != 2 {
		t.Errorf("retries = %d, want 2", hooks.retries)
	}
	if hooks.conflicts != 2 {
		t.Errorf("conflicts = %d, want 2", hooks.conflicts)
	}
}

func TestExecuteWriteRetryExhaustionBecomesConcurrentModification(t *testing.T) {
	hooks := &recorderHooks{}
	attempts := 0
	err := executeWriteRetry(context.Background(), retryDeps(hooks), "Split.Join", func(dbctx.Context) error {
		attempts++
		return ConflictError("split changed concurrently")
	})
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if !domainagg.IsReason(err, domainagg.ReasonConcurrentModification) {
		t.Fatalf("got %v, want concurrent_modification", err)
	}
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Errorf("code = %q", domainagg.CodeOf(err))
	}
}

func TestExecuteWriteRetryDoesNotRetryReasonedConflicts(t *testing.T) {
	hooks := &recorderHooks{}
	attempts := 0
	reasoned := domainagg.NewReason(domainagg.CodeConflict, "Split.Join", domainagg.ReasonAlreadyJoined, "dup")
	err := executeWriteRetry(context.Background(), retryDeps(hooks), "Split.Join", func(dbctx.Context) error {
		attempts++
		return reasoned
	})
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if !domainagg.IsReason(err, domainagg.ReasonAlreadyJoined) {
		t.Fatalf("got %v", err)
	}
	if hooks.retries != 0 {
		t.Errorf("retries = %d, want 0", hooks.retries)
	}
}

func TestExecuteWriteRetryDoesNotRetryPreconditionFailures(t *testing.T) {
	attempts := 0
	rejected := domainagg.NewReason(domainagg.CodePreconditionFailed, "Split.Leave",
		domainagg.ReasonOrganizerCannotLeave, "organizer cannot leave")
	err := executeWriteRetry(context.Background(), retryDeps(&recorderHooks{}), "Split.Leave", func(dbctx.Context) error {
		attempts++
		return rejected
	})
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if !domainagg.IsReason(err, domainagg.ReasonOrganizerCannotLeave) {
		t.Fatalf("got %v", err)
	}
}

func TestExecuteWriteRetryRetriesTransientFailures(t *testing.T) {
	hooks := &recorderHooks{}
	attempts := 0
	err := executeWriteRetry(context.Background(), retryDeps(hooks), "Split.ApplyPayment", func(dbctx.Context) error {
		attempts++
		if attempts == 1 {
			return RetryableError("database is locked")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected recovery: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestExecuteWriteRecordsStatusPerOutcome(t *testing.T) {
	hooks := &recorderHooks{}
	deps := retryDeps(hooks)

	if err := executeWrite(context.Background(), deps, "Split.Create", func(dbctx.Context) error {
		return nil
	}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = executeWrite(context.Background(), deps, "Split.Create", func(dbctx.Context) error {
		return ValidationError("bad")
	})

	if len(hooks.statuses) != 2 {
		t.Fatalf("statuses = %v", hooks.statuses)
	}
	if hooks.statuses[0] != "success" {
		t.Errorf("first status = %q", hooks.statuses[0])
	}
	if hooks.statuses[1] != string(domainagg.CodeValidation) {
		t.Errorf("second status = %q", hooks.statuses[1])
	}
}
