package aggregates

import (
	"context"
	"strings"
	"time"

	domainagg "github.com/splitcpg/splitcpg-backend/internal/domain/aggregates"
	"github.com/splitcpg/splitcpg-backend/internal/pkg/dbctx"
	"github.com/splitcpg/splitcpg-backend/internal/platform/logger"
	"gorm.io/gorm"
)

// casMaxAttempts bounds how often a write is re-validated against fresh state
// after losing a version race before the conflict surfaces to the caller.
const casMaxAttempts = 3

type BaseDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Runner   TxRunner
	Hooks    Hooks
	CASGuard CASGuard
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	return d
}

func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}
	err := deps.Runner.InTx(ctx, fn)
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

// executeWriteRetry re-runs a write that lost a version race. Only bare CAS
// conflicts retry; conflicts that carry a rejection reason are real
// precondition failures and surface immediately.
func executeWriteRetry(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	deps = deps.withDefaults()
	var err error
	for attempt := 0; attempt < casMaxAttempts; attempt++ {
		if attempt > 0 {
			deps.Hooks.IncRetry(op)
		}
		err = executeWrite(ctx, deps, op, fn)
		if err == nil {
			return nil
		}
		retryable := domainagg.IsCode(err, domainagg.CodeRetryable) ||
			(domainagg.IsCode(err, domainagg.CodeConflict) && domainagg.ReasonOf(err) == "")
		if !retryable {
			return err
		}
	}
	return domainagg.NewReason(domainagg.CodeConflict, op, domainagg.ReasonConcurrentModification,
		"write conflicted with concurrent updates after retries")
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		return "failure"
	}
	return code
}
