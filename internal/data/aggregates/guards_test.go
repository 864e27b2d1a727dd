package aggregates

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/splitcpg/splitcpg-backend/internal/data/repos"
	"github.com/splitcpg/splitcpg-backend/internal/data/testutil"
	domainagg "github.com/splitcpg/splitcpg-backend/internal/domain/aggregates"
	"github.com/splitcpg/splitcpg-backend/internal/pkg/dbctx"
	"github.com/splitcpg/splitcpg-backend/internal/types"
)

func seedSplit(t *testing.T, repo repos.SplitRepo, version int) *types.Split {
	t.Helper()
	now := time.Now().UTC()
	split := &types.Split{
		ID:          uuid.New(),
		Title:       "Guard fixture",
		Type:        types.SplitTypeOther,
		TotalCost:   100,
		CostPerSlot: 50,
		Slots:       2,
		FilledSlots: 1,
		OrganizerID: uuid.New(),
		Status:      types.SplitStatusOpen,
		Version:     version,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := split.SetParticipants([]types.Participant{{CompanyID: split.OrganizerID, JoinedAt: now}}); err != nil {
		t.Fatalf("set participants: %v", err)
	}
	if _, err := repo.Create(dbctx.Context{Ctx: context.Background()}, split); err != nil {
		t.Fatalf("seed split: %v", err)
	}
	return split
}

func TestUpdateByVersionMatchesExpectedVersionOnly(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repos.NewSplitRepo(db, testutil.NewLogger(t))
	guard := NewCASGuard(db)
	dbc := dbctx.Context{Ctx: context.Background()}
	split := seedSplit(t, repo, 3)

	ok, err := guard.UpdateByVersion(dbc, splitTable, split.ID, 2, map[string]any{
		"status": types.SplitStatusCancelled, "version": 3,
	})
	if err != nil {
		t.Fatalf("stale update: %v", err)
	}
	if ok {
		t.Fatal("stale version must not match")
	}

	ok, err = guard.UpdateByVersion(dbc, splitTable, split.ID, 3, map[string]any{
		"status": types.SplitStatusCancelled, "version": 4,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !ok {
		t.Fatal("matching version must update")
	}

	stored, err := repo.GetByID(dbc, split.ID)
	if err != nil || stored == nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Version != 4 || stored.Status != types.SplitStatusCancelled {
		t.Fatalf("stored version=%d status=%q", stored.Version, stored.Status)
	}
}

func TestDeleteByVersion(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repos.NewSplitRepo(db, testutil.NewLogger(t))
	guard := NewCASGuard(db)
	dbc := dbctx.Context{Ctx: context.Background()}
	split := seedSplit(t, repo, 1)

	ok, err := guard.DeleteByVersion(dbc, splitTable, split.ID, 0)
	if err != nil {
		t.Fatalf("stale delete: %v", err)
	}
	if ok {
		t.Fatal("stale version must not delete")
	}

	ok, err = guard.DeleteByVersion(dbc, splitTable, split.ID, 1)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !ok {
		t.Fatal("matching version must delete")
	}

	stored, err := repo.GetByID(dbc, split.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored != nil {
		t.Fatal("row should be gone")
	}
}

func TestUpdateByVersionInputValidation(t *testing.T) {
	db := testutil.OpenDB(t)
	guard := NewCASGuard(db)
	dbc := dbctx.Context{Ctx: context.Background()}

	if _, err := guard.UpdateByVersion(dbc, "", uuid.New(), 0, map[string]any{"version": 1}); err == nil {
		t.Error("empty table must fail")
	}
	if _, err := guard.UpdateByVersion(dbc, splitTable, uuid.Nil, 0, map[string]any{"version": 1}); err == nil {
		t.Error("nil id must fail")
	}
	if _, err := guard.UpdateByVersion(dbc, splitTable, uuid.New(), -1, map[string]any{"version": 0}); err == nil {
		t.Error("negative version must fail")
	}
}

func TestRequireCASSuccess(t *testing.T) {
	if err := RequireCASSuccess(true, "x"); err != nil {
		t.Fatalf("success must not error: %v", err)
	}
	err := RequireCASSuccess(false, "split changed concurrently")
	if err == nil {
		t.Fatal("failed CAS must error")
	}
	if mapped := MapError("op", err); !domainagg.IsCode(mapped, domainagg.CodeConflict) {
		t.Errorf("mapped = %v", mapped)
	}
}

func TestRequireStatusAllowed(t *testing.T) {
	if err := RequireStatusAllowed(types.SplitStatusOpen, types.SplitStatusOpen, types.SplitStatusFull); err != nil {
		t.Fatalf("allowed status: %v", err)
	}
	if err := RequireStatusAllowed(types.SplitStatusCancelled, types.SplitStatusOpen); err == nil {
		t.Fatal("disallowed status must error")
	}
	if err := RequireStatusAllowed(types.SplitStatusOpen); err == nil {
		t.Fatal("empty allow list must error")
	}
}
