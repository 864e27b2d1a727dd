package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/splitcpg/splitcpg-backend/internal/data/testutil"
	"github.com/splitcpg/splitcpg-backend/internal/pkg/dbctx"
	"github.com/splitcpg/splitcpg-backend/internal/types"
)

func seedSplit(t *testing.T, repo SplitRepo, splitType, status string) *types.Split {
	t.Helper()
	now := time.Now().UTC()
	split := &types.Split{
		ID:          uuid.New(),
		Title:       "Fixture",
		Type:        splitType,
		TotalCost:   100,
		CostPerSlot: 50,
		Slots:       2,
		FilledSlots: 1,
		OrganizerID: uuid.New(),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := split.SetParticipants([]types.Participant{{CompanyID: split.OrganizerID, JoinedAt: now}}); err != nil {
		t.Fatalf("set participants: %v", err)
	}
	if _, err := repo.Create(dbctx.Context{Ctx: context.Background()}, split); err != nil {
		t.Fatalf("create split: %v", err)
	}
	return split
}

func TestSplitRepoListFilters(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewSplitRepo(db, testutil.NewLogger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	seedSplit(t, repo, types.SplitTypePopup, types.SplitStatusOpen)
	seedSplit(t, repo, types.SplitTypePopup, types.SplitStatusCancelled)
	seedSplit(t, repo, types.SplitTypeHousing, types.SplitStatusOpen)

	all, err := repo.List(dbc, SplitFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all = %d, want 3", len(all))
	}

	popups, err := repo.List(dbc, SplitFilter{Type: types.SplitTypePopup})
	if err != nil {
		t.Fatalf("list popups: %v", err)
	}
	if len(popups) != 2 {
		t.Errorf("popups = %d, want 2", len(popups))
	}

	open, err := repo.List(dbc, SplitFilter{Status: types.SplitStatusOpen})
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 2 {
		t.Errorf("open = %d, want 2", len(open))
	}

	openPopups, err := repo.List(dbc, SplitFilter{Type: types.SplitTypePopup, Status: types.SplitStatusOpen})
	if err != nil {
		t.Fatalf("list open popups: %v", err)
	}
	if len(openPopups) != 1 {
		t.Errorf("open popups = %d, want 1", len(openPopups))
	}

	// "all" behaves like no filter
	allFilter, err := repo.List(dbc, SplitFilter{Type: "all", Status: "all"})
	if err != nil {
		t.Fatalf("list all-filter: %v", err)
	}
	if len(allFilter) != 3 {
		t.Errorf("all-filter = %d, want 3", len(allFilter))
	}

	limited, err := repo.List(dbc, SplitFilter{Limit: 2})
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited = %d, want 2", len(limited))
	}
}

func TestSplitRepoGetAndDelete(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewSplitRepo(db, testutil.NewLogger(t))
	dbc := dbctx.Context{Ctx: context.Background()}
	split := seedSplit(t, repo, types.SplitTypeContent, types.SplitStatusOpen)

	stored, err := repo.GetByID(dbc, split.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored == nil || stored.ID != split.ID {
		t.Fatalf("stored = %+v", stored)
	}
	participants, err := stored.ParticipantList()
	if err != nil {
		t.Fatalf("participants round-trip: %v", err)
	}
	if len(participants) != 1 || participants[0].CompanyID != split.OrganizerID {
		t.Fatalf("participants = %+v", participants)
	}

	missing, err := repo.GetByID(dbc, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("missing lookup: %v (%v)", missing, err)
	}

	if err := repo.DeleteByID(dbc, split.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	gone, err := repo.GetByID(dbc, split.ID)
	if err != nil || gone != nil {
		t.Fatalf("row survived delete: %v (%v)", gone, err)
	}
}
