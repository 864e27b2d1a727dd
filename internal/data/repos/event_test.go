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

func seedEvent(t *testing.T, repo EventRepo, name, city string, date time.Time, source, sourceID string) *types.Event {
	t.Helper()
	event := &types.Event{
		ID:        uuid.New(),
		Name:      name,
		Date:      date,
		City:      city,
		Type:      "trade_show",
		Source:    source,
		SourceID:  sourceID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := repo.Create(dbctx.Context{Ctx: context.Background()}, event); err != nil {
		t.Fatalf("create event: %v", err)
	}
	return event
}

func TestEventRepoGetBySource(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewEventRepo(db, testutil.NewLogger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	seeded := seedEvent(t, repo, "Fancy Food Show", "NYC", time.Now().Add(24*time.Hour), "ics", "ffs-2026")

	found, err := repo.GetBySource(dbc, "ics", "ffs-2026")
	if err != nil {
		t.Fatalf("GetBySource: %v", err)
	}
	if found == nil || found.ID != seeded.ID {
		t.Fatalf("found = %+v", found)
	}

	missing, err := repo.GetBySource(dbc, "ics", "nope")
	if err != nil || missing != nil {
		t.Fatalf("missing = %v (%v)", missing, err)
	}

	blank, err := repo.GetBySource(dbc, "", "")
	if err != nil || blank != nil {
		t.Fatalf("blank source must be nil, got %v (%v)", blank, err)
	}
}

func TestEventRepoListUpcoming(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewEventRepo(db, testutil.NewLogger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	now := time.Now().UTC()
	seedEvent(t, repo, "Past Expo", "LA", now.Add(-48*time.Hour), "manual", "")
	seedEvent(t, repo, "Next Expo", "LA", now.Add(48*time.Hour), "manual", "")
	seedEvent(t, repo, "NYC Popup", "NYC", now.Add(72*time.Hour), "manual", "")

	upcoming, err := repo.List(dbc, EventFilter{UpcomingFrom: &now})
	if err != nil {
		t.Fatalf("list upcoming: %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("upcoming = %d, want 2", len(upcoming))
	}
	// ordered by date ascending
	if upcoming[0].Name != "Next Expo" {
		t.Errorf("first upcoming = %q", upcoming[0].Name)
	}

	la, err := repo.List(dbc, EventFilter{City: "LA", UpcomingFrom: &now})
	if err != nil {
		t.Fatalf("list LA: %v", err)
	}
	if len(la) != 1 {
		t.Errorf("LA upcoming = %d, want 1", len(la))
	}
}
