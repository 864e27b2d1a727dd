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

func seedCompany(t *testing.T, repo CompanyRepo, name string) *types.Company {
	t.Helper()
	now := time.Now().UTC()
	company := &types.Company{
		ID:        uuid.New(),
		Name:      name,
		Category:  "beverage",
		UserID:    uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := repo.Create(dbctx.Context{Ctx: context.Background()}, company); err != nil {
		t.Fatalf("create company: %v", err)
	}
	return company
}

func TestCompanyRepoGetByIDs(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewCompanyRepo(db, testutil.NewLogger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	a := seedCompany(t, repo, "A")
	b := seedCompany(t, repo, "B")
	seedCompany(t, repo, "C")

	got, err := repo.GetByIDs(dbc, []uuid.UUID{a.ID, b.ID, uuid.New()})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d companies, want 2", len(got))
	}

	empty, err := repo.GetByIDs(dbc, nil)
	if err != nil {
		t.Fatalf("GetByIDs empty: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("empty ids returned %d rows", len(empty))
	}
}

func TestCompanyRepoUpdate(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewCompanyRepo(db, testutil.NewLogger(t))
	dbc := dbctx.Context{Ctx: context.Background()}
	company := seedCompany(t, repo, "Brand")

	if err := repo.Update(dbc, company.ID, map[string]any{
		"stripe_connect_id": "acct_123",
		"stripe_onboarded":  true,
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, err := repo.GetByID(dbc, company.ID)
	if err != nil || stored == nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.StripeConnectID != "acct_123" || !stored.StripeOnboarded {
		t.Fatalf("stored = %+v", stored)
	}

	// nil updates and nil id are no-ops
	if err := repo.Update(dbc, company.ID, nil); err != nil {
		t.Errorf("nil updates: %v", err)
	}
	if err := repo.Update(dbc, uuid.Nil, map[string]any{"name": "x"}); err != nil {
		t.Errorf("nil id: %v", err)
	}
}
