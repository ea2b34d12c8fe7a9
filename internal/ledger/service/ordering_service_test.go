package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/kosu/internal/ledger/testutil"
	"go.uber.org/zap"
)

func orderOf(t *testing.T, env *testEnv, label string) []string {
	t.Helper()
	list, err := env.repos.Project.ListVisibleByPeriod(context.Background(), label)
	if err != nil {
		t.Fatalf("list visible: %v", err)
	}
	ids := make([]string, len(list))
	for i, p := range list {
		ids[i] = p.ID
	}
	return ids
}

func TestOrderingSwapAndBoundaries(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	periods := env.periodService()
	svc := NewOrderingService(env.repos.Project, env.repos.Period, zap.NewNop())

	testutil.SeedProject(t, env.db, "p1", "PRJ-001", "门禁系统", 1, testutil.Float64(2000), nil, nil)
	testutil.SeedProject(t, env.db, "p2", "PRJ-002", "监控平台", 2, testutil.Float64(2500), nil, nil)
	testutil.SeedProject(t, env.db, "p3", "PRJ-003", "报表引擎", 3, testutil.Float64(1500), nil, nil)

	if _, err := periods.Create(ctx, 2025, "H1", []string{"p1", "p2", "p3"}); err != nil {
		t.Fatalf("create period: %v", err)
	}

	// boundary no-ops
	if err := svc.MoveUp(ctx, "p1", "2025-H1"); err != nil {
		t.Fatalf("move up at top: %v", err)
	}
	if err := svc.MoveDown(ctx, "p3", "2025-H1"); err != nil {
		t.Fatalf("move down at bottom: %v", err)
	}
	got := orderOf(t, env, "2025-H1")
	if got[0] != "p1" || got[1] != "p2" || got[2] != "p3" {
		t.Fatalf("order after boundary moves = %v, want unchanged", got)
	}

	if err := svc.MoveUp(ctx, "p2", "2025-H1"); err != nil {
		t.Fatalf("move up: %v", err)
	}
	got = orderOf(t, env, "2025-H1")
	if got[0] != "p2" || got[1] != "p1" || got[2] != "p3" {
		t.Errorf("order after swap = %v, want [p2 p1 p3]", got)
	}
}

func TestOrderingRequiresLink(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	periods := env.periodService()
	svc := NewOrderingService(env.repos.Project, env.repos.Period, zap.NewNop())

	testutil.SeedProject(t, env.db, "p1", "PRJ-001", "门禁系统", 1, testutil.Float64(2000), nil, nil)
	testutil.SeedProject(t, env.db, "p2", "PRJ-002", "监控平台", 2, testutil.Float64(2500), nil, nil)

	if _, err := periods.Create(ctx, 2025, "H1", []string{"p1"}); err != nil {
		t.Fatalf("create period: %v", err)
	}

	err := svc.MoveUp(ctx, "p2", "2025-H1")
	var notLinked *NotLinkedError
	if !errors.As(err, &notLinked) {
		t.Fatalf("err = %v, want NotLinkedError", err)
	}
}

// TestOrderingIsGlobal pins that display_order lives on the project row:
// a swap made inside one period reorders the same projects in every
// other period they appear in.
func TestOrderingIsGlobal(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	periods := env.periodService()
	svc := NewOrderingService(env.repos.Project, env.repos.Period, zap.NewNop())

	testutil.SeedProject(t, env.db, "p1", "PRJ-001", "门禁系统", 1, testutil.Float64(2000), nil, nil)
	testutil.SeedProject(t, env.db, "p2", "PRJ-002", "监控平台", 2, testutil.Float64(2500), nil, nil)

	if _, err := periods.Create(ctx, 2025, "H1", []string{"p1", "p2"}); err != nil {
		t.Fatalf("create H1: %v", err)
	}
	if _, err := periods.Create(ctx, 2025, "H2", []string{"p1", "p2"}); err != nil {
		t.Fatalf("create H2: %v", err)
	}

	if err := svc.MoveUp(ctx, "p2", "2025-H1"); err != nil {
		t.Fatalf("move up: %v", err)
	}

	got := orderOf(t, env, "2025-H2")
	if got[0] != "p2" || got[1] != "p1" {
		t.Errorf("H2 order = %v, want [p2 p1] (swap in H1 is visible)", got)
	}
}
