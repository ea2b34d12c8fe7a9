package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/kosu/internal/ledger/entity"
	"github.com/bitfantasy/kosu/internal/ledger/repository"
	"github.com/bitfantasy/kosu/internal/ledger/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db    *gorm.DB
	repos *repository.Repositories
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return &testEnv{db: db, repos: repository.NewRepositories(db)}
}

func (e *testEnv) periodService() *PeriodService {
	return NewPeriodService(e.repos.Period, e.repos.Project, e.repos.Record, zap.NewNop())
}

func TestPeriodCreateDuplicate(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	svc := env.periodService()

	testutil.SeedProject(t, env.db, "p1", "PRJ-001", "门禁系统", 1, testutil.Float64(2000), nil, nil)

	result, err := svc.Create(ctx, 2025, "H1", []string{"p1"})
	if err != nil {
		t.Fatalf("create period: %v", err)
	}
	if result.Period.Label != "2025-H1" {
		t.Errorf("label = %q, want 2025-H1", result.Period.Label)
	}
	if result.Linked != 1 {
		t.Errorf("linked = %d, want 1", result.Linked)
	}

	_, err = svc.Create(ctx, 2025, "H1", []string{"p1"})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("duplicate create err = %v, want ConflictError", err)
	}

	// existing links untouched by the failed re-create
	count, err := env.repos.Period.CountLinks(ctx, "2025-H1")
	if err != nil {
		t.Fatalf("count links: %v", err)
	}
	if count != 1 {
		t.Errorf("link count after duplicate create = %d, want 1", count)
	}
}

func TestPeriodCreateSnapshotsDefaults(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	svc := env.periodService()

	// planPrice set, actual falls back to legacy unit_price
	testutil.SeedProject(t, env.db, "p1", "PRJ-001", "门禁系统", 1,
		testutil.Float64(1800), testutil.Float64(2300), nil)

	if _, err := svc.Create(ctx, 2025, "H1", []string{"p1"}); err != nil {
		t.Fatalf("create period: %v", err)
	}

	link, err := env.repos.Period.FindLink(ctx, "2025-H1", "p1")
	if err != nil {
		t.Fatalf("find link: %v", err)
	}
	if link.PlanPrice == nil || *link.PlanPrice != 2300 {
		t.Errorf("snapshot plan price = %v, want 2300", testutil.Deref(link.PlanPrice))
	}
	if link.ActualPrice == nil || *link.ActualPrice != 1800 {
		t.Errorf("snapshot actual price = %v, want 1800 (legacy fallback)", testutil.Deref(link.ActualPrice))
	}
}

func TestCarryOverSkipsLinked(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	svc := env.periodService()

	testutil.SeedProject(t, env.db, "p1", "PRJ-001", "门禁系统", 1, testutil.Float64(2000), nil, nil)
	testutil.SeedProject(t, env.db, "p2", "PRJ-002", "监控平台", 2, testutil.Float64(2500), nil, nil)
	testutil.SeedProject(t, env.db, "p3", "PRJ-003", "报表引擎", 3, testutil.Float64(1500), nil, nil)

	if _, err := svc.Create(ctx, 2025, "H2", []string{"p1"}); err != nil {
		t.Fatalf("create period: %v", err)
	}

	linked, err := svc.CarryOver(ctx, "2025-H2", []string{"p1", "p2", "p3"})
	if err != nil {
		t.Fatalf("carry over: %v", err)
	}
	if linked != 2 {
		t.Errorf("linked = %d, want 2 (p1 already present)", linked)
	}

	// carrying over only creates links, never new project rows
	var projectCount int64
	env.db.Model(&entity.Project{}).Count(&projectCount)
	if projectCount != 3 {
		t.Errorf("project count = %d, want 3", projectCount)
	}

	// idempotent on repeat
	linked, err = svc.CarryOver(ctx, "2025-H2", []string{"p1", "p2", "p3"})
	if err != nil {
		t.Fatalf("repeat carry over: %v", err)
	}
	if linked != 0 {
		t.Errorf("repeat linked = %d, want 0", linked)
	}
}

func TestReplaceProjectsDropsOverrides(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	svc := env.periodService()

	testutil.SeedProject(t, env.db, "p1", "PRJ-001", "门禁系统", 1, testutil.Float64(2000), nil, nil)
	testutil.SeedProject(t, env.db, "p2", "PRJ-002", "监控平台", 2, testutil.Float64(2500), nil, nil)

	if _, err := svc.Create(ctx, 2025, "H1", []string{"p1"}); err != nil {
		t.Fatalf("create period: %v", err)
	}
	if err := svc.UpdateLinkPrices(ctx, "2025-H1", "p1", testutil.Float64(9999), nil); err != nil {
		t.Fatalf("update link prices: %v", err)
	}

	// wholesale replace: p1 leaves and rejoins, its override does not survive
	if err := svc.ReplaceProjects(ctx, "2025-H1", []string{"p1", "p2"}); err != nil {
		t.Fatalf("replace projects: %v", err)
	}

	link, err := env.repos.Period.FindLink(ctx, "2025-H1", "p1")
	if err != nil {
		t.Fatalf("find link: %v", err)
	}
	if link.PlanPrice == nil || *link.PlanPrice != 2000 {
		t.Errorf("plan price after replace = %v, want 2000 (fresh snapshot)", testutil.Deref(link.PlanPrice))
	}

	count, _ := env.repos.Period.CountLinks(ctx, "2025-H1")
	if count != 2 {
		t.Errorf("link count = %d, want 2", count)
	}
}

func TestUpdateLinkPricesNotLinked(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	svc := env.periodService()

	testutil.SeedProject(t, env.db, "p1", "PRJ-001", "门禁系统", 1, testutil.Float64(2000), nil, nil)
	if _, err := svc.Create(ctx, 2025, "H1", nil); err != nil {
		t.Fatalf("create period: %v", err)
	}

	err := svc.UpdateLinkPrices(ctx, "2025-H1", "p1", testutil.Float64(3000), nil)
	var notLinked *NotLinkedError
	if !errors.As(err, &notLinked) {
		t.Fatalf("err = %v, want NotLinkedError", err)
	}

	// the failed update must not have created a link implicitly
	count, _ := env.repos.Period.CountLinks(ctx, "2025-H1")
	if count != 0 {
		t.Errorf("link count = %d, want 0", count)
	}
}

// TestUpdateLinkPricesClearsOmittedSide pins the whole-pair write: a nil
// price clears that side's override, which then falls back to the
// project default instead of keeping the old override.
func TestUpdateLinkPricesClearsOmittedSide(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	svc := env.periodService()

	project := testutil.SeedProject(t, env.db, "p1", "PRJ-001", "门禁系统", 1,
		testutil.Float64(1800), testutil.Float64(2300), nil)
	if _, err := svc.Create(ctx, 2025, "H1", []string{"p1"}); err != nil {
		t.Fatalf("create period: %v", err)
	}

	if err := svc.UpdateLinkPrices(ctx, "2025-H1", "p1", testutil.Float64(3000), nil); err != nil {
		t.Fatalf("update link prices: %v", err)
	}

	link, err := env.repos.Period.FindLink(ctx, "2025-H1", "p1")
	if err != nil {
		t.Fatalf("find link: %v", err)
	}
	if testutil.Deref(link.PlanPrice) != 3000 {
		t.Errorf("plan override = %v, want 3000", testutil.Deref(link.PlanPrice))
	}
	if link.ActualPrice != nil {
		t.Errorf("actual override = %v, want cleared", *link.ActualPrice)
	}

	quote := entity.ResolveEffectivePrice(project, link)
	if quote.ActualPrice != 1800 {
		t.Errorf("resolved actual = %v, want 1800 (project fallback)", quote.ActualPrice)
	}
}

func TestDeletePeriodOrphansRecords(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	svc := env.periodService()
	records := NewRecordService(env.repos.Record, env.repos.Period)

	testutil.SeedProject(t, env.db, "p1", "PRJ-001", "门禁系统", 1, testutil.Float64(2000), nil, nil)
	if _, err := svc.Create(ctx, 2025, "H1", []string{"p1"}); err != nil {
		t.Fatalf("create period: %v", err)
	}
	if _, err := records.Upsert(ctx, &UpsertRecordInput{
		ProjectID: "p1", PeriodLabel: "2025-H1", Year: 2025, Month: 3,
		PlannedHours: 40, ActualHours: 35,
	}); err != nil {
		t.Fatalf("upsert record: %v", err)
	}

	if err := svc.Delete(ctx, "2025-H1"); err != nil {
		t.Fatalf("delete period: %v", err)
	}

	// records survive the period, links do not
	orphans, err := svc.DiagnoseOrphans(ctx)
	if err != nil {
		t.Fatalf("diagnose orphans: %v", err)
	}
	if len(orphans) != 1 || orphans[0].PeriodLabel != "2025-H1" {
		t.Errorf("orphans = %+v, want the one 2025-H1 record", orphans)
	}

	var linkCount int64
	env.db.Model(&entity.PeriodProjectLink{}).Count(&linkCount)
	if linkCount != 0 {
		t.Errorf("link count after delete = %d, want 0", linkCount)
	}
}
