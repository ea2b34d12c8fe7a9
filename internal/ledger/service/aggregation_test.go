package service

import (
	"testing"

	"github.com/bitfantasy/kosu/internal/ledger/entity"
)

func fixedRate(plan, actual float64) PriceResolver {
	return func(projectID, periodLabel string) entity.PriceQuote {
		return entity.PriceQuote{PlanPrice: plan, ActualPrice: actual}
	}
}

func TestAggregateMonthlyEmptyInput(t *testing.T) {
	months := AggregateMonthly(nil, fixedRate(1000, 1000))

	if len(months) != 12 {
		t.Fatalf("expected 12 months, got %d", len(months))
	}
	for i, m := range months {
		if m.Month != i+1 {
			t.Errorf("month index %d has Month=%d", i, m.Month)
		}
		if m.PlannedHours != 0 || m.ActualHours != 0 ||
			m.PlannedRevenue != 0 || m.ActualRevenue != 0 ||
			m.AccPlannedRevenue != 0 || m.AccActualRevenue != 0 {
			t.Errorf("month %d not zero-valued: %+v", m.Month, m)
		}
	}
}

func TestAggregateMonthlyCumulativeSums(t *testing.T) {
	// actual revenue series [10, 20, 0, 5] at rate 1
	records := []entity.MonthlyRecord{
		{ProjectID: "p1", PeriodLabel: "2025-H1", Year: 2025, Month: 1, ActualHours: 10},
		{ProjectID: "p1", PeriodLabel: "2025-H1", Year: 2025, Month: 2, ActualHours: 20},
		{ProjectID: "p1", PeriodLabel: "2025-H1", Year: 2025, Month: 4, ActualHours: 5},
	}
	months := AggregateMonthly(records, fixedRate(1, 1))

	wantAcc := []float64{10, 30, 30, 35}
	for i, want := range wantAcc {
		if got := months[i].AccActualRevenue; got != want {
			t.Errorf("AccActualRevenue[%d] = %v, want %v", i, got, want)
		}
	}
	// tail carries the final sum through December
	if months[11].AccActualRevenue != 35 {
		t.Errorf("December accumulated = %v, want 35", months[11].AccActualRevenue)
	}
}

// TestAggregateMonthlyPerProjectRates pins that a month's revenue is the
// sum of each contributing record at its own resolved rate, not one
// global rate.
func TestAggregateMonthlyPerProjectRates(t *testing.T) {
	records := []entity.MonthlyRecord{
		{ProjectID: "p1", PeriodLabel: "2025-H1", Month: 1, PlannedHours: 10, ActualHours: 10},
		{ProjectID: "p2", PeriodLabel: "2025-H1", Month: 1, PlannedHours: 10, ActualHours: 10},
	}
	resolve := func(projectID, periodLabel string) entity.PriceQuote {
		if projectID == "p1" {
			return entity.PriceQuote{PlanPrice: 1000, ActualPrice: 1000}
		}
		return entity.PriceQuote{PlanPrice: 3000, ActualPrice: 3000}
	}

	months := AggregateMonthly(records, resolve)
	if months[0].PlannedRevenue != 40000 {
		t.Errorf("PlannedRevenue = %v, want 40000", months[0].PlannedRevenue)
	}
	if months[0].ActualRevenue != 40000 {
		t.Errorf("ActualRevenue = %v, want 40000", months[0].ActualRevenue)
	}
}

// TestAggregateMonthlyMidYearOverride: the same project billed under two
// periods of one year with different link overrides contributes at each
// period's own resolved rate.
func TestAggregateMonthlyMidYearOverride(t *testing.T) {
	records := []entity.MonthlyRecord{
		{ProjectID: "p1", PeriodLabel: "2025-H1", Month: 3, ActualHours: 10},
		{ProjectID: "p1", PeriodLabel: "2025-H2", Month: 9, ActualHours: 10},
	}
	resolve := func(projectID, periodLabel string) entity.PriceQuote {
		if periodLabel == "2025-H1" {
			return entity.PriceQuote{PlanPrice: 2000, ActualPrice: 2000}
		}
		return entity.PriceQuote{PlanPrice: 3000, ActualPrice: 3000}
	}

	months := AggregateMonthly(records, resolve)
	if months[2].ActualRevenue != 20000 {
		t.Errorf("March revenue = %v, want 20000 (H1 rate)", months[2].ActualRevenue)
	}
	if months[8].ActualRevenue != 30000 {
		t.Errorf("September revenue = %v, want 30000 (H2 rate)", months[8].ActualRevenue)
	}
	if months[11].AccActualRevenue != 50000 {
		t.Errorf("year total = %v, want 50000", months[11].AccActualRevenue)
	}
}

func TestSummarizeYearAchievementRate(t *testing.T) {
	var months [12]MonthlyTotal

	// planned 0 with actual hours recorded: rate is 0, not Inf
	months[0] = MonthlyTotal{Month: 1, PlannedHours: 0, ActualHours: 50}
	summary := SummarizeYear(2025, months, &entity.Settings{}, 0)
	if summary.AchievementRate != 0 {
		t.Errorf("AchievementRate = %v, want 0 for zero planned hours", summary.AchievementRate)
	}

	months[0] = MonthlyTotal{Month: 1, PlannedHours: 100, ActualHours: 150}
	summary = SummarizeYear(2025, months, &entity.Settings{}, 0)
	if summary.AchievementRate != 150 {
		t.Errorf("AchievementRate = %v, want 150", summary.AchievementRate)
	}
}

func TestSummarizeYearLicenseMath(t *testing.T) {
	var months [12]MonthlyTotal
	months[0] = MonthlyTotal{Month: 1, PlannedHours: 100, ActualHours: 100, PlannedRevenue: 200000, ActualRevenue: 200000}

	settings := &entity.Settings{LicenseComputers: 4, LicensePerComputer: 10000}
	summary := SummarizeYear(2025, months, settings, 2000)

	if summary.LicenseTotal != 40000 {
		t.Errorf("LicenseTotal = %v, want 40000", summary.LicenseTotal)
	}
	if summary.NetRevenue != 160000 {
		t.Errorf("NetRevenue = %v, want 160000", summary.NetRevenue)
	}
	if summary.ProfitMargin != 80 {
		t.Errorf("ProfitMargin = %v, want 80", summary.ProfitMargin)
	}
	if summary.LicenseCostPerHour != 400 {
		t.Errorf("LicenseCostPerHour = %v, want 400", summary.LicenseCostPerHour)
	}
	if summary.BreakEvenHours != 20 {
		t.Errorf("BreakEvenHours = %v, want 20", summary.BreakEvenHours)
	}
}

// TestSummarizeYearZeroSafety: every ratio collapses to 0 with no data,
// never NaN or Inf.
func TestSummarizeYearZeroSafety(t *testing.T) {
	var months [12]MonthlyTotal
	settings := &entity.Settings{LicenseComputers: 4, LicensePerComputer: 10000}

	summary := SummarizeYear(2025, months, settings, 0)

	if summary.AchievementRate != 0 {
		t.Errorf("AchievementRate = %v, want 0", summary.AchievementRate)
	}
	if summary.ProfitMargin != 0 {
		t.Errorf("ProfitMargin = %v, want 0", summary.ProfitMargin)
	}
	if summary.LicenseCostPerHour != 0 {
		t.Errorf("LicenseCostPerHour = %v, want 0", summary.LicenseCostPerHour)
	}
	if summary.BreakEvenHours != 0 {
		t.Errorf("BreakEvenHours = %v, want 0", summary.BreakEvenHours)
	}
	// license cost still reported, net goes negative
	if summary.NetRevenue != -40000 {
		t.Errorf("NetRevenue = %v, want -40000", summary.NetRevenue)
	}
}

// TestCarryOverScenario walks the documented end-to-end case: a legacy
// project carried into 2025-H1 at a 2300 snapshot, 100 planned / 80
// actual hours in January.
func TestCarryOverScenario(t *testing.T) {
	project := &entity.Project{ID: "pA", UnitPrice: testFloat(2300)}
	// carry-over snapshots current defaults (legacy fallback) into the link
	quote := entity.ResolveEffectivePrice(project, nil)
	link := &entity.PeriodProjectLink{
		PeriodLabel: "2025-H1",
		ProjectID:   "pA",
		PlanPrice:   &quote.PlanPrice,
		ActualPrice: &quote.ActualPrice,
	}

	records := []entity.MonthlyRecord{
		{ProjectID: "pA", PeriodLabel: "2025-H1", Year: 2025, Month: 1, PlannedHours: 100, ActualHours: 80},
	}
	resolve := func(projectID, periodLabel string) entity.PriceQuote {
		return entity.ResolveEffectivePrice(project, link)
	}

	months := AggregateMonthly(records, resolve)
	if months[0].PlannedRevenue != 230000 {
		t.Errorf("January planned revenue = %v, want 230000", months[0].PlannedRevenue)
	}
	if months[0].ActualRevenue != 184000 {
		t.Errorf("January actual revenue = %v, want 184000", months[0].ActualRevenue)
	}

	summary := SummarizeYear(2025, months, &entity.Settings{}, 2300)
	if summary.AchievementRate != 80 {
		t.Errorf("AchievementRate = %v, want 80", summary.AchievementRate)
	}
}

func testFloat(v float64) *float64 { return &v }
