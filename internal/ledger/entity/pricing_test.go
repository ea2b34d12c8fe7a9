package entity

import "testing"

func f(v float64) *float64 { return &v }

// TestResolveEffectivePrice covers every presence combination of the
// override → default → legacy fallback chain.
func TestResolveEffectivePrice(t *testing.T) {
	tests := []struct {
		name       string
		link       *PeriodProjectLink
		planPrice  *float64
		unitPrice  *float64
		wantPlan   float64
		wantActual float64
	}{
		{
			name:       "link override wins over everything",
			link:       &PeriodProjectLink{PlanPrice: f(3000), ActualPrice: f(3100)},
			planPrice:  f(2500),
			unitPrice:  f(2000),
			wantPlan:   3000,
			wantActual: 3100,
		},
		{
			name:       "link override wins without legacy price",
			link:       &PeriodProjectLink{PlanPrice: f(3000), ActualPrice: f(3100)},
			planPrice:  f(2500),
			wantPlan:   3000,
			wantActual: 3100,
		},
		{
			name:       "link override wins when project has only legacy",
			link:       &PeriodProjectLink{PlanPrice: f(3000), ActualPrice: f(3100)},
			unitPrice:  f(2000),
			wantPlan:   3000,
			wantActual: 3100,
		},
		{
			name:       "link override is the only source",
			link:       &PeriodProjectLink{PlanPrice: f(3000), ActualPrice: f(3100)},
			wantPlan:   3000,
			wantActual: 3100,
		},
		{
			name:       "project default beats legacy",
			planPrice:  f(2500),
			unitPrice:  f(2000),
			wantPlan:   2500,
			wantActual: 2600,
		},
		{
			name:       "project default alone",
			planPrice:  f(2500),
			wantPlan:   2500,
			wantActual: 2600,
		},
		{
			name:       "legacy unit price backs both rates",
			unitPrice:  f(2000),
			wantPlan:   2000,
			wantActual: 2000,
		},
		{
			name:       "all sources absent resolves to zero",
			wantPlan:   0,
			wantActual: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project := &Project{
				PlanPrice: tt.planPrice,
				UnitPrice: tt.unitPrice,
			}
			// actual default tracks plan default in these fixtures
			if tt.planPrice != nil {
				project.ActualPrice = f(*tt.planPrice + 100)
			}

			got := ResolveEffectivePrice(project, tt.link)
			if got.PlanPrice != tt.wantPlan {
				t.Errorf("PlanPrice = %v, want %v", got.PlanPrice, tt.wantPlan)
			}
			if got.ActualPrice != tt.wantActual {
				t.Errorf("ActualPrice = %v, want %v", got.ActualPrice, tt.wantActual)
			}
		})
	}
}

// TestResolveEffectivePricePartialOverride pins that plan and actual
// fall back independently.
func TestResolveEffectivePricePartialOverride(t *testing.T) {
	project := &Project{PlanPrice: f(2500), ActualPrice: f(2600), UnitPrice: f(2000)}
	link := &PeriodProjectLink{PlanPrice: f(3000)} // actual override absent

	got := ResolveEffectivePrice(project, link)
	if got.PlanPrice != 3000 {
		t.Errorf("PlanPrice = %v, want 3000", got.PlanPrice)
	}
	if got.ActualPrice != 2600 {
		t.Errorf("ActualPrice = %v, want 2600 (project default)", got.ActualPrice)
	}
}

func TestResolveEffectivePriceNilInputs(t *testing.T) {
	got := ResolveEffectivePrice(nil, nil)
	if got.PlanPrice != 0 || got.ActualPrice != 0 {
		t.Errorf("nil inputs should resolve to zero, got %+v", got)
	}
}
