package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bitfantasy/kosu/internal/ledger/testutil"
)

func TestSettingsDefaults(t *testing.T) {
	env := setupEnv(t)
	svc := NewSettingsService(env.repos.Settings)

	settings, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if settings.ExchangeRate != 1 {
		t.Errorf("default exchange rate = %v, want 1", settings.ExchangeRate)
	}
	if settings.LicenseTotal() != 0 {
		t.Errorf("default license total = %v, want 0", settings.LicenseTotal())
	}
}

func TestSettingsMergeUpdate(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	svc := NewSettingsService(env.repos.Settings)

	if _, err := svc.Update(ctx, &UpdateSettingsInput{
		ExchangeRate:     testutil.Float64(7.2),
		LicenseComputers: testutil.Int(4),
	}); err != nil {
		t.Fatalf("first update: %v", err)
	}

	// nil fields leave prior values in place
	updated, err := svc.Update(ctx, &UpdateSettingsInput{
		LicensePerComputer: testutil.Float64(10000),
	})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if updated.ExchangeRate != 7.2 {
		t.Errorf("exchange rate = %v, want 7.2 preserved", updated.ExchangeRate)
	}
	if updated.LicenseComputers != 4 {
		t.Errorf("license computers = %d, want 4 preserved", updated.LicenseComputers)
	}
	if updated.LicenseTotal() != 40000 {
		t.Errorf("license total = %v, want 40000", updated.LicenseTotal())
	}
}

func TestSettingsUpdateValidation(t *testing.T) {
	env := setupEnv(t)
	svc := NewSettingsService(env.repos.Settings)

	_, err := svc.Update(context.Background(), &UpdateSettingsInput{
		ExchangeRate: testutil.Float64(0),
	})
	var invalid *ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

// TestSettingsLastWriterWins demonstrates the accepted read-merge-write
// race: two editors read the same snapshot, the second save clobbers the
// first editor's field. There is no version check by contract.
func TestSettingsLastWriterWins(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	first, err := env.repos.Settings.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	second, err := env.repos.Settings.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	first.ExchangeRate = 7.2
	if err := env.repos.Settings.Save(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}

	second.LicenseComputers = 4
	if err := env.repos.Settings.Save(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	final, err := env.repos.Settings.Get(ctx)
	if err != nil {
		t.Fatalf("get final: %v", err)
	}
	if final.LicenseComputers != 4 {
		t.Errorf("license computers = %d, want 4", final.LicenseComputers)
	}
	if final.ExchangeRate != 1 {
		t.Errorf("exchange rate = %v, want 1 (first write lost)", final.ExchangeRate)
	}
}
