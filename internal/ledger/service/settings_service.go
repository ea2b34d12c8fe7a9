package service

import (
	"context"
	"time"

	"github.com/bitfantasy/kosu/internal/ledger/entity"
	"github.com/bitfantasy/kosu/internal/ledger/repository"
)

// SettingsService 全局设置服务。更新是 read-merge-write：读取当前
// 行、套用非空字段、整行写回。没有版本号，两个并发编辑者中后写者
// 覆盖前者——已知且接受的竞态。
type SettingsService struct {
	settings *repository.SettingsRepository
}

func NewSettingsService(settings *repository.SettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

// UpdateSettingsInput 设置更新入参，nil 字段不变更
type UpdateSettingsInput struct {
	ExchangeRate       *float64 `json:"exchange_rate"`
	LicenseComputers   *int     `json:"license_computers"`
	LicensePerComputer *float64 `json:"license_per_computer"`
	UnitPrice          *float64 `json:"unit_price"`
}

// Get 读取设置
func (s *SettingsService) Get(ctx context.Context) (*entity.Settings, error) {
	settings, err := s.settings.Get(ctx)
	return settings, backendErr("load settings", err)
}

// Update 合并更新设置
func (s *SettingsService) Update(ctx context.Context, input *UpdateSettingsInput) (*entity.Settings, error) {
	if input.ExchangeRate != nil && *input.ExchangeRate <= 0 {
		return nil, &ValidationError{Field: "exchange_rate", Reason: "must be positive"}
	}
	if input.LicenseComputers != nil && *input.LicenseComputers < 0 {
		return nil, &ValidationError{Field: "license_computers", Reason: "must not be negative"}
	}
	if input.LicensePerComputer != nil && *input.LicensePerComputer < 0 {
		return nil, &ValidationError{Field: "license_per_computer", Reason: "must not be negative"}
	}
	if input.UnitPrice != nil && *input.UnitPrice < 0 {
		return nil, &ValidationError{Field: "unit_price", Reason: "must not be negative"}
	}

	current, err := s.settings.Get(ctx)
	if err != nil {
		return nil, backendErr("load settings", err)
	}

	if input.ExchangeRate != nil {
		current.ExchangeRate = *input.ExchangeRate
	}
	if input.LicenseComputers != nil {
		current.LicenseComputers = *input.LicenseComputers
	}
	if input.LicensePerComputer != nil {
		current.LicensePerComputer = *input.LicensePerComputer
	}
	if input.UnitPrice != nil {
		current.UnitPrice = input.UnitPrice
	}
	current.UpdatedAt = time.Now()

	if err := s.settings.Save(ctx, current); err != nil {
		return nil, backendErr("save settings", err)
	}
	return current, nil
}
