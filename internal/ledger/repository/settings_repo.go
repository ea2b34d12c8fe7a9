package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/kosu/internal/ledger/entity"
	"gorm.io/gorm"
)

// SettingsRepository 全局设置仓库
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get 读取设置单例，不存在时返回默认值（不落库）
func (r *SettingsRepository) Get(ctx context.Context) (*entity.Settings, error) {
	var settings entity.Settings
	err := r.db.WithContext(ctx).
		Where("label = ?", entity.SettingsLabel).
		First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &entity.Settings{Label: entity.SettingsLabel, ExchangeRate: 1}, nil
		}
		return nil, err
	}
	return &settings, nil
}

// Save 整行写回。read-merge-write 的写侧，无版本校验。
func (r *SettingsRepository) Save(ctx context.Context, settings *entity.Settings) error {
	settings.Label = entity.SettingsLabel
	return r.db.WithContext(ctx).Save(settings).Error
}
