package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/kosu/internal/ledger/entity"
	"gorm.io/gorm"
)

// PeriodRepository 半期与半期-项目关联仓库
type PeriodRepository struct {
	db *gorm.DB
}

func NewPeriodRepository(db *gorm.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// FindAll 半期列表，按年份、半期倒序
func (r *PeriodRepository) FindAll(ctx context.Context) ([]entity.Period, error) {
	var periods []entity.Period
	err := r.db.WithContext(ctx).
		Order("year DESC, half DESC").
		Find(&periods).Error
	return periods, err
}

// FindByLabel 根据标签查找半期
func (r *PeriodRepository) FindByLabel(ctx context.Context, label string) (*entity.Period, error) {
	var period entity.Period
	err := r.db.WithContext(ctx).Where("label = ?", label).First(&period).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &period, nil
}

// Create 创建半期，标签重复返回 ErrConflict
func (r *PeriodRepository) Create(ctx context.Context, period *entity.Period) error {
	err := r.db.WithContext(ctx).Create(period).Error
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// Delete 删除半期及其全部关联。月次记录有意保留（见 period 服务）。
func (r *PeriodRepository) Delete(ctx context.Context, label string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("period_label = ?", label).Delete(&entity.PeriodProjectLink{}).Error; err != nil {
			return err
		}
		return tx.Where("label = ?", label).Delete(&entity.Period{}).Error
	})
}

// CreateLinks 批量创建关联
func (r *PeriodRepository) CreateLinks(ctx context.Context, links []entity.PeriodProjectLink) error {
	if len(links) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Create(&links).Error
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// DeleteLinksByPeriod 删除半期下全部关联
func (r *PeriodRepository) DeleteLinksByPeriod(ctx context.Context, label string) error {
	return r.db.WithContext(ctx).
		Where("period_label = ?", label).
		Delete(&entity.PeriodProjectLink{}).Error
}

// FindLink 查找某半期-项目配对的关联
func (r *PeriodRepository) FindLink(ctx context.Context, label, projectID string) (*entity.PeriodProjectLink, error) {
	var link entity.PeriodProjectLink
	err := r.db.WithContext(ctx).
		Where("period_label = ? AND project_id = ?", label, projectID).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

// UpdateLinkPrices 更新关联的覆盖价
func (r *PeriodRepository) UpdateLinkPrices(ctx context.Context, id string, plan, actual *float64) error {
	return r.db.WithContext(ctx).
		Model(&entity.PeriodProjectLink{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"plan_price":   plan,
			"actual_price": actual,
		}).Error
}

// ListLinksByPeriod 半期下全部关联
func (r *PeriodRepository) ListLinksByPeriod(ctx context.Context, label string) ([]entity.PeriodProjectLink, error) {
	var links []entity.PeriodProjectLink
	err := r.db.WithContext(ctx).
		Where("period_label = ?", label).
		Find(&links).Error
	return links, err
}

// ListLinksByYear 某年份两个半期的全部关联
func (r *PeriodRepository) ListLinksByYear(ctx context.Context, year int) ([]entity.PeriodProjectLink, error) {
	var links []entity.PeriodProjectLink
	err := r.db.WithContext(ctx).
		Joins("JOIN periods p ON p.label = period_projects.period_label").
		Where("p.year = ?", year).
		Find(&links).Error
	return links, err
}

// CountLinks 半期下关联数量
func (r *PeriodRepository) CountLinks(ctx context.Context, label string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.PeriodProjectLink{}).
		Where("period_label = ?", label).
		Count(&count).Error
	return count, err
}
