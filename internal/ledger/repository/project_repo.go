package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitfantasy/kosu/internal/ledger/entity"
	"gorm.io/gorm"
)

// ProjectRepository 项目仓库
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// FindAll 查询项目列表。period 过滤走 period_projects 关联表，
// 不使用 projects.period 冗余字段。
func (r *ProjectRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Project, int64, error) {
	var items []entity.Project
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Project{})

	if status := filters["status"]; status != "" {
		query = query.Where("projects.status = ?", status)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("projects.name ILIKE ? OR projects.code ILIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if period := filters["period"]; period != "" {
		query = query.
			Joins("JOIN period_projects pp ON pp.project_id = projects.id").
			Where("pp.period_label = ?", period)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("projects.display_order ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID 根据ID查找项目
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*entity.Project, error) {
	var project entity.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

// FindByIDs 批量查找项目
func (r *ProjectRepository) FindByIDs(ctx context.Context, ids []string) ([]entity.Project, error) {
	var projects []entity.Project
	if len(ids) == 0 {
		return projects, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&projects).Error
	return projects, err
}

// ListVisibleByPeriod 半期内可见项目列表，按 display_order 升序。
// 排序交换操作基于该列表定位相邻项。
func (r *ProjectRepository) ListVisibleByPeriod(ctx context.Context, periodLabel string) ([]entity.Project, error) {
	var projects []entity.Project
	err := r.db.WithContext(ctx).
		Joins("JOIN period_projects pp ON pp.project_id = projects.id").
		Where("pp.period_label = ? AND projects.excluded = false", periodLabel).
		Order("projects.display_order ASC").
		Find(&projects).Error
	return projects, err
}

// Create 创建项目
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	err := r.db.WithContext(ctx).Create(project).Error
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

// Update 更新项目
func (r *ProjectRepository) Update(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

// UpdateDisplayOrder 更新单个项目的排序键
func (r *ProjectRepository) UpdateDisplayOrder(ctx context.Context, id string, order int) error {
	return r.db.WithContext(ctx).
		Model(&entity.Project{}).
		Where("id = ?", id).
		Update("display_order", order).Error
}

// MaxDisplayOrder 当前最大排序键，无数据时返回0
func (r *ProjectRepository) MaxDisplayOrder(ctx context.Context) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&entity.Project{}).
		Select("COALESCE(MAX(display_order), 0)").
		Scan(&max).Error
	return max, err
}

// NextCode 生成下一个项目编码 PRJ-{序号}。序号取数值最大值而非
// 字符串最大值，越过三位数后（PRJ-999 → PRJ-1000）仍然单调递增。
func (r *ProjectRepository) NextCode(ctx context.Context) (string, error) {
	var seq int
	err := r.db.WithContext(ctx).
		Model(&entity.Project{}).
		Select(fmt.Sprintf("COALESCE(MAX(substring(code from %d)::int), 0)", len(entity.CodePrefix)+1)).
		Where("code ~ ?", "^"+entity.CodePrefix+"[0-9]+$").
		Scan(&seq).Error
	if err != nil {
		return "", err
	}
	return entity.FormatCode(seq + 1), nil
}

// DeleteCascade 批量硬删除项目及其月次记录、半期关联
func (r *ProjectRepository) DeleteCascade(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id IN ?", ids).Delete(&entity.MonthlyRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id IN ?", ids).Delete(&entity.PeriodProjectLink{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&entity.Project{}).Error
	})
}
