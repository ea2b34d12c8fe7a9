package repository

import (
	"context"

	"github.com/bitfantasy/kosu/internal/ledger/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordRepository 月次工数记录仓库
type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Upsert 按 (project_id, period_label, year, month) 幂等写入，
// 冲突时只替换工数字段。
func (r *RecordRepository) Upsert(ctx context.Context, record *entity.MonthlyRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "project_id"},
			{Name: "period_label"},
			{Name: "year"},
			{Name: "month"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"planned_hours", "actual_hours", "updated_at"}),
	}).Create(record).Error
}

// ListByYear 某年份全部记录
func (r *RecordRepository) ListByYear(ctx context.Context, year int) ([]entity.MonthlyRecord, error) {
	var records []entity.MonthlyRecord
	err := r.db.WithContext(ctx).
		Where("year = ?", year).
		Order("month ASC").
		Find(&records).Error
	return records, err
}

// ListByPeriod 某半期全部记录
func (r *RecordRepository) ListByPeriod(ctx context.Context, label string) ([]entity.MonthlyRecord, error) {
	var records []entity.MonthlyRecord
	err := r.db.WithContext(ctx).
		Where("period_label = ?", label).
		Order("month ASC").
		Find(&records).Error
	return records, err
}

// ListOrphans 半期已删除但记录仍在的月次记录（只读诊断）
func (r *RecordRepository) ListOrphans(ctx context.Context) ([]entity.MonthlyRecord, error) {
	var records []entity.MonthlyRecord
	err := r.db.WithContext(ctx).
		Joins("LEFT JOIN periods p ON p.label = monthly_records.period_label").
		Where("p.label IS NULL").
		Order("monthly_records.period_label, monthly_records.month").
		Find(&records).Error
	return records, err
}
