package service

import (
	"context"
	"time"

	"github.com/bitfantasy/kosu/internal/ledger/entity"
	"github.com/bitfantasy/kosu/internal/ledger/repository"
)

// RecordService 工数录入服务
type RecordService struct {
	records *repository.RecordRepository
	periods *repository.PeriodRepository
}

func NewRecordService(records *repository.RecordRepository, periods *repository.PeriodRepository) *RecordService {
	return &RecordService{records: records, periods: periods}
}

// UpsertRecordInput 工数单元格写入入参
type UpsertRecordInput struct {
	ProjectID    string  `json:"project_id" binding:"required"`
	PeriodLabel  string  `json:"period_label" binding:"required"`
	Year         int     `json:"year" binding:"required"`
	Month        int     `json:"month" binding:"required"`
	PlannedHours float64 `json:"planned_hours"`
	ActualHours  float64 `json:"actual_hours"`
}

// Upsert 幂等写入一个月份单元格。要求半期-项目关联已存在，且
// (Year, Month) 落在标签指定的半期区间内，否则记录会从半期视图里
// 消失。冲突时仅替换工数字段。客户端对连续编辑做防抖，这里只收
// 最终值。
func (s *RecordService) Upsert(ctx context.Context, input *UpsertRecordInput) (*entity.MonthlyRecord, error) {
	if !entity.ValidMonth(input.Month) {
		return nil, &ValidationError{Field: "month", Reason: "must be between 1 and 12"}
	}
	if !entity.ValidHours(input.PlannedHours) {
		return nil, &ValidationError{Field: "planned_hours", Reason: "must not be negative"}
	}
	if !entity.ValidHours(input.ActualHours) {
		return nil, &ValidationError{Field: "actual_hours", Reason: "must not be negative"}
	}
	labelYear, half, err := entity.ParseLabel(input.PeriodLabel)
	if err != nil {
		return nil, &ValidationError{Field: "period_label", Reason: err.Error()}
	}
	if input.Year != labelYear {
		return nil, &ValidationError{Field: "year", Reason: "does not match period label"}
	}
	if first, last := entity.MonthsOfHalf(half); input.Month < first || input.Month > last {
		return nil, &ValidationError{Field: "month", Reason: "outside the period half"}
	}

	if _, err := s.periods.FindLink(ctx, input.PeriodLabel, input.ProjectID); err != nil {
		if err == repository.ErrNotFound {
			return nil, &NotLinkedError{PeriodLabel: input.PeriodLabel, ProjectID: input.ProjectID}
		}
		return nil, backendErr("find link", err)
	}

	record := &entity.MonthlyRecord{
		ID:           newID(),
		ProjectID:    input.ProjectID,
		PeriodLabel:  input.PeriodLabel,
		Year:         input.Year,
		Month:        input.Month,
		PlannedHours: input.PlannedHours,
		ActualHours:  input.ActualHours,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.records.Upsert(ctx, record); err != nil {
		return nil, backendErr("upsert record", err)
	}
	return record, nil
}

// ListByPeriod 半期内全部记录（跟踪表格的数据源）
func (s *RecordService) ListByPeriod(ctx context.Context, label string) ([]entity.MonthlyRecord, error) {
	records, err := s.records.ListByPeriod(ctx, label)
	return records, backendErr("list records", err)
}
