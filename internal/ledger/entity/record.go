package entity

import "time"

// MonthlyRecord 月次工数记录。(ProjectID, PeriodLabel, Year, Month)
// 唯一，upsert 只替换工数字段。
type MonthlyRecord struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	ProjectID    string    `json:"project_id" gorm:"size:32;not null;uniqueIndex:idx_monthly_records_cell"`
	PeriodLabel  string    `json:"period_label" gorm:"size:16;not null;uniqueIndex:idx_monthly_records_cell"`
	Year         int       `json:"year" gorm:"not null;uniqueIndex:idx_monthly_records_cell"`
	Month        int       `json:"month" gorm:"not null;uniqueIndex:idx_monthly_records_cell"`
	PlannedHours float64   `json:"planned_hours" gorm:"type:decimal(8,2);not null;default:0"`
	ActualHours  float64   `json:"actual_hours" gorm:"type:decimal(8,2);not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (MonthlyRecord) TableName() string {
	return "monthly_records"
}

// ValidMonth 校验月份区间
func ValidMonth(month int) bool {
	return month >= 1 && month <= 12
}

// ValidHours 校验工数非负
func ValidHours(hours float64) bool {
	return hours >= 0
}
