package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// 半期标识
const (
	HalfH1 = "H1"
	HalfH2 = "H2"
)

// Period 半期实体。Label 即主键，与 (Year, Half) 一一对应，
// 创建后不可变更，只能删除。
type Period struct {
	Label     string    `json:"label" gorm:"primaryKey;size:16"`
	Year      int       `json:"year" gorm:"not null;index"`
	Half      string    `json:"half" gorm:"size:4;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (Period) TableName() string {
	return "periods"
}

// PeriodProjectLink 半期-项目关联。PlanPrice/ActualPrice 为该配对
// 专属的时薪覆盖，为空时回退到项目默认值。
type PeriodProjectLink struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	PeriodLabel string    `json:"period_label" gorm:"size:16;not null;uniqueIndex:idx_period_projects_pair"`
	ProjectID   string    `json:"project_id" gorm:"size:32;not null;uniqueIndex:idx_period_projects_pair"`
	PlanPrice   *float64  `json:"plan_price" gorm:"type:decimal(12,2)"`
	ActualPrice *float64  `json:"actual_price" gorm:"type:decimal(12,2)"`
	CreatedAt   time.Time `json:"created_at"`
}

func (PeriodProjectLink) TableName() string {
	return "period_projects"
}

// FormatLabel 生成半期标签 {year}-{H1|H2}
func FormatLabel(year int, half string) string {
	return fmt.Sprintf("%d-%s", year, half)
}

// ParseLabel 解析半期标签
func ParseLabel(label string) (year int, half string, err error) {
	parts := strings.SplitN(label, "-", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("invalid period label %q", label)
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil || year < 2000 || year > 2100 {
		return 0, "", fmt.Errorf("invalid period year in %q", label)
	}
	half = parts[1]
	if half != HalfH1 && half != HalfH2 {
		return 0, "", fmt.Errorf("invalid period half in %q", label)
	}
	return year, half, nil
}

// ValidHalf 校验半期枚举
func ValidHalf(half string) bool {
	return half == HalfH1 || half == HalfH2
}

// MonthsOfHalf 半期覆盖的月份区间
func MonthsOfHalf(half string) (first, last int) {
	if half == HalfH2 {
		return 7, 12
	}
	return 1, 6
}
