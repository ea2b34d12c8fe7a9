package entity

import (
	"fmt"
	"regexp"
	"time"
)

// 项目状态
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusArchived  = "archived"
)

// CodePrefix 项目编码前缀，编码形如 PRJ-001
const CodePrefix = "PRJ-"

var codePattern = regexp.MustCompile(`^PRJ-\d{3,}$`)

// Project 项目实体
type Project struct {
	ID          string   `json:"id" gorm:"primaryKey;size:32"`
	Code        string   `json:"code" gorm:"size:16;not null;uniqueIndex"`
	Name        string   `json:"name" gorm:"size:128;not null"`
	ProjectType string   `json:"project_type" gorm:"size:64"`
	Software    string   `json:"software" gorm:"size:256"`
	Status      string   `json:"status" gorm:"size:16;not null;default:active"`
	UnitPrice   *float64 `json:"unit_price" gorm:"type:decimal(12,2)"` // 旧版单一时薪
	PlanPrice   *float64 `json:"plan_price" gorm:"type:decimal(12,2)"`
	ActualPrice *float64 `json:"actual_price" gorm:"type:decimal(12,2)"`
	Notes       string   `json:"notes" gorm:"type:text"`
	Excluded    bool     `json:"excluded" gorm:"not null;default:false"`
	// DisplayOrder is a global ordering key. It is swapped pairwise by the
	// ordering manager and is unique but not necessarily contiguous.
	DisplayOrder int `json:"display_order" gorm:"not null;default:0;index"`
	// Period is a denormalized hint only; membership truth lives in
	// period_projects.
	Period    string    `json:"period" gorm:"size:16"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

// ValidCode 校验项目编码格式
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// ValidStatus 校验项目状态枚举
func ValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusCompleted, StatusPending, StatusArchived:
		return true
	}
	return false
}

// FormatCode 生成第 seq 个项目编码
func FormatCode(seq int) string {
	return fmt.Sprintf("%s%03d", CodePrefix, seq)
}
