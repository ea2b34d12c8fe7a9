package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Repositories 仓库集合
type Repositories struct {
	Project  *ProjectRepository
	Period   *PeriodRepository
	Record   *RecordRepository
	Settings *SettingsRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Project:  NewProjectRepository(db),
		Period:   NewPeriodRepository(db),
		Record:   NewRecordRepository(db),
		Settings: NewSettingsRepository(db),
	}
}

// isDuplicate reports whether err is a unique-constraint violation.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key")
}
