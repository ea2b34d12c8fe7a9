package service

import (
	"github.com/bitfantasy/kosu/internal/config"
	"github.com/bitfantasy/kosu/internal/ledger/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services 服务集合
type Services struct {
	Auth        *AuthService
	Project     *ProjectService
	Period      *PeriodService
	Ordering    *OrderingService
	Record      *RecordService
	Aggregation *AggregationService
	Settings    *SettingsService
	Assist      *AssistService
	Export      *ExportService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	aggregation := NewAggregationService(repos, rdb, logger)

	return &Services{
		Auth:        NewAuthService(rdb, cfg),
		Project:     NewProjectService(repos.Project, repos.Period, logger),
		Period:      NewPeriodService(repos.Period, repos.Project, repos.Record, logger),
		Ordering:    NewOrderingService(repos.Project, repos.Period, logger),
		Record:      NewRecordService(repos.Record, repos.Period),
		Aggregation: aggregation,
		Settings:    NewSettingsService(repos.Settings),
		Assist:      NewAssistService(cfg.Assist, logger),
		Export:      NewExportService(repos, aggregation),
	}
}
