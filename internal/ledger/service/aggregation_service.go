package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bitfantasy/kosu/internal/ledger/entity"
	"github.com/bitfantasy/kosu/internal/ledger/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const yearlyCacheTTL = 60 * time.Second

// PriceResolver 返回某项目在某半期下的有效时薪
type PriceResolver func(projectID, periodLabel string) entity.PriceQuote

// MonthlyTotal 单月汇总
type MonthlyTotal struct {
	Month             int     `json:"month"`
	PlannedHours      float64 `json:"planned_hours"`
	ActualHours       float64 `json:"actual_hours"`
	PlannedRevenue    float64 `json:"planned_revenue"`
	ActualRevenue     float64 `json:"actual_revenue"`
	AccPlannedRevenue float64 `json:"acc_planned_revenue"`
	AccActualRevenue  float64 `json:"acc_actual_revenue"`
}

// YearlySummary 年度汇总，含许可证成本摊销
type YearlySummary struct {
	Year                int     `json:"year"`
	TotalPlannedHours   float64 `json:"total_planned_hours"`
	TotalActualHours    float64 `json:"total_actual_hours"`
	TotalPlannedRevenue float64 `json:"total_planned_revenue"`
	TotalActualRevenue  float64 `json:"total_actual_revenue"`
	AchievementRate     float64 `json:"achievement_rate"`
	LicenseTotal        float64 `json:"license_total"`
	NetRevenue          float64 `json:"net_revenue"`
	ProfitMargin        float64 `json:"profit_margin"`
	LicenseCostPerHour  float64 `json:"license_cost_per_hour"`
	BreakEvenHours      float64 `json:"break_even_hours"`
}

// AggregateMonthly 将记录折叠为12个月的汇总。每条记录按其所属
// 项目/半期解析出的时薪计入当月营收，即同一个月的营收是各贡献
// 项目按各自费率的加总，而不是单一全局费率。空月份为零值而非缺失。
func AggregateMonthly(records []entity.MonthlyRecord, resolve PriceResolver) [12]MonthlyTotal {
	var months [12]MonthlyTotal
	for i := range months {
		months[i].Month = i + 1
	}

	for _, rec := range records {
		if !entity.ValidMonth(rec.Month) {
			continue
		}
		quote := resolve(rec.ProjectID, rec.PeriodLabel)
		m := &months[rec.Month-1]
		m.PlannedHours += rec.PlannedHours
		m.ActualHours += rec.ActualHours
		m.PlannedRevenue += rec.PlannedHours * quote.PlanPrice
		m.ActualRevenue += rec.ActualHours * quote.ActualPrice
	}

	// 累计序列：1月→12月前缀和
	var accPlan, accActual float64
	for i := range months {
		accPlan += months[i].PlannedRevenue
		accActual += months[i].ActualRevenue
		months[i].AccPlannedRevenue = accPlan
		months[i].AccActualRevenue = accActual
	}

	return months
}

// SummarizeYear 年度汇总。所有除法遇零分母一律归零，
// 不向展示层传播 NaN/Inf。
func SummarizeYear(year int, months [12]MonthlyTotal, settings *entity.Settings, unitRate float64) YearlySummary {
	summary := YearlySummary{Year: year}

	for i := range months {
		summary.TotalPlannedHours += months[i].PlannedHours
		summary.TotalActualHours += months[i].ActualHours
		summary.TotalPlannedRevenue += months[i].PlannedRevenue
		summary.TotalActualRevenue += months[i].ActualRevenue
	}

	if summary.TotalPlannedHours > 0 {
		summary.AchievementRate = summary.TotalActualHours / summary.TotalPlannedHours * 100
	}

	summary.LicenseTotal = settings.LicenseTotal()
	summary.NetRevenue = summary.TotalActualRevenue - summary.LicenseTotal

	if summary.TotalActualRevenue > 0 {
		summary.ProfitMargin = summary.NetRevenue / summary.TotalActualRevenue * 100
	}
	if summary.TotalPlannedHours > 0 {
		summary.LicenseCostPerHour = summary.LicenseTotal / summary.TotalPlannedHours
	}
	if unitRate > 0 {
		summary.BreakEvenHours = summary.LicenseTotal / unitRate
	}

	return summary
}

// AggregationService 汇总查询服务，只读
type AggregationService struct {
	repos  *repository.Repositories
	rdb    *redis.Client
	logger *zap.Logger
}

func NewAggregationService(repos *repository.Repositories, rdb *redis.Client, logger *zap.Logger) *AggregationService {
	return &AggregationService{repos: repos, rdb: rdb, logger: logger}
}

// resolverForLinks 基于一批关联构建价格解析闭包
func (s *AggregationService) resolverForLinks(projects []entity.Project, links []entity.PeriodProjectLink) PriceResolver {
	projectByID := make(map[string]*entity.Project, len(projects))
	for i := range projects {
		projectByID[projects[i].ID] = &projects[i]
	}
	linkByKey := make(map[string]*entity.PeriodProjectLink, len(links))
	for i := range links {
		linkByKey[links[i].ProjectID+"|"+links[i].PeriodLabel] = &links[i]
	}

	return func(projectID, periodLabel string) entity.PriceQuote {
		return entity.ResolveEffectivePrice(
			projectByID[projectID],
			linkByKey[projectID+"|"+periodLabel],
		)
	}
}

func (s *AggregationService) fetchYear(ctx context.Context, year int) ([]entity.MonthlyRecord, PriceResolver, error) {
	records, err := s.repos.Record.ListByYear(ctx, year)
	if err != nil {
		return nil, nil, backendErr("list records", err)
	}
	links, err := s.repos.Period.ListLinksByYear(ctx, year)
	if err != nil {
		return nil, nil, backendErr("list links", err)
	}

	ids := make([]string, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if !seen[rec.ProjectID] {
			seen[rec.ProjectID] = true
			ids = append(ids, rec.ProjectID)
		}
	}
	projects, err := s.repos.Project.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, backendErr("list projects", err)
	}

	return records, s.resolverForLinks(projects, links), nil
}

// MonthlySeries 年度月次序列
func (s *AggregationService) MonthlySeries(ctx context.Context, year int) ([]MonthlyTotal, error) {
	records, resolve, err := s.fetchYear(ctx, year)
	if err != nil {
		return nil, err
	}
	months := AggregateMonthly(records, resolve)
	return months[:], nil
}

// MonthlySeriesForPeriod 半期月次序列（H1: 1-6月, H2: 7-12月）。
// 累计序列从半期首月重新起算。
func (s *AggregationService) MonthlySeriesForPeriod(ctx context.Context, label string) ([]MonthlyTotal, error) {
	_, half, err := entity.ParseLabel(label)
	if err != nil {
		return nil, &ValidationError{Field: "period", Reason: err.Error()}
	}
	if _, err := s.repos.Period.FindByLabel(ctx, label); err != nil {
		if err == repository.ErrNotFound {
			return nil, err
		}
		return nil, backendErr("find period", err)
	}

	records, err := s.repos.Record.ListByPeriod(ctx, label)
	if err != nil {
		return nil, backendErr("list records", err)
	}
	links, err := s.repos.Period.ListLinksByPeriod(ctx, label)
	if err != nil {
		return nil, backendErr("list links", err)
	}
	ids := make([]string, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.ProjectID)
	}
	projects, err := s.repos.Project.FindByIDs(ctx, ids)
	if err != nil {
		return nil, backendErr("list projects", err)
	}

	months := AggregateMonthly(records, s.resolverForLinks(projects, links))
	first, last := entity.MonthsOfHalf(half)

	series := make([]MonthlyTotal, 0, last-first+1)
	var accPlan, accActual float64
	for m := first; m <= last; m++ {
		mt := months[m-1]
		accPlan += mt.PlannedRevenue
		accActual += mt.ActualRevenue
		mt.AccPlannedRevenue = accPlan
		mt.AccActualRevenue = accActual
		series = append(series, mt)
	}
	return series, nil
}

// YearlySummary 年度汇总，短TTL缓存在 redis，写操作不主动失效，
// 过期后按需重算。
func (s *AggregationService) YearlySummary(ctx context.Context, year int) (*YearlySummary, error) {
	cacheKey := fmt.Sprintf("kosu:summary:%d", year)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var summary YearlySummary
			if json.Unmarshal([]byte(cached), &summary) == nil {
				return &summary, nil
			}
		}
	}

	records, resolve, err := s.fetchYear(ctx, year)
	if err != nil {
		return nil, err
	}
	settings, err := s.repos.Settings.Get(ctx)
	if err != nil {
		return nil, backendErr("load settings", err)
	}

	months := AggregateMonthly(records, resolve)

	var unitRate float64
	if settings.UnitPrice != nil {
		unitRate = *settings.UnitPrice
	}
	summary := SummarizeYear(year, months, settings, unitRate)

	if s.rdb != nil {
		if data, err := json.Marshal(summary); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, data, yearlyCacheTTL).Err(); err != nil {
				s.logger.Warn("cache yearly summary", zap.Error(err))
			}
		}
	}

	return &summary, nil
}
