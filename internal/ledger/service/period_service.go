package service

import (
	"context"
	"strings"
	"time"

	"github.com/bitfantasy/kosu/internal/ledger/entity"
	"github.com/bitfantasy/kosu/internal/ledger/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PeriodService 半期生命周期服务
type PeriodService struct {
	periods  *repository.PeriodRepository
	projects *repository.ProjectRepository
	records  *repository.RecordRepository
	logger   *zap.Logger
}

func NewPeriodService(periods *repository.PeriodRepository, projects *repository.ProjectRepository, records *repository.RecordRepository, logger *zap.Logger) *PeriodService {
	return &PeriodService{periods: periods, projects: projects, records: records, logger: logger}
}

// CreatePeriodResult 半期创建结果。LinkFailed 为 true 表示半期已
// 建立但关联写入最终失败，调用方应只重试关联步骤。
type CreatePeriodResult struct {
	Period     *entity.Period `json:"period"`
	Linked     int            `json:"linked"`
	LinkFailed bool           `json:"link_failed"`
}

// List 半期列表
func (s *PeriodService) List(ctx context.Context) ([]entity.Period, error) {
	periods, err := s.periods.FindAll(ctx)
	return periods, backendErr("list periods", err)
}

// Create 创建半期并建立初始项目关联。半期插入与关联插入是两次
// 独立写入：关联失败时半期保留，重试一次关联；仍失败则作为部分
// 完成结果返回，由调用方补做关联，而不是回滚半期。
func (s *PeriodService) Create(ctx context.Context, year int, half string, projectIDs []string) (*CreatePeriodResult, error) {
	if year < 2000 || year > 2100 {
		return nil, &ValidationError{Field: "year", Reason: "out of range"}
	}
	if !entity.ValidHalf(half) {
		return nil, &ValidationError{Field: "half", Reason: "must be H1 or H2"}
	}

	label := entity.FormatLabel(year, half)
	period := &entity.Period{
		Label:     label,
		Year:      year,
		Half:      half,
		CreatedAt: time.Now(),
	}

	if err := s.periods.Create(ctx, period); err != nil {
		if err == repository.ErrConflict {
			return nil, &ConflictError{Resource: "period", Key: label}
		}
		return nil, backendErr("create period", err)
	}

	result := &CreatePeriodResult{Period: period}
	if len(projectIDs) == 0 {
		return result, nil
	}

	links, err := s.snapshotLinks(ctx, label, projectIDs)
	if err != nil {
		return nil, err
	}

	if err := s.periods.CreateLinks(ctx, links); err != nil {
		s.logger.Warn("period created but link insert failed, retrying",
			zap.String("period", label), zap.Error(err))
		if err = s.periods.CreateLinks(ctx, links); err != nil {
			s.logger.Error("link insert retry failed, period left without projects",
				zap.String("period", label), zap.Error(err))
			result.LinkFailed = true
			return result, nil
		}
	}

	result.Linked = len(links)
	return result, nil
}

// snapshotLinks 为给定项目生成关联，覆盖价快照自项目当前默认价
// （无默认价时退到旧版 unit_price）。快照之后与项目价脱钩。
func (s *PeriodService) snapshotLinks(ctx context.Context, label string, projectIDs []string) ([]entity.PeriodProjectLink, error) {
	projects, err := s.projects.FindByIDs(ctx, projectIDs)
	if err != nil {
		return nil, backendErr("load projects", err)
	}
	byID := make(map[string]*entity.Project, len(projects))
	for i := range projects {
		byID[projects[i].ID] = &projects[i]
	}

	links := make([]entity.PeriodProjectLink, 0, len(projectIDs))
	for _, id := range projectIDs {
		p, ok := byID[id]
		if !ok {
			return nil, &ValidationError{Field: "project_ids", Reason: "unknown project " + id}
		}
		quote := entity.ResolveEffectivePrice(p, nil)
		plan, actual := quote.PlanPrice, quote.ActualPrice
		links = append(links, entity.PeriodProjectLink{
			ID:          newID(),
			PeriodLabel: label,
			ProjectID:   id,
			PlanPrice:   &plan,
			ActualPrice: &actual,
			CreatedAt:   time.Now(),
		})
	}
	return links, nil
}

// ReplaceProjects 整体替换半期成员：删除全部既有关联后按给定列表
// 重建。不是差分合并——被移出的项目的覆盖价随关联一并消失，重新
// 加入时回到项目默认价。
func (s *PeriodService) ReplaceProjects(ctx context.Context, label string, projectIDs []string) error {
	if _, err := s.periods.FindByLabel(ctx, label); err != nil {
		if err == repository.ErrNotFound {
			return err
		}
		return backendErr("find period", err)
	}

	if err := s.periods.DeleteLinksByPeriod(ctx, label); err != nil {
		return backendErr("delete links", err)
	}
	if len(projectIDs) == 0 {
		return nil
	}

	links, err := s.snapshotLinks(ctx, label, projectIDs)
	if err != nil {
		return err
	}
	if err := s.periods.CreateLinks(ctx, links); err != nil {
		return backendErr("create links", err)
	}
	return nil
}

// Delete 删除半期及其关联。月次记录有意保留为孤儿（仅靠
// period_label 字符串指认），不做引用清理。
func (s *PeriodService) Delete(ctx context.Context, label string) error {
	if _, err := s.periods.FindByLabel(ctx, label); err != nil {
		if err == repository.ErrNotFound {
			return err
		}
		return backendErr("find period", err)
	}
	return backendErr("delete period", s.periods.Delete(ctx, label))
}

// CarryOver 将项目结转到目标半期：为每个来源项目新建关联，覆盖价
// 取项目当前默认价（而非任何旧半期下的价格）。绝不复制项目行；
// 已关联的项目跳过。
func (s *PeriodService) CarryOver(ctx context.Context, targetLabel string, projectIDs []string) (int, error) {
	if _, err := s.periods.FindByLabel(ctx, targetLabel); err != nil {
		if err == repository.ErrNotFound {
			return 0, err
		}
		return 0, backendErr("find period", err)
	}

	pending := make([]string, 0, len(projectIDs))
	for _, id := range projectIDs {
		if _, err := s.periods.FindLink(ctx, targetLabel, id); err == nil {
			continue // already linked
		} else if err != repository.ErrNotFound {
			return 0, backendErr("find link", err)
		}
		pending = append(pending, id)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	links, err := s.snapshotLinks(ctx, targetLabel, pending)
	if err != nil {
		return 0, err
	}
	if err := s.periods.CreateLinks(ctx, links); err != nil {
		return 0, backendErr("create links", err)
	}
	return len(links), nil
}

// UpdateLinkPrices 更新某半期-项目配对的覆盖价。配对不存在时报
// NotLinkedError，绝不隐式创建关联。两个价格整体写回：传 nil 即
// 清掉该侧覆盖，此后回退到项目默认价，不是"保持原值"。
func (s *PeriodService) UpdateLinkPrices(ctx context.Context, label, projectID string, plan, actual *float64) error {
	if plan != nil && *plan < 0 {
		return &ValidationError{Field: "plan_price", Reason: "must not be negative"}
	}
	if actual != nil && *actual < 0 {
		return &ValidationError{Field: "actual_price", Reason: "must not be negative"}
	}

	link, err := s.periods.FindLink(ctx, label, projectID)
	if err != nil {
		if err == repository.ErrNotFound {
			return &NotLinkedError{PeriodLabel: label, ProjectID: projectID}
		}
		return backendErr("find link", err)
	}

	return backendErr("update link prices", s.periods.UpdateLinkPrices(ctx, link.ID, plan, actual))
}

// DiagnoseOrphans 只读诊断：列出半期已删除但仍残留的月次记录
func (s *PeriodService) DiagnoseOrphans(ctx context.Context) ([]entity.MonthlyRecord, error) {
	records, err := s.records.ListOrphans(ctx)
	return records, backendErr("list orphans", err)
}

func newID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
