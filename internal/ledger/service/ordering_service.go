package service

import (
	"context"

	"github.com/bitfantasy/kosu/internal/ledger/repository"
	"go.uber.org/zap"
)

// OrderingService 项目排序服务。排序交换在半期可见列表内定位相邻
// 项，但 display_order 存储在项目行上，是全局键：在半期A里交换也
// 会改变该项目在半期B中的位置。这是既有设计属性而非缺陷；若将来
// 改为按关联存储排序键，只需替换本服务的存取，不动调用契约。
// 并发交换不做协调，后写者生效。
type OrderingService struct {
	projects *repository.ProjectRepository
	periods  *repository.PeriodRepository
	logger   *zap.Logger
}

func NewOrderingService(projects *repository.ProjectRepository, periods *repository.PeriodRepository, logger *zap.Logger) *OrderingService {
	return &OrderingService{projects: projects, periods: periods, logger: logger}
}

// MoveUp 与上一个相邻项交换排序键。已在首位时为 no-op。
func (s *OrderingService) MoveUp(ctx context.Context, projectID, periodLabel string) error {
	return s.move(ctx, projectID, periodLabel, -1)
}

// MoveDown 与下一个相邻项交换排序键。已在末位时为 no-op。
func (s *OrderingService) MoveDown(ctx context.Context, projectID, periodLabel string) error {
	return s.move(ctx, projectID, periodLabel, +1)
}

func (s *OrderingService) move(ctx context.Context, projectID, periodLabel string, delta int) error {
	if _, err := s.periods.FindByLabel(ctx, periodLabel); err != nil {
		if err == repository.ErrNotFound {
			return err
		}
		return backendErr("find period", err)
	}

	list, err := s.projects.ListVisibleByPeriod(ctx, periodLabel)
	if err != nil {
		return backendErr("list period projects", err)
	}

	idx := -1
	for i := range list {
		if list[i].ID == projectID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &NotLinkedError{PeriodLabel: periodLabel, ProjectID: projectID}
	}

	other := idx + delta
	if other < 0 || other >= len(list) {
		return nil // boundary, nothing to do
	}

	a, b := &list[idx], &list[other]
	if err := s.projects.UpdateDisplayOrder(ctx, a.ID, b.DisplayOrder); err != nil {
		return backendErr("update display order", err)
	}
	if err := s.projects.UpdateDisplayOrder(ctx, b.ID, a.DisplayOrder); err != nil {
		// first write already landed; log and surface so the caller refetches
		s.logger.Error("display order swap half-applied",
			zap.String("project_a", a.ID),
			zap.String("project_b", b.ID),
			zap.Error(err),
		)
		return backendErr("update display order", err)
	}

	return nil
}
