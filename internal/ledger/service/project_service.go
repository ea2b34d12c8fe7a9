package service

import (
	"context"
	"time"

	"github.com/bitfantasy/kosu/internal/ledger/entity"
	"github.com/bitfantasy/kosu/internal/ledger/repository"
	"go.uber.org/zap"
)

// ProjectService 项目服务
type ProjectService struct {
	projects *repository.ProjectRepository
	periods  *repository.PeriodRepository
	logger   *zap.Logger
}

func NewProjectService(projects *repository.ProjectRepository, periods *repository.PeriodRepository, logger *zap.Logger) *ProjectService {
	return &ProjectService{projects: projects, periods: periods, logger: logger}
}

// CreateProjectInput 项目创建入参。Period 非空时创建后立即关联到
// 该半期。
type CreateProjectInput struct {
	Name        string   `json:"name" binding:"required"`
	ProjectType string   `json:"project_type"`
	Software    string   `json:"software"`
	Status      string   `json:"status"`
	UnitPrice   *float64 `json:"unit_price"`
	PlanPrice   *float64 `json:"plan_price"`
	ActualPrice *float64 `json:"actual_price"`
	Notes       string   `json:"notes"`
	Period      string   `json:"period"`
}

// UpdateProjectInput 项目更新入参，nil 字段不变更
type UpdateProjectInput struct {
	Name        *string  `json:"name"`
	ProjectType *string  `json:"project_type"`
	Software    *string  `json:"software"`
	Status      *string  `json:"status"`
	UnitPrice   *float64 `json:"unit_price"`
	PlanPrice   *float64 `json:"plan_price"`
	ActualPrice *float64 `json:"actual_price"`
	Notes       *string  `json:"notes"`
	Excluded    *bool    `json:"excluded"`
}

// List 项目列表
func (s *ProjectService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Project, int64, error) {
	items, total, err := s.projects.FindAll(ctx, page, pageSize, filters)
	return items, total, backendErr("list projects", err)
}

// Get 项目详情
func (s *ProjectService) Get(ctx context.Context, id string) (*entity.Project, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err == repository.ErrNotFound {
		return nil, err
	}
	return project, backendErr("find project", err)
}

// Create 创建项目：分配下一个编码与排序键尾部位置，再按需关联半期。
// 项目落库即视为成功；随后的关联失败只记日志，不让创建整体失败。
func (s *ProjectService) Create(ctx context.Context, input *CreateProjectInput) (*entity.Project, error) {
	if input.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "required"}
	}
	status := input.Status
	if status == "" {
		status = entity.StatusActive
	}
	if !entity.ValidStatus(status) {
		return nil, &ValidationError{Field: "status", Reason: "unknown status " + status}
	}
	for field, price := range map[string]*float64{
		"unit_price":   input.UnitPrice,
		"plan_price":   input.PlanPrice,
		"actual_price": input.ActualPrice,
	} {
		if price != nil && *price < 0 {
			return nil, &ValidationError{Field: field, Reason: "must not be negative"}
		}
	}
	if input.Period != "" {
		if _, _, err := entity.ParseLabel(input.Period); err != nil {
			return nil, &ValidationError{Field: "period", Reason: err.Error()}
		}
	}

	code, err := s.projects.NextCode(ctx)
	if err != nil {
		return nil, backendErr("generate code", err)
	}
	maxOrder, err := s.projects.MaxDisplayOrder(ctx)
	if err != nil {
		return nil, backendErr("max display order", err)
	}

	project := &entity.Project{
		ID:           newID(),
		Code:         code,
		Name:         input.Name,
		ProjectType:  input.ProjectType,
		Software:     input.Software,
		Status:       status,
		UnitPrice:    input.UnitPrice,
		PlanPrice:    input.PlanPrice,
		ActualPrice:  input.ActualPrice,
		Notes:        input.Notes,
		DisplayOrder: maxOrder + 1,
		Period:       input.Period,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, backendErr("create project", err)
	}

	if input.Period != "" {
		// 关联必须指向已存在的半期，绝不写入悬空关联
		if _, err := s.periods.FindByLabel(ctx, input.Period); err != nil {
			s.logger.Warn("project created but period link skipped, period not found",
				zap.String("project_id", project.ID),
				zap.String("period", input.Period),
				zap.Error(err),
			)
			return project, nil
		}

		quote := entity.ResolveEffectivePrice(project, nil)
		plan, actual := quote.PlanPrice, quote.ActualPrice
		link := []entity.PeriodProjectLink{{
			ID:          newID(),
			PeriodLabel: input.Period,
			ProjectID:   project.ID,
			PlanPrice:   &plan,
			ActualPrice: &actual,
			CreatedAt:   time.Now(),
		}}
		if err := s.periods.CreateLinks(ctx, link); err != nil {
			// project persistence is the success criterion; the link can
			// be re-added from the period screen
			s.logger.Warn("project created but period link failed",
				zap.String("project_id", project.ID),
				zap.String("period", input.Period),
				zap.Error(err),
			)
		}
	}

	return project, nil
}

// Update 更新项目
func (s *ProjectService) Update(ctx context.Context, id string, input *UpdateProjectInput) (*entity.Project, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, err
		}
		return nil, backendErr("find project", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, &ValidationError{Field: "name", Reason: "required"}
		}
		project.Name = *input.Name
	}
	if input.Status != nil {
		if !entity.ValidStatus(*input.Status) {
			return nil, &ValidationError{Field: "status", Reason: "unknown status " + *input.Status}
		}
		project.Status = *input.Status
	}
	if input.ProjectType != nil {
		project.ProjectType = *input.ProjectType
	}
	if input.Software != nil {
		project.Software = *input.Software
	}
	if input.UnitPrice != nil {
		project.UnitPrice = input.UnitPrice
	}
	if input.PlanPrice != nil {
		project.PlanPrice = input.PlanPrice
	}
	if input.ActualPrice != nil {
		project.ActualPrice = input.ActualPrice
	}
	if input.Notes != nil {
		project.Notes = *input.Notes
	}
	if input.Excluded != nil {
		project.Excluded = *input.Excluded
	}
	project.UpdatedAt = time.Now()

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, backendErr("update project", err)
	}
	return project, nil
}

// BulkDelete 批量硬删除，级联清除月次记录与半期关联
func (s *ProjectService) BulkDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return &ValidationError{Field: "ids", Reason: "required"}
	}
	return backendErr("delete projects", s.projects.DeleteCascade(ctx, ids))
}
