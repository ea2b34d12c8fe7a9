package handler

import (
	"errors"
	"strconv"

	"github.com/bitfantasy/kosu/internal/ledger/repository"
	"github.com/bitfantasy/kosu/internal/ledger/service"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	Auth      *AuthHandler
	Project   *ProjectHandler
	Period    *PeriodHandler
	Record    *RecordHandler
	Dashboard *DashboardHandler
	Settings  *SettingsHandler
	Assist    *AssistHandler
	Export    *ExportHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:      NewAuthHandler(services.Auth),
		Project:   NewProjectHandler(services.Project, services.Ordering),
		Period:    NewPeriodHandler(services.Period),
		Record:    NewRecordHandler(services.Record),
		Dashboard: NewDashboardHandler(services.Aggregation),
		Settings:  NewSettingsHandler(services.Settings),
		Assist:    NewAssistHandler(services.Assist),
		Export:    NewExportHandler(services.Export),
	}
}

// RegisterRoutes 注册受保护的业务路由
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/projects", h.Project.List)
	api.POST("/projects", h.Project.Create)
	api.GET("/projects/:id", h.Project.Get)
	api.PUT("/projects/:id", h.Project.Update)
	api.POST("/projects/bulk-delete", h.Project.BulkDelete)
	api.POST("/projects/:id/move-up", h.Project.MoveUp)
	api.POST("/projects/:id/move-down", h.Project.MoveDown)

	api.GET("/periods", h.Period.List)
	api.POST("/periods", h.Period.Create)
	api.PUT("/periods/:label/projects", h.Period.ReplaceProjects)
	api.DELETE("/periods/:label", h.Period.Delete)
	api.POST("/periods/:label/carry-over", h.Period.CarryOver)
	api.PUT("/periods/:label/projects/:id/prices", h.Period.UpdateLinkPrices)
	api.GET("/periods/:label/records", h.Record.ListByPeriod)

	api.PUT("/records", h.Record.Upsert)

	api.GET("/dashboard/monthly", h.Dashboard.Monthly)
	api.GET("/dashboard/yearly", h.Dashboard.Yearly)

	api.GET("/settings", h.Settings.Get)
	api.PUT("/settings", h.Settings.Update)

	api.POST("/assist", h.Assist.Generate)

	api.GET("/export/records.xlsx", h.Export.Workbook)
	api.GET("/export/records.csv", h.Export.CSV)

	api.GET("/diagnostics/orphans", h.Period.DiagnoseOrphans)
}

// === 响应辅助函数 ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// RespondServiceError 将服务层错误分类映射到响应码。冲突与未关联
// 必须区别于一般失败返回，前端才能给出具体提示。
func RespondServiceError(c *gin.Context, err error) {
	var validation *service.ValidationError
	var conflict *service.ConflictError
	var notLinked *service.NotLinkedError

	switch {
	case errors.As(err, &validation):
		BadRequest(c, validation.Error())
	case errors.As(err, &conflict):
		Conflict(c, conflict.Error())
	case errors.As(err, &notLinked):
		NotFound(c, notLinked.Error())
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "not found")
	default:
		InternalError(c, "internal error")
	}
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 50

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 200 {
			pageSize = v
		}
	}
	return page, pageSize
}

// GetYear 解析 year 查询参数
func GetYear(c *gin.Context) (int, bool) {
	y := c.Query("year")
	if y == "" {
		return 0, false
	}
	year, err := strconv.Atoi(y)
	if err != nil || year < 2000 || year > 2100 {
		return 0, false
	}
	return year, true
}
