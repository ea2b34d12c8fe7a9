package handler

import (
	"github.com/bitfantasy/kosu/internal/ledger/service"
	"github.com/gin-gonic/gin"
)

// ProjectHandler 项目处理器
type ProjectHandler struct {
	svc      *service.ProjectService
	ordering *service.OrderingService
}

func NewProjectHandler(svc *service.ProjectService, ordering *service.OrderingService) *ProjectHandler {
	return &ProjectHandler{svc: svc, ordering: ordering}
}

// List GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status": c.Query("status"),
		"period": c.Query("period"),
		"search": c.Query("search"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}

// Get GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	Success(c, project)
}

// Create POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var input service.CreateProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	project, err := h.svc.Create(c.Request.Context(), &input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	Created(c, project)
}

// Update PUT /projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	var input service.UpdateProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	project, err := h.svc.Update(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	Success(c, project)
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// BulkDelete POST /projects/bulk-delete
func (h *ProjectHandler) BulkDelete(c *gin.Context) {
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.svc.BulkDelete(c.Request.Context(), req.IDs); err != nil {
		RespondServiceError(c, err)
		return
	}
	Success(c, gin.H{"deleted": len(req.IDs)})
}

type moveRequest struct {
	Period string `json:"period" binding:"required"`
}

// MoveUp POST /projects/:id/move-up
func (h *ProjectHandler) MoveUp(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.ordering.MoveUp(c.Request.Context(), c.Param("id"), req.Period); err != nil {
		RespondServiceError(c, err)
		return
	}
	Success(c, gin.H{"moved": true})
}

// MoveDown POST /projects/:id/move-down
func (h *ProjectHandler) MoveDown(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.ordering.MoveDown(c.Request.Context(), c.Param("id"), req.Period); err != nil {
		RespondServiceError(c, err)
		return
	}
	Success(c, gin.H{"moved": true})
}
