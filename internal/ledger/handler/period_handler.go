package handler

import (
	"github.com/bitfantasy/kosu/internal/ledger/service"
	"github.com/gin-gonic/gin"
)

// PeriodHandler 半期处理器
type PeriodHandler struct {
	svc *service.PeriodService
}

func NewPeriodHandler(svc *service.PeriodService) *PeriodHandler {
	return &PeriodHandler{svc: svc}
}

// List GET /periods
func (h *PeriodHandler) List(c *gin.Context) {
	periods, err := h.svc.List(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	Success(c, periods)
}

type createPeriodRequest struct {
	Year       int      `json:"year" binding:"required"`
	Half       string   `json:"half" binding:"required"`
	ProjectIDs []string `json:"project_ids"`
}

// Create POST /periods
func (h *PeriodHandler) Create(c *gin.Context) {
	var req createPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req.Year, req.Half, req.ProjectIDs)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	Created(c, result)
}

type projectIDsRequest struct {
	ProjectIDs []string `json:"project_ids"`
}

// ReplaceProjects PUT /periods/:label/projects
func (h *PeriodHandler) ReplaceProjects(c *gin.Context) {
	var req projectIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	if err := h.svc.ReplaceProjects(c.Request.Context(), c.Param("label"), req.ProjectIDs); err != nil {
		RespondServiceError(c, err)
		return
	}
	Success(c, gin.H{"linked": len(req.ProjectIDs)})
}

// Delete DELETE /periods/:label
func (h *PeriodHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("label")); err != nil {
		RespondServiceError(c, err)
		return
	}
	Success(c, gin.H{"deleted": true})
}

// CarryOver POST /periods/:label/carry-over
func (h *PeriodHandler) CarryOver(c *gin.Context) {
	var req projectIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	linked, err := h.svc.CarryOver(c.Request.Context(), c.Param("label"), req.ProjectIDs)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	Success(c, gin.H{"linked": linked})
}

type linkPricesRequest struct {
	PlanPrice   *float64 `json:"plan_price"`
	ActualPrice *float64 `json:"actual_price"`
}

// UpdateLinkPrices PUT /periods/:label/projects/:id/prices
func (h *PeriodHandler) UpdateLinkPrices(c *gin.Context) {
	var req linkPricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	err := h.svc.UpdateLinkPrices(c.Request.Context(), c.Param("label"), c.Param("id"), req.PlanPrice, req.ActualPrice)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	Success(c, gin.H{"updated": true})
}

// DiagnoseOrphans GET /diagnostics/orphans
func (h *PeriodHandler) DiagnoseOrphans(c *gin.Context) {
	records, err := h.svc.DiagnoseOrphans(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	Success(c, gin.H{"count": len(records), "records": records})
}
