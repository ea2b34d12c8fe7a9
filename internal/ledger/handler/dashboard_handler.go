package handler

import (
	"github.com/bitfantasy/kosu/internal/ledger/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler 汇总看板处理器
type DashboardHandler struct {
	svc *service.AggregationService
}

func NewDashboardHandler(svc *service.AggregationService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Monthly GET /dashboard/monthly?year= 或 ?period=
func (h *DashboardHandler) Monthly(c *gin.Context) {
	if period := c.Query("period"); period != "" {
		series, err := h.svc.MonthlySeriesForPeriod(c.Request.Context(), period)
		if err != nil {
			RespondServiceError(c, err)
			return
		}
		Success(c, gin.H{"period": period, "months": series})
		return
	}

	year, ok := GetYear(c)
	if !ok {
		BadRequest(c, "year or period query parameter is required")
		return
	}

	series, err := h.svc.MonthlySeries(c.Request.Context(), year)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	Success(c, gin.H{"year": year, "months": series})
}

// Yearly GET /dashboard/yearly?year=
func (h *DashboardHandler) Yearly(c *gin.Context) {
	year, ok := GetYear(c)
	if !ok {
		BadRequest(c, "year query parameter is required")
		return
	}

	summary, err := h.svc.YearlySummary(c.Request.Context(), year)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	Success(c, summary)
}
