package handler

import (
	"github.com/bitfantasy/kosu/internal/ledger/service"
	"github.com/gin-gonic/gin"
)

// ExportHandler 跟踪表导出处理器
type ExportHandler struct {
	svc *service.ExportService
}

func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// Workbook GET /export/records.xlsx?year=
func (h *ExportHandler) Workbook(c *gin.Context) {
	year, ok := GetYear(c)
	if !ok {
		BadRequest(c, "year query parameter is required")
		return
	}

	f, filename, err := h.svc.Workbook(c.Request.Context(), year)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}

// CSV GET /export/records.csv?year=
func (h *ExportHandler) CSV(c *gin.Context) {
	year, ok := GetYear(c)
	if !ok {
		BadRequest(c, "year query parameter is required")
		return
	}

	data, filename, err := h.svc.CSV(c.Request.Context(), year)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Data(200, "text/csv; charset=utf-8", data)
}
