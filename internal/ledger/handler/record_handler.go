package handler

import (
	"github.com/bitfantasy/kosu/internal/ledger/service"
	"github.com/gin-gonic/gin"
)

// RecordHandler 工数录入处理器
type RecordHandler struct {
	svc *service.RecordService
}

func NewRecordHandler(svc *service.RecordService) *RecordHandler {
	return &RecordHandler{svc: svc}
}

// Upsert PUT /records
func (h *RecordHandler) Upsert(c *gin.Context) {
	var input service.UpsertRecordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	record, err := h.svc.Upsert(c.Request.Context(), &input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	Success(c, record)
}

// ListByPeriod GET /periods/:label/records
func (h *RecordHandler) ListByPeriod(c *gin.Context) {
	records, err := h.svc.ListByPeriod(c.Request.Context(), c.Param("label"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	Success(c, records)
}
