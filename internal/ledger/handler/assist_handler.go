package handler

import (
	"errors"

	"github.com/bitfantasy/kosu/internal/ledger/service"
	"github.com/gin-gonic/gin"
)

// AssistHandler 描述生成代理处理器
type AssistHandler struct {
	svc *service.AssistService
}

func NewAssistHandler(svc *service.AssistService) *AssistHandler {
	return &AssistHandler{svc: svc}
}

type assistRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// Generate POST /assist
func (h *AssistHandler) Generate(c *gin.Context) {
	var req assistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	text, err := h.svc.Generate(c.Request.Context(), req.Prompt)
	if err != nil {
		if errors.Is(err, service.ErrAssistDisabled) {
			Error(c, 50300, "Assist is not configured")
			return
		}
		RespondServiceError(c, err)
		return
	}
	Success(c, gin.H{"text": text})
}
