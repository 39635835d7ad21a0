package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/careercoach/internal/services"
	"github.com/yoockh/careercoach/internal/utils"
)

type SkillGapHandler struct {
	svc services.SkillGapService
}

func NewSkillGapHandler(svc services.SkillGapService) *SkillGapHandler {
	return &SkillGapHandler{svc: svc}
}

type SkillGapRequest struct {
	ResumeText string `json:"resume_text"`
}

func (h *SkillGapHandler) Identify(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req SkillGapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "SkillGapHandler.Identify", "invalid request body", err))
		return
	}

	row, err := h.svc.Identify(c.Request.Context(), userID, req.ResumeText)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *SkillGapHandler) Latest(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	row, err := h.svc.Latest(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}
