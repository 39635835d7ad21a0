package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/careercoach/internal/models"
	"github.com/yoockh/careercoach/internal/services"
	"github.com/yoockh/careercoach/internal/utils"
)

type TechQuestionHandler struct {
	svc services.TechQuestionService
}

func NewTechQuestionHandler(svc services.TechQuestionService) *TechQuestionHandler {
	return &TechQuestionHandler{svc: svc}
}

// TechQuestionRequest entries may themselves be comma-separated, ex: ["React, Docker"].
type TechQuestionRequest struct {
	Technologies []string                `json:"technologies"`
	QuestionType models.TechQuestionKind `json:"question_type"` // theory | practical
}

func (h *TechQuestionHandler) Generate(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	var req TechQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "TechQuestionHandler.Generate", "invalid request body", err))
		return
	}

	qs, err := h.svc.GenerateTechQuestions(c.Request.Context(), req.Technologies, req.QuestionType)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": qs})
}
