package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/careercoach/internal/reporting"
	"github.com/yoockh/careercoach/internal/utils"
)

type StatsSource interface {
	Stats() map[string]any
}

type FailureSource interface {
	Snapshot() ([]reporting.Failure, map[utils.Code]int)
}

type AdminHandler struct {
	llm      StatsSource
	sessions interface{ Len() int }
	failures FailureSource
}

func NewAdminHandler(llm StatsSource, sessions interface{ Len() int }, failures FailureSource) *AdminHandler {
	return &AdminHandler{llm: llm, sessions: sessions, failures: failures}
}

func (h *AdminHandler) LLMStats(c *gin.Context) {
	body := gin.H{
		"breakers":        h.llm.Stats(),
		"active_sessions": h.sessions.Len(),
	}
	if h.failures != nil {
		recent, counts := h.failures.Snapshot()
		body["background_failures"] = gin.H{"recent": recent, "counts": counts}
	}
	c.JSON(http.StatusOK, body)
}
