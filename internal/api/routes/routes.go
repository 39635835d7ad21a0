package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/careercoach/internal/api/handlers"
	"github.com/yoockh/careercoach/internal/api/middleware"
)

type Deps struct {
	Auth middleware.JWTConfig

	Catalog       *handlers.CatalogHandler
	Interview     *handlers.InterviewHandler
	Resume        *handlers.ResumeHandler
	History       *handlers.HistoryHandler
	SkillGap      *handlers.SkillGapHandler
	TechQuestions *handlers.TechQuestionHandler
	Admin         *handlers.AdminHandler
	WS            *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth(d.Auth))

	auth.GET("/professions", d.Catalog.Professions)

	iv := auth.Group("/interview")
	iv.POST("", d.Interview.Create)
	iv.GET("/:id", d.Interview.Get)
	iv.DELETE("/:id", d.Interview.Delete)
	iv.PUT("/:id/resume", d.Interview.SetResume)
	iv.POST("/:id/resume/upload", d.Resume.Upload)
	iv.POST("/:id/questions", d.Interview.Submit)
	iv.POST("/:id/start", d.Interview.Start)
	iv.PUT("/:id/answer", d.Interview.SetAnswer)
	iv.POST("/:id/answer/submit", d.Interview.SubmitAnswer)
	iv.POST("/:id/next", d.Interview.Next)
	iv.POST("/:id/previous", d.Interview.Previous)
	iv.POST("/:id/reset", d.Interview.Reset)

	auth.GET("/resume/latest", d.Resume.Latest)

	if d.History != nil {
		auth.GET("/history/interviews", d.History.ListInterviews)
	}
	if d.SkillGap != nil {
		auth.POST("/skills/gap", d.SkillGap.Identify)
		auth.GET("/skills/gap/latest", d.SkillGap.Latest)
	}

	if d.TechQuestions != nil {
		auth.POST("/tech-questions", d.TechQuestions.Generate)
	}

	admin := auth.Group("/admin", middleware.RequireAdmin())
	admin.GET("/llm/stats", d.Admin.LLMStats)

	// WebSocket
	auth.GET("/ws/interview/:id", d.WS.InterviewWS)
}
