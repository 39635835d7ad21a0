package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/careercoach/internal/interview"
	"github.com/yoockh/careercoach/internal/models"
	"github.com/yoockh/careercoach/internal/utils"
)

type InterviewHandler struct {
	reg *interview.Registry
}

func NewInterviewHandler(reg *interview.Registry) *InterviewHandler {
	return &InterviewHandler{reg: reg}
}

type CreateInterviewRequest struct {
	ResumeTailored bool `json:"resume_tailored"`
	VoiceEnabled   bool `json:"voice_enabled"`
	KeepDrafts     bool `json:"keep_drafts"`
}

type SetResumeRequest struct {
	ResumeText string `json:"resume_text"`
}

type SubmitRequest struct {
	Profession    string               `json:"profession"`
	InterviewType models.InterviewType `json:"interview_type"`
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

func (h *InterviewHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateInterviewRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.Create", "invalid request body", err))
			return
		}
	}

	o, err := h.reg.Create(userID, interview.Options{
		ResumeTailored: req.ResumeTailored,
		VoiceEnabled:   req.VoiceEnabled,
		KeepDrafts:     req.KeepDrafts,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o.Snapshot())
}

func (h *InterviewHandler) Get(c *gin.Context) {
	o, ok := requireSession(c, h.reg)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, o.Snapshot())
}

// Delete abandons the session; late gateway results are ignored.
func (h *InterviewHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.reg.Remove(c.Param("id"), userID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InterviewHandler) SetResume(c *gin.Context) {
	o, ok := requireSession(c, h.reg)
	if !ok {
		return
	}

	var req SetResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.SetResume", "invalid request body", err))
		return
	}
	s, err := o.SetResumeText(req.ResumeText)
	writeState(c, s, err)
}

func (h *InterviewHandler) Submit(c *gin.Context) {
	o, ok := requireSession(c, h.reg)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.Submit", "invalid request body", err))
		return
	}
	s, err := o.Submit(c.Request.Context(), req.Profession, req.InterviewType)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, s)
}

func (h *InterviewHandler) Start(c *gin.Context) {
	o, ok := requireSession(c, h.reg)
	if !ok {
		return
	}
	s, err := o.Start()
	writeState(c, s, err)
}

func (h *InterviewHandler) SetAnswer(c *gin.Context) {
	o, ok := requireSession(c, h.reg)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.SetAnswer", "invalid request body", err))
		return
	}
	s, err := o.SetAnswer(req.Answer)
	writeState(c, s, err)
}

func (h *InterviewHandler) SubmitAnswer(c *gin.Context) {
	o, ok := requireSession(c, h.reg)
	if !ok {
		return
	}
	s, err := o.SubmitAnswer(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, s)
}

func (h *InterviewHandler) Next(c *gin.Context) {
	o, ok := requireSession(c, h.reg)
	if !ok {
		return
	}
	s, err := o.Next(c.Request.Context())
	writeState(c, s, err)
}

func (h *InterviewHandler) Previous(c *gin.Context) {
	o, ok := requireSession(c, h.reg)
	if !ok {
		return
	}
	s, err := o.Previous()
	writeState(c, s, err)
}

func (h *InterviewHandler) Reset(c *gin.Context) {
	o, ok := requireSession(c, h.reg)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, o.Reset())
}
