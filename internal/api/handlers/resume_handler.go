package handlers

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/careercoach/internal/interview"
	"github.com/yoockh/careercoach/internal/services"
	"github.com/yoockh/careercoach/internal/utils"
)

type ResumeHandler struct {
	reg      *interview.Registry
	svc      services.ResumeService
	maxBytes int64
}

func NewResumeHandler(reg *interview.Registry, svc services.ResumeService, maxBytes int64) *ResumeHandler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &ResumeHandler{reg: reg, svc: svc, maxBytes: maxBytes}
}

// Upload extracts the PDF text into the session and archives the file once the
// session has taken it. A failed extraction leaves whatever resume text the
// session already had.
func (h *ResumeHandler) Upload(c *gin.Context) {
	const op = "ResumeHandler.Upload"

	o, ok := requireSession(c, h.reg)
	if !ok {
		return
	}
	if err := o.AcceptsResume(); err != nil {
		writeError(c, err)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "missing multipart field 'file'", err))
		return
	}
	if fh.Size <= 0 || fh.Size > h.maxBytes {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "file is empty or too large", nil))
		return
	}

	mediaType := fh.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = mime.TypeByExtension(strings.ToLower(filepath.Ext(fh.Filename)))
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes))
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read upload", err))
		return
	}

	up := services.ResumeUpload{
		UserID:    o.UserID(),
		SessionID: o.ID(),
		FileName:  filepath.Base(fh.Filename),
		MediaType: mediaType,
		Data:      data,
	}
	text, err := h.svc.Extract(c.Request.Context(), up)
	if err != nil {
		writeError(c, err)
		return
	}

	s, err := o.SetResumeText(text)
	if err != nil {
		writeError(c, err)
		return
	}
	h.svc.Archive(c.Request.Context(), up, text)
	c.JSON(http.StatusOK, s)
}

// Latest returns metadata of the caller's most recently archived resume.
func (h *ResumeHandler) Latest(c *gin.Context) {
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
