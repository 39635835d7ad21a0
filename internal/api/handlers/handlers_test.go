package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/careercoach/internal/catalog"
	"github.com/yoockh/careercoach/internal/extract/extracttest"
	"github.com/yoockh/careercoach/internal/interview"
	"github.com/yoockh/careercoach/internal/models"
	"github.com/yoockh/careercoach/internal/services"
	"github.com/yoockh/careercoach/internal/utils"
)

type stubQuestions struct{}

func (stubQuestions) GenerateQuestions(ctx context.Context, profession, resumeText string) ([]models.InterviewQuestion, error) {
	out := make([]models.InterviewQuestion, 15)
	for i := range out {
		out[i] = models.InterviewQuestion{Question: fmt.Sprintf("Q%d", i+1), Category: "General", Difficulty: models.DifficultyBasic}
	}
	return out, nil
}

type stubFeedback struct{}

func (stubFeedback) GenerateFeedback(ctx context.Context, profession, question, answer string) (models.AnswerFeedback, error) {
	return models.AnswerFeedback{Feedback: "ok", Score: 7}, nil
}

type stubHistory struct{ rows []models.InterviewHistory }

func (s *stubHistory) Record(ctx context.Context, h *models.InterviewHistory) error { return nil }

func (s *stubHistory) ListRecent(ctx context.Context, userID string, limit int) ([]models.InterviewHistory, error) {
	return s.rows, nil
}

// recordingResume extracts for real and records archive calls in memory.
type recordingResume struct {
	services.ResumeService
	archived []services.ResumeUpload
}

func (r *recordingResume) Archive(ctx context.Context, up services.ResumeUpload, text string) {
	r.archived = append(r.archived, up)
}

func (r *recordingResume) Latest(ctx context.Context, userID string) (*models.CVFile, error) {
	for i := len(r.archived) - 1; i >= 0; i-- {
		if r.archived[i].UserID == userID {
			return &models.CVFile{UserID: userID, FileName: r.archived[i].FileName}, nil
		}
	}
	return nil, utils.E(utils.CodeNotFound, "recordingResume.Latest", "no archived resume", nil)
}

type stubTech struct{ kinds []models.TechQuestionKind }

func (s *stubTech) GenerateTechQuestions(ctx context.Context, technologies []string, kind models.TechQuestionKind) ([]models.TechQuestion, error) {
	if len(services.SplitTechnologies(technologies...)) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, "stubTech", "at least one technology is required", nil)
	}
	s.kinds = append(s.kinds, kind)
	return []models.TechQuestion{{Question: "Explain the Docker build cache", Details: "- layers"}}, nil
}

type stubStats struct{}

func (stubStats) Stats() map[string]any { return map[string]any{"generate_questions": "closed"} }

type testServer struct {
	r      *gin.Engine
	reg    *interview.Registry
	resume *recordingResume
	tech   *stubTech
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	l := logrus.New()
	l.SetOutput(io.Discard)

	cat := catalog.Default()
	reg := interview.NewRegistry(func(id, userID string, opts interview.Options) *interview.Orchestrator {
		return interview.New(id, opts, interview.Collaborators{UserID: userID}, interview.Env{
			Questions:   stubQuestions{},
			Feedback:    stubFeedback{},
			Professions: cat,
			Logger:      l,
		})
	})

	ih := NewInterviewHandler(reg)
	resume := &recordingResume{ResumeService: services.NewResumeService(nil, nil, nil)}
	tech := &stubTech{}
	rh := NewResumeHandler(reg, resume, 0)
	hh := NewHistoryHandler(&stubHistory{rows: []models.InterviewHistory{{UserID: "alice", Profession: "Nurse", AverageScore: 8}}})

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if u := c.GetHeader("X-Test-User"); u != "" {
			c.Set("user_id", u)
			c.Set("role", c.GetHeader("X-Test-Role"))
		}
		c.Next()
	})
	r.GET("/professions", NewCatalogHandler(cat).Professions)
	r.POST("/interview", ih.Create)
	r.GET("/interview/:id", ih.Get)
	r.DELETE("/interview/:id", ih.Delete)
	r.PUT("/interview/:id/resume", ih.SetResume)
	r.POST("/interview/:id/resume/upload", rh.Upload)
	r.GET("/resume/latest", rh.Latest)
	r.POST("/tech-questions", NewTechQuestionHandler(tech).Generate)
	r.POST("/interview/:id/questions", ih.Submit)
	r.POST("/interview/:id/start", ih.Start)
	r.PUT("/interview/:id/answer", ih.SetAnswer)
	r.POST("/interview/:id/answer/submit", ih.SubmitAnswer)
	r.POST("/interview/:id/next", ih.Next)
	r.GET("/history/interviews", hh.ListInterviews)
	r.GET("/admin/llm/stats", NewAdminHandler(stubStats{}, reg, nil).LLMStats)

	return &testServer{r: r, reg: reg, resume: resume, tech: tech}
}

func (s *testServer) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func (s *testServer) upload(t *testing.T, path, user, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Test-User", user)
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) interview.Snapshot {
	t.Helper()
	var s interview.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	return s
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) APIError {
	t.Helper()
	var e APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func (s *testServer) create(t *testing.T, user string, body any) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/interview", user, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeSnapshot(t, w).SessionID
}

func TestInterviewFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t, "alice", nil)
	base := "/interview/" + id

	w := s.do(t, http.MethodPost, base+"/questions", "alice", SubmitRequest{Profession: "Nurse", InterviewType: models.InterviewText})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	require.Eventually(t, func() bool {
		return decodeSnapshot(t, s.do(t, http.MethodGet, base, "alice", nil)).Phase == interview.PhaseReadyToStart
	}, 2*time.Second, 5*time.Millisecond)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, base+"/start", "alice", nil).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, base+"/answer", "alice", AnswerRequest{Answer: "I care."}).Code)
	require.Equal(t, http.StatusAccepted, s.do(t, http.MethodPost, base+"/answer/submit", "alice", nil).Code)

	require.Eventually(t, func() bool {
		return decodeSnapshot(t, s.do(t, http.MethodGet, base, "alice", nil)).Phase == interview.PhaseFeedbackReady
	}, 2*time.Second, 5*time.Millisecond)

	w = s.do(t, http.MethodPost, base+"/next", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := decodeSnapshot(t, w)
	assert.Equal(t, 1, snap.CurrentIndex)
	assert.Equal(t, interview.PhaseInProgress, snap.Phase)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, base, "alice", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, base, "alice", nil).Code)
}

func TestInterviewOwnership(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t, "alice", nil)

	w := s.do(t, http.MethodGet, "/interview/"+id, "bob", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, utils.CodeForbidden, decodeError(t, w).Code)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/interview/"+id, "", nil).Code)
}

func TestSubmitValidationOverHTTP(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t, "alice", nil)

	w := s.do(t, http.MethodPost, "/interview/"+id+"/questions", "alice", SubmitRequest{Profession: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, utils.CodeInvalidArgument, decodeError(t, w).Code)

	snap := decodeSnapshot(t, s.do(t, http.MethodGet, "/interview/"+id, "alice", nil))
	assert.Equal(t, interview.PhaseIdle, snap.Phase)
	require.NotNil(t, snap.LastError)
}

func TestResumeUploadNonPDFKeepsPastedText(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t, "alice", CreateInterviewRequest{ResumeTailored: true})
	base := "/interview/" + id

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, base+"/resume", "alice", SetResumeRequest{ResumeText: "pasted resume"}).Code)

	w := s.upload(t, base+"/resume/upload", "alice", "cv.docx",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document", []byte("PK\x03\x04 not a pdf"))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Equal(t, utils.CodeUnsupportedFormat, decodeError(t, w).Code)

	snap := decodeSnapshot(t, s.do(t, http.MethodGet, base, "alice", nil))
	assert.Equal(t, "pasted resume", snap.Config.ResumeText)
	assert.Empty(t, s.resume.archived)
}

func TestResumeUploadPDF(t *testing.T) {
	s := newTestServer(t)
	id := s.create(t, "alice", CreateInterviewRequest{ResumeTailored: true})

	w := s.upload(t, "/interview/"+id+"/resume/upload", "alice", "cv.pdf", "application/pdf", extracttest.BuildPDF("Registered Nurse", "ICU"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Registered Nurse ICU", decodeSnapshot(t, w).Config.ResumeText)
	require.Len(t, s.resume.archived, 1)
	assert.Equal(t, id, s.resume.archived[0].SessionID)

	w = s.do(t, http.MethodGet, "/resume/latest", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cv.pdf"`)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/resume/latest", "bob", nil).Code)
}

func TestResumeUploadRejectedSessionArchivesNothing(t *testing.T) {
	s := newTestServer(t)
	pdf := extracttest.BuildPDF("Registered Nurse")

	plain := s.create(t, "alice", CreateInterviewRequest{})
	w := s.upload(t, "/interview/"+plain+"/resume/upload", "alice", "cv.pdf", "application/pdf", pdf)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, utils.CodeInvalidArgument, decodeError(t, w).Code)

	tailored := s.create(t, "alice", CreateInterviewRequest{ResumeTailored: true})
	base := "/interview/" + tailored
	require.Equal(t, http.StatusAccepted, s.do(t, http.MethodPost, base+"/questions", "alice", SubmitRequest{Profession: "Nurse"}).Code)
	w = s.upload(t, base+"/resume/upload", "alice", "cv.pdf", "application/pdf", pdf)
	assert.Equal(t, http.StatusConflict, w.Code)

	assert.Empty(t, s.resume.archived)
}

func TestTechQuestions(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/tech-questions", "alice", TechQuestionRequest{Technologies: []string{"Docker"}, QuestionType: models.TechPractical})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Docker build cache")
	assert.Equal(t, []models.TechQuestionKind{models.TechPractical}, s.tech.kinds)

	w = s.do(t, http.MethodPost, "/tech-questions", "alice", TechQuestionRequest{Technologies: []string{" , "}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/tech-questions", "", TechQuestionRequest{}).Code)
}

func TestProfessionsHistoryAdmin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/professions", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Software Engineer")

	w = s.do(t, http.MethodGet, "/history/interviews?limit=5", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"profession":"Nurse"`)

	s.create(t, "alice", nil)
	w = s.do(t, http.MethodGet, "/admin/llm/stats", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"breakers":{"generate_questions":"closed"},"active_sessions":1}`, w.Body.String())
}
