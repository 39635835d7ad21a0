package interview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/careercoach/internal/models"
	"github.com/yoockh/careercoach/internal/utils"
)

func makeQuestions(n int) []models.InterviewQuestion {
	out := make([]models.InterviewQuestion, n)
	for i := range out {
		out[i] = models.InterviewQuestion{
			Question:   fmt.Sprintf("Q%d", i+1),
			Category:   "Technical",
			Difficulty: models.DifficultyIntermediate,
		}
	}
	return out
}

type fakeQuestions struct {
	mu      sync.Mutex
	qs      []models.InterviewQuestion
	err     error
	gate    chan struct{}
	calls   int
	resumes []string
}

func (f *fakeQuestions) GenerateQuestions(ctx context.Context, profession, resumeText string) ([]models.InterviewQuestion, error) {
	f.mu.Lock()
	f.calls++
	f.resumes = append(f.resumes, resumeText)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if f.err != nil {
		return nil, utils.E(utils.CodeGenerationFailed, "fake", "generation failed", f.err)
	}
	return f.qs, nil
}

func (f *fakeQuestions) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeFeedback struct {
	mu     sync.Mutex
	scores map[string]int // by question
	err    error
	gate   chan struct{}
	calls  int
}

func (f *fakeFeedback) GenerateFeedback(ctx context.Context, profession, question, answer string) (models.AnswerFeedback, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	err := f.err
	score := f.scores[question]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return models.AnswerFeedback{}, utils.E(utils.CodeGenerationFailed, "fake", "feedback failed", err)
	}
	if score == 0 {
		score = 5
	}
	return models.AnswerFeedback{
		Feedback: fmt.Sprintf("feedback for %s: %s", question, answer),
		Score:    score,
	}, nil
}

func (f *fakeFeedback) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeFeedback) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type fakeHistory struct {
	mu     sync.Mutex
	err    error
	writes []models.SessionSummary
	users  []string
}

func (h *fakeHistory) WriteSummary(ctx context.Context, userID string, s models.SessionSummary) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writes = append(h.writes, s)
	h.users = append(h.users, userID)
	return h.err
}

func (h *fakeHistory) Writes() []models.SessionSummary {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]models.SessionSummary(nil), h.writes...)
}

type fakeReporter struct {
	mu   sync.Mutex
	errs []error
}

func (r *fakeReporter) Report(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *fakeReporter) Errs() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

type professionList []string

func (p professionList) Lookup(name string) (string, bool) {
	for _, v := range p {
		if v == name {
			return v, true
		}
	}
	return "", false
}

type harness struct {
	o        *Orchestrator
	qs       *fakeQuestions
	fb       *fakeFeedback
	history  *fakeHistory
	reporter *fakeReporter
}

func newHarness(t *testing.T, n int, opts Options) *harness {
	t.Helper()

	l := logrus.New()
	l.SetOutput(io.Discard)

	h := &harness{
		qs:       &fakeQuestions{qs: makeQuestions(n)},
		fb:       &fakeFeedback{scores: map[string]int{}},
		history:  &fakeHistory{},
		reporter: &fakeReporter{},
	}
	h.o = New("s1", opts, Collaborators{UserID: "u1", History: h.history}, Env{
		Questions:   h.qs,
		Feedback:    h.fb,
		Professions: professionList{"DevOps Engineer", "Nurse", "Chef"},
		Reporter:    h.reporter,
		Logger:      l,
		Now:         func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
	return h
}

func waitPhase(t *testing.T, o *Orchestrator, want Phase) Snapshot {
	t.Helper()
	require.Eventually(t, func() bool { return o.Snapshot().Phase == want }, 2*time.Second, 5*time.Millisecond,
		"phase never became %s", want)
	return o.Snapshot()
}

// started drives a fresh session to the first question.
func (h *harness) started(t *testing.T) {
	t.Helper()
	_, err := h.o.Submit(context.Background(), "DevOps Engineer", models.InterviewText)
	require.NoError(t, err)
	waitPhase(t, h.o, PhaseReadyToStart)
	_, err = h.o.Start()
	require.NoError(t, err)
}

// answer types text for the current question and waits for its feedback.
func (h *harness) answer(t *testing.T, text string) Snapshot {
	t.Helper()
	_, err := h.o.SetAnswer(text)
	require.NoError(t, err)
	_, err = h.o.SubmitAnswer(context.Background())
	require.NoError(t, err)
	return waitPhase(t, h.o, PhaseFeedbackReady)
}

var errUpstream = errors.New("upstream unavailable")
