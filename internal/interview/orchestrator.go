// Package interview runs the mock-interview state machine for one session.
//
// All mutation is serialized behind a mutex. Gateway calls run in their own
// goroutines and report back through a generation token: a result produced for
// an older generation (the session was reset or removed meanwhile) is dropped.
package interview

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/careercoach/internal/models"
	"github.com/yoockh/careercoach/internal/reporting"
	"github.com/yoockh/careercoach/internal/utils"
)

type QuestionGateway interface {
	GenerateQuestions(ctx context.Context, profession, resumeText string) ([]models.InterviewQuestion, error)
}

type FeedbackGateway interface {
	GenerateFeedback(ctx context.Context, profession, question, answer string) (models.AnswerFeedback, error)
}

// HistoryWriter receives the summary of a completed session.
type HistoryWriter interface {
	WriteSummary(ctx context.Context, userID string, s models.SessionSummary) error
}

// ProfessionSet resolves user input to a catalog entry.
type ProfessionSet interface {
	Lookup(name string) (string, bool)
}

// Options replaces the per-variant screens with flags.
type Options struct {
	ResumeTailored bool `json:"resume_tailored"`
	VoiceEnabled   bool `json:"voice_enabled"`
	// KeepDrafts keeps unsubmitted answers when navigating away from a question.
	KeepDrafts bool `json:"keep_drafts"`
}

// Collaborators is the identity and persistence context of one session.
type Collaborators struct {
	UserID  string
	History HistoryWriter
}

type Env struct {
	Questions   QuestionGateway
	Feedback    FeedbackGateway
	Professions ProfessionSet // nil accepts any non-empty profession
	Reporter    reporting.Reporter
	Logger      *logrus.Logger

	// OnChange observes every accepted change, outside the lock.
	OnChange func(Snapshot)

	Now func() time.Time
}

type Orchestrator struct {
	id     string
	opts   Options
	collab Collaborators
	env    Env
	log    *logrus.Entry

	mu        sync.Mutex
	gen       uint64
	run       int // bumped by Reset; pairs with id to name one completed run
	version   uint64
	phase     Phase
	config    models.SessionConfig
	questions []models.InterviewQuestion
	index     int
	answer    string
	feedback  map[int]models.AnswerFeedback
	answers   map[int]string // answers that received feedback
	drafts    map[int]string // only with KeepDrafts
	listening bool
	typed     string // answer before listening, restored if nothing was heard
	heard     bool
	summary   *models.SessionSummary
	lastErr   *ErrorInfo

	pending sync.WaitGroup
}

func New(id string, opts Options, collab Collaborators, env Env) *Orchestrator {
	if env.Logger == nil {
		env.Logger = logrus.New()
	}
	if env.Now == nil {
		env.Now = time.Now
	}
	return &Orchestrator{
		id:     id,
		opts:   opts,
		collab: collab,
		env:    env,
		log: env.Logger.WithFields(logrus.Fields{
			"session_id": id,
			"user_id":    collab.UserID,
		}),
		phase:    PhaseIdle,
		run:      1,
		feedback: map[int]models.AnswerFeedback{},
		answers:  map[int]string{},
		drafts:   map[int]string{},
	}
}

func (o *Orchestrator) ID() string { return o.id }

func (o *Orchestrator) UserID() string { return o.collab.UserID }

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Wait blocks until every gateway call and history write issued so far has returned.
func (o *Orchestrator) Wait() { o.pending.Wait() }

// AcceptsResume reports whether SetResumeText would currently be accepted.
func (o *Orchestrator) AcceptsResume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resumeCheckLocked("Orchestrator.AcceptsResume")
}

func (o *Orchestrator) resumeCheckLocked(op string) error {
	if !o.opts.ResumeTailored {
		return utils.E(utils.CodeInvalidArgument, op, "resume tailoring is disabled for this session", nil)
	}
	if o.phase != PhaseIdle {
		return utils.E(utils.CodeConflict, op, "resume can only be changed before questions are generated", nil)
	}
	return nil
}

// SetResumeText stores pasted or extracted resume text for the next Submit.
func (o *Orchestrator) SetResumeText(text string) (Snapshot, error) {
	o.mu.Lock()
	if err := o.resumeCheckLocked("Orchestrator.SetResumeText"); err != nil {
		o.mu.Unlock()
		return o.Snapshot(), err
	}
	o.config.ResumeText = strings.TrimSpace(text)
	o.lastErr = nil
	return o.commit()
}

// Submit validates the setup and asks the question gateway for a question set.
func (o *Orchestrator) Submit(ctx context.Context, profession string, interviewType models.InterviewType) (Snapshot, error) {
	const op = "Orchestrator.Submit"

	o.mu.Lock()
	if o.phase != PhaseIdle {
		o.mu.Unlock()
		return o.Snapshot(), utils.E(utils.CodeConflict, op, "questions were already requested", nil)
	}

	profession = strings.TrimSpace(profession)
	if profession == "" {
		return o.rejectLocked(utils.E(utils.CodeInvalidArgument, op, "profession is required", nil))
	}
	if o.env.Professions != nil {
		canonical, ok := o.env.Professions.Lookup(profession)
		if !ok {
			return o.rejectLocked(utils.E(utils.CodeInvalidArgument, op, "unknown profession", nil))
		}
		profession = canonical
	}

	if interviewType == "" {
		interviewType = models.InterviewText
	}
	if !interviewType.Valid() {
		return o.rejectLocked(utils.E(utils.CodeInvalidArgument, op, "interview type must be text or voice", nil))
	}
	if interviewType == models.InterviewVoice && !o.opts.VoiceEnabled {
		return o.rejectLocked(utils.E(utils.CodeInvalidArgument, op, "voice interviews are disabled for this session", nil))
	}
	if o.env.Questions == nil {
		return o.rejectLocked(utils.E(utils.CodeUnavailable, op, "question generation is not configured", nil))
	}

	o.config.Profession = profession
	o.config.InterviewType = interviewType
	resume := ""
	if o.opts.ResumeTailored {
		resume = o.config.ResumeText
	}

	o.gen++
	token := o.gen
	o.phase = PhaseGeneratingQuestions
	o.lastErr = nil

	o.pending.Add(1)
	go o.generateQuestions(context.WithoutCancel(ctx), token, profession, resume)

	return o.commit()
}

func (o *Orchestrator) generateQuestions(ctx context.Context, token uint64, profession, resume string) {
	defer o.pending.Done()
	const op = "Orchestrator.generateQuestions"

	qs, err := o.env.Questions.GenerateQuestions(ctx, profession, resume)

	o.mu.Lock()
	if o.gen != token || o.phase != PhaseGeneratingQuestions {
		o.mu.Unlock()
		o.log.WithField("op", op).Debug("dropping stale question result")
		return
	}

	if err == nil && len(qs) < models.MinQuestions {
		err = utils.E(utils.CodeGenerationFailed, op, "too few questions generated", nil)
	}
	if err != nil {
		o.log.WithError(err).WithField("op", op).Warn("question generation failed")
		// pasted resume text is user input and survives; the submitted setup does not
		o.phase = PhaseIdle
		o.questions = nil
		o.config.Profession = ""
		o.config.InterviewType = ""
		o.lastErr = errorInfo(err, utils.CodeGenerationFailed)
		o.commit()
		return
	}

	if len(qs) > models.MaxQuestions {
		qs = qs[:models.MaxQuestions]
	}
	o.questions = append([]models.InterviewQuestion(nil), qs...)
	o.index = 0
	o.phase = PhaseReadyToStart
	o.log.WithFields(logrus.Fields{
		"op":        op,
		"questions": len(qs),
	}).Info("questions ready")
	o.commit()
}

// Start begins answering from the first question.
func (o *Orchestrator) Start() (Snapshot, error) {
	const op = "Orchestrator.Start"

	o.mu.Lock()
	if o.phase != PhaseReadyToStart {
		o.mu.Unlock()
		return o.Snapshot(), utils.E(utils.CodeConflict, op, "interview is not ready to start", nil)
	}
	o.index = 0
	o.answer = ""
	o.feedback = map[int]models.AnswerFeedback{}
	o.answers = map[int]string{}
	o.drafts = map[int]string{}
	o.phase = PhaseInProgress
	o.lastErr = nil
	return o.commit()
}

// SetAnswer replaces the typed answer. Typing is refused while listening.
func (o *Orchestrator) SetAnswer(text string) (Snapshot, error) {
	const op = "Orchestrator.SetAnswer"

	o.mu.Lock()
	if o.phase != PhaseInProgress {
		o.mu.Unlock()
		return o.Snapshot(), utils.E(utils.CodeConflict, op, "no question is awaiting an answer", nil)
	}
	if o.listening {
		o.mu.Unlock()
		return o.Snapshot(), utils.E(utils.CodeConflict, op, "answer is read-only while listening", nil)
	}
	o.answer = text
	o.lastErr = nil
	return o.commit()
}

// SubmitAnswer sends the current answer to the feedback gateway.
func (o *Orchestrator) SubmitAnswer(ctx context.Context) (Snapshot, error) {
	const op = "Orchestrator.SubmitAnswer"

	o.mu.Lock()
	if o.phase != PhaseInProgress {
		o.mu.Unlock()
		return o.Snapshot(), utils.E(utils.CodeConflict, op, "no question is awaiting an answer", nil)
	}
	if o.listening {
		o.mu.Unlock()
		return o.Snapshot(), utils.E(utils.CodeConflict, op, "stop listening before submitting", nil)
	}
	answer := strings.TrimSpace(o.answer)
	if answer == "" {
		return o.rejectLocked(utils.E(utils.CodeInvalidArgument, op, "answer is required", nil))
	}
	if o.env.Feedback == nil {
		return o.rejectLocked(utils.E(utils.CodeUnavailable, op, "feedback generation is not configured", nil))
	}

	o.gen++
	token := o.gen
	idx := o.index
	question := o.questions[idx].Question
	profession := o.config.Profession
	o.phase = PhaseGettingFeedback
	o.lastErr = nil

	o.pending.Add(1)
	go o.generateFeedback(context.WithoutCancel(ctx), token, idx, profession, question, answer)

	return o.commit()
}

func (o *Orchestrator) generateFeedback(ctx context.Context, token uint64, idx int, profession, question, answer string) {
	defer o.pending.Done()
	const op = "Orchestrator.generateFeedback"

	fb, err := o.env.Feedback.GenerateFeedback(ctx, profession, question, answer)

	o.mu.Lock()
	if o.gen != token || o.phase != PhaseGettingFeedback || o.index != idx {
		o.mu.Unlock()
		o.log.WithField("op", op).Debug("dropping stale feedback result")
		return
	}

	if err != nil {
		// the typed answer stays in place for another attempt
		o.log.WithError(err).WithFields(logrus.Fields{"op": op, "index": idx}).Warn("feedback generation failed")
		o.phase = PhaseInProgress
		o.lastErr = errorInfo(err, utils.CodeGenerationFailed)
		o.commit()
		return
	}

	fb.Question = question
	o.feedback[idx] = fb
	o.answers[idx] = o.answer
	delete(o.drafts, idx)
	o.phase = PhaseFeedbackReady
	o.commit()
}

// Next moves past a question that has feedback. Leaving the last question
// completes the session.
func (o *Orchestrator) Next(ctx context.Context) (Snapshot, error) {
	const op = "Orchestrator.Next"

	o.mu.Lock()
	if o.phase != PhaseFeedbackReady {
		o.mu.Unlock()
		return o.Snapshot(), utils.E(utils.CodeConflict, op, "answer the current question first", nil)
	}
	if o.listening {
		o.mu.Unlock()
		return o.Snapshot(), utils.E(utils.CodeConflict, op, "stop listening before moving on", nil)
	}
	o.lastErr = nil

	if o.index == len(o.questions)-1 {
		o.completeLocked(ctx)
		return o.commit()
	}

	o.moveLocked(o.index + 1)
	return o.commit()
}

// Previous steps back one question, never below the first.
func (o *Orchestrator) Previous() (Snapshot, error) {
	const op = "Orchestrator.Previous"

	o.mu.Lock()
	if !o.phase.answering() {
		o.mu.Unlock()
		return o.Snapshot(), utils.E(utils.CodeConflict, op, "no question to go back from", nil)
	}
	if o.listening {
		o.mu.Unlock()
		return o.Snapshot(), utils.E(utils.CodeConflict, op, "stop listening before moving back", nil)
	}
	if o.index == 0 {
		s := o.snapshotLocked()
		o.mu.Unlock()
		return s, nil
	}
	o.lastErr = nil
	o.moveLocked(o.index - 1)
	return o.commit()
}

func (o *Orchestrator) moveLocked(to int) {
	if o.phase == PhaseInProgress && o.opts.KeepDrafts && o.answer != "" {
		o.drafts[o.index] = o.answer
	}

	o.index = to
	if _, ok := o.feedback[to]; ok {
		o.answer = o.answers[to]
		o.phase = PhaseFeedbackReady
		return
	}
	o.answer = o.drafts[to]
	o.phase = PhaseInProgress
}

func (o *Orchestrator) completeLocked(ctx context.Context) {
	o.phase = PhaseCompleted
	if o.summary != nil {
		return
	}

	total := 0
	for _, fb := range o.feedback {
		total += fb.Score
	}
	sum := models.SessionSummary{
		SessionID:      o.id,
		Run:            o.run,
		Profession:     o.config.Profession,
		Answered:       len(o.feedback),
		TotalQuestions: len(o.questions),
		CompletedAt:    o.env.Now().UTC(),
	}
	if len(o.feedback) > 0 {
		sum.AverageScore = float64(total) / float64(len(o.feedback))
	}
	o.summary = &sum

	o.log.WithFields(logrus.Fields{
		"profession":    sum.Profession,
		"average_score": sum.AverageScore,
	}).Info("interview completed")

	if o.collab.History == nil {
		return
	}
	o.pending.Add(1)
	go o.writeSummary(context.WithoutCancel(ctx), sum)
}

func (o *Orchestrator) writeSummary(ctx context.Context, sum models.SessionSummary) {
	defer o.pending.Done()
	const op = "Orchestrator.writeSummary"

	if err := o.collab.History.WriteSummary(ctx, o.collab.UserID, sum); err != nil {
		if o.env.Reporter != nil {
			o.env.Reporter.Report(utils.E(utils.CodeHistoryWriteFailed, op, "failed to record interview history", err))
			return
		}
		o.log.WithError(err).WithField("op", op).Error("history write failed")
	}
}

// Reset discards the session and returns to idle. Results still in flight are ignored.
func (o *Orchestrator) Reset() Snapshot {
	o.mu.Lock()
	o.gen++
	o.run++
	o.phase = PhaseIdle
	o.config = models.SessionConfig{}
	o.questions = nil
	o.index = 0
	o.answer = ""
	o.feedback = map[int]models.AnswerFeedback{}
	o.answers = map[int]string{}
	o.drafts = map[int]string{}
	o.listening = false
	o.typed = ""
	o.heard = false
	o.summary = nil
	o.lastErr = nil
	s, _ := o.commit()
	return s
}

// BeginListening makes the answer follow the speech transcript.
func (o *Orchestrator) BeginListening() (Snapshot, error) {
	const op = "Orchestrator.BeginListening"

	o.mu.Lock()
	if !o.opts.VoiceEnabled {
		o.mu.Unlock()
		return o.Snapshot(), utils.E(utils.CodeInvalidArgument, op, "voice input is disabled for this session", nil)
	}
	if o.phase != PhaseInProgress {
		o.mu.Unlock()
		return o.Snapshot(), utils.E(utils.CodeConflict, op, "no question is awaiting an answer", nil)
	}
	if o.listening {
		s := o.snapshotLocked()
		o.mu.Unlock()
		return s, nil
	}
	o.listening = true
	o.typed = o.answer
	o.heard = false
	o.answer = ""
	o.lastErr = nil
	return o.commit()
}

// EndListening returns the answer to typed input. If no speech was recognized the
// answer typed before listening comes back. Calling it twice is harmless.
func (o *Orchestrator) EndListening() Snapshot {
	o.mu.Lock()
	if !o.listening {
		s := o.snapshotLocked()
		o.mu.Unlock()
		return s
	}
	o.listening = false
	if !o.heard && o.phase == PhaseInProgress {
		o.answer = o.typed
	}
	o.typed = ""
	s, _ := o.commit()
	return s
}

// ApplyTranscript replaces the answer with the latest transcript.
func (o *Orchestrator) ApplyTranscript(text string) (Snapshot, error) {
	const op = "Orchestrator.ApplyTranscript"

	o.mu.Lock()
	if !o.listening || o.phase != PhaseInProgress {
		o.mu.Unlock()
		return o.Snapshot(), utils.E(utils.CodeConflict, op, "not listening", nil)
	}
	if text != "" {
		o.heard = true
	}
	o.answer = text
	return o.commit()
}

// ReportError records a transient error that did not change the phase, ex: a speech failure.
func (o *Orchestrator) ReportError(err error) Snapshot {
	o.mu.Lock()
	o.lastErr = errorInfo(err, utils.CodeInternal)
	s, _ := o.commit()
	return s
}

// rejectLocked records err as the transient error and unlocks.
func (o *Orchestrator) rejectLocked(err error) (Snapshot, error) {
	o.lastErr = errorInfo(err, utils.CodeInternal)
	s, _ := o.commit()
	return s, err
}

// commit bumps the version, unlocks, and notifies the observer.
func (o *Orchestrator) commit() (Snapshot, error) {
	o.version++
	s := o.snapshotLocked()
	o.mu.Unlock()

	if o.env.OnChange != nil {
		o.env.OnChange(s)
	}
	return s, nil
}

func errorInfo(err error, fallback utils.Code) *ErrorInfo {
	code := utils.CodeOf(err)
	if code == utils.CodeInternal {
		code = fallback
	}
	return &ErrorInfo{Code: code, Message: utils.Message(err)}
}
