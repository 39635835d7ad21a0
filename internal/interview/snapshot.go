package interview

import (
	"github.com/yoockh/careercoach/internal/models"
	"github.com/yoockh/careercoach/internal/utils"
)

type ErrorInfo struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

// Snapshot is a consistent read of one session. Version grows with every change
// so consumers of published snapshots can drop out-of-order copies.
type Snapshot struct {
	SessionID string  `json:"session_id"`
	Version   uint64  `json:"version"`
	Phase     Phase   `json:"phase"`
	Options   Options `json:"options"`

	Config    models.SessionConfig       `json:"config"`
	Questions []models.InterviewQuestion `json:"questions,omitempty"`

	CurrentIndex    int                       `json:"current_index"`
	CurrentQuestion *models.InterviewQuestion `json:"current_question,omitempty"`
	CurrentAnswer   string                    `json:"current_answer"`
	CurrentFeedback *models.AnswerFeedback    `json:"current_feedback,omitempty"`
	Answered        int                       `json:"answered"`
	Listening       bool                      `json:"listening"`

	Summary   *models.SessionSummary `json:"summary,omitempty"`
	LastError *ErrorInfo             `json:"last_error,omitempty"`
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	s := Snapshot{
		SessionID:     o.id,
		Version:       o.version,
		Phase:         o.phase,
		Options:       o.opts,
		Config:        o.config,
		Questions:     o.questions,
		CurrentIndex:  o.index,
		CurrentAnswer: o.answer,
		Answered:      len(o.feedback),
		Listening:     o.listening,
		LastError:     o.lastErr,
	}
	if len(o.questions) > 0 && o.phase != PhaseReadyToStart {
		q := o.questions[o.index]
		s.CurrentQuestion = &q
	}
	if o.phase == PhaseFeedbackReady {
		if fb, ok := o.feedback[o.index]; ok {
			s.CurrentFeedback = &fb
		}
	}
	if o.summary != nil {
		sum := *o.summary
		s.Summary = &sum
	}
	return s
}
