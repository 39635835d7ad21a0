package interview

// Phase is the orchestrator's position in the interview flow.
type Phase string

const (
	PhaseIdle                Phase = "idle"
	PhaseGeneratingQuestions Phase = "generating_questions"
	PhaseReadyToStart        Phase = "ready_to_start"
	PhaseInProgress          Phase = "in_progress"
	PhaseGettingFeedback     Phase = "getting_feedback"
	PhaseFeedbackReady       Phase = "feedback_ready"
	PhaseCompleted           Phase = "completed"
)

// answering reports whether the user is positioned on a question.
func (p Phase) answering() bool {
	return p == PhaseInProgress || p == PhaseFeedbackReady
}
