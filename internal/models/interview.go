package models

import "time"

// Bounds on the number of questions in one interview.
const (
	MinQuestions = 15
	MaxQuestions = 25
)

type Difficulty string

const (
	DifficultyBasic        Difficulty = "Basic"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// ParseDifficulty maps loosely formatted model output onto the known levels.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch Difficulty(s) {
	case DifficultyBasic, DifficultyIntermediate, DifficultyAdvanced:
		return Difficulty(s), true
	}
	return DifficultyIntermediate, false
}

type InterviewType string

const (
	InterviewText  InterviewType = "text"
	InterviewVoice InterviewType = "voice"
)

func (t InterviewType) Valid() bool {
	return t == InterviewText || t == InterviewVoice
}

type InterviewQuestion struct {
	Question   string     `json:"question"`
	Category   string     `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
}

type AnswerFeedback struct {
	Question string `json:"question"`
	Feedback string `json:"feedback"` // markdown
	Score    int    `json:"score"`    // 1..10
}

type SessionConfig struct {
	Profession    string        `json:"profession"`
	InterviewType InterviewType `json:"interview_type"`
	ResumeText    string        `json:"resume_text,omitempty"`
}

type SessionSummary struct {
	SessionID      string    `json:"session_id"`
	Run            int       `json:"run"` // 1 for the first run, +1 after every reset
	Profession     string    `json:"profession"`
	AverageScore   float64   `json:"average_score"`
	Answered       int       `json:"answered"`
	TotalQuestions int       `json:"total_questions"`
	CompletedAt    time.Time `json:"completed_at"`
}
