package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const HistoryKindInterview = "interview"

// InterviewHistory is one completed mock interview, append-only.
type InterviewHistory struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Kind      string             `bson:"kind" json:"kind"` // interview
	SessionID string             `bson:"session_id" json:"session_id"`
	Run       int                `bson:"run" json:"run"`

	Profession     string  `bson:"profession" json:"profession"`
	AverageScore   float64 `bson:"average_score" json:"average_score"`
	Answered       int     `bson:"answered" json:"answered"`
	TotalQuestions int     `bson:"total_questions" json:"total_questions"`

	CompletedAt time.Time `bson:"completed_at" json:"completed_at"` // server assigned
}
