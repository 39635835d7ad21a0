package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type SkillGapAnalysis struct {
	ID            string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID        string         `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	MissingSkills pq.StringArray `gorm:"column:missing_skills;type:text[]" json:"missing_skills"`
	LearningPlan  string         `gorm:"column:learning_plan;type:text" json:"learning_plan"` // markdown

	// model name, resume length, etc.
	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
}

func (SkillGapAnalysis) TableName() string { return "skill_gap_analyses" }
