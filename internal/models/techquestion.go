package models

// Bounds on the number of items in one technology question set.
const (
	MinTechQuestions = 5
	MaxTechQuestions = 7
)

type TechQuestionKind string

const (
	TechTheory    TechQuestionKind = "theory"
	TechPractical TechQuestionKind = "practical"
)

func (k TechQuestionKind) Valid() bool {
	return k == TechTheory || k == TechPractical
}

// TechQuestion is a conceptual question, or the title of a hands-on task, with
// markdown details: key concepts for theory, a step-by-step guide for practical.
type TechQuestion struct {
	Question string `json:"question"`
	Details  string `json:"details"`
}
