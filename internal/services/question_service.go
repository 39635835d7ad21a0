package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/yoockh/careercoach/internal/models"
	"github.com/yoockh/careercoach/internal/providers/llm"
	"github.com/yoockh/careercoach/internal/utils"
)

const (
	MinQuestions = models.MinQuestions
	MaxQuestions = models.MaxQuestions
)

type QuestionService interface {
	GenerateQuestions(ctx context.Context, profession, resumeText string) ([]models.InterviewQuestion, error)
}

type questionService struct {
	llm llm.Provider
}

func NewQuestionService(p llm.Provider) QuestionService {
	return &questionService{llm: p}
}

type questionsPayload struct {
	Questions []struct {
		Question   string `json:"question"`
		Category   string `json:"category"`
		Difficulty string `json:"difficulty"`
	} `json:"questions"`
}

func (s *questionService) GenerateQuestions(ctx context.Context, profession, resumeText string) ([]models.InterviewQuestion, error) {
	const op = "QuestionService.GenerateQuestions"

	profession = strings.TrimSpace(profession)
	if profession == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "profession is required", nil)
	}

	raw, err := s.llm.GenerateJSON(ctx, llm.Request{
		Operation: "generate_questions",
		System:    interviewerSystem,
		Prompt:    questionsPrompt(profession, strings.TrimSpace(resumeText)),
		Schema:    questionsSchema,
	})
	if err != nil {
		return nil, utils.E(utils.CodeGenerationFailed, op, "failed to generate interview questions", err)
	}

	var payload questionsPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, utils.E(utils.CodeGenerationFailed, op, "model returned malformed questions", err)
	}

	out := make([]models.InterviewQuestion, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		text := strings.TrimSpace(q.Question)
		if text == "" {
			continue
		}
		diff, _ := models.ParseDifficulty(strings.TrimSpace(q.Difficulty))
		out = append(out, models.InterviewQuestion{
			Question:   text,
			Category:   strings.TrimSpace(q.Category),
			Difficulty: diff,
		})
	}

	if len(out) < MinQuestions {
		return nil, utils.E(utils.CodeGenerationFailed, op, "model returned too few questions", nil)
	}
	if len(out) > MaxQuestions {
		out = out[:MaxQuestions]
	}
	return out, nil
}
