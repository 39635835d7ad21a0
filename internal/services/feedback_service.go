package services

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"github.com/yoockh/careercoach/internal/models"
	"github.com/yoockh/careercoach/internal/providers/llm"
	"github.com/yoockh/careercoach/internal/utils"
)

type FeedbackService interface {
	GenerateFeedback(ctx context.Context, profession, question, answer string) (models.AnswerFeedback, error)
}

type feedbackService struct {
	llm llm.Provider
}

func NewFeedbackService(p llm.Provider) FeedbackService {
	return &feedbackService{llm: p}
}

func (s *feedbackService) GenerateFeedback(ctx context.Context, profession, question, answer string) (models.AnswerFeedback, error) {
	const op = "FeedbackService.GenerateFeedback"

	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return models.AnswerFeedback{}, utils.E(utils.CodeInvalidArgument, op, "question and answer are required", nil)
	}

	raw, err := s.llm.GenerateJSON(ctx, llm.Request{
		Operation: "generate_feedback",
		System:    interviewerSystem,
		Prompt:    feedbackPrompt(profession, question, answer),
		Schema:    feedbackSchema,
	})
	if err != nil {
		return models.AnswerFeedback{}, utils.E(utils.CodeGenerationFailed, op, "failed to generate feedback", err)
	}

	var payload struct {
		Feedback string  `json:"feedback"`
		Score    float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return models.AnswerFeedback{}, utils.E(utils.CodeGenerationFailed, op, "model returned malformed feedback", err)
	}
	if strings.TrimSpace(payload.Feedback) == "" {
		return models.AnswerFeedback{}, utils.E(utils.CodeGenerationFailed, op, "model returned empty feedback", nil)
	}

	return models.AnswerFeedback{
		Question: question,
		Feedback: strings.TrimSpace(payload.Feedback),
		Score:    clampScore(payload.Score),
	}, nil
}

func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 1
	}
	r := math.Round(v)
	switch {
	case r < 1:
		return 1
	case r > 10:
		return 10
	default:
		return int(r)
	}
}
