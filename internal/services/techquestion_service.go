package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/yoockh/careercoach/internal/models"
	"github.com/yoockh/careercoach/internal/providers/llm"
	"github.com/yoockh/careercoach/internal/utils"
)

const maxTechnologies = 20

type TechQuestionService interface {
	GenerateTechQuestions(ctx context.Context, technologies []string, kind models.TechQuestionKind) ([]models.TechQuestion, error)
}

type techQuestionService struct {
	llm llm.Provider
}

func NewTechQuestionService(p llm.Provider) TechQuestionService {
	return &techQuestionService{llm: p}
}

// SplitTechnologies turns "React, Docker,," into a clean list, dropping case-insensitive repeats.
func SplitTechnologies(parts ...string) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		for _, t := range strings.Split(p, ",") {
			t = strings.TrimSpace(t)
			key := strings.ToLower(t)
			if t == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, t)
		}
	}
	return out
}

func (s *techQuestionService) GenerateTechQuestions(ctx context.Context, technologies []string, kind models.TechQuestionKind) ([]models.TechQuestion, error) {
	const op = "TechQuestionService.GenerateTechQuestions"

	techs := SplitTechnologies(technologies...)
	if len(techs) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "at least one technology is required", nil)
	}
	if len(techs) > maxTechnologies {
		return nil, utils.E(utils.CodeInvalidArgument, op, "too many technologies", nil)
	}
	if kind == "" {
		kind = models.TechTheory
	}
	if !kind.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "question type must be theory or practical", nil)
	}

	raw, err := s.llm.GenerateJSON(ctx, llm.Request{
		Operation: "tech_questions",
		System:    techInterviewerSystem,
		Prompt:    techQuestionsPrompt(techs, kind),
		Schema:    techQuestionsSchema,
	})
	if err != nil {
		return nil, utils.E(utils.CodeGenerationFailed, op, "failed to generate technology questions", err)
	}

	var payload struct {
		Questions []models.TechQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, utils.E(utils.CodeGenerationFailed, op, "model returned malformed questions", err)
	}

	out := make([]models.TechQuestion, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		q.Question = strings.TrimSpace(q.Question)
		q.Details = strings.TrimSpace(q.Details)
		if q.Question == "" {
			continue
		}
		out = append(out, q)
	}
	if len(out) < models.MinTechQuestions {
		return nil, utils.E(utils.CodeGenerationFailed, op, "model returned too few questions", nil)
	}
	if len(out) > models.MaxTechQuestions {
		out = out[:models.MaxTechQuestions]
	}
	return out, nil
}
