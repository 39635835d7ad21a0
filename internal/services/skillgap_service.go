package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/yoockh/careercoach/internal/models"
	"github.com/yoockh/careercoach/internal/providers/llm"
	pgrepo "github.com/yoockh/careercoach/internal/repositories/postgres"
	"github.com/yoockh/careercoach/internal/utils"
	"gorm.io/datatypes"
)

const (
	MinSkillGapResumeChars = 50
	maxMissingSkills       = 5
)

type SkillGapService interface {
	Identify(ctx context.Context, userID, resumeText string) (*models.SkillGapAnalysis, error)
	Latest(ctx context.Context, userID string) (*models.SkillGapAnalysis, error)
}

type skillGapService struct {
	llm  llm.Provider
	repo pgrepo.SkillGapRepository
}

func NewSkillGapService(p llm.Provider, repo pgrepo.SkillGapRepository) SkillGapService {
	return &skillGapService{llm: p, repo: repo}
}

func (s *skillGapService) Identify(ctx context.Context, userID, resumeText string) (*models.SkillGapAnalysis, error) {
	const op = "SkillGapService.Identify"

	resumeText = strings.TrimSpace(resumeText)
	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if utf8.RuneCountInString(resumeText) < MinSkillGapResumeChars {
		return nil, utils.E(utils.CodeInvalidArgument, op, "resume text must be at least 50 characters", nil)
	}

	raw, err := s.llm.GenerateJSON(ctx, llm.Request{
		Operation: "skill_gap",
		System:    "You are a career coach. Respond only with JSON that matches the provided schema.",
		Prompt:    skillGapPrompt(resumeText),
		Schema:    skillGapSchema,
	})
	if err != nil {
		return nil, utils.E(utils.CodeGenerationFailed, op, "failed to analyze skill gaps", err)
	}

	var payload struct {
		MissingSkills []string `json:"missingSkills"`
		LearningPlan  string   `json:"learningPlan"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, utils.E(utils.CodeGenerationFailed, op, "model returned malformed analysis", err)
	}

	skills := make([]string, 0, len(payload.MissingSkills))
	for _, sk := range payload.MissingSkills {
		if sk = strings.TrimSpace(sk); sk != "" {
			skills = append(skills, sk)
		}
	}
	if len(skills) == 0 || strings.TrimSpace(payload.LearningPlan) == "" {
		return nil, utils.E(utils.CodeGenerationFailed, op, "model returned an incomplete analysis", nil)
	}
	if len(skills) > maxMissingSkills {
		skills = skills[:maxMissingSkills]
	}

	meta, _ := json.Marshal(map[string]any{
		"resume_chars": utf8.RuneCountInString(resumeText),
	})

	row := &models.SkillGapAnalysis{
		ID:            uuid.NewString(),
		UserID:        userID,
		MissingSkills: pq.StringArray(skills),
		LearningPlan:  strings.TrimSpace(payload.LearningPlan),
		Metadata:      datatypes.JSON(meta),
		CreatedAt:     time.Now().UTC(),
	}
	if s.repo != nil {
		if err := s.repo.Insert(ctx, row); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to persist skill gap analysis", err)
		}
	}
	return row, nil
}

func (s *skillGapService) Latest(ctx context.Context, userID string) (*models.SkillGapAnalysis, error) {
	const op = "SkillGapService.Latest"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if s.repo == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "skill gap storage is not configured", nil)
	}

	row, err := s.repo.LatestByUser(ctx, userID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "no skill gap analysis yet", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load skill gap analysis", err)
	}
	return row, nil
}
