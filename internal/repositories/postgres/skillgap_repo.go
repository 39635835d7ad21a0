package postgres

import (
	"context"
	"errors"

	"github.com/yoockh/careercoach/internal/models"
	"github.com/yoockh/careercoach/internal/utils"
	"gorm.io/gorm"
)

type SkillGapRepository interface {
	Insert(ctx context.Context, a *models.SkillGapAnalysis) error
	LatestByUser(ctx context.Context, userID string) (*models.SkillGapAnalysis, error)
}

type skillGapRepo struct {
	db *gorm.DB
}

func NewSkillGapRepo(db *gorm.DB) SkillGapRepository {
	return &skillGapRepo{db: db}
}

func (r *skillGapRepo) Insert(ctx context.Context, a *models.SkillGapAnalysis) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *skillGapRepo) LatestByUser(ctx context.Context, userID string) (*models.SkillGapAnalysis, error) {
	var row models.SkillGapAnalysis
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
