package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/careercoach/internal/cache"
	"github.com/yoockh/careercoach/internal/models"
	mongorepo "github.com/yoockh/careercoach/internal/repositories/mongo"
	"github.com/yoockh/careercoach/internal/utils"
)

const (
	historyCacheTTL = 5 * time.Minute
	historyCacheMax = 50
)

type HistoryService interface {
	Record(ctx context.Context, h *models.InterviewHistory) error
	ListRecent(ctx context.Context, userID string, limit int) ([]models.InterviewHistory, error)
}

type historyService struct {
	repo  mongorepo.HistoryRepository
	cache cache.Cache // optional
	log   *logrus.Logger
}

func NewHistoryService(repo mongorepo.HistoryRepository, c cache.Cache, l *logrus.Logger) HistoryService {
	if l == nil {
		l = logrus.New()
	}
	return &historyService{repo: repo, cache: c, log: l}
}

func historyKey(userID string) string { return cache.Key("history", userID) }

func (s *historyService) Record(ctx context.Context, h *models.InterviewHistory) error {
	const op = "HistoryService.Record"

	if h == nil || h.UserID == "" || h.Profession == "" {
		return utils.E(utils.CodeInvalidArgument, op, "user_id and profession are required", nil)
	}
	if err := s.repo.Insert(ctx, h); err != nil {
		return utils.E(utils.CodeHistoryWriteFailed, op, "failed to save interview history", err)
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, historyKey(h.UserID)); err != nil {
			s.log.WithError(err).WithField("user_id", h.UserID).Warn("history cache invalidation failed")
		}
	}
	return nil
}

func (s *historyService) ListRecent(ctx context.Context, userID string, limit int) ([]models.InterviewHistory, error) {
	const op = "HistoryService.ListRecent"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if limit <= 0 || limit > historyCacheMax {
		limit = 20
	}

	key := historyKey(userID)
	if s.cache != nil {
		var cached []models.InterviewHistory
		hit, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.log.WithError(err).Warn("history cache read failed")
		}
		if hit {
			return head(cached, limit), nil
		}
	}

	// cache the widest page so every limit can be served from one entry
	rows, err := s.repo.ListRecent(ctx, userID, models.HistoryKindInterview, historyCacheMax)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list interview history", err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, rows, historyCacheTTL); err != nil {
			s.log.WithError(err).Warn("history cache write failed")
		}
	}
	return head(rows, limit), nil
}

func head(rows []models.InterviewHistory, n int) []models.InterviewHistory {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}
