package mongo

import (
	"context"
	"time"

	"github.com/yoockh/careercoach/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const HistoryCollection = "interview_history"

type HistoryRepository interface {
	Insert(ctx context.Context, h *models.InterviewHistory) error
	ListRecent(ctx context.Context, userID, kind string, limit int64) ([]models.InterviewHistory, error)
}

type historyRepo struct {
	col *mongo.Collection
}

func NewHistoryRepo(db *mongo.Database) HistoryRepository {
	return &historyRepo{col: db.Collection(HistoryCollection)}
}

func (r *historyRepo) Insert(ctx context.Context, h *models.InterviewHistory) error {
	if h.Kind == "" {
		h.Kind = models.HistoryKindInterview
	}
	if h.CompletedAt.IsZero() {
		h.CompletedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, h)
	return err
}

func (r *historyRepo) ListRecent(ctx context.Context, userID, kind string, limit int64) ([]models.InterviewHistory, error) {
	if limit <= 0 {
		limit = 20
	}

	filter := bson.M{"user_id": userID}
	if kind != "" {
		filter["kind"] = kind
	}

	cur, err := r.col.Find(ctx, filter,
		options.Find().
			SetSort(bson.D{{Key: "completed_at", Value: -1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.InterviewHistory{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
