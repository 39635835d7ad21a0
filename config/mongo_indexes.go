package config

import (
	"context"
	"errors"
	"time"

	mongorepo "github.com/yoockh/careercoach/internal/repositories/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	history := MongoDatabase().Collection(mongorepo.HistoryCollection)
	_, err := history.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// per-user, per-kind, newest first
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "kind", Value: 1},
				{Key: "completed_at", Value: -1},
			},
			Options: options.Index().SetName("by_user_kind_completed"),
		},
		// each run of a session completes at most once
		{
			Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "run", Value: 1}},
			Options: options.Index().
				SetName("uniq_session_run").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"session_id": bson.M{"$type": "string"}}),
		},
	})
	return err
}
