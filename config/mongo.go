package config

import (
	"context"
	"errors"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoClient holds the interview_history collection's connection.
var MongoClient *mongo.Client

// MongoDatabase returns the configured database, "careercoach" by default.
func MongoDatabase() *mongo.Database {
	return MongoClient.Database(getEnv("MONGO_DB", "careercoach"))
}

func mongoClientOptions(uri string) *options.ClientOptions {
	return options.Client().
		ApplyURI(uri).
		SetAppName("careercoach").
		SetServerSelectionTimeout(getEnvAsDuration("MONGO_SELECT_TIMEOUT", 20*time.Second)).
		SetConnectTimeout(15 * time.Second).
		SetMaxPoolSize(uint64(getEnvAsInt("MONGO_MAX_POOL", 10))).
		SetMinPoolSize(1).
		SetRetryWrites(true)
}

// InitMongo connects using MONGO_URI and verifies the server is reachable.
func InitMongo() error {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		return errors.New("MONGO_URI environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, mongoClientOptions(uri))
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return err
	}

	MongoClient = client
	return nil
}
