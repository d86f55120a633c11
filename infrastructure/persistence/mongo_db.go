package persistence

import (
	"context"
	"time"

	"youtube-etl/domain/errs"
	"youtube-etl/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// NewMongoDb connects to uri and verifies the connection with a ping.
func NewMongoDb(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second))
	if err != nil {
		return nil, errs.Store("connect mongo", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errs.Store("ping mongo", err)
	}
	logger.GetLogger().Info("MongoDB connected successfully")
	return client, nil
}

// CloseMongoDb disconnects client, logging instead of failing.
func CloseMongoDb(client *mongo.Client) {
	if client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while disconnecting MongoDB")
	}
}
