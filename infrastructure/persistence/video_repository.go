package persistence

import (
	"context"

	"youtube-etl/domain/errs"
	"youtube-etl/domain/model"
	"youtube-etl/domain/repository"
	"youtube-etl/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// VideoRepository stores video records in one MongoDB collection per topic.
type VideoRepository struct {
	mongoDb  *mongo.Client
	database string
}

func NewVideoRepository(db *mongo.Client, database string) repository.IVideoStore {
	return &VideoRepository{mongoDb: db, database: database}
}

// ReplaceAll clears collection and inserts records. The two steps are not
// atomic; a failed insert leaves the collection empty until the next load.
func (r *VideoRepository) ReplaceAll(ctx context.Context, collection string, records []model.VideoRecord) error {
	coll := r.mongoDb.Database(r.database).Collection(collection)

	deleted, err := coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return errs.Store("clear collection "+collection, err)
	}
	if len(records) == 0 {
		return nil
	}
	inserted, err := coll.InsertMany(ctx, records)
	if err != nil {
		return errs.Store("insert into collection "+collection, err)
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"collection": collection,
		"deleted":    deleted.DeletedCount,
		"inserted":   len(inserted.InsertedIDs),
	}).Info("Replaced collection documents")
	return nil
}

func (r *VideoRepository) Count(ctx context.Context, collection string) (int64, error) {
	n, err := r.mongoDb.Database(r.database).Collection(collection).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, errs.Store("count collection "+collection, err)
	}
	return n, nil
}

// FindAll returns every record in collection.
func (r *VideoRepository) FindAll(ctx context.Context, collection string) ([]model.VideoRecord, error) {
	cursor, err := r.mongoDb.Database(r.database).Collection(collection).Find(ctx, bson.D{})
	if err != nil {
		return nil, errs.Store("find in collection "+collection, err)
	}
	defer func(cursor *mongo.Cursor, ctx context.Context) {
		err := cursor.Close(ctx)
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing cursor")
		}
	}(cursor, ctx)

	var records []model.VideoRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, errs.Store("decode collection "+collection, err)
	}
	return records, nil
}
