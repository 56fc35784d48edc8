package repository

import (
	"context"
	"fmt"
	"time"

	materialserrors "studysphere/internal/materials/errors"
	"studysphere/pkg/config"
	mongotx "studysphere/pkg/db/mongo"
	"studysphere/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "materials"
)

type MaterialRepository interface {
	Create(ctx context.Context, material *model.Material) error
	FindBySession(ctx context.Context, sessionID string, limit int, offset int64) ([]*model.Material, error)
	FindByTutor(ctx context.Context, tutorEmail string, limit int, offset int64) ([]*model.Material, error)
	Delete(ctx context.Context, id, tutorEmail string) error
	DeleteBySession(ctx context.Context, sessionID string) error
}

type mongoMaterialRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoMaterialRepository(cfg *config.Config) MaterialRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoMaterialRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoMaterialRepository) Create(ctx context.Context, material *model.Material) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	material.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, material)
	if err != nil {
		return fmt.Errorf("failed to create material: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		material.ID = oid.Hex()
	}
	return nil
}

func (r *mongoMaterialRepository) FindBySession(ctx context.Context, sessionID string, limit int, offset int64) ([]*model.Material, error) {
	return r.find(ctx, bson.M{"session_id": sessionID}, limit, offset)
}

func (r *mongoMaterialRepository) FindByTutor(ctx context.Context, tutorEmail string, limit int, offset int64) ([]*model.Material, error) {
	return r.find(ctx, bson.M{"tutor_email": tutorEmail}, limit, offset)
}

func (r *mongoMaterialRepository) find(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Material, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find materials: %w", err)
	}
	defer cursor.Close(ctx)

	var materials []*model.Material
	if err = cursor.All(ctx, &materials); err != nil {
		return nil, fmt.Errorf("failed to decode materials: %w", err)
	}

	return materials, nil
}

// Delete removes a material only when it belongs to the given tutor.
func (r *mongoMaterialRepository) Delete(ctx context.Context, id, tutorEmail string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", materialserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{
		"_id":         objectID,
		"tutor_email": tutorEmail,
	})
	if err != nil {
		return fmt.Errorf("failed to delete material: %w", err)
	}
	if result.DeletedCount == 0 {
		return materialserrors.ErrNotFound
	}

	return nil
}

func (r *mongoMaterialRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return fmt.Errorf("failed to delete materials by session: %w", err)
	}
	return nil
}
