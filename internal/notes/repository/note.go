package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	noteserrors "studysphere/internal/notes/errors"
	"studysphere/pkg/config"
	mongotx "studysphere/pkg/db/mongo"
	"studysphere/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "notes"
)

type NoteRepository interface {
	Create(ctx context.Context, note *model.Note) error
	FindByID(ctx context.Context, id string) (*model.Note, error)
	FindByEmail(ctx context.Context, email string, limit int, offset int64) ([]*model.Note, error)
	Update(ctx context.Context, id, email string, updates bson.M) error
	Delete(ctx context.Context, id, email string) error
}

type mongoNoteRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoNoteRepository(cfg *config.Config) NoteRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoNoteRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoNoteRepository) Create(ctx context.Context, note *model.Note) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	note.CreatedAt = now
	note.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, note)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		note.ID = oid.Hex()
	}
	return nil
}

func (r *mongoNoteRepository) FindByID(ctx context.Context, id string) (*model.Note, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", noteserrors.ErrInvalidID, id)
	}

	var note model.Note
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&note)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, noteserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find note: %w", err)
	}

	return &note, nil
}

func (r *mongoNoteRepository) FindByEmail(ctx context.Context, email string, limit int, offset int64) ([]*model.Note, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"email": email}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find notes: %w", err)
	}
	defer cursor.Close(ctx)

	var notes []*model.Note
	if err = cursor.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("failed to decode notes: %w", err)
	}

	return notes, nil
}

// Update writes only when the note belongs to the given email.
func (r *mongoNoteRepository) Update(ctx context.Context, id, email string, updates bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", noteserrors.ErrInvalidID, id)
	}

	updates["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "email": email},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	if result.MatchedCount == 0 {
		return noteserrors.ErrNotFound
	}

	return nil
}

func (r *mongoNoteRepository) Delete(ctx context.Context, id, email string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", noteserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID, "email": email})
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if result.DeletedCount == 0 {
		return noteserrors.ErrNotFound
	}

	return nil
}
