package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "studysphere/internal/bookings/errors"
	"studysphere/pkg/config"
	mongotx "studysphere/pkg/db/mongo"
	"studysphere/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "bookedSessions"
)

type BookingRepository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByPair(ctx context.Context, sessionID, studentEmail string) (*model.Booking, error)
	FindByStudent(ctx context.Context, studentEmail string, limit int, offset int64) ([]*model.Booking, error)
	MarkPaid(ctx context.Context, sessionID, studentEmail, transactionID string) (int64, error)
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// EnsureIndexes creates the unique compound index that enforces at most one
// booking per (session, student) pair. The index, not a check-then-insert,
// is what makes concurrent booking attempts safe.
func (r *mongoBookingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "session_id", Value: 1},
			{Key: "student_email", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("uniq_session_student"),
	})
	if err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if booking.BookedAt.IsZero() {
		booking.BookedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrDuplicatePair
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindByPair(ctx context.Context, sessionID, studentEmail string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"session_id":    sessionID,
		"student_email": studentEmail,
	}

	var booking model.Booking
	err := r.collection.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking by pair: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindByStudent(ctx context.Context, studentEmail string, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "booked_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"student_email": studentEmail}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings by student: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

// MarkPaid flips payment_status to paid and records the transaction
// reference for the (session, student) pair. A repeated call with a new
// transaction reference overwrites the old one; last write wins.
func (r *mongoBookingRepository) MarkPaid(ctx context.Context, sessionID, studentEmail, transactionID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"session_id":    sessionID,
		"student_email": studentEmail,
	}
	update := bson.M{
		"$set": bson.M{
			"payment_status": model.PaymentStatusPaid,
			"transaction_id": transactionID,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to mark booking paid: %w", err)
	}

	if result.MatchedCount == 0 {
		return 0, bookingserrors.ErrNotFound
	}

	return result.ModifiedCount, nil
}
