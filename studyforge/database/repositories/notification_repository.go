package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/studyforge/backend/studyforge/database"
	"github.com/studyforge/backend/studyforge/database/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationRepository interface {
	Enqueue(ctx context.Context, n *models.Notification) error
	GetPending(ctx context.Context, userID string) ([]*models.Notification, error)
	// MarkDelivered flips the delivered flag at most once and returns the
	// record it flipped, or nil when the record is absent or already
	// delivered.
	MarkDelivered(ctx context.Context, userID, id string) (*models.Notification, error)
}

type notificationRepository struct {
	coll *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) NotificationRepository {
	return &notificationRepository{coll: db.Collection(database.CollNotifications)}
}

func (r *notificationRepository) Enqueue(ctx context.Context, n *models.Notification) error {
	n.CreatedAt = time.Now()

	_, err := r.coll.InsertOne(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) GetPending(ctx context.Context, userID string) ([]*models.Notification, error) {
	cursor, err := r.coll.Find(ctx, bson.D{
		{Key: "user_id", Value: userID},
		{Key: "delivered", Value: false},
	}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}

	var pending []*models.Notification
	if err := cursor.All(ctx, &pending); err != nil {
		return nil, err
	}
	return pending, nil
}

func (r *notificationRepository) MarkDelivered(ctx context.Context, userID, id string) (*models.Notification, error) {
	now := time.Now()
	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "user_id", Value: userID},
		{Key: "delivered", Value: false},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "delivered", Value: true},
			{Key: "delivered_at", Value: now},
		}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	n := new(models.Notification)
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to mark notification delivered: %w", err)
	}
	return n, nil
}
