package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/studyforge/backend/studyforge/database"
	"github.com/studyforge/backend/studyforge/database/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BadgeRepository interface {
	GetDefinitions(ctx context.Context) ([]*models.BadgeDefinition, error)
	GetUserBadges(ctx context.Context, userID string) ([]*models.UserBadge, error)
	// SetProgress lifts an unearned badge's progress to at least progress,
	// creating the record on first touch. Earned badges are left alone.
	SetProgress(ctx context.Context, userID, badgeID string, progress int) error
	// MarkEarned flips the earned flag exactly once. Reports whether this
	// call performed the transition.
	MarkEarned(ctx context.Context, userID, badgeID string, at time.Time) (bool, error)
	MarkNotified(ctx context.Context, userID, badgeID string) error
}

type badgeRepository struct {
	defs   *mongo.Collection
	badges *mongo.Collection
}

func NewBadgeRepository(db *mongo.Database) BadgeRepository {
	return &badgeRepository{
		defs:   db.Collection(database.CollBadgeDefinitions),
		badges: db.Collection(database.CollUserBadges),
	}
}

func (r *badgeRepository) GetDefinitions(ctx context.Context) ([]*models.BadgeDefinition, error) {
	cursor, err := r.defs.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "badge_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to load badge definitions: %w", err)
	}

	var defs []*models.BadgeDefinition
	if err := cursor.All(ctx, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *badgeRepository) GetUserBadges(ctx context.Context, userID string) ([]*models.UserBadge, error) {
	cursor, err := r.badges.Find(ctx, bson.D{{Key: "user_id", Value: userID}})
	if err != nil {
		slog.Error("Failed to get user badges",
			slog.String("type", "db"),
			slog.String("user_id", userID),
			slog.Any("error", err))
		return nil, err
	}

	var badges []*models.UserBadge
	if err := cursor.All(ctx, &badges); err != nil {
		return nil, err
	}
	return badges, nil
}

func (r *badgeRepository) SetProgress(ctx context.Context, userID, badgeID string, progress int) error {
	filter := bson.D{
		{Key: "user_id", Value: userID},
		{Key: "badge_id", Value: badgeID},
		{Key: "earned", Value: false},
	}
	update := bson.D{
		{Key: "$max", Value: bson.D{{Key: "progress", Value: progress}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now()}}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "notified", Value: false}}},
	}

	_, err := r.badges.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// Record exists but is already earned; progress is locked at 100.
		return nil
	}
	return err
}

func (r *badgeRepository) MarkEarned(ctx context.Context, userID, badgeID string, at time.Time) (bool, error) {
	filter := bson.D{
		{Key: "user_id", Value: userID},
		{Key: "badge_id", Value: badgeID},
		{Key: "earned", Value: false},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "earned", Value: true},
			{Key: "earned_date", Value: at},
			{Key: "progress", Value: 100},
			{Key: "updated_at", Value: at},
		}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "notified", Value: false}}},
	}

	res, err := r.badges.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Already earned by an earlier call.
			return false, nil
		}
		return false, fmt.Errorf("failed to mark badge earned: %w", err)
	}
	return res.ModifiedCount == 1 || res.UpsertedCount == 1, nil
}

func (r *badgeRepository) MarkNotified(ctx context.Context, userID, badgeID string) error {
	filter := bson.D{
		{Key: "user_id", Value: userID},
		{Key: "badge_id", Value: badgeID},
		{Key: "earned", Value: true},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "notified", Value: true},
			{Key: "updated_at", Value: time.Now()},
		}},
	}

	_, err := r.badges.UpdateOne(ctx, filter, update)
	return err
}
