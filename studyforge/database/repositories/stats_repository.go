package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/studyforge/backend/studyforge/database"
	"github.com/studyforge/backend/studyforge/database/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type StatsRepository interface {
	Get(ctx context.Context, userID string) (*models.UserStats, error)
	// ApplyDelta atomically increments the stats counters and returns the
	// post-update document, creating it on first use.
	ApplyDelta(ctx context.Context, userID string, delta models.StatsDelta) (*models.UserStats, error)
	// RaiseLevel lifts current_level to at least level. Never lowers it.
	RaiseLevel(ctx context.Context, userID string, level int) error
	// CompareAndSetStudyDate sets the streak fields only when last_study_date
	// still equals prev. Reports whether the write landed.
	CompareAndSetStudyDate(ctx context.Context, userID, prev, next string, streak int) (bool, error)
}

type statsRepository struct {
	coll *mongo.Collection
}

func NewStatsRepository(db *mongo.Database) StatsRepository {
	return &statsRepository{coll: db.Collection(database.CollUserStats)}
}

func (r *statsRepository) Get(ctx context.Context, userID string) (*models.UserStats, error) {
	stats := new(models.UserStats)
	err := r.coll.FindOne(ctx, bson.D{{Key: "user_id", Value: userID}}).Decode(stats)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		slog.Error("Failed to get user stats",
			slog.String("type", "db"),
			slog.String("user_id", userID),
			slog.Any("error", err))
		return nil, err
	}
	return stats, nil
}

func (r *statsRepository) ApplyDelta(ctx context.Context, userID string, delta models.StatsDelta) (*models.UserStats, error) {
	now := time.Now()

	filter := bson.D{{Key: "user_id", Value: userID}}
	update := bson.D{
		{Key: "$inc", Value: bson.D{
			{Key: "current_xp", Value: delta.XP},
			{Key: "total_study_minutes", Value: delta.StudyMinutes},
			{Key: "total_quizzes", Value: delta.Quizzes},
			{Key: "perfect_scores", Value: delta.PerfectScores},
			{Key: "completed_courses", Value: delta.CompletedCourses},
		}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: now}}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "current_level", Value: 1},
			{Key: "current_streak", Value: 0},
			{Key: "longest_streak", Value: 0},
			{Key: "last_study_date", Value: ""},
			{Key: "created_at", Value: now},
		}},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	stats := new(models.UserStats)
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(stats); err != nil {
		return nil, fmt.Errorf("failed to apply stats delta: %w", err)
	}
	return stats, nil
}

func (r *statsRepository) RaiseLevel(ctx context.Context, userID string, level int) error {
	filter := bson.D{{Key: "user_id", Value: userID}}
	update := bson.D{
		{Key: "$max", Value: bson.D{{Key: "current_level", Value: level}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now()}}},
	}

	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

func (r *statsRepository) CompareAndSetStudyDate(ctx context.Context, userID, prev, next string, streak int) (bool, error) {
	filter := bson.D{
		{Key: "user_id", Value: userID},
		{Key: "last_study_date", Value: prev},
	}
	now := time.Now()
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "last_study_date", Value: next},
			{Key: "current_streak", Value: streak},
			{Key: "updated_at", Value: now},
		}},
		{Key: "$max", Value: bson.D{{Key: "longest_streak", Value: streak}}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "current_xp", Value: int64(0)},
			{Key: "current_level", Value: 1},
			{Key: "total_study_minutes", Value: int64(0)},
			{Key: "total_quizzes", Value: int64(0)},
			{Key: "perfect_scores", Value: int64(0)},
			{Key: "completed_courses", Value: int64(0)},
			{Key: "created_at", Value: now},
		}},
	}

	// Upsert only applies on a user's very first streak touch; after that the
	// filter either matches the expected date or a concurrent writer won.
	opts := options.Update().SetUpsert(prev == "")

	res, err := r.coll.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to set study date: %w", err)
	}
	return res.ModifiedCount == 1 || res.UpsertedCount == 1, nil
}
