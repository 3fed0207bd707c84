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

// ErrQuestBatchExists is returned by CreateDaily when another request already
// created the batch for that (user, date). Callers fetch the winner's record.
var ErrQuestBatchExists = errors.New("daily quest batch already exists")

type QuestRepository interface {
	GetDaily(ctx context.Context, userID, date string) (*models.DailyQuests, error)
	// CreateDaily inserts a new batch. The unique (user_id, date) index makes
	// the first create win; losers get ErrQuestBatchExists.
	CreateDaily(ctx context.Context, batch *models.DailyQuests) error
	// IncrementProgress advances every non-completed quest of the given type
	// and recomputes per-quest completion and the batch completed_count in a
	// single atomic update. Returns the post-update document and the quests
	// this call pushed over their target.
	IncrementProgress(ctx context.Context, userID, date, questType string, amount int64) (*models.DailyQuests, []models.DailyQuest, error)
	// AwardBonus flips bonus_awarded exactly once, and only when every quest
	// in the batch is completed. Reports whether this call won the flip.
	AwardBonus(ctx context.Context, userID, date string, questCount int) (bool, error)
}

type questRepository struct {
	coll *mongo.Collection
}

func NewQuestRepository(db *mongo.Database) QuestRepository {
	return &questRepository{coll: db.Collection(database.CollDailyQuests)}
}

func (r *questRepository) GetDaily(ctx context.Context, userID, date string) (*models.DailyQuests, error) {
	batch := new(models.DailyQuests)
	err := r.coll.FindOne(ctx, bson.D{
		{Key: "user_id", Value: userID},
		{Key: "date", Value: date},
	}).Decode(batch)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get daily quests: %w", err)
	}
	return batch, nil
}

func (r *questRepository) CreateDaily(ctx context.Context, batch *models.DailyQuests) error {
	batch.CreatedAt = time.Now()
	batch.UpdatedAt = batch.CreatedAt

	_, err := r.coll.InsertOne(ctx, batch)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrQuestBatchExists
		}
		return fmt.Errorf("failed to create daily quests: %w", err)
	}
	return nil
}

func (r *questRepository) IncrementProgress(ctx context.Context, userID, date, questType string, amount int64) (*models.DailyQuests, []models.DailyQuest, error) {
	matched := bson.D{{Key: "$and", Value: bson.A{
		bson.D{{Key: "$eq", Value: bson.A{"$$q.type", questType}}},
		bson.D{{Key: "$eq", Value: bson.A{"$$q.completed", false}}},
	}}}
	newProgress := bson.D{{Key: "$cond", Value: bson.A{
		matched,
		bson.D{{Key: "$add", Value: bson.A{"$$q.progress", amount}}},
		"$$q.progress",
	}}}

	// Rewrite each quest with its advanced progress and derived completion,
	// then recompute the batch counter from the rewritten array. A pipeline
	// update keeps both steps in one atomic document write.
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "quests", Value: bson.D{{Key: "$map", Value: bson.D{
				{Key: "input", Value: "$quests"},
				{Key: "as", Value: "q"},
				{Key: "in", Value: bson.D{{Key: "$let", Value: bson.D{
					{Key: "vars", Value: bson.D{{Key: "np", Value: newProgress}}},
					{Key: "in", Value: bson.D{{Key: "$mergeObjects", Value: bson.A{
						"$$q",
						bson.D{
							{Key: "progress", Value: "$$np"},
							{Key: "completed", Value: bson.D{{Key: "$gte", Value: bson.A{"$$np", "$$q.total"}}}},
						},
					}}}},
				}}}},
			}}}},
		}}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "completed_count", Value: bson.D{{Key: "$size", Value: bson.D{{Key: "$filter", Value: bson.D{
				{Key: "input", Value: "$quests"},
				{Key: "as", Value: "q"},
				{Key: "cond", Value: "$$q.completed"},
			}}}}}},
			{Key: "updated_at", Value: "$$NOW"},
		}}},
	}

	// Decode the pre-image and replay the same derivation locally: the
	// pre-image is the only way to tell which quests this call completed, as
	// opposed to ones completed by an earlier call.
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	before := new(models.DailyQuests)
	err := r.coll.FindOneAndUpdate(ctx, bson.D{
		{Key: "user_id", Value: userID},
		{Key: "date", Value: date},
	}, pipeline, opts).Decode(before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to update quest progress: %w", err)
	}

	after := *before
	after.Quests = make([]models.DailyQuest, len(before.Quests))
	copy(after.Quests, before.Quests)

	var newlyCompleted []models.DailyQuest
	completedCount := 0
	for i := range after.Quests {
		q := &after.Quests[i]
		if q.Type == questType && !q.Completed {
			q.Progress += amount
			if q.Progress >= q.Total {
				q.Completed = true
				newlyCompleted = append(newlyCompleted, *q)
			}
		}
		if q.Completed {
			completedCount++
		}
	}
	after.CompletedCount = completedCount

	return &after, newlyCompleted, nil
}

func (r *questRepository) AwardBonus(ctx context.Context, userID, date string, questCount int) (bool, error) {
	filter := bson.D{
		{Key: "user_id", Value: userID},
		{Key: "date", Value: date},
		{Key: "completed_count", Value: questCount},
		{Key: "bonus_awarded", Value: false},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "bonus_awarded", Value: true},
			{Key: "updated_at", Value: time.Now()},
		}},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to award quest bonus: %w", err)
	}
	return res.ModifiedCount == 1, nil
}
