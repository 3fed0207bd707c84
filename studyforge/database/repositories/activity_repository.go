package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/studyforge/backend/studyforge/database"
	"github.com/studyforge/backend/studyforge/database/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ActivityRepository interface {
	// Create appends one activity log entry. Entries are write-once.
	Create(ctx context.Context, activity *models.StudyActivity) error
	GetByUserDate(ctx context.Context, userID, date string) ([]*models.StudyActivity, error)
	GetRecent(ctx context.Context, userID string, limit int) ([]*models.StudyActivity, error)
}

type activityRepository struct {
	coll *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) ActivityRepository {
	return &activityRepository{coll: db.Collection(database.CollStudyActivities)}
}

func (r *activityRepository) Create(ctx context.Context, activity *models.StudyActivity) error {
	activity.CreatedAt = time.Now()

	_, err := r.coll.InsertOne(ctx, activity)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

func (r *activityRepository) GetByUserDate(ctx context.Context, userID, date string) ([]*models.StudyActivity, error) {
	cursor, err := r.coll.Find(ctx, bson.D{
		{Key: "user_id", Value: userID},
		{Key: "date", Value: date},
	}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}

	var activities []*models.StudyActivity
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *activityRepository) GetRecent(ctx context.Context, userID string, limit int) ([]*models.StudyActivity, error) {
	cursor, err := r.coll.Find(ctx,
		bson.D{{Key: "user_id", Value: userID}},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}

	var activities []*models.StudyActivity
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}
