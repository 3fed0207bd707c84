package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/studyforge/backend/studyforge/database/models"
)

// InitializeBadgeData inserts the badge master list into the database
func (db *DB) InitializeBadgeData(ctx context.Context) error {
	coll := db.mongoDB.Collection(CollBadgeDefinitions)

	count, err := coll.CountDocuments(ctx, map[string]any{})
	if err == nil && count > 0 {
		slog.Info("Badge data already initialized, skipping",
			slog.Int64("existing_badges", count))
		return nil
	}

	slog.Info("Initializing badge definitions...")

	defs := []models.BadgeDefinition{
		{
			BadgeID:          "first_steps",
			Name:             "First Steps",
			Description:      "Study for 30 minutes total",
			Rarity:           models.RarityCommon,
			RequirementType:  models.RequirementTypeStudyMinutes,
			RequirementCount: 30,
		},
		{
			BadgeID:          "quiz_rookie",
			Name:             "Quiz Rookie",
			Description:      "Complete 10 quizzes",
			Rarity:           models.RarityCommon,
			RequirementType:  models.RequirementTypeQuizzes,
			RequirementCount: 10,
		},
		{
			BadgeID:          "quiz_master",
			Name:             "Quiz Master",
			Description:      "Complete 50 quizzes",
			Rarity:           models.RarityRare,
			RequirementType:  models.RequirementTypeQuizzes,
			RequirementCount: 50,
		},
		{
			BadgeID:          "perfectionist",
			Name:             "Perfectionist",
			Description:      "Score 100 on 10 quizzes",
			Rarity:           models.RarityRare,
			RequirementType:  models.RequirementTypePerfect,
			RequirementCount: 10,
		},
		{
			BadgeID:          "course_finisher",
			Name:             "Course Finisher",
			Description:      "Complete your first course",
			Rarity:           models.RarityCommon,
			RequirementType:  models.RequirementTypeCourses,
			RequirementCount: 1,
		},
		{
			BadgeID:          "scholar",
			Name:             "Scholar",
			Description:      "Complete 10 courses",
			Rarity:           models.RarityEpic,
			RequirementType:  models.RequirementTypeCourses,
			RequirementCount: 10,
		},
		{
			BadgeID:          "week_streak",
			Name:             "Week Warrior",
			Description:      "Keep a 7 day study streak",
			Rarity:           models.RarityRare,
			RequirementType:  models.RequirementTypeStreakDays,
			RequirementCount: 7,
		},
		{
			BadgeID:          "month_streak",
			Name:             "Monthly Devotee",
			Description:      "Keep a 30 day study streak",
			Rarity:           models.RarityEpic,
			RequirementType:  models.RequirementTypeStreakDays,
			RequirementCount: 30,
		},
		{
			BadgeID:          "centurion",
			Name:             "Centurion",
			Description:      "Keep a 100 day study streak",
			Rarity:           models.RarityLegendary,
			RequirementType:  models.RequirementTypeStreakDays,
			RequirementCount: 100,
		},
		{
			BadgeID:          "marathon_learner",
			Name:             "Marathon Learner",
			Description:      "Study for 1000 minutes total",
			Rarity:           models.RarityEpic,
			RequirementType:  models.RequirementTypeStudyMinutes,
			RequirementCount: 1000,
		},
		{
			BadgeID:          "xp_legend",
			Name:             "Living Legend",
			Description:      "Reach 100000 XP",
			Rarity:           models.RarityLegendary,
			RequirementType:  models.RequirementTypeTotalXP,
			RequirementCount: 100000,
		},
	}

	now := time.Now()
	docs := make([]interface{}, 0, len(defs))
	for i := range defs {
		defs[i].CreatedAt = now
		docs = append(docs, defs[i])
	}

	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to seed badge definitions: %w", err)
	}

	slog.Info("Badge definitions initialized",
		slog.Int("count", len(defs)))
	return nil
}
