package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BadgeDefinition is an entry in the static badge master list. Seeded once at
// startup and read-only afterwards.
type BadgeDefinition struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	BadgeID          string             `bson:"badge_id" json:"badge_id"`
	Name             string             `bson:"name" json:"name"`
	Description      string             `bson:"description" json:"description"`
	Rarity           string             `bson:"rarity" json:"rarity"`
	RequirementType  string             `bson:"requirement_type" json:"requirement_type"`
	RequirementCount int64              `bson:"requirement_count" json:"requirement_count"`
	CreatedAt        time.Time          `bson:"created_at" json:"-"`
}

// UserBadge tracks one user's state for one badge. The earned flag flips
// false to true exactly once; progress never decreases and locks at 100 once
// earned. The notified flag flips when delivery of the earned notification is
// confirmed, not when the badge is earned.
type UserBadge struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID     string             `bson:"user_id" json:"user_id"`
	BadgeID    string             `bson:"badge_id" json:"badge_id"`
	Earned     bool               `bson:"earned" json:"earned"`
	EarnedDate *time.Time         `bson:"earned_date,omitempty" json:"earned_date,omitempty"`
	Progress   int                `bson:"progress" json:"progress"`
	Notified   bool               `bson:"notified" json:"notified"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"-"`
}

// Badge rarity constants
const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Badge requirement type constants
const (
	RequirementTypeQuizzes      = "quizzes_completed"
	RequirementTypePerfect      = "perfect_scores"
	RequirementTypeStudyMinutes = "study_minutes"
	RequirementTypeCourses      = "courses_completed"
	RequirementTypeStreakDays   = "streak_days"
	RequirementTypeTotalXP      = "total_xp"
)
