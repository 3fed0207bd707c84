package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DailyQuests is one user's quest batch for one calendar day. The (user_id,
// date) pair is unique; the set of quests is fixed once the document is
// created, only progress fields mutate. The next day's document supersedes it.
type DailyQuests struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID         string             `bson:"user_id" json:"user_id"`
	Date           string             `bson:"date" json:"date"` // calendar day, YYYY-MM-DD
	Quests         []DailyQuest       `bson:"quests" json:"quests"`
	CompletedCount int                `bson:"completed_count" json:"completed_count"`
	BonusAwarded   bool               `bson:"bonus_awarded" json:"bonus_awarded"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"-"`
}

// DailyQuest is a single challenge embedded in a day's batch.
type DailyQuest struct {
	QuestID   string `bson:"quest_id" json:"quest_id"`
	Title     string `bson:"title" json:"title"`
	Type      string `bson:"type" json:"type"`
	XPReward  int64  `bson:"xp_reward" json:"xp_reward"`
	Progress  int64  `bson:"progress" json:"progress"`
	Total     int64  `bson:"total" json:"total"`
	Completed bool   `bson:"completed" json:"completed"`
}

// Quest type constants. All but QuestTypeStreak map directly to an activity
// type; streak quests advance when the day's streak is touched.
const (
	QuestTypeQuiz      = "quiz"
	QuestTypeStudyTime = "study_time"
	QuestTypeVideo     = "video"
	QuestTypeCourse    = "course"
	QuestTypeStreak    = "streak"
)
