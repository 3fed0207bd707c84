package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStats holds a user's cumulative gamification state. One document per
// user, created on first recorded activity. XP and the activity totals only
// ever increase; the level is derived from XP and follows it upward.
type UserStats struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID            string             `bson:"user_id" json:"user_id"`
	CurrentXP         int64              `bson:"current_xp" json:"current_xp"`
	CurrentLevel      int                `bson:"current_level" json:"current_level"`
	CurrentStreak     int                `bson:"current_streak" json:"current_streak"`
	LongestStreak     int                `bson:"longest_streak" json:"longest_streak"`
	LastStudyDate     string             `bson:"last_study_date" json:"last_study_date"` // calendar day, YYYY-MM-DD
	TotalStudyMinutes int64              `bson:"total_study_minutes" json:"total_study_minutes"`
	TotalQuizzes      int64              `bson:"total_quizzes" json:"total_quizzes"`
	PerfectScores     int64              `bson:"perfect_scores" json:"perfect_scores"`
	CompletedCourses  int64              `bson:"completed_courses" json:"completed_courses"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

// StatsDelta is a set of counter increments applied atomically to UserStats.
// All fields are non-negative.
type StatsDelta struct {
	XP               int64
	StudyMinutes     int64
	Quizzes          int64
	PerfectScores    int64
	CompletedCourses int64
}
