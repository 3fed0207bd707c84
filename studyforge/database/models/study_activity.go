package models

import "time"

// StudyActivity is an append-only log entry for a single activity event.
// Documents are never mutated after insertion.
type StudyActivity struct {
	ID           string    `bson:"_id" json:"id"`
	UserID       string    `bson:"user_id" json:"user_id"`
	Date         string    `bson:"date" json:"date"` // calendar day, YYYY-MM-DD
	ActivityType string    `bson:"activity_type" json:"activity_type"`
	Minutes      int64     `bson:"minutes" json:"minutes"`
	Score        *int      `bson:"score,omitempty" json:"score,omitempty"`
	SubjectID    *string   `bson:"subject_id,omitempty" json:"subject_id,omitempty"`
	CourseID     *string   `bson:"course_id,omitempty" json:"course_id,omitempty"`
	LessonID     *string   `bson:"lesson_id,omitempty" json:"lesson_id,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
