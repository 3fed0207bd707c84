package models

// RecordActivityRequest is the body of POST /api/activities.
type RecordActivityRequest struct {
	ActivityType string `json:"type"`
	Minutes      int64  `json:"minutes"`
	Score        *int   `json:"score,omitempty"`
	SubjectID    string `json:"subject_id,omitempty"`
	CourseID     string `json:"course_id,omitempty"`
	LessonID     string `json:"lesson_id,omitempty"`
}
