package gamification

type ActivityType string

// Activity type constants
const (
	ActivityQuiz      ActivityType = "quiz"
	ActivityStudyTime ActivityType = "study_time"
	ActivityVideo     ActivityType = "video"
	ActivityCourse    ActivityType = "course"
)

// Activity is a closed union over the activity event variants. Each variant
// carries only the fields relevant to its type and validates itself at the
// boundary.
type Activity interface {
	ActivityType() ActivityType
	Validate() error
}

// QuizCompleted records a finished quiz attempt.
type QuizCompleted struct {
	Minutes   int64
	Score     int
	SubjectID string
	LessonID  string
}

func (QuizCompleted) ActivityType() ActivityType { return ActivityQuiz }

func (a QuizCompleted) Validate() error {
	if a.Minutes < 0 {
		return &ValidationError{Field: "minutes", Reason: "must not be negative"}
	}
	if a.Score < 0 || a.Score > 100 {
		return &ValidationError{Field: "score", Reason: "must be between 0 and 100"}
	}
	return nil
}

// StudySession records a block of self-directed study time.
type StudySession struct {
	Minutes   int64
	SubjectID string
}

func (StudySession) ActivityType() ActivityType { return ActivityStudyTime }

func (a StudySession) Validate() error {
	if a.Minutes < 0 {
		return &ValidationError{Field: "minutes", Reason: "must not be negative"}
	}
	return nil
}

// VideoWatched records a watched video lesson.
type VideoWatched struct {
	Minutes  int64
	CourseID string
	LessonID string
}

func (VideoWatched) ActivityType() ActivityType { return ActivityVideo }

func (a VideoWatched) Validate() error {
	if a.Minutes < 0 {
		return &ValidationError{Field: "minutes", Reason: "must not be negative"}
	}
	return nil
}

// CourseCompleted records finishing the last unit of a course.
type CourseCompleted struct {
	Minutes  int64
	CourseID string
}

func (CourseCompleted) ActivityType() ActivityType { return ActivityCourse }

func (a CourseCompleted) Validate() error {
	if a.Minutes < 0 {
		return &ValidationError{Field: "minutes", Reason: "must not be negative"}
	}
	if a.CourseID == "" {
		return &ValidationError{Field: "course_id", Reason: "must not be empty"}
	}
	return nil
}

// NewActivity builds the variant for activityType from the flat fields a
// request carries. Unknown types are rejected here so nothing downstream
// sees them.
func NewActivity(activityType string, minutes int64, score *int, subjectID, courseID, lessonID string) (Activity, error) {
	switch ActivityType(activityType) {
	case ActivityQuiz:
		if score == nil {
			return nil, &ValidationError{Field: "score", Reason: "required for quiz activities"}
		}
		return QuizCompleted{Minutes: minutes, Score: *score, SubjectID: subjectID, LessonID: lessonID}, nil
	case ActivityStudyTime:
		return StudySession{Minutes: minutes, SubjectID: subjectID}, nil
	case ActivityVideo:
		return VideoWatched{Minutes: minutes, CourseID: courseID, LessonID: lessonID}, nil
	case ActivityCourse:
		return CourseCompleted{Minutes: minutes, CourseID: courseID}, nil
	default:
		return nil, &ValidationError{Field: "activity_type", Reason: "unknown activity type"}
	}
}
