package gamification

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/studyforge/backend/studyforge/database/models"
)

// RecordActivity appends an activity log entry and applies its counter and
// XP increments to the user's stats in one atomic storage update. The level
// is re-derived from the new XP total and only ever raised.
func (s *Service) RecordActivity(ctx context.Context, userID string, act Activity) (*models.UserStats, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "must not be empty"}
	}
	if act == nil {
		return nil, &ValidationError{Field: "activity", Reason: "must not be empty"}
	}
	if err := act.Validate(); err != nil {
		return nil, err
	}

	entry := s.activityRecord(userID, act)
	if err := s.activity.Create(ctx, entry); err != nil {
		return nil, storageErr("record activity", err)
	}

	stats, err := s.applyXP(ctx, userID, s.deltaFor(act))
	if err != nil {
		return nil, err
	}

	slog.Debug("Activity recorded",
		slog.String("user_id", userID),
		slog.String("activity_type", string(act.ActivityType())),
		slog.Int64("xp", stats.CurrentXP))
	return stats, nil
}

// applyXP applies a stats delta and lifts the level to match the new XP
// total. Shared by activity recording and quest XP grants.
func (s *Service) applyXP(ctx context.Context, userID string, delta models.StatsDelta) (*models.UserStats, error) {
	stats, err := s.stats.ApplyDelta(ctx, userID, delta)
	if err != nil {
		return nil, storageErr("apply stats delta", err)
	}

	if level := s.calc.LevelForXP(stats.CurrentXP); level > stats.CurrentLevel {
		if err := s.stats.RaiseLevel(ctx, userID, level); err != nil {
			return nil, storageErr("raise level", err)
		}
		stats.CurrentLevel = level
		slog.Info("Level up",
			slog.String("user_id", userID),
			slog.Int("level", level))
	}
	return stats, nil
}

func (s *Service) deltaFor(act Activity) models.StatsDelta {
	switch a := act.(type) {
	case QuizCompleted:
		delta := models.StatsDelta{
			XP:           s.cfg.QuizXP,
			StudyMinutes: a.Minutes,
			Quizzes:      1,
		}
		if a.Score == 100 {
			delta.PerfectScores = 1
			delta.XP += s.cfg.PerfectBonusXP
		}
		return delta
	case StudySession:
		return models.StatsDelta{
			XP:           a.Minutes * s.cfg.StudyXPPerMinute,
			StudyMinutes: a.Minutes,
		}
	case VideoWatched:
		return models.StatsDelta{
			XP:           s.cfg.VideoXP,
			StudyMinutes: a.Minutes,
		}
	case CourseCompleted:
		return models.StatsDelta{
			XP:               s.cfg.CourseXP,
			StudyMinutes:     a.Minutes,
			CompletedCourses: 1,
		}
	}
	return models.StatsDelta{}
}

func (s *Service) activityRecord(userID string, act Activity) *models.StudyActivity {
	entry := &models.StudyActivity{
		ID:           uuid.NewString(),
		UserID:       userID,
		Date:         DayOf(s.now()),
		ActivityType: string(act.ActivityType()),
	}

	switch a := act.(type) {
	case QuizCompleted:
		entry.Minutes = a.Minutes
		entry.Score = &a.Score
		entry.SubjectID = optional(a.SubjectID)
		entry.LessonID = optional(a.LessonID)
	case StudySession:
		entry.Minutes = a.Minutes
		entry.SubjectID = optional(a.SubjectID)
	case VideoWatched:
		entry.Minutes = a.Minutes
		entry.CourseID = optional(a.CourseID)
		entry.LessonID = optional(a.LessonID)
	case CourseCompleted:
		entry.Minutes = a.Minutes
		entry.CourseID = optional(a.CourseID)
	}
	return entry
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
