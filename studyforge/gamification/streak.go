package gamification

import (
	"context"
	"log/slog"

	"github.com/studyforge/backend/studyforge/database/models"
)

// Attempts at the study-date compare-and-set before giving up. A lost race
// normally resolves on the first re-read, because the winner moved
// last_study_date to today.
const casAttempts = 3

// StreakResult reports the streak state after a touch and whether this call
// moved the study date.
type StreakResult struct {
	Stats    *models.UserStats `json:"stats"`
	Advanced bool              `json:"advanced"`
}

// TouchStreak advances or resets the user's streak for today. last_study_date
// is the idempotence key: once it equals today, further touches that day are
// no-ops, so a day is counted at most once regardless of how many activities
// it has.
func (s *Service) TouchStreak(ctx context.Context, userID, today string) (*StreakResult, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "must not be empty"}
	}
	if !validDay(today) {
		return nil, &ValidationError{Field: "today", Reason: "must be a YYYY-MM-DD date"}
	}

	for attempt := 0; attempt < casAttempts; attempt++ {
		stats, err := s.stats.Get(ctx, userID)
		if err != nil {
			return nil, storageErr("load stats", err)
		}

		var last string
		var current int
		if stats != nil {
			last = stats.LastStudyDate
			current = stats.CurrentStreak
		}

		if last == today {
			return &StreakResult{Stats: stats, Advanced: false}, nil
		}

		// Consecutive day continues the streak, anything else restarts it.
		streak := 1
		if last != "" && last == previousDay(today) {
			streak = current + 1
		}

		ok, err := s.stats.CompareAndSetStudyDate(ctx, userID, last, today, streak)
		if err != nil {
			return nil, storageErr("advance streak", err)
		}
		if !ok {
			// Lost the compare-and-set to a concurrent touch; re-read.
			continue
		}

		updated, err := s.stats.Get(ctx, userID)
		if err != nil {
			return nil, storageErr("load stats", err)
		}

		slog.Debug("Streak touched",
			slog.String("user_id", userID),
			slog.String("date", today),
			slog.Int("streak", streak))
		return &StreakResult{Stats: updated, Advanced: true}, nil
	}

	return nil, &ConcurrencyConflictError{Op: "touch streak"}
}
