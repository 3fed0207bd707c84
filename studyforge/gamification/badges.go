package gamification

import (
	"context"
	"log/slog"
	"time"

	"github.com/studyforge/backend/studyforge/database/models"
)

// BadgeAward is a badge newly earned by an EvaluateBadges call.
type BadgeAward struct {
	Definition *models.BadgeDefinition `json:"definition"`
	EarnedDate time.Time               `json:"earned_date"`
}

// EvaluateBadges checks every unearned badge's unlock predicate against the
// user's current stats. Satisfied predicates flip the badge exactly once;
// unsatisfied ones get their visible progress updated, capped at 99 until
// the predicate actually fires. Only badges earned by this call are
// returned.
func (s *Service) EvaluateBadges(ctx context.Context, userID string) ([]*BadgeAward, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "must not be empty"}
	}

	stats, err := s.stats.Get(ctx, userID)
	if err != nil {
		return nil, storageErr("load stats", err)
	}
	if stats == nil {
		return nil, &NotFoundError{Resource: "user stats", Key: userID}
	}

	defs, err := s.badges.GetDefinitions(ctx)
	if err != nil {
		return nil, storageErr("load badge definitions", err)
	}

	owned, err := s.badges.GetUserBadges(ctx, userID)
	if err != nil {
		return nil, storageErr("load user badges", err)
	}
	earned := make(map[string]bool, len(owned))
	for _, b := range owned {
		if b.Earned {
			earned[b.BadgeID] = true
		}
	}

	now := s.now()
	var awards []*BadgeAward
	for _, def := range defs {
		if earned[def.BadgeID] {
			continue
		}

		value := badgeMetric(def.RequirementType, stats)
		if value >= def.RequirementCount {
			won, err := s.badges.MarkEarned(ctx, userID, def.BadgeID, now)
			if err != nil {
				return nil, storageErr("earn badge", err)
			}
			if !won {
				continue
			}

			awards = append(awards, &BadgeAward{Definition: def, EarnedDate: now})
			slog.Info("Badge earned",
				slog.String("user_id", userID),
				slog.String("badge_id", def.BadgeID),
				slog.String("rarity", def.Rarity))

			if s.notifier != nil {
				if err := s.notifier.BadgeEarned(ctx, userID, def, now); err != nil {
					// Delivery is at-least-once via the outbox; a failed
					// enqueue here is not retried by the core.
					slog.Warn("Failed to queue badge notification",
						slog.String("user_id", userID),
						slog.String("badge_id", def.BadgeID),
						slog.Any("error", err))
				}
			}
			continue
		}

		progress := int(value * 100 / def.RequirementCount)
		if progress > 99 {
			progress = 99
		}
		if err := s.badges.SetProgress(ctx, userID, def.BadgeID, progress); err != nil {
			return nil, storageErr("update badge progress", err)
		}
	}

	return awards, nil
}

// BadgeStatus pairs one badge definition with the user's standing on it.
type BadgeStatus struct {
	Definition *models.BadgeDefinition `json:"definition"`
	Earned     bool                    `json:"earned"`
	Progress   int                     `json:"progress"`
	EarnedDate *time.Time              `json:"earned_date,omitempty"`
}

// BadgeOverview merges the badge catalog with the user's progress records.
// Read-only; badges never flip here.
func (s *Service) BadgeOverview(ctx context.Context, userID string) ([]*BadgeStatus, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "must not be empty"}
	}

	defs, err := s.badges.GetDefinitions(ctx)
	if err != nil {
		return nil, storageErr("load badge definitions", err)
	}

	owned, err := s.badges.GetUserBadges(ctx, userID)
	if err != nil {
		return nil, storageErr("load user badges", err)
	}
	byID := make(map[string]*models.UserBadge, len(owned))
	for _, ub := range owned {
		byID[ub.BadgeID] = ub
	}

	overview := make([]*BadgeStatus, 0, len(defs))
	for _, def := range defs {
		status := &BadgeStatus{Definition: def}
		if ub, ok := byID[def.BadgeID]; ok {
			status.Earned = ub.Earned
			status.Progress = ub.Progress
			status.EarnedDate = ub.EarnedDate
		}
		overview = append(overview, status)
	}
	return overview, nil
}

// badgeMetric resolves a requirement type to the stat it measures. Streak
// badges use the longest streak so an earned badge never regresses when the
// current streak resets.
func badgeMetric(requirementType string, stats *models.UserStats) int64 {
	switch requirementType {
	case models.RequirementTypeQuizzes:
		return stats.TotalQuizzes
	case models.RequirementTypePerfect:
		return stats.PerfectScores
	case models.RequirementTypeStudyMinutes:
		return stats.TotalStudyMinutes
	case models.RequirementTypeCourses:
		return stats.CompletedCourses
	case models.RequirementTypeStreakDays:
		return int64(stats.LongestStreak)
	case models.RequirementTypeTotalXP:
		return stats.CurrentXP
	}
	return 0
}
