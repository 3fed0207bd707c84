package gamification

import (
	"context"
	"errors"
	"testing"

	"github.com/studyforge/backend/studyforge/database/models"
)

func quizMasterDef() *models.BadgeDefinition {
	return &models.BadgeDefinition{
		BadgeID:          "quiz_master",
		Name:             "Quiz Master",
		Rarity:           models.RarityEpic,
		RequirementType:  models.RequirementTypeQuizzes,
		RequirementCount: 50,
	}
}

func weekStreakDef() *models.BadgeDefinition {
	return &models.BadgeDefinition{
		BadgeID:          "week_streak",
		Name:             "Week Streak",
		Rarity:           models.RarityRare,
		RequirementType:  models.RequirementTypeStreakDays,
		RequirementCount: 7,
	}
}

func TestEvaluateBadges_Progress(t *testing.T) {
	tests := []struct {
		name         string
		stats        *models.UserStats
		def          *models.BadgeDefinition
		wantEarned   bool
		wantProgress int
	}{
		{
			name:         "below threshold tracks progress",
			stats:        &models.UserStats{UserID: "u1", TotalQuizzes: 49},
			def:          quizMasterDef(),
			wantProgress: 98,
		},
		{
			name:       "threshold met earns badge",
			stats:      &models.UserStats{UserID: "u1", TotalQuizzes: 50},
			def:        quizMasterDef(),
			wantEarned: true,
		},
		{
			name:       "over threshold earns badge",
			stats:      &models.UserStats{UserID: "u1", TotalQuizzes: 120},
			def:        quizMasterDef(),
			wantEarned: true,
		},
		{
			name:         "streak badge tracks longest streak",
			stats:        &models.UserStats{UserID: "u1", CurrentStreak: 1, LongestStreak: 5},
			def:          weekStreakDef(),
			wantProgress: 71,
		},
		{
			name:       "streak badge earned from longest streak after reset",
			stats:      &models.UserStats{UserID: "u1", CurrentStreak: 1, LongestStreak: 7},
			def:        weekStreakDef(),
			wantEarned: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(nil, tt.def)
			env.stats.seed(tt.stats)

			awards, err := env.svc.EvaluateBadges(context.Background(), "u1")
			if err != nil {
				t.Fatalf("EvaluateBadges() error = %v", err)
			}

			ub := env.badges.badges["u1|"+tt.def.BadgeID]
			if tt.wantEarned {
				if len(awards) != 1 || awards[0].Definition.BadgeID != tt.def.BadgeID {
					t.Fatalf("awards = %v, want one award for %s", awards, tt.def.BadgeID)
				}
				if ub == nil || !ub.Earned || ub.Progress != 100 {
					t.Errorf("user badge = %+v, want earned at progress 100", ub)
				}
				return
			}

			if len(awards) != 0 {
				t.Fatalf("awards = %v, want none", awards)
			}
			if ub == nil || ub.Progress != tt.wantProgress {
				t.Errorf("user badge = %+v, want progress %d", ub, tt.wantProgress)
			}
		})
	}
}

func TestEvaluateBadges_EarnsAtMostOnce(t *testing.T) {
	env := newTestEnv(nil, quizMasterDef())
	env.stats.seed(&models.UserStats{UserID: "u1", TotalQuizzes: 50})
	ctx := context.Background()

	first, err := env.svc.EvaluateBadges(ctx, "u1")
	if err != nil {
		t.Fatalf("first EvaluateBadges() error = %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("first awards = %d, want 1", len(first))
	}

	second, err := env.svc.EvaluateBadges(ctx, "u1")
	if err != nil {
		t.Fatalf("second EvaluateBadges() error = %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second awards = %d, want 0", len(second))
	}

	if len(env.notifier.badges) != 1 {
		t.Errorf("badge notifications = %d, want 1", len(env.notifier.badges))
	}
}

func TestEvaluateBadges_ProgressCapBelowEarned(t *testing.T) {
	// A definition whose integer progress would round to 100 before the
	// predicate fires must report at most 99.
	def := &models.BadgeDefinition{
		BadgeID:          "marathon",
		Name:             "Marathon",
		RequirementType:  models.RequirementTypeStudyMinutes,
		RequirementCount: 1000,
	}
	env := newTestEnv(nil, def)
	env.stats.seed(&models.UserStats{UserID: "u1", TotalStudyMinutes: 999})

	if _, err := env.svc.EvaluateBadges(context.Background(), "u1"); err != nil {
		t.Fatalf("EvaluateBadges() error = %v", err)
	}

	ub := env.badges.badges["u1|marathon"]
	if ub == nil || ub.Progress != 99 {
		t.Errorf("user badge = %+v, want progress 99", ub)
	}
}

func TestEvaluateBadges_UnknownUser(t *testing.T) {
	env := newTestEnv(nil, quizMasterDef())

	_, err := env.svc.EvaluateBadges(context.Background(), "ghost")

	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("EvaluateBadges() error = %v, want NotFoundError", err)
	}
}

func TestBadgeOverview(t *testing.T) {
	env := newTestEnv(nil, quizMasterDef(), weekStreakDef())
	env.stats.seed(&models.UserStats{UserID: "u1", TotalQuizzes: 50})
	ctx := context.Background()

	if _, err := env.svc.EvaluateBadges(ctx, "u1"); err != nil {
		t.Fatalf("EvaluateBadges() error = %v", err)
	}

	overview, err := env.svc.BadgeOverview(ctx, "u1")
	if err != nil {
		t.Fatalf("BadgeOverview() error = %v", err)
	}
	if len(overview) != 2 {
		t.Fatalf("overview size = %d, want 2", len(overview))
	}

	byID := make(map[string]*BadgeStatus)
	for _, st := range overview {
		byID[st.Definition.BadgeID] = st
	}
	if st := byID["quiz_master"]; st == nil || !st.Earned || st.EarnedDate == nil {
		t.Errorf("quiz_master status = %+v, want earned with date", st)
	}
	if st := byID["week_streak"]; st == nil || st.Earned {
		t.Errorf("week_streak status = %+v, want unearned", st)
	}
}
