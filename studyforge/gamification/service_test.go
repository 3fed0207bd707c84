package gamification

import (
	"context"
	"testing"
	"time"

	"github.com/studyforge/backend/studyforge/database/models"
)

func TestProcessActivity_Pipeline(t *testing.T) {
	env := newTestEnv(nil, quizMasterDef())
	env.svc.now = func() time.Time {
		return time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	}
	ctx := context.Background()

	result, err := env.svc.ProcessActivity(ctx, "u1", QuizCompleted{Minutes: 10, Score: 100, SubjectID: "math"})
	if err != nil {
		t.Fatalf("ProcessActivity() error = %v", err)
	}

	if result.Stats == nil || result.Stats.TotalQuizzes != 1 {
		t.Errorf("stats = %+v, want one quiz recorded", result.Stats)
	}
	if result.Streak == nil || !result.Streak.Advanced || result.Streak.Stats.CurrentStreak != 1 {
		t.Errorf("streak = %+v, want advanced to 1", result.Streak)
	}
	if result.Quests == nil || result.Quests.Date != "2026-03-10" {
		t.Errorf("quests = %+v, want batch for 2026-03-10", result.Quests)
	}
	if len(result.NewBadges) != 0 {
		t.Errorf("new badges = %v, want none after one quiz", result.NewBadges)
	}

	if len(env.activity.entries) != 1 {
		t.Fatalf("activity entries = %d, want 1", len(env.activity.entries))
	}
	if entry := env.activity.entries[0]; entry.Date != "2026-03-10" || entry.ActivityType != "quiz" {
		t.Errorf("activity entry = %+v", entry)
	}
}

func TestProcessActivity_SecondActivitySameDay(t *testing.T) {
	env := newTestEnv(nil)
	env.svc.now = func() time.Time {
		return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()

	if _, err := env.svc.ProcessActivity(ctx, "u1", StudySession{Minutes: 20}); err != nil {
		t.Fatalf("first ProcessActivity() error = %v", err)
	}
	result, err := env.svc.ProcessActivity(ctx, "u1", StudySession{Minutes: 20})
	if err != nil {
		t.Fatalf("second ProcessActivity() error = %v", err)
	}

	if result.Streak.Advanced {
		t.Errorf("second activity advanced the streak again")
	}
	if result.Stats.CurrentStreak != 1 {
		t.Errorf("streak = %d, want 1", result.Stats.CurrentStreak)
	}
	if result.Stats.TotalStudyMinutes != 40 {
		t.Errorf("minutes = %d, want 40", result.Stats.TotalStudyMinutes)
	}
}

func TestGetStats_DefaultsForNewUser(t *testing.T) {
	env := newTestEnv(nil)

	view, err := env.svc.GetStats(context.Background(), "fresh")
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}

	if view.UserID != "fresh" || view.CurrentXP != 0 || view.CurrentLevel != 1 {
		t.Errorf("view = %+v, want pristine level 1 stats", view.UserStats)
	}
	if view.XPToNextLevel != 100 {
		t.Errorf("xp to next level = %d, want 100", view.XPToNextLevel)
	}
}

func TestGetStats_ExistingUser(t *testing.T) {
	env := newTestEnv(nil)
	env.stats.seed(&models.UserStats{UserID: "u1", CurrentXP: 150, CurrentLevel: 2})

	view, err := env.svc.GetStats(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}

	if view.XPIntoLevel != 50 || view.XPToNextLevel != 150 {
		t.Errorf("progress = %d/%d, want 50/150", view.XPIntoLevel, view.XPToNextLevel)
	}
}

func TestDayOf(t *testing.T) {
	got := DayOf(time.Date(2026, 3, 10, 23, 59, 0, 0, time.FixedZone("UTC+5", 5*3600)))
	if got != "2026-03-10" {
		t.Errorf("DayOf() = %q, want 2026-03-10", got)
	}

	// Early morning east of UTC still falls on the previous UTC day.
	got = DayOf(time.Date(2026, 3, 11, 2, 0, 0, 0, time.FixedZone("UTC+5", 5*3600)))
	if got != "2026-03-10" {
		t.Errorf("DayOf() = %q, want 2026-03-10 (UTC)", got)
	}
}
