package gamification

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"
	"github.com/studyforge/backend/studyforge/database/models"
	"github.com/studyforge/backend/studyforge/database/repositories"
)

type questTemplate struct {
	Type     string
	Title    string
	Total    int64
	XPReward int64
}

var questTemplates = []questTemplate{
	{Type: models.QuestTypeQuiz, Title: "Complete 3 quizzes", Total: 3, XPReward: 50},
	{Type: models.QuestTypeStudyTime, Title: "Study for 30 minutes", Total: 30, XPReward: 40},
	{Type: models.QuestTypeVideo, Title: "Watch 2 video lessons", Total: 2, XPReward: 30},
	{Type: models.QuestTypeCourse, Title: "Finish a course", Total: 1, XPReward: 100},
	{Type: models.QuestTypeStreak, Title: "Keep your streak alive", Total: 1, XPReward: 20},
}

// GetOrCreateDailyQuests returns the user's quest batch for today, creating
// it on the first request of the day. Repeated calls the same day return the
// same batch; concurrent first requests resolve to a single persisted record
// via the (user_id, date) uniqueness constraint, with in-process callers
// additionally collapsed through singleflight.
func (s *Service) GetOrCreateDailyQuests(ctx context.Context, userID, today string) (*models.DailyQuests, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "must not be empty"}
	}
	if !validDay(today) {
		return nil, &ValidationError{Field: "today", Reason: "must be a YYYY-MM-DD date"}
	}

	v, err, _ := s.questCreate.Do(userID+"|"+today, func() (interface{}, error) {
		return s.getOrCreateDailyQuests(ctx, userID, today)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.DailyQuests), nil
}

func (s *Service) getOrCreateDailyQuests(ctx context.Context, userID, today string) (*models.DailyQuests, error) {
	batch, err := s.quests.GetDaily(ctx, userID, today)
	if err != nil {
		return nil, storageErr("load daily quests", err)
	}
	if batch != nil {
		return batch, nil
	}

	batch = s.newDailyBatch(userID, today)
	err = s.quests.CreateDaily(ctx, batch)
	if errors.Is(err, repositories.ErrQuestBatchExists) {
		// Another request created today's batch first; its record wins.
		batch, err = s.quests.GetDaily(ctx, userID, today)
		if err != nil {
			return nil, storageErr("load daily quests", err)
		}
		if batch == nil {
			return nil, &ConcurrencyConflictError{Op: "create daily quests"}
		}
		return batch, nil
	}
	if err != nil {
		return nil, storageErr("create daily quests", err)
	}

	slog.Info("Daily quests generated",
		slog.String("user_id", userID),
		slog.String("date", today),
		slog.Int("count", len(batch.Quests)))
	return batch, nil
}

func (s *Service) newDailyBatch(userID, today string) *models.DailyQuests {
	count := s.cfg.DailyQuestCount
	if count < 3 {
		count = 3
	}
	if count > 5 {
		count = 5
	}
	if count > len(questTemplates) {
		count = len(questTemplates)
	}

	quests := make([]models.DailyQuest, 0, count)
	for _, idx := range rand.Perm(len(questTemplates))[:count] {
		tpl := questTemplates[idx]
		quests = append(quests, models.DailyQuest{
			QuestID:  uuid.NewString(),
			Title:    tpl.Title,
			Type:     tpl.Type,
			XPReward: tpl.XPReward,
			Total:    tpl.Total,
		})
	}

	return &models.DailyQuests{
		UserID: userID,
		Date:   today,
		Quests: quests,
	}
}

// UpdateQuestProgress advances today's quests matching the activity's type,
// grants the XP reward of every quest the activity completed, and awards the
// all-complete daily bonus at most once per day.
func (s *Service) UpdateQuestProgress(ctx context.Context, userID, today string, act Activity) (*models.DailyQuests, error) {
	if act == nil {
		return nil, &ValidationError{Field: "activity", Reason: "must not be empty"}
	}
	if err := act.Validate(); err != nil {
		return nil, err
	}

	questType, amount := questProgressFor(act)
	return s.advanceQuests(ctx, userID, today, questType, amount)
}

// advanceStreakQuest progresses the streak quest after a successful streak
// touch. Streak quests have no backing activity type.
func (s *Service) advanceStreakQuest(ctx context.Context, userID, today string) (*models.DailyQuests, error) {
	return s.advanceQuests(ctx, userID, today, models.QuestTypeStreak, 1)
}

func (s *Service) advanceQuests(ctx context.Context, userID, today, questType string, amount int64) (*models.DailyQuests, error) {
	// Lazily materialize the batch so progress on the first activity of the
	// day is never lost.
	if _, err := s.GetOrCreateDailyQuests(ctx, userID, today); err != nil {
		return nil, err
	}

	batch, completed, err := s.quests.IncrementProgress(ctx, userID, today, questType, amount)
	if err != nil {
		return nil, storageErr("update quest progress", err)
	}
	if batch == nil {
		return nil, &NotFoundError{Resource: "daily quests", Key: userID + "/" + today}
	}

	for _, q := range completed {
		if _, err := s.applyXP(ctx, userID, models.StatsDelta{XP: q.XPReward}); err != nil {
			return nil, err
		}
		slog.Info("Daily quest completed",
			slog.String("user_id", userID),
			slog.String("quest_id", q.QuestID),
			slog.String("quest_type", q.Type))
	}

	return s.maybeAwardBonus(ctx, userID, today, batch)
}

func (s *Service) maybeAwardBonus(ctx context.Context, userID, today string, batch *models.DailyQuests) (*models.DailyQuests, error) {
	if batch.BonusAwarded || len(batch.Quests) == 0 {
		return batch, nil
	}

	// The filter re-checks completed_count and the bonus flag server-side,
	// so attempting unconditionally stays race-free.
	won, err := s.quests.AwardBonus(ctx, userID, today, len(batch.Quests))
	if err != nil {
		return nil, storageErr("award quest bonus", err)
	}
	if !won {
		return batch, nil
	}

	batch.BonusAwarded = true
	if _, err := s.applyXP(ctx, userID, models.StatsDelta{XP: s.cfg.DailyBonusXP}); err != nil {
		return nil, err
	}

	slog.Info("Daily quest bonus awarded",
		slog.String("user_id", userID),
		slog.String("date", today),
		slog.Int64("xp", s.cfg.DailyBonusXP))

	if s.notifier != nil {
		if err := s.notifier.QuestBonus(ctx, userID, today, s.cfg.DailyBonusXP); err != nil {
			slog.Warn("Failed to queue bonus notification",
				slog.String("user_id", userID),
				slog.Any("error", err))
		}
	}
	return batch, nil
}

func questProgressFor(act Activity) (string, int64) {
	switch a := act.(type) {
	case QuizCompleted:
		return models.QuestTypeQuiz, 1
	case StudySession:
		return models.QuestTypeStudyTime, a.Minutes
	case VideoWatched:
		return models.QuestTypeVideo, 1
	case CourseCompleted:
		return models.QuestTypeCourse, 1
	}
	return "", 0
}
