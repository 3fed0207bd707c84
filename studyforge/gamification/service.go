package gamification

import (
	"context"
	"time"

	"github.com/studyforge/backend/studyforge/database/models"
	"github.com/studyforge/backend/studyforge/database/repositories"
	"github.com/studyforge/backend/studyforge/leveling"
	"golang.org/x/sync/singleflight"
)

// Notifier is the write sink for gamification events. Delivery confirmation
// is handled elsewhere; the core only enqueues and never retries.
type Notifier interface {
	BadgeEarned(ctx context.Context, userID string, def *models.BadgeDefinition, at time.Time) error
	QuestBonus(ctx context.Context, userID, date string, xp int64) error
}

type Config struct {
	// XP awards per activity
	QuizXP           int64
	PerfectBonusXP   int64
	StudyXPPerMinute int64
	VideoXP          int64
	CourseXP         int64

	// Daily quests
	DailyQuestCount int
	DailyBonusXP    int64
}

func NewDefaultConfig() *Config {
	return &Config{
		QuizXP:           50,
		PerfectBonusXP:   25,
		StudyXPPerMinute: 2,
		VideoXP:          20,
		CourseXP:         150,
		DailyQuestCount:  4,
		DailyBonusXP:     100,
	}
}

// Service implements the gamification core: stats tracking, streaks, badges
// and daily quests. All shared-field mutations go through the repositories'
// atomic primitives; the service never read-modify-writes shared counters.
type Service struct {
	cfg      *Config
	calc     *leveling.Calculator
	stats    repositories.StatsRepository
	badges   repositories.BadgeRepository
	quests   repositories.QuestRepository
	activity repositories.ActivityRepository
	notifier Notifier

	questCreate singleflight.Group
	now         func() time.Time
}

func New(
	cfg *Config,
	calc *leveling.Calculator,
	stats repositories.StatsRepository,
	badges repositories.BadgeRepository,
	quests repositories.QuestRepository,
	activity repositories.ActivityRepository,
	notifier Notifier,
) *Service {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	return &Service{
		cfg:      cfg,
		calc:     calc,
		stats:    stats,
		badges:   badges,
		quests:   quests,
		activity: activity,
		notifier: notifier,
		now:      time.Now,
	}
}

// ActivityResult is the aggregate outcome of one processed activity event.
type ActivityResult struct {
	Stats     *models.UserStats   `json:"stats"`
	Streak    *StreakResult       `json:"streak"`
	Quests    *models.DailyQuests `json:"quests"`
	NewBadges []*BadgeAward       `json:"new_badges"`
}

// ProcessActivity runs the full pipeline for one activity event: record it,
// touch the streak, advance today's quests and re-evaluate badges.
func (s *Service) ProcessActivity(ctx context.Context, userID string, act Activity) (*ActivityResult, error) {
	stats, err := s.RecordActivity(ctx, userID, act)
	if err != nil {
		return nil, err
	}

	today := DayOf(s.now())
	streak, err := s.TouchStreak(ctx, userID, today)
	if err != nil {
		return nil, err
	}

	quests, err := s.UpdateQuestProgress(ctx, userID, today, act)
	if err != nil {
		return nil, err
	}
	if streak.Advanced {
		quests, err = s.advanceStreakQuest(ctx, userID, today)
		if err != nil {
			return nil, err
		}
	}

	awards, err := s.EvaluateBadges(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Re-read so XP granted by quest completions shows up in the response.
	stats, err = s.stats.Get(ctx, userID)
	if err != nil {
		return nil, storageErr("load stats", err)
	}

	return &ActivityResult{
		Stats:     stats,
		Streak:    streak,
		Quests:    quests,
		NewBadges: awards,
	}, nil
}

// GetStats returns the user's stats document, with levelling progress filled
// in. Users with no recorded activity get a zero-value projection rather than
// an error.
func (s *Service) GetStats(ctx context.Context, userID string) (*StatsView, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "must not be empty"}
	}

	stats, err := s.stats.Get(ctx, userID)
	if err != nil {
		return nil, storageErr("load stats", err)
	}
	if stats == nil {
		stats = &models.UserStats{UserID: userID, CurrentLevel: 1}
	}

	current, required := s.calc.ProgressToNext(stats.CurrentXP)
	return &StatsView{
		UserStats:     stats,
		XPIntoLevel:   current,
		XPToNextLevel: required,
	}, nil
}

// StatsView decorates raw stats with derived levelling numbers.
type StatsView struct {
	*models.UserStats
	XPIntoLevel   int64 `json:"xp_into_level"`
	XPToNextLevel int64 `json:"xp_to_next_level"`
}

const dayFormat = "2006-01-02"

// DayOf returns the UTC calendar day of t in the wire format used for
// last_study_date and quest batch keys.
func DayOf(t time.Time) string {
	return t.UTC().Format(dayFormat)
}

func previousDay(day string) string {
	t, err := time.Parse(dayFormat, day)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(dayFormat)
}

func validDay(day string) bool {
	_, err := time.Parse(dayFormat, day)
	return err == nil
}
