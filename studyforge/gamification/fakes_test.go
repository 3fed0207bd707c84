package gamification

import (
	"context"
	"sync"
	"time"

	"github.com/studyforge/backend/studyforge/database/models"
	"github.com/studyforge/backend/studyforge/database/repositories"
	"github.com/studyforge/backend/studyforge/leveling"
)

// In-memory repositories mirroring the storage layer's atomic contracts so
// the core can be exercised without a database.

type fakeStatsRepo struct {
	mu      sync.Mutex
	stats   map[string]*models.UserStats
	failCAS bool
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{stats: make(map[string]*models.UserStats)}
}

func (r *fakeStatsRepo) Get(ctx context.Context, userID string) (*models.UserStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stats[userID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeStatsRepo) ApplyDelta(ctx context.Context, userID string, delta models.StatsDelta) (*models.UserStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stats[userID]
	if !ok {
		s = &models.UserStats{UserID: userID, CurrentLevel: 1}
		r.stats[userID] = s
	}
	s.CurrentXP += delta.XP
	s.TotalStudyMinutes += delta.StudyMinutes
	s.TotalQuizzes += delta.Quizzes
	s.PerfectScores += delta.PerfectScores
	s.CompletedCourses += delta.CompletedCourses

	cp := *s
	return &cp, nil
}

func (r *fakeStatsRepo) RaiseLevel(ctx context.Context, userID string, level int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stats[userID]; ok && level > s.CurrentLevel {
		s.CurrentLevel = level
	}
	return nil
}

func (r *fakeStatsRepo) CompareAndSetStudyDate(ctx context.Context, userID, prev, next string, streak int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failCAS {
		return false, nil
	}

	s, ok := r.stats[userID]
	if !ok {
		if prev != "" {
			return false, nil
		}
		s = &models.UserStats{UserID: userID, CurrentLevel: 1}
		r.stats[userID] = s
	}
	if s.LastStudyDate != prev {
		return false, nil
	}

	s.LastStudyDate = next
	s.CurrentStreak = streak
	if streak > s.LongestStreak {
		s.LongestStreak = streak
	}
	return true, nil
}

func (r *fakeStatsRepo) seed(s *models.UserStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.stats[s.UserID] = &cp
}

type fakeBadgeRepo struct {
	mu     sync.Mutex
	defs   []*models.BadgeDefinition
	badges map[string]*models.UserBadge
}

func newFakeBadgeRepo(defs ...*models.BadgeDefinition) *fakeBadgeRepo {
	return &fakeBadgeRepo{defs: defs, badges: make(map[string]*models.UserBadge)}
}

func (r *fakeBadgeRepo) GetDefinitions(ctx context.Context) ([]*models.BadgeDefinition, error) {
	return r.defs, nil
}

func (r *fakeBadgeRepo) GetUserBadges(ctx context.Context, userID string) ([]*models.UserBadge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.UserBadge
	for _, ub := range r.badges {
		if ub.UserID == userID {
			cp := *ub
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeBadgeRepo) SetProgress(ctx context.Context, userID, badgeID string, progress int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := userID + "|" + badgeID
	ub, ok := r.badges[key]
	if !ok {
		r.badges[key] = &models.UserBadge{UserID: userID, BadgeID: badgeID, Progress: progress}
		return nil
	}
	if ub.Earned {
		return nil
	}
	if progress > ub.Progress {
		ub.Progress = progress
	}
	return nil
}

func (r *fakeBadgeRepo) MarkEarned(ctx context.Context, userID, badgeID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := userID + "|" + badgeID
	ub, ok := r.badges[key]
	if !ok {
		ub = &models.UserBadge{UserID: userID, BadgeID: badgeID}
		r.badges[key] = ub
	}
	if ub.Earned {
		return false, nil
	}
	ub.Earned = true
	ub.EarnedDate = &at
	ub.Progress = 100
	return true, nil
}

func (r *fakeBadgeRepo) MarkNotified(ctx context.Context, userID, badgeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ub, ok := r.badges[userID+"|"+badgeID]; ok && ub.Earned {
		ub.Notified = true
	}
	return nil
}

type fakeQuestRepo struct {
	mu      sync.Mutex
	batches map[string]*models.DailyQuests

	// When set, the next CreateDaily loses the insert race: the preset
	// winner is stored instead and ErrQuestBatchExists is returned.
	conflictWinner *models.DailyQuests
}

func newFakeQuestRepo() *fakeQuestRepo {
	return &fakeQuestRepo{batches: make(map[string]*models.DailyQuests)}
}

func copyBatch(b *models.DailyQuests) *models.DailyQuests {
	cp := *b
	cp.Quests = make([]models.DailyQuest, len(b.Quests))
	copy(cp.Quests, b.Quests)
	return &cp
}

func (r *fakeQuestRepo) GetDaily(ctx context.Context, userID, date string) (*models.DailyQuests, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.batches[userID+"|"+date]
	if !ok {
		return nil, nil
	}
	return copyBatch(b), nil
}

func (r *fakeQuestRepo) CreateDaily(ctx context.Context, batch *models.DailyQuests) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conflictWinner != nil {
		winner := r.conflictWinner
		r.conflictWinner = nil
		r.batches[winner.UserID+"|"+winner.Date] = copyBatch(winner)
		return repositories.ErrQuestBatchExists
	}

	key := batch.UserID + "|" + batch.Date
	if _, ok := r.batches[key]; ok {
		return repositories.ErrQuestBatchExists
	}
	r.batches[key] = copyBatch(batch)
	return nil
}

func (r *fakeQuestRepo) IncrementProgress(ctx context.Context, userID, date, questType string, amount int64) (*models.DailyQuests, []models.DailyQuest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.batches[userID+"|"+date]
	if !ok {
		return nil, nil, nil
	}

	var completed []models.DailyQuest
	count := 0
	for i := range b.Quests {
		q := &b.Quests[i]
		if q.Type == questType && !q.Completed {
			q.Progress += amount
			if q.Progress >= q.Total {
				q.Completed = true
				completed = append(completed, *q)
			}
		}
		if q.Completed {
			count++
		}
	}
	b.CompletedCount = count

	return copyBatch(b), completed, nil
}

func (r *fakeQuestRepo) AwardBonus(ctx context.Context, userID, date string, questCount int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.batches[userID+"|"+date]
	if !ok || b.BonusAwarded || b.CompletedCount != questCount {
		return false, nil
	}
	b.BonusAwarded = true
	return true, nil
}

func (r *fakeQuestRepo) seed(b *models.DailyQuests) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[b.UserID+"|"+b.Date] = copyBatch(b)
}

type fakeActivityRepo struct {
	mu      sync.Mutex
	entries []*models.StudyActivity
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{}
}

func (r *fakeActivityRepo) Create(ctx context.Context, activity *models.StudyActivity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, activity)
	return nil
}

func (r *fakeActivityRepo) GetByUserDate(ctx context.Context, userID, date string) ([]*models.StudyActivity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.StudyActivity
	for _, e := range r.entries {
		if e.UserID == userID && e.Date == date {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeActivityRepo) GetRecent(ctx context.Context, userID string, limit int) ([]*models.StudyActivity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.StudyActivity
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].UserID == userID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	badges  []string
	bonuses []string
}

func (n *fakeNotifier) BadgeEarned(ctx context.Context, userID string, def *models.BadgeDefinition, at time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.badges = append(n.badges, userID+"|"+def.BadgeID)
	return nil
}

func (n *fakeNotifier) QuestBonus(ctx context.Context, userID, date string, xp int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bonuses = append(n.bonuses, userID+"|"+date)
	return nil
}

type testEnv struct {
	svc      *Service
	stats    *fakeStatsRepo
	badges   *fakeBadgeRepo
	quests   *fakeQuestRepo
	activity *fakeActivityRepo
	notifier *fakeNotifier
}

func newTestEnv(cfg *Config, defs ...*models.BadgeDefinition) *testEnv {
	env := &testEnv{
		stats:    newFakeStatsRepo(),
		badges:   newFakeBadgeRepo(defs...),
		quests:   newFakeQuestRepo(),
		activity: newFakeActivityRepo(),
		notifier: &fakeNotifier{},
	}
	env.svc = New(
		cfg,
		leveling.NewCalculator(leveling.NewDefaultConfig()),
		env.stats,
		env.badges,
		env.quests,
		env.activity,
		env.notifier,
	)
	return env
}
