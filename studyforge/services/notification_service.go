package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"

	"github.com/studyforge/backend/studyforge/database/models"
	"github.com/studyforge/backend/studyforge/database/repositories"
)

const dedupCacheSize = 4096

// NotificationService is the delivery surface for gamification events. The
// repository outbox is the source of truth; the LRU only short-circuits
// duplicate enqueues from retried requests before they hit the database.
type NotificationService struct {
	repo   repositories.NotificationRepository
	badges repositories.BadgeRepository
	dedup  *lru.Cache
}

func NewNotificationService(repo repositories.NotificationRepository, badges repositories.BadgeRepository) *NotificationService {
	cache, err := lru.New(dedupCacheSize)
	if err != nil {
		panic(fmt.Sprintf("Unable to create notification dedup cache: %v", err))
	}

	return &NotificationService{
		repo:   repo,
		badges: badges,
		dedup:  cache,
	}
}

// BadgeEarned enqueues a badge award notification. Called at most once per
// (user, badge) by the badge engine; the dedup cache absorbs the rare replay.
func (s *NotificationService) BadgeEarned(ctx context.Context, userID string, def *models.BadgeDefinition, at time.Time) error {
	key := fmt.Sprintf("badge:%s:%s", userID, def.BadgeID)
	if seen, _ := s.dedup.ContainsOrAdd(key, struct{}{}); seen {
		return nil
	}

	badgeID := def.BadgeID
	return s.repo.Enqueue(ctx, &models.Notification{
		ID:      uuid.NewString(),
		UserID:  userID,
		Kind:    models.NotificationBadgeEarned,
		BadgeID: &badgeID,
		Title:   fmt.Sprintf("Badge earned: %s", def.Name),
	})
}

// QuestBonus enqueues a daily quest completion bonus notification.
func (s *NotificationService) QuestBonus(ctx context.Context, userID, date string, xp int64) error {
	key := fmt.Sprintf("bonus:%s:%s", userID, date)
	if seen, _ := s.dedup.ContainsOrAdd(key, struct{}{}); seen {
		return nil
	}

	questDate := date
	return s.repo.Enqueue(ctx, &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      models.NotificationQuestBonus,
		QuestDate: &questDate,
		Title:     "All daily quests complete!",
		XP:        xp,
	})
}

// Pending returns the user's undelivered notifications, oldest first.
func (s *NotificationService) Pending(ctx context.Context, userID string) ([]*models.Notification, error) {
	return s.repo.GetPending(ctx, userID)
}

// Acknowledge marks a notification delivered. Returns nil when the record is
// absent or was already acknowledged. For badge notifications the badge's
// notified flag flips alongside, best effort.
func (s *NotificationService) Acknowledge(ctx context.Context, userID, id string) (*models.Notification, error) {
	n, err := s.repo.MarkDelivered(ctx, userID, id)
	if err != nil || n == nil {
		return nil, err
	}

	if n.Kind == models.NotificationBadgeEarned && n.BadgeID != nil {
		if err := s.badges.MarkNotified(ctx, userID, *n.BadgeID); err != nil {
			slog.Warn("Failed to flip badge notified flag",
				slog.String("user_id", userID),
				slog.String("badge_id", *n.BadgeID),
				slog.Any("error", err))
		}
	}

	return n, nil
}
