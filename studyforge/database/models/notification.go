package models

import "time"

// Notification is an outbox record for a gamification event. Written in the
// same request that produced the event and delivered separately; the
// delivered flag flips at most once, on confirmed delivery.
type Notification struct {
	ID          string     `bson:"_id" json:"id"`
	UserID      string     `bson:"user_id" json:"user_id"`
	Kind        string     `bson:"kind" json:"kind"`
	BadgeID     *string    `bson:"badge_id,omitempty" json:"badge_id,omitempty"`
	QuestDate   *string    `bson:"quest_date,omitempty" json:"quest_date,omitempty"`
	Title       string     `bson:"title" json:"title"`
	XP          int64      `bson:"xp" json:"xp"`
	Delivered   bool       `bson:"delivered" json:"delivered"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	DeliveredAt *time.Time `bson:"delivered_at,omitempty" json:"delivered_at,omitempty"`
}

// Notification kind constants
const (
	NotificationBadgeEarned = "badge_earned"
	NotificationQuestBonus  = "quest_bonus"
)
