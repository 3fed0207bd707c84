package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/studyforge/backend/studyforge/database/models"
	"github.com/uptrace/bun"
)

type SubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Subscription, error)
	// Upsert mirrors the billing provider's webhook state into the local row.
	Upsert(ctx context.Context, sub *models.Subscription) error
}

type subscriptionRepository struct {
	db *bun.DB
}

func NewSubscriptionRepository(db *bun.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	sub := new(models.Subscription)
	err := r.db.NewSelect().
		Model(sub).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}

func (r *subscriptionRepository) Upsert(ctx context.Context, sub *models.Subscription) error {
	sub.UpdatedAt = time.Now()

	_, err := r.db.NewInsert().
		Model(sub).
		On("CONFLICT (user_id) DO UPDATE").
		Set("plan = EXCLUDED.plan").
		Set("status = EXCLUDED.status").
		Set("current_period_end = EXCLUDED.current_period_end").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
