package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/studyforge/backend/studyforge/database/models"
	"github.com/uptrace/bun"
)

type EbookRepository interface {
	// GetByID returns nil without error when no row matches.
	GetByID(ctx context.Context, id int64) (*models.Ebook, error)
	GetAll(ctx context.Context) ([]*models.Ebook, error)
	GetBySubject(ctx context.Context, subject string) ([]*models.Ebook, error)
	Create(ctx context.Context, ebook *models.Ebook) error
}

type ebookRepository struct {
	db *bun.DB
}

func NewEbookRepository(db *bun.DB) EbookRepository {
	return &ebookRepository{db: db}
}

func (r *ebookRepository) GetByID(ctx context.Context, id int64) (*models.Ebook, error) {
	ebook := new(models.Ebook)
	err := r.db.NewSelect().
		Model(ebook).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return ebook, nil
}

func (r *ebookRepository) GetAll(ctx context.Context) ([]*models.Ebook, error) {
	var ebooks []*models.Ebook
	err := r.db.NewSelect().
		Model(&ebooks).
		Order("title ASC").
		Scan(ctx)

	return ebooks, err
}

func (r *ebookRepository) GetBySubject(ctx context.Context, subject string) ([]*models.Ebook, error) {
	var ebooks []*models.Ebook
	err := r.db.NewSelect().
		Model(&ebooks).
		Where("subject = ?", subject).
		Order("title ASC").
		Scan(ctx)

	return ebooks, err
}

func (r *ebookRepository) Create(ctx context.Context, ebook *models.Ebook) error {
	ebook.CreatedAt = time.Now()
	ebook.UpdatedAt = ebook.CreatedAt
	_, err := r.db.NewInsert().Model(ebook).Exec(ctx)
	return err
}
