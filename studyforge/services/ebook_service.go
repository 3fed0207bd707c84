package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/studyforge/backend/studyforge/database/models"
	"github.com/studyforge/backend/studyforge/database/repositories"
	"github.com/studyforge/backend/studyforge/gamification"
)

// ErrSubscriptionRequired is returned when a free-plan user requests a
// premium ebook download.
var ErrSubscriptionRequired = errors.New("active subscription required")

// ObjectSigner produces download URLs for stored ebook files.
type ObjectSigner interface {
	EbookDownloadURL(ctx context.Context, fileKey string) (string, error)
}

type EbookService struct {
	ebooks repositories.EbookRepository
	subs   repositories.SubscriptionRepository
	signer ObjectSigner
}

func NewEbookService(ebooks repositories.EbookRepository, subs repositories.SubscriptionRepository, signer ObjectSigner) *EbookService {
	return &EbookService{
		ebooks: ebooks,
		subs:   subs,
		signer: signer,
	}
}

// Search returns the catalog filtered by a fuzzy title match. An empty query
// returns the full catalog.
func (s *EbookService) Search(ctx context.Context, query, subjectID string) ([]*models.Ebook, error) {
	var (
		books []*models.Ebook
		err   error
	)
	if subjectID != "" {
		books, err = s.ebooks.GetBySubject(ctx, subjectID)
	} else {
		books, err = s.ebooks.GetAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	if query == "" {
		return books, nil
	}

	titles := make([]string, len(books))
	for i, b := range books {
		titles[i] = b.Title
	}

	matches := fuzzy.Find(query, titles)
	result := make([]*models.Ebook, 0, len(matches))
	for _, m := range matches {
		result = append(result, books[m.Index])
	}
	return result, nil
}

// DownloadURL resolves an ebook and returns a presigned URL for its file.
// Premium titles require an active subscription.
func (s *EbookService) DownloadURL(ctx context.Context, userID string, ebookID int64) (string, error) {
	ebook, err := s.ebooks.GetByID(ctx, ebookID)
	if err != nil {
		return "", err
	}
	if ebook == nil {
		return "", &gamification.NotFoundError{Resource: "ebook", Key: strconv.FormatInt(ebookID, 10)}
	}

	if ebook.Premium {
		sub, err := s.subs.GetByUserID(ctx, userID)
		if err != nil {
			return "", err
		}
		if sub == nil || !sub.IsActive(time.Now()) {
			return "", ErrSubscriptionRequired
		}
	}

	return s.signer.EbookDownloadURL(ctx, ebook.FileKey)
}

// Subscription returns the user's subscription, defaulting to an inactive
// free plan when no row exists yet.
func (s *EbookService) Subscription(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := s.subs.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return &models.Subscription{
			UserID: userID,
			Plan:   models.PlanFree,
			Status: models.SubscriptionInactive,
		}, nil
	}
	return sub, nil
}
