package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/studyforge/backend/studyforge/database/models"
	"github.com/studyforge/backend/studyforge/gamification"
)

type fakeEbookRepo struct {
	books []*models.Ebook
}

func (r *fakeEbookRepo) GetByID(ctx context.Context, id int64) (*models.Ebook, error) {
	for _, b := range r.books {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, nil
}

func (r *fakeEbookRepo) GetAll(ctx context.Context) ([]*models.Ebook, error) {
	return r.books, nil
}

func (r *fakeEbookRepo) GetBySubject(ctx context.Context, subject string) ([]*models.Ebook, error) {
	var out []*models.Ebook
	for _, b := range r.books {
		if b.Subject == subject {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeEbookRepo) Create(ctx context.Context, ebook *models.Ebook) error {
	r.books = append(r.books, ebook)
	return nil
}

type fakeSubscriptionRepo struct {
	subs map[string]*models.Subscription
}

func (r *fakeSubscriptionRepo) GetByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	return r.subs[userID], nil
}

func (r *fakeSubscriptionRepo) Upsert(ctx context.Context, sub *models.Subscription) error {
	r.subs[sub.UserID] = sub
	return nil
}

type fakeSigner struct{}

func (fakeSigner) EbookDownloadURL(ctx context.Context, fileKey string) (string, error) {
	return "https://cdn.example.test/" + fileKey, nil
}

func testCatalog() []*models.Ebook {
	return []*models.Ebook{
		{ID: 1, Title: "Algebra Basics", Author: "R. Meyer", Subject: "math", FileKey: "algebra.pdf"},
		{ID: 2, Title: "Organic Chemistry", Author: "T. Okafor", Subject: "chemistry", FileKey: "orgo.pdf", Premium: true},
		{ID: 3, Title: "Linear Algebra Done Quickly", Author: "S. Araya", Subject: "math", FileKey: "linalg.pdf"},
	}
}

func newTestEbookService(subs map[string]*models.Subscription) *EbookService {
	if subs == nil {
		subs = make(map[string]*models.Subscription)
	}
	return NewEbookService(
		&fakeEbookRepo{books: testCatalog()},
		&fakeSubscriptionRepo{subs: subs},
		fakeSigner{},
	)
}

func TestEbookService_Search(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		subjectID  string
		wantTitles []string
	}{
		{
			name:       "empty query returns catalog",
			wantTitles: []string{"Algebra Basics", "Organic Chemistry", "Linear Algebra Done Quickly"},
		},
		{
			name:       "subject filter",
			subjectID:  "math",
			wantTitles: []string{"Algebra Basics", "Linear Algebra Done Quickly"},
		},
		{
			name:       "fuzzy match tolerates typos",
			query:      "algbra",
			wantTitles: []string{"Algebra Basics", "Linear Algebra Done Quickly"},
		},
		{
			name:       "no match",
			query:      "zzzzzz",
			wantTitles: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestEbookService(nil)

			got, err := svc.Search(context.Background(), tt.query, tt.subjectID)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(got) != len(tt.wantTitles) {
				t.Fatalf("Search() returned %d books, want %d", len(got), len(tt.wantTitles))
			}

			gotTitles := make(map[string]bool, len(got))
			for _, b := range got {
				gotTitles[b.Title] = true
			}
			for _, title := range tt.wantTitles {
				if !gotTitles[title] {
					t.Errorf("Search() missing %q", title)
				}
			}
		})
	}
}

func TestEbookService_DownloadURL(t *testing.T) {
	activeSub := &models.Subscription{
		UserID:           "premium-user",
		Plan:             models.PlanPremium,
		Status:           models.SubscriptionActive,
		CurrentPeriodEnd: time.Now().Add(24 * time.Hour),
	}
	lapsedSub := &models.Subscription{
		UserID:           "lapsed-user",
		Plan:             models.PlanPremium,
		Status:           models.SubscriptionActive,
		CurrentPeriodEnd: time.Now().Add(-time.Hour),
	}

	tests := []struct {
		name    string
		userID  string
		ebookID int64
		want    string
		wantErr error
	}{
		{
			name:    "free book without subscription",
			userID:  "free-user",
			ebookID: 1,
			want:    "https://cdn.example.test/algebra.pdf",
		},
		{
			name:    "premium book with active subscription",
			userID:  "premium-user",
			ebookID: 2,
			want:    "https://cdn.example.test/orgo.pdf",
		},
		{
			name:    "premium book without subscription",
			userID:  "free-user",
			ebookID: 2,
			wantErr: ErrSubscriptionRequired,
		},
		{
			name:    "premium book with lapsed subscription",
			userID:  "lapsed-user",
			ebookID: 2,
			wantErr: ErrSubscriptionRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestEbookService(map[string]*models.Subscription{
				"premium-user": activeSub,
				"lapsed-user":  lapsedSub,
			})

			got, err := svc.DownloadURL(context.Background(), tt.userID, tt.ebookID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DownloadURL() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DownloadURL() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DownloadURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEbookService_DownloadURL_UnknownBook(t *testing.T) {
	svc := newTestEbookService(nil)

	_, err := svc.DownloadURL(context.Background(), "u1", 404)

	var nfErr *gamification.NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("DownloadURL() error = %v, want NotFoundError", err)
	}
}

func TestEbookService_Subscription_DefaultsToFree(t *testing.T) {
	svc := newTestEbookService(nil)

	sub, err := svc.Subscription(context.Background(), "new-user")
	if err != nil {
		t.Fatalf("Subscription() error = %v", err)
	}
	if sub.Plan != models.PlanFree || sub.Status != models.SubscriptionInactive {
		t.Errorf("Subscription() = %+v, want inactive free plan", sub)
	}
	if sub.IsActive(time.Now()) {
		t.Errorf("default subscription reports active")
	}
}
