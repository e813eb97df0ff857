package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/adityavardhansharma/ai-mock-interview/internal/models"
)

var ErrNotFound = errors.New("record not found")

// InterviewRepository persists interview definitions.
type InterviewRepository interface {
	Create(ctx context.Context, interview *models.Interview) error
	GetByID(ctx context.Context, id string) (*models.Interview, error)
	// ListByOwner returns the owner's interviews, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Interview, error)
	Update(ctx context.Context, interview *models.Interview) error
	Delete(ctx context.Context, id string) error
}

// AnswerRepository persists graded answers.
type AnswerRepository interface {
	// Upsert inserts or replaces the answer keyed by (OwnerID, InterviewID,
	// Question) and returns the stored record. It is atomic per key.
	Upsert(ctx context.Context, answer *models.UserAnswer) (*models.UserAnswer, error)
	ListByInterview(ctx context.Context, ownerID, interviewID string) ([]models.UserAnswer, error)
	// ListUpdatedSince pages answers in (UpdatedAt, ID) order, starting after
	// the cursor (since, afterID). Answers sharing since are returned only
	// when their ID sorts after afterID. A limit <= 0 means no limit.
	ListUpdatedSince(ctx context.Context, since time.Time, afterID string, limit int) ([]models.UserAnswer, error)
	DeleteByInterview(ctx context.Context, ownerID, interviewID string) error
}

// Pinger is implemented by stores that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store bundles both repositories of one backend.
type Store struct {
	Interviews InterviewRepository
	Answers    AnswerRepository
	Pinger     Pinger
	Close      func(ctx context.Context) error
}
