package repository

import (
	"context"

	"job-portal/internal/portal/domain/model"
)

// UpdateResult mirrors the counts a document store reports for an update.
type UpdateResult struct {
	Matched  int64
	Modified int64
}

// JobRepository stores job postings.
type JobRepository interface {
	// List returns every posting, or only those owned by hrEmail when it is non-empty.
	List(ctx context.Context, hrEmail string) ([]*model.Job, error)
	// GetByID returns errors.ErrJobNotFound when no posting matches.
	GetByID(ctx context.Context, id string) (*model.Job, error)
	// Create inserts the posting with a zero applicationCount and returns its id.
	Create(ctx context.Context, job *model.Job) (string, error)
	// Delete is idempotent; an unknown id reports zero deleted.
	Delete(ctx context.Context, id string) (int64, error)
	// AdjustApplicationCount adds delta to the posting's applicationCount and
	// returns the count it wrote.
	AdjustApplicationCount(ctx context.Context, id string, delta int64) (int64, error)
}

// ApplicationRepository stores job applications.
type ApplicationRepository interface {
	ListByApplicant(ctx context.Context, email string) ([]*model.Application, error)
	ListByJob(ctx context.Context, jobID string) ([]*model.Application, error)
	// GetByID returns errors.ErrApplicationNotFound when no application matches.
	GetByID(ctx context.Context, id string) (*model.Application, error)
	Create(ctx context.Context, app *model.Application) (string, error)
	// UpdateStatus returns errors.ErrApplicationNotFound when no application matches.
	UpdateStatus(ctx context.Context, id, status string) (*UpdateResult, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// EventStore persists application events per job so listeners can resume.
type EventStore interface {
	Append(ctx context.Context, event *model.ApplicationEvent) error
	// Since returns the events stored after streamID; an empty streamID reads from the start.
	Since(ctx context.Context, jobID, streamID string) ([]*model.ApplicationEvent, error)
}
