package mongodb

import (
	"context"
	"errors"
	"fmt"

	"job-portal/internal/portal/domain/model"
	"job-portal/internal/portal/domain/repository"
	apperrors "job-portal/internal/shared/errors"
	"job-portal/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ApplicationRepository stores job applications in a single collection.
type ApplicationRepository struct {
	col Collection
	log logger.Logger
}

// NewApplicationRepository creates an ApplicationRepository.
func NewApplicationRepository(col Collection, log logger.Logger) *ApplicationRepository {
	if log == nil {
		log = logger.NewLogger()
	}
	return &ApplicationRepository{
		col: col,
		log: log.WithComponent("application_repository"),
	}
}

func (r *ApplicationRepository) ListByApplicant(ctx context.Context, email string) ([]*model.Application, error) {
	return r.list(ctx, bson.M{"applicant_email": email})
}

func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID string) ([]*model.Application, error) {
	return r.list(ctx, bson.M{"job_id": jobID})
}

func (r *ApplicationRepository) list(ctx context.Context, filter bson.M) ([]*model.Application, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer cur.Close(ctx)

	apps := make([]*model.Application, 0)
	for cur.Next(ctx) {
		var app model.Application
		if err := cur.Decode(&app); err != nil {
			return nil, fmt.Errorf("failed to decode application: %w", err)
		}
		apps = append(apps, &app)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}
	return apps, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*model.Application, error) {
	filter, ok := idFilter(id)
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}

	var app model.Application
	if err := r.col.FindOne(ctx, filter).Decode(&app); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application %s: %w", id, err)
	}
	return &app, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, app *model.Application) (string, error) {
	app.ID = ""
	inserted, err := r.col.InsertOne(ctx, app)
	if err != nil {
		return "", fmt.Errorf("failed to create application: %w", err)
	}
	app.ID = hexID(inserted)
	return app.ID, nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id, status string) (*repository.UpdateResult, error) {
	filter, ok := idFilter(id)
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}

	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return nil, fmt.Errorf("failed to update application %s: %w", id, err)
	}
	if res.Matched == 0 {
		return nil, apperrors.ErrApplicationNotFound
	}
	return &repository.UpdateResult{Matched: res.Matched, Modified: res.Modified}, nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, id string) (int64, error) {
	filter, ok := idFilter(id)
	if !ok {
		return 0, nil
	}

	deleted, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete application %s: %w", id, err)
	}
	return deleted, nil
}

var _ repository.ApplicationRepository = (*ApplicationRepository)(nil)
