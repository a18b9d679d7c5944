package mongodb

import (
	"context"
	"errors"
	"fmt"

	"job-portal/internal/portal/config"
	"job-portal/internal/portal/domain/model"
	"job-portal/internal/portal/domain/repository"
	apperrors "job-portal/internal/shared/errors"
	"job-portal/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const fieldApplicationCount = "applicationCount"

// JobRepository stores postings in a single collection.
type JobRepository struct {
	col  Collection
	mode config.CounterMode
	log  logger.Logger
}

// NewJobRepository creates a JobRepository. An invalid mode falls back to atomic.
func NewJobRepository(col Collection, mode config.CounterMode, log logger.Logger) *JobRepository {
	if !mode.Valid() {
		mode = config.CounterAtomic
	}
	if log == nil {
		log = logger.NewLogger()
	}
	return &JobRepository{
		col:  col,
		mode: mode,
		log:  log.WithComponent("job_repository"),
	}
}

// CounterMode returns the strategy used by AdjustApplicationCount.
func (r *JobRepository) CounterMode() config.CounterMode {
	return r.mode
}

func (r *JobRepository) List(ctx context.Context, hrEmail string) ([]*model.Job, error) {
	filter := bson.M{}
	if hrEmail != "" {
		filter["hr_email"] = hrEmail
	}

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer cur.Close(ctx)

	jobs := make([]*model.Job, 0)
	for cur.Next(ctx) {
		var job model.Job
		if err := cur.Decode(&job); err != nil {
			return nil, fmt.Errorf("failed to decode job: %w", err)
		}
		jobs = append(jobs, &job)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}
	return jobs, nil
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*model.Job, error) {
	filter, ok := idFilter(id)
	if !ok {
		return nil, apperrors.ErrJobNotFound
	}

	var job model.Job
	if err := r.col.FindOne(ctx, filter).Decode(&job); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	return &job, nil
}

func (r *JobRepository) Create(ctx context.Context, job *model.Job) (string, error) {
	job.ID = ""
	job.ApplicationCount = 0

	inserted, err := r.col.InsertOne(ctx, job)
	if err != nil {
		return "", fmt.Errorf("failed to create job: %w", err)
	}
	job.ID = hexID(inserted)
	return job.ID, nil
}

func (r *JobRepository) Delete(ctx context.Context, id string) (int64, error) {
	filter, ok := idFilter(id)
	if !ok {
		return 0, nil
	}

	deleted, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete job %s: %w", id, err)
	}
	return deleted, nil
}

// AdjustApplicationCount adds delta to the job's applicationCount.
//
// In atomic mode this is one $inc, so concurrent callers never lose an update.
// In read-modify-write mode the count is read, changed in memory and written
// back with $set; two callers interleaving between the read and the write
// both write the same value and one change is lost.
func (r *JobRepository) AdjustApplicationCount(ctx context.Context, id string, delta int64) (int64, error) {
	filter, ok := idFilter(id)
	if !ok {
		return 0, apperrors.ErrJobNotFound
	}

	var (
		count int64
		err   error
	)
	if r.mode == config.CounterReadModifyWrite {
		count, err = r.readModifyWrite(ctx, id, filter, delta)
	} else {
		count, err = r.increment(ctx, id, filter, delta)
	}
	if err != nil {
		return 0, err
	}

	r.log.WithContext(ctx).Debugf("applicationCount of job %s is now %d (%s)", id, count, r.mode)
	return count, nil
}

func (r *JobRepository) increment(ctx context.Context, id string, filter bson.M, delta int64) (int64, error) {
	update := bson.M{"$inc": bson.M{fieldApplicationCount: delta}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var job model.Job
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&job); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, apperrors.ErrJobNotFound
		}
		return 0, fmt.Errorf("failed to increment application count for job %s: %w", id, err)
	}
	return job.ApplicationCount, nil
}

func (r *JobRepository) readModifyWrite(ctx context.Context, id string, filter bson.M, delta int64) (int64, error) {
	var job model.Job
	if err := r.col.FindOne(ctx, filter).Decode(&job); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, apperrors.ErrJobNotFound
		}
		return 0, fmt.Errorf("failed to read application count for job %s: %w", id, err)
	}

	count := job.ApplicationCount + delta
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{fieldApplicationCount: count}})
	if err != nil {
		return 0, fmt.Errorf("failed to write application count for job %s: %w", id, err)
	}
	if res.Matched == 0 {
		return 0, apperrors.ErrJobNotFound
	}
	return count, nil
}

// idFilter builds an _id filter. ok is false when id is not an ObjectID hex,
// which callers treat as not found.
func idFilter(id string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid}, true
}

func hexID(inserted interface{}) string {
	switch v := inserted.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

var _ repository.JobRepository = (*JobRepository)(nil)
