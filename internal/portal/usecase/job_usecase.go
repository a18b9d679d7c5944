package usecase

import (
	"context"
	"time"

	"job-portal/internal/portal/domain/model"
	"job-portal/internal/portal/domain/repository"
	"job-portal/internal/shared/eventbus"
	"job-portal/internal/shared/logger"
	"job-portal/internal/shared/utils"
)

// JobUsecaseInterface defines the job posting operations.
type JobUsecaseInterface interface {
	ListJobs(ctx context.Context, hrEmail string) ([]*model.Job, error)
	GetJob(ctx context.Context, id string) (*model.Job, error)
	CreateJob(ctx context.Context, job *model.Job) (string, error)
	DeleteJob(ctx context.Context, id string) (int64, error)
}

// JobUsecase implements JobUsecaseInterface.
type JobUsecase struct {
	jobs repository.JobRepository
	pub  publisher
	log  logger.Logger
}

// NewJobUsecase creates a JobUsecase. bus may be nil.
func NewJobUsecase(jobs repository.JobRepository, bus eventbus.EventBusInterface, log logger.Logger) *JobUsecase {
	if log == nil {
		log = logger.NewLogger()
	}
	return &JobUsecase{
		jobs: jobs,
		pub:  publisher{bus: bus, now: time.Now},
		log:  log.WithComponent("job_usecase"),
	}
}

func (uc *JobUsecase) ListJobs(ctx context.Context, hrEmail string) ([]*model.Job, error) {
	return uc.jobs.List(ctx, hrEmail)
}

func (uc *JobUsecase) GetJob(ctx context.Context, id string) (*model.Job, error) {
	return uc.jobs.GetByID(ctx, id)
}

func (uc *JobUsecase) CreateJob(ctx context.Context, job *model.Job) (string, error) {
	ctx = utils.WithOperation(ctx, "create_job")
	id, err := uc.jobs.Create(ctx, job)
	if err != nil {
		return "", err
	}
	uc.log.WithContext(ctx).Infof("job %s created by %s", id, job.HREmail)
	uc.pub.publishData(ctx, eventbus.EventTypeJobCreated, job)
	return id, nil
}

// DeleteJob removes the posting only. Its applications stay in place.
func (uc *JobUsecase) DeleteJob(ctx context.Context, id string) (int64, error) {
	ctx = utils.WithOperation(ctx, "delete_job")
	deleted, err := uc.jobs.Delete(ctx, id)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		uc.log.WithContext(ctx).Infof("job %s deleted", id)
		uc.pub.publish(ctx, eventbus.EventTypeJobDeleted, &model.ApplicationEvent{
			Type:  model.JobDeleted,
			JobID: id,
		})
	}
	return deleted, nil
}

var _ JobUsecaseInterface = (*JobUsecase)(nil)
