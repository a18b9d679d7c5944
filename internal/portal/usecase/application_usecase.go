package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"job-portal/internal/portal/domain/model"
	"job-portal/internal/portal/domain/repository"
	apperrors "job-portal/internal/shared/errors"
	"job-portal/internal/shared/eventbus"
	"job-portal/internal/shared/logger"
	"job-portal/internal/shared/utils"
)

// ApplicationUsecaseInterface defines the job application operations.
type ApplicationUsecaseInterface interface {
	ListByApplicant(ctx context.Context, email string) ([]*model.Application, error)
	ListByJob(ctx context.Context, jobID string) ([]*model.Application, error)
	Submit(ctx context.Context, app *model.Application) (string, error)
	UpdateStatus(ctx context.Context, id, status string) (*repository.UpdateResult, error)
	Withdraw(ctx context.Context, id string) (int64, error)
}

// ApplicationUsecase keeps each job's applicationCount in step with its applications.
type ApplicationUsecase struct {
	apps repository.ApplicationRepository
	jobs repository.JobRepository
	pub  publisher
	log  logger.Logger
}

// NewApplicationUsecase creates an ApplicationUsecase. bus may be nil.
func NewApplicationUsecase(
	apps repository.ApplicationRepository,
	jobs repository.JobRepository,
	bus eventbus.EventBusInterface,
	log logger.Logger,
) *ApplicationUsecase {
	if log == nil {
		log = logger.NewLogger()
	}
	return &ApplicationUsecase{
		apps: apps,
		jobs: jobs,
		pub:  publisher{bus: bus, now: time.Now},
		log:  log.WithComponent("application_usecase"),
	}
}

// ListByApplicant returns the applicant's applications with the display fields
// of their jobs. Applications whose job no longer exists are returned unenriched.
func (uc *ApplicationUsecase) ListByApplicant(ctx context.Context, email string) ([]*model.Application, error) {
	apps, err := uc.apps.ListByApplicant(ctx, email)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]*model.Job)
	for _, app := range apps {
		job, cached := seen[app.JobID]
		if !cached {
			job, err = uc.jobs.GetByID(ctx, app.JobID)
			if err != nil && !errors.Is(err, apperrors.ErrJobNotFound) {
				return nil, fmt.Errorf("failed to load job %s for application %s: %w", app.JobID, app.ID, err)
			}
			seen[app.JobID] = job
		}
		app.Enrich(job)
	}
	return apps, nil
}

func (uc *ApplicationUsecase) ListByJob(ctx context.Context, jobID string) ([]*model.Application, error) {
	return uc.apps.ListByJob(ctx, jobID)
}

// Submit stores the application and adds one to its job's applicationCount.
// Nothing is stored when the job does not exist or the increment fails.
func (uc *ApplicationUsecase) Submit(ctx context.Context, app *model.Application) (string, error) {
	ctx = utils.WithOperation(ctx, "submit_application")
	app.JobID = strings.TrimSpace(app.JobID)
	if _, err := uc.jobs.GetByID(ctx, app.JobID); err != nil {
		return "", err
	}
	if app.Status == "" {
		app.Status = model.DefaultApplicationStatus
	}

	id, err := uc.apps.Create(ctx, app)
	if err != nil {
		return "", err
	}

	count, err := uc.jobs.AdjustApplicationCount(ctx, app.JobID, 1)
	if err != nil {
		uc.rollbackSubmit(ctx, app.JobID, id, err)
		return "", fmt.Errorf("failed to count application %s: %w", id, err)
	}

	uc.log.WithContext(ctx).Infof("application %s submitted to job %s by %s", id, app.JobID, app.ApplicantEmail)
	uc.pub.publish(ctx, eventbus.EventTypeApplicationSubmitted, &model.ApplicationEvent{
		Type:          model.ApplicationSubmitted,
		JobID:         app.JobID,
		ApplicationID: id,
		Status:        app.Status,
		Count:         count,
	})
	return id, nil
}

// rollbackSubmit removes an application whose count increment failed. It runs
// detached from ctx so a cancelled request still cleans up.
func (uc *ApplicationUsecase) rollbackSubmit(ctx context.Context, jobID, id string, cause error) {
	log := uc.log.WithContext(ctx).WithFields(map[string]interface{}{
		"job_id":         jobID,
		"application_id": id,
	})
	deleted, err := uc.apps.Delete(context.WithoutCancel(ctx), id)
	switch {
	case err != nil:
		log.Errorf("count not incremented (%v) and rollback failed: %v", cause, err)
	case deleted == 0:
		log.Errorf("count not incremented (%v) and application already gone", cause)
	default:
		log.Warnf("count not incremented, application rolled back: %v", cause)
	}
}

// UpdateStatus sets the status verbatim; any string is accepted.
func (uc *ApplicationUsecase) UpdateStatus(ctx context.Context, id, status string) (*repository.UpdateResult, error) {
	app, err := uc.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := uc.apps.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	if res.Modified > 0 {
		uc.pub.publish(ctx, eventbus.EventTypeApplicationStatusChanged, &model.ApplicationEvent{
			Type:          model.ApplicationStatusChanged,
			JobID:         app.JobID,
			ApplicationID: id,
			Status:        status,
		})
	}
	return res, nil
}

// Withdraw deletes the application, then subtracts one from the job's
// applicationCount. The count has no floor. Only the caller whose delete
// removed the record decrements; a second withdrawal of the same id returns
// ErrApplicationNotFound. A withdrawal from a deleted job is rejected with
// ErrJobNotFound and the application is kept.
func (uc *ApplicationUsecase) Withdraw(ctx context.Context, id string) (int64, error) {
	ctx = utils.WithOperation(ctx, "withdraw_application")
	app, err := uc.apps.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if _, err := uc.jobs.GetByID(ctx, app.JobID); err != nil {
		return 0, err
	}

	deleted, err := uc.apps.Delete(ctx, id)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, apperrors.ErrApplicationNotFound
	}

	count, err := uc.jobs.AdjustApplicationCount(ctx, app.JobID, -1)
	if err != nil {
		uc.log.WithContext(ctx).WithFields(map[string]interface{}{
			"job_id":         app.JobID,
			"application_id": id,
		}).Errorf("application deleted but count not decremented: %v", err)
	}

	uc.log.WithContext(ctx).Infof("application %s withdrawn from job %s", id, app.JobID)
	uc.pub.publish(ctx, eventbus.EventTypeApplicationWithdrawn, &model.ApplicationEvent{
		Type:          model.ApplicationWithdrawn,
		JobID:         app.JobID,
		ApplicationID: id,
		Count:         count,
	})
	return deleted, nil
}

var _ ApplicationUsecaseInterface = (*ApplicationUsecase)(nil)
