package http

import (
	"job-portal/internal/portal/domain/model"
	"job-portal/internal/portal/usecase"
	"job-portal/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// JobHandler serves job postings. None of its routes require a session.
type JobHandler struct {
	jobs usecase.JobUsecaseInterface
	log  logger.Logger
}

// NewJobHandler creates a JobHandler.
func NewJobHandler(jobs usecase.JobUsecaseInterface, log logger.Logger) *JobHandler {
	if log == nil {
		log = logger.NewLogger()
	}
	return &JobHandler{jobs: jobs, log: log.WithComponent("job_handler")}
}

// RegisterRoutes mounts the job routes on router.
func (h *JobHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/jobs", h.ListJobs)
	router.Get("/jobs/:id", h.GetJob)
	router.Post("/jobs", h.CreateJob)
	router.Delete("/job/:id", h.DeleteJob)
}

// ListJobs handles GET /jobs?email=. Without email every posting is returned.
func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	jobs, err := h.jobs.ListJobs(c.UserContext(), c.Query("email"))
	if err != nil {
		h.log.WithContext(c.UserContext()).Errorf("list jobs: %v", err)
		return WriteError(c, err)
	}
	if jobs == nil {
		jobs = []*model.Job{}
	}
	return c.JSON(jobs)
}

// GetJob handles GET /jobs/:id.
func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	job, err := h.jobs.GetJob(c.UserContext(), c.Params("id"))
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(job)
}

// CreateJob handles POST /jobs.
func (h *JobHandler) CreateJob(c *fiber.Ctx) error {
	var job model.Job
	if err := c.BodyParser(&job); err != nil {
		return badRequest(c)
	}

	id, err := h.jobs.CreateJob(c.UserContext(), &job)
	if err != nil {
		h.log.WithContext(c.UserContext()).Errorf("create job: %v", err)
		return WriteError(c, err)
	}
	return c.JSON(fiber.Map{
		"acknowledged": true,
		"insertedId":   id,
	})
}

// DeleteJob handles DELETE /job/:id. Deleting an unknown id reports zero.
func (h *JobHandler) DeleteJob(c *fiber.Ctx) error {
	deleted, err := h.jobs.DeleteJob(c.UserContext(), c.Params("id"))
	if err != nil {
		h.log.WithContext(c.UserContext()).Errorf("delete job %s: %v", c.Params("id"), err)
		return WriteError(c, err)
	}
	return c.JSON(fiber.Map{
		"acknowledged": true,
		"deletedCount": deleted,
	})
}
