package http

import (
	authhttp "job-portal/internal/auth/adapter/http"
	"job-portal/internal/auth/policy"
	"job-portal/internal/portal/domain/model"
	"job-portal/internal/portal/usecase"
	"job-portal/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// ApplicationHandler serves job applications.
type ApplicationHandler struct {
	apps     usecase.ApplicationUsecaseInterface
	jobs     usecase.JobUsecaseInterface
	mw       *authhttp.AuthMiddleware
	restrict bool
	log      logger.Logger
}

// NewApplicationHandler creates an ApplicationHandler. When restrictApplicants
// is set, listing a job's applicants requires the job owner's session.
func NewApplicationHandler(
	apps usecase.ApplicationUsecaseInterface,
	jobs usecase.JobUsecaseInterface,
	mw *authhttp.AuthMiddleware,
	restrictApplicants bool,
	log logger.Logger,
) *ApplicationHandler {
	if log == nil {
		log = logger.NewLogger()
	}
	return &ApplicationHandler{
		apps:     apps,
		jobs:     jobs,
		mw:       mw,
		restrict: restrictApplicants,
		log:      log.WithComponent("application_handler"),
	}
}

// StatusRequest is the body of PATCH /job-applications/:id.
type StatusRequest struct {
	Status string `json:"status"`
}

// RegisterRoutes mounts the application routes on router.
func (h *ApplicationHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/job-applications",
		h.mw.Protect(),
		h.mw.RequireOwner(policy.RuleApplicantSelf, authhttp.QueryTarget("email")),
		h.ListByApplicant,
	)

	byJob := append(ApplicantsGate(h.mw, h.jobs, h.restrict), h.ListByJob)
	router.Get("/job-applications/jobs/:job_id", byJob...)

	router.Post("/job-applications", h.Submit)
	router.Patch("/job-applications/:id", h.UpdateStatus)
	router.Delete("/job-application/delete/:id", h.Withdraw)
}

// ListByApplicant handles GET /job-applications?email=. The ownership check
// has already matched email against the session.
func (h *ApplicationHandler) ListByApplicant(c *fiber.Ctx) error {
	apps, err := h.apps.ListByApplicant(c.UserContext(), c.Query("email"))
	if err != nil {
		h.log.WithContext(c.UserContext()).Errorf("list applications: %v", err)
		return WriteError(c, err)
	}
	return c.JSON(orEmpty(apps))
}

// ListByJob handles GET /job-applications/jobs/:job_id.
func (h *ApplicationHandler) ListByJob(c *fiber.Ctx) error {
	apps, err := h.apps.ListByJob(c.UserContext(), c.Params("job_id"))
	if err != nil {
		h.log.WithContext(c.UserContext()).Errorf("list applicants of %s: %v", c.Params("job_id"), err)
		return WriteError(c, err)
	}
	return c.JSON(orEmpty(apps))
}

// Submit handles POST /job-applications.
func (h *ApplicationHandler) Submit(c *fiber.Ctx) error {
	var app model.Application
	if err := c.BodyParser(&app); err != nil {
		return badRequest(c)
	}

	id, err := h.apps.Submit(c.UserContext(), &app)
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(fiber.Map{
		"acknowledged": true,
		"insertedId":   id,
	})
}

// UpdateStatus handles PATCH /job-applications/:id.
func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	res, err := h.apps.UpdateStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(fiber.Map{
		"acknowledged":  true,
		"matchedCount":  res.Matched,
		"modifiedCount": res.Modified,
	})
}

// Withdraw handles DELETE /job-application/delete/:id.
func (h *ApplicationHandler) Withdraw(c *fiber.Ctx) error {
	deleted, err := h.apps.Withdraw(c.UserContext(), c.Params("id"))
	if err != nil {
		return WriteError(c, err)
	}
	return c.JSON(fiber.Map{
		"acknowledged": true,
		"deletedCount": deleted,
	})
}

func orEmpty(apps []*model.Application) []*model.Application {
	if apps == nil {
		return []*model.Application{}
	}
	return apps
}
