package http

import (
	authhttp "job-portal/internal/auth/adapter/http"
	"job-portal/internal/auth/policy"
	"job-portal/internal/portal/usecase"
	apperrors "job-portal/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

// MsgInvalidBody is returned when a request body cannot be parsed.
const MsgInvalidBody = "invalid request body"

// WriteError answers with the status mapped from err. Errors that map to 500
// are returned to the app's ErrorHandler instead of being written here.
func WriteError(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)
	if status == fiber.StatusInternalServerError {
		return err
	}

	return c.Status(status).JSON(fiber.Map{"message": apperrors.Message(err)})
}

func badRequest(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": MsgInvalidBody})
}

// ApplicantsGate is the admission chain for reading a job's applicants. It is
// empty unless restrict is set, in which case only the job's recruiter passes.
func ApplicantsGate(mw *authhttp.AuthMiddleware, jobs usecase.JobUsecaseInterface, restrict bool) []fiber.Handler {
	if !restrict {
		return nil
	}
	return []fiber.Handler{
		mw.Protect(),
		mw.RequireOwner(policy.RuleJobOwner, jobOwnerInput(jobs)),
	}
}

func jobOwnerInput(jobs usecase.JobUsecaseInterface) authhttp.InputBuilder {
	return func(c *fiber.Ctx) (policy.Input, error) {
		job, err := jobs.GetJob(c.UserContext(), c.Params("job_id"))
		if err != nil {
			return policy.Input{}, err
		}
		return policy.Input{
			Resource: map[string]interface{}{"hr_email": job.HREmail},
		}, nil
	}
}
