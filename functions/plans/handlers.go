package plans

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/ironlog/ironlog"
)

// MountPath is where the function is mounted.
const MountPath = "/plans"

// Paging defaults for GET /plans.
const (
	defaultLimit = 20
	maxLimit     = 100
)

// Path parameters.
const (
	paramPlan     = "planId"
	paramDay      = "dayId"
	paramExercise = "exerciseId"
)

type handlers struct {
	repo Repository
}

// Routes returns the route table of the function.
func Routes(repo Repository) []*ironlog.Route {
	h := &handlers{repo: repo}

	ownsPlan := ironlog.WithOwnership(TablePlans, paramPlan)
	ownsDay := ironlog.WithOwnership(TableDays, paramDay)
	ownsExercise := ironlog.WithOwnership(TableExercises, paramExercise)

	return []*ironlog.Route{
		ironlog.NewRoute("/plans").
			GET(h.listPlans).
			POST(h.createPlan),
		ironlog.NewRoute("/plans/{planId}", ownsPlan).
			GET(h.getPlan).
			PATCH(h.updatePlan).
			DELETE(h.deletePlan),
		ironlog.NewRoute("/plans/{planId}/days", ownsPlan).
			GET(h.listDays).
			POST(h.createDay),
		ironlog.NewRoute("/plans/{planId}/days/{dayId}", ownsPlan, ownsDay).
			PATCH(h.updateDay).
			DELETE(h.deleteDay),
		ironlog.NewRoute("/plans/{planId}/days/{dayId}/exercises", ownsPlan, ownsDay).
			GET(h.listExercises).
			POST(h.createExercise),
		ironlog.NewRoute("/plans/{planId}/days/{dayId}/exercises/{exerciseId}", ownsPlan, ownsDay, ownsExercise).
			PATCH(h.updateExercise).
			DELETE(h.deleteExercise),
	}
}

// NewFunction builds the plans function. Callers supply the authenticator
// and ownership store through opts.
//
// Example:
//
//	fn := plans.NewFunction(plans.NewRepository(pool),
//	    ironlog.WithAuthenticator(verifier),
//	    ironlog.WithStore(db.NewStore(pool)),
//	)
func NewFunction(repo Repository, opts ...ironlog.FunctionOption) *ironlog.Function {
	opts = append([]ironlog.FunctionOption{ironlog.WithRoutes(Routes(repo)...)}, opts...)
	return ironlog.NewFunction(MountPath, opts...)
}

func (h *handlers) listPlans(rc *ironlog.RequestContext) (*ironlog.Response, error) {
	userID, err := principal(rc)
	if err != nil {
		return nil, err
	}

	limit := min(max(ironlog.QueryDefault(rc, "limit", defaultLimit), 1), maxLimit)
	offset := max(ironlog.QueryDefault(rc, "offset", 0), 0)

	plans, total, err := h.repo.ListPlans(rc.Context(), userID, limit, offset)
	if err != nil {
		return nil, httpError(err)
	}
	return rc.JSON(http.StatusOK, plans, ironlog.WithTotalCount(total))
}

func (h *handlers) createPlan(rc *ironlog.RequestContext) (*ironlog.Response, error) {
	userID, err := principal(rc)
	if err != nil {
		return nil, err
	}

	var in PlanInput
	if err := rc.Bind(&in); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	plan, err := h.repo.CreatePlan(rc.Context(), userID, in)
	if err != nil {
		return nil, httpError(err)
	}
	return rc.Created(plan, ironlog.WithMessage("Plan created"))
}

func (h *handlers) getPlan(rc *ironlog.RequestContext) (*ironlog.Response, error) {
	userID, planID, err := planScope(rc)
	if err != nil {
		return nil, err
	}

	plan, err := h.repo.GetPlan(rc.Context(), userID, planID)
	if err != nil {
		return nil, httpError(err)
	}
	return rc.JSON(http.StatusOK, plan)
}

func (h *handlers) updatePlan(rc *ironlog.RequestContext) (*ironlog.Response, error) {
	userID, planID, err := planScope(rc)
	if err != nil {
		return nil, err
	}

	var in PlanPatch
	if err := rc.Bind(&in); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	plan, err := h.repo.UpdatePlan(rc.Context(), userID, planID, in)
	if err != nil {
		return nil, httpError(err)
	}
	return rc.JSON(http.StatusOK, plan)
}

func (h *handlers) deletePlan(rc *ironlog.RequestContext) (*ironlog.Response, error) {
	userID, planID, err := planScope(rc)
	if err != nil {
		return nil, err
	}
	if err := h.repo.DeletePlan(rc.Context(), userID, planID); err != nil {
		return nil, httpError(err)
	}
	return rc.NoContent()
}

func (h *handlers) listDays(rc *ironlog.RequestContext) (*ironlog.Response, error) {
	userID, planID, err := planScope(rc)
	if err != nil {
		return nil, err
	}

	days, err := h.repo.ListDays(rc.Context(), userID, planID)
	if err != nil {
		return nil, httpError(err)
	}
	return rc.JSON(http.StatusOK, days, ironlog.WithTotalCount(len(days)))
}

func (h *handlers) createDay(rc *ironlog.RequestContext) (*ironlog.Response, error) {
	userID, planID, err := planScope(rc)
	if err != nil {
		return nil, err
	}

	var in DayInput
	if err := rc.Bind(&in); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	day, err := h.repo.CreateDay(rc.Context(), userID, planID, in)
	if err != nil {
		return nil, httpError(err)
	}
	return rc.Created(day)
}

func (h *handlers) updateDay(rc *ironlog.RequestContext) (*ironlog.Response, error) {
	userID, planID, err := planScope(rc)
	if err != nil {
		return nil, err
	}
	dayID, err := pathID(rc, paramDay)
	if err != nil {
		return nil, err
	}

	var in DayPatch
	if err := rc.Bind(&in); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	day, err := h.repo.UpdateDay(rc.Context(), userID, planID, dayID, in)
	if err != nil {
		return nil, httpError(err)
	}
	return rc.JSON(http.StatusOK, day)
}

func (h *handlers) deleteDay(rc *ironlog.RequestContext) (*ironlog.Response, error) {
	userID, planID, err := planScope(rc)
	if err != nil {
		return nil, err
	}
	dayID, err := pathID(rc, paramDay)
	if err != nil {
		return nil, err
	}

	if err := h.repo.DeleteDay(rc.Context(), userID, planID, dayID); err != nil {
		return nil, httpError(err)
	}
	return rc.NoContent()
}

func (h *handlers) listExercises(rc *ironlog.RequestContext) (*ironlog.Response, error) {
	userID, planID, err := planScope(rc)
	if err != nil {
		return nil, err
	}
	dayID, err := pathID(rc, paramDay)
	if err != nil {
		return nil, err
	}

	exercises, err := h.repo.ListExercises(rc.Context(), userID, planID, dayID)
	if err != nil {
		return nil, httpError(err)
	}
	return rc.JSON(http.StatusOK, exercises, ironlog.WithTotalCount(len(exercises)))
}

func (h *handlers) createExercise(rc *ironlog.RequestContext) (*ironlog.Response, error) {
	userID, planID, err := planScope(rc)
	if err != nil {
		return nil, err
	}
	dayID, err := pathID(rc, paramDay)
	if err != nil {
		return nil, err
	}

	var in ExerciseInput
	if err := rc.Bind(&in); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	ex, err := h.repo.CreateExercise(rc.Context(), userID, planID, dayID, in)
	if err != nil {
		return nil, httpError(err)
	}
	return rc.Created(ex)
}

func (h *handlers) updateExercise(rc *ironlog.RequestContext) (*ironlog.Response, error) {
	userID, planID, err := planScope(rc)
	if err != nil {
		return nil, err
	}
	dayID, err := pathID(rc, paramDay)
	if err != nil {
		return nil, err
	}
	exerciseID, err := pathID(rc, paramExercise)
	if err != nil {
		return nil, err
	}

	var in ExercisePatch
	if err := rc.Bind(&in); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	ex, err := h.repo.UpdateExercise(rc.Context(), userID, planID, dayID, exerciseID, in)
	if err != nil {
		return nil, httpError(err)
	}
	return rc.JSON(http.StatusOK, ex)
}

func (h *handlers) deleteExercise(rc *ironlog.RequestContext) (*ironlog.Response, error) {
	userID, planID, err := planScope(rc)
	if err != nil {
		return nil, err
	}
	dayID, err := pathID(rc, paramDay)
	if err != nil {
		return nil, err
	}
	exerciseID, err := pathID(rc, paramExercise)
	if err != nil {
		return nil, err
	}

	if err := h.repo.DeleteExercise(rc.Context(), userID, planID, dayID, exerciseID); err != nil {
		return nil, httpError(err)
	}
	return rc.NoContent()
}

// principal returns the caller's id. Owner columns are uuids, so a subject
// that is not one cannot own anything.
func principal(rc *ironlog.RequestContext) (uuid.UUID, error) {
	id, err := uuid.Parse(rc.PrincipalID())
	if err != nil {
		return uuid.Nil, ironlog.NewHTTPError(http.StatusUnauthorized, "Invalid principal",
			ironlog.WithErrorCode(ironlog.CodeAuthRequired), ironlog.WithError(err))
	}
	return id, nil
}

func planScope(rc *ironlog.RequestContext) (uuid.UUID, uuid.UUID, error) {
	userID, err := principal(rc)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	planID, err := pathID(rc, paramPlan)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return userID, planID, nil
}

func pathID(rc *ironlog.RequestContext, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(rc.Param(name))
	if err != nil {
		return uuid.Nil, ironlog.ErrBadRequest("Invalid resource id format",
			ironlog.WithErrorCode(ironlog.CodeInvalidUUID),
			ironlog.WithErrorDetails(map[string]string{"id": rc.Param(name)}),
			ironlog.WithError(err))
	}
	return id, nil
}

func validationError(fields fieldErrors) error {
	return ironlog.ErrValidation(fields)
}

// httpError maps repository errors to API errors. Unknown errors pass
// through and are reported as handler failures.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return ironlog.ErrNotFound("Resource not found or access denied",
			ironlog.WithErrorCode(ironlog.CodeResourceNotFound), ironlog.WithError(err))
	case errors.Is(err, ErrConflict):
		return ironlog.ErrConflict("Conflicting update, retry the request",
			ironlog.WithErrorCode(ironlog.CodeResourceConflict), ironlog.WithError(err))
	}
	return err
}
