package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"syllabus-review-api/config"
	"syllabus-review-api/services"

	"github.com/gin-gonic/gin"
)

func store() services.Store {
	return services.NewStore(config.DB)
}

func syllabusService() *services.SyllabusService {
	st := store()
	return services.NewSyllabusService(st, services.NewNotifier(st))
}

func updateRequestService() *services.UpdateRequestService {
	st := store()
	return services.NewUpdateRequestService(st, services.NewNotifier(st), services.NewSimilarityOracle())
}

func evaluationService() *services.EvaluationService {
	return services.NewEvaluationService(store())
}

func rubricService() *services.RubricService {
	return services.NewRubricService(store())
}

func scheduleService() *services.ScheduleService {
	return services.NewScheduleService(store())
}

func ledgerService() *services.LedgerService {
	return services.NewLedgerService(store())
}

// principalFrom rebuilds the resolved principal the auth middleware placed in
// the context.
func principalFrom(c *gin.Context) (services.Principal, bool) {
	userID, okUser := c.Get("userID")
	roleID, okRole := c.Get("roleID")
	departmentID, okDept := c.Get("departmentID")
	if !okUser || !okRole || !okDept {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
		return services.Principal{}, false
	}
	return services.Principal{
		UserID:       userID.(int),
		RoleID:       roleID.(int),
		DepartmentID: departmentID.(int),
	}, true
}

func idParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " parameter"})
		return 0, false
	}
	return id, true
}

// respondError maps the service error taxonomy onto HTTP statuses. A
// rejected transition leaves the subject unchanged, so the body carries
// enough detail to identify the failed check.
func respondError(c *gin.Context, err error) {
	var notFound *services.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
		return
	}

	var invalidState *services.InvalidStateError
	if errors.As(err, &invalidState) {
		c.JSON(http.StatusConflict, gin.H{"error": invalidState.Error()})
		return
	}

	var forbidden *services.ForbiddenError
	if errors.As(err, &forbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": forbidden.Error()})
		return
	}

	var validation *services.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Validation failed",
			"violations": validation.Violations,
		})
		return
	}

	var unprocessable *services.UnprocessableError
	if errors.As(err, &unprocessable) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": unprocessable.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
