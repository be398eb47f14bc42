package controllers

import (
	"net/http"
	"strconv"

	"syllabus-review-api/services"

	"github.com/gin-gonic/gin"
)

func GetSchedules(c *gin.Context) {
	schedules, err := scheduleService().List()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"schedules": schedules,
		"total":     len(schedules),
	})
}

func CreateSchedule(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}

	var req services.CreateScheduleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	schedule, err := scheduleService().Create(principal, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"schedule": schedule,
	})
}

func ActivateSchedule(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}
	scheduleID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := scheduleService().Activate(principal, scheduleID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Schedule activated",
	})
}

// GetScheduleReviewers resolves the ordered reviewer list for a level and
// department: primary first, then department-scoped, then level-wide.
func GetScheduleReviewers(c *gin.Context) {
	scheduleID, ok := idParam(c, "id")
	if !ok {
		return
	}

	level, err := strconv.Atoi(c.Query("level"))
	if err != nil || (level != 1 && level != 2) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "level must be 1 or 2"})
		return
	}
	departmentID, _ := strconv.Atoi(c.Query("department_id"))

	reviewers, err := scheduleService().ResolveReviewers(scheduleID, level, departmentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"reviewers": reviewers,
		"total":     len(reviewers),
	})
}

func AssignReviewer(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}
	scheduleID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.AssignReviewerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	assignment, err := scheduleService().AssignReviewer(principal, scheduleID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"assignment": assignment,
	})
}
