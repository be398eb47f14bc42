package controllers

import (
	"net/http"
	"strconv"
	"time"

	"syllabus-review-api/models"
	"syllabus-review-api/services"
	"syllabus-review-api/utils"

	"github.com/gin-gonic/gin"
)

// CreateUpdateRequest opens a pending change request against an approved
// syllabus.
func CreateUpdateRequest(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}

	var req services.CreateUpdateRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	req.Title = utils.SanitizeInput(req.Title)
	if req.Reason != nil {
		sanitized := utils.SanitizeInput(*req.Reason)
		req.Reason = &sanitized
	}

	request, err := updateRequestService().Create(principal, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"request": request,
	})
}

// GetUpdateRequests lists requests with optional status/syllabus/mine
// filters.
func GetUpdateRequests(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}

	filter := services.RequestFilter{}
	if status := c.Query("status"); status != "" {
		filter.Statuses = []string{status}
	}
	if syllabusID, err := strconv.Atoi(c.Query("syllabus_id")); err == nil {
		filter.SyllabusID = syllabusID
	}
	if c.Query("mine") == "true" {
		filter.RequestedBy = principal.UserID
	}

	requests, err := updateRequestService().List(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"requests": requests,
		"total":    len(requests),
	})
}

// GetUpdateRequest returns one request plus the advisory deadline flags for
// its current level.
func GetUpdateRequest(c *gin.Context) {
	requestID, ok := idParam(c, "id")
	if !ok {
		return
	}

	request, err := updateRequestService().Get(requestID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{
		"success": true,
		"request": request,
	}
	if request.Status == models.RequestUnderReview {
		now := time.Now()
		if schedule, err := store().ActiveSchedule(); err == nil {
			info := services.DeadlineStatus(schedule, request.ReviewLevel, now)
			response["deadline"] = info
		}
		response["days_pending"] = services.DaysPending(request.SubmittedAt, now)
	}

	c.JSON(http.StatusOK, response)
}

// SaveUpdateRequestDraft upserts the proposed content version.
func SaveUpdateRequestDraft(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}
	requestID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	request, err := updateRequestService().SaveDraftChanges(principal, requestID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Proposed changes saved",
		"request": request,
	})
}

func SubmitUpdateRequest(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}
	requestID, ok := idParam(c, "id")
	if !ok {
		return
	}

	request, err := updateRequestService().Submit(principal, requestID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Update request submitted for level 1 review",
		"request": request,
	})
}

// DecideUpdateRequest records an approve/reject/revision decision at the
// request's current review level.
func DecideUpdateRequest(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}
	requestID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.DecideInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	req.Comments = utils.SanitizeInput(req.Comments)

	request, err := updateRequestService().Decide(principal, requestID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Decision recorded",
		"request": request,
	})
}

func CancelUpdateRequest(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}
	requestID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Comments string `json:"comments"`
	}
	_ = c.ShouldBindJSON(&req)

	request, err := updateRequestService().Cancel(principal, requestID, req.Comments)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Update request cancelled",
		"request": request,
	})
}

// GetUpdateRequestLedger returns the full approval trail for a request.
func GetUpdateRequestLedger(c *gin.Context) {
	requestID, ok := idParam(c, "id")
	if !ok {
		return
	}

	entries, err := ledgerService().History(models.SubjectUpdateRequest, requestID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"ledger":  entries,
		"total":   len(entries),
	})
}
