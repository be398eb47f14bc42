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

// CreateSyllabus opens a new draft with its first content version.
func CreateSyllabus(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}

	var req services.CreateSyllabusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	syllabus, err := syllabusService().CreateDraft(principal, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"syllabus": syllabus,
	})
}

// GetSyllabi lists syllabi with optional status/course/mine filters.
func GetSyllabi(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}

	filter := services.SyllabusFilter{Status: c.Query("status")}
	if courseID, err := strconv.Atoi(c.Query("course_id")); err == nil {
		filter.CourseID = courseID
	}
	if c.Query("mine") == "true" {
		filter.CreatedBy = principal.UserID
	}

	syllabi, err := syllabusService().List(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"syllabi": syllabi,
		"total":   len(syllabi),
	})
}

func GetSyllabus(c *gin.Context) {
	syllabusID, ok := idParam(c, "id")
	if !ok {
		return
	}

	syllabus, err := syllabusService().Get(syllabusID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"syllabus": syllabus,
	})
}

// SaveSyllabusContent replaces the draft content blob.
func SaveSyllabusContent(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}
	syllabusID, ok := idParam(c, "id")
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

	if err := syllabusService().SaveDraft(principal, syllabusID, req.Content); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Draft content saved",
	})
}

func SubmitSyllabus(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}
	syllabusID, ok := idParam(c, "id")
	if !ok {
		return
	}

	syllabus, err := syllabusService().Submit(principal, syllabusID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Syllabus submitted for review",
		"syllabus": syllabus,
	})
}

func ApproveSyllabus(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}
	syllabusID, ok := idParam(c, "id")
	if !ok {
		return
	}

	// All fields are optional; an empty body means a plain final approval.
	var req services.ApproveSyllabusInput
	_ = c.ShouldBindJSON(&req)

	syllabus, err := syllabusService().Approve(principal, syllabusID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Syllabus approved"
	if req.NextApproverID != nil {
		message = "Review recorded, forwarded to next approver"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  message,
		"syllabus": syllabus,
	})
}

func RejectSyllabus(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}
	syllabusID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A rejection reason is required"})
		return
	}

	syllabus, err := syllabusService().Reject(principal, syllabusID, utils.SanitizeInput(req.Reason))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Syllabus rejected",
		"syllabus": syllabus,
	})
}

func ReturnSyllabusForRevision(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}
	syllabusID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.ReturnForRevisionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	syllabus, err := syllabusService().ReturnForRevision(principal, syllabusID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Syllabus returned for revision",
		"syllabus": syllabus,
	})
}

func ArchiveSyllabus(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}
	syllabusID, ok := idParam(c, "id")
	if !ok {
		return
	}

	syllabus, err := syllabusService().Archive(principal, syllabusID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Syllabus archived",
		"syllabus": syllabus,
	})
}

// GetSyllabusLedger returns the full approval trail for a syllabus.
func GetSyllabusLedger(c *gin.Context) {
	syllabusID, ok := idParam(c, "id")
	if !ok {
		return
	}

	entries, err := ledgerService().History(models.SubjectSyllabus, syllabusID)
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

// GetActionableReviews lists the subjects waiting on the caller in the
// active schedule, with advisory overdue flags.
func GetActionableReviews(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}

	items, err := ledgerService().ActionableForReviewer(principal, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"items":   items,
		"total":   len(items),
	})
}
