package controllers

import (
	"net/http"
	"strconv"

	"syllabus-review-api/services"

	"github.com/gin-gonic/gin"
)

// SubmitEvaluationScores upserts the caller's per-criterion results for an
// under-review update request and returns the recomputed aggregate.
func SubmitEvaluationScores(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}
	requestID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.SubmitScoresInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	overall, err := evaluationService().SubmitScores(principal, requestID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Scores recorded",
		"overall": overall,
	})
}

// GetEvaluationAggregate recomputes the weighted report for a request.
func GetEvaluationAggregate(c *gin.Context) {
	requestID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var templateID *int
	if raw := c.Query("template_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			templateID = &id
		}
	}

	report, err := evaluationService().Aggregate(requestID, templateID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"report":  report,
	})
}

// SubmitPeerEvaluation records a non-blocking peer review of a syllabus in
// review.
func SubmitPeerEvaluation(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}
	syllabusID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.PeerEvaluationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	evaluation, err := evaluationService().SubmitPeerEvaluation(principal, syllabusID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    "Peer evaluation recorded",
		"evaluation": evaluation,
	})
}

func GetPeerEvaluations(c *gin.Context) {
	syllabusID, ok := idParam(c, "id")
	if !ok {
		return
	}

	evaluations, err := evaluationService().ListPeerEvaluations(syllabusID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"evaluations": evaluations,
		"total":       len(evaluations),
	})
}
