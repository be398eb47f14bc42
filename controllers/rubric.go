package controllers

import (
	"net/http"

	"syllabus-review-api/services"

	"github.com/gin-gonic/gin"
)

func GetRubricTemplates(c *gin.Context) {
	activeOnly := c.Query("all") != "true"

	templates, err := rubricService().List(activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"templates": templates,
		"total":     len(templates),
	})
}

func CreateRubricTemplate(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		return
	}

	var req services.CreateTemplateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	template, err := rubricService().CreateTemplate(principal, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"template": template,
	})
}

func GetRubricTemplate(c *gin.Context) {
	templateID, ok := idParam(c, "id")
	if !ok {
		return
	}

	template, err := rubricService().Get(templateID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"template": template,
	})
}

// ValidateRubricTemplate reports weight errors and advisory warnings for a
// stored template.
func ValidateRubricTemplate(c *gin.Context) {
	templateID, ok := idParam(c, "id")
	if !ok {
		return
	}

	report, err := rubricService().Validate(templateID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"report":  report,
	})
}
