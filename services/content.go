package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// minLearningOutcomes is the submission floor for course learning outcomes.
const minLearningOutcomes = 3

// SyllabusContent is the slice of the version blob this service understands.
// The blob belongs to the content store; unknown fields pass through
// untouched.
type SyllabusContent struct {
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	LearningOutcomes []string              `json:"learning_outcomes"`
	Assessments      []AssessmentComponent `json:"assessments"`
	Topics           []string              `json:"topics"`
	References       []string              `json:"references"`
}

type AssessmentComponent struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// ValidateSyllabusContent runs the submission completeness checks and returns
// every violation found, not just the first.
func ValidateSyllabusContent(raw string) []string {
	var violations []string

	var content SyllabusContent
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return []string{"content is not valid JSON"}
	}

	if strings.TrimSpace(content.Title) == "" {
		violations = append(violations, "title is required")
	}

	outcomes := 0
	for _, outcome := range content.LearningOutcomes {
		if strings.TrimSpace(outcome) != "" {
			outcomes++
		}
	}
	if outcomes < minLearningOutcomes {
		violations = append(violations,
			fmt.Sprintf("at least %d learning outcomes are required, found %d", minLearningOutcomes, outcomes))
	}

	if len(content.Assessments) == 0 {
		violations = append(violations, "at least one assessment component is required")
	} else {
		total := 0.0
		for _, assessment := range content.Assessments {
			if strings.TrimSpace(assessment.Name) == "" {
				violations = append(violations, "assessment components must be named")
			}
			total += assessment.Weight
		}
		if math.Abs(total-100) > weightTolerance {
			violations = append(violations,
				fmt.Sprintf("assessment weights total %.2f, expected 100", total))
		}
	}

	return violations
}
