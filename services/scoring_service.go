package services

import (
	"fmt"
	"math"
	"sort"

	"syllabus-review-api/models"
)

// weightTolerance is the accepted drift when criterion weights must total 100.
const weightTolerance = 0.01

// CriterionOutcome is the per-criterion line of a computed aggregate.
type CriterionOutcome struct {
	CriterionID   int      `json:"criterion_id"`
	CriterionName string   `json:"criterion_name"`
	Category      string   `json:"category"`
	Weight        float64  `json:"weight"`
	Score         float64  `json:"score"`
	MaxScore      float64  `json:"max_score"`
	PassingScore  *float64 `json:"passing_score,omitempty"`
	// Passed is nil for advisory criteria without a passing score.
	Passed *bool `json:"passed,omitempty"`
}

// OverallScore is the deterministic weighted aggregate over the criteria that
// were actually scored.
type OverallScore struct {
	Overall           float64            `json:"overall"`
	ScoredWeight      float64            `json:"scored_weight"`
	CriteriaScored    int                `json:"criteria_scored"`
	UnscoredMandatory []string           `json:"unscored_mandatory,omitempty"`
	Breakdown         []CriterionOutcome `json:"breakdown"`
}

// ComputeOverall aggregates submitted results against the template criteria:
// overall = sum(score*weight) / sum(weight) over scored active criteria only.
// Unscored criteria are excluded from both sums, never treated as zero. When
// several evaluators scored the same criterion their scores are averaged
// before weighting, so recomputation from the same result set is idempotent.
func ComputeOverall(criteria []models.RubricCriterion, results []models.EvaluationResult) OverallScore {
	byID := make(map[int]models.RubricCriterion, len(criteria))
	for _, criterion := range criteria {
		if criterion.IsActive {
			byID[criterion.CriterionID] = criterion
		}
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, result := range results {
		if _, ok := byID[result.CriterionID]; !ok {
			continue
		}
		sums[result.CriterionID] += result.Score
		counts[result.CriterionID]++
	}

	out := OverallScore{}
	var weightedSum float64
	for id, criterion := range byID {
		count := counts[id]
		if count == 0 {
			if criterion.IsMandatory {
				out.UnscoredMandatory = append(out.UnscoredMandatory, criterion.CriterionName)
			}
			continue
		}
		score := sums[id] / float64(count)

		outcome := CriterionOutcome{
			CriterionID:   criterion.CriterionID,
			CriterionName: criterion.CriterionName,
			Category:      criterion.Category,
			Weight:        criterion.Weight,
			Score:         score,
			MaxScore:      criterion.MaxScore,
			PassingScore:  criterion.PassingScore,
		}
		if criterion.PassingScore != nil {
			passed := score >= *criterion.PassingScore
			outcome.Passed = &passed
		}
		out.Breakdown = append(out.Breakdown, outcome)

		weightedSum += score * criterion.Weight
		out.ScoredWeight += criterion.Weight
		out.CriteriaScored++
	}

	sort.Slice(out.Breakdown, func(i, j int) bool {
		return out.Breakdown[i].CriterionID < out.Breakdown[j].CriterionID
	})
	sort.Strings(out.UnscoredMandatory)

	if out.ScoredWeight > 0 {
		out.Overall = weightedSum / out.ScoredWeight
	}
	return out
}

// RubricValidationReport separates blocking errors from advisory warnings.
type RubricValidationReport struct {
	Valid       bool     `json:"valid"`
	TotalWeight float64  `json:"total_weight"`
	Errors      []string `json:"errors,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}

// ValidateTemplate checks a rubric template: active-criterion weights must
// total 100 within tolerance (error); zero-weight or deactivated mandatory
// criteria are warnings only.
func ValidateTemplate(t *models.RubricTemplate) RubricValidationReport {
	report := RubricValidationReport{}

	activeCount := 0
	for _, criterion := range t.Criteria {
		if !criterion.IsActive {
			if criterion.IsMandatory {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("mandatory criterion '%s' is inactive", criterion.CriterionName))
			}
			continue
		}
		activeCount++
		report.TotalWeight += criterion.Weight

		if criterion.Weight == 0 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("criterion '%s' has zero weight and will not affect the aggregate", criterion.CriterionName))
		}
		if criterion.Weight < 0 || criterion.Weight > 100 {
			report.Errors = append(report.Errors,
				fmt.Sprintf("criterion '%s' weight %.2f is outside 0-100", criterion.CriterionName, criterion.Weight))
		}
		if criterion.MaxScore <= 0 {
			report.Errors = append(report.Errors,
				fmt.Sprintf("criterion '%s' must have a positive max score", criterion.CriterionName))
		}
		if criterion.PassingScore != nil && (*criterion.PassingScore < 0 || *criterion.PassingScore > criterion.MaxScore) {
			report.Errors = append(report.Errors,
				fmt.Sprintf("criterion '%s' passing score is outside 0-%.2f", criterion.CriterionName, criterion.MaxScore))
		}
	}

	if activeCount == 0 {
		report.Errors = append(report.Errors, "template has no active criteria")
	} else if math.Abs(report.TotalWeight-100) > weightTolerance {
		report.Errors = append(report.Errors,
			fmt.Sprintf("active criteria weights total %.2f, expected 100", report.TotalWeight))
	}

	report.Valid = len(report.Errors) == 0
	return report
}
