package services

import (
	"math"
	"strings"
	"testing"
	"time"

	"syllabus-review-api/models"
)

func floatPtr(v float64) *float64 { return &v }

func testCriteria() []models.RubricCriterion {
	return []models.RubricCriterion{
		{CriterionID: 1, CriterionName: "Learning outcomes", Category: models.CriterionCategoryContent, Weight: 40, MaxScore: 5, IsMandatory: true, IsActive: true},
		{CriterionID: 2, CriterionName: "Assessment design", Category: models.CriterionCategoryQuality, Weight: 35, MaxScore: 5, IsMandatory: true, IsActive: true},
		{CriterionID: 3, CriterionName: "Formatting", Category: models.CriterionCategoryFormat, Weight: 25, MaxScore: 5, IsActive: true},
	}
}

func TestComputeOverallWeighted(t *testing.T) {
	results := []models.EvaluationResult{
		{CriterionID: 1, EvaluatorID: 10, Score: 4},
		{CriterionID: 2, EvaluatorID: 10, Score: 3},
		{CriterionID: 3, EvaluatorID: 10, Score: 2},
	}

	overall := ComputeOverall(testCriteria(), results)

	// (4*40 + 3*35 + 2*25) / 100 = 3.15
	if math.Abs(overall.Overall-3.15) > 1e-9 {
		t.Fatalf("expected overall 3.15, got %f", overall.Overall)
	}
	if overall.ScoredWeight != 100 {
		t.Errorf("expected scored weight 100, got %f", overall.ScoredWeight)
	}
	if overall.CriteriaScored != 3 {
		t.Errorf("expected 3 criteria scored, got %d", overall.CriteriaScored)
	}
	if len(overall.UnscoredMandatory) != 0 {
		t.Errorf("expected no unscored mandatory criteria, got %v", overall.UnscoredMandatory)
	}
	if len(overall.Breakdown) != 3 || overall.Breakdown[0].CriterionID != 1 {
		t.Errorf("expected breakdown sorted by criterion id, got %+v", overall.Breakdown)
	}
}

func TestComputeOverallExcludesUnscoredCriteria(t *testing.T) {
	results := []models.EvaluationResult{
		{CriterionID: 1, EvaluatorID: 10, Score: 4},
	}

	overall := ComputeOverall(testCriteria(), results)

	// The unscored criteria are excluded from both sums, not counted as zero.
	if math.Abs(overall.Overall-4) > 1e-9 {
		t.Fatalf("expected overall 4.0 from the single scored criterion, got %f", overall.Overall)
	}
	if overall.ScoredWeight != 40 {
		t.Errorf("expected scored weight 40, got %f", overall.ScoredWeight)
	}
	if len(overall.UnscoredMandatory) != 1 || overall.UnscoredMandatory[0] != "Assessment design" {
		t.Errorf("expected 'Assessment design' flagged as unscored mandatory, got %v", overall.UnscoredMandatory)
	}
}

func TestComputeOverallAveragesEvaluators(t *testing.T) {
	results := []models.EvaluationResult{
		{CriterionID: 1, EvaluatorID: 10, Score: 3},
		{CriterionID: 1, EvaluatorID: 11, Score: 5},
	}

	overall := ComputeOverall(testCriteria(), results)

	if math.Abs(overall.Overall-4) > 1e-9 {
		t.Fatalf("expected evaluator scores averaged to 4.0, got %f", overall.Overall)
	}
	if overall.CriteriaScored != 1 {
		t.Errorf("expected 1 criterion scored, got %d", overall.CriteriaScored)
	}
}

func TestComputeOverallIgnoresInactiveCriteria(t *testing.T) {
	criteria := testCriteria()
	criteria[2].IsActive = false

	results := []models.EvaluationResult{
		{CriterionID: 1, EvaluatorID: 10, Score: 4},
		{CriterionID: 3, EvaluatorID: 10, Score: 1},
	}

	overall := ComputeOverall(criteria, results)

	if overall.ScoredWeight != 40 {
		t.Fatalf("expected the inactive criterion excluded, scored weight %f", overall.ScoredWeight)
	}
	if math.Abs(overall.Overall-4) > 1e-9 {
		t.Errorf("expected overall 4.0, got %f", overall.Overall)
	}
}

func TestComputeOverallIsIdempotent(t *testing.T) {
	results := []models.EvaluationResult{
		{CriterionID: 1, EvaluatorID: 10, Score: 4.5},
		{CriterionID: 2, EvaluatorID: 10, Score: 3.5},
		{CriterionID: 2, EvaluatorID: 11, Score: 4.5},
		{CriterionID: 3, EvaluatorID: 11, Score: 2},
	}

	first := ComputeOverall(testCriteria(), results)
	second := ComputeOverall(testCriteria(), results)

	if first.Overall != second.Overall || first.ScoredWeight != second.ScoredWeight {
		t.Fatalf("recomputation diverged: %f/%f vs %f/%f",
			first.Overall, first.ScoredWeight, second.Overall, second.ScoredWeight)
	}
}

func TestComputeOverallPassFlags(t *testing.T) {
	criteria := testCriteria()
	criteria[0].PassingScore = floatPtr(3)

	results := []models.EvaluationResult{
		{CriterionID: 1, EvaluatorID: 10, Score: 2.5},
		{CriterionID: 2, EvaluatorID: 10, Score: 4},
	}

	overall := ComputeOverall(criteria, results)

	if overall.Breakdown[0].Passed == nil || *overall.Breakdown[0].Passed {
		t.Errorf("expected criterion 1 marked failed against passing score 3")
	}
	if overall.Breakdown[1].Passed != nil {
		t.Errorf("expected no pass flag on a criterion without a passing score")
	}
}

func TestValidateTemplateWeightTotal(t *testing.T) {
	template := &models.RubricTemplate{TemplateID: 1, Criteria: testCriteria()}

	report := ValidateTemplate(template)
	if !report.Valid {
		t.Fatalf("expected a 100-weight template to validate, errors: %v", report.Errors)
	}

	template.Criteria[0].Weight = 39
	report = ValidateTemplate(template)
	if report.Valid {
		t.Fatalf("expected weights totalling 99 to fail validation")
	}
	if report.TotalWeight != 99 {
		t.Errorf("expected reported total 99, got %f", report.TotalWeight)
	}

	// Drift inside the tolerance is accepted.
	template.Criteria[0].Weight = 40.005
	report = ValidateTemplate(template)
	if !report.Valid {
		t.Errorf("expected 100.005 within tolerance, errors: %v", report.Errors)
	}
}

func TestValidateTemplateWarnings(t *testing.T) {
	criteria := testCriteria()
	criteria[0].Weight = 75
	criteria[1].IsActive = false // mandatory but deactivated
	criteria = append(criteria, models.RubricCriterion{
		CriterionID: 4, CriterionName: "Extra reading", Category: models.CriterionCategoryContent,
		Weight: 0, MaxScore: 5, IsActive: true,
	})

	report := ValidateTemplate(&models.RubricTemplate{TemplateID: 1, Criteria: criteria})

	if !report.Valid {
		t.Fatalf("warnings must not invalidate the template, errors: %v", report.Errors)
	}
	if len(report.Warnings) != 2 {
		t.Fatalf("expected inactive-mandatory and zero-weight warnings, got %v", report.Warnings)
	}
}

func TestValidateTemplateBoundsErrors(t *testing.T) {
	criteria := []models.RubricCriterion{
		{CriterionID: 1, CriterionName: "Broken", Weight: 100, MaxScore: 0, PassingScore: floatPtr(6), IsActive: true},
	}

	report := ValidateTemplate(&models.RubricTemplate{TemplateID: 1, Criteria: criteria})

	if report.Valid {
		t.Fatalf("expected bounds violations to fail validation")
	}
	if len(report.Errors) != 2 {
		t.Errorf("expected max-score and passing-score errors, got %v", report.Errors)
	}
}

func TestValidateTemplateNoActiveCriteria(t *testing.T) {
	report := ValidateTemplate(&models.RubricTemplate{TemplateID: 1})
	if report.Valid {
		t.Fatalf("expected an empty template to fail validation")
	}
}

func TestValidateSyllabusContentComplete(t *testing.T) {
	if violations := ValidateSyllabusContent(validContent()); len(violations) != 0 {
		t.Fatalf("expected complete content to pass, got %v", violations)
	}
}

func TestValidateSyllabusContentReportsAllViolations(t *testing.T) {
	raw := `{
		"title": "  ",
		"learning_outcomes": ["One", ""],
		"assessments": [{"name": "Quiz", "weight": 30}]
	}`

	violations := ValidateSyllabusContent(raw)

	if len(violations) != 3 {
		t.Fatalf("expected title, outcomes and weight violations together, got %v", violations)
	}
	joined := strings.Join(violations, "; ")
	for _, fragment := range []string{"title", "learning outcomes", "weights total"} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("expected a violation mentioning %q in %q", fragment, joined)
		}
	}
}

func TestValidateSyllabusContentRejectsMalformedJSON(t *testing.T) {
	violations := ValidateSyllabusContent("{not json")
	if len(violations) != 1 || violations[0] != "content is not valid JSON" {
		t.Fatalf("expected a single malformed-JSON violation, got %v", violations)
	}
}

func TestDeadlineStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	schedule := &models.ReviewSchedule{
		Level1Deadline: now.Add(72 * time.Hour),
		Level2Deadline: now.Add(-24 * time.Hour),
	}

	info := DeadlineStatus(schedule, models.ReviewLevelDepartment, now)
	if info.Overdue {
		t.Errorf("expected level 1 not overdue")
	}
	if info.DaysRemaining != 3 {
		t.Errorf("expected 3 days remaining, got %d", info.DaysRemaining)
	}

	info = DeadlineStatus(schedule, models.ReviewLevelInstitution, now)
	if !info.Overdue {
		t.Errorf("expected level 2 overdue")
	}

	if info = DeadlineStatus(nil, 1, now); info.Deadline != nil {
		t.Errorf("expected no deadline without a schedule")
	}
}

func TestDaysPending(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	since := now.Add(-50 * time.Hour)

	if days := DaysPending(&since, now); days != 2 {
		t.Errorf("expected 2 whole days pending, got %d", days)
	}
	if days := DaysPending(nil, now); days != 0 {
		t.Errorf("expected 0 days without a submission time, got %d", days)
	}
}
