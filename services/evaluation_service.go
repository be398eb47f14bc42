package services

import (
	"fmt"
	"sort"
	"time"

	"syllabus-review-api/models"
)

// EvaluationService records per-criterion scores for update requests and
// peer evaluations of syllabi, both against the shared rubric catalog.
type EvaluationService struct {
	store Store
}

func NewEvaluationService(store Store) *EvaluationService {
	return &EvaluationService{store: store}
}

type CriterionScoreInput struct {
	CriterionID int     `json:"criterion_id" binding:"required"`
	Score       float64 `json:"score"`
	Comment     *string `json:"comment"`
}

type SubmitScoresInput struct {
	TemplateID *int                  `json:"template_id"`
	Scores     []CriterionScoreInput `json:"scores" binding:"required"`
}

// SubmitScores upserts one evaluator's results for an under-review request.
// A later submission for the same criterion replaces the earlier one and the
// overall score is recomputed from scratch. The freeze check and the upserts
// run in one transaction so a decision cannot commit between them.
func (s *EvaluationService) SubmitScores(p Principal, requestID int, in SubmitScoresInput) (*OverallScore, error) {
	var overall OverallScore
	err := s.store.InTransaction(func(st Store) error {
		request, err := st.GetUpdateRequest(requestID)
		if err != nil {
			return err
		}
		if request.Status != models.RequestUnderReview {
			return invalidState("update request", request.Status, "record scores")
		}

		template, err := resolveTemplate(st, in.TemplateID)
		if err != nil {
			return err
		}
		if violations := validateScores(template, in.Scores); len(violations) > 0 {
			return &ValidationError{Violations: violations}
		}

		now := time.Now()
		for _, score := range in.Scores {
			result := &models.EvaluationResult{
				RequestID:   requestID,
				CriterionID: score.CriterionID,
				EvaluatorID: p.UserID,
				Score:       score.Score,
				Comment:     score.Comment,
				EvaluatedAt: now,
			}
			if err := st.UpsertEvaluationResult(result); err != nil {
				return err
			}
		}

		results, err := st.ResultsForRequest(requestID)
		if err != nil {
			return err
		}
		mine := results[:0:0]
		for _, result := range results {
			if result.EvaluatorID == p.UserID {
				mine = append(mine, result)
			}
		}
		overall = ComputeOverall(template.Criteria, mine)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &overall, nil
}

// EvaluatorScore is one evaluator's aggregate inside a report.
type EvaluatorScore struct {
	EvaluatorID int          `json:"evaluator_id"`
	Overall     OverallScore `json:"overall"`
}

// AggregateReport combines every evaluator's recomputed aggregate with the
// cross-evaluator combined score.
type AggregateReport struct {
	RequestID    int              `json:"request_id"`
	TemplateID   int              `json:"template_id"`
	Combined     OverallScore     `json:"combined"`
	PerEvaluator []EvaluatorScore `json:"per_evaluator"`
}

// Aggregate recomputes the weighted report for a request from the stored
// results; nothing is accumulated between calls.
func (s *EvaluationService) Aggregate(requestID int, templateID *int) (*AggregateReport, error) {
	if _, err := s.store.GetUpdateRequest(requestID); err != nil {
		return nil, err
	}
	template, err := resolveTemplate(s.store, templateID)
	if err != nil {
		return nil, err
	}
	results, err := s.store.ResultsForRequest(requestID)
	if err != nil {
		return nil, err
	}

	report := &AggregateReport{
		RequestID:  requestID,
		TemplateID: template.TemplateID,
		Combined:   ComputeOverall(template.Criteria, results),
	}

	byEvaluator := make(map[int][]models.EvaluationResult)
	for _, result := range results {
		byEvaluator[result.EvaluatorID] = append(byEvaluator[result.EvaluatorID], result)
	}
	for evaluatorID, own := range byEvaluator {
		report.PerEvaluator = append(report.PerEvaluator, EvaluatorScore{
			EvaluatorID: evaluatorID,
			Overall:     ComputeOverall(template.Criteria, own),
		})
	}
	sort.Slice(report.PerEvaluator, func(i, j int) bool {
		return report.PerEvaluator[i].EvaluatorID < report.PerEvaluator[j].EvaluatorID
	})
	return report, nil
}

type PeerEvaluationInput struct {
	TemplateID     *int                  `json:"template_id"`
	Recommendation string                `json:"recommendation" binding:"required"`
	Comment        *string               `json:"comment"`
	Scores         []CriterionScoreInput `json:"scores" binding:"required"`
}

// SubmitPeerEvaluation records a rubric-scored peer review of a syllabus in
// review. It shares the scoring mechanics but never gates the state machine.
func (s *EvaluationService) SubmitPeerEvaluation(p Principal, syllabusID int, in PeerEvaluationInput) (*models.PeerEvaluation, error) {
	syllabus, err := s.store.GetSyllabus(syllabusID)
	if err != nil {
		return nil, err
	}
	if syllabus.Status != models.SyllabusPendingReview {
		return nil, invalidState("syllabus", syllabus.Status, "peer evaluate")
	}
	if syllabus.CreatedBy == p.UserID {
		return nil, forbidden("authors do not peer review their own syllabus")
	}

	switch in.Recommendation {
	case models.RecommendationApprove, models.RecommendationNeedsRevision, models.RecommendationReject:
	default:
		return nil, &ValidationError{Violations: []string{"recommendation must be approve, needs_revision or reject"}}
	}

	template, err := resolveTemplate(s.store, in.TemplateID)
	if err != nil {
		return nil, err
	}
	if violations := validateScores(template, in.Scores); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	now := time.Now()
	results := make([]models.EvaluationResult, 0, len(in.Scores))
	scores := make([]models.PeerEvaluationScore, 0, len(in.Scores))
	for _, score := range in.Scores {
		results = append(results, models.EvaluationResult{
			CriterionID: score.CriterionID,
			EvaluatorID: p.UserID,
			Score:       score.Score,
		})
		scores = append(scores, models.PeerEvaluationScore{
			CriterionID: score.CriterionID,
			Score:       score.Score,
			Comment:     score.Comment,
		})
	}
	overall := ComputeOverall(template.Criteria, results)

	evaluation := &models.PeerEvaluation{
		SyllabusID:     syllabusID,
		EvaluatorID:    p.UserID,
		TemplateID:     template.TemplateID,
		OverallScore:   overall.Overall,
		Recommendation: in.Recommendation,
		Comment:        in.Comment,
		EvaluatedAt:    now,
		Scores:         scores,
	}
	if err := s.store.CreatePeerEvaluation(evaluation); err != nil {
		return nil, err
	}
	return evaluation, nil
}

func (s *EvaluationService) ListPeerEvaluations(syllabusID int) ([]models.PeerEvaluation, error) {
	if _, err := s.store.GetSyllabus(syllabusID); err != nil {
		return nil, err
	}
	return s.store.PeerEvaluationsForSyllabus(syllabusID)
}

func resolveTemplate(st Store, templateID *int) (*models.RubricTemplate, error) {
	if templateID != nil {
		template, err := st.GetTemplate(*templateID)
		if err != nil {
			return nil, err
		}
		if !template.IsActive {
			return nil, invalidState("rubric template", "inactive", "score against")
		}
		return template, nil
	}
	return st.DefaultTemplate()
}

// validateScores checks every submitted score against the template and
// reports all problems at once.
func validateScores(template *models.RubricTemplate, scores []CriterionScoreInput) []string {
	var violations []string
	if len(scores) == 0 {
		return []string{"at least one criterion score is required"}
	}

	byID := make(map[int]models.RubricCriterion, len(template.Criteria))
	for _, criterion := range template.Criteria {
		if criterion.IsActive {
			byID[criterion.CriterionID] = criterion
		}
	}

	seen := make(map[int]bool)
	for _, score := range scores {
		criterion, ok := byID[score.CriterionID]
		if !ok {
			violations = append(violations,
				fmt.Sprintf("criterion %d is not an active criterion of template %d", score.CriterionID, template.TemplateID))
			continue
		}
		if seen[score.CriterionID] {
			violations = append(violations,
				fmt.Sprintf("criterion %d is scored more than once", score.CriterionID))
			continue
		}
		seen[score.CriterionID] = true
		if score.Score < 0 || score.Score > criterion.MaxScore {
			violations = append(violations,
				fmt.Sprintf("score %.2f for '%s' is outside 0-%.2f", score.Score, criterion.CriterionName, criterion.MaxScore))
		}
	}
	return violations
}
