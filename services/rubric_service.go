package services

import (
	"fmt"
	"time"

	"syllabus-review-api/models"
)

// RubricService manages the reusable weighted-criteria templates.
type RubricService struct {
	store Store
}

func NewRubricService(store Store) *RubricService {
	return &RubricService{store: store}
}

type CriterionInput struct {
	CriterionName string   `json:"criterion_name" binding:"required"`
	Category      string   `json:"category" binding:"required"`
	Weight        float64  `json:"weight"`
	MaxScore      float64  `json:"max_score" binding:"required"`
	PassingScore  *float64 `json:"passing_score"`
	IsMandatory   bool     `json:"is_mandatory"`
}

type CreateTemplateInput struct {
	TemplateName string           `json:"template_name" binding:"required"`
	Description  *string          `json:"description"`
	IsDefault    bool             `json:"is_default"`
	Criteria     []CriterionInput `json:"criteria" binding:"required"`
}

// CreateTemplate stores a template with its ordered criteria. Weight totals
// are deliberately not enforced here; the validation query reports them.
func (s *RubricService) CreateTemplate(p Principal, in CreateTemplateInput) (*models.RubricTemplate, error) {
	if !p.IsAdmin() {
		return nil, forbidden("only administrators manage rubric templates")
	}

	var violations []string
	if len(in.Criteria) == 0 {
		violations = append(violations, "a template needs at least one criterion")
	}
	for _, criterion := range in.Criteria {
		switch criterion.Category {
		case models.CriterionCategoryContent, models.CriterionCategoryFormat,
			models.CriterionCategoryCompliance, models.CriterionCategoryQuality:
		default:
			violations = append(violations,
				fmt.Sprintf("category %q of criterion '%s' is not one of content, format, compliance, quality",
					criterion.Category, criterion.CriterionName))
		}
		if criterion.Weight < 0 || criterion.Weight > 100 {
			violations = append(violations,
				fmt.Sprintf("weight of criterion '%s' must be between 0 and 100", criterion.CriterionName))
		}
	}
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	now := time.Now()
	template := &models.RubricTemplate{
		TemplateName: in.TemplateName,
		Description:  in.Description,
		IsDefault:    in.IsDefault,
		IsActive:     true,
		CreatedBy:    p.UserID,
		CreateAt:     now,
	}
	for i, criterion := range in.Criteria {
		template.Criteria = append(template.Criteria, models.RubricCriterion{
			CriterionName: criterion.CriterionName,
			Category:      criterion.Category,
			Weight:        criterion.Weight,
			MaxScore:      criterion.MaxScore,
			PassingScore:  criterion.PassingScore,
			IsMandatory:   criterion.IsMandatory,
			DisplayOrder:  i + 1,
			IsActive:      true,
			CreateAt:      now,
		})
	}
	if err := s.store.CreateTemplate(template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *RubricService) Get(templateID int) (*models.RubricTemplate, error) {
	return s.store.GetTemplate(templateID)
}

func (s *RubricService) List(activeOnly bool) ([]models.RubricTemplate, error) {
	return s.store.ListTemplates(activeOnly)
}

// Validate runs the weight/mandatory checks for a stored template.
func (s *RubricService) Validate(templateID int) (*RubricValidationReport, error) {
	template, err := s.store.GetTemplate(templateID)
	if err != nil {
		return nil, err
	}
	report := ValidateTemplate(template)
	return &report, nil
}
