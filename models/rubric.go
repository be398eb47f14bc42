package models

import "time"

// Criterion categories (closed set).
const (
	CriterionCategoryContent    = "content"
	CriterionCategoryFormat     = "format"
	CriterionCategoryCompliance = "compliance"
	CriterionCategoryQuality    = "quality"
)

// RubricTemplate is a reusable weighted-criteria template shared by
// update-request review and peer review.
type RubricTemplate struct {
	TemplateID   int        `gorm:"primaryKey;column:template_id" json:"template_id"`
	TemplateName string     `gorm:"column:template_name" json:"template_name"`
	Description  *string    `gorm:"column:description" json:"description,omitempty"`
	IsDefault    bool       `gorm:"column:is_default" json:"is_default"`
	IsActive     bool       `gorm:"column:is_active" json:"is_active"`
	CreatedBy    int        `gorm:"column:created_by" json:"created_by"`
	CreateAt     time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Criteria []RubricCriterion `gorm:"foreignKey:TemplateID" json:"criteria,omitempty"`
}

type RubricCriterion struct {
	CriterionID   int        `gorm:"primaryKey;column:criterion_id" json:"criterion_id"`
	TemplateID    int        `gorm:"column:template_id" json:"template_id"`
	CriterionName string     `gorm:"column:criterion_name" json:"criterion_name"`
	Category      string     `gorm:"column:category" json:"category"`
	Weight        float64    `gorm:"column:weight" json:"weight"`
	MaxScore      float64    `gorm:"column:max_score" json:"max_score"`
	PassingScore  *float64   `gorm:"column:passing_score" json:"passing_score,omitempty"`
	IsMandatory   bool       `gorm:"column:is_mandatory" json:"is_mandatory"`
	DisplayOrder  int        `gorm:"column:display_order" json:"display_order"`
	IsActive      bool       `gorm:"column:is_active" json:"is_active"`
	CreateAt      time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt      *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt      *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (RubricTemplate) TableName() string {
	return "rubric_templates"
}

func (RubricCriterion) TableName() string {
	return "rubric_criteria"
}
