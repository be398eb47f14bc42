package models

import "time"

// Peer evaluation recommendations (closed set).
const (
	RecommendationApprove       = "approve"
	RecommendationNeedsRevision = "needs_revision"
	RecommendationReject        = "reject"
)

// EvaluationResult is one evaluator's score for one rubric criterion on an
// update request. Unique per (request, criterion, evaluator); a later
// submission replaces the earlier one. Rows freeze once the request leaves
// under_review.
type EvaluationResult struct {
	ResultID    int       `gorm:"primaryKey;column:result_id" json:"result_id"`
	RequestID   int       `gorm:"column:request_id;uniqueIndex:uniq_request_criterion_evaluator" json:"request_id"`
	CriterionID int       `gorm:"column:criterion_id;uniqueIndex:uniq_request_criterion_evaluator" json:"criterion_id"`
	EvaluatorID int       `gorm:"column:evaluator_id;uniqueIndex:uniq_request_criterion_evaluator" json:"evaluator_id"`
	Score       float64   `gorm:"column:score" json:"score"`
	Comment     *string   `gorm:"column:comment" json:"comment,omitempty"`
	EvaluatedAt time.Time `gorm:"column:evaluated_at" json:"evaluated_at"`

	Criterion *RubricCriterion `gorm:"foreignKey:CriterionID" json:"criterion,omitempty"`
	Evaluator *User            `gorm:"foreignKey:EvaluatorID" json:"evaluator,omitempty"`
}

// PeerEvaluation is the auxiliary non-blocking peer review of a syllabus in
// review. It shares the rubric mechanics but never gates the state machine.
type PeerEvaluation struct {
	PeerEvaluationID int       `gorm:"primaryKey;column:peer_evaluation_id" json:"peer_evaluation_id"`
	SyllabusID       int       `gorm:"column:syllabus_id" json:"syllabus_id"`
	EvaluatorID      int       `gorm:"column:evaluator_id" json:"evaluator_id"`
	TemplateID       int       `gorm:"column:template_id" json:"template_id"`
	OverallScore     float64   `gorm:"column:overall_score" json:"overall_score"`
	Recommendation   string    `gorm:"column:recommendation" json:"recommendation"`
	Comment          *string   `gorm:"column:comment" json:"comment,omitempty"`
	EvaluatedAt      time.Time `gorm:"column:evaluated_at" json:"evaluated_at"`

	Evaluator *User                `gorm:"foreignKey:EvaluatorID" json:"evaluator,omitempty"`
	Scores    []PeerEvaluationScore `gorm:"foreignKey:PeerEvaluationID" json:"scores,omitempty"`
}

type PeerEvaluationScore struct {
	ScoreID          int     `gorm:"primaryKey;column:score_id" json:"score_id"`
	PeerEvaluationID int     `gorm:"column:peer_evaluation_id" json:"peer_evaluation_id"`
	CriterionID      int     `gorm:"column:criterion_id" json:"criterion_id"`
	Score            float64 `gorm:"column:score" json:"score"`
	Comment          *string `gorm:"column:comment" json:"comment,omitempty"`

	Criterion *RubricCriterion `gorm:"foreignKey:CriterionID" json:"criterion,omitempty"`
}

func (EvaluationResult) TableName() string {
	return "evaluation_results"
}

func (PeerEvaluation) TableName() string {
	return "peer_evaluations"
}

func (PeerEvaluationScore) TableName() string {
	return "peer_evaluation_scores"
}
