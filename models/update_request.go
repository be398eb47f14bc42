package models

import "time"

// Update request statuses (closed set).
const (
	RequestPending          = "pending"
	RequestUnderReview      = "under_review"
	RequestApproved         = "approved"
	RequestRejected         = "rejected"
	RequestRevisionRequired = "revision_required"
	RequestCancelled        = "cancelled"
)

// UpdateRequest proposes a change to an already-approved syllabus and
// escalates through review levels 1 (department head) and 2 (academic
// affairs). At most one request per syllabus may be pending or under review.
type UpdateRequest struct {
	RequestID         int        `gorm:"primaryKey;column:request_id" json:"request_id"`
	RequestNumber     string     `gorm:"column:request_number;unique" json:"request_number"`
	SyllabusID        int        `gorm:"column:syllabus_id" json:"syllabus_id"`
	RequestedBy       int        `gorm:"column:requested_by" json:"requested_by"`
	Title             string     `gorm:"column:title" json:"title"`
	Reason            *string    `gorm:"column:reason" json:"reason,omitempty"`
	OldVersionID      int        `gorm:"column:old_version_id" json:"old_version_id"`
	NewVersionID      *int       `gorm:"column:new_version_id" json:"new_version_id,omitempty"`
	Status            string     `gorm:"column:status" json:"status"`
	ReviewLevel       int        `gorm:"column:review_level" json:"review_level"`
	CurrentReviewerID *int       `gorm:"column:current_reviewer_id" json:"current_reviewer_id,omitempty"`
	DecidedBy         *int       `gorm:"column:decided_by" json:"decided_by,omitempty"`
	DecisionComments  *string    `gorm:"column:decision_comments" json:"decision_comments,omitempty"`
	DecidedAt         *time.Time `gorm:"column:decided_at" json:"decided_at,omitempty"`
	RevisionDeadline  *time.Time `gorm:"column:revision_deadline" json:"revision_deadline,omitempty"`
	SubmittedAt       *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	SimilarityScore   *float64   `gorm:"column:similarity_score" json:"similarity_score,omitempty"`
	ChangeSummary     *string    `gorm:"column:change_summary" json:"change_summary,omitempty"`
	CreateAt          time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt          *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt          *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Syllabus   *Syllabus        `gorm:"foreignKey:SyllabusID" json:"syllabus,omitempty"`
	Requester  *User            `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`
	NewVersion *SyllabusVersion `gorm:"foreignKey:NewVersionID" json:"new_version,omitempty"`
}

func (UpdateRequest) TableName() string {
	return "update_requests"
}

// IsActive reports whether the request still occupies its syllabus's single
// active-request slot.
func (r *UpdateRequest) IsActive() bool {
	return r.Status == RequestPending || r.Status == RequestUnderReview
}
