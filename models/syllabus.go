package models

import "time"

// Syllabus lifecycle statuses (closed set, stored as-is in status column).
const (
	SyllabusDraft            = "draft"
	SyllabusPendingReview    = "pending_review"
	SyllabusApproved         = "approved"
	SyllabusRejected         = "rejected"
	SyllabusRevisionRequired = "revision_required"
	SyllabusArchived         = "archived"
)

type Syllabus struct {
	SyllabusID       int        `gorm:"primaryKey;column:syllabus_id" json:"syllabus_id"`
	CourseID         int        `gorm:"column:course_id" json:"course_id"`
	DepartmentID     int        `gorm:"column:department_id" json:"department_id"`
	Status           string     `gorm:"column:status" json:"status"`
	CurrentVersionID *int       `gorm:"column:current_version_id" json:"current_version_id,omitempty"`
	CreatedBy        int        `gorm:"column:created_by" json:"created_by"`
	SubmittedAt      *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreateAt         time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt         *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt         *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Course         Course           `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Author         *User            `gorm:"foreignKey:CreatedBy" json:"author,omitempty"`
	CurrentVersion *SyllabusVersion `gorm:"foreignKey:CurrentVersionID" json:"current_version,omitempty"`
}

// SyllabusVersion holds one revision of the document content. The content
// column is an opaque JSON blob owned by the content store; this service only
// parses it for submission completeness checks.
type SyllabusVersion struct {
	VersionID  int        `gorm:"primaryKey;column:version_id" json:"version_id"`
	SyllabusID int        `gorm:"column:syllabus_id" json:"syllabus_id"`
	VersionNo  int        `gorm:"column:version_no" json:"version_no"`
	Content    string     `gorm:"column:content;type:longtext" json:"content"`
	CreatedBy  int        `gorm:"column:created_by" json:"created_by"`
	CreateAt   time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt   *time.Time `gorm:"column:update_at" json:"update_at"`
}

func (Syllabus) TableName() string {
	return "syllabi"
}

func (SyllabusVersion) TableName() string {
	return "syllabus_versions"
}
