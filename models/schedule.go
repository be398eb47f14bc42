package models

import "time"

// Review levels (ordinal escalation stages).
const (
	ReviewLevelDepartment  = 1
	ReviewLevelInstitution = 2
)

// ReviewSchedule carries the per-term review window. Dates must be strictly
// increasing: review_start < level1 < level2 < final_approval.
type ReviewSchedule struct {
	ScheduleID            int        `gorm:"primaryKey;column:schedule_id" json:"schedule_id"`
	TermID                int        `gorm:"column:term_id" json:"term_id"`
	ReviewStart           time.Time  `gorm:"column:review_start" json:"review_start"`
	Level1Deadline        time.Time  `gorm:"column:level1_deadline" json:"level1_deadline"`
	Level2Deadline        time.Time  `gorm:"column:level2_deadline" json:"level2_deadline"`
	FinalApprovalDeadline time.Time  `gorm:"column:final_approval_deadline" json:"final_approval_deadline"`
	IsActive              bool       `gorm:"column:is_active" json:"is_active"`
	CreateAt              time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt              *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt              *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Term Term `gorm:"foreignKey:TermID" json:"term,omitempty"`
}

// ReviewerAssignment binds a reviewer to a level within a schedule, optionally
// scoped to one department. Primary assignees are resolved first.
type ReviewerAssignment struct {
	AssignmentID int        `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	ScheduleID   int        `gorm:"column:schedule_id" json:"schedule_id"`
	ReviewerID   int        `gorm:"column:reviewer_id" json:"reviewer_id"`
	ReviewLevel  int        `gorm:"column:review_level" json:"review_level"`
	DepartmentID *int       `gorm:"column:department_id" json:"department_id,omitempty"`
	IsPrimary    bool       `gorm:"column:is_primary" json:"is_primary"`
	CreateAt     time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

func (ReviewSchedule) TableName() string {
	return "review_schedules"
}

func (ReviewerAssignment) TableName() string {
	return "reviewer_assignments"
}
