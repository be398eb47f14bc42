package models

import "time"

// Ledger subject types.
const (
	SubjectSyllabus      = "syllabus"
	SubjectUpdateRequest = "update_request"
)

// Ledger actions (closed set).
const (
	ActionSubmitted           = "submitted"
	ActionReviewed            = "reviewed"
	ActionApproved            = "approved"
	ActionRejected            = "rejected"
	ActionReturnedForRevision = "returned_for_revision"
	ActionWithdrawn           = "withdrawn"
	ActionPublished           = "published"
)

// ApprovalLedgerEntry is one immutable line of the approval audit trail.
// Entries are append-only: corrections are new entries, nothing is ever
// updated or deleted.
type ApprovalLedgerEntry struct {
	EntryID        int        `gorm:"primaryKey;column:entry_id" json:"entry_id"`
	Reference      string     `gorm:"column:reference;unique" json:"reference"`
	SubjectType    string     `gorm:"column:subject_type" json:"subject_type"`
	SubjectID      int        `gorm:"column:subject_id" json:"subject_id"`
	VersionID      *int       `gorm:"column:version_id" json:"version_id,omitempty"`
	ActorID        int        `gorm:"column:actor_id" json:"actor_id"`
	ActorRole      int        `gorm:"column:actor_role" json:"actor_role"`
	Action         string     `gorm:"column:action" json:"action"`
	Comments       *string    `gorm:"column:comments" json:"comments,omitempty"`
	Deadline       *time.Time `gorm:"column:deadline" json:"deadline,omitempty"`
	NextApproverID *int       `gorm:"column:next_approver_id" json:"next_approver_id,omitempty"`
	IsCompleted    bool       `gorm:"column:is_completed" json:"is_completed"`
	RecordedAt     time.Time  `gorm:"column:recorded_at" json:"recorded_at"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

func (ApprovalLedgerEntry) TableName() string {
	return "approval_ledger_entries"
}
