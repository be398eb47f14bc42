package services

import (
	"time"

	"syllabus-review-api/models"
)

// SyllabusService owns the syllabus lifecycle state machine. Every accepted
// transition runs as one transactional read-modify-write guarded by a status
// compare-and-swap, appends exactly one ledger entry and emits one domain
// event after commit.
type SyllabusService struct {
	store  Store
	events EventSink
}

func NewSyllabusService(store Store, events EventSink) *SyllabusService {
	return &SyllabusService{store: store, events: events}
}

func (s *SyllabusService) emit(subjectID int, action string, p Principal, ts time.Time) {
	if s.events != nil {
		s.events.Publish(DomainEvent{
			SubjectType: models.SubjectSyllabus,
			SubjectID:   subjectID,
			Action:      action,
			ActorID:     p.UserID,
			Timestamp:   ts,
		})
	}
}

type CreateSyllabusInput struct {
	CourseID int    `json:"course_id" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

// CreateDraft opens a new draft syllabus with its first content version.
func (s *SyllabusService) CreateDraft(p Principal, in CreateSyllabusInput) (*models.Syllabus, error) {
	if p.RoleID != models.RoleLecturer && !p.IsAdmin() {
		return nil, forbidden("only lecturers create syllabi")
	}

	var created *models.Syllabus
	err := s.store.InTransaction(func(st Store) error {
		course, err := st.GetCourse(in.CourseID)
		if err != nil {
			return err
		}

		now := time.Now()
		syllabus := &models.Syllabus{
			CourseID:     course.CourseID,
			DepartmentID: course.DepartmentID,
			Status:       models.SyllabusDraft,
			CreatedBy:    p.UserID,
			CreateAt:     now,
		}
		if err := st.CreateSyllabus(syllabus); err != nil {
			return err
		}

		version := &models.SyllabusVersion{
			SyllabusID: syllabus.SyllabusID,
			VersionNo:  1,
			Content:    in.Content,
			CreatedBy:  p.UserID,
			CreateAt:   now,
		}
		if err := st.CreateVersion(version); err != nil {
			return err
		}

		changed, err := st.UpdateSyllabusStatus(syllabus.SyllabusID, models.SyllabusDraft, map[string]interface{}{
			"current_version_id": version.VersionID,
			"update_at":          now,
		})
		if err != nil {
			return err
		}
		if !changed {
			return conflict("syllabus", "create")
		}
		syllabus.CurrentVersionID = &version.VersionID
		created = syllabus
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// SaveDraft replaces the draft content. The document is mutable only by its
// author and only while draft or revision is required.
func (s *SyllabusService) SaveDraft(p Principal, syllabusID int, content string) error {
	return s.store.InTransaction(func(st Store) error {
		syllabus, err := st.GetSyllabus(syllabusID)
		if err != nil {
			return err
		}
		if syllabus.CreatedBy != p.UserID {
			return forbidden("only the author edits a draft syllabus")
		}
		if syllabus.Status != models.SyllabusDraft && syllabus.Status != models.SyllabusRevisionRequired {
			return invalidState("syllabus", syllabus.Status, "edit content")
		}
		if syllabus.CurrentVersionID == nil {
			return notFound("syllabus version", 0)
		}
		return st.UpdateVersionContent(*syllabus.CurrentVersionID, content)
	})
}

// Submit moves a draft into pending review after the completeness checks
// pass. All violations are reported together; nothing is persisted on
// failure.
func (s *SyllabusService) Submit(p Principal, syllabusID int) (*models.Syllabus, error) {
	now := time.Now()
	err := s.store.InTransaction(func(st Store) error {
		syllabus, err := st.GetSyllabus(syllabusID)
		if err != nil {
			return err
		}
		if syllabus.CreatedBy != p.UserID {
			return forbidden("only the author submits a syllabus")
		}
		if syllabus.Status != models.SyllabusDraft && syllabus.Status != models.SyllabusRevisionRequired {
			return invalidState("syllabus", syllabus.Status, "submit")
		}
		if syllabus.CurrentVersionID == nil {
			return &ValidationError{Violations: []string{"no content version exists"}}
		}

		version, err := st.GetVersion(*syllabus.CurrentVersionID)
		if err != nil {
			return err
		}
		if violations := ValidateSyllabusContent(version.Content); len(violations) > 0 {
			return &ValidationError{Violations: violations}
		}

		changed, err := st.UpdateSyllabusStatus(syllabusID, syllabus.Status, map[string]interface{}{
			"status":       models.SyllabusPendingReview,
			"submitted_at": now,
			"update_at":    now,
		})
		if err != nil {
			return err
		}
		if !changed {
			return conflict("syllabus", "submit")
		}

		entry := newLedgerEntry(models.SubjectSyllabus, syllabusID, p, models.ActionSubmitted, now)
		entry.VersionID = syllabus.CurrentVersionID
		return st.AppendLedger(entry)
	})
	if err != nil {
		return nil, err
	}

	s.emit(syllabusID, models.ActionSubmitted, p, now)
	return s.store.GetSyllabus(syllabusID)
}

type ApproveSyllabusInput struct {
	Comments       string `json:"comments"`
	NextApproverID *int   `json:"next_approver_id"`
}

// Approve finalizes the review only when no next approver is designated.
// With a next approver the syllabus stays pending and the ledger records an
// intermediate reviewed step carrying the designated approver.
func (s *SyllabusService) Approve(p Principal, syllabusID int, in ApproveSyllabusInput) (*models.Syllabus, error) {
	if !p.CanReviewSyllabi() {
		return nil, forbidden("approving a syllabus requires a reviewer role")
	}

	now := time.Now()
	action := models.ActionApproved
	err := s.store.InTransaction(func(st Store) error {
		syllabus, err := st.GetSyllabus(syllabusID)
		if err != nil {
			return err
		}
		if syllabus.Status != models.SyllabusPendingReview {
			return invalidState("syllabus", syllabus.Status, "approve")
		}

		if in.NextApproverID != nil {
			if _, err := st.GetUser(*in.NextApproverID); err != nil {
				return err
			}
			// The status does not change; the guarded touch asserts the row
			// is still pending before the intermediate step is recorded.
			changed, err := st.UpdateSyllabusStatus(syllabusID, models.SyllabusPendingReview, map[string]interface{}{
				"update_at": now,
			})
			if err != nil {
				return err
			}
			if !changed {
				return conflict("syllabus", "review")
			}

			action = models.ActionReviewed
			entry := newLedgerEntry(models.SubjectSyllabus, syllabusID, p, models.ActionReviewed, now)
			entry.VersionID = syllabus.CurrentVersionID
			entry.NextApproverID = in.NextApproverID
			if in.Comments != "" {
				entry.Comments = &in.Comments
			}
			return st.AppendLedger(entry)
		}

		changed, err := st.UpdateSyllabusStatus(syllabusID, models.SyllabusPendingReview, map[string]interface{}{
			"status":    models.SyllabusApproved,
			"update_at": now,
		})
		if err != nil {
			return err
		}
		if !changed {
			return conflict("syllabus", "approve")
		}

		entry := newLedgerEntry(models.SubjectSyllabus, syllabusID, p, models.ActionApproved, now)
		entry.VersionID = syllabus.CurrentVersionID
		entry.IsCompleted = true
		if in.Comments != "" {
			entry.Comments = &in.Comments
		}
		return st.AppendLedger(entry)
	})
	if err != nil {
		return nil, err
	}

	s.emit(syllabusID, action, p, now)
	return s.store.GetSyllabus(syllabusID)
}

// Reject sends a pending syllabus back with a mandatory reason. Terminal:
// the author starts over from a new submission cycle.
func (s *SyllabusService) Reject(p Principal, syllabusID int, reason string) (*models.Syllabus, error) {
	if !p.CanReviewSyllabi() {
		return nil, forbidden("rejecting a syllabus requires a reviewer role")
	}
	if reason == "" {
		return nil, unprocessable("a rejection requires a reason")
	}

	now := time.Now()
	err := s.store.InTransaction(func(st Store) error {
		syllabus, err := st.GetSyllabus(syllabusID)
		if err != nil {
			return err
		}
		if syllabus.Status != models.SyllabusPendingReview {
			return invalidState("syllabus", syllabus.Status, "reject")
		}

		changed, err := st.UpdateSyllabusStatus(syllabusID, models.SyllabusPendingReview, map[string]interface{}{
			"status":    models.SyllabusRejected,
			"update_at": now,
		})
		if err != nil {
			return err
		}
		if !changed {
			return conflict("syllabus", "reject")
		}

		entry := newLedgerEntry(models.SubjectSyllabus, syllabusID, p, models.ActionRejected, now)
		entry.VersionID = syllabus.CurrentVersionID
		entry.Comments = &reason
		entry.IsCompleted = true
		return st.AppendLedger(entry)
	})
	if err != nil {
		return nil, err
	}

	s.emit(syllabusID, models.ActionRejected, p, now)
	return s.store.GetSyllabus(syllabusID)
}

type ReturnForRevisionInput struct {
	Comments string     `json:"comments"`
	Deadline *time.Time `json:"deadline"`
}

// ReturnForRevision hands the document back to its author with a mandatory
// deadline; the author may edit and resubmit.
func (s *SyllabusService) ReturnForRevision(p Principal, syllabusID int, in ReturnForRevisionInput) (*models.Syllabus, error) {
	if !p.CanReviewSyllabi() {
		return nil, forbidden("returning a syllabus requires a reviewer role")
	}
	if in.Deadline == nil {
		return nil, unprocessable("returning for revision requires a deadline")
	}

	now := time.Now()
	err := s.store.InTransaction(func(st Store) error {
		syllabus, err := st.GetSyllabus(syllabusID)
		if err != nil {
			return err
		}
		if syllabus.Status != models.SyllabusPendingReview {
			return invalidState("syllabus", syllabus.Status, "return for revision")
		}

		changed, err := st.UpdateSyllabusStatus(syllabusID, models.SyllabusPendingReview, map[string]interface{}{
			"status":    models.SyllabusRevisionRequired,
			"update_at": now,
		})
		if err != nil {
			return err
		}
		if !changed {
			return conflict("syllabus", "return for revision")
		}

		entry := newLedgerEntry(models.SubjectSyllabus, syllabusID, p, models.ActionReturnedForRevision, now)
		entry.VersionID = syllabus.CurrentVersionID
		entry.Deadline = in.Deadline
		if in.Comments != "" {
			entry.Comments = &in.Comments
		}
		return st.AppendLedger(entry)
	})
	if err != nil {
		return nil, err
	}

	s.emit(syllabusID, models.ActionReturnedForRevision, p, now)
	return s.store.GetSyllabus(syllabusID)
}

// Archive retires an approved syllabus administratively. The ledger records
// it as withdrawn.
func (s *SyllabusService) Archive(p Principal, syllabusID int) (*models.Syllabus, error) {
	if !p.IsAdmin() {
		return nil, forbidden("only administrators archive syllabi")
	}

	now := time.Now()
	err := s.store.InTransaction(func(st Store) error {
		syllabus, err := st.GetSyllabus(syllabusID)
		if err != nil {
			return err
		}
		if syllabus.Status != models.SyllabusApproved {
			return invalidState("syllabus", syllabus.Status, "archive")
		}

		changed, err := st.UpdateSyllabusStatus(syllabusID, models.SyllabusApproved, map[string]interface{}{
			"status":    models.SyllabusArchived,
			"update_at": now,
		})
		if err != nil {
			return err
		}
		if !changed {
			return conflict("syllabus", "archive")
		}

		entry := newLedgerEntry(models.SubjectSyllabus, syllabusID, p, models.ActionWithdrawn, now)
		entry.IsCompleted = true
		return st.AppendLedger(entry)
	})
	if err != nil {
		return nil, err
	}

	s.emit(syllabusID, models.ActionWithdrawn, p, now)
	return s.store.GetSyllabus(syllabusID)
}

func (s *SyllabusService) Get(syllabusID int) (*models.Syllabus, error) {
	return s.store.GetSyllabus(syllabusID)
}

func (s *SyllabusService) List(f SyllabusFilter) ([]models.Syllabus, error) {
	return s.store.ListSyllabi(f)
}

// promoteVersion swaps the approved syllabus's current version to the one an
// update request carried. It runs inside the request's transaction so the
// request transition and the promotion commit together, and it appends the
// syllabus-side published entry.
func promoteVersion(st Store, syllabusID, versionID int, p Principal, now time.Time) error {
	syllabus, err := st.GetSyllabus(syllabusID)
	if err != nil {
		return err
	}
	if syllabus.Status != models.SyllabusApproved {
		return invalidState("syllabus", syllabus.Status, "promote version")
	}

	version, err := st.GetVersion(versionID)
	if err != nil {
		return err
	}
	if version.SyllabusID != syllabusID {
		return unprocessable("version %d does not belong to syllabus %d", versionID, syllabusID)
	}

	changed, err := st.UpdateSyllabusStatus(syllabusID, models.SyllabusApproved, map[string]interface{}{
		"current_version_id": versionID,
		"update_at":          now,
	})
	if err != nil {
		return err
	}
	if !changed {
		return conflict("syllabus", "promote version")
	}

	entry := newLedgerEntry(models.SubjectSyllabus, syllabusID, p, models.ActionPublished, now)
	entry.VersionID = &versionID
	entry.IsCompleted = true
	return st.AppendLedger(entry)
}
