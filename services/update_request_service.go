package services

import (
	"context"
	"log"
	"time"

	"syllabus-review-api/models"

	"github.com/google/uuid"
)

// Decision values accepted by Decide.
const (
	DecisionApprove  = "approve"
	DecisionReject   = "reject"
	DecisionRevision = "revision"
)

// UpdateRequestService owns the escalating workflow for proposed changes to
// an approved syllabus: level 1 (department head) then level 2 (academic
// affairs). Reviewer authorization is resolved against the active schedule's
// assignments, never against role names alone.
type UpdateRequestService struct {
	store  Store
	events EventSink
	oracle SimilarityOracle
}

func NewUpdateRequestService(store Store, events EventSink, oracle SimilarityOracle) *UpdateRequestService {
	return &UpdateRequestService{store: store, events: events, oracle: oracle}
}

func (s *UpdateRequestService) emit(evt DomainEvent) {
	if s.events != nil {
		s.events.Publish(evt)
	}
}

type CreateUpdateRequestInput struct {
	SyllabusID int     `json:"syllabus_id" binding:"required"`
	Title      string  `json:"title" binding:"required"`
	Reason     *string `json:"reason"`
}

// Create opens a pending request against an approved syllabus. A syllabus
// carries at most one pending or under-review request at a time.
func (s *UpdateRequestService) Create(p Principal, in CreateUpdateRequestInput) (*models.UpdateRequest, error) {
	var created *models.UpdateRequest
	err := s.store.InTransaction(func(st Store) error {
		syllabus, err := st.GetSyllabus(in.SyllabusID)
		if err != nil {
			return err
		}
		if syllabus.Status != models.SyllabusApproved {
			return invalidState("syllabus", syllabus.Status, "open an update request")
		}
		if syllabus.CreatedBy != p.UserID {
			return forbidden("only the syllabus author opens update requests")
		}
		if syllabus.CurrentVersionID == nil {
			return unprocessable("syllabus %d has no current version", in.SyllabusID)
		}

		active, err := st.CountActiveRequests(in.SyllabusID)
		if err != nil {
			return err
		}
		if active > 0 {
			return invalidState("syllabus", "already under an active update request", "open another")
		}

		created = &models.UpdateRequest{
			RequestNumber: uuid.NewString(),
			SyllabusID:    in.SyllabusID,
			RequestedBy:   p.UserID,
			Title:         in.Title,
			Reason:        in.Reason,
			OldVersionID:  *syllabus.CurrentVersionID,
			Status:        models.RequestPending,
			ReviewLevel:   models.ReviewLevelDepartment,
			CreateAt:      time.Now(),
		}
		return st.CreateUpdateRequest(created)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// SaveDraftChanges upserts the proposed content as a non-current version of
// the syllabus. The request status never changes here.
func (s *UpdateRequestService) SaveDraftChanges(p Principal, requestID int, content string) (*models.UpdateRequest, error) {
	err := s.store.InTransaction(func(st Store) error {
		request, err := st.GetUpdateRequest(requestID)
		if err != nil {
			return err
		}
		if request.RequestedBy != p.UserID {
			return forbidden("only the requester drafts changes")
		}
		if request.Status != models.RequestPending && request.Status != models.RequestRevisionRequired {
			return invalidState("update request", request.Status, "draft changes")
		}

		if request.NewVersionID != nil {
			return st.UpdateVersionContent(*request.NewVersionID, content)
		}

		versionNo, err := st.NextVersionNo(request.SyllabusID)
		if err != nil {
			return err
		}
		version := &models.SyllabusVersion{
			SyllabusID: request.SyllabusID,
			VersionNo:  versionNo,
			Content:    content,
			CreatedBy:  p.UserID,
			CreateAt:   time.Now(),
		}
		if err := st.CreateVersion(version); err != nil {
			return err
		}
		return st.UpdateRequestFields(requestID, map[string]interface{}{
			"new_version_id": version.VersionID,
			"update_at":      time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetUpdateRequest(requestID)
}

// Submit moves the request into review at level 1. A resubmission after
// revision restarts at level 1 with the deadline cleared.
func (s *UpdateRequestService) Submit(p Principal, requestID int) (*models.UpdateRequest, error) {
	now := time.Now()
	err := s.store.InTransaction(func(st Store) error {
		request, err := st.GetUpdateRequest(requestID)
		if err != nil {
			return err
		}
		if request.RequestedBy != p.UserID {
			return forbidden("only the requester submits an update request")
		}
		if request.Status != models.RequestPending && request.Status != models.RequestRevisionRequired {
			return invalidState("update request", request.Status, "submit")
		}
		if request.NewVersionID == nil {
			return &ValidationError{Violations: []string{"no proposed changes have been drafted"}}
		}

		version, err := st.GetVersion(*request.NewVersionID)
		if err != nil {
			return err
		}
		if violations := ValidateSyllabusContent(version.Content); len(violations) > 0 {
			return &ValidationError{Violations: violations}
		}

		updates := map[string]interface{}{
			"status":              models.RequestUnderReview,
			"review_level":        models.ReviewLevelDepartment,
			"submitted_at":        now,
			"revision_deadline":   nil,
			"current_reviewer_id": nil,
			"update_at":           now,
		}
		if reviewerID := s.primaryReviewer(st, models.ReviewLevelDepartment, request); reviewerID != 0 {
			updates["current_reviewer_id"] = reviewerID
		}

		changed, err := st.UpdateRequestStatus(requestID, request.Status, updates)
		if err != nil {
			return err
		}
		if !changed {
			return conflict("update request", "submit")
		}

		entry := newLedgerEntry(models.SubjectUpdateRequest, requestID, p, models.ActionSubmitted, now)
		entry.VersionID = request.NewVersionID
		return st.AppendLedger(entry)
	})
	if err != nil {
		return nil, err
	}

	s.emit(DomainEvent{
		SubjectType: models.SubjectUpdateRequest,
		SubjectID:   requestID,
		Action:      models.ActionSubmitted,
		ActorID:     p.UserID,
		Timestamp:   now,
	})
	s.prefillChangeSummary(requestID)
	return s.store.GetUpdateRequest(requestID)
}

type DecideInput struct {
	Decision         string     `json:"decision" binding:"required"`
	Comments         string     `json:"comments"`
	RevisionDeadline *time.Time `json:"revision_deadline"`
}

// Decide records one reviewer decision at the request's current level.
// Approval at level 1 escalates; approval at level 2 is terminal and promotes
// the proposed version onto the syllabus in the same transaction. All checks
// run before any write; an unauthorized or misplaced decision changes
// nothing.
func (s *UpdateRequestService) Decide(p Principal, requestID int, in DecideInput) (*models.UpdateRequest, error) {
	switch in.Decision {
	case DecisionApprove, DecisionReject, DecisionRevision:
	default:
		return nil, &ValidationError{Violations: []string{"decision must be approve, reject or revision"}}
	}

	now := time.Now()
	var emitted []DomainEvent
	err := s.store.InTransaction(func(st Store) error {
		request, err := st.GetUpdateRequest(requestID)
		if err != nil {
			return err
		}
		if request.Status != models.RequestUnderReview {
			return invalidState("update request", request.Status, "decide")
		}
		if err := s.authorizeReviewer(st, p, request); err != nil {
			return err
		}

		comments := &in.Comments
		if in.Comments == "" {
			comments = nil
		}

		switch in.Decision {
		case DecisionApprove:
			if request.ReviewLevel < models.ReviewLevelInstitution {
				// Level 1 approval escalates; the reviewer slot is cleared
				// for re-resolution at the next level.
				updates := map[string]interface{}{
					"review_level":        models.ReviewLevelInstitution,
					"current_reviewer_id": nil,
					"update_at":           now,
				}
				nextReviewer := s.primaryReviewer(st, models.ReviewLevelInstitution, request)
				if nextReviewer != 0 {
					updates["current_reviewer_id"] = nextReviewer
				}
				changed, err := st.UpdateRequestStatus(requestID, models.RequestUnderReview, updates)
				if err != nil {
					return err
				}
				if !changed {
					return conflict("update request", "approve")
				}

				entry := newLedgerEntry(models.SubjectUpdateRequest, requestID, p, models.ActionReviewed, now)
				entry.VersionID = request.NewVersionID
				entry.Comments = comments
				if nextReviewer != 0 {
					entry.NextApproverID = &nextReviewer
				}
				if err := st.AppendLedger(entry); err != nil {
					return err
				}
				emitted = append(emitted, DomainEvent{
					SubjectType: models.SubjectUpdateRequest,
					SubjectID:   requestID,
					Action:      models.ActionReviewed,
					ActorID:     p.UserID,
					Timestamp:   now,
				})
				return nil
			}

			// Final approval: terminal status, then the explicit promote
			// command against the syllabus aggregate, atomically.
			changed, err := st.UpdateRequestStatus(requestID, models.RequestUnderReview, map[string]interface{}{
				"status":            models.RequestApproved,
				"decided_by":        p.UserID,
				"decision_comments": comments,
				"decided_at":        now,
				"update_at":         now,
			})
			if err != nil {
				return err
			}
			if !changed {
				return conflict("update request", "approve")
			}

			entry := newLedgerEntry(models.SubjectUpdateRequest, requestID, p, models.ActionApproved, now)
			entry.VersionID = request.NewVersionID
			entry.Comments = comments
			entry.IsCompleted = true
			if err := st.AppendLedger(entry); err != nil {
				return err
			}

			if err := promoteVersion(st, request.SyllabusID, *request.NewVersionID, p, now); err != nil {
				return err
			}
			emitted = append(emitted,
				DomainEvent{
					SubjectType: models.SubjectUpdateRequest,
					SubjectID:   requestID,
					Action:      models.ActionApproved,
					ActorID:     p.UserID,
					Timestamp:   now,
				},
				DomainEvent{
					SubjectType: models.SubjectSyllabus,
					SubjectID:   request.SyllabusID,
					Action:      models.ActionPublished,
					ActorID:     p.UserID,
					Timestamp:   now,
				})
			return nil

		case DecisionReject:
			if comments == nil {
				return unprocessable("a rejection requires comments")
			}
			changed, err := st.UpdateRequestStatus(requestID, models.RequestUnderReview, map[string]interface{}{
				"status":            models.RequestRejected,
				"decided_by":        p.UserID,
				"decision_comments": comments,
				"decided_at":        now,
				"update_at":         now,
			})
			if err != nil {
				return err
			}
			if !changed {
				return conflict("update request", "reject")
			}

			entry := newLedgerEntry(models.SubjectUpdateRequest, requestID, p, models.ActionRejected, now)
			entry.VersionID = request.NewVersionID
			entry.Comments = comments
			entry.IsCompleted = true
			if err := st.AppendLedger(entry); err != nil {
				return err
			}
			emitted = append(emitted, DomainEvent{
				SubjectType: models.SubjectUpdateRequest,
				SubjectID:   requestID,
				Action:      models.ActionRejected,
				ActorID:     p.UserID,
				Timestamp:   now,
			})
			return nil

		default: // DecisionRevision
			if in.RevisionDeadline == nil {
				return unprocessable("a revision decision requires a deadline")
			}
			changed, err := st.UpdateRequestStatus(requestID, models.RequestUnderReview, map[string]interface{}{
				"status":            models.RequestRevisionRequired,
				"decided_by":        p.UserID,
				"decision_comments": comments,
				"decided_at":        now,
				"revision_deadline": *in.RevisionDeadline,
				"update_at":         now,
			})
			if err != nil {
				return err
			}
			if !changed {
				return conflict("update request", "return for revision")
			}

			entry := newLedgerEntry(models.SubjectUpdateRequest, requestID, p, models.ActionReturnedForRevision, now)
			entry.VersionID = request.NewVersionID
			entry.Comments = comments
			entry.Deadline = in.RevisionDeadline
			if err := st.AppendLedger(entry); err != nil {
				return err
			}
			emitted = append(emitted, DomainEvent{
				SubjectType: models.SubjectUpdateRequest,
				SubjectID:   requestID,
				Action:      models.ActionReturnedForRevision,
				ActorID:     p.UserID,
				Timestamp:   now,
			})
			return nil
		}
	})
	if err != nil {
		return nil, err
	}

	for _, evt := range emitted {
		s.emit(evt)
	}
	return s.store.GetUpdateRequest(requestID)
}

// Cancel withdraws an active request. Terminal decisions cannot be undone
// this way.
func (s *UpdateRequestService) Cancel(p Principal, requestID int, comments string) (*models.UpdateRequest, error) {
	now := time.Now()
	err := s.store.InTransaction(func(st Store) error {
		request, err := st.GetUpdateRequest(requestID)
		if err != nil {
			return err
		}
		if request.RequestedBy != p.UserID && !p.IsAdmin() {
			return forbidden("only the requester or an administrator cancels a request")
		}
		if !request.IsActive() {
			return invalidState("update request", request.Status, "cancel")
		}

		changed, err := st.UpdateRequestStatus(requestID, request.Status, map[string]interface{}{
			"status":     models.RequestCancelled,
			"decided_by": p.UserID,
			"decided_at": now,
			"update_at":  now,
		})
		if err != nil {
			return err
		}
		if !changed {
			return conflict("update request", "cancel")
		}

		entry := newLedgerEntry(models.SubjectUpdateRequest, requestID, p, models.ActionWithdrawn, now)
		if comments != "" {
			entry.Comments = &comments
		}
		entry.IsCompleted = true
		return st.AppendLedger(entry)
	})
	if err != nil {
		return nil, err
	}

	s.emit(DomainEvent{
		SubjectType: models.SubjectUpdateRequest,
		SubjectID:   requestID,
		Action:      models.ActionWithdrawn,
		ActorID:     p.UserID,
		Timestamp:   now,
	})
	return s.store.GetUpdateRequest(requestID)
}

func (s *UpdateRequestService) Get(requestID int) (*models.UpdateRequest, error) {
	return s.store.GetUpdateRequest(requestID)
}

func (s *UpdateRequestService) List(f RequestFilter) ([]models.UpdateRequest, error) {
	return s.store.ListUpdateRequests(f)
}

// authorizeReviewer enforces the {role, level, department} capability tuple:
// the acting role must match the request's current level and the principal
// must hold a matching assignment in the active schedule.
func (s *UpdateRequestService) authorizeReviewer(st Store, p Principal, request *models.UpdateRequest) error {
	if p.RoleID != roleForLevel(request.ReviewLevel) {
		return forbidden("deciding at level %d requires a different role", request.ReviewLevel)
	}

	schedule, err := st.ActiveSchedule()
	if err != nil {
		return err
	}
	assignments, err := st.AssignmentsForSchedule(schedule.ScheduleID, request.ReviewLevel)
	if err != nil {
		return err
	}

	departmentID := 0
	if request.Syllabus != nil {
		departmentID = request.Syllabus.DepartmentID
	}
	for _, assignment := range assignments {
		if assignmentMatches(assignment, p.UserID, request.ReviewLevel, departmentID) {
			return nil
		}
	}
	return forbidden("no reviewer assignment authorizes this decision")
}

// primaryReviewer resolves the first reviewer in directory order for the
// level, or 0 when no schedule or assignment exists. Resolution is
// best-effort: a missing directory never blocks the transition.
func (s *UpdateRequestService) primaryReviewer(st Store, level int, request *models.UpdateRequest) int {
	schedule, err := st.ActiveSchedule()
	if err != nil {
		return 0
	}
	departmentID := 0
	if request.Syllabus != nil {
		departmentID = request.Syllabus.DepartmentID
	}
	ordered, err := NewScheduleService(st).ResolveReviewers(schedule.ScheduleID, level, departmentID)
	if err != nil || len(ordered) == 0 {
		return 0
	}
	return ordered[0].ReviewerID
}

// prefillChangeSummary consults the optional similarity oracle off the
// transition's critical path. Failures are logged and ignored; the summary is
// never a gate.
func (s *UpdateRequestService) prefillChangeSummary(requestID int) {
	if s.oracle == nil {
		return
	}
	go func() {
		request, err := s.store.GetUpdateRequest(requestID)
		if err != nil || request.NewVersionID == nil {
			return
		}
		oldVersion, err := s.store.GetVersion(request.OldVersionID)
		if err != nil {
			return
		}
		newVersion, err := s.store.GetVersion(*request.NewVersionID)
		if err != nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		result, err := s.oracle.Compare(ctx, oldVersion.Content, newVersion.Content)
		if err != nil {
			log.Printf("similarity oracle unavailable for request %d: %v", requestID, err)
			return
		}
		if err := s.store.UpdateRequestFields(requestID, map[string]interface{}{
			"similarity_score": result.Score,
			"change_summary":   result.Summary(),
			"update_at":        time.Now(),
		}); err != nil {
			log.Printf("failed to store change summary for request %d: %v", requestID, err)
		}
	}()
}
