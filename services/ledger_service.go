package services

import (
	"time"

	"syllabus-review-api/models"

	"github.com/google/uuid"
)

// LedgerService exposes the read side of the approval ledger. Writes happen
// only inside workflow transactions via newLedgerEntry + Store.AppendLedger.
type LedgerService struct {
	store Store
}

func NewLedgerService(store Store) *LedgerService {
	return &LedgerService{store: store}
}

// newLedgerEntry builds the single immutable entry an accepted transition
// appends.
func newLedgerEntry(subjectType string, subjectID int, p Principal, action string, now time.Time) *models.ApprovalLedgerEntry {
	return &models.ApprovalLedgerEntry{
		Reference:   uuid.NewString(),
		SubjectType: subjectType,
		SubjectID:   subjectID,
		ActorID:     p.UserID,
		ActorRole:   p.RoleID,
		Action:      action,
		RecordedAt:  now,
	}
}

// History returns the full trail for a subject ordered by time.
func (s *LedgerService) History(subjectType string, subjectID int) ([]models.ApprovalLedgerEntry, error) {
	switch subjectType {
	case models.SubjectSyllabus:
		if _, err := s.store.GetSyllabus(subjectID); err != nil {
			return nil, err
		}
	case models.SubjectUpdateRequest:
		if _, err := s.store.GetUpdateRequest(subjectID); err != nil {
			return nil, err
		}
	default:
		return nil, notFound("ledger subject", subjectID)
	}
	return s.store.LedgerHistory(subjectType, subjectID)
}

// ActionableItem is one entry of the "actionable for me" view, with advisory
// deadline flags computed on read.
type ActionableItem struct {
	SubjectType string     `json:"subject_type"`
	SubjectID   int        `json:"subject_id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	ReviewLevel int        `json:"review_level,omitempty"`
	DaysPending int        `json:"days_pending"`
	Overdue     bool       `json:"overdue"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// ActionableForReviewer joins current subject status with the principal's
// reviewer assignments in the active schedule: syllabi pending review for
// level-1 assignees and update requests sitting at an assigned level.
func (s *LedgerService) ActionableForReviewer(p Principal, now time.Time) ([]ActionableItem, error) {
	assignments, err := s.store.AssignmentsForReviewer(p.UserID)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return []ActionableItem{}, nil
	}

	items := []ActionableItem{}
	seenSyllabus := make(map[int]bool)
	seenRequest := make(map[int]bool)

	for _, assignment := range assignments {
		schedule, err := s.store.GetSchedule(assignment.ScheduleID)
		if err != nil {
			return nil, err
		}
		inScope := func(departmentID int) bool {
			return assignment.DepartmentID == nil || *assignment.DepartmentID == departmentID
		}

		if assignment.ReviewLevel == models.ReviewLevelDepartment {
			syllabi, err := s.store.ListSyllabi(SyllabusFilter{Status: models.SyllabusPendingReview})
			if err != nil {
				return nil, err
			}
			for _, syllabus := range syllabi {
				if seenSyllabus[syllabus.SyllabusID] || !inScope(syllabus.DepartmentID) {
					continue
				}
				seenSyllabus[syllabus.SyllabusID] = true
				info := DeadlineStatus(schedule, models.ReviewLevelDepartment, now)
				items = append(items, ActionableItem{
					SubjectType: models.SubjectSyllabus,
					SubjectID:   syllabus.SyllabusID,
					Title:       syllabus.Course.CourseCode + " " + syllabus.Course.CourseName,
					Status:      syllabus.Status,
					DaysPending: DaysPending(syllabus.SubmittedAt, now),
					Overdue:     info.Overdue,
					Deadline:    info.Deadline,
				})
			}
		}

		requests, err := s.store.ListUpdateRequests(RequestFilter{
			Statuses:    []string{models.RequestUnderReview},
			ReviewLevel: assignment.ReviewLevel,
		})
		if err != nil {
			return nil, err
		}
		for _, request := range requests {
			if seenRequest[request.RequestID] {
				continue
			}
			if request.Syllabus == nil || !inScope(request.Syllabus.DepartmentID) {
				continue
			}
			seenRequest[request.RequestID] = true
			info := DeadlineStatus(schedule, request.ReviewLevel, now)
			items = append(items, ActionableItem{
				SubjectType: models.SubjectUpdateRequest,
				SubjectID:   request.RequestID,
				Title:       request.Title,
				Status:      request.Status,
				ReviewLevel: request.ReviewLevel,
				DaysPending: DaysPending(request.SubmittedAt, now),
				Overdue:     info.Overdue,
				Deadline:    info.Deadline,
			})
		}
	}
	return items, nil
}
