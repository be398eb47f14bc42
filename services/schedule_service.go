package services

import (
	"fmt"
	"time"

	"syllabus-review-api/models"
)

// ScheduleService manages per-term review windows and the reviewer
// directory.
type ScheduleService struct {
	store Store
}

func NewScheduleService(store Store) *ScheduleService {
	return &ScheduleService{store: store}
}

type CreateScheduleInput struct {
	TermID                int       `json:"term_id" binding:"required"`
	ReviewStart           time.Time `json:"review_start" binding:"required"`
	Level1Deadline        time.Time `json:"level1_deadline" binding:"required"`
	Level2Deadline        time.Time `json:"level2_deadline" binding:"required"`
	FinalApprovalDeadline time.Time `json:"final_approval_deadline" binding:"required"`
	Activate              bool      `json:"activate"`
}

// Create validates the strictly-increasing date chain and stores the
// schedule. All violations are reported together.
func (s *ScheduleService) Create(p Principal, in CreateScheduleInput) (*models.ReviewSchedule, error) {
	if !p.IsAdmin() {
		return nil, forbidden("only administrators manage review schedules")
	}

	var violations []string
	if !in.ReviewStart.Before(in.Level1Deadline) {
		violations = append(violations, "level 1 deadline must be after review start")
	}
	if !in.Level1Deadline.Before(in.Level2Deadline) {
		violations = append(violations, "level 2 deadline must be after level 1 deadline")
	}
	if !in.Level2Deadline.Before(in.FinalApprovalDeadline) {
		violations = append(violations, "final approval deadline must be after level 2 deadline")
	}
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	schedule := &models.ReviewSchedule{
		TermID:                in.TermID,
		ReviewStart:           in.ReviewStart,
		Level1Deadline:        in.Level1Deadline,
		Level2Deadline:        in.Level2Deadline,
		FinalApprovalDeadline: in.FinalApprovalDeadline,
		CreateAt:              time.Now(),
	}
	if err := s.store.CreateSchedule(schedule); err != nil {
		return nil, err
	}
	if in.Activate {
		if err := s.store.ActivateSchedule(schedule.ScheduleID); err != nil {
			return nil, err
		}
		schedule.IsActive = true
	}
	return schedule, nil
}

func (s *ScheduleService) Activate(p Principal, scheduleID int) error {
	if !p.IsAdmin() {
		return forbidden("only administrators manage review schedules")
	}
	return s.store.ActivateSchedule(scheduleID)
}

func (s *ScheduleService) List() ([]models.ReviewSchedule, error) {
	return s.store.ListSchedules()
}

func (s *ScheduleService) Get(scheduleID int) (*models.ReviewSchedule, error) {
	return s.store.GetSchedule(scheduleID)
}

type AssignReviewerInput struct {
	ReviewerID   int  `json:"reviewer_id" binding:"required"`
	ReviewLevel  int  `json:"review_level" binding:"required"`
	DepartmentID *int `json:"department_id"`
	IsPrimary    bool `json:"is_primary"`
}

// AssignReviewer binds a reviewer to a level in a schedule. The reviewer's
// role must match the level it is asked to decide at.
func (s *ScheduleService) AssignReviewer(p Principal, scheduleID int, in AssignReviewerInput) (*models.ReviewerAssignment, error) {
	if !p.IsAdmin() {
		return nil, forbidden("only administrators manage reviewer assignments")
	}
	if in.ReviewLevel != models.ReviewLevelDepartment && in.ReviewLevel != models.ReviewLevelInstitution {
		return nil, &ValidationError{Violations: []string{"review level must be 1 or 2"}}
	}
	if _, err := s.store.GetSchedule(scheduleID); err != nil {
		return nil, err
	}

	reviewer, err := s.store.GetUser(in.ReviewerID)
	if err != nil {
		return nil, err
	}
	if reviewer.RoleID != roleForLevel(in.ReviewLevel) {
		return nil, &ValidationError{Violations: []string{
			fmt.Sprintf("user %d does not hold the role required for level %d review", in.ReviewerID, in.ReviewLevel),
		}}
	}

	assignment := &models.ReviewerAssignment{
		ScheduleID:   scheduleID,
		ReviewerID:   in.ReviewerID,
		ReviewLevel:  in.ReviewLevel,
		DepartmentID: in.DepartmentID,
		IsPrimary:    in.IsPrimary,
		CreateAt:     time.Now(),
	}
	if err := s.store.CreateAssignment(assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// ResolveReviewers returns the ordered reviewer list for a level: primary
// assignees first, then department-matching assignees, then level-wide
// assignees with no department restriction. Duplicates keep their best rank.
func (s *ScheduleService) ResolveReviewers(scheduleID, level, departmentID int) ([]models.ReviewerAssignment, error) {
	assignments, err := s.store.AssignmentsForSchedule(scheduleID, level)
	if err != nil {
		return nil, err
	}

	rank := func(a models.ReviewerAssignment) int {
		switch {
		case a.IsPrimary:
			return 0
		case a.DepartmentID != nil:
			return 1
		default:
			return 2
		}
	}

	var ordered []models.ReviewerAssignment
	seen := make(map[int]bool)
	for tier := 0; tier <= 2; tier++ {
		for _, a := range assignments {
			if a.DepartmentID != nil && *a.DepartmentID != departmentID {
				continue
			}
			if rank(a) != tier || seen[a.ReviewerID] {
				continue
			}
			seen[a.ReviewerID] = true
			ordered = append(ordered, a)
		}
	}
	return ordered, nil
}

// DeadlineInfo is advisory metadata only; late actions are accepted and
// merely flagged.
type DeadlineInfo struct {
	Level         int        `json:"level"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	Overdue       bool       `json:"overdue"`
	DaysRemaining int        `json:"days_remaining"`
}

// DeadlineStatus computes the advisory flags for a level against a schedule
// at the given reference time.
func DeadlineStatus(schedule *models.ReviewSchedule, level int, now time.Time) DeadlineInfo {
	info := DeadlineInfo{Level: level}
	if schedule == nil {
		return info
	}

	var deadline time.Time
	switch level {
	case models.ReviewLevelDepartment:
		deadline = schedule.Level1Deadline
	case models.ReviewLevelInstitution:
		deadline = schedule.Level2Deadline
	default:
		deadline = schedule.FinalApprovalDeadline
	}

	info.Deadline = &deadline
	info.Overdue = now.After(deadline)
	info.DaysRemaining = int(deadline.Sub(now).Hours() / 24)
	return info
}

// DaysPending counts whole days since the subject entered review.
func DaysPending(since *time.Time, now time.Time) int {
	if since == nil {
		return 0
	}
	days := int(now.Sub(*since).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
