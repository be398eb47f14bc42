package services

import (
	"errors"
	"testing"
	"time"

	"syllabus-review-api/models"
)

func newScheduleFixture(t *testing.T) (*memStore, *ScheduleService) {
	t.Helper()
	store := newMemStore()
	seedUser(store, lecturerID, models.RoleLecturer, deptID)
	seedUser(store, deptHeadID, models.RoleDeptHead, deptID)
	seedUser(store, affairsID, models.RoleAcademicAffairs, deptID)
	seedUser(store, adminID, models.RoleAdmin, deptID)
	return store, NewScheduleService(store)
}

func scheduleDates(start time.Time) CreateScheduleInput {
	return CreateScheduleInput{
		TermID:                1,
		ReviewStart:           start,
		Level1Deadline:        start.Add(7 * 24 * time.Hour),
		Level2Deadline:        start.Add(14 * 24 * time.Hour),
		FinalApprovalDeadline: start.Add(21 * 24 * time.Hour),
	}
}

func TestCreateScheduleValidatesDateChain(t *testing.T) {
	_, svc := newScheduleFixture(t)
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	in := scheduleDates(start)
	in.Level1Deadline = start
	in.Level2Deadline = start.Add(-24 * time.Hour)
	in.FinalApprovalDeadline = in.Level2Deadline

	_, err := svc.Create(admin(), in)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validationErr.Violations) != 3 {
		t.Errorf("expected every broken link in the chain reported, got %v", validationErr.Violations)
	}
}

func TestCreateScheduleRequiresAdmin(t *testing.T) {
	_, svc := newScheduleFixture(t)

	_, err := svc.Create(deptHead(), scheduleDates(time.Now()))
	var forbiddenErr *ForbiddenError
	if !errors.As(err, &forbiddenErr) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
}

func TestActivateScheduleDeactivatesOthers(t *testing.T) {
	store, svc := newScheduleFixture(t)
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	in := scheduleDates(start)
	in.Activate = true
	first, err := svc.Create(admin(), in)
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	second, err := svc.Create(admin(), scheduleDates(start.AddDate(0, 6, 0)))
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	active, err := store.ActiveSchedule()
	if err != nil || active.ScheduleID != first.ScheduleID {
		t.Fatalf("expected the first schedule active, got %v (%v)", active, err)
	}

	if err := svc.Activate(admin(), second.ScheduleID); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	active, err = store.ActiveSchedule()
	if err != nil || active.ScheduleID != second.ScheduleID {
		t.Fatalf("expected activation to move to the second schedule, got %v (%v)", active, err)
	}
	previous, _ := store.GetSchedule(first.ScheduleID)
	if previous.IsActive {
		t.Errorf("expected the previous schedule deactivated")
	}
}

func TestAssignReviewerRoleMustMatchLevel(t *testing.T) {
	_, svc := newScheduleFixture(t)
	schedule, err := svc.Create(admin(), scheduleDates(time.Now()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	cases := []struct {
		name       string
		reviewerID int
		level      int
		wantErr    bool
	}{
		{"department head at level 1", deptHeadID, 1, false},
		{"academic affairs at level 2", affairsID, 2, false},
		{"lecturer at level 1", lecturerID, 1, true},
		{"department head at level 2", deptHeadID, 2, true},
		{"level out of range", deptHeadID, 3, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AssignReviewer(admin(), schedule.ScheduleID, AssignReviewerInput{
				ReviewerID:  tc.reviewerID,
				ReviewLevel: tc.level,
			})
			if tc.wantErr {
				var validationErr *ValidationError
				if !errors.As(err, &validationErr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("AssignReviewer: %v", err)
			}
		})
	}
}

func TestResolveReviewersOrdering(t *testing.T) {
	store, svc := newScheduleFixture(t)
	schedule, err := svc.Create(admin(), scheduleDates(time.Now()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	const (
		primaryID   = 20
		deptMatchID = 21
		unscopedID  = 22
		otherDeptID = 23
	)
	for _, id := range []int{primaryID, deptMatchID, unscopedID, otherDeptID} {
		seedUser(store, id, models.RoleDeptHead, deptID)
	}

	department := deptID
	otherDepartment := deptID + 1
	assignments := []AssignReviewerInput{
		{ReviewerID: unscopedID, ReviewLevel: 1},
		{ReviewerID: deptMatchID, ReviewLevel: 1, DepartmentID: &department},
		{ReviewerID: otherDeptID, ReviewLevel: 1, DepartmentID: &otherDepartment},
		{ReviewerID: primaryID, ReviewLevel: 1, DepartmentID: &department, IsPrimary: true},
	}
	for _, in := range assignments {
		if _, err := svc.AssignReviewer(admin(), schedule.ScheduleID, in); err != nil {
			t.Fatalf("AssignReviewer %d: %v", in.ReviewerID, err)
		}
	}

	ordered, err := svc.ResolveReviewers(schedule.ScheduleID, 1, deptID)
	if err != nil {
		t.Fatalf("ResolveReviewers: %v", err)
	}

	want := []int{primaryID, deptMatchID, unscopedID}
	if len(ordered) != len(want) {
		t.Fatalf("expected %v, got %d reviewers", want, len(ordered))
	}
	for i, assignment := range ordered {
		if assignment.ReviewerID != want[i] {
			t.Errorf("position %d: expected reviewer %d, got %d", i, want[i], assignment.ReviewerID)
		}
	}
}

func TestResolveReviewersDeduplicates(t *testing.T) {
	store, svc := newScheduleFixture(t)
	schedule, err := svc.Create(admin(), scheduleDates(time.Now()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	seedUser(store, 30, models.RoleDeptHead, deptID)

	department := deptID
	if _, err := svc.AssignReviewer(admin(), schedule.ScheduleID, AssignReviewerInput{
		ReviewerID: 30, ReviewLevel: 1, DepartmentID: &department, IsPrimary: true,
	}); err != nil {
		t.Fatalf("AssignReviewer primary: %v", err)
	}
	if _, err := svc.AssignReviewer(admin(), schedule.ScheduleID, AssignReviewerInput{
		ReviewerID: 30, ReviewLevel: 1,
	}); err != nil {
		t.Fatalf("AssignReviewer unscoped: %v", err)
	}

	ordered, err := svc.ResolveReviewers(schedule.ScheduleID, 1, deptID)
	if err != nil {
		t.Fatalf("ResolveReviewers: %v", err)
	}
	if len(ordered) != 1 || !ordered[0].IsPrimary {
		t.Fatalf("expected the reviewer listed once at the best rank, got %+v", ordered)
	}
}
