package services

import (
	"testing"
	"time"

	"syllabus-review-api/models"
)

func TestNotifierDeliversToLevelReviewers(t *testing.T) {
	store, requestSvc, syllabus := newRequestFixture(t)
	request := mustCreateRequest(t, requestSvc, syllabus.SyllabusID)
	mustSubmitRequest(t, requestSvc, request.RequestID)

	var mailedTo []string
	notifier := &Notifier{
		store: store,
		mail: func(to []string, subject, html string) error {
			mailedTo = append(mailedTo, to...)
			return nil
		},
	}

	err := notifier.deliver(DomainEvent{
		SubjectType: models.SubjectUpdateRequest,
		SubjectID:   request.RequestID,
		Action:      models.ActionSubmitted,
		ActorID:     lecturerID,
		Timestamp:   time.Now(),
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}

	// Only the level 1 reviewer in the syllabus's department hears about it.
	if len(store.notifications) != 1 {
		t.Fatalf("expected one notification row, got %d", len(store.notifications))
	}
	notification := store.notifications[0]
	if notification.UserID != deptHeadID {
		t.Errorf("expected the department head notified, got user %d", notification.UserID)
	}
	if notification.Type != "info" {
		t.Errorf("expected type info for a submission, got %s", notification.Type)
	}
	if notification.RelatedSubjectID == nil || *notification.RelatedSubjectID != request.RequestID {
		t.Errorf("expected the notification linked to the request")
	}
	if len(mailedTo) != 1 {
		t.Errorf("expected one mail recipient, got %v", mailedTo)
	}
}

func TestNotifierSkipsTheActor(t *testing.T) {
	store, requestSvc, syllabus := newRequestFixture(t)
	request := mustCreateRequest(t, requestSvc, syllabus.SyllabusID)
	mustSubmitRequest(t, requestSvc, request.RequestID)
	if _, err := requestSvc.Decide(deptHead(), request.RequestID, DecideInput{Decision: DecisionReject, Comments: "no"}); err != nil {
		t.Fatalf("Decide: %v", err)
	}

	notifier := &Notifier{
		store: store,
		mail:  func(to []string, subject, html string) error { return nil },
	}

	// A terminal decision notifies the requester, not the deciding reviewer.
	err := notifier.deliver(DomainEvent{
		SubjectType: models.SubjectUpdateRequest,
		SubjectID:   request.RequestID,
		Action:      models.ActionRejected,
		ActorID:     deptHeadID,
		Timestamp:   time.Now(),
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}

	if len(store.notifications) != 1 || store.notifications[0].UserID != lecturerID {
		t.Fatalf("expected only the requester notified, got %+v", store.notifications)
	}
	if store.notifications[0].Type != "error" {
		t.Errorf("expected type error for a rejection, got %s", store.notifications[0].Type)
	}

	// An event whose only recipient is the actor produces nothing.
	store.notifications = nil
	err = notifier.deliver(DomainEvent{
		SubjectType: models.SubjectUpdateRequest,
		SubjectID:   request.RequestID,
		Action:      models.ActionWithdrawn,
		ActorID:     lecturerID,
		Timestamp:   time.Now(),
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(store.notifications) != 0 {
		t.Errorf("expected the actor skipped, got %+v", store.notifications)
	}
}
