package services

import (
	"fmt"
	"log"
	"time"

	"syllabus-review-api/config"
	"syllabus-review-api/models"
	"syllabus-review-api/utils"
)

// DomainEvent is emitted once per accepted transition. Delivery is the
// sink's concern; the workflow never blocks on it.
type DomainEvent struct {
	SubjectType string    `json:"subject_type"`
	SubjectID   int       `json:"subject_id"`
	Action      string    `json:"action"`
	ActorID     int       `json:"actor_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// EventSink receives domain events after the owning transaction commits.
type EventSink interface {
	Publish(evt DomainEvent)
}

// Notifier is the default sink: it writes notification rows for the affected
// users and sends best-effort mail. All work happens off the caller's path.
type Notifier struct {
	store Store
	mail  func(to []string, subject, html string) error
}

func NewNotifier(store Store) *Notifier {
	return &Notifier{store: store, mail: config.SendMail}
}

func (n *Notifier) Publish(evt DomainEvent) {
	go func() {
		if err := n.deliver(evt); err != nil {
			log.Printf("notification delivery failed for %s %d (%s): %v",
				evt.SubjectType, evt.SubjectID, evt.Action, err)
		}
	}()
}

func (n *Notifier) deliver(evt DomainEvent) error {
	recipients, title, message, err := n.describe(evt)
	if err != nil {
		return err
	}

	subject := evt.SubjectType
	emails := make([]string, 0, len(recipients))
	for _, userID := range recipients {
		if userID == evt.ActorID {
			continue
		}
		notification := models.Notification{
			UserID:           userID,
			Title:            title,
			Message:          message,
			Type:             notificationType(evt.Action),
			RelatedSubject:   &subject,
			RelatedSubjectID: &evt.SubjectID,
			CreateAt:         time.Now(),
		}
		if err := n.store.CreateNotification(&notification); err != nil {
			log.Printf("failed to store notification for user %d: %v", userID, err)
			continue
		}
		if user, err := n.store.GetUser(userID); err == nil && utils.ValidateEmail(user.Email) {
			emails = append(emails, user.Email)
		}
	}

	if len(emails) > 0 {
		if err := n.mail(emails, title, "<p>"+message+"</p>"); err != nil {
			log.Printf("notification mail failed: %v", err)
		}
	}
	return nil
}

// describe resolves who should hear about the event and how to phrase it.
func (n *Notifier) describe(evt DomainEvent) ([]int, string, string, error) {
	switch evt.SubjectType {
	case models.SubjectUpdateRequest:
		request, err := n.store.GetUpdateRequest(evt.SubjectID)
		if err != nil {
			return nil, "", "", err
		}
		title := fmt.Sprintf("Update request %s %s", request.RequestNumber, actionPhrase(evt.Action))
		message := fmt.Sprintf("Update request %s was %s.", request.RequestNumber, actionPhrase(evt.Action))

		switch evt.Action {
		case models.ActionSubmitted, models.ActionReviewed:
			reviewers, err := n.reviewersForRequest(request)
			if err != nil {
				return nil, "", "", err
			}
			return reviewers, title, message, nil
		default:
			return []int{request.RequestedBy}, title, message, nil
		}

	case models.SubjectSyllabus:
		syllabus, err := n.store.GetSyllabus(evt.SubjectID)
		if err != nil {
			return nil, "", "", err
		}
		title := fmt.Sprintf("Syllabus for %s %s", syllabus.Course.CourseCode, actionPhrase(evt.Action))
		message := fmt.Sprintf("The syllabus for course %s was %s.", syllabus.Course.CourseCode, actionPhrase(evt.Action))

		if evt.Action == models.ActionSubmitted {
			reviewers, err := n.departmentReviewers(syllabus.DepartmentID)
			if err != nil {
				return nil, "", "", err
			}
			return reviewers, title, message, nil
		}
		return []int{syllabus.CreatedBy}, title, message, nil
	}
	return nil, "", "", fmt.Errorf("unknown event subject %q", evt.SubjectType)
}

func (n *Notifier) reviewersForRequest(request *models.UpdateRequest) ([]int, error) {
	schedule, err := n.store.ActiveSchedule()
	if err != nil {
		return nil, err
	}
	departmentID := 0
	if request.Syllabus != nil {
		departmentID = request.Syllabus.DepartmentID
	}
	assignments, err := n.store.AssignmentsForSchedule(schedule.ScheduleID, request.ReviewLevel)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(assignments))
	for _, a := range assignments {
		if a.DepartmentID == nil || *a.DepartmentID == departmentID {
			ids = append(ids, a.ReviewerID)
		}
	}
	return ids, nil
}

func (n *Notifier) departmentReviewers(departmentID int) ([]int, error) {
	schedule, err := n.store.ActiveSchedule()
	if err != nil {
		return nil, err
	}
	assignments, err := n.store.AssignmentsForSchedule(schedule.ScheduleID, models.ReviewLevelDepartment)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(assignments))
	for _, a := range assignments {
		if a.DepartmentID == nil || *a.DepartmentID == departmentID {
			ids = append(ids, a.ReviewerID)
		}
	}
	return ids, nil
}

func actionPhrase(action string) string {
	switch action {
	case models.ActionSubmitted:
		return "submitted for review"
	case models.ActionReviewed:
		return "advanced to the next review level"
	case models.ActionApproved:
		return "approved"
	case models.ActionRejected:
		return "rejected"
	case models.ActionReturnedForRevision:
		return "returned for revision"
	case models.ActionWithdrawn:
		return "withdrawn"
	case models.ActionPublished:
		return "published"
	}
	return action
}

func notificationType(action string) string {
	switch action {
	case models.ActionApproved, models.ActionPublished:
		return "success"
	case models.ActionRejected:
		return "error"
	case models.ActionReturnedForRevision:
		return "warning"
	}
	return "info"
}
