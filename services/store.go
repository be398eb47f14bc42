package services

import "syllabus-review-api/models"

// SyllabusFilter narrows syllabus listings.
type SyllabusFilter struct {
	Status       string
	CourseID     int
	DepartmentID int
	CreatedBy    int
}

// RequestFilter narrows update-request listings.
type RequestFilter struct {
	Statuses    []string
	SyllabusID  int
	RequestedBy int
	ReviewLevel int
}

// Store is the persistence boundary for the workflow core. The GORM
// implementation backs production; tests substitute an in-memory fake.
// InTransaction hands the callback a Store bound to one transaction; every
// state transition runs its reads, guarded status write and ledger append
// inside a single callback so they commit atomically or not at all.
type Store interface {
	InTransaction(fn func(Store) error) error

	// reference data
	GetUser(id int) (*models.User, error)
	GetCourse(id int) (*models.Course, error)

	// syllabus aggregate
	CreateSyllabus(s *models.Syllabus) error
	GetSyllabus(id int) (*models.Syllabus, error)
	ListSyllabi(f SyllabusFilter) ([]models.Syllabus, error)
	// UpdateSyllabusStatus applies updates only while the row still holds
	// fromStatus; returns false when the guard missed (CAS conflict).
	UpdateSyllabusStatus(id int, fromStatus string, updates map[string]interface{}) (bool, error)

	// content versions
	CreateVersion(v *models.SyllabusVersion) error
	GetVersion(id int) (*models.SyllabusVersion, error)
	UpdateVersionContent(versionID int, content string) error
	NextVersionNo(syllabusID int) (int, error)

	// update requests
	CreateUpdateRequest(r *models.UpdateRequest) error
	GetUpdateRequest(id int) (*models.UpdateRequest, error)
	ListUpdateRequests(f RequestFilter) ([]models.UpdateRequest, error)
	CountActiveRequests(syllabusID int) (int64, error)
	// UpdateRequestStatus is the CAS twin of UpdateSyllabusStatus.
	UpdateRequestStatus(id int, fromStatus string, updates map[string]interface{}) (bool, error)
	UpdateRequestFields(id int, updates map[string]interface{}) error

	// rubric catalog
	CreateTemplate(t *models.RubricTemplate) error
	GetTemplate(id int) (*models.RubricTemplate, error)
	DefaultTemplate() (*models.RubricTemplate, error)
	ListTemplates(activeOnly bool) ([]models.RubricTemplate, error)

	// reviewer directory
	CreateSchedule(s *models.ReviewSchedule) error
	GetSchedule(id int) (*models.ReviewSchedule, error)
	ListSchedules() ([]models.ReviewSchedule, error)
	ActiveSchedule() (*models.ReviewSchedule, error)
	ActivateSchedule(id int) error
	CreateAssignment(a *models.ReviewerAssignment) error
	AssignmentsForSchedule(scheduleID, level int) ([]models.ReviewerAssignment, error)
	AssignmentsForReviewer(reviewerID int) ([]models.ReviewerAssignment, error)

	// approval ledger (append-only; no update or delete path exists)
	AppendLedger(e *models.ApprovalLedgerEntry) error
	LedgerHistory(subjectType string, subjectID int) ([]models.ApprovalLedgerEntry, error)

	// evaluations
	UpsertEvaluationResult(r *models.EvaluationResult) error
	ResultsForRequest(requestID int) ([]models.EvaluationResult, error)
	CreatePeerEvaluation(e *models.PeerEvaluation) error
	PeerEvaluationsForSyllabus(syllabusID int) ([]models.PeerEvaluation, error)

	// notifications
	CreateNotification(n *models.Notification) error
}
