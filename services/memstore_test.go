package services

import (
	"fmt"
	"sort"
	"time"

	"syllabus-review-api/models"
)

// memStore is an in-memory Store for service tests. Writes inside
// InTransaction are applied directly; the services order every guard before
// the first write, so the tests never rely on rollback.
type memStore struct {
	nextID int

	users   map[int]*models.User
	courses map[int]*models.Course

	syllabi  map[int]*models.Syllabus
	versions map[int]*models.SyllabusVersion
	requests map[int]*models.UpdateRequest

	templates map[int]*models.RubricTemplate

	schedules   map[int]*models.ReviewSchedule
	assignments []models.ReviewerAssignment

	ledger        []models.ApprovalLedgerEntry
	results       []models.EvaluationResult
	peerEvals     []models.PeerEvaluation
	notifications []models.Notification
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[int]*models.User),
		courses:   make(map[int]*models.Course),
		syllabi:   make(map[int]*models.Syllabus),
		versions:  make(map[int]*models.SyllabusVersion),
		requests:  make(map[int]*models.UpdateRequest),
		templates: make(map[int]*models.RubricTemplate),
		schedules: make(map[int]*models.ReviewSchedule),
	}
}

func (m *memStore) id() int {
	m.nextID++
	return m.nextID
}

func (m *memStore) InTransaction(fn func(Store) error) error {
	return fn(m)
}

func (m *memStore) GetUser(id int) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	copied := *user
	return &copied, nil
}

func (m *memStore) GetCourse(id int) (*models.Course, error) {
	course, ok := m.courses[id]
	if !ok {
		return nil, notFound("course", id)
	}
	copied := *course
	return &copied, nil
}

func (m *memStore) CreateSyllabus(s *models.Syllabus) error {
	s.SyllabusID = m.id()
	copied := *s
	m.syllabi[s.SyllabusID] = &copied
	return nil
}

func (m *memStore) GetSyllabus(id int) (*models.Syllabus, error) {
	syllabus, ok := m.syllabi[id]
	if !ok {
		return nil, notFound("syllabus", id)
	}
	copied := *syllabus
	if course, ok := m.courses[copied.CourseID]; ok {
		copied.Course = *course
	}
	return &copied, nil
}

func (m *memStore) ListSyllabi(f SyllabusFilter) ([]models.Syllabus, error) {
	var out []models.Syllabus
	for _, syllabus := range m.syllabi {
		if f.Status != "" && syllabus.Status != f.Status {
			continue
		}
		if f.CourseID != 0 && syllabus.CourseID != f.CourseID {
			continue
		}
		if f.DepartmentID != 0 && syllabus.DepartmentID != f.DepartmentID {
			continue
		}
		if f.CreatedBy != 0 && syllabus.CreatedBy != f.CreatedBy {
			continue
		}
		copied := *syllabus
		if course, ok := m.courses[copied.CourseID]; ok {
			copied.Course = *course
		}
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SyllabusID < out[j].SyllabusID })
	return out, nil
}

func (m *memStore) UpdateSyllabusStatus(id int, fromStatus string, updates map[string]interface{}) (bool, error) {
	syllabus, ok := m.syllabi[id]
	if !ok || syllabus.Status != fromStatus {
		return false, nil
	}
	for column, value := range updates {
		switch column {
		case "status":
			syllabus.Status = value.(string)
		case "current_version_id":
			versionID := value.(int)
			syllabus.CurrentVersionID = &versionID
		case "submitted_at":
			at := value.(time.Time)
			syllabus.SubmittedAt = &at
		case "update_at":
			at := value.(time.Time)
			syllabus.UpdateAt = &at
		}
	}
	return true, nil
}

func (m *memStore) CreateVersion(v *models.SyllabusVersion) error {
	v.VersionID = m.id()
	copied := *v
	m.versions[v.VersionID] = &copied
	return nil
}

func (m *memStore) GetVersion(id int) (*models.SyllabusVersion, error) {
	version, ok := m.versions[id]
	if !ok {
		return nil, notFound("syllabus version", id)
	}
	copied := *version
	return &copied, nil
}

func (m *memStore) UpdateVersionContent(versionID int, content string) error {
	version, ok := m.versions[versionID]
	if !ok {
		return notFound("syllabus version", versionID)
	}
	now := time.Now()
	version.Content = content
	version.UpdateAt = &now
	return nil
}

func (m *memStore) NextVersionNo(syllabusID int) (int, error) {
	highest := 0
	for _, version := range m.versions {
		if version.SyllabusID == syllabusID && version.VersionNo > highest {
			highest = version.VersionNo
		}
	}
	return highest + 1, nil
}

func (m *memStore) CreateUpdateRequest(r *models.UpdateRequest) error {
	r.RequestID = m.id()
	copied := *r
	m.requests[r.RequestID] = &copied
	return nil
}

func (m *memStore) GetUpdateRequest(id int) (*models.UpdateRequest, error) {
	request, ok := m.requests[id]
	if !ok {
		return nil, notFound("update request", id)
	}
	copied := *request
	if syllabus, err := m.GetSyllabus(copied.SyllabusID); err == nil {
		copied.Syllabus = syllabus
	}
	return &copied, nil
}

func (m *memStore) ListUpdateRequests(f RequestFilter) ([]models.UpdateRequest, error) {
	var out []models.UpdateRequest
	for _, request := range m.requests {
		if len(f.Statuses) > 0 {
			matched := false
			for _, status := range f.Statuses {
				if request.Status == status {
					matched = true
				}
			}
			if !matched {
				continue
			}
		}
		if f.SyllabusID != 0 && request.SyllabusID != f.SyllabusID {
			continue
		}
		if f.RequestedBy != 0 && request.RequestedBy != f.RequestedBy {
			continue
		}
		if f.ReviewLevel != 0 && request.ReviewLevel != f.ReviewLevel {
			continue
		}
		copied := *request
		if syllabus, err := m.GetSyllabus(copied.SyllabusID); err == nil {
			copied.Syllabus = syllabus
		}
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestID < out[j].RequestID })
	return out, nil
}

func (m *memStore) CountActiveRequests(syllabusID int) (int64, error) {
	var count int64
	for _, request := range m.requests {
		if request.SyllabusID == syllabusID && request.IsActive() {
			count++
		}
	}
	return count, nil
}

func (m *memStore) UpdateRequestStatus(id int, fromStatus string, updates map[string]interface{}) (bool, error) {
	request, ok := m.requests[id]
	if !ok || request.Status != fromStatus {
		return false, nil
	}
	applyRequestUpdates(request, updates)
	return true, nil
}

func (m *memStore) UpdateRequestFields(id int, updates map[string]interface{}) error {
	request, ok := m.requests[id]
	if !ok {
		return notFound("update request", id)
	}
	applyRequestUpdates(request, updates)
	return nil
}

func applyRequestUpdates(request *models.UpdateRequest, updates map[string]interface{}) {
	for column, value := range updates {
		switch column {
		case "status":
			request.Status = value.(string)
		case "review_level":
			request.ReviewLevel = value.(int)
		case "current_reviewer_id":
			if value == nil {
				request.CurrentReviewerID = nil
			} else {
				reviewerID := value.(int)
				request.CurrentReviewerID = &reviewerID
			}
		case "new_version_id":
			versionID := value.(int)
			request.NewVersionID = &versionID
		case "decided_by":
			decidedBy := value.(int)
			request.DecidedBy = &decidedBy
		case "decision_comments":
			request.DecisionComments, _ = value.(*string)
		case "decided_at":
			at := value.(time.Time)
			request.DecidedAt = &at
		case "revision_deadline":
			if value == nil {
				request.RevisionDeadline = nil
			} else {
				deadline := value.(time.Time)
				request.RevisionDeadline = &deadline
			}
		case "submitted_at":
			at := value.(time.Time)
			request.SubmittedAt = &at
		case "similarity_score":
			score := value.(float64)
			request.SimilarityScore = &score
		case "change_summary":
			summary := value.(string)
			request.ChangeSummary = &summary
		case "update_at":
			at := value.(time.Time)
			request.UpdateAt = &at
		}
	}
}

func (m *memStore) CreateTemplate(t *models.RubricTemplate) error {
	t.TemplateID = m.id()
	for i := range t.Criteria {
		t.Criteria[i].CriterionID = m.id()
		t.Criteria[i].TemplateID = t.TemplateID
	}
	copied := *t
	copied.Criteria = append([]models.RubricCriterion(nil), t.Criteria...)
	m.templates[t.TemplateID] = &copied
	return nil
}

func (m *memStore) GetTemplate(id int) (*models.RubricTemplate, error) {
	template, ok := m.templates[id]
	if !ok {
		return nil, notFound("rubric template", id)
	}
	copied := *template
	copied.Criteria = append([]models.RubricCriterion(nil), template.Criteria...)
	return &copied, nil
}

func (m *memStore) DefaultTemplate() (*models.RubricTemplate, error) {
	for id, template := range m.templates {
		if template.IsDefault && template.IsActive {
			return m.GetTemplate(id)
		}
	}
	return nil, notFound("default rubric template", 0)
}

func (m *memStore) ListTemplates(activeOnly bool) ([]models.RubricTemplate, error) {
	var out []models.RubricTemplate
	for id, template := range m.templates {
		if activeOnly && !template.IsActive {
			continue
		}
		copied, _ := m.GetTemplate(id)
		out = append(out, *copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TemplateID < out[j].TemplateID })
	return out, nil
}

func (m *memStore) CreateSchedule(s *models.ReviewSchedule) error {
	s.ScheduleID = m.id()
	copied := *s
	m.schedules[s.ScheduleID] = &copied
	return nil
}

func (m *memStore) GetSchedule(id int) (*models.ReviewSchedule, error) {
	schedule, ok := m.schedules[id]
	if !ok {
		return nil, notFound("review schedule", id)
	}
	copied := *schedule
	return &copied, nil
}

func (m *memStore) ListSchedules() ([]models.ReviewSchedule, error) {
	var out []models.ReviewSchedule
	for _, schedule := range m.schedules {
		out = append(out, *schedule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduleID < out[j].ScheduleID })
	return out, nil
}

func (m *memStore) ActiveSchedule() (*models.ReviewSchedule, error) {
	for id, schedule := range m.schedules {
		if schedule.IsActive {
			return m.GetSchedule(id)
		}
	}
	return nil, notFound("active review schedule", 0)
}

func (m *memStore) ActivateSchedule(id int) error {
	if _, ok := m.schedules[id]; !ok {
		return notFound("review schedule", id)
	}
	for _, schedule := range m.schedules {
		schedule.IsActive = schedule.ScheduleID == id
	}
	return nil
}

func (m *memStore) CreateAssignment(a *models.ReviewerAssignment) error {
	a.AssignmentID = m.id()
	m.assignments = append(m.assignments, *a)
	return nil
}

func (m *memStore) AssignmentsForSchedule(scheduleID, level int) ([]models.ReviewerAssignment, error) {
	var out []models.ReviewerAssignment
	for _, assignment := range m.assignments {
		if assignment.ScheduleID == scheduleID && assignment.ReviewLevel == level {
			out = append(out, assignment)
		}
	}
	return out, nil
}

func (m *memStore) AssignmentsForReviewer(reviewerID int) ([]models.ReviewerAssignment, error) {
	var out []models.ReviewerAssignment
	for _, assignment := range m.assignments {
		schedule, ok := m.schedules[assignment.ScheduleID]
		if !ok || !schedule.IsActive {
			continue
		}
		if assignment.ReviewerID == reviewerID {
			out = append(out, assignment)
		}
	}
	return out, nil
}

func (m *memStore) AppendLedger(e *models.ApprovalLedgerEntry) error {
	e.EntryID = m.id()
	m.ledger = append(m.ledger, *e)
	return nil
}

func (m *memStore) LedgerHistory(subjectType string, subjectID int) ([]models.ApprovalLedgerEntry, error) {
	var out []models.ApprovalLedgerEntry
	for _, entry := range m.ledger {
		if entry.SubjectType == subjectType && entry.SubjectID == subjectID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (m *memStore) UpsertEvaluationResult(r *models.EvaluationResult) error {
	for i := range m.results {
		existing := &m.results[i]
		if existing.RequestID == r.RequestID &&
			existing.CriterionID == r.CriterionID &&
			existing.EvaluatorID == r.EvaluatorID {
			existing.Score = r.Score
			existing.Comment = r.Comment
			existing.EvaluatedAt = r.EvaluatedAt
			r.ResultID = existing.ResultID
			return nil
		}
	}
	r.ResultID = m.id()
	m.results = append(m.results, *r)
	return nil
}

func (m *memStore) ResultsForRequest(requestID int) ([]models.EvaluationResult, error) {
	var out []models.EvaluationResult
	for _, result := range m.results {
		if result.RequestID == requestID {
			out = append(out, result)
		}
	}
	return out, nil
}

func (m *memStore) CreatePeerEvaluation(e *models.PeerEvaluation) error {
	e.PeerEvaluationID = m.id()
	for i := range e.Scores {
		e.Scores[i].ScoreID = m.id()
		e.Scores[i].PeerEvaluationID = e.PeerEvaluationID
	}
	copied := *e
	copied.Scores = append([]models.PeerEvaluationScore(nil), e.Scores...)
	m.peerEvals = append(m.peerEvals, copied)
	return nil
}

func (m *memStore) PeerEvaluationsForSyllabus(syllabusID int) ([]models.PeerEvaluation, error) {
	var out []models.PeerEvaluation
	for _, evaluation := range m.peerEvals {
		if evaluation.SyllabusID == syllabusID {
			out = append(out, evaluation)
		}
	}
	return out, nil
}

func (m *memStore) CreateNotification(n *models.Notification) error {
	m.notifications = append(m.notifications, *n)
	return nil
}

// --- shared fixtures ---

func seedUser(m *memStore, id, roleID, departmentID int) {
	m.users[id] = &models.User{
		UserID:       id,
		Email:        fmt.Sprintf("user%d@example.edu", id),
		RoleID:       roleID,
		DepartmentID: departmentID,
	}
}

func seedCourse(m *memStore, id, departmentID int) {
	m.courses[id] = &models.Course{
		CourseID:     id,
		CourseCode:   "CS101",
		CourseName:   "Introduction to Computing",
		Credits:      3,
		DepartmentID: departmentID,
	}
}

func validContent() string {
	return `{
		"title": "Introduction to Computing",
		"description": "Fundamentals of computing.",
		"learning_outcomes": ["Explain computation", "Write simple programs", "Analyze algorithms"],
		"assessments": [{"name": "Midterm", "weight": 40}, {"name": "Final", "weight": 60}]
	}`
}
