package services

import (
	"errors"
	"time"

	"syllabus-review-api/models"

	"gorm.io/gorm"
)

// gormStore implements Store over a *gorm.DB, which may be a root handle or
// an open transaction.
type gormStore struct {
	db *gorm.DB
}

// NewStore wraps a GORM handle in the Store interface.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) InTransaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) GetUser(id int) (*models.User, error) {
	var user models.User
	if err := s.db.Where("user_id = ? AND delete_at IS NULL", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user", id)
		}
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) GetCourse(id int) (*models.Course, error) {
	var course models.Course
	if err := s.db.Where("course_id = ? AND delete_at IS NULL", id).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("course", id)
		}
		return nil, err
	}
	return &course, nil
}

func (s *gormStore) CreateSyllabus(syllabus *models.Syllabus) error {
	return s.db.Create(syllabus).Error
}

func (s *gormStore) GetSyllabus(id int) (*models.Syllabus, error) {
	var syllabus models.Syllabus
	err := s.db.Preload("Course").Preload("Author").
		Where("syllabus_id = ? AND delete_at IS NULL", id).
		First(&syllabus).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("syllabus", id)
		}
		return nil, err
	}
	return &syllabus, nil
}

func (s *gormStore) ListSyllabi(f SyllabusFilter) ([]models.Syllabus, error) {
	query := s.db.Preload("Course").Preload("Author").Where("delete_at IS NULL")
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.CourseID != 0 {
		query = query.Where("course_id = ?", f.CourseID)
	}
	if f.DepartmentID != 0 {
		query = query.Where("department_id = ?", f.DepartmentID)
	}
	if f.CreatedBy != 0 {
		query = query.Where("created_by = ?", f.CreatedBy)
	}

	var syllabi []models.Syllabus
	if err := query.Order("update_at DESC").Find(&syllabi).Error; err != nil {
		return nil, err
	}
	return syllabi, nil
}

func (s *gormStore) UpdateSyllabusStatus(id int, fromStatus string, updates map[string]interface{}) (bool, error) {
	result := s.db.Model(&models.Syllabus{}).
		Where("syllabus_id = ? AND status = ? AND delete_at IS NULL", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *gormStore) CreateVersion(v *models.SyllabusVersion) error {
	return s.db.Create(v).Error
}

func (s *gormStore) GetVersion(id int) (*models.SyllabusVersion, error) {
	var version models.SyllabusVersion
	if err := s.db.Where("version_id = ?", id).First(&version).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("syllabus version", id)
		}
		return nil, err
	}
	return &version, nil
}

func (s *gormStore) UpdateVersionContent(versionID int, content string) error {
	return s.db.Model(&models.SyllabusVersion{}).
		Where("version_id = ?", versionID).
		Updates(map[string]interface{}{
			"content":   content,
			"update_at": time.Now(),
		}).Error
}

func (s *gormStore) NextVersionNo(syllabusID int) (int, error) {
	var max *int
	err := s.db.Model(&models.SyllabusVersion{}).
		Where("syllabus_id = ?", syllabusID).
		Select("MAX(version_no)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}

func (s *gormStore) CreateUpdateRequest(r *models.UpdateRequest) error {
	return s.db.Create(r).Error
}

func (s *gormStore) GetUpdateRequest(id int) (*models.UpdateRequest, error) {
	var request models.UpdateRequest
	err := s.db.Preload("Syllabus").Preload("Syllabus.Course").Preload("Requester").
		Where("request_id = ? AND delete_at IS NULL", id).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("update request", id)
		}
		return nil, err
	}
	return &request, nil
}

func (s *gormStore) ListUpdateRequests(f RequestFilter) ([]models.UpdateRequest, error) {
	query := s.db.Preload("Syllabus").Preload("Syllabus.Course").Preload("Requester").
		Where("delete_at IS NULL")
	if len(f.Statuses) > 0 {
		query = query.Where("status IN ?", f.Statuses)
	}
	if f.SyllabusID != 0 {
		query = query.Where("syllabus_id = ?", f.SyllabusID)
	}
	if f.RequestedBy != 0 {
		query = query.Where("requested_by = ?", f.RequestedBy)
	}
	if f.ReviewLevel != 0 {
		query = query.Where("review_level = ?", f.ReviewLevel)
	}

	var requests []models.UpdateRequest
	if err := query.Order("update_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *gormStore) CountActiveRequests(syllabusID int) (int64, error) {
	var count int64
	err := s.db.Model(&models.UpdateRequest{}).
		Where("syllabus_id = ? AND status IN ? AND delete_at IS NULL",
			syllabusID, []string{models.RequestPending, models.RequestUnderReview}).
		Count(&count).Error
	return count, err
}

func (s *gormStore) UpdateRequestStatus(id int, fromStatus string, updates map[string]interface{}) (bool, error) {
	result := s.db.Model(&models.UpdateRequest{}).
		Where("request_id = ? AND status = ? AND delete_at IS NULL", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *gormStore) UpdateRequestFields(id int, updates map[string]interface{}) error {
	return s.db.Model(&models.UpdateRequest{}).
		Where("request_id = ? AND delete_at IS NULL", id).
		Updates(updates).Error
}

func (s *gormStore) CreateTemplate(t *models.RubricTemplate) error {
	return s.db.Create(t).Error
}

func (s *gormStore) GetTemplate(id int) (*models.RubricTemplate, error) {
	var template models.RubricTemplate
	err := s.db.Preload("Criteria", func(db *gorm.DB) *gorm.DB {
		return db.Where("delete_at IS NULL").Order("display_order ASC")
	}).
		Where("template_id = ? AND delete_at IS NULL", id).
		First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("rubric template", id)
		}
		return nil, err
	}
	return &template, nil
}

func (s *gormStore) DefaultTemplate() (*models.RubricTemplate, error) {
	var template models.RubricTemplate
	err := s.db.Preload("Criteria", func(db *gorm.DB) *gorm.DB {
		return db.Where("delete_at IS NULL").Order("display_order ASC")
	}).
		Where("is_default = ? AND is_active = ? AND delete_at IS NULL", true, true).
		First(&template).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("default rubric template", 0)
		}
		return nil, err
	}
	return &template, nil
}

func (s *gormStore) ListTemplates(activeOnly bool) ([]models.RubricTemplate, error) {
	query := s.db.Preload("Criteria", func(db *gorm.DB) *gorm.DB {
		return db.Where("delete_at IS NULL").Order("display_order ASC")
	}).Where("delete_at IS NULL")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var templates []models.RubricTemplate
	if err := query.Order("template_id ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (s *gormStore) CreateSchedule(schedule *models.ReviewSchedule) error {
	return s.db.Create(schedule).Error
}

func (s *gormStore) GetSchedule(id int) (*models.ReviewSchedule, error) {
	var schedule models.ReviewSchedule
	err := s.db.Preload("Term").
		Where("schedule_id = ? AND delete_at IS NULL", id).
		First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("review schedule", id)
		}
		return nil, err
	}
	return &schedule, nil
}

func (s *gormStore) ListSchedules() ([]models.ReviewSchedule, error) {
	var schedules []models.ReviewSchedule
	err := s.db.Preload("Term").Where("delete_at IS NULL").
		Order("review_start DESC").Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

func (s *gormStore) ActiveSchedule() (*models.ReviewSchedule, error) {
	var schedule models.ReviewSchedule
	err := s.db.Preload("Term").
		Where("is_active = ? AND delete_at IS NULL", true).
		Order("review_start DESC").
		First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("active review schedule", 0)
		}
		return nil, err
	}
	return &schedule, nil
}

func (s *gormStore) ActivateSchedule(id int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ReviewSchedule{}).
			Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		result := tx.Model(&models.ReviewSchedule{}).
			Where("schedule_id = ? AND delete_at IS NULL", id).
			Update("is_active", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFound("review schedule", id)
		}
		return nil
	})
}

func (s *gormStore) CreateAssignment(a *models.ReviewerAssignment) error {
	return s.db.Create(a).Error
}

func (s *gormStore) AssignmentsForSchedule(scheduleID, level int) ([]models.ReviewerAssignment, error) {
	var assignments []models.ReviewerAssignment
	err := s.db.Preload("Reviewer").
		Where("schedule_id = ? AND review_level = ? AND delete_at IS NULL", scheduleID, level).
		Order("assignment_id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (s *gormStore) AssignmentsForReviewer(reviewerID int) ([]models.ReviewerAssignment, error) {
	var assignments []models.ReviewerAssignment
	err := s.db.
		Joins("JOIN review_schedules ON review_schedules.schedule_id = reviewer_assignments.schedule_id").
		Where("reviewer_assignments.reviewer_id = ? AND reviewer_assignments.delete_at IS NULL", reviewerID).
		Where("review_schedules.is_active = ? AND review_schedules.delete_at IS NULL", true).
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (s *gormStore) AppendLedger(e *models.ApprovalLedgerEntry) error {
	return s.db.Create(e).Error
}

func (s *gormStore) LedgerHistory(subjectType string, subjectID int) ([]models.ApprovalLedgerEntry, error) {
	var entries []models.ApprovalLedgerEntry
	err := s.db.Preload("Actor").
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		Order("recorded_at ASC, entry_id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *gormStore) UpsertEvaluationResult(r *models.EvaluationResult) error {
	var existing models.EvaluationResult
	err := s.db.Where("request_id = ? AND criterion_id = ? AND evaluator_id = ?",
		r.RequestID, r.CriterionID, r.EvaluatorID).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.db.Create(r).Error
		}
		return err
	}
	// Last write wins by timestamp.
	if r.EvaluatedAt.Before(existing.EvaluatedAt) {
		return nil
	}
	r.ResultID = existing.ResultID
	return s.db.Model(&existing).Updates(map[string]interface{}{
		"score":        r.Score,
		"comment":      r.Comment,
		"evaluated_at": r.EvaluatedAt,
	}).Error
}

func (s *gormStore) ResultsForRequest(requestID int) ([]models.EvaluationResult, error) {
	var results []models.EvaluationResult
	err := s.db.Preload("Criterion").Preload("Evaluator").
		Where("request_id = ?", requestID).
		Order("result_id ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *gormStore) CreatePeerEvaluation(e *models.PeerEvaluation) error {
	return s.db.Create(e).Error
}

func (s *gormStore) PeerEvaluationsForSyllabus(syllabusID int) ([]models.PeerEvaluation, error) {
	var evaluations []models.PeerEvaluation
	err := s.db.Preload("Evaluator").Preload("Scores").
		Where("syllabus_id = ?", syllabusID).
		Order("evaluated_at DESC").
		Find(&evaluations).Error
	if err != nil {
		return nil, err
	}
	return evaluations, nil
}

func (s *gormStore) CreateNotification(n *models.Notification) error {
	return s.db.Create(n).Error
}
