package services

import "syllabus-review-api/models"

// Principal is the resolved actor passed into every operation: identity and
// scope only, never credentials.
type Principal struct {
	UserID       int
	RoleID       int
	DepartmentID int
}

func (p Principal) IsAdmin() bool {
	return p.RoleID == models.RoleAdmin
}

// CanReviewSyllabi reports whether the role may move a syllabus out of
// pending review at all; assignment membership is checked separately.
func (p Principal) CanReviewSyllabi() bool {
	switch p.RoleID {
	case models.RoleDeptHead, models.RoleAcademicAffairs, models.RoleAdmin:
		return true
	}
	return false
}

// roleForLevel maps a review level to the role allowed to decide at it.
func roleForLevel(level int) int {
	if level == models.ReviewLevelInstitution {
		return models.RoleAcademicAffairs
	}
	return models.RoleDeptHead
}

// assignmentMatches reports whether one directory assignment authorizes the
// principal for the given level and department.
func assignmentMatches(a models.ReviewerAssignment, reviewerID, level, departmentID int) bool {
	if a.ReviewerID != reviewerID || a.ReviewLevel != level {
		return false
	}
	return a.DepartmentID == nil || *a.DepartmentID == departmentID
}
