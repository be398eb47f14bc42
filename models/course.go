package models

import "time"

// Course and Term are reference data owned by the academic records system.
// They are mapped here read-only for foreign keys and display.
type Course struct {
	CourseID     int        `gorm:"primaryKey;column:course_id" json:"course_id"`
	CourseCode   string     `gorm:"column:course_code" json:"course_code"`
	CourseName   string     `gorm:"column:course_name" json:"course_name"`
	Credits      int        `gorm:"column:credits" json:"credits"`
	DepartmentID int        `gorm:"column:department_id" json:"department_id"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Department Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

type Term struct {
	TermID       int        `gorm:"primaryKey;column:term_id" json:"term_id"`
	TermName     string     `gorm:"column:term_name" json:"term_name"`
	AcademicYear string     `gorm:"column:academic_year" json:"academic_year"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

func (Term) TableName() string {
	return "terms"
}
