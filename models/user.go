package models

import (
	"time"
)

// Role IDs form a closed enum; workflow capability checks compare against
// these constants instead of role name strings.
const (
	RoleLecturer        = 1
	RoleDeptHead        = 2
	RoleAcademicAffairs = 3
	RoleAdmin           = 4
)

type User struct {
	UserID       int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserFname    string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname    string     `gorm:"column:user_lname" json:"user_lname"`
	Email        string     `gorm:"column:email;unique" json:"email"`
	RoleID       int        `gorm:"column:role_id" json:"role_id"`
	DepartmentID int        `gorm:"column:department_id" json:"department_id"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Role       Role       `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Department Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

type Role struct {
	RoleID   int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	Role     string     `gorm:"column:role" json:"role"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

type Department struct {
	DepartmentID   int        `gorm:"primaryKey;column:department_id" json:"department_id"`
	DepartmentName string     `gorm:"column:department_name" json:"department_name"`
	FacultyName    string     `gorm:"column:faculty_name" json:"faculty_name"`
	CreateAt       *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt       *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt       *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}

func (Department) TableName() string {
	return "departments"
}
