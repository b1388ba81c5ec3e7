package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleStudent UserRole = "STUDENT"
	RoleSchool  UserRole = "SCHOOL"
	RoleMentor  UserRole = "MENTOR"
	RoleAdmin   UserRole = "ADMIN"
)

// User is the directory record for a platform member. Identity itself is
// owned by Casdoor; this row mirrors the ranking fields shown in the
// student directory.
type User struct {
	ID    string   `json:"id" gorm:"primaryKey;size:255"`
	Name  string   `json:"name" gorm:"not null;size:100"`
	Email string   `json:"email" gorm:"uniqueIndex;size:255"`
	Role  UserRole `json:"role" gorm:"-"`

	// Ranking info
	XP         int    `json:"xp" gorm:"default:0"`
	Level      int    `json:"level" gorm:"default:1"`
	StudyLevel string `json:"study_level" gorm:"size:100"`
	GrowthRate int    `json:"growth_rate" gorm:"default:0"`

	// Profile info
	Avatar  string  `json:"avatar" gorm:"size:500"`
	Tagline *string `json:"tagline" gorm:"size:255"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "profiles"
}
