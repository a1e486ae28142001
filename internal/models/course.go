package models

import (
	"time"

	"gorm.io/gorm"
)

// Minimum skill levels accepted on a course.
const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
)

// ValidSkill reports whether s is one of the accepted skill levels.
func ValidSkill(s string) bool {
	switch s {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	}
	return false
}

// Course represents a course offered by a bootcamp.
type Course struct {
	ID                    uint    `gorm:"primaryKey" json:"id"`
	Title                 string  `gorm:"not null" json:"title"`
	Description           string  `gorm:"type:text;not null" json:"description"`
	Weeks                 string  `gorm:"not null" json:"weeks"`
	Tuition               float64 `gorm:"not null" json:"tuition"`
	MinimumSkill          string  `gorm:"type:varchar(16);not null" json:"minimum_skill"`
	ScholarshipsAvailable bool    `gorm:"default:false" json:"scholarships_available"`

	BootcampID uint      `gorm:"not null;index" json:"bootcamp_id"`
	Bootcamp   *Bootcamp `gorm:"foreignKey:BootcampID" json:"bootcamp,omitempty"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
