package models

import (
	"time"

	"gorm.io/gorm"
)

// Career values accepted on a bootcamp.
const (
	CareerWebDev    = "Web Development"
	CareerMobileDev = "Mobile Development"
	CareerUIUX      = "UI/UX"
	CareerDataSci   = "Data Science"
	CareerBusiness  = "Business"
	CareerOther     = "Other"
)

// ValidCareer reports whether c is one of the accepted career tracks.
func ValidCareer(c string) bool {
	switch c {
	case CareerWebDev, CareerMobileDev, CareerUIUX, CareerDataSci, CareerBusiness, CareerOther:
		return true
	}
	return false
}

// DefaultBootcampPhoto is the placeholder photo name before an upload.
const DefaultBootcampPhoto = "no-photo.jpg"

// GeoJSONPoint is the geometry type recorded on every geocoded location.
const GeoJSONPoint = "Point"

// Location is the geocoded point plus address parts for a bootcamp.
// Embedded with a location_ column prefix; the raw input address is geocoded
// at write time and never persisted.
type Location struct {
	Type             string  `json:"type"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formatted_address"`
	Street           string  `json:"street"`
	City             string  `json:"city"`
	State            string  `json:"state"`
	Zipcode          string  `json:"zipcode"`
	Country          string  `json:"country"`
}

// Bootcamp represents a published bootcamp in the directory.
type Bootcamp struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"unique;not null" json:"name"`
	Slug        string `gorm:"index;not null" json:"slug"`
	Description string `gorm:"type:text;not null" json:"description"`
	Website     string `json:"website"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`

	Location Location `gorm:"embedded;embeddedPrefix:location_" json:"location"`

	// Careers is stored as JSON so the same model works on Postgres and the
	// SQLite test driver.
	Careers []string `gorm:"serializer:json" json:"careers"`

	// Derived aggregates; nil until the bootcamp has courses/reviews.
	AverageCost   *float64 `json:"average_cost,omitempty"`
	AverageRating *float64 `json:"average_rating,omitempty"`

	Photo         string `gorm:"default:no-photo.jpg" json:"photo"`
	Housing       bool   `gorm:"default:false" json:"housing"`
	JobAssistance bool   `gorm:"default:false" json:"job_assistance"`
	JobGuarantee  bool   `gorm:"default:false" json:"job_guarantee"`
	AcceptGI      bool   `gorm:"default:false" json:"accept_gi"`

	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Courses []Course `gorm:"foreignKey:BootcampID" json:"courses,omitempty"`
	Reviews []Review `gorm:"foreignKey:BootcampID" json:"reviews,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
