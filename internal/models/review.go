package models

import "time"

// Review represents a user's review of a bootcamp. One review per
// (bootcamp, user) pair, enforced by a composite unique index.
// Reviews are hard-deleted: a soft-delete tombstone would keep blocking the
// unique index after the author removed their review.
type Review struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Title  string `gorm:"not null" json:"title"`
	Text   string `gorm:"type:text;not null" json:"text"`
	Rating int    `gorm:"not null" json:"rating"`

	BootcampID uint      `gorm:"not null;index;uniqueIndex:idx_reviews_bootcamp_user" json:"bootcamp_id"`
	Bootcamp   *Bootcamp `gorm:"foreignKey:BootcampID" json:"bootcamp,omitempty"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_reviews_bootcamp_user" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
