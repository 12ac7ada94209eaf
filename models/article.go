package models

import (
	"time"

	"gorm.io/datatypes"
)

// Content lifecycle states. Published is reached from draft either by the
// scheduled publisher or by an explicit status update; archived content is
// never touched by the publisher.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s string) bool {
	return s == StatusDraft || s == StatusPublished || s == StatusArchived
}

// Article is a publishable written piece.
type Article struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title   string `json:"title" gorm:"not null" binding:"required"`
	Content string `json:"content" gorm:"type:text"`

	// Editorial date shown to readers, distinct from created_at.
	Date time.Time `json:"date"`

	Tags      datatypes.JSON `json:"tags,omitempty" gorm:"type:jsonb"`
	Thumbnail string         `json:"thumbnail,omitempty"`
	Author    string         `json:"author,omitempty" gorm:"index"`
	Category  string         `json:"category,omitempty" gorm:"index"`

	Status string `json:"status" gorm:"index;default:'draft'"`

	// ScheduledDate defaults to creation time; the publisher promotes the
	// article once it has passed. PublishDate is set only on that transition.
	ScheduledDate time.Time  `json:"scheduled_date"`
	PublishDate   *time.Time `json:"publish_date,omitempty"`

	// Pointer so absent slugs stay NULL and the unique index only applies to
	// articles that actually have one.
	Slug *string `json:"slug,omitempty" gorm:"uniqueIndex"`
}

func (Article) TableName() string {
	return "articles"
}
