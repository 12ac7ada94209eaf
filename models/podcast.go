package models

import (
	"time"

	"gorm.io/datatypes"
)

// Podcast is a publishable episode with media stored in S3.
type Podcast struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string `json:"title" gorm:"not null" binding:"required"`
	Description string `json:"description,omitempty" gorm:"type:text"`

	AudioURL string `json:"audio_url,omitempty"`
	VideoURL string `json:"video_url,omitempty"`

	// External platform links.
	Youtube    string `json:"youtube,omitempty"`
	Spotify    string `json:"spotify,omitempty"`
	Anghami    string `json:"anghami,omitempty"`
	AppleMusic string `json:"apple_music,omitempty"`

	Tags         datatypes.JSON `json:"tags,omitempty" gorm:"type:jsonb"`
	ThumbnailURL string         `json:"thumbnail_url,omitempty"`

	// Category deletes do not cascade; a dangling CategoryID is tolerated and
	// simply renders without a category.
	CategoryID *uint     `json:"category_id,omitempty" gorm:"index"`
	Category   *Category `json:"category,omitempty" gorm:"constraint:OnDelete:SET NULL"`

	Status        string     `json:"status" gorm:"index;default:'draft'"`
	ScheduledDate time.Time  `json:"scheduled_date"`
	PublishDate   *time.Time `json:"publish_date,omitempty"`

	Slug *string `json:"slug,omitempty" gorm:"uniqueIndex"`
}

func (Podcast) TableName() string {
	return "podcasts"
}
