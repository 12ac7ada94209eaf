package models

import "time"

// Category types restrict where a category may be attached.
const (
	CategoryTypePodcast = "podcast"
	CategoryTypeArticle = "article"
	CategoryTypeBoth    = "both"
)

// Category groups podcasts and articles.
type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `json:"name" gorm:"uniqueIndex;not null" binding:"required"`
	Slug        string `json:"slug" gorm:"index"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type" gorm:"default:'both'"`
}

func (Category) TableName() string {
	return "categories"
}
