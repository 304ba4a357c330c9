package domain

import "time"

// Comment is an append-only remark on a translation.
type Comment struct {
	ID            string    `gorm:"type:text;primaryKey" json:"id"`
	TranslationID string    `gorm:"type:text;not null;index:idx_comments_translation" json:"translation_id"`
	UserID        *string   `gorm:"type:text" json:"user_id"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for Comment.
func (Comment) TableName() string {
	return "comments"
}
