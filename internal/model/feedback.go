package model

import "time"

type Feedback struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PaperID    uint      `gorm:"not null;index" json:"paper_id"`
	ReviewerID uint      `gorm:"not null;index" json:"reviewer_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Rating     int       `json:"rating"` // 1-5, 0 when not rated
	CreatedAt  time.Time `json:"created_at"`
}
