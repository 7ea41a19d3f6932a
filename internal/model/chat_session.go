package model

import "time"

// ChatSession binds one user to one paper across multiple questions.
// SessionID is the externally visible token; the numeric primary key never
// leaves the API surface.
type ChatSession struct {
	ID                uint      `gorm:"primaryKey" json:"-"`
	SessionID         string    `gorm:"size:64;not null;uniqueIndex" json:"session_id"`
	UserID            uint      `gorm:"not null;index:idx_session_user_paper" json:"user_id"`
	PaperID           uint      `gorm:"not null;index:idx_session_user_paper" json:"paper_id"`
	IsActive          bool      `gorm:"not null;default:true" json:"is_active"`
	ChunksProcessed   bool      `gorm:"not null;default:false" json:"chunks_processed"`
	CreatedAt         time.Time `json:"created_at"`
	LastInteractionAt time.Time `json:"last_interaction_at"`
}
