package model

import (
	"encoding/json"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	SessionID          uint      `gorm:"not null;index" json:"-"`
	Role               string    `gorm:"size:16;not null" json:"role"`
	Content            string    `gorm:"type:text;not null" json:"content"`
	RelevantPassageIDs string    `gorm:"type:text" json:"-"` // JSON array of passage IDs, empty for user messages
	Cost               float64   `gorm:"not null;default:0" json:"cost"`
	CreatedAt          time.Time `json:"timestamp"`
}

func (m *ChatMessage) PassageIDs() []uint {
	if m.RelevantPassageIDs == "" {
		return nil
	}
	var ids []uint
	_ = json.Unmarshal([]byte(m.RelevantPassageIDs), &ids)
	return ids
}

func (m *ChatMessage) SetPassageIDs(ids []uint) {
	if len(ids) == 0 {
		m.RelevantPassageIDs = ""
		return
	}
	b, _ := json.Marshal(ids)
	m.RelevantPassageIDs = string(b)
}
