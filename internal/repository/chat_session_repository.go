package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"scholarchat/internal/model"
)

type ChatSessionRepository struct {
	db *gorm.DB
}

func NewChatSessionRepository(db *gorm.DB) *ChatSessionRepository {
	return &ChatSessionRepository{db: db}
}

// GetOrCreateActive returns the active session for (user, paper), refreshing
// its last interaction time, or creates one carrying sessionToken. The lookup
// and insert run under a locking transaction so concurrent first questions on
// the same pair yield a single active session.
func (r *ChatSessionRepository) GetOrCreateActive(userID, paperID uint, sessionToken string) (*model.ChatSession, error) {
	var session model.ChatSession
	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND paper_id = ? AND is_active = ?", userID, paperID, true).
			First(&session).Error
		if err == nil {
			session.LastInteractionAt = time.Now()
			return tx.Model(&session).UpdateColumn("last_interaction_at", session.LastInteractionAt).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("query active session failed: %w", err)
		}

		now := time.Now()
		session = model.ChatSession{
			SessionID:         sessionToken,
			UserID:            userID,
			PaperID:           paperID,
			IsActive:          true,
			ChunksProcessed:   false,
			CreatedAt:         now,
			LastInteractionAt: now,
		}
		if err := tx.Create(&session).Error; err != nil {
			return fmt.Errorf("create session failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ChatSessionRepository) GetBySessionID(sessionToken string) (*model.ChatSession, error) {
	var session model.ChatSession
	if err := r.db.Where("session_id = ?", sessionToken).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query session failed: %w", err)
	}
	return &session, nil
}

func (r *ChatSessionRepository) ListByUserID(userID uint) ([]model.ChatSession, error) {
	var sessions []model.ChatSession
	if err := r.db.Where("user_id = ?", userID).
		Order("last_interaction_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions failed: %w", err)
	}
	return sessions, nil
}

// Deactivate retires the session. Already-inactive sessions are left as-is;
// sessions are never deleted.
func (r *ChatSessionRepository) Deactivate(sessionToken string) error {
	if err := r.db.Model(&model.ChatSession{}).
		Where("session_id = ?", sessionToken).
		UpdateColumn("is_active", false).Error; err != nil {
		return fmt.Errorf("deactivate session failed: %w", err)
	}
	return nil
}

func (r *ChatSessionRepository) MarkChunksProcessed(id uint) error {
	if err := r.db.Model(&model.ChatSession{}).
		Where("id = ?", id).
		UpdateColumn("chunks_processed", true).Error; err != nil {
		return fmt.Errorf("mark chunks processed failed: %w", err)
	}
	return nil
}
