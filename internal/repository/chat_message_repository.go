package repository

import (
	"fmt"

	"gorm.io/gorm"

	"scholarchat/internal/model"
)

type ChatMessageRepository struct {
	db *gorm.DB
}

func NewChatMessageRepository(db *gorm.DB) *ChatMessageRepository {
	return &ChatMessageRepository{db: db}
}

func (r *ChatMessageRepository) Create(message *model.ChatMessage) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

// CreateWithDebit appends a user message and debits its cost from the user's
// balance in one transaction: either both happen or neither. Fails with
// ErrInsufficientPoints, leaving no message behind, when the balance is below
// cost. Returns the balance after the debit.
func (r *ChatMessageRepository) CreateWithDebit(message *model.ChatMessage, userID uint, cost float64) (float64, error) {
	var balance float64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).
			Where("id = ? AND hasher_points >= ?", userID, cost).
			UpdateColumn("hasher_points", gorm.Expr("hasher_points - ?", cost))
		if res.Error != nil {
			return fmt.Errorf("debit points failed: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientPoints
		}
		if err := tx.Create(message).Error; err != nil {
			return fmt.Errorf("create message failed: %w", err)
		}
		var user model.User
		if err := tx.Select("hasher_points").First(&user, userID).Error; err != nil {
			return fmt.Errorf("read balance failed: %w", err)
		}
		balance = user.HasherPoints
		return nil
	})
	return balance, err
}

func (r *ChatMessageRepository) ListBySessionID(sessionID uint) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	if err := r.db.Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}

func (r *ChatMessageRepository) CountBySessionID(sessionID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.ChatMessage{}).Where("session_id = ?", sessionID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count messages failed: %w", err)
	}
	return count, nil
}

// SumCostBySessionID totals the cost column over a session, i.e. every point
// ever debited for it.
func (r *ChatMessageRepository) SumCostBySessionID(sessionID uint) (float64, error) {
	var total float64
	if err := r.db.Model(&model.ChatMessage{}).
		Where("session_id = ?", sessionID).
		Select("COALESCE(SUM(cost), 0)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("sum message cost failed: %w", err)
	}
	return total, nil
}
