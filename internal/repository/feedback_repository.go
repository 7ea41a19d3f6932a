package repository

import (
	"fmt"

	"gorm.io/gorm"

	"scholarchat/internal/model"
)

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// CreateWithAward stores the feedback and credits the reviewer's award in
// one transaction. Returns the reviewer's balance after the credit.
func (r *FeedbackRepository) CreateWithAward(feedback *model.Feedback, award float64) (float64, error) {
	var balance float64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(feedback).Error; err != nil {
			return fmt.Errorf("create feedback failed: %w", err)
		}
		if err := tx.Model(&model.User{}).
			Where("id = ?", feedback.ReviewerID).
			UpdateColumn("hasher_points", gorm.Expr("hasher_points + ?", award)).Error; err != nil {
			return fmt.Errorf("credit feedback award failed: %w", err)
		}
		var user model.User
		if err := tx.Select("hasher_points").First(&user, feedback.ReviewerID).Error; err != nil {
			return fmt.Errorf("read balance failed: %w", err)
		}
		balance = user.HasherPoints
		return nil
	})
	return balance, err
}

func (r *FeedbackRepository) ListByPaperID(paperID uint) ([]model.Feedback, error) {
	var list []model.Feedback
	if err := r.db.Where("paper_id = ?", paperID).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list feedback failed: %w", err)
	}
	return list, nil
}
