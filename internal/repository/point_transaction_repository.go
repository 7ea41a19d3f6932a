package repository

import (
	"fmt"

	"gorm.io/gorm"

	"scholarchat/internal/model"
)

type PointTransactionRepository struct {
	db *gorm.DB
}

func NewPointTransactionRepository(db *gorm.DB) *PointTransactionRepository {
	return &PointTransactionRepository{db: db}
}

func (r *PointTransactionRepository) Create(txRecord *model.PointTransaction) error {
	if err := r.db.Create(txRecord).Error; err != nil {
		return fmt.Errorf("create point transaction failed: %w", err)
	}
	return nil
}

func (r *PointTransactionRepository) ListByUserID(userID uint, limit int) ([]model.PointTransaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	var records []model.PointTransaction
	if err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list point transactions failed: %w", err)
	}
	return records, nil
}
