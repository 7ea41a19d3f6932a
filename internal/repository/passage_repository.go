package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"scholarchat/internal/model"
)

type PassageRepository struct {
	db *gorm.DB
}

func NewPassageRepository(db *gorm.DB) *PassageRepository {
	return &PassageRepository{db: db}
}

func (r *PassageRepository) ExistsByPaperID(paperID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&model.Passage{}).Where("paper_id = ?", paperID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count passages failed: %w", err)
	}
	return count > 0, nil
}

// CreateBatchIfAbsent persists all passages for a paper as one transaction.
// The paper row is locked for the duration so two requests processing the
// same paper for the first time cannot both insert a batch; the loser
// observes the winner's rows and inserts nothing. Returns true when this
// call inserted the batch.
func (r *PassageRepository) CreateBatchIfAbsent(paperID uint, passages []model.Passage) (bool, error) {
	if len(passages) == 0 {
		return false, nil
	}
	inserted := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var paper model.Paper
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&paper, paperID).Error; err != nil {
			return fmt.Errorf("lock paper row failed: %w", err)
		}
		var count int64
		if err := tx.Model(&model.Passage{}).Where("paper_id = ?", paperID).Count(&count).Error; err != nil {
			return fmt.Errorf("count passages failed: %w", err)
		}
		if count > 0 {
			return nil
		}
		if err := tx.Create(&passages).Error; err != nil {
			return fmt.Errorf("create passage batch failed: %w", err)
		}
		inserted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

func (r *PassageRepository) ListByPaperID(paperID uint) ([]model.Passage, error) {
	var passages []model.Passage
	if err := r.db.Where("paper_id = ?", paperID).Order("idx ASC").Find(&passages).Error; err != nil {
		return nil, fmt.Errorf("list passages failed: %w", err)
	}
	return passages, nil
}
