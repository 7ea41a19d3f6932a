package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"scholarchat/internal/model"
)

type PaperRepository struct {
	db *gorm.DB
}

func NewPaperRepository(db *gorm.DB) *PaperRepository {
	return &PaperRepository{db: db}
}

func (r *PaperRepository) Create(paper *model.Paper) error {
	if err := r.db.Create(paper).Error; err != nil {
		return fmt.Errorf("create paper failed: %w", err)
	}
	return nil
}

func (r *PaperRepository) GetByID(id uint) (*model.Paper, error) {
	var paper model.Paper
	if err := r.db.First(&paper, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query paper failed: %w", err)
	}
	return &paper, nil
}

// List returns one page of papers, newest first, plus the total count.
func (r *PaperRepository) List(page, perPage int) ([]model.Paper, int64, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}

	var total int64
	if err := r.db.Model(&model.Paper{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count papers failed: %w", err)
	}

	var papers []model.Paper
	if err := r.db.Order("upload_date DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&papers).Error; err != nil {
		return nil, 0, fmt.Errorf("list papers failed: %w", err)
	}
	return papers, total, nil
}

func (r *PaperRepository) IncrementDownloadCount(id uint) error {
	if err := r.db.Model(&model.Paper{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error; err != nil {
		return fmt.Errorf("increment download count failed: %w", err)
	}
	return nil
}
