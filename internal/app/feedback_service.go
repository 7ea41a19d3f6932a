package app

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"scholarchat/internal/model"
)

// FeedbackStore persists paper feedback; the award is applied in the same
// transaction as the insert.
type FeedbackStore interface {
	CreateWithAward(feedback *model.Feedback, award float64) (float64, error)
	ListByPaperID(paperID uint) ([]model.Feedback, error)
}

type FeedbackService struct {
	feedback FeedbackStore
	papers   PaperStore
	ledger   LedgerPublisher
	award    float64
	logger   *zap.Logger
}

type CreateFeedbackInput struct {
	PaperID    uint
	ReviewerID uint
	Content    string
	Rating     int
}

func NewFeedbackService(
	feedback FeedbackStore,
	papers PaperStore,
	ledger LedgerPublisher,
	award float64,
	logger *zap.Logger,
) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{
		feedback: feedback,
		papers:   papers,
		ledger:   ledger,
		award:    award,
		logger:   logger,
	}
}

// Create records feedback on a paper and credits the reviewer the feedback
// award in the same transaction.
func (s *FeedbackService) Create(ctx context.Context, input CreateFeedbackInput) (*model.Feedback, float64, error) {
	content := strings.TrimSpace(input.Content)
	if input.PaperID == 0 || input.ReviewerID == 0 || content == "" {
		return nil, 0, ErrInvalidInput
	}
	if input.Rating < 0 || input.Rating > 5 {
		return nil, 0, ErrInvalidInput
	}

	paper, err := s.papers.GetByID(input.PaperID)
	if err != nil {
		return nil, 0, err
	}
	if paper == nil {
		return nil, 0, ErrPaperNotFound
	}

	feedback := &model.Feedback{
		PaperID:    input.PaperID,
		ReviewerID: input.ReviewerID,
		Content:    content,
		Rating:     input.Rating,
		CreatedAt:  time.Now(),
	}
	balance, err := s.feedback.CreateWithAward(feedback, s.award)
	if err != nil {
		return nil, 0, err
	}

	if s.ledger != nil && s.award > 0 {
		entry := model.PointTransaction{
			UserID:        input.ReviewerID,
			Purpose:       "feedback_award",
			Credited:      s.award,
			BalancePoints: balance,
			CreatedAt:     time.Now(),
		}
		if err := s.ledger.Publish(ctx, entry); err != nil {
			s.logger.Warn("ledger publish failed",
				zap.Uint("user_id", input.ReviewerID),
				zap.String("purpose", entry.Purpose),
				zap.Error(err),
			)
		}
	}
	return feedback, balance, nil
}

func (s *FeedbackService) List(paperID uint) ([]model.Feedback, error) {
	if paperID == 0 {
		return nil, ErrInvalidInput
	}
	return s.feedback.ListByPaperID(paperID)
}
