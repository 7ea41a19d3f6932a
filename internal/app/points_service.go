package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"scholarchat/internal/model"
)

// PointCreditStore adds to a balance and returns the result.
type PointCreditStore interface {
	Credit(userID uint, amount float64) (float64, error)
}

// TransactionStore reads the persisted audit trail.
type TransactionStore interface {
	ListByUserID(userID uint, limit int) ([]model.PointTransaction, error)
}

type PointsService struct {
	users        UserStore
	credits      PointCreditStore
	transactions TransactionStore
	ledger       LedgerPublisher
	logger       *zap.Logger
}

func NewPointsService(
	users UserStore,
	credits PointCreditStore,
	transactions TransactionStore,
	ledger LedgerPublisher,
	logger *zap.Logger,
) *PointsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PointsService{
		users:        users,
		credits:      credits,
		transactions: transactions,
		ledger:       ledger,
		logger:       logger,
	}
}

func (s *PointsService) Balance(userID uint) (float64, error) {
	if userID == 0 {
		return 0, ErrInvalidInput
	}
	user, err := s.users.GetByID(userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, ErrUserNotFound
	}
	return user.HasherPoints, nil
}

func (s *PointsService) Transactions(userID uint, limit int) ([]model.PointTransaction, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.transactions.ListByUserID(userID, limit)
}

// Credit adds points to a user's balance. The caller is responsible for
// authorizing the operation; the transport layer restricts it to admins.
func (s *PointsService) Credit(ctx context.Context, userID uint, amount float64, purpose string) (float64, error) {
	if userID == 0 || amount <= 0 {
		return 0, ErrInvalidInput
	}
	user, err := s.users.GetByID(userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, ErrUserNotFound
	}

	balance, err := s.credits.Credit(userID, amount)
	if err != nil {
		return 0, err
	}
	if purpose == "" {
		purpose = "manual_credit"
	}
	entry := model.PointTransaction{
		UserID:        userID,
		Purpose:       purpose,
		Credited:      amount,
		BalancePoints: balance,
		CreatedAt:     time.Now(),
	}
	if s.ledger != nil {
		if err := s.ledger.Publish(ctx, entry); err != nil {
			s.logger.Warn("ledger publish failed",
				zap.Uint("user_id", userID),
				zap.String("purpose", purpose),
				zap.Error(err),
			)
		}
	}
	return balance, nil
}
