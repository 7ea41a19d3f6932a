package app

import (
	"context"

	"scholarchat/internal/model"
)

// Persistence and messaging collaborators of the chat core. The repository
// package provides the production implementations; tests substitute fakes.

type PaperStore interface {
	GetByID(id uint) (*model.Paper, error)
}

type PassageStore interface {
	ExistsByPaperID(paperID uint) (bool, error)
	CreateBatchIfAbsent(paperID uint, passages []model.Passage) (bool, error)
	ListByPaperID(paperID uint) ([]model.Passage, error)
}

type SessionStore interface {
	GetOrCreateActive(userID, paperID uint, sessionToken string) (*model.ChatSession, error)
	GetBySessionID(sessionToken string) (*model.ChatSession, error)
	ListByUserID(userID uint) ([]model.ChatSession, error)
	Deactivate(sessionToken string) error
	MarkChunksProcessed(id uint) error
}

type MessageStore interface {
	Create(message *model.ChatMessage) error
	// CreateWithDebit appends the user message and debits cost atomically,
	// returning the balance after the debit. Fails with
	// repository.ErrInsufficientPoints when the balance is below cost.
	CreateWithDebit(message *model.ChatMessage, userID uint, cost float64) (float64, error)
	ListBySessionID(sessionID uint) ([]model.ChatMessage, error)
	CountBySessionID(sessionID uint) (int64, error)
	SumCostBySessionID(sessionID uint) (float64, error)
}

type UserStore interface {
	GetByID(id uint) (*model.User, error)
}

// TextExtractor pulls the full extractable text out of a stored document.
type TextExtractor interface {
	Extract(path string) (string, error)
}

// LedgerPublisher emits point-transaction audit events for asynchronous
// persistence. Publish failures are logged, never surfaced to the caller:
// the balance change itself has already been committed.
type LedgerPublisher interface {
	Publish(ctx context.Context, entry model.PointTransaction) error
}

// HistoryCache keeps chat histories warm between reads.
type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID uint) ([]model.ChatMessage, bool, error)
	SetHistory(ctx context.Context, sessionID uint, messages []model.ChatMessage) error
	DeleteHistory(ctx context.Context, sessionID uint) error
	MarkDirty(ctx context.Context, sessionID uint) error
	IsDirty(ctx context.Context, sessionID uint) (bool, error)
}
