package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scholarchat/internal/model"
	"scholarchat/internal/rag"
	"scholarchat/internal/repository"
)

const systemPrompt = "You are a research assistant helping users understand academic papers. " +
	"Provide accurate, helpful answers based on the paper content provided."

const excerptPreviewRunes = 200

// ChatOptions tunes retrieval and pricing for the chat core.
type ChatOptions struct {
	TopK            int
	MaxContextChars int
	CostPerQuery    float64
}

type ChatService struct {
	papers       PaperStore
	sessions     SessionStore
	messages     MessageStore
	users        UserStore
	processing   *ProcessingService
	passages     PassageStore
	ledger       LedgerPublisher
	historyCache HistoryCache
	embedder     rag.Embedder
	generator    rag.Generator
	opts         ChatOptions
	logger       *zap.Logger
}

func NewChatService(
	papers PaperStore,
	sessions SessionStore,
	messages MessageStore,
	users UserStore,
	processing *ProcessingService,
	passages PassageStore,
	ledger LedgerPublisher,
	historyCache HistoryCache,
	embedder rag.Embedder,
	generator rag.Generator,
	opts ChatOptions,
	logger *zap.Logger,
) *ChatService {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.MaxContextChars <= 0 {
		opts.MaxContextChars = 6000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		papers:       papers,
		sessions:     sessions,
		messages:     messages,
		users:        users,
		processing:   processing,
		passages:     passages,
		ledger:       ledger,
		historyCache: historyCache,
		embedder:     embedder,
		generator:    generator,
		opts:         opts,
		logger:       logger,
	}
}

type AskInput struct {
	UserID   uint
	PaperID  uint
	Question string
}

// RetrievedPassage is the public shape of one retrieval hit.
type RetrievedPassage struct {
	PassageID uint    `json:"passage_id"`
	Index     int     `json:"index"`
	Score     float64 `json:"score"`
	Excerpt   string  `json:"excerpt"`
}

type AskResult struct {
	SessionID        string             `json:"session_id"`
	Answer           string             `json:"answer"`
	RelevantPassages []RetrievedPassage `json:"relevant_passages"`
	PointsDeducted   float64            `json:"points_deducted"`
	RemainingPoints  float64            `json:"remaining_points"`
	ProcessingStatus string             `json:"processing_status"`
	ContextEmpty     bool               `json:"context_empty"`
}

type SessionSummary struct {
	SessionID         string    `json:"session_id"`
	PaperID           uint      `json:"paper_id"`
	PaperTitle        string    `json:"paper_title"`
	MessageCount      int64     `json:"message_count"`
	ChunksProcessed   bool      `json:"chunks_processed"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	LastInteractionAt time.Time `json:"last_interaction_at"`
}

type HistoryResult struct {
	SessionID string              `json:"session_id"`
	PaperID   uint                `json:"paper_id"`
	Messages  []model.ChatMessage `json:"messages"`
	TotalCost float64             `json:"total_cost"`
}

// Ask answers one question about a paper. The paper is processed on first
// contact, the query cost is debited atomically together with the user
// message, and the answer is generated from the top retrieved passages.
// A failed generation does not refund the debit: the retrieval work has
// already been spent.
func (s *ChatService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	if input.UserID == 0 || input.PaperID == 0 {
		return nil, ErrInvalidInput
	}
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, ErrInvalidInput
	}

	paper, err := s.papers.GetByID(input.PaperID)
	if err != nil {
		return nil, err
	}
	if paper == nil {
		return nil, ErrPaperNotFound
	}

	processedNow, err := s.processing.EnsureProcessed(ctx, paper)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetOrCreateActive(input.UserID, input.PaperID, uuid.NewString())
	if err != nil {
		return nil, err
	}
	if !session.ChunksProcessed {
		if err := s.sessions.MarkChunksProcessed(session.ID); err != nil {
			return nil, err
		}
		session.ChunksProcessed = true
	}

	// Fail fast on an obviously short balance before doing retrieval work.
	// The authoritative check is the guarded debit below.
	user, err := s.users.GetByID(input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.HasherPoints < s.opts.CostPerQuery {
		return nil, ErrInsufficientPoints
	}

	userMessage := &model.ChatMessage{
		SessionID: session.ID,
		Role:      model.RoleUser,
		Content:   question,
		Cost:      s.opts.CostPerQuery,
		CreatedAt: time.Now(),
	}
	remaining, err := s.messages.CreateWithDebit(userMessage, input.UserID, s.opts.CostPerQuery)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientPoints) {
			return nil, ErrInsufficientPoints
		}
		return nil, err
	}
	s.publishLedger(ctx, model.PointTransaction{
		UserID:        input.UserID,
		Purpose:       "rag_chat_query",
		Debited:       s.opts.CostPerQuery,
		BalancePoints: remaining,
	})

	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, session.ID)
		_ = s.historyCache.DeleteHistory(ctx, session.ID)
	}

	var queryVec []float32
	if s.embedder != nil && s.embedder.Available() {
		queryVec, err = s.embedder.Embed(ctx, question)
		if err != nil {
			s.logger.Warn("query embedding failed, answering without retrieval", zap.Error(err))
			queryVec = nil
		}
	}

	stored, err := s.passages.ListByPaperID(input.PaperID)
	if err != nil {
		return nil, err
	}
	ranked := rag.Rank(queryVec, stored, s.opts.TopK)

	prompt, used := rag.BuildContext(paper.Title, question, ranked, s.opts.MaxContextChars)
	answer, err := s.generator.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, ErrGenerationFailed
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = "The model returned an empty response."
	}

	// Only the excerpts that fit into the bounded context reached the
	// generator; those are what the assistant message cites.
	passageIDs := make([]uint, 0, len(used))
	hits := make([]RetrievedPassage, 0, len(used))
	for _, r := range used {
		passageIDs = append(passageIDs, r.Passage.ID)
		hits = append(hits, RetrievedPassage{
			PassageID: r.Passage.ID,
			Index:     r.Passage.Idx,
			Score:     r.Score,
			Excerpt:   excerptPreview(r.Passage.Content),
		})
	}

	assistantMessage := &model.ChatMessage{
		SessionID: session.ID,
		Role:      model.RoleAssistant,
		Content:   answer,
		CreatedAt: time.Now(),
	}
	assistantMessage.SetPassageIDs(passageIDs)
	if err := s.messages.Create(assistantMessage); err != nil {
		return nil, err
	}

	status := "already_processed"
	if processedNow {
		status = "processed"
	}
	return &AskResult{
		SessionID:        session.SessionID,
		Answer:           answer,
		RelevantPassages: hits,
		PointsDeducted:   s.opts.CostPerQuery,
		RemainingPoints:  remaining,
		ProcessingStatus: status,
		ContextEmpty:     len(used) == 0,
	}, nil
}

func (s *ChatService) ListSessions(userID uint) ([]SessionSummary, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	sessions, err := s.sessions.ListByUserID(userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summary := SessionSummary{
			SessionID:         session.SessionID,
			PaperID:           session.PaperID,
			ChunksProcessed:   session.ChunksProcessed,
			IsActive:          session.IsActive,
			CreatedAt:         session.CreatedAt,
			LastInteractionAt: session.LastInteractionAt,
		}
		if paper, err := s.papers.GetByID(session.PaperID); err == nil && paper != nil {
			summary.PaperTitle = paper.Title
		}
		if count, err := s.messages.CountBySessionID(session.ID); err == nil {
			summary.MessageCount = count
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *ChatService) GetHistory(ctx context.Context, userID uint, sessionToken string) (*HistoryResult, error) {
	session, err := s.ownedSession(userID, sessionToken)
	if err != nil {
		return nil, err
	}

	totalCost, err := s.messages.SumCostBySessionID(session.ID)
	if err != nil {
		return nil, err
	}

	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, session.ID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, session.ID); cacheErr == nil && hit {
				return &HistoryResult{
					SessionID: session.SessionID,
					PaperID:   session.PaperID,
					Messages:  cached,
					TotalCost: totalCost,
				}, nil
			}
		}
	}

	messages, err := s.messages.ListBySessionID(session.ID)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, session.ID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, session.ID, messages)
		}
	}
	return &HistoryResult{
		SessionID: session.SessionID,
		PaperID:   session.PaperID,
		Messages:  messages,
		TotalCost: totalCost,
	}, nil
}

// DeactivateSession closes a session. Deactivating an already inactive
// session succeeds without effect.
func (s *ChatService) DeactivateSession(ctx context.Context, userID uint, sessionToken string) error {
	session, err := s.ownedSession(userID, sessionToken)
	if err != nil {
		return err
	}
	if err := s.sessions.Deactivate(session.SessionID); err != nil {
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(ctx, session.ID)
	}
	return nil
}

func (s *ChatService) ownedSession(userID uint, sessionToken string) (*model.ChatSession, error) {
	if userID == 0 || strings.TrimSpace(sessionToken) == "" {
		return nil, ErrInvalidInput
	}
	session, err := s.sessions.GetBySessionID(sessionToken)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, ErrForbidden
	}
	return session, nil
}

func (s *ChatService) publishLedger(ctx context.Context, entry model.PointTransaction) {
	if s.ledger == nil {
		return
	}
	entry.CreatedAt = time.Now()
	if err := s.ledger.Publish(ctx, entry); err != nil {
		s.logger.Warn("ledger publish failed",
			zap.Uint("user_id", entry.UserID),
			zap.String("purpose", entry.Purpose),
			zap.Error(err),
		)
	}
}

func excerptPreview(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptPreviewRunes {
		return content
	}
	return string(runes[:excerptPreviewRunes]) + "..."
}
