package app

import (
	"context"
	"fmt"
	"time"

	"scholarchat/internal/model"
	"scholarchat/internal/rag"
	"scholarchat/internal/repository"
)

type fakePaperStore struct {
	papers map[uint]*model.Paper
}

func (f *fakePaperStore) GetByID(id uint) (*model.Paper, error) {
	return f.papers[id], nil
}

type fakePassageStore struct {
	passages    map[uint][]model.Passage
	nextID      uint
	createCalls int
}

func newFakePassageStore() *fakePassageStore {
	return &fakePassageStore{passages: map[uint][]model.Passage{}}
}

func (f *fakePassageStore) ExistsByPaperID(paperID uint) (bool, error) {
	return len(f.passages[paperID]) > 0, nil
}

func (f *fakePassageStore) CreateBatchIfAbsent(paperID uint, passages []model.Passage) (bool, error) {
	f.createCalls++
	if len(f.passages[paperID]) > 0 {
		return false, nil
	}
	for i := range passages {
		f.nextID++
		passages[i].ID = f.nextID
	}
	f.passages[paperID] = passages
	return true, nil
}

func (f *fakePassageStore) ListByPaperID(paperID uint) ([]model.Passage, error) {
	return f.passages[paperID], nil
}

type fakeSessionStore struct {
	sessions []*model.ChatSession
	nextID   uint
}

func (f *fakeSessionStore) GetOrCreateActive(userID, paperID uint, sessionToken string) (*model.ChatSession, error) {
	for _, s := range f.sessions {
		if s.UserID == userID && s.PaperID == paperID && s.IsActive {
			s.LastInteractionAt = time.Now()
			return s, nil
		}
	}
	f.nextID++
	session := &model.ChatSession{
		ID:                f.nextID,
		SessionID:         sessionToken,
		UserID:            userID,
		PaperID:           paperID,
		IsActive:          true,
		CreatedAt:         time.Now(),
		LastInteractionAt: time.Now(),
	}
	f.sessions = append(f.sessions, session)
	return session, nil
}

func (f *fakeSessionStore) GetBySessionID(sessionToken string) (*model.ChatSession, error) {
	for _, s := range f.sessions {
		if s.SessionID == sessionToken {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeSessionStore) ListByUserID(userID uint) ([]model.ChatSession, error) {
	var out []model.ChatSession
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) Deactivate(sessionToken string) error {
	for _, s := range f.sessions {
		if s.SessionID == sessionToken {
			s.IsActive = false
		}
	}
	return nil
}

func (f *fakeSessionStore) MarkChunksProcessed(id uint) error {
	for _, s := range f.sessions {
		if s.ID == id {
			s.ChunksProcessed = true
		}
	}
	return nil
}

type fakeUserStore struct {
	users map[uint]*model.User
}

func (f *fakeUserStore) GetByID(id uint) (*model.User, error) {
	return f.users[id], nil
}

func (f *fakeUserStore) Create(user *model.User) error {
	if f.users == nil {
		f.users = map[uint]*model.User{}
	}
	user.ID = uint(len(f.users) + 1)
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetByUsername(username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetByEmail(email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) Credit(userID uint, amount float64) (float64, error) {
	u := f.users[userID]
	u.HasherPoints += amount
	return u.HasherPoints, nil
}

func (f *fakeUserStore) DebitIfEnough(userID uint, amount float64) (float64, error) {
	u := f.users[userID]
	if u.HasherPoints < amount {
		return 0, repository.ErrInsufficientPoints
	}
	u.HasherPoints -= amount
	return u.HasherPoints, nil
}

func (f *fakeUserStore) TouchLogin(userID uint, loginAt time.Time, creditedAt *time.Time) error {
	u := f.users[userID]
	at := loginAt
	u.LastLogin = &at
	if creditedAt != nil {
		credited := *creditedAt
		u.LastPointsCredited = &credited
	}
	return nil
}

type fakeMessageStore struct {
	users    *fakeUserStore
	messages []model.ChatMessage
	nextID   uint
}

func (f *fakeMessageStore) Create(message *model.ChatMessage) error {
	f.nextID++
	message.ID = f.nextID
	f.messages = append(f.messages, *message)
	return nil
}

func (f *fakeMessageStore) CreateWithDebit(message *model.ChatMessage, userID uint, cost float64) (float64, error) {
	balance, err := f.users.DebitIfEnough(userID, cost)
	if err != nil {
		return 0, err
	}
	if err := f.Create(message); err != nil {
		return 0, err
	}
	return balance, nil
}

func (f *fakeMessageStore) ListBySessionID(sessionID uint) ([]model.ChatMessage, error) {
	var out []model.ChatMessage
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) CountBySessionID(sessionID uint) (int64, error) {
	msgs, _ := f.ListBySessionID(sessionID)
	return int64(len(msgs)), nil
}

func (f *fakeMessageStore) SumCostBySessionID(sessionID uint) (float64, error) {
	var total float64
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			total += m.Cost
		}
	}
	return total, nil
}

type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (f *fakeExtractor) Extract(path string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// fakeEmbedder vectorizes text by lookup; unknown texts get a unit vector.
type fakeEmbedder struct {
	vectors   map[string][]float32
	available bool
	calls     int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}
	return []float32{1, 0}, nil
}

func (f *fakeEmbedder) Dimension() int  { return 2 }
func (f *fakeEmbedder) Available() bool { return f.available }

// fakeBatchEmbedder additionally records batch sizes.
type fakeBatchEmbedder struct {
	fakeEmbedder
	batchSizes []int
}

func (f *fakeBatchEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.batchSizes = append(f.batchSizes, len(texts))
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

type fakeGenerator struct {
	answer     string
	err        error
	calls      int
	lastSystem string
	lastPrompt string
}

func (f *fakeGenerator) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastPrompt = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeGenerator) Available() bool { return true }

type fakeLedger struct {
	entries []model.PointTransaction
	err     error
}

func (f *fakeLedger) Publish(ctx context.Context, entry model.PointTransaction) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

type fakeHistoryCache struct {
	histories map[uint][]model.ChatMessage
	dirty     map[uint]bool
}

func newFakeHistoryCache() *fakeHistoryCache {
	return &fakeHistoryCache{
		histories: map[uint][]model.ChatMessage{},
		dirty:     map[uint]bool{},
	}
}

func (f *fakeHistoryCache) GetHistory(ctx context.Context, sessionID uint) ([]model.ChatMessage, bool, error) {
	msgs, ok := f.histories[sessionID]
	return msgs, ok, nil
}

func (f *fakeHistoryCache) SetHistory(ctx context.Context, sessionID uint, messages []model.ChatMessage) error {
	f.histories[sessionID] = messages
	return nil
}

func (f *fakeHistoryCache) DeleteHistory(ctx context.Context, sessionID uint) error {
	delete(f.histories, sessionID)
	return nil
}

func (f *fakeHistoryCache) MarkDirty(ctx context.Context, sessionID uint) error {
	f.dirty[sessionID] = true
	return nil
}

func (f *fakeHistoryCache) IsDirty(ctx context.Context, sessionID uint) (bool, error) {
	return f.dirty[sessionID], nil
}

var _ rag.BatchEmbedder = (*fakeBatchEmbedder)(nil)

func paperFixture(id uint, title string) *model.Paper {
	return &model.Paper{
		ID:       id,
		Title:    title,
		FilePath: fmt.Sprintf("/tmp/paper-%d.pdf", id),
		FileName: fmt.Sprintf("paper-%d.pdf", id),
	}
}
