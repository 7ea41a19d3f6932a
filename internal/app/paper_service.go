package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scholarchat/internal/model"
	"scholarchat/internal/repository"
)

// PaperLibraryStore is the paper-side persistence the library service needs.
type PaperLibraryStore interface {
	Create(paper *model.Paper) error
	GetByID(id uint) (*model.Paper, error)
	List(page, perPage int) ([]model.Paper, int64, error)
	IncrementDownloadCount(id uint) error
}

// PointDebitStore debits a balance only when it covers the amount.
type PointDebitStore interface {
	DebitIfEnough(userID uint, amount float64) (float64, error)
}

type PaperService struct {
	papers       PaperLibraryStore
	users        UserStore
	balances     PointDebitStore
	ledger       LedgerPublisher
	uploadDir    string
	maxSizeByte  int64
	downloadCost float64
	logger       *zap.Logger
}

type UploadPaperInput struct {
	UploaderID uint
	Title      string
	Abstract   string
	Keywords   string
	Journal    string
	AuthorIDs  []uint
	FileName   string
	FileSize   int64
	File       io.Reader
}

type PaperListResult struct {
	Papers  []model.Paper `json:"papers"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

func NewPaperService(
	papers PaperLibraryStore,
	users UserStore,
	balances PointDebitStore,
	ledger LedgerPublisher,
	uploadDir string,
	maxSizeByte int64,
	downloadCost float64,
	logger *zap.Logger,
) *PaperService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaperService{
		papers:       papers,
		users:        users,
		balances:     balances,
		ledger:       ledger,
		uploadDir:    uploadDir,
		maxSizeByte:  maxSizeByte,
		downloadCost: downloadCost,
		logger:       logger,
	}
}

// Upload stores the PDF on disk under a generated name and records the
// paper. Only researchers and admins may upload.
func (s *PaperService) Upload(input UploadPaperInput) (*model.Paper, error) {
	title := strings.TrimSpace(input.Title)
	if input.UploaderID == 0 || title == "" || input.File == nil {
		return nil, ErrInvalidInput
	}
	if !strings.EqualFold(filepath.Ext(input.FileName), ".pdf") {
		return nil, ErrInvalidInput
	}
	if s.maxSizeByte > 0 && input.FileSize > s.maxSizeByte {
		return nil, ErrInvalidInput
	}

	uploader, err := s.users.GetByID(input.UploaderID)
	if err != nil {
		return nil, err
	}
	if uploader == nil {
		return nil, ErrUserNotFound
	}
	if !uploader.CanUpload() {
		return nil, ErrForbidden
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir failed: %w", err)
	}
	storedPath := filepath.Join(s.uploadDir, uuid.NewString()+".pdf")
	dst, err := os.Create(storedPath)
	if err != nil {
		return nil, fmt.Errorf("create upload file failed: %w", err)
	}
	written, err := io.Copy(dst, input.File)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(storedPath)
		return nil, fmt.Errorf("save upload failed: %w", err)
	}

	authorIDs := input.AuthorIDs
	if len(authorIDs) == 0 {
		authorIDs = []uint{input.UploaderID}
	}
	authorsJSON, err := json.Marshal(authorIDs)
	if err != nil {
		_ = os.Remove(storedPath)
		return nil, fmt.Errorf("encode authors failed: %w", err)
	}

	paper := &model.Paper{
		Title:      title,
		Authors:    string(authorsJSON),
		Abstract:   strings.TrimSpace(input.Abstract),
		Keywords:   strings.TrimSpace(input.Keywords),
		Journal:    strings.TrimSpace(input.Journal),
		UploaderID: input.UploaderID,
		FilePath:   storedPath,
		FileName:   input.FileName,
		FileSize:   written,
		IsOfficial: uploader.Role == model.RoleAdmin,
		UploadDate: time.Now(),
	}
	if err := s.papers.Create(paper); err != nil {
		_ = os.Remove(storedPath)
		return nil, err
	}

	s.logger.Info("paper uploaded",
		zap.Uint("paper_id", paper.ID),
		zap.Uint("uploader_id", input.UploaderID),
		zap.Int64("size", written),
	)
	return paper, nil
}

func (s *PaperService) List(page, perPage int) (*PaperListResult, error) {
	papers, total, err := s.papers.List(page, perPage)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	return &PaperListResult{Papers: papers, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *PaperService) Get(id uint) (*model.Paper, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	paper, err := s.papers.GetByID(id)
	if err != nil {
		return nil, err
	}
	if paper == nil {
		return nil, ErrPaperNotFound
	}
	return paper, nil
}

// Download charges the download cost (uploads are free for their owner),
// bumps the counter, and returns the paper so the handler can serve the
// stored file.
func (s *PaperService) Download(ctx context.Context, userID, paperID uint) (*model.Paper, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	paper, err := s.Get(paperID)
	if err != nil {
		return nil, err
	}

	if s.downloadCost > 0 && paper.UploaderID != userID {
		balance, err := s.balances.DebitIfEnough(userID, s.downloadCost)
		if err != nil {
			if errors.Is(err, repository.ErrInsufficientPoints) {
				return nil, ErrInsufficientPoints
			}
			return nil, err
		}
		s.publishLedger(ctx, model.PointTransaction{
			UserID:        userID,
			Purpose:       "paper_download",
			Debited:       s.downloadCost,
			BalancePoints: balance,
		})
	}

	if err := s.papers.IncrementDownloadCount(paper.ID); err != nil {
		return nil, err
	}
	paper.DownloadCount++
	return paper, nil
}

func (s *PaperService) publishLedger(ctx context.Context, entry model.PointTransaction) {
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
