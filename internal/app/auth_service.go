package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"scholarchat/internal/model"
	"scholarchat/internal/pkg/jwtutil"
)

const dailyBonusInterval = 24 * time.Hour

// UserAccountStore is the account-side persistence the auth service needs.
type UserAccountStore interface {
	Create(user *model.User) error
	GetByUsername(username string) (*model.User, error)
	GetByEmail(email string) (*model.User, error)
	GetByID(id uint) (*model.User, error)
	Credit(userID uint, amount float64) (float64, error)
	TouchLogin(userID uint, loginAt time.Time, creditedAt *time.Time) error
}

type AuthService struct {
	users         UserAccountStore
	ledger        LedgerPublisher
	jwtSecret     string
	jwtExpiration time.Duration
	dailyBonus    float64
	logger        *zap.Logger
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	Token        string
	User         *model.User
	BonusAwarded float64
}

func NewAuthService(
	users UserAccountStore,
	ledger LedgerPublisher,
	jwtSecret string,
	jwtExpiration time.Duration,
	dailyBonus float64,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:         users,
		ledger:        ledger,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		dailyBonus:    dailyBonus,
		logger:        logger,
	}
}

func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)

	if username == "" || email == "" || !strings.Contains(email, "@") || len(password) < 8 {
		return nil, ErrInvalidInput
	}

	role := strings.TrimSpace(input.Role)
	switch role {
	case "":
		role = model.RoleMember
	case model.RoleMember, model.RoleResearcher:
	default:
		// Admin accounts are provisioned out of band.
		return nil, ErrInvalidInput
	}

	existingByName, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existingByName != nil {
		return nil, ErrUsernameExists
	}

	existingByEmail, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existingByEmail != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and credits the daily login bonus when at
// least 24 hours have passed since the last credit. A user who has never
// been credited is eligible immediately.
func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	password := strings.TrimSpace(input.Password)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	now := time.Now()
	var bonus float64
	if s.bonusDue(user, now) {
		balance, err := s.users.Credit(user.ID, s.dailyBonus)
		if err != nil {
			return nil, err
		}
		if err := s.users.TouchLogin(user.ID, now, &now); err != nil {
			return nil, err
		}
		bonus = s.dailyBonus
		user.HasherPoints = balance
		user.LastPointsCredited = &now
		s.publishLedger(model.PointTransaction{
			UserID:        user.ID,
			Purpose:       "daily_login_bonus",
			Credited:      s.dailyBonus,
			BalancePoints: balance,
		})
	} else if err := s.users.TouchLogin(user.ID, now, nil); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user, BonusAwarded: bonus}, nil
}

func (s *AuthService) GetUserByID(id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) bonusDue(user *model.User, now time.Time) bool {
	if s.dailyBonus <= 0 {
		return false
	}
	if user.LastPointsCredited == nil {
		return true
	}
	return now.Sub(*user.LastPointsCredited) >= dailyBonusInterval
}

func (s *AuthService) publishLedger(entry model.PointTransaction) {
	if s.ledger == nil {
		return
	}
	entry.CreatedAt = time.Now()
	if err := s.ledger.Publish(context.Background(), entry); err != nil {
		s.logger.Warn("ledger publish failed",
			zap.Uint("user_id", entry.UserID),
			zap.String("purpose", entry.Purpose),
			zap.Error(err),
		)
	}
}
