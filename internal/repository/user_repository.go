package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"scholarchat/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by username failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by email failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return &user, nil
}

// DebitIfEnough atomically subtracts amount from the user's balance, failing
// with ErrInsufficientPoints when the balance is below amount. The guarded
// UPDATE closes the check-then-debit race between concurrent requests.
// Returns the balance after the debit.
func (r *UserRepository) DebitIfEnough(userID uint, amount float64) (float64, error) {
	var balance float64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).
			Where("id = ? AND hasher_points >= ?", userID, amount).
			UpdateColumn("hasher_points", gorm.Expr("hasher_points - ?", amount))
		if res.Error != nil {
			return fmt.Errorf("debit points failed: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientPoints
		}
		var user model.User
		if err := tx.Select("hasher_points").First(&user, userID).Error; err != nil {
			return fmt.Errorf("read balance failed: %w", err)
		}
		balance = user.HasherPoints
		return nil
	})
	return balance, err
}

// Credit adds amount to the user's balance and returns the new balance.
func (r *UserRepository) Credit(userID uint, amount float64) (float64, error) {
	var balance float64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).
			Where("id = ?", userID).
			UpdateColumn("hasher_points", gorm.Expr("hasher_points + ?", amount))
		if res.Error != nil {
			return fmt.Errorf("credit points failed: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		var user model.User
		if err := tx.Select("hasher_points").First(&user, userID).Error; err != nil {
			return fmt.Errorf("read balance failed: %w", err)
		}
		balance = user.HasherPoints
		return nil
	})
	return balance, err
}

// TouchLogin records a successful login; creditedAt is non-nil when the
// daily bonus was granted with this login.
func (r *UserRepository) TouchLogin(userID uint, loginAt time.Time, creditedAt *time.Time) error {
	updates := map[string]interface{}{"last_login": loginAt}
	if creditedAt != nil {
		updates["last_points_credited"] = *creditedAt
	}
	if err := r.db.Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return fmt.Errorf("update login timestamps failed: %w", err)
	}
	return nil
}
