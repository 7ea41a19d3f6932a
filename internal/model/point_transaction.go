package model

import "time"

// PointTransaction is an audit row for every balance change. The
// authoritative balance lives on the user record; these rows are written
// asynchronously by the ledger worker.
type PointTransaction struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Purpose       string    `gorm:"size:255;not null" json:"purpose"`
	Credited      float64   `gorm:"not null;default:0" json:"credited"`
	Debited       float64   `gorm:"not null;default:0" json:"debited"`
	BalancePoints float64   `gorm:"not null" json:"balance_points"`
	CreatedAt     time.Time `json:"timestamp"`
}
