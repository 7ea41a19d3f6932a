package model

import "time"

const (
	RoleMember     = "member"
	RoleResearcher = "researcher"
	RoleAdmin      = "admin"
)

type User struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Username           string     `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email              string     `gorm:"size:128;not null;uniqueIndex" json:"email"`
	PasswordHash       string     `gorm:"size:255;not null" json:"-"`
	Role               string     `gorm:"size:32;not null;default:member" json:"role"`
	HasherPoints       float64    `gorm:"not null;default:0" json:"hasher_points"`
	LastLogin          *time.Time `json:"last_login"`
	LastPointsCredited *time.Time `json:"last_points_credited"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (u *User) CanUpload() bool {
	return u.Role == RoleResearcher || u.Role == RoleAdmin
}
