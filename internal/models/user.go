package models

import "time"

// User is the profile record behind display-name lookups and the auth
// surface. The UID is the opaque identifier everything else keys on.
type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	UID          string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"uid"`
	Email        string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(128);not null" json:"-"`
	FirstName    string    `gorm:"type:varchar(64)" json:"first_name"`
	LastName     string    `gorm:"type:varchar(64)" json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }
