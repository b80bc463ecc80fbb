package models

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// Directory resolves uids to display names from the users table. It
// implements chat.ProfileDirectory.
type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

func (d *Directory) DisplayName(ctx context.Context, userID string) (string, error) {
	var u User
	if err := d.db.WithContext(ctx).Where("uid = ?", userID).First(&u).Error; err != nil {
		return "", err
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	return name, nil
}
