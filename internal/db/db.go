package db

import (
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/skillswaphq/skillswap-chat/internal/chat"
	"github.com/skillswaphq/skillswap-chat/internal/models"
)

// Connect opens the MySQL store and migrates the schema.
func Connect(dsn string) *gorm.DB {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := gdb.AutoMigrate(
		&models.User{},
		&chat.Conversation{},
		&chat.Message{},
		&chat.DocumentTransfer{},
	); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	return gdb
}
