package db

import (
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/docvault/docvault/internal/document"
	"github.com/docvault/docvault/internal/ingest"
	"github.com/docvault/docvault/internal/models"
)

func Connect(dsn string) *gorm.DB {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	return gdb
}

func Migrate(gdb *gorm.DB) {
	if err := gdb.AutoMigrate(&models.User{}, &document.Document{}, &ingest.Job{}); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
}
