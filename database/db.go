package database

import (
	"aurora/config"
	"aurora/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect() error {
	cfg := config.GetConfig()
	return ConnectPath(cfg.DatabasePath)
}

// ConnectPath opens the database at the given path (":memory:" in tests),
// migrates the schema and seeds the shared system categories.
func ConnectPath(path string) error {
	var err error
	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return err
	}

	// Auto-migrate models
	err = DB.AutoMigrate(
		&models.User{},
		&models.EventCategory{},
		&models.Event{},
		&models.MoodEntry{},
		&models.ScheduleSuggestion{},
	)
	if err != nil {
		return err
	}

	return seedSystemCategories()
}

// systemCategories are available to every user. They are created once and
// never owned, modified or deleted by anyone.
var systemCategories = []models.EventCategory{
	{Name: "Work", Color: "#3b82f6", IsSystem: true, IsActive: true},
	{Name: "Personal", Color: "#10b981", IsSystem: true, IsActive: true},
	{Name: "Health", Color: "#ef4444", IsSystem: true, IsActive: true},
	{Name: "Study", Color: "#f59e0b", IsSystem: true, IsActive: true},
	{Name: "Social", Color: "#8b5cf6", IsSystem: true, IsActive: true},
}

func seedSystemCategories() error {
	var count int64
	if err := DB.Model(&models.EventCategory{}).Where("is_system = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for i := range systemCategories {
		cat := systemCategories[i]
		if err := DB.Create(&cat).Error; err != nil {
			return err
		}
	}
	return nil
}
