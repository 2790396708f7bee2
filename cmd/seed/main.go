package main

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cybervision/siem/backend/internal/models"
)

func main() {
	// Connect to database
	db, err := gorm.Open(sqlite.Open("./data/cybervision.db"), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&models.SecurityEvent{},
		&models.StoredAnalysis{},
		&models.Notification{},
		&models.AgentToken{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	fmt.Println("✓ Database migrated successfully")

	// Seed demo events
	seeded := 0
	for _, ev := range models.DemoEvents() {
		result := db.Where("id = ?", ev.ID).FirstOrCreate(&ev)
		if result.Error != nil {
			log.Fatal("Failed to seed event:", result.Error)
		}
		if result.RowsAffected > 0 {
			seeded++
		}
	}

	fmt.Printf("✓ Seeded %d demo events\n", seeded)
	fmt.Println("\nDatabase ready. Start the API with: go run ./cmd/api")
}
