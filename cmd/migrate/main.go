package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-gifting/internal/config"
	"ms-gifting/internal/models"
)

// Development reset tool: drops the gifting tables, recreates them from the
// bun models and seeds sample data. Production schema changes go through the
// SQL migrations instead.
func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using environment variables")
	}
	cfg := config.Load()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	log.Println("Dropping tables...")
	dropTables(ctx, db)

	log.Println("Creating tables...")
	createTables(ctx, db)

	log.Println("Seeding sample data...")
	seedData(ctx, db)

	log.Println("✅ Done.")
}

func dropTables(ctx context.Context, db *bun.DB) {
	// Reverse dependency order: gifts reference everything else.
	tables := []interface{}{(*models.Gift)(nil), (*models.Event)(nil), (*models.Performer)(nil), (*models.User)(nil)}
	for _, m := range tables {
		_, _ = db.NewDropTable().Model(m).IfExists().Cascade().Exec(ctx)
	}
}

func createTables(ctx context.Context, db *bun.DB) {
	tables := []interface{}{(*models.User)(nil), (*models.Performer)(nil), (*models.Event)(nil), (*models.Gift)(nil)}
	for _, m := range tables {
		_, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx)
		if err != nil {
			log.Fatalf("❌ Failed to create table for %T: %v", m, err)
		}
	}
}

func seedData(ctx context.Context, db *bun.DB) {
	now := time.Now()

	users := []models.User{
		{ID: "user001", Email: "aoi.fan@example.com", DisplayName: "Aoi", CreatedAt: now},
		{ID: "user002", Email: "haruto.fan@example.com", DisplayName: "Haruto", CreatedAt: now},
	}
	_, _ = db.NewInsert().Model(&users).Exec(ctx)

	performers := []models.Performer{
		{
			ID:            "performer001",
			Name:          "Sakura Hoshino",
			Email:         "sakura@example.com",
			Occupation:    "Idol",
			Agency:        "Starlight Promotion",
			PaymentHandle: "pay-sakura",
			CreatedAt:     now,
		},
		{
			ID:            "performer002",
			Name:          "Rin Amamiya",
			Email:         "rin@example.com",
			Occupation:    "Singer",
			Agency:        "Aozora Music",
			PaymentHandle: "pay-rin",
			CreatedAt:     now,
		},
	}
	_, _ = db.NewInsert().Model(&performers).Exec(ctx)

	events := []models.Event{
		{
			ID:          "event001",
			Title:       "Summer Live 2026",
			Date:        now.AddDate(0, 1, 0),
			Location:    "Shibuya O-EAST",
			Description: "Annual summer showcase",
			CreatedAt:   now,
		},
		{
			ID:          "event002",
			Title:       "Spring Fan Meeting",
			Date:        now.AddDate(0, -2, 0),
			Location:    "Akihabara Stage One",
			Description: "Talk and mini live",
			CreatedAt:   now,
		},
	}
	_, _ = db.NewInsert().Model(&events).Exec(ctx)

	gifts := []models.Gift{
		{
			GiftID:        "gift001",
			UserID:        "user001",
			UserName:      "Aoi",
			PerformerID:   "performer001",
			PerformerName: "Sakura Hoshino",
			EventID:       "event002",
			EventName:     "Spring Fan Meeting",
			Amount:        1000,
			Comment:       "Great show!",
			CreatedAt:     now.AddDate(0, -2, 0),
		},
		{
			GiftID:        "gift002",
			UserID:        "user002",
			UserName:      "Haruto",
			PerformerID:   "performer001",
			PerformerName: "Sakura Hoshino",
			EventID:       "event002",
			EventName:     "Spring Fan Meeting",
			Amount:        3000,
			Comment:       "Keep it up",
			CreatedAt:     now.AddDate(0, -2, 0).Add(30 * time.Minute),
		},
	}
	_, _ = db.NewInsert().Model(&gifts).Exec(ctx)
}
