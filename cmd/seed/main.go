// Command main runs the database seeder for Hushwall.
package main

import (
	"flag"
	"log"

	"hushwall/internal/config"
	"hushwall/internal/database"
	"hushwall/internal/seed"
)

func main() {
	numAccounts := flag.Int("accounts", 50, "Number of accounts to create")
	numConfessions := flag.Int("confessions", 200, "Number of confessions to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fixtures := flag.String("fixtures", "", "YAML file with extra categories and tags")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d accounts, %d confessions, clean=%v\n", *numAccounts, *numConfessions, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumAccounts:    *numAccounts,
		NumConfessions: *numConfessions,
		ShouldClean:    *shouldClean,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	if *fixtures != "" {
		if err := seed.LoadFixtures(db, *fixtures); err != nil {
			log.Fatalf("❌ Fixture loading failed: %v", err)
		}
	}

	log.Println("✨ All done! Your database is now populated with test data.")
}
