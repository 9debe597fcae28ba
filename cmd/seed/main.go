// Command seed populates the database with development data.
package main

import (
	"flag"
	"log"

	"reverie/internal/config"
	"reverie/internal/database"
	"reverie/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numDreams := flag.Int("dreams", 150, "Number of dreams to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d dreams, clean=%v", *numUsers, *numDreams, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumDreams:   *numDreams,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
