// Command main runs the database seeder for CampDir.
package main

import (
	"flag"
	"log"

	"campdir/internal/config"
	"campdir/internal/database"
	"campdir/internal/seed"
)

func main() {
	// Parse command line flags
	numPublishers := flag.Int("publishers", 20, "Number of publishers (one bootcamp each) to create")
	numUsers := flag.Int("users", 50, "Number of regular users to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	nuke := flag.Bool("nuke", false, "Only wipe the database, do not seed")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if *nuke {
		if err := seed.ClearAll(db); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		log.Println("Database wiped.")
		return
	}

	if err := seed.Seed(db, seed.Options{
		NumPublishers: *numPublishers,
		NumUsers:      *numUsers,
		ShouldClean:   *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
