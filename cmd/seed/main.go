// Command main runs the database seeder for TravelBuddy.
package main

import (
	"context"
	"flag"
	"log"

	"travelbuddy/internal/config"
	"travelbuddy/internal/database"
	"travelbuddy/internal/seed"
)

func main() {
	// Parse command line flags
	numTravelers := flag.Int("travelers", 30, "Number of travelers to create")
	plansPer := flag.Int("plans", 2, "Travel plans per traveler")
	completeRatio := flag.Float64("complete", 0.4, "Share of matched plans to complete and review")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	catalog := flag.String("catalog", "", "Subscription plan catalog YAML (defaults to the built-in catalog)")
	fast := flag.Bool("fast", false, "Skip bcrypt; seeded travelers cannot sign in")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d travelers, %d plans each, clean=%v\n", *numTravelers, *plansPer, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *catalog == "" {
		*catalog = cfg.PlanCatalogPath
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if _, err := seed.Seed(context.Background(), db, seed.Options{
		NumTravelers:     *numTravelers,
		PlansPerTraveler: *plansPer,
		CompleteRatio:    *completeRatio,
		ShouldClean:      *shouldClean,
		CatalogPath:      *catalog,
		SkipBcrypt:       *fast,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
}
