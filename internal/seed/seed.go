package seed

import (
	"context"
	"fmt"
	"log"

	"travelbuddy/internal/models"
	"travelbuddy/internal/repository"
	"travelbuddy/internal/service"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumTravelers     int
	PlansPerTraveler int
	// CompleteRatio is the share of matched plans that are completed and reviewed.
	CompleteRatio float64
	ShouldClean   bool
	CatalogPath   string
	SkipBcrypt    bool
}

// Stats summarises one seeding run.
type Stats struct {
	Travelers int
	Plans     int
	Requests  int
	Matches   int
	Completed int
	Reviews   int
}

// truncation order respects foreign keys when CASCADE is unavailable
var clearTables = []string{
	"payments", "subscriptions", "reviews", "travel_buddies",
	"buddy_requests", "travel_plans", "travelers", "users",
}

// Seed populates the database with demo travelers, plans and matches.
// Buddy requests, completions and reviews go through the services so the
// stored data obeys the same rules as API traffic.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Stats, error) {
	log.Printf("🌱 Starting database seeding with %d travelers...", opts.NumTravelers)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Printf("⚠️  Warning: could not clear existing data: %v", err)
		}
	}

	if n, err := EnsureSubscriptionPlans(db, opts.CatalogPath); err != nil {
		return nil, fmt.Errorf("failed to seed subscription plans: %w", err)
	} else if n > 0 {
		log.Printf("✓ %d subscription plans created", n)
	}

	s := NewSeeder(db, SeedOptions{SkipBcrypt: opts.SkipBcrypt})
	stats := &Stats{}

	travelers, err := s.SeedTravelers(opts.NumTravelers)
	if err != nil {
		return stats, fmt.Errorf("failed to create travelers: %w", err)
	}
	stats.Travelers = len(travelers)
	log.Printf("✓ %d travelers created", len(travelers))

	plans, err := s.SeedPlans(travelers, opts.PlansPerTraveler)
	if err != nil {
		return stats, fmt.Errorf("failed to create travel plans: %w", err)
	}
	stats.Plans = len(plans)
	log.Printf("✓ %d travel plans created", len(plans))

	if err := s.SeedMatches(ctx, travelers, plans, opts.CompleteRatio, stats); err != nil {
		return stats, fmt.Errorf("failed to create matches: %w", err)
	}
	log.Printf("✓ %d requests, %d matches, %d completed trips, %d reviews",
		stats.Requests, stats.Matches, stats.Completed, stats.Reviews)

	log.Println("✅ Seeding completed successfully!")
	if !opts.SkipBcrypt {
		log.Printf("ℹ️  Seeded travelers sign in with password %q", DemoPassword)
	}
	return stats, nil
}

func clearData(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		sql := `TRUNCATE TABLE payments, subscriptions, reviews, travel_buddies, buddy_requests, travel_plans, travelers, users RESTART IDENTITY CASCADE;`
		return db.Exec(sql).Error
	}
	for _, table := range clearTables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Seeder creates related demo entities on top of a Factory.
type Seeder struct {
	factory  *Factory
	requests *service.BuddyRequestService
	trips    *service.TripService
	reviews  *service.ReviewService
}

// NewSeeder wires a Seeder to db.
func NewSeeder(db *gorm.DB, opts SeedOptions) *Seeder {
	store := repository.NewStore(db, repository.StoreOptions{})
	return &Seeder{
		factory:  NewFactory(db, opts),
		requests: service.NewBuddyRequestService(store),
		trips:    service.NewTripService(store),
		reviews:  service.NewReviewService(store),
	}
}

// SeedTravelers creates n subscribed travelers.
func (s *Seeder) SeedTravelers(n int) ([]*models.Traveler, error) {
	travelers := make([]*models.Traveler, 0, n)
	for i := 0; i < n; i++ {
		t, err := s.factory.CreateTraveler()
		if err != nil {
			return travelers, err
		}
		travelers = append(travelers, t)
	}
	return travelers, nil
}

// SeedPlans creates perTraveler plans for each traveler.
func (s *Seeder) SeedPlans(travelers []*models.Traveler, perTraveler int) ([]*models.TravelPlan, error) {
	plans := make([]*models.TravelPlan, 0, len(travelers)*perTraveler)
	for _, t := range travelers {
		for i := 0; i < perTraveler; i++ {
			p, err := s.factory.CreateTravelPlan(t)
			if err != nil {
				return plans, err
			}
			plans = append(plans, p)
		}
	}
	return plans, nil
}

// SeedMatches sends up to three requests per plan, accepts one of them and
// completes and reviews a completeRatio share of the matched plans.
func (s *Seeder) SeedMatches(ctx context.Context, travelers []*models.Traveler, plans []*models.TravelPlan, completeRatio float64, stats *Stats) error {
	if len(travelers) < 2 {
		return nil
	}
	rng := s.factory.rng
	for _, plan := range plans {
		var sent []*models.BuddyRequest
		for _, idx := range rng.Perm(len(travelers)) {
			requester := travelers[idx]
			if requester.ID == plan.TravelerID {
				continue
			}
			req, err := s.requests.SendRequest(ctx, identityOf(requester), plan.ID, s.factory.RequestMessage())
			if err != nil {
				return err
			}
			sent = append(sent, req)
			stats.Requests++
			if len(sent) == 3 {
				break
			}
		}

		// a third of the plans keep all of their requests pending
		if len(sent) == 0 || rng.Intn(3) == 0 {
			continue
		}

		owner := travelerByID(travelers, plan.TravelerID)
		chosen := sent[rng.Intn(len(sent))]
		result, err := s.requests.Respond(ctx, identityOf(owner), chosen.ID, models.BuddyRequestStatusAccepted)
		if err != nil {
			return err
		}
		stats.Matches++

		if rng.Float64() >= completeRatio {
			continue
		}
		if _, err := s.trips.CompleteTravelPlan(ctx, identityOf(owner), plan.ID); err != nil {
			return err
		}
		stats.Completed++

		buddy := travelerByID(travelers, chosen.RequesterID)
		for _, reviewer := range []*models.Traveler{owner, buddy} {
			rating := s.factory.Rating()
			_, err := s.reviews.CreateReview(ctx, identityOf(reviewer), result.TravelBuddy.ID, service.ReviewInput{
				Rating:  rating,
				Comment: s.factory.ReviewComment(rating),
			})
			if err != nil {
				return err
			}
			stats.Reviews++
		}
	}
	return nil
}

func identityOf(t *models.Traveler) models.Identity {
	return models.Identity{UserID: t.UserID, Email: t.Email, Role: models.RoleTraveler}
}

func travelerByID(travelers []*models.Traveler, id uint) *models.Traveler {
	for _, t := range travelers {
		if t.ID == id {
			return t
		}
	}
	return nil
}
