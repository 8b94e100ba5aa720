// Package seed provides helpers to create demo data and the subscription
// plan catalog. The factories are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"travelbuddy/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded traveler.
const DemoPassword = "Travel-buddy1!"

var (
	interestPool = []string{
		"hiking", "photography", "street food", "museums", "diving", "surfing",
		"backpacking", "road trips", "wine tasting", "architecture", "festivals",
		"wildlife", "skiing", "camping", "history", "nightlife",
	}
	travelTypes = []models.TravelType{models.TravelTypeSolo, models.TravelTypeFamily, models.TravelTypeFriends}
)

// SeedOptions tune the factories.
type SeedOptions struct {
	// SkipBcrypt stores a cheap hash so large seeds finish quickly. Seeded
	// accounts cannot log in when it is set.
	SkipBcrypt bool
	// DryRun builds entities without writing them.
	DryRun bool
	// MaxDays bounds how far ahead seeded trips start.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db       *gorm.DB
	opts     SeedOptions
	rng      *rand.Rand
	password string
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)
	// #nosec G404: acceptable for seeding
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(seed)), nextID: 1000}
}

func (f *Factory) hashedPassword() string {
	if f.password != "" {
		return f.password
	}
	if f.opts.SkipBcrypt {
		f.password = "seeded-without-bcrypt"
		return f.password
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("hash demo password: %v", err)
		return ""
	}
	f.password = string(hashed)
	return f.password
}

func (f *Factory) assignID() uint {
	f.nextID++
	return f.nextID
}

func (f *Factory) pick(pool []string, n int) []string {
	out := make([]string, 0, n)
	for _, i := range f.rng.Perm(len(pool))[:n] {
		out = append(out, pool[i])
	}
	return out
}

// BuildTraveler constructs an account and its profile without persisting them.
func (f *Factory) BuildTraveler(overrides ...func(*models.Traveler)) (*models.User, *models.Traveler) {
	first, last := gofakeit.FirstName(), gofakeit.LastName()
	email := strings.ToLower(fmt.Sprintf("%s.%s%d@example.com", first, last, gofakeit.Number(100, 9999)))

	visited := f.rng.Intn(5)
	countries := make([]string, 0, visited)
	for i := 0; i < visited; i++ {
		countries = append(countries, gofakeit.Country())
	}

	traveler := &models.Traveler{
		Name:             first + " " + last,
		Email:            email,
		Bio:              gofakeit.Sentence(12),
		ProfilePhoto:     fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		ContactNumber:    gofakeit.Phone(),
		CurrentLocation:  gofakeit.City(),
		Interests:        datatypes.JSONSlice[string](f.pick(interestPool, 1+f.rng.Intn(4))),
		VisitedCountries: datatypes.JSONSlice[string](countries),
		IsSubscribed:     true,
	}
	for _, override := range overrides {
		override(traveler)
	}

	user := &models.User{
		Email:    traveler.Email,
		Password: f.hashedPassword(),
		Role:     models.RoleTraveler,
		Status:   models.UserStatusActive,
	}
	return user, traveler
}

// CreateTraveler persists a TRAVELER account with a generated profile.
func (f *Factory) CreateTraveler(overrides ...func(*models.Traveler)) (*models.Traveler, error) {
	user, traveler := f.BuildTraveler(overrides...)

	if f.opts.DryRun {
		user.ID = f.assignID()
		traveler.ID = f.assignID()
		traveler.UserID = user.ID
		log.Printf("[dry-run] CreateTraveler: %s <%s>", traveler.Name, traveler.Email)
		return traveler, nil
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		traveler.UserID = user.ID
		return tx.Create(traveler).Error
	})
	if err != nil {
		return nil, err
	}
	return traveler, nil
}

// BuildTravelPlan constructs a plan owned by owner starting within MaxDays.
func (f *Factory) BuildTravelPlan(owner *models.Traveler, overrides ...func(*models.TravelPlan)) *models.TravelPlan {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 120
	}
	start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 1+f.rng.Intn(maxDays))
	budgetMin := float64(gofakeit.Number(3, 30) * 100)

	plan := &models.TravelPlan{
		TravelerID:  owner.ID,
		Destination: gofakeit.City() + ", " + gofakeit.Country(),
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 2+f.rng.Intn(14)),
		BudgetMin:   budgetMin,
		BudgetMax:   budgetMin + float64(gofakeit.Number(1, 20)*100),
		TravelType:  travelTypes[f.rng.Intn(len(travelTypes))],
		Description: gofakeit.Paragraph(1, 3, 10, " "),
	}
	for _, override := range overrides {
		override(plan)
	}
	return plan
}

// CreateTravelPlan persists a generated plan for owner.
func (f *Factory) CreateTravelPlan(owner *models.Traveler, overrides ...func(*models.TravelPlan)) (*models.TravelPlan, error) {
	plan := f.BuildTravelPlan(owner, overrides...)
	if f.opts.DryRun {
		plan.ID = f.assignID()
		log.Printf("[dry-run] CreateTravelPlan: %s by traveler %d", plan.Destination, owner.ID)
		return plan, nil
	}
	if err := f.db.Create(plan).Error; err != nil {
		return nil, err
	}
	return plan, nil
}

// RequestMessage returns a short note a traveler might send with a buddy request.
func (f *Factory) RequestMessage() string {
	return gofakeit.Sentence(8 + f.rng.Intn(8))
}

// ReviewComment returns a comment matching rating.
func (f *Factory) ReviewComment(rating int) string {
	adjective := gofakeit.AdjectiveDescriptive()
	if rating <= 2 {
		return fmt.Sprintf("Not the best match. The trip felt %s at times.", adjective)
	}
	return fmt.Sprintf("A %s travel buddy. %s", adjective, gofakeit.Sentence(6))
}

// Rating returns a review score skewed towards positive trips.
func (f *Factory) Rating() int {
	weights := []int{1, 2, 8, 25, 40}
	n := f.rng.Intn(76)
	for i, w := range weights {
		if n < w {
			return i + 1
		}
		n -= w
	}
	return models.MaxRating
}
