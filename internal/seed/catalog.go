package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"travelbuddy/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed plans.yaml
var defaultCatalog []byte

// PlanCatalogEntry is one subscription tier in a catalog file.
type PlanCatalogEntry struct {
	Name           string   `yaml:"name"`
	Price          float64  `yaml:"price"`
	DurationInDays int      `yaml:"duration_in_days"`
	Features       []string `yaml:"features"`
	Recommended    bool     `yaml:"recommended"`
	Color          string   `yaml:"color"`
}

type planCatalog struct {
	Plans []PlanCatalogEntry `yaml:"plans"`
}

// ParsePlanCatalog decodes a YAML catalog and checks every entry.
func ParsePlanCatalog(raw []byte) ([]PlanCatalogEntry, error) {
	var catalog planCatalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("parse plan catalog: %w", err)
	}
	if len(catalog.Plans) == 0 {
		return nil, fmt.Errorf("plan catalog has no plans")
	}

	seen := make(map[string]bool, len(catalog.Plans))
	for i, entry := range catalog.Plans {
		name := strings.TrimSpace(entry.Name)
		switch {
		case name == "":
			return nil, fmt.Errorf("plan catalog entry %d has no name", i)
		case entry.Price <= 0:
			return nil, fmt.Errorf("plan %q must have a positive price", name)
		case entry.DurationInDays <= 0:
			return nil, fmt.Errorf("plan %q must last at least one day", name)
		case seen[strings.ToLower(name)]:
			return nil, fmt.Errorf("plan %q is listed twice", name)
		}
		seen[strings.ToLower(name)] = true
		catalog.Plans[i].Name = name
	}
	return catalog.Plans, nil
}

// LoadPlanCatalog reads the catalog at path, or the built-in one when path is empty.
func LoadPlanCatalog(path string) ([]PlanCatalogEntry, error) {
	if path == "" {
		return ParsePlanCatalog(defaultCatalog)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan catalog: %w", err)
	}
	return ParsePlanCatalog(raw)
}

// SubscriptionPlans upserts the catalog by plan name. Soft-deleted plans
// listed in the catalog are restored.
func SubscriptionPlans(db *gorm.DB, entries []PlanCatalogEntry) error {
	for _, entry := range entries {
		plan := models.SubscriptionPlan{
			Name:           entry.Name,
			Price:          entry.Price,
			DurationInDays: entry.DurationInDays,
			Features:       datatypes.JSONSlice[string](entry.Features),
			Recommended:    entry.Recommended,
			Color:          entry.Color,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"price", "duration_in_days", "features", "recommended", "color", "updated_at", "deleted_at",
			}),
		}).Create(&plan).Error; err != nil {
			return fmt.Errorf("seed subscription plan %s: %w", entry.Name, err)
		}
	}
	return nil
}

// EnsureSubscriptionPlans seeds the catalog only when no plan exists yet.
// It reports how many plans were written.
func EnsureSubscriptionPlans(db *gorm.DB, path string) (int, error) {
	var count int64
	if err := db.Model(&models.SubscriptionPlan{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	entries, err := LoadPlanCatalog(path)
	if err != nil {
		return 0, err
	}
	if err := SubscriptionPlans(db, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}
