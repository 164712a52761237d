package seed

import (
	"fmt"
	"os"

	"hushwall/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gopkg.in/yaml.v3"
)

// BuiltInCategories are the permanent confession categories every deployment
// starts with.
var BuiltInCategories = []string{
	"Work",
	"Family",
	"Love",
	"Money",
	"Health",
	"Friendship",
	"School",
	"Regrets",
	"Secrets",
	"Random",
}

// Categories seeds the built-in categories, upserting by name.
func Categories(db *gorm.DB) error {
	for _, name := range BuiltInCategories {
		category := models.Category{Name: models.Capitalize(name)}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&category).Error; err != nil {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
	}
	return nil
}

// Fixtures is the YAML layout accepted by LoadFixtures.
type Fixtures struct {
	Categories []string `yaml:"categories"`
	Tags       []string `yaml:"tags"`
}

// LoadFixtures seeds categories and tags from a YAML file, for deployments
// that want a taxonomy beyond the built-ins.
func LoadFixtures(db *gorm.DB, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures Fixtures
	if err := yaml.Unmarshal(raw, &fixtures); err != nil {
		return fmt.Errorf("parse fixtures: %w", err)
	}

	for _, name := range fixtures.Categories {
		category := models.Category{Name: models.Capitalize(name)}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&category).Error; err != nil {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
	}
	for _, name := range fixtures.Tags {
		tag := models.Tag{Name: name}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&tag).Error; err != nil {
			return fmt.Errorf("seed tag %q: %w", name, err)
		}
	}
	return nil
}
