// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"hushwall/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumAccounts    int
	NumConfessions int
	ShouldClean    bool
}

var emojis = []string{"😀", "😢", "😡", "❤", "👍", "🙏", "✨", "🔥"}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d accounts and %d confessions...", opts.NumAccounts, opts.NumConfessions)
	gofakeit.Seed(time.Now().UnixNano())

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	if err := Categories(db); err != nil {
		return err
	}
	var categories []models.Category
	if err := db.Find(&categories).Error; err != nil {
		return err
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	accounts := make([]*models.Account, 0, opts.NumAccounts)
	sessions := make([]*models.Session, 0, opts.NumAccounts)
	for i := 0; i < opts.NumAccounts; i++ {
		account := &models.Account{
			Handle:   models.GenerateHandle(),
			Password: models.GeneratePassword(),
		}
		lastLogin := gofakeit.DateRange(time.Now().AddDate(0, -3, 0), time.Now())
		account.LastLogin = &lastLogin
		if err := db.Create(account).Error; err != nil {
			return fmt.Errorf("seed account: %w", err)
		}

		session := &models.Session{
			IPAddress: gofakeit.IPv4Address(),
			AccountID: &account.ID,
		}
		if err := db.Create(session).Error; err != nil {
			return fmt.Errorf("seed session: %w", err)
		}

		accounts = append(accounts, account)
		sessions = append(sessions, session)
	}
	if len(accounts) == 0 {
		return fmt.Errorf("at least one account is required to seed confessions")
	}

	for i := 0; i < opts.NumConfessions; i++ {
		author := accounts[r.Intn(len(accounts))]
		confession := &models.Confession{
			Title:      gofakeit.Sentence(4),
			Text:       gofakeit.Paragraph(3, 5, 12, " "),
			AccountID:  &author.ID,
			IsApproved: r.Intn(100) < 70,
			CreatedAt:  gofakeit.DateRange(time.Now().AddDate(0, -2, 0), time.Now()),
		}
		if len(categories) > 0 {
			confession.Categories = []models.Category{categories[r.Intn(len(categories))]}
		}
		if err := db.Create(confession).Error; err != nil {
			return fmt.Errorf("seed confession: %w", err)
		}

		for c := 0; c < r.Intn(4); c++ {
			session := sessions[r.Intn(len(sessions))]
			comment := &models.Comment{
				SessionID:    &session.ID,
				ConfessionID: confession.ID,
				Text:         gofakeit.Sentence(8),
			}
			if err := db.Create(comment).Error; err != nil {
				return fmt.Errorf("seed comment: %w", err)
			}
		}

		for e := 0; e < r.Intn(5); e++ {
			session := sessions[r.Intn(len(sessions))]
			reaction := &models.Reaction{
				SessionID:    &session.ID,
				ConfessionID: &confession.ID,
				Emoji:        emojis[r.Intn(len(emojis))],
			}
			// Session may repeat an emoji on the same target; skip those.
			if err := db.Create(reaction).Error; err != nil {
				continue
			}
		}
	}

	log.Println("🌱 Seeding complete")
	return nil
}

func clearData(db *gorm.DB) error {
	tables := []string{
		"report_voters", "reports", "reactions", "comments",
		"confession_categories", "confession_tags", "confessions",
		"tags", "categories", "blocklist_entries", "sessions", "accounts",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
