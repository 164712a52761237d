// Package main provides role management utilities for Hushwall.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"hushwall/internal/config"
	"hushwall/internal/database"
	"hushwall/internal/models"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin promote <account_id> [role]  - Grant admin (or moderator) role")
		fmt.Println("  go run ./cmd/admin demote <account_id>          - Remove any staff role")
		fmt.Println("  go run ./cmd/admin list-staff                   - List all staff accounts")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	command := os.Args[1]

	switch command {
	case "promote":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin promote <account_id> [role]")
			os.Exit(1)
		}
		role := models.RoleAdmin
		if len(os.Args) > 3 {
			role = os.Args[3]
		}
		if role != models.RoleAdmin && role != models.RoleModerator {
			fmt.Printf("Unknown role: %s\n", role)
			os.Exit(1)
		}
		setRole(db, os.Args[2], role)

	case "demote":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin demote <account_id>")
			os.Exit(1)
		}
		setRole(db, os.Args[2], "")

	case "list-staff":
		listStaff(db)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func setRole(db *gorm.DB, accountID, role string) {
	var account models.Account
	if err := db.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("Account with ID %s not found\n", accountID)
		} else {
			log.Fatalf("Database error: %v", err)
		}
		os.Exit(1)
	}

	if account.Role == role {
		fmt.Printf("Account %s (ID: %d) already has role %q\n", account.Handle, account.ID, role)
		return
	}

	account.Role = role
	if err := db.Save(&account).Error; err != nil {
		log.Fatalf("Failed to update role: %v", err)
	}

	if role == "" {
		fmt.Printf("✅ Removed staff role from %s (ID: %d)\n", account.Handle, account.ID)
		return
	}
	fmt.Printf("✅ Successfully set %s (ID: %d) to %s\n", account.Handle, account.ID, role)
}

func listStaff(db *gorm.DB) {
	var staff []models.Account
	if err := db.Where("role IN ?", []string{models.RoleAdmin, models.RoleModerator}).
		Find(&staff).Error; err != nil {
		log.Fatalf("Failed to fetch staff: %v", err)
	}

	if len(staff) == 0 {
		fmt.Println("No staff accounts found")
		return
	}

	fmt.Println("Staff accounts:")
	for _, a := range staff {
		fmt.Printf("  %d\t%s\t%s\n", a.ID, a.Handle, a.Role)
	}
}
