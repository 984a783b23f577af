// Package main provides account management utilities for Atelier. There is no
// public signup, so this is the only way to create a superuser able to write
// portfolio content.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"atelier/internal/config"
	"atelier/internal/database"
	"atelier/internal/models"
	"atelier/internal/repository"
	"atelier/internal/service"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin/main.go createsuperuser <username> <email> <password>  - Create a superuser")
		fmt.Println("  go run ./cmd/admin/main.go promote <user_id>                              - Promote user to superuser")
		fmt.Println("  go run ./cmd/admin/main.go demote <user_id>                               - Demote user from superuser")
		fmt.Println("  go run ./cmd/admin/main.go list                                           - List all superusers")
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
	case "createsuperuser":
		if len(os.Args) < 5 {
			fmt.Println("Usage: go run ./cmd/admin/main.go createsuperuser <username> <email> <password>")
			os.Exit(1)
		}
		createSuperuser(db, cfg, os.Args[2], os.Args[3], os.Args[4])

	case "promote":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin/main.go promote <user_id>")
			os.Exit(1)
		}
		setSuperuser(db, os.Args[2], true)

	case "demote":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin/main.go demote <user_id>")
			os.Exit(1)
		}
		setSuperuser(db, os.Args[2], false)

	case "list":
		listSuperusers(db)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func createSuperuser(db *gorm.DB, cfg *config.Config, username, email, password string) {
	authService := service.NewAuthService(repository.NewUserRepository(db), cfg)
	user, err := authService.RegisterSuperuser(context.Background(), username, email, password)
	if err != nil {
		var fieldErrs models.FieldErrors
		if errors.As(err, &fieldErrs) {
			for field, msgs := range fieldErrs {
				for _, msg := range msgs {
					fmt.Printf("%s: %s\n", field, msg)
				}
			}
			os.Exit(1)
		}
		log.Fatalf("Failed to create superuser: %v", err)
	}

	fmt.Printf("Created superuser %s (ID: %d)\n", user.Username, user.ID)
}

func setSuperuser(db *gorm.DB, userID string, superuser bool) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User with ID %s not found\n", userID)
		} else {
			log.Fatalf("Database error: %v", err)
		}
		os.Exit(1)
	}

	if user.IsSuperuser == superuser {
		fmt.Printf("User %s (ID: %d) already has the requested role\n", user.Username, user.ID)
		return
	}

	user.IsSuperuser = superuser
	if err := db.Save(&user).Error; err != nil {
		log.Fatalf("Failed to update user: %v", err)
	}

	if superuser {
		fmt.Printf("Promoted %s (ID: %d) to superuser\n", user.Username, user.ID)
	} else {
		fmt.Printf("Demoted %s (ID: %d) from superuser\n", user.Username, user.ID)
	}
}

func listSuperusers(db *gorm.DB) {
	var users []models.User
	if err := db.Where("is_superuser = ?", true).Find(&users).Error; err != nil {
		log.Fatalf("Failed to fetch superusers: %v", err)
	}

	if len(users) == 0 {
		fmt.Println("No superusers found")
		return
	}

	for _, u := range users {
		fmt.Printf("ID: %d | Username: %s | Email: %s\n", u.ID, u.Username, u.Email)
	}
}
