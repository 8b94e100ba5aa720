// Package main provides admin management utilities for TravelBuddy.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"travelbuddy/internal/config"
	"travelbuddy/internal/database"
	"travelbuddy/internal/models"
	"travelbuddy/internal/repository"
	"travelbuddy/internal/service"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin/main.go create <email> <password> [ADMIN|SUPER_ADMIN]  - Create an admin account")
	fmt.Println("  go run ./cmd/admin/main.go set-role <email> <role>                        - Change an account role")
	fmt.Println("  go run ./cmd/admin/main.go set-status <user_id> <ACTIVE|BLOCKED>          - Block or reactivate an account")
	fmt.Println("  go run ./cmd/admin/main.go list-admins                                    - List all admins")
}

func main() {
	if len(os.Args) < 2 {
		usage()
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

	accounts := service.NewAccountService(repository.NewStore(db, repository.StoreOptions{}))
	if err := run(context.Background(), accounts, os.Args[1:]); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, accounts *service.AccountService, args []string) error {
	switch args[0] {
	case "create":
		if len(args) < 3 {
			return fmt.Errorf("usage: create <email> <password> [ADMIN|SUPER_ADMIN]")
		}
		role := models.RoleAdmin
		if len(args) > 3 {
			role = models.UserRole(strings.ToUpper(args[3]))
		}
		created, err := accounts.EnsureAdmin(ctx, args[1], args[2], role)
		if err != nil {
			return err
		}
		if !created {
			fmt.Printf("Account %s already exists\n", args[1])
			return nil
		}
		fmt.Printf("Created %s account %s\n", role, args[1])

	case "set-role":
		if len(args) < 3 {
			return fmt.Errorf("usage: set-role <email> <role>")
		}
		user, err := accounts.SetRole(ctx, args[1], models.UserRole(strings.ToUpper(args[2])))
		if err != nil {
			return err
		}
		fmt.Printf("User %s (ID: %d) is now %s\n", user.Email, user.ID, user.Role)

	case "set-status":
		if len(args) < 3 {
			return fmt.Errorf("usage: set-status <user_id> <ACTIVE|BLOCKED>")
		}
		id, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[1])
		}
		user, err := accounts.SetStatus(ctx, uint(id), models.UserStatus(strings.ToUpper(args[2])))
		if err != nil {
			return err
		}
		fmt.Printf("User %s (ID: %d) is now %s\n", user.Email, user.ID, user.Status)

	case "list-admins":
		admins, err := accounts.ListAdmins(ctx)
		if err != nil {
			return err
		}
		if len(admins) == 0 {
			fmt.Println("No admins found")
			return nil
		}
		fmt.Println("Admins:")
		for _, a := range admins {
			fmt.Printf("  ID: %d, Email: %s, Role: %s, Status: %s\n", a.ID, a.Email, a.Role, a.Status)
		}

	default:
		usage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
	return nil
}
