// Platform operator CLI: tenant management and identity-mapping maintenance
// that should not be reachable from the HTTP surface.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"voisafe/backend/internal/auth"
	"voisafe/backend/internal/models"
	"voisafe/backend/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// No redis and no cipher needed for the CLI paths.
	storageSvc := storage.NewStorageService(db, nil, nil)
	ctx := context.Background()

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands: seed-admin, verify-org, suspend-org, activate-org, purge-mappings, reconcile")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "seed-admin":
		if len(os.Args) != 6 {
			fmt.Println("Usage: admin seed-admin <name> <email> <password> <org-slug>")
			os.Exit(1)
		}
		if err := seedAdmin(ctx, storageSvc, os.Args[2], os.Args[3], os.Args[4], os.Args[5]); err != nil {
			log.Fatalf("Error seeding admin: %v", err)
		}
		fmt.Printf("Admin %s created.\n", os.Args[3])
	case "verify-org":
		requireSlugArg()
		if err := setOrgVerified(ctx, storageSvc, os.Args[2]); err != nil {
			log.Fatalf("Error verifying organization: %v", err)
		}
		fmt.Printf("Organization %s has been verified.\n", os.Args[2])
	case "suspend-org":
		requireSlugArg()
		if err := setOrgStatus(ctx, storageSvc, os.Args[2], models.OrgStatusSuspended); err != nil {
			log.Fatalf("Error suspending organization: %v", err)
		}
		fmt.Printf("Organization %s has been suspended.\n", os.Args[2])
	case "activate-org":
		requireSlugArg()
		if err := setOrgStatus(ctx, storageSvc, os.Args[2], models.OrgStatusActive); err != nil {
			log.Fatalf("Error activating organization: %v", err)
		}
		fmt.Printf("Organization %s has been activated.\n", os.Args[2])
	case "purge-mappings":
		purged, err := storageSvc.PurgeExpiredMappings(ctx, time.Now())
		if err != nil {
			log.Fatalf("Error purging mappings: %v", err)
		}
		fmt.Printf("Purged %d expired identity mappings.\n", purged)
	case "reconcile":
		orphans, err := storageSvc.FindUnmappedTrackingIDs(ctx)
		if err != nil {
			log.Fatalf("Error reconciling mappings: %v", err)
		}
		if len(orphans) == 0 {
			fmt.Println("All complaints have an identity mapping.")
			return
		}
		fmt.Printf("%d complaints without an identity mapping:\n", len(orphans))
		for _, id := range orphans {
			fmt.Println(" ", id)
		}
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func requireSlugArg() {
	if len(os.Args) != 3 {
		fmt.Printf("Usage: admin %s <org-slug>\n", os.Args[1])
		os.Exit(1)
	}
}

func seedAdmin(ctx context.Context, s storage.Storage, name, email, password, orgSlug string) error {
	org, err := s.GetOrganizationBySlug(ctx, orgSlug)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.CreateUser(ctx, &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		OrgID:        org.ID,
		College:      org.Name,
		IsActive:     true,
		IsVerified:   true,
	})
}

func setOrgVerified(ctx context.Context, s storage.Storage, slug string) error {
	org, err := s.GetOrganizationBySlug(ctx, slug)
	if err != nil {
		return err
	}
	org.IsVerified = true
	return s.UpdateOrganization(ctx, org)
}

func setOrgStatus(ctx context.Context, s storage.Storage, slug, status string) error {
	org, err := s.GetOrganizationBySlug(ctx, slug)
	if err != nil {
		return err
	}
	org.Status = status
	return s.UpdateOrganization(ctx, org)
}
