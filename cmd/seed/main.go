// Command seed bootstraps a fresh installation with an admin user and,
// optionally, a demo organization. Safe to run repeatedly.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/mkarlsen/kontor/internal/app"
	"github.com/mkarlsen/kontor/internal/config"
	"github.com/mkarlsen/kontor/internal/database"
	"github.com/mkarlsen/kontor/internal/domain"
	"github.com/mkarlsen/kontor/internal/logging"
)

func main() {
	email := flag.String("email", os.Getenv("SEED_ADMIN_EMAIL"), "admin email address")
	password := flag.String("password", os.Getenv("SEED_ADMIN_PASSWORD"), "admin password")
	name := flag.String("name", "Administrator", "admin display name")
	demo := flag.Bool("demo", false, "also create a demo organization")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	if *email == "" || *password == "" {
		slog.Error("Both -email and -password (or SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD) are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	users := database.NewUserRepo(pool)
	admin, err := seedAdmin(ctx, users, *email, *password, *name)
	if err != nil {
		slog.Error("Failed to seed admin user", "error", err)
		os.Exit(1)
	}

	perms := database.NewPermissionRepo(pool)
	if err := seedAdminGrants(ctx, perms, admin); err != nil {
		slog.Error("Failed to seed admin grants", "error", err)
		os.Exit(1)
	}

	if *demo {
		orgs := database.NewOrganizationRepo(pool)
		if err := seedDemoOrganization(ctx, orgs); err != nil {
			slog.Error("Failed to seed demo organization", "error", err)
			os.Exit(1)
		}
	}
}

func seedAdmin(ctx context.Context, users *database.UserRepo, email, password, name string) (*domain.User, error) {
	if existing, err := users.GetByEmail(ctx, email); err == nil {
		slog.Info("Admin user already exists, skipping", "email", email)
		return existing, nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := app.HashPassword(password)
	if err != nil {
		return nil, err
	}

	admin := &domain.User{
		Email:        email,
		FullName:     name,
		PasswordHash: hash,
		Roles:        []string{domain.RoleAdmin},
		Active:       true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return nil, err
	}

	slog.Info("Created admin user", "email", email, "user_id", admin.ID.String())
	return admin, nil
}

// seedAdminGrants gives the bootstrap admin the explicit bank-account grants.
// Further grants are managed through the permissions API.
func seedAdminGrants(ctx context.Context, perms *database.PermissionRepo, admin *domain.User) error {
	for _, action := range []string{"read", "write"} {
		if err := perms.Grant(ctx, admin.ID, "bank_account", action); err != nil {
			return err
		}
	}
	return nil
}

const demoOrganizationName = "Demo Regnskap AS"

func seedDemoOrganization(ctx context.Context, orgs *database.OrganizationRepo) error {
	existing, err := orgs.List(ctx)
	if err != nil {
		return err
	}
	for _, org := range existing {
		if org.Name == demoOrganizationName {
			slog.Info("Demo organization already exists, skipping")
			return nil
		}
	}

	org := &domain.Organization{
		Name:         demoOrganizationName,
		TaxNumber:    "999888777",
		VATID:        "NO999888777MVA",
		Street:       "Storgata 1",
		PostalCode:   "0155",
		City:         "Oslo",
		ContactName:  "Kari Nordmann",
		ContactEmail: "kari@demo-regnskap.example",
		Notes:        "Seeded demo data, safe to delete.",
	}
	if err := orgs.Create(ctx, org); err != nil {
		return err
	}

	slog.Info("Created demo organization", "org_id", org.ID.String())
	return nil
}
