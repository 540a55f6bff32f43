// seed-admin creates or updates the back-office console user.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
//
// Username and password come from SEED_ADMIN_USERNAME / SEED_ADMIN_PASSWORD;
// defaults are for local development only.
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/models"
)

const (
	defaultAdminUsername = "factoryAdmin"
	defaultAdminPassword = "F@ctoryAdmin"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	models.MigrateTable()

	username := os.Getenv("SEED_ADMIN_USERNAME")
	if username == "" {
		username = defaultAdminUsername
	}
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = defaultAdminPassword
	}

	user, err := models.CreateOrUpdateUser(ctx, db, username, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed admin user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded admin user: username=%q (id=%d)\n", user.Username, user.ID)
}
