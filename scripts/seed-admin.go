package main

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Seeds the first admin account. Approval is admin-gated, so a fresh
// deployment needs one row created out of band.
func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: go run scripts/seed-admin.go <name> <identifier>\n")
		os.Exit(1)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Fprintf(os.Stderr, "Error: DATABASE_URL is not set\n")
		os.Exit(1)
	}

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	var id int64
	err = db.QueryRow(
		`INSERT INTO users (name, identifier, is_approved, is_admin)
		 VALUES ($1, $2, TRUE, TRUE)
		 ON CONFLICT (identifier) DO UPDATE SET is_approved = TRUE, is_admin = TRUE
		 RETURNING id`,
		os.Args[1], os.Args[2],
	).Scan(&id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("admin user %d ready (%s)\n", id, os.Args[2])
}
