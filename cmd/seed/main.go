package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/ideilsonsouza/backend/config"
	"github.com/ideilsonsouza/backend/pkg/helpers"
)

// Seeds one user per authorization tier for local development.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	seeds := []struct {
		name  string
		email string
		team  bool
		super bool
	}{
		{"Demo User", "user@example.com", false, false},
		{"Demo Team", "team@example.com", true, false},
		{"Demo Super", "super@example.com", true, true},
	}

	const password = "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	for _, s := range seeds {
		var id string
		err := db.QueryRow(`
			INSERT INTO users (name, email, password, team, super)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO UPDATE SET name=EXCLUDED.name, team=EXCLUDED.team, super=EXCLUDED.super
			RETURNING id
		`, s.name, s.email, hash, s.team, s.super).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", s.email, err)
		}
		fmt.Printf("seeded user: id=%s email=%s team=%v super=%v password=%s\n", id, s.email, s.team, s.super, password)
	}
}
