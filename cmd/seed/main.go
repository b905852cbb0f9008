package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/oksasatya/go-commerce-api/config"
	"github.com/oksasatya/go-commerce-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	dsn := cfg.PostgresDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "admin@example.com"
	password := "password123"
	name := "Admin"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (name, email, password_hash, is_admin)
		VALUES ($1, $2, $3, true)
		ON CONFLICT (email) DO UPDATE SET is_admin = true
		RETURNING id
	`, name, email, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed admin user: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s password=%s\n", id, email, password)

	// Base top-level categories
	for _, c := range []struct{ name, slug string }{
		{"Electronics", "electronics"},
		{"Clothing", "clothing"},
		{"Home & Garden", "home-garden"},
	} {
		var catID string
		if err := db.QueryRow(`
			INSERT INTO categories (name, slug)
			VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, c.name, c.slug).Scan(&catID); err != nil {
			log.Fatalf("failed to seed category %q: %v", c.name, err)
		}
		fmt.Printf("seeded category: id=%s slug=%s\n", catID, c.slug)
	}
}
