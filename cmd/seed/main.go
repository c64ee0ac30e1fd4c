package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/campusbuddy/events-api/config"
	"github.com/campusbuddy/events-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "organizer@campusbuddy.dev"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var organizerID string
	err = db.QueryRow(`
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, 'organizer')
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, "Demo Organizer", email, hash).Scan(&organizerID)
	if err != nil {
		log.Fatalf("failed to seed organizer: %v", err)
	}
	fmt.Printf("seeded organizer: id=%s email=%s password=%s\n", organizerID, email, password)

	events := []struct {
		title, description, location, category string
		maxParticipants                        int
		daysAhead                              int
	}{
		{"Intro to Distributed Systems", "Guest lecture covering consensus, replication and real-world failure stories.", "Auditorium A", "academic", 120, 7},
		{"Spring Hackathon", "24 hours of building, caffeine and questionable architecture decisions.", "Innovation Lab", "technical", 60, 14},
		{"Inter-College Football Cup", "Knockout tournament, bring your own boots.", "Main Ground", "sports", 22, 21},
		{"Culture Night", "Music, dance and food stalls from every campus club.", "Open Amphitheatre", "cultural", 300, 30},
	}

	for _, e := range events {
		var id string
		err := db.QueryRow(`
			INSERT INTO events (title, description, date, location, organizer_id, max_participants, category)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, e.title, e.description, time.Now().AddDate(0, 0, e.daysAhead), e.location, organizerID, e.maxParticipants, e.category).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed event %q: %v", e.title, err)
		}
		fmt.Printf("seeded event: id=%s title=%q\n", id, e.title)
	}
}
