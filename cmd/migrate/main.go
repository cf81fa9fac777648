package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"evote/internal/config"
	"evote/pkg/database"
	"evote/pkg/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS voters (
		id UUID PRIMARY KEY,
		admission_number TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		course TEXT NOT NULL,
		phone TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		has_voted BOOLEAN NOT NULL DEFAULT false,
		reset_token TEXT,
		reset_expires TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS ballots (
		id UUID PRIMARY KEY,
		voter_id UUID NOT NULL UNIQUE REFERENCES voters(id),
		president TEXT NOT NULL,
		vice_president TEXT NOT NULL,
		secretary_general TEXT NOT NULL,
		finance_secretary TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS candidates (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		position TEXT NOT NULL,
		UNIQUE (name, position)
	)`,
	`CREATE TABLE IF NOT EXISTS election_settings (
		id INT PRIMARY KEY CHECK (id = 1),
		is_voting_closed BOOLEAN NOT NULL DEFAULT false
	)`,
	`CREATE INDEX IF NOT EXISTS idx_voters_reset_token ON voters (reset_token) WHERE reset_token IS NOT NULL`,
}

var dropStatements = []string{
	`DROP TABLE IF EXISTS ballots`,
	`DROP TABLE IF EXISTS candidates`,
	`DROP TABLE IF EXISTS election_settings`,
	`DROP TABLE IF EXISTS voters`,
}

var seedCandidates = []struct {
	Name     string
	Position string
}{
	{"Mwangi Njoroge", "president"},
	{"Achieng Otieno", "president"},
	{"Mutua Wambua", "president"},

	{"Nyambura Muthoni", "vicePresident"},
	{"Kiptoo Langat", "vicePresident"},
	{"Nasimiyu Barasa", "vicePresident"},

	{"Kamau Karanja", "secretaryGeneral"},
	{"Wanjiku Nduta", "secretaryGeneral"},
	{"Omondi Odhiambo", "secretaryGeneral"},

	{"Makena Mwende", "financeSecretary"},
	{"Chesire Kipruto", "financeSecretary"},
	{"Amina Abdi", "financeSecretary"},
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate <up|drop|seed>")
		os.Exit(2)
	}
	command := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	switch command {
	case "up":
		err = migrateUp(ctx, db)
	case "drop":
		err = drop(ctx, db)
	case "seed":
		err = seed(ctx, db)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		os.Exit(2)
	}
	if err != nil {
		log.WithError(err).Error("Migration failed")
		os.Exit(1)
	}

	log.WithField("command", command).Info("Migration complete")
}

func migrateUp(ctx context.Context, db *database.PostgresDB) error {
	for _, stmt := range schema {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	// The gate record starts open; creating it here keeps first-boot
	// submissions from racing the app's own EnsureSettings.
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO election_settings (id, is_voting_closed)
		 VALUES (1, false)
		 ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to initialize election settings: %w", err)
	}

	return nil
}

func drop(ctx context.Context, db *database.PostgresDB) error {
	for _, stmt := range dropStatements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop tables: %w", err)
		}
	}
	return nil
}

func seed(ctx context.Context, db *database.PostgresDB) error {
	for _, c := range seedCandidates {
		_, err := db.Pool.Exec(ctx,
			`INSERT INTO candidates (name, position)
			 VALUES ($1, $2)
			 ON CONFLICT (name, position) DO NOTHING`,
			c.Name, c.Position)
		if err != nil {
			return fmt.Errorf("failed to seed candidate %s: %w", c.Name, err)
		}
	}
	return nil
}
