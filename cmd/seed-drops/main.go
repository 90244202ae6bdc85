// Package main implements a standalone seed script that populates the
// storefront database with upcoming drop announcements for local development.
//
// Run: go run ./cmd/seed-drops
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/exclusivos-baez/storefront-api/pkg/slug"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type dropDef struct {
	Title       string
	Description string
	DaysOut     int
}

var drops = []dropDef{
	{"Edición Limitada Nº2", "Segunda edición limitada de la colección insignia.", 3},
	{"Colección Verano", "Piezas frescas para la temporada de calor.", 7},
	{"Gorra Exclusiva Dorada", "Colaboración dorada, tirada única.", 14},
	{"Drop Aniversario", "Celebración anual con piezas numeradas.", 30},
}

func main() {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("POSTGRES_USER", "storefront"),
		getEnv("POSTGRES_PASSWORD", "storefront_secret"),
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("STOREFRONT_DB_NAME", "storefront_db"),
		getEnv("POSTGRES_SSL_MODE", "disable"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	now := time.Now().UTC()
	var inserted int
	for _, d := range drops {
		tag, err := pool.Exec(ctx, `
			INSERT INTO drops (id, slug, title, description, release_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (slug) DO NOTHING`,
			uuid.New().String(),
			slug.Generate(d.Title),
			d.Title,
			d.Description,
			now.Add(time.Duration(d.DaysOut)*24*time.Hour),
			now,
		)
		if err != nil {
			log.Fatalf("insert drop %q: %v", d.Title, err)
		}
		inserted += int(tag.RowsAffected())
	}

	log.Printf("seeded %d drops (%d already present)", inserted, len(drops)-inserted)
}
