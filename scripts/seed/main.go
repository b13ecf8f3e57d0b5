// Seed adds a handful of sample todos to the database. Run from project root: go run ./scripts/seed
package main

import (
	"context"
	"fmt"
	"os"

	"todo-api/internal/config"
	"todo-api/internal/database"
	"todo-api/internal/models"
	"todo-api/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
)

type sample struct {
	title       string
	description string
	urgency     string
}

var samples = []sample{
	{"Pay rent", "Transfer before the 5th", models.UrgencyVeryImportant},
	{"Renew passport", "Appointment needs booking weeks ahead", models.UrgencyImportant},
	{"Reply to landlord", "", models.UrgencyImportant},
	{"Clean the garage", "", models.UrgencyCanDoLater},
	{"Watch movie", "The one everyone keeps talking about", models.UrgencyCanDoLater},
}

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	db, err := database.Open(ctx, config.Get())
	if err != nil {
		fmt.Fprintln(os.Stderr, "DB connection failed:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.MigrateOrCreateSchema(ctx, db); err != nil {
		fmt.Fprintln(os.Stderr, "Schema failed:", err)
		os.Exit(1)
	}

	err = database.WithSession(ctx, db, func(tx *sqlx.Tx) error {
		for _, s := range samples {
			in := models.TodoInput{Title: s.title, Urgency: &s.urgency}
			if s.description != "" {
				in.Description = &s.description
			}
			todo, err := repository.Create(ctx, tx, in)
			if err != nil {
				return err
			}
			fmt.Printf("Inserted #%d %s\n", todo.ID, todo.Title)
		}
		return nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Insert failed:", err)
		os.Exit(1)
	}
	fmt.Printf("Done: %d todos\n", len(samples))
}
