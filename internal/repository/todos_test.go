package repository

import (
	"context"
	"path/filepath"
	"testing"

	"todo-api/internal/config"
	"todo-api/internal/database"
	"todo-api/internal/models"

	"github.com/jmoiron/sqlx"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, &config.Config{
		DatabaseURL: "sqlite:///" + filepath.Join(t.TempDir(), "repo.db"),
		DBPoolSize:  2,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.MigrateOrCreateSchema(ctx, db); err != nil {
		t.Fatalf("MigrateOrCreateSchema: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestCreateThenGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	created, err := Create(ctx, db, models.TodoInput{
		Title:       "Pay rent",
		Description: strPtr("before the 5th"),
		Urgency:     strPtr(models.UrgencyVeryImportant),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("Create should assign an id")
	}

	got, found, err := Get(ctx, db, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatalf("Get(%d) not found", created.ID)
	}
	if got.Title != "Pay rent" || got.Description == nil || *got.Description != "before the 5th" {
		t.Fatalf("unexpected todo: %+v", got)
	}
	if got.Urgency != models.UrgencyVeryImportant || got.Completed {
		t.Fatalf("unexpected urgency/completed: %+v", got)
	}
}

func TestCreateDefaults(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	created, err := Create(ctx, db, models.TodoInput{Title: "Watch movie"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, _, err := Get(ctx, db, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Urgency != models.DefaultUrgency {
		t.Fatalf("Urgency=%q, want %q", got.Urgency, models.DefaultUrgency)
	}
	if got.Description != nil {
		t.Fatalf("Description=%q, want nil", *got.Description)
	}
	if got.Completed {
		t.Fatal("Completed should default to false")
	}
}

func TestGetAllInsertionOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	empty, err := GetAll(ctx, db)
	if err != nil {
		t.Fatalf("GetAll empty: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("GetAll on empty table=%v, want empty non-nil slice", empty)
	}

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		if _, err := Create(ctx, db, models.TodoInput{Title: title}); err != nil {
			t.Fatalf("Create %s: %v", title, err)
		}
	}
	todos, err := GetAll(ctx, db)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(todos) != len(titles) {
		t.Fatalf("GetAll count=%d, want %d", len(todos), len(titles))
	}
	for i, title := range titles {
		if todos[i].Title != title {
			t.Fatalf("todos[%d].Title=%q, want %q", i, todos[i].Title, title)
		}
	}
}

func TestGetMissing(t *testing.T) {
	db := newTestDB(t)
	_, found, err := Get(context.Background(), db, 42)
	if err != nil {
		t.Fatalf("Get missing should not error: %v", err)
	}
	if found {
		t.Fatal("Get missing should report not found")
	}
}

func TestUpdateReplacesFields(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	created, err := Create(ctx, db, models.TodoInput{
		Title:       "draft",
		Description: strPtr("old"),
		Urgency:     strPtr(models.UrgencyImportant),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, found, err := Update(ctx, db, created.ID, models.TodoInput{
		Title:     "final",
		Completed: boolPtr(true),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !found {
		t.Fatal("Update existing should report found")
	}
	if updated.ID != created.ID || updated.Title != "final" || !updated.Completed {
		t.Fatalf("unexpected updated todo: %+v", updated)
	}

	got, _, err := Get(ctx, db, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Description != nil {
		t.Fatalf("Description=%q, full replacement should clear it", *got.Description)
	}
	if got.Urgency != models.DefaultUrgency {
		t.Fatalf("Urgency=%q, full replacement should reset to default", got.Urgency)
	}
	if got.Title != "final" || !got.Completed {
		t.Fatalf("stored todo not updated: %+v", got)
	}
}

func TestUpdateMissingLeavesTableUnchanged(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	created, err := Create(ctx, db, models.TodoInput{Title: "keep"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, found, err := Update(ctx, db, created.ID+100, models.TodoInput{Title: "ghost"})
	if err != nil {
		t.Fatalf("Update missing: %v", err)
	}
	if found {
		t.Fatal("Update missing should report not found")
	}

	todos, err := GetAll(ctx, db)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(todos) != 1 || todos[0].Title != "keep" {
		t.Fatalf("table changed: %+v", todos)
	}
}

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	created, err := Create(ctx, db, models.TodoInput{Title: "bye"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := Delete(ctx, db, created.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !found {
		t.Fatal("Delete existing should report found")
	}
	if _, found, _ := Get(ctx, db, created.ID); found {
		t.Fatal("Get after Delete should report not found")
	}

	found, err = Delete(ctx, db, created.ID)
	if err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if found {
		t.Fatal("second Delete should report not found")
	}
}

func TestOperationsInsideSession(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	var id int64
	err := database.WithSession(ctx, db, func(tx *sqlx.Tx) error {
		created, err := Create(ctx, tx, models.TodoInput{Title: "in tx"})
		if err != nil {
			return err
		}
		id = created.ID
		_, found, err := Get(ctx, tx, id)
		if err != nil {
			return err
		}
		if !found {
			t.Error("todo should be visible inside its own session")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithSession: %v", err)
	}
	if _, found, _ := Get(ctx, db, id); !found {
		t.Fatal("todo should be visible after commit")
	}
}
