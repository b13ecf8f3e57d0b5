package repository

import (
	"context"
	"database/sql"
	"errors"

	"todo-api/internal/models"
	"todo-api/pkg/logger"

	"github.com/jmoiron/sqlx"
)

const todoColumns = `id, title, description, completed, urgency`

// GetAll returns all todos in insertion order. An empty table yields an empty slice.
func GetAll(ctx context.Context, db sqlx.ExtContext) ([]models.Todo, error) {
	todos := []models.Todo{}
	err := sqlx.SelectContext(ctx, db, &todos, `SELECT `+todoColumns+` FROM todos ORDER BY id`)
	if err != nil {
		logger.Error(ctx, "Repository GetAll failed", "error", err)
		return nil, err
	}
	return todos, nil
}

// Get returns the todo with the given id. found is false when no row matches.
func Get(ctx context.Context, db sqlx.ExtContext, id int64) (todo models.Todo, found bool, err error) {
	err = sqlx.GetContext(ctx, db, &todo, db.Rebind(`SELECT `+todoColumns+` FROM todos WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Todo{}, false, nil
	}
	if err != nil {
		logger.Error(ctx, "Repository Get failed", "error", err, "id", id)
		return models.Todo{}, false, err
	}
	return todo, true, nil
}

// Create inserts a new todo built from in and returns it with its assigned id.
func Create(ctx context.Context, db sqlx.ExtContext, in models.TodoInput) (models.Todo, error) {
	todo := in.Normalize()
	err := sqlx.GetContext(ctx, db, &todo.ID,
		db.Rebind(`INSERT INTO todos (title, description, completed, urgency) VALUES (?, ?, ?, ?) RETURNING id`),
		todo.Title, todo.Description, todo.Completed, todo.Urgency)
	if err != nil {
		logger.Error(ctx, "Repository Create failed", "error", err)
		return models.Todo{}, err
	}
	return todo, nil
}

// Update replaces title, description, urgency and completed of an existing todo.
// found is false, and nothing is written, when the id does not exist.
func Update(ctx context.Context, db sqlx.ExtContext, id int64, in models.TodoInput) (todo models.Todo, found bool, err error) {
	todo = in.Normalize()
	todo.ID = id
	res, err := db.ExecContext(ctx,
		db.Rebind(`UPDATE todos SET title = ?, description = ?, completed = ?, urgency = ? WHERE id = ?`),
		todo.Title, todo.Description, todo.Completed, todo.Urgency, id)
	if err != nil {
		logger.Error(ctx, "Repository Update failed", "error", err, "id", id)
		return models.Todo{}, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Todo{}, false, err
	}
	if n == 0 {
		return models.Todo{}, false, nil
	}
	return todo, true, nil
}

// Delete removes a todo by id. found is false when no row matched.
func Delete(ctx context.Context, db sqlx.ExtContext, id int64) (found bool, err error) {
	res, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM todos WHERE id = ?`), id)
	if err != nil {
		logger.Error(ctx, "Repository Delete failed", "error", err, "id", id)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
