package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"todo-api/internal/advisor"
	"todo-api/internal/cache"
	"todo-api/internal/database"
	"todo-api/internal/models"
	"todo-api/internal/queue"
	"todo-api/internal/repository"
	"todo-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"
)

const (
	msgNotFound = "Todo not found"
	msgNoTodos  = "No todos found"
	msgInternal = "Internal Server Error"
)

var errTrailingData = errors.New("unexpected data after JSON body")

// Handler serves the todo endpoints. Cache and Events may be nil (disabled).
type Handler struct {
	DB      *sqlx.DB
	Cache   *cache.Cache
	Events  *queue.Producer
	Advisor *advisor.Advisor

	listGroup singleflight.Group
}

// Root is the liveness message.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "ToDo API is running!"})
}

// Health returns 200 if the process is alive. Used by load balancers.
func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Ready returns 200 if DB (and Redis, when enabled) are reachable.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.DB.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database ping failed"})
		return
	}
	if err := h.Cache.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "redis unavailable"})
		return
	}
	c.String(http.StatusOK, "OK")
}

// listResult is one shared database read: the encoded list and the cache generation
// observed before the read started.
type listResult struct {
	body []byte
	gen  int64
}

// ListTodos returns all todos, cache-first as raw bytes. Concurrent misses share one DB read.
func (h *Handler) ListTodos(c *gin.Context) {
	ctx := c.Request.Context()
	if b, ok := h.Cache.GetRawTodos(ctx); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", b)
		return
	}
	v, err, _ := h.listGroup.Do("todos", func() (interface{}, error) {
		readCtx := context.WithoutCancel(ctx)
		gen := h.Cache.Generation(readCtx)
		var todos []models.Todo
		err := database.WithSession(readCtx, h.DB, func(tx *sqlx.Tx) error {
			var err error
			todos, err = repository.GetAll(readCtx, tx)
			return err
		})
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(todos)
		if err != nil {
			return nil, err
		}
		return listResult{body: b, gen: gen}, nil
	})
	if err != nil {
		internalError(c, "ListTodos failed", err)
		return
	}
	res := v.(listResult)
	c.Data(http.StatusOK, "application/json; charset=utf-8", res.body)
	h.Cache.SetRawTodos(ctx, res.body, res.gen)
}

// CreateTodo validates the body, stores a new todo and returns it.
func (h *Handler) CreateTodo(c *gin.Context) {
	ctx := c.Request.Context()
	var body models.TodoInput
	if err := bindInput(c, &body); err != nil {
		validationError(c, err)
		return
	}
	var todo models.Todo
	err := database.WithSession(ctx, h.DB, func(tx *sqlx.Tx) error {
		var err error
		todo, err = repository.Create(ctx, tx, body)
		return err
	})
	if err != nil {
		internalError(c, "CreateTodo failed", err)
		return
	}
	h.afterWrite(ctx, models.ActionCreated, todo.ID, &todo)
	c.JSON(http.StatusCreated, todo)
}

// GetTodo returns one todo or 404.
func (h *Handler) GetTodo(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := parseID(c)
	if !ok {
		return
	}
	var (
		todo  models.Todo
		found bool
	)
	err := database.WithSession(ctx, h.DB, func(tx *sqlx.Tx) error {
		var err error
		todo, found, err = repository.Get(ctx, tx, id)
		return err
	})
	if err != nil {
		internalError(c, "GetTodo failed", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": msgNotFound})
		return
	}
	c.JSON(http.StatusOK, todo)
}

// UpdateTodo replaces a todo with the full payload, or 404 if it does not exist.
func (h *Handler) UpdateTodo(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := parseID(c)
	if !ok {
		return
	}
	var body models.TodoInput
	if err := bindInput(c, &body); err != nil {
		validationError(c, err)
		return
	}
	var (
		todo  models.Todo
		found bool
	)
	err := database.WithSession(ctx, h.DB, func(tx *sqlx.Tx) error {
		var err error
		todo, found, err = repository.Update(ctx, tx, id, body)
		return err
	})
	if err != nil {
		internalError(c, "UpdateTodo failed", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": msgNotFound})
		return
	}
	h.afterWrite(ctx, models.ActionUpdated, todo.ID, &todo)
	c.JSON(http.StatusOK, todo)
}

// DeleteTodo removes a todo, or 404 if it does not exist.
func (h *Handler) DeleteTodo(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := parseID(c)
	if !ok {
		return
	}
	var found bool
	err := database.WithSession(ctx, h.DB, func(tx *sqlx.Tx) error {
		var err error
		found, err = repository.Delete(ctx, tx, id)
		return err
	})
	if err != nil {
		internalError(c, "DeleteTodo failed", err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": msgNotFound})
		return
	}
	h.afterWrite(ctx, models.ActionDeleted, id, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Deleted successfully"})
}

// NextTask asks the model which todo to do next. The read session is closed before the
// model is called.
func (h *Handler) NextTask(c *gin.Context) {
	ctx := c.Request.Context()
	var todos []models.Todo
	err := database.WithSession(ctx, h.DB, func(tx *sqlx.Tx) error {
		var err error
		todos, err = repository.GetAll(ctx, tx)
		return err
	})
	if err != nil {
		internalError(c, "NextTask read failed", err)
		return
	}
	rec, err := h.Advisor.NextTask(ctx, todos)
	if errors.Is(err, advisor.ErrNoTodos) {
		c.JSON(http.StatusNotFound, gin.H{"detail": msgNoTodos})
		return
	}
	if err != nil {
		internalError(c, "NextTask model call failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendation": rec})
}

// afterWrite runs once the session has committed: drop the cached list and publish the event.
func (h *Handler) afterWrite(ctx context.Context, action string, id int64, todo *models.Todo) {
	h.Cache.InvalidateTodos(ctx)
	ev := models.TodoEvent{Action: action, ID: id, Todo: todo, OccurredAt: time.Now().UTC()}
	if err := h.Events.PublishTodoEvent(ctx, ev); err != nil {
		logger.Warn(ctx, "Todo event publish failed", "error", err, "action", action, "id", id)
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "id must be an integer"})
		return 0, false
	}
	return id, true
}

// bindInput decodes exactly one JSON document into body and runs the binding rules.
// Anything but whitespace after the document is rejected.
func bindInput(c *gin.Context, body *models.TodoInput) error {
	dec := json.NewDecoder(c.Request.Body)
	if err := dec.Decode(body); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errTrailingData
	}
	return binding.Validator.ValidateStruct(body)
}

func validationError(c *gin.Context, err error) {
	logger.Debug(c.Request.Context(), "Invalid request body", "error", err)
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
}

func internalError(c *gin.Context, msg string, err error) {
	logger.Error(c.Request.Context(), msg, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": msgInternal})
}
