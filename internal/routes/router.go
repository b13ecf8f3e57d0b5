package routes

import (
	"todo-api/internal/controller"
	"todo-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

func Router(h *controller.Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.AccessLog(), gin.Recovery())

	router.GET("/", h.Root)

	// Health for load balancers and K8s liveness checks
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)

	router.POST("/todos", h.CreateTodo)
	router.GET("/todos", h.ListTodos)
	router.GET("/todos/next-task", h.NextTask)
	router.GET("/todos/:id", h.GetTodo)
	router.PUT("/todos/:id", h.UpdateTodo)
	router.DELETE("/todos/:id", h.DeleteTodo)

	return router
}
