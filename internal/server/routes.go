package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /health", s.handleHealth)

	// Todos.
	mux.HandleFunc("GET /api/todos", s.handleListTodos)
	mux.HandleFunc("POST /api/todos", s.handleCreateTodo)
	mux.HandleFunc("GET /api/todos/{id}", s.handleGetTodo)
	mux.HandleFunc("PUT /api/todos/{id}", s.handleUpdateTodo)
	mux.HandleFunc("DELETE /api/todos/{id}", s.handleDeleteTodo)

	// Locally hosted attachments.
	mux.HandleFunc("GET /media/{key...}", s.handleMedia)

	return mux
}
