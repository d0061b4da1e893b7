package registry

import (
	"context"
	"fmt"
	"log/slog"

	"crateweld/internal/step"
)

// Module is the interface every step module implements to be registered.
type Module interface {
	Register(r *Registry)
}

// Handler executes one planned step.
type Handler interface {
	Execute(ctx context.Context, s step.Step) error
}

// Registry holds the registered handlers for a single application
// instance.
type Registry struct {
	handlers map[step.Kind]Handler
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{handlers: make(map[step.Kind]Handler)}
}

// RegisterHandler wires a handler to a node kind. Registering the same
// kind twice is a programming error.
func (r *Registry) RegisterHandler(kind step.Kind, h Handler) {
	if _, exists := r.handlers[kind]; exists {
		panic(fmt.Sprintf("handler for node kind '%s' already registered", kind))
	}
	slog.Debug("Registering step handler.", "kind", string(kind))
	r.handlers[kind] = h
}

// HandlerFor returns the handler for a node kind, or nil when none is
// registered.
func (r *Registry) HandlerFor(kind step.Kind) Handler {
	return r.handlers[kind]
}
