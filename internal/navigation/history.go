// Package navigation tracks the client's current view as a route history.
package navigation

import (
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// Client-side routes.
const (
	RouteLogin     = "/login"
	RouteRegister  = "/register"
	RouteRecipes   = "/recipes"
	RouteNewRecipe = "/recipes/new"
)

// RecipeRoute returns the detail route for a recipe.
func RecipeRoute(id int64) string {
	return RouteRecipes + "/" + strconv.FormatInt(id, 10)
}

// History is an in-memory navigation stack. Safe for concurrent use.
type History struct {
	mu      sync.Mutex
	entries []string
	log     *zap.Logger
}

// NewHistory creates a history positioned at start.
func NewHistory(start string, log *zap.Logger) *History {
	return &History{entries: []string{start}, log: log}
}

// Navigate pushes route as the current location.
func (h *History) Navigate(route string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.log.Debug("navigate", zap.String("from", h.entries[len(h.entries)-1]), zap.String("to", route))
	h.entries = append(h.entries, route)
}

// Location returns the current route.
func (h *History) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[len(h.entries)-1]
}

// Entries returns every route visited, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}
