package state

import (
	"sync"

	"github.com/recipelib/recipes-go/internal/action"
)

// State is the root snapshot handed to subscribers.
type State struct {
	Recipes RecipeState
	Users   UserState
}

// NewState builds the initial root state. loggedIn reflects whether a
// persisted session token was found at startup.
func NewState(loggedIn bool) State {
	return State{
		Recipes: InitialRecipeState(),
		Users:   UserState{LoggedIn: loggedIn},
	}
}

// Reduce applies a to every domain.
func Reduce(s State, a action.Action) State {
	return State{
		Recipes: ReduceRecipes(s.Recipes, a),
		Users:   ReduceUsers(s.Users, a),
	}
}

// Listener observes each dispatched signal together with the state it produced.
type Listener func(a action.Action, s State)

// Store serialises dispatches: each signal is reduced and fanned out to
// listeners before the next one is processed. Listeners run under the store
// lock and must not call Dispatch synchronously.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners []Listener
}

// NewStore creates a store holding initial.
func NewStore(initial State) *Store {
	return &Store{state: initial}
}

// Subscribe registers l. Listeners are called in registration order.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Dispatch reduces a into the current state and notifies listeners.
func (s *Store) Dispatch(a action.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Reduce(s.state, a)
	for _, l := range s.listeners {
		l(a, s.state)
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
