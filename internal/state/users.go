package state

import "github.com/recipelib/recipes-go/internal/action"

// UserState tracks the auth lifecycle.
type UserState struct {
	LoggedIn bool
	Pending  bool
	Error    string
}

// ReduceUsers returns the next user state; unrecognised signals return s.
func ReduceUsers(s UserState, a action.Action) UserState {
	switch a := a.(type) {
	case action.RegisterRequested, action.LoginRequested:
		s.Pending = true
		s.Error = ""
	case action.RegisterSucceeded:
		s.Pending = false
	case action.LoginSucceeded:
		s.Pending = false
		s.LoggedIn = true
	case action.RegisterFailed:
		s.Pending = false
		s.Error = action.Message(a)
	case action.LoginFailed:
		s.Pending = false
		s.Error = action.Message(a)
	case action.Logout:
		s.LoggedIn = false
	}
	return s
}
