// Package effect runs the asynchronous side of each request signal: one
// API call, then a success or failure signal, plus the shared auth policy.
package effect

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/recipelib/recipes-go/internal/action"
	"github.com/recipelib/recipes-go/internal/transport"
)

// API is the transport surface the handlers call.
type API interface {
	Get(ctx context.Context, path string, auth transport.AuthMode) (*transport.Response, error)
	Post(ctx context.Context, path string, body any, auth transport.AuthMode) (*transport.Response, error)
}

// Session holds the access token.
type Session interface {
	Token() (string, bool)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Navigator moves the client to another view.
type Navigator interface {
	Navigate(route string)
}

// Dispatcher accepts follow-up signals.
type Dispatcher interface {
	Dispatch(a action.Action)
}

// Deps are the collaborators shared by every handler.
type Deps struct {
	API        API
	Session    Session
	Navigator  Navigator
	Dispatcher Dispatcher
	Log        *zap.Logger
}

// Runner starts a handler for every request signal it is given. Handlers for
// different signals, or repeated signals, run concurrently; each one makes a
// single API call and runs to completion. There is no cancellation.
type Runner struct {
	ctx   context.Context
	deps  Deps
	group errgroup.Group
}

// NewRunner creates a Runner whose handlers issue requests under ctx.
func NewRunner(ctx context.Context, deps Deps) *Runner {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Runner{ctx: ctx, deps: deps}
}

// Handle starts the handler matching a, if any. It never blocks on the
// handler, so it is safe to call from a store listener.
func (r *Runner) Handle(a action.Action) {
	var run func(ctx context.Context, log *zap.Logger)

	switch a := a.(type) {
	case action.ListRecipesRequested:
		run = r.listRecipes
	case action.GetRecipeRequested:
		run = func(ctx context.Context, log *zap.Logger) { r.getRecipe(ctx, log, a) }
	case action.CreateRecipeRequested:
		run = func(ctx context.Context, log *zap.Logger) { r.createRecipe(ctx, log, a) }
	case action.RegisterRequested:
		run = func(ctx context.Context, log *zap.Logger) { r.register(ctx, log, a) }
	case action.LoginRequested:
		run = func(ctx context.Context, log *zap.Logger) { r.login(ctx, log, a) }
	case action.Logout:
		run = r.logout
	default:
		return
	}

	log := r.deps.Log.With(zap.String("run", uuid.NewString()), zap.String("action", string(a.Kind())))
	r.group.Go(func() error {
		log.Debug("handler started")
		run(r.ctx, log)
		log.Debug("handler finished")
		return nil
	})
}

// Wait blocks until every started handler, including any it triggered, has
// finished.
func (r *Runner) Wait() {
	_ = r.group.Wait()
}

func (r *Runner) dispatch(a action.Action) {
	r.deps.Dispatcher.Dispatch(a)
}

// fail applies the shared failure policy and emits failed last:
//   - a 401 on an authenticated call dispatches Logout first;
//   - a non-empty "errors" field in the response body goes to onErrors, once;
//   - failures that are not API errors are logged as unexpected.
func (r *Runner) fail(log *zap.Logger, err error, auth transport.AuthMode, onErrors action.ValidationCallback, failed action.Failure) {
	terr, ok := transport.AsError(err)
	if !ok {
		log.Error("unexpected handler failure", zap.Error(err))
		r.dispatch(failed)
		return
	}

	log.Warn("api call failed", zap.Int("status", terr.StatusCode), zap.Error(err))

	if auth == transport.Authenticated && terr.Unauthorized() {
		r.dispatch(action.Logout{})
	}

	if onErrors != nil {
		if verrs := terr.ValidationErrors(); len(verrs) > 0 {
			onErrors(verrs)
		}
	}

	r.dispatch(failed)
}
