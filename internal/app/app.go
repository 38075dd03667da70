// Package app wires the session, transport, state store and effect runner
// into one client.
package app

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/recipelib/recipes-go/internal/action"
	"github.com/recipelib/recipes-go/internal/config"
	"github.com/recipelib/recipes-go/internal/effect"
	"github.com/recipelib/recipes-go/internal/navigation"
	"github.com/recipelib/recipes-go/internal/session"
	"github.com/recipelib/recipes-go/internal/state"
	"github.com/recipelib/recipes-go/internal/transport"
)

// App is a running client.
type App struct {
	Store   *state.Store
	Session *session.Session
	History *navigation.History

	runner *effect.Runner
	closer io.Closer
	log    *zap.Logger
}

// Option adjusts how New builds the App.
type Option func(*options)

type options struct {
	store      session.Store
	transports []transport.Option
}

// WithSessionStore bypasses the configured session backend.
func WithSessionStore(s session.Store) Option {
	return func(o *options) { o.store = s }
}

// WithTransportOptions forwards options to the transport client.
func WithTransportOptions(opts ...transport.Option) Option {
	return func(o *options) { o.transports = append(o.transports, opts...) }
}

// New builds an App from cfg. Handlers issue their requests under ctx.
func New(ctx context.Context, cfg config.Config, log *zap.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var closer io.Closer
	store := o.store
	if store == nil {
		var err error
		store, closer, err = OpenStore(ctx, cfg.Session)
		if err != nil {
			return nil, err
		}
	}

	sess, err := session.Open(ctx, store)
	if err != nil {
		closeQuietly(closer)
		return nil, fmt.Errorf("loading session: %w", err)
	}

	api, err := transport.New(cfg.APIURL, sess, append([]transport.Option{transport.WithLogger(log)}, o.transports...)...)
	if err != nil {
		closeQuietly(closer)
		return nil, err
	}

	_, loggedIn := sess.Token()
	start := navigation.RouteLogin
	if loggedIn {
		start = navigation.RouteRecipes
	}

	a := &App{
		Store:   state.NewStore(state.NewState(loggedIn)),
		Session: sess,
		History: navigation.NewHistory(start, log),
		closer:  closer,
		log:     log,
	}
	a.runner = effect.NewRunner(ctx, effect.Deps{
		API:        api,
		Session:    sess,
		Navigator:  a.History,
		Dispatcher: a.Store,
		Log:        log,
	})
	a.Store.Subscribe(func(act action.Action, _ state.State) {
		log.Debug("dispatch", zap.String("action", string(act.Kind())))
		a.runner.Handle(act)
	})

	return a, nil
}

// OpenStore builds the session store named by cfg. The closer is nil for
// backends without resources to release.
func OpenStore(ctx context.Context, cfg config.SessionConfig) (session.Store, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return session.NewMemoryStore(), nil, nil
	case config.BackendFile:
		return session.NewFileStore(cfg.Path), nil, nil
	case config.BackendSQLite, config.BackendMySQL:
		db, err := session.NewDB(ctx, cfg.Backend, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		store, err := session.NewSQLStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", session.ErrUnknownBackend, cfg.Backend)
	}
}

// Dispatch sends a signal into the store without waiting for its handler.
func (a *App) Dispatch(act action.Action) {
	a.Store.Dispatch(act)
}

// Do dispatches act and waits for every handler it set off, including a
// forced logout, then returns the resulting state.
func (a *App) Do(act action.Action) state.State {
	a.Store.Dispatch(act)
	a.runner.Wait()
	return a.Store.State()
}

// Wait blocks until all in-flight handlers finish.
func (a *App) Wait() {
	a.runner.Wait()
}

// Close waits for in-flight handlers and releases the session backend.
func (a *App) Close() error {
	a.runner.Wait()
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

func closeQuietly(c io.Closer) {
	if c != nil {
		c.Close()
	}
}
