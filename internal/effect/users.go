package effect

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/recipelib/recipes-go/internal/action"
	"github.com/recipelib/recipes-go/internal/model"
	"github.com/recipelib/recipes-go/internal/navigation"
	"github.com/recipelib/recipes-go/internal/transport"
)

var ErrMissingAccessToken = errors.New("login response has no access token")

func (r *Runner) register(ctx context.Context, log *zap.Logger, a action.RegisterRequested) {
	if _, err := r.deps.API.Post(ctx, PathRegister, a.Payload, transport.Anonymous); err != nil {
		r.fail(log, err, transport.Anonymous, a.OnValidationErrors, action.RegisterFailed{Err: err})
		return
	}

	log.Info("registered user", zap.String("username", a.Payload.Username))
	r.dispatch(action.RegisterSucceeded{})
	r.deps.Navigator.Navigate(navigation.RouteLogin)
}

func (r *Runner) login(ctx context.Context, log *zap.Logger, a action.LoginRequested) {
	resp, err := r.deps.API.Post(ctx, PathLogin, a.Payload, transport.Anonymous)
	if err != nil {
		r.fail(log, err, transport.Anonymous, a.OnValidationErrors, action.LoginFailed{Err: err})
		return
	}

	var body model.LoginResponse
	if err := resp.Decode(&body); err != nil {
		r.fail(log, err, transport.Anonymous, nil, action.LoginFailed{Err: err})
		return
	}
	if body.AccessToken == "" {
		r.fail(log, ErrMissingAccessToken, transport.Anonymous, nil, action.LoginFailed{Err: ErrMissingAccessToken})
		return
	}

	if err := r.deps.Session.Set(ctx, body.AccessToken); err != nil {
		err = fmt.Errorf("saving session: %w", err)
		r.fail(log, err, transport.Anonymous, nil, action.LoginFailed{Err: err})
		return
	}

	log.Info("logged in", zap.String("login", a.Payload.Login))
	r.dispatch(action.LoginSucceeded{})
	r.deps.Navigator.Navigate(navigation.RouteRecipes)
}

// logout never fails visibly: the server call is best effort and the local
// session is cleared regardless.
func (r *Runner) logout(ctx context.Context, log *zap.Logger) {
	token, _ := r.deps.Session.Token()

	if _, err := r.deps.API.Post(ctx, PathLogout, model.LogoutRequest{AccessToken: token}, transport.Authenticated); err != nil {
		log.Debug("logout call failed, clearing session anyway", zap.Error(err))
	}

	if err := r.deps.Session.Clear(ctx); err != nil {
		log.Warn("clearing persisted session", zap.Error(err))
	}

	r.deps.Navigator.Navigate(navigation.RouteLogin)
}
