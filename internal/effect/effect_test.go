package effect

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/recipelib/recipes-go/internal/action"
	"github.com/recipelib/recipes-go/internal/model"
	"github.com/recipelib/recipes-go/internal/navigation"
	"github.com/recipelib/recipes-go/internal/session"
	"github.com/recipelib/recipes-go/internal/state"
	"github.com/recipelib/recipes-go/internal/transport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// recorder keeps the ordered trail of dispatched signals and form callbacks.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(ev string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) trail() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder) count(ev string) int {
	n := 0
	for _, e := range r.trail() {
		if e == ev {
			n++
		}
	}
	return n
}

const callbackEvent = "callback"

type harness struct {
	store   *state.Store
	runner  *Runner
	session *session.Session
	history *navigation.History
	rec     *recorder
	errs    []model.ValidationErrors
}

func newHarness(t *testing.T, token string, h http.Handler) *harness {
	t.Helper()
	srv := httptest.NewServer(h)
	return newHarnessAt(t, token, srv.URL, srv)
}

func newHarnessAt(t *testing.T, token, url string, srv *httptest.Server) *harness {
	t.Helper()
	ctx := context.Background()

	store := session.NewMemoryStore()
	require.NoError(t, store.Save(ctx, token))
	sess, err := session.Open(ctx, store)
	require.NoError(t, err)

	opts := []transport.Option{}
	if srv != nil {
		opts = append(opts, transport.WithHTTPClient(srv.Client()))
		t.Cleanup(srv.Close)
	}
	api, err := transport.New(url, sess, opts...)
	require.NoError(t, err)

	hs := &harness{
		store:   state.NewStore(state.NewState(token != "")),
		session: sess,
		history: navigation.NewHistory(navigation.RouteRecipes, zap.NewNop()),
		rec:     &recorder{},
	}
	hs.runner = NewRunner(ctx, Deps{
		API:        api,
		Session:    sess,
		Navigator:  hs.history,
		Dispatcher: hs.store,
		Log:        zap.NewNop(),
	})
	hs.store.Subscribe(func(a action.Action, _ state.State) {
		hs.rec.add(string(a.Kind()))
		hs.runner.Handle(a)
	})
	return hs
}

func (h *harness) callback() action.ValidationCallback {
	return func(errs model.ValidationErrors) {
		h.rec.add(callbackEvent)
		h.errs = append(h.errs, errs)
	}
}

func (h *harness) run(a action.Action) state.State {
	h.store.Dispatch(a)
	h.runner.Wait()
	return h.store.State()
}

// api routes each path to a handler, falling back to 404.
func api(routes map[string]http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := routes[r.Method+" "+r.URL.Path]; ok {
			h(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
}

func reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func okLogout() http.HandlerFunc { return reply(http.StatusOK, "") }

func TestListRecipes_Success(t *testing.T) {
	var auth string
	h := newHarness(t, "tok", api(map[string]http.HandlerFunc{
		"GET /api/v1/recipes": func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			io.WriteString(w, `{"recipes":[{"id":0,"name":"First","description":"One"}]}`)
		},
	}))

	s := h.run(action.ListRecipesRequested{})

	assert.Equal(t, "bearer tok", auth)
	assert.Equal(t, []model.RecipeSummary{{ID: 0, Name: "First", Description: "One"}}, s.Recipes.Recipes)
	assert.False(t, s.Recipes.Loading)
	assert.Empty(t, s.Recipes.Error)
	assert.Equal(t, []string{string(action.KindListRecipesRequest), string(action.KindListRecipesSuccess)}, h.rec.trail())
}

func TestListRecipes_ServerError(t *testing.T) {
	h := newHarness(t, "tok", api(map[string]http.HandlerFunc{
		"GET /api/v1/recipes": reply(http.StatusInternalServerError, ""),
	}))

	s := h.run(action.ListRecipesRequested{})

	assert.False(t, s.Recipes.Loading)
	assert.Equal(t, "request failed with status code 500", s.Recipes.Error)
	assert.Empty(t, s.Recipes.Recipes)
	assert.Zero(t, h.rec.count(string(action.KindLogout)))
	assert.Equal(t, "tok", mustToken(h))
}

func TestListRecipes_UnauthorizedForcesLogout(t *testing.T) {
	h := newHarness(t, "stale", api(map[string]http.HandlerFunc{
		"GET /api/v1/recipes":      reply(http.StatusUnauthorized, ""),
		"POST /api/v1/users/logout": okLogout(),
	}))

	s := h.run(action.ListRecipesRequested{})

	assert.Equal(t, []string{
		string(action.KindListRecipesRequest),
		string(action.KindLogout),
		string(action.KindListRecipesFailure),
	}, h.rec.trail())
	assert.False(t, s.Users.LoggedIn)
	_, ok := h.session.Token()
	assert.False(t, ok)
	assert.Equal(t, navigation.RouteLogin, h.history.Location())
}

func TestListRecipes_MalformedBodyEmitsFailure(t *testing.T) {
	h := newHarness(t, "tok", api(map[string]http.HandlerFunc{
		"GET /api/v1/recipes": reply(http.StatusOK, `{"recipes":`),
	}))

	s := h.run(action.ListRecipesRequested{})

	assert.False(t, s.Recipes.Loading)
	assert.Contains(t, s.Recipes.Error, "decoding response body")
	assert.Equal(t, 1, h.rec.count(string(action.KindListRecipesFailure)))
}

func TestGetRecipe_Success(t *testing.T) {
	h := newHarness(t, "tok", api(map[string]http.HandlerFunc{
		"GET /api/v1/recipes/5": reply(http.StatusOK, `{
			"id":5,"name":"Root Beer Float","servings":1,
			"ingredients":[{"ingredient":"Vanilla Ice Cream","ingredient_number":0}],
			"steps":[{"step_number":1,"instructions":"Place ice cream in glass."}]
		}`),
	}))

	s := h.run(action.GetRecipeRequested{ID: 5})

	require.NotNil(t, s.Recipes.Recipe)
	assert.Equal(t, int64(5), s.Recipes.Recipe.ID)
	assert.Equal(t, "Root Beer Float", s.Recipes.Recipe.Name)
	assert.Len(t, s.Recipes.Recipe.Steps, 1)
	assert.False(t, s.Recipes.Loading)
}

func TestGetRecipe_UnauthorizedLogoutBeforeFailure(t *testing.T) {
	var logoutBody model.LogoutRequest
	var logoutAuth string
	h := newHarness(t, "tok", api(map[string]http.HandlerFunc{
		"GET /api/v1/recipes/5": reply(http.StatusUnauthorized, ""),
		"POST /api/v1/users/logout": func(w http.ResponseWriter, r *http.Request) {
			logoutAuth = r.Header.Get("Authorization")
			json.NewDecoder(r.Body).Decode(&logoutBody)
		},
	}))

	s := h.run(action.GetRecipeRequested{ID: 5})

	assert.Equal(t, []string{
		string(action.KindGetRecipeRequest),
		string(action.KindLogout),
		string(action.KindGetRecipeFailure),
	}, h.rec.trail())
	assert.Equal(t, "request failed with status code 401", s.Recipes.Error)
	assert.Nil(t, s.Recipes.Recipe)
	assert.Equal(t, "tok", logoutBody.AccessToken)
	assert.Equal(t, "bearer tok", logoutAuth)

	_, ok := h.session.Token()
	assert.False(t, ok)
	assert.Equal(t, navigation.RouteLogin, h.history.Location())
}

func TestCreateRecipe_Success(t *testing.T) {
	var got model.RecipeCreateRequest
	h := newHarness(t, "tok", api(map[string]http.HandlerFunc{
		"POST /api/v1/recipes": func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&got)
			io.WriteString(w, `{"recipe_id":12}`)
		},
	}))

	payload := model.RecipeCreateRequest{Name: "Soup", Description: "Warm", Servings: 2, PrepTime: "5 m"}
	s := h.run(action.CreateRecipeRequested{Payload: payload, OnValidationErrors: h.callback()})

	assert.Equal(t, payload, got)
	assert.Equal(t, int64(12), s.Recipes.RecipeID)
	assert.False(t, s.Recipes.Creating)
	assert.Zero(t, h.rec.count(callbackEvent))
}

func TestCreateRecipe_ValidationErrorsCallback(t *testing.T) {
	h := newHarness(t, "tok", api(map[string]http.HandlerFunc{
		"POST /api/v1/recipes": reply(http.StatusNotFound, `{"errors":"some-error"}`),
	}))

	s := h.run(action.CreateRecipeRequested{OnValidationErrors: h.callback()})

	require.Len(t, h.errs, 1)
	assert.Equal(t, "some-error", h.errs[0].Form())
	assert.False(t, s.Recipes.Creating)
	assert.Equal(t, "request failed with status code 404", s.Recipes.Error)
	assert.Equal(t, []string{
		string(action.KindCreateRecipeRequest),
		callbackEvent,
		string(action.KindCreateRecipeFailure),
	}, h.rec.trail())
}

func TestCreateRecipe_UnauthorizedOrdering(t *testing.T) {
	h := newHarness(t, "tok", api(map[string]http.HandlerFunc{
		"POST /api/v1/recipes":      reply(http.StatusUnauthorized, `{"errors":{"alert":"expired"}}`),
		"POST /api/v1/users/logout": okLogout(),
	}))

	h.run(action.CreateRecipeRequested{OnValidationErrors: h.callback()})

	assert.Equal(t, []string{
		string(action.KindCreateRecipeRequest),
		string(action.KindLogout),
		callbackEvent,
		string(action.KindCreateRecipeFailure),
	}, h.rec.trail())
	_, ok := h.session.Token()
	assert.False(t, ok)
}

func TestCreateRecipe_NoBodyNoCallback(t *testing.T) {
	h := newHarness(t, "tok", api(map[string]http.HandlerFunc{
		"POST /api/v1/recipes": reply(http.StatusBadRequest, `{"message":"bad"}`),
	}))

	s := h.run(action.CreateRecipeRequested{OnValidationErrors: h.callback()})

	assert.Zero(t, h.rec.count(callbackEvent))
	assert.Equal(t, "request failed with status code 400", s.Recipes.Error)
}

func TestCreateRecipe_NetworkFailureNoCallback(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	h := newHarnessAt(t, "tok", url, nil)

	s := h.run(action.CreateRecipeRequested{OnValidationErrors: h.callback()})

	assert.Zero(t, h.rec.count(callbackEvent))
	assert.Zero(t, h.rec.count(string(action.KindLogout)))
	assert.False(t, s.Recipes.Creating)
	assert.NotEmpty(t, s.Recipes.Error)
}

func TestCreateRecipe_NilCallback(t *testing.T) {
	h := newHarness(t, "tok", api(map[string]http.HandlerFunc{
		"POST /api/v1/recipes": reply(http.StatusBadRequest, `{"errors":{"name":"Required"}}`),
	}))

	s := h.run(action.CreateRecipeRequested{})

	assert.Equal(t, "request failed with status code 400", s.Recipes.Error)
}

func TestRegister_Success(t *testing.T) {
	var auth string
	h := newHarness(t, "tok", api(map[string]http.HandlerFunc{
		"POST /api/v1/users/register": func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
		},
	}))

	s := h.run(action.RegisterRequested{
		Payload:            model.RegisterRequest{Username: "chef_one", Email: "chef@example.com", Password: "secret1"},
		OnValidationErrors: h.callback(),
	})

	assert.Empty(t, auth, "register must not send the session token")
	assert.Equal(t, navigation.RouteLogin, h.history.Location())
	assert.False(t, s.Users.Pending)
	assert.Empty(t, s.Users.Error)
	assert.Zero(t, h.rec.count(callbackEvent))
}

func TestRegister_ValidationErrors(t *testing.T) {
	h := newHarness(t, "", api(map[string]http.HandlerFunc{
		"POST /api/v1/users/register": reply(http.StatusBadRequest, `{"errors":{"username":"Username already in use"}}`),
	}))

	s := h.run(action.RegisterRequested{OnValidationErrors: h.callback()})

	require.Len(t, h.errs, 1)
	assert.Equal(t, "Username already in use", h.errs[0]["username"])
	assert.Equal(t, "request failed with status code 400", s.Users.Error)
	assert.Equal(t, navigation.RouteRecipes, h.history.Location(), "failure must not navigate")
}

func TestRegister_NoErrorsFieldNoCallback(t *testing.T) {
	h := newHarness(t, "", api(map[string]http.HandlerFunc{
		"POST /api/v1/users/register": reply(http.StatusInternalServerError, ""),
	}))

	h.run(action.RegisterRequested{OnValidationErrors: h.callback()})

	assert.Zero(t, h.rec.count(callbackEvent))
	assert.Equal(t, 1, h.rec.count(string(action.KindRegisterFailure)))
}

func TestLogin_Success(t *testing.T) {
	var got model.LoginRequest
	h := newHarness(t, "", api(map[string]http.HandlerFunc{
		"POST /api/v1/users/login": func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			json.NewDecoder(r.Body).Decode(&got)
			io.WriteString(w, `{"access_token":"tok"}`)
		},
	}))

	s := h.run(action.LoginRequested{
		Payload:            model.LoginRequest{Login: "chef_one", Password: "secret1"},
		OnValidationErrors: h.callback(),
	})

	assert.Equal(t, "chef_one", got.Login)
	assert.Equal(t, "tok", mustToken(h))
	assert.Equal(t, navigation.RouteRecipes, h.history.Location())
	assert.True(t, s.Users.LoggedIn)
	assert.Equal(t, []string{string(action.KindLoginRequest), string(action.KindLoginSuccess)}, h.rec.trail())
}

func TestLogin_BadCredentials(t *testing.T) {
	h := newHarness(t, "", api(map[string]http.HandlerFunc{
		"POST /api/v1/users/login": reply(http.StatusUnauthorized, `{"errors":{"alert":"Invalid login credentials"}}`),
	}))

	s := h.run(action.LoginRequested{OnValidationErrors: h.callback()})

	require.Len(t, h.errs, 1)
	assert.Equal(t, "Invalid login credentials", h.errs[0].Form())
	assert.Zero(t, h.rec.count(string(action.KindLogout)), "anonymous calls never force logout")
	assert.False(t, s.Users.LoggedIn)
	assert.Equal(t, navigation.RouteRecipes, h.history.Location())
}

func TestLogin_MissingTokenFails(t *testing.T) {
	h := newHarness(t, "", api(map[string]http.HandlerFunc{
		"POST /api/v1/users/login": reply(http.StatusOK, `{}`),
	}))

	s := h.run(action.LoginRequested{OnValidationErrors: h.callback()})

	assert.Equal(t, ErrMissingAccessToken.Error(), s.Users.Error)
	assert.False(t, s.Users.LoggedIn)
	assert.Zero(t, h.rec.count(callbackEvent))
	_, ok := h.session.Token()
	assert.False(t, ok)
}

func TestLogout_ClearsSessionEvenWhenCallFails(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	h := newHarnessAt(t, "tok", url, nil)

	s := h.run(action.Logout{})

	_, ok := h.session.Token()
	assert.False(t, ok)
	assert.Equal(t, navigation.RouteLogin, h.history.Location())
	assert.False(t, s.Users.LoggedIn)
}

func TestLogout_ServerRejects(t *testing.T) {
	h := newHarness(t, "tok", api(map[string]http.HandlerFunc{
		"POST /api/v1/users/logout": reply(http.StatusUnauthorized, ""),
	}))

	h.run(action.Logout{})

	_, ok := h.session.Token()
	assert.False(t, ok)
	assert.Equal(t, navigation.RouteLogin, h.history.Location())
	assert.Equal(t, 1, h.rec.count(string(action.KindLogout)), "a rejected logout must not re-trigger logout")
}

func TestConcurrentHandlers(t *testing.T) {
	h := newHarness(t, "tok", api(map[string]http.HandlerFunc{
		"GET /api/v1/recipes":  reply(http.StatusOK, `{"recipes":[{"id":1,"name":"Soup"}]}`),
		"POST /api/v1/recipes": reply(http.StatusOK, `{"recipe_id":2}`),
	}))

	h.store.Dispatch(action.ListRecipesRequested{})
	h.store.Dispatch(action.CreateRecipeRequested{})
	h.runner.Wait()

	s := h.store.State()
	assert.Len(t, s.Recipes.Recipes, 1)
	assert.Equal(t, int64(2), s.Recipes.RecipeID)
	assert.False(t, s.Recipes.Loading)
	assert.False(t, s.Recipes.Creating)
}

func TestHandle_IgnoresOutcomeSignals(t *testing.T) {
	h := newHarness(t, "tok", api(nil))

	h.run(action.ListRecipesSucceeded{})
	h.run(action.LoginFailed{})

	assert.Len(t, h.rec.trail(), 2)
}

func mustToken(h *harness) string {
	tok, _ := h.session.Token()
	return tok
}
