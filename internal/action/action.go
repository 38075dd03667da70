// Package action defines the signals dispatched into the state store:
// request intents and their success or failure outcomes.
package action

import "github.com/recipelib/recipes-go/internal/model"

// Kind names a signal for logging and matching.
type Kind string

const (
	KindListRecipesRequest  Kind = "recipes/FETCH_RECIPES_REQUEST"
	KindListRecipesSuccess  Kind = "recipes/FETCH_RECIPES_SUCCESS"
	KindListRecipesFailure  Kind = "recipes/FETCH_RECIPES_FAILURE"
	KindGetRecipeRequest    Kind = "recipes/FETCH_RECIPE_REQUEST"
	KindGetRecipeSuccess    Kind = "recipes/FETCH_RECIPE_SUCCESS"
	KindGetRecipeFailure    Kind = "recipes/FETCH_RECIPE_FAILURE"
	KindCreateRecipeRequest Kind = "recipes/CREATE_RECIPE_REQUEST"
	KindCreateRecipeSuccess Kind = "recipes/CREATE_RECIPE_SUCCESS"
	KindCreateRecipeFailure Kind = "recipes/CREATE_RECIPE_FAILURE"
	KindRegisterRequest     Kind = "users/REGISTER_REQUEST"
	KindRegisterSuccess     Kind = "users/REGISTER_SUCCESS"
	KindRegisterFailure     Kind = "users/REGISTER_FAILURE"
	KindLoginRequest        Kind = "users/LOGIN_REQUEST"
	KindLoginSuccess        Kind = "users/LOGIN_SUCCESS"
	KindLoginFailure        Kind = "users/LOGIN_FAILURE"
	KindLogout              Kind = "users/LOGOUT"
)

// Action is a signal. Concrete types are the structs in this package.
type Action interface {
	Kind() Kind
}

// ValidationCallback receives server-side field errors for a form. Handlers
// call it at most once per failed attempt, and only when the response body
// carried a non-empty "errors" field.
type ValidationCallback func(model.ValidationErrors)

// Failure is implemented by every failure signal.
type Failure interface {
	Action
	Cause() error
}

// Message returns the user-visible text of a failure's error.
func Message(f Failure) string {
	if err := f.Cause(); err != nil {
		return err.Error()
	}
	return ""
}

type ListRecipesRequested struct{}

type ListRecipesSucceeded struct {
	Response model.RecipeListResponse
}

type ListRecipesFailed struct {
	Err error
}

type GetRecipeRequested struct {
	ID int64
}

type GetRecipeSucceeded struct {
	Recipe model.RecipeDetail
}

type GetRecipeFailed struct {
	Err error
}

type CreateRecipeRequested struct {
	Payload            model.RecipeCreateRequest
	OnValidationErrors ValidationCallback
}

type CreateRecipeSucceeded struct {
	RecipeID int64
}

type CreateRecipeFailed struct {
	Err error
}

type RegisterRequested struct {
	Payload            model.RegisterRequest
	OnValidationErrors ValidationCallback
}

type RegisterSucceeded struct{}

type RegisterFailed struct {
	Err error
}

type LoginRequested struct {
	Payload            model.LoginRequest
	OnValidationErrors ValidationCallback
}

type LoginSucceeded struct{}

type LoginFailed struct {
	Err error
}

// Logout tears down the session. It is dispatched by the user or forced by
// any authenticated call that came back 401.
type Logout struct{}

func (ListRecipesRequested) Kind() Kind { return KindListRecipesRequest }
func (ListRecipesSucceeded) Kind() Kind { return KindListRecipesSuccess }
func (ListRecipesFailed) Kind() Kind { return KindListRecipesFailure }
func (GetRecipeRequested) Kind() Kind { return KindGetRecipeRequest }
func (GetRecipeSucceeded) Kind() Kind { return KindGetRecipeSuccess }
func (GetRecipeFailed) Kind() Kind { return KindGetRecipeFailure }
func (CreateRecipeRequested) Kind() Kind { return KindCreateRecipeRequest }
func (CreateRecipeSucceeded) Kind() Kind { return KindCreateRecipeSuccess }
func (CreateRecipeFailed) Kind() Kind { return KindCreateRecipeFailure }
func (RegisterRequested) Kind() Kind { return KindRegisterRequest }
func (RegisterSucceeded) Kind() Kind { return KindRegisterSuccess }
func (RegisterFailed) Kind() Kind { return KindRegisterFailure }
func (LoginRequested) Kind() Kind { return KindLoginRequest }
func (LoginSucceeded) Kind() Kind { return KindLoginSuccess }
func (LoginFailed) Kind() Kind { return KindLoginFailure }
func (Logout) Kind() Kind { return KindLogout }

func (a ListRecipesFailed) Cause() error { return a.Err }
func (a GetRecipeFailed) Cause() error { return a.Err }
func (a CreateRecipeFailed) Cause() error { return a.Err }
func (a RegisterFailed) Cause() error { return a.Err }
func (a LoginFailed) Cause() error { return a.Err }
