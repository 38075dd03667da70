// Package state holds the client's domain state and the pure transition
// functions that derive the next state from a signal.
package state

import (
	"github.com/recipelib/recipes-go/internal/action"
	"github.com/recipelib/recipes-go/internal/model"
)

// RecipeState is the recipes domain. Loading tracks list and get requests;
// Creating tracks create requests. Recipe is nil until a detail is fetched.
type RecipeState struct {
	Recipes  []model.RecipeSummary
	Recipe   *model.RecipeDetail
	RecipeID int64
	Loading  bool
	Creating bool
	Error    string
}

// InitialRecipeState is the state before any signal.
func InitialRecipeState() RecipeState {
	return RecipeState{Recipes: []model.RecipeSummary{}}
}

// ReduceRecipes returns the next recipes state. s is never modified, and
// unrecognised signals return s unchanged.
func ReduceRecipes(s RecipeState, a action.Action) RecipeState {
	switch a := a.(type) {
	case action.ListRecipesRequested, action.GetRecipeRequested:
		s.Loading = true
		s.Error = ""
	case action.ListRecipesSucceeded:
		s.Recipes = a.Response.Recipes
		if s.Recipes == nil {
			s.Recipes = []model.RecipeSummary{}
		}
		s.Loading = false
	case action.GetRecipeSucceeded:
		recipe := a.Recipe
		s.Recipe = &recipe
		s.Loading = false
	case action.ListRecipesFailed:
		s.Loading = false
		s.Error = action.Message(a)
	case action.GetRecipeFailed:
		s.Loading = false
		s.Error = action.Message(a)
	case action.CreateRecipeRequested:
		s.Creating = true
		s.Error = ""
	case action.CreateRecipeSucceeded:
		s.RecipeID = a.RecipeID
		s.Creating = false
	case action.CreateRecipeFailed:
		s.Creating = false
		s.Error = action.Message(a)
	}
	return s
}
