package effect

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/recipelib/recipes-go/internal/action"
	"github.com/recipelib/recipes-go/internal/model"
	"github.com/recipelib/recipes-go/internal/transport"
)

// API paths, relative to the server root.
const (
	APIRoot      = "/api/v1"
	PathRecipes  = APIRoot + "/recipes"
	PathRegister = APIRoot + "/users/register"
	PathLogin    = APIRoot + "/users/login"
	PathLogout   = APIRoot + "/users/logout"
)

// RecipePath returns the detail path for a recipe.
func RecipePath(id int64) string {
	return PathRecipes + "/" + strconv.FormatInt(id, 10)
}

func (r *Runner) listRecipes(ctx context.Context, log *zap.Logger) {
	resp, err := r.deps.API.Get(ctx, PathRecipes, transport.Authenticated)
	if err != nil {
		r.fail(log, err, transport.Authenticated, nil, action.ListRecipesFailed{Err: err})
		return
	}

	var body model.RecipeListResponse
	if err := resp.Decode(&body); err != nil {
		r.fail(log, err, transport.Authenticated, nil, action.ListRecipesFailed{Err: err})
		return
	}

	log.Info("listed recipes", zap.Int("count", len(body.Recipes)))
	r.dispatch(action.ListRecipesSucceeded{Response: body})
}

func (r *Runner) getRecipe(ctx context.Context, log *zap.Logger, a action.GetRecipeRequested) {
	resp, err := r.deps.API.Get(ctx, RecipePath(a.ID), transport.Authenticated)
	if err != nil {
		r.fail(log, err, transport.Authenticated, nil, action.GetRecipeFailed{Err: err})
		return
	}

	var recipe model.RecipeDetail
	if err := resp.Decode(&recipe); err != nil {
		r.fail(log, err, transport.Authenticated, nil, action.GetRecipeFailed{Err: err})
		return
	}

	r.dispatch(action.GetRecipeSucceeded{Recipe: recipe})
}

func (r *Runner) createRecipe(ctx context.Context, log *zap.Logger, a action.CreateRecipeRequested) {
	resp, err := r.deps.API.Post(ctx, PathRecipes, a.Payload, transport.Authenticated)
	if err != nil {
		r.fail(log, err, transport.Authenticated, a.OnValidationErrors, action.CreateRecipeFailed{Err: err})
		return
	}

	var body model.RecipeCreateResponse
	if err := resp.Decode(&body); err != nil {
		r.fail(log, err, transport.Authenticated, nil, action.CreateRecipeFailed{Err: err})
		return
	}

	log.Info("created recipe", zap.Int64("recipe_id", body.RecipeID))
	r.dispatch(action.CreateRecipeSucceeded{RecipeID: body.RecipeID})
}
