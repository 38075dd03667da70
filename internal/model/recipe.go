package model

import "sort"

// RecipeSummary is a single row of the recipe list.
type RecipeSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// RecipeListResponse is the body of GET /api/v1/recipes.
type RecipeListResponse struct {
	Recipes []RecipeSummary `json:"recipes"`
}

// RecipeDetail is the body of GET /api/v1/recipes/{id}.
type RecipeDetail struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Creator     string       `json:"creator,omitempty"`
	Servings    int          `json:"servings"`
	PrepTime    *string      `json:"prep_time,omitempty"`
	CookTime    *string      `json:"cook_time,omitempty"`
	CoolTime    *string      `json:"cool_time,omitempty"`
	TotalTime   *string      `json:"total_time,omitempty"`
	Source      *string      `json:"source,omitempty"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []Step       `json:"steps"`
}

// Ingredient is one line of a recipe's ingredient list. IngredientNumber is
// unique within the recipe and defines display order.
type Ingredient struct {
	Ingredient       string  `json:"ingredient"`
	IngredientNumber int     `json:"ingredient_number"`
	Amount           *string `json:"amount,omitempty"`
	Measurement      *string `json:"measurement,omitempty"`
	Preparation      *string `json:"preparation,omitempty"`
}

// Step is one instruction of a recipe. StepNumber is unique within the recipe
// and defines display order.
type Step struct {
	StepNumber   int    `json:"step_number"`
	Instructions string `json:"instructions"`
}

// SortedIngredients returns a copy of the ingredients ordered by ingredient number.
func (r RecipeDetail) SortedIngredients() []Ingredient {
	out := make([]Ingredient, len(r.Ingredients))
	copy(out, r.Ingredients)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IngredientNumber < out[j].IngredientNumber
	})
	return out
}

// SortedSteps returns a copy of the steps ordered by step number.
func (r RecipeDetail) SortedSteps() []Step {
	out := make([]Step, len(r.Steps))
	copy(out, r.Steps)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StepNumber < out[j].StepNumber
	})
	return out
}

// RecipeCreateRequest is the body of POST /api/v1/recipes.
type RecipeCreateRequest struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	Servings    int                       `json:"servings"`
	PrepTime    string                    `json:"prep_time,omitempty"`
	CookTime    string                    `json:"cook_time,omitempty"`
	CoolTime    string                    `json:"cool_time,omitempty"`
	TotalTime   string                    `json:"total_time,omitempty"`
	Source      string                    `json:"source,omitempty"`
	Ingredients []IngredientCreateRequest `json:"ingredients,omitempty"`
	Steps       []StepCreateRequest       `json:"steps,omitempty"`
}

// IngredientCreateRequest is an ingredient submitted with a new recipe.
type IngredientCreateRequest struct {
	Name     string `json:"name"`
	Amount   string `json:"amount,omitempty"`
	Unit     string `json:"unit,omitempty"`
	Notes    string `json:"notes,omitempty"`
	OrderNum int    `json:"order_num"`
}

// StepCreateRequest is a step submitted with a new recipe.
type StepCreateRequest struct {
	Instructions string `json:"instructions"`
	OrderNum     int    `json:"order_num"`
	Notes        string `json:"notes,omitempty"`
}

// RecipeCreateResponse is the body returned by POST /api/v1/recipes, on
// success and on validation failure.
type RecipeCreateResponse struct {
	RecipeID int64            `json:"recipe_id,omitempty"`
	Errors   ValidationErrors `json:"errors,omitempty"`
}
