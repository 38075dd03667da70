package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/recipelib/recipes-go/internal/model"
	"github.com/recipelib/recipes-go/internal/session"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// printValidationErrors lists field errors sorted by field, form-level
// message first.
func printValidationErrors(w io.Writer, errs model.ValidationErrors) {
	if msg := errs.Form(); msg != "" {
		fmt.Fprintln(w, msg)
	}

	fields := make([]string, 0, len(errs))
	for field := range errs {
		if field != model.FormErrorKey {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)

	tw := newTable(w)
	for _, field := range fields {
		fmt.Fprintf(tw, "%s:\t%s\n", field, errs[field])
	}
	tw.Flush()
}

func printRecipeList(w io.Writer, recipes []model.RecipeSummary) error {
	if len(recipes) == 0 {
		_, err := fmt.Fprintln(w, "No recipes yet.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	for _, r := range recipes {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID, r.Name, r.Description)
	}
	return tw.Flush()
}

func printRecipe(w io.Writer, r model.RecipeDetail) error {
	fmt.Fprintf(w, "%s (#%d)\n", r.Name, r.ID)
	if r.Description != "" {
		fmt.Fprintln(w, r.Description)
	}
	fmt.Fprintln(w)

	tw := newTable(w)
	fmt.Fprintf(tw, "Servings:\t%d\n", r.Servings)
	for _, f := range []struct {
		label string
		value *string
	}{
		{"Prep time", r.PrepTime},
		{"Cook time", r.CookTime},
		{"Cool time", r.CoolTime},
		{"Total time", r.TotalTime},
		{"Source", r.Source},
	} {
		if f.value != nil {
			fmt.Fprintf(tw, "%s:\t%s\n", f.label, *f.value)
		}
	}
	if r.Creator != "" {
		fmt.Fprintf(tw, "Creator:\t%s\n", r.Creator)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Ingredients) > 0 {
		fmt.Fprintln(w, "\nIngredients:")
		for _, in := range r.SortedIngredients() {
			fmt.Fprintf(w, "  - %s\n", ingredientLine(in))
		}
	}

	if len(r.Steps) > 0 {
		fmt.Fprintln(w, "\nSteps:")
		for _, st := range r.SortedSteps() {
			fmt.Fprintf(w, "  %d. %s\n", st.StepNumber, st.Instructions)
		}
	}
	return nil
}

func ingredientLine(in model.Ingredient) string {
	var parts []string
	if in.Amount != nil {
		parts = append(parts, *in.Amount)
	}
	if in.Measurement != nil {
		parts = append(parts, *in.Measurement)
	}
	parts = append(parts, in.Ingredient)

	line := strings.Join(parts, " ")
	if in.Preparation != nil {
		line += ", " + *in.Preparation
	}
	return line
}

func printTokenInfo(w io.Writer, info session.TokenInfo, now time.Time) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "User:\t%s\n", info.Subject)
	fmt.Fprintf(tw, "User ID:\t%d\n", info.UserID)
	if !info.IssuedAt.IsZero() {
		fmt.Fprintf(tw, "Issued:\t%s\n", info.IssuedAt.Format(time.RFC3339))
	}
	if !info.ExpiresAt.IsZero() {
		status := "valid"
		if info.Expired(now) {
			status = "expired"
		}
		fmt.Fprintf(tw, "Expires:\t%s (%s)\n", info.ExpiresAt.Format(time.RFC3339), status)
	}
	return tw.Flush()
}
