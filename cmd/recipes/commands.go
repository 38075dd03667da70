package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/recipelib/recipes-go/internal/action"
	"github.com/recipelib/recipes-go/internal/app"
	"github.com/recipelib/recipes-go/internal/model"
	"github.com/recipelib/recipes-go/internal/session"
)

var (
	ErrNotLoggedIn       = errors.New("not logged in")
	ErrInvalidIngredient = errors.New("ingredient must be NAME or AMOUNT|UNIT|NAME[|NOTES]")
)

func (c *cli) registerCmd() *cobra.Command {
	var req model.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			st := a.Do(action.RegisterRequested{Payload: req, OnValidationErrors: c.printValidation})
			if st.Users.Error != "" {
				return errors.New(st.Users.Error)
			}
			fmt.Fprintf(c.out, "Registered %s. Log in to continue.\n", req.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "username")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "password")
	return cmd
}

func (c *cli) loginCmd() *cobra.Command {
	var req model.LoginRequest

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			st := a.Do(action.LoginRequested{Payload: req, OnValidationErrors: c.printValidation})
			if !st.Users.LoggedIn {
				return errors.New(st.Users.Error)
			}
			fmt.Fprintln(c.out, "Logged in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Login, "login", "", "username or email")
	cmd.Flags().StringVar(&req.Password, "password", "", "password")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke and forget the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			a.Do(action.Logout{})
			fmt.Fprintln(c.out, "Logged out.")
			return nil
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openLoggedIn(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			st := a.Do(action.ListRecipesRequested{})
			if st.Recipes.Error != "" {
				return c.requestError(st.Users.LoggedIn, st.Recipes.Error)
			}
			return printRecipeList(c.out, st.Recipes.Recipes)
		},
	}
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid recipe id %q", args[0])
			}

			a, err := c.openLoggedIn(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			st := a.Do(action.GetRecipeRequested{ID: id})
			if st.Recipes.Error != "" {
				return c.requestError(st.Users.LoggedIn, st.Recipes.Error)
			}
			return printRecipe(c.out, *st.Recipes.Recipe)
		},
	}
}

func (c *cli) createCmd() *cobra.Command {
	var (
		req         model.RecipeCreateRequest
		ingredients []string
		steps       []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a recipe",
		Long: `Create a recipe. Ingredients and steps are numbered in the order given.

An ingredient is either a bare name or AMOUNT|UNIT|NAME with optional |NOTES:

  recipes create --name "Root Beer Float" --description "Delicious" --servings 1 \
    --ingredient "1|scoop|vanilla ice cream" --ingredient "root beer" \
    --step "Place ice cream in glass." --step "Top with root beer."`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if req.Ingredients, err = parseIngredients(ingredients); err != nil {
				return err
			}
			req.Steps = make([]model.StepCreateRequest, len(steps))
			for i, s := range steps {
				req.Steps[i] = model.StepCreateRequest{Instructions: s, OrderNum: i + 1}
			}

			a, err := c.openLoggedIn(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			st := a.Do(action.CreateRecipeRequested{Payload: req, OnValidationErrors: c.printValidation})
			if st.Recipes.Error != "" {
				return c.requestError(st.Users.LoggedIn, st.Recipes.Error)
			}
			fmt.Fprintf(c.out, "Created recipe %d.\n", st.Recipes.RecipeID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Name, "name", "", "recipe name")
	f.StringVar(&req.Description, "description", "", "short description")
	f.IntVar(&req.Servings, "servings", 0, "number of servings")
	f.StringVar(&req.PrepTime, "prep-time", "", "preparation time")
	f.StringVar(&req.CookTime, "cook-time", "", "cooking time")
	f.StringVar(&req.CoolTime, "cool-time", "", "cooling time")
	f.StringVar(&req.TotalTime, "total-time", "", "total time")
	f.StringVar(&req.Source, "source", "", "where the recipe comes from")
	f.StringArrayVar(&ingredients, "ingredient", nil, "ingredient, repeatable")
	f.StringArrayVar(&steps, "step", nil, "instruction step, repeatable")
	return cmd
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who the stored access token belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closer, err := app.OpenStore(cmd.Context(), c.cfg.Session)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer.Close()
			}

			sess, err := session.Open(cmd.Context(), store)
			if err != nil {
				return err
			}
			token, ok := sess.Token()
			if !ok {
				return ErrNotLoggedIn
			}

			info, err := session.InspectToken(token)
			if err != nil {
				return err
			}
			return printTokenInfo(c.out, info, time.Now())
		},
	}
}

// openLoggedIn opens the client and refuses to call the API without a token.
func (c *cli) openLoggedIn(cmd *cobra.Command) (*app.App, error) {
	a, err := c.open(cmd.Context())
	if err != nil {
		return nil, err
	}
	if !a.Store.State().Users.LoggedIn {
		a.Close()
		return nil, ErrNotLoggedIn
	}
	return a, nil
}

func (c *cli) requestError(loggedIn bool, msg string) error {
	if !loggedIn {
		return fmt.Errorf("%s: session expired, log in again", msg)
	}
	return errors.New(msg)
}

func (c *cli) printValidation(errs model.ValidationErrors) {
	printValidationErrors(c.out, errs)
}

func parseIngredients(raw []string) ([]model.IngredientCreateRequest, error) {
	out := make([]model.IngredientCreateRequest, len(raw))
	for i, s := range raw {
		in := model.IngredientCreateRequest{OrderNum: i + 1}

		parts := strings.Split(s, "|")
		switch len(parts) {
		case 1:
			in.Name = strings.TrimSpace(parts[0])
		case 3, 4:
			in.Amount = strings.TrimSpace(parts[0])
			in.Unit = strings.TrimSpace(parts[1])
			in.Name = strings.TrimSpace(parts[2])
			if len(parts) == 4 {
				in.Notes = strings.TrimSpace(parts[3])
			}
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidIngredient, s)
		}

		if in.Name == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidIngredient, s)
		}
		out[i] = in
	}
	return out, nil
}
