package fakeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"

	"github.com/recipelib/recipes-go/internal/model"
)

const maxBodyBytes = 1 << 20 // 1MB

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	usernameTaken, emailTaken := false, false
	for _, u := range s.users {
		usernameTaken = usernameTaken || strings.EqualFold(u.Username, req.Username)
		emailTaken = emailTaken || strings.EqualFold(u.Email, req.Email)
	}
	s.mu.Unlock()

	if errs := validateRegistration(req, usernameTaken, emailTaken); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, model.RegisterResponse{Errors: errs})
		return
	}

	hash, err := hashPassword(req.Password, s.hash)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	s.mu.Lock()
	id := s.nextUserID
	s.nextUserID++
	s.users[id] = &user{ID: id, Username: req.Username, Email: req.Email, AuthHash: hash}
	s.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	var found *user
	for _, u := range s.users {
		if strings.EqualFold(u.Username, req.Login) || strings.EqualFold(u.Email, req.Login) {
			found = u
			break
		}
	}
	s.mu.Unlock()

	invalid := model.LoginResponse{Errors: model.ValidationErrors{model.FormErrorKey: "Invalid login credentials"}}
	if found == nil {
		writeJSON(w, http.StatusUnauthorized, invalid)
		return
	}

	ok, err := verifyPassword(req.Password, found.AuthHash)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}
	if !ok {
		writeJSON(w, http.StatusUnauthorized, invalid)
		return
	}

	access, _, err := s.issueToken(found.ID, found.Username, s.expiry)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}
	refresh, _, err := s.issueToken(found.ID, found.Username, 7*24*s.expiry)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, model.LoginResponse{AccessToken: access, RefreshToken: refresh})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	c, _ := claimsFromContext(r.Context())

	s.mu.Lock()
	s.revoked[c.ID] = true
	s.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	c, _ := claimsFromContext(r.Context())

	s.mu.Lock()
	summaries := []model.RecipeSummary{}
	for _, rec := range s.recipes {
		if rec.OwnerID != c.UserID {
			continue
		}
		summaries = append(summaries, model.RecipeSummary{
			ID:          rec.Detail.ID,
			Name:        rec.Detail.Name,
			Description: rec.Detail.Description,
		})
	}
	s.mu.Unlock()

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	writeJSON(w, http.StatusOK, model.RecipeListResponse{Recipes: summaries})
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	c, _ := claimsFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid recipe id"))
		return
	}

	s.mu.Lock()
	rec, ok := s.recipes[id]
	s.mu.Unlock()

	if !ok || rec.OwnerID != c.UserID {
		writeJSON(w, http.StatusNotFound, errorResponse("recipe not found"))
		return
	}

	detail := rec.Detail
	detail.Ingredients = detail.SortedIngredients()
	detail.Steps = detail.SortedSteps()
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	c, _ := claimsFromContext(r.Context())

	var req model.RecipeCreateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if errs := validateRecipe(req); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, model.RecipeCreateResponse{Errors: errs})
		return
	}

	detail := model.RecipeDetail{
		Name:        req.Name,
		Description: req.Description,
		Creator:     c.Subject,
		Servings:    req.Servings,
		PrepTime:    optional(req.PrepTime),
		CookTime:    optional(req.CookTime),
		CoolTime:    optional(req.CoolTime),
		TotalTime:   optional(req.TotalTime),
		Source:      optional(req.Source),
		Ingredients: make([]model.Ingredient, len(req.Ingredients)),
		Steps:       make([]model.Step, len(req.Steps)),
	}
	for i, in := range req.Ingredients {
		detail.Ingredients[i] = model.Ingredient{
			Ingredient:       in.Name,
			IngredientNumber: in.OrderNum,
			Amount:           optional(in.Amount),
			Measurement:      optional(in.Unit),
			Preparation:      optional(in.Notes),
		}
	}
	for i, st := range req.Steps {
		detail.Steps[i] = model.Step{StepNumber: st.OrderNum, Instructions: st.Instructions}
	}

	s.mu.Lock()
	detail.ID = s.nextRecID
	s.nextRecID++
	s.recipes[detail.ID] = &recipe{OwnerID: c.UserID, Detail: detail}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, model.RecipeCreateResponse{RecipeID: detail.ID})
}

func validateRecipe(req model.RecipeCreateRequest) model.ValidationErrors {
	errs := model.ValidationErrors{}
	if req.Name == "" {
		errs["name"] = "Required"
	}
	if req.Description == "" {
		errs["description"] = "Required"
	}
	if req.Servings == 0 {
		errs["servings"] = "Required"
	}

	seen := make(map[int]bool)
	for _, in := range req.Ingredients {
		if seen[in.OrderNum] {
			errs["ingredients"] = "Ingredient numbers must be unique"
		}
		seen[in.OrderNum] = true
	}
	seen = make(map[int]bool)
	for _, st := range req.Steps {
		if seen[st.OrderNum] {
			errs["steps"] = "Step numbers must be unique"
		}
		seen[st.OrderNum] = true
	}
	return errs
}

func validateRegistration(req model.RegisterRequest, usernameTaken, emailTaken bool) model.ValidationErrors {
	errs := model.ValidationErrors{}

	switch {
	case req.Username == "":
		errs["username"] = "Required"
	case usernameTaken:
		errs["username"] = "Username already in use"
	default:
		if problems := usernameProblems(req.Username); len(problems) > 0 {
			errs["username"] = strings.Join(problems, ", ")
		}
	}

	switch {
	case req.Email == "":
		errs["email"] = "Required"
	case emailTaken:
		errs["email"] = "Email already in use"
	default:
		if _, err := mail.ParseAddress(req.Email); err != nil {
			errs["email"] = "Invalid email address"
		}
	}

	switch {
	case req.Password == "":
		errs["password"] = "Required"
	case len(req.Password) < 6 || len(req.Password) > 64:
		errs["password"] = "Must be between 6 and 64 characters long"
	}

	return errs
}

func usernameProblems(username string) []string {
	const minLength, maxLength = 6, 30

	var problems []string
	n := 0
	for i, ch := range username {
		n++
		switch {
		case unicode.IsNumber(ch):
			if i == 0 {
				problems = append(problems, "Cannot start with a number")
			}
		case ch == '_':
			if i == 0 {
				problems = append(problems, "Cannot start with an underscore")
			}
		case unicode.IsLetter(ch):
		default:
			problems = append(problems, "Only alphanumeric characters and underscores (_) allowed")
		}
	}

	if n < minLength || n > maxLength {
		problems = append(problems, fmt.Sprintf("Must be between %d and %d characters long", minLength, maxLength))
	}
	return problems
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}
