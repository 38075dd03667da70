package model

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is returned by the register endpoint; it only carries a
// body when the registration was rejected.
type RegisterResponse struct {
	Errors ValidationErrors `json:"errors,omitempty"`
}

// LoginRequest represents a user login request. Login is a username or email.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginResponse carries the issued tokens, or field errors when rejected.
type LoginResponse struct {
	AccessToken  string           `json:"access_token,omitempty"`
	RefreshToken string           `json:"refresh_token,omitempty"`
	Errors       ValidationErrors `json:"errors,omitempty"`
}

// LogoutRequest names the access token to revoke.
type LogoutRequest struct {
	AccessToken string `json:"access_token"`
}
