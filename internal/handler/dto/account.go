package dto

// RegisterRequest represents the request body for creating an account.
type RegisterRequest struct {
	Email                string `json:"email"`
	DisplayName          string `json:"display_name"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// RegisterResponse confirms a created account.
type RegisterResponse struct {
	Status      string `json:"status"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// LoginRequest represents the request body for signing in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse confirms an issued session.
type LoginResponse struct {
	Status      string `json:"status"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}
