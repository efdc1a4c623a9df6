package dto

// SignupRequest is the JSON body for POST /auth/signup.
type SignupRequest struct {
	Email           string `json:"email" binding:"required,email,max=255"`
	Username        string `json:"username" binding:"required,min=1,max=120"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// LoginRequest is the body for POST /auth/login. Accepts form or JSON;
// Username may hold the email address.
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// UserResponse is returned when user info is needed (signup, /auth/me).
type UserResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}
