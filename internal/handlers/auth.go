package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/birlikkoshan/todo-api/internal/auth"
	"github.com/birlikkoshan/todo-api/internal/dto"
	"github.com/birlikkoshan/todo-api/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles signup, login, token refresh and logout.
type AuthHandler struct {
	tokens  *auth.TokenManager
	refresh *auth.RefreshStore
	userSvc *service.UserService
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(tokens *auth.TokenManager, refresh *auth.RefreshStore, userSvc *service.UserService) *AuthHandler {
	return &AuthHandler{tokens: tokens, refresh: refresh, userSvc: userSvc}
}

// Signup godoc
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.SignupRequest  true  "Account"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.userSvc.Register(c.Request.Context(), req.Email, req.Username, req.Password, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordMismatch):
			badRequest(c, err)
		case errors.Is(err, service.ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"detail": err.Error()})
		default:
			writeError(c, err)
		}
		return
	}
	c.JSON(http.StatusCreated, dto.UserResponse{ID: u.ID, Email: u.Email, Username: u.Username})
}

// Login godoc
// @Summary      Exchange credentials for tokens
// @Tags         auth
// @Accept       json,mpfd,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      dto.LoginRequest  true  "Credentials (username may be the email)"
// @Success      200   {object}  dto.TokenResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.userSvc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid username or password"})
			return
		}
		writeError(c, err)
		return
	}
	resp, err := h.issue(c.Request.Context(), u.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh godoc
// @Summary      Rotate a refresh token
// @Tags         auth
// @Produce      json
// @Param        refresh_token  query     string  true  "Refresh token"
// @Success      200            {object}  dto.TokenResponse
// @Failure      401            {object}  map[string]string
// @Failure      500            {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	userID, next, err := h.refresh.Rotate(c.Request.Context(), refreshToken(c))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid refresh token"})
			return
		}
		writeError(c, err)
		return
	}
	access, err := h.tokens.Issue(userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.tokenResponse(access, next))
}

// Logout godoc
// @Summary      Revoke a refresh token
// @Tags         auth
// @Param        refresh_token  query  string  false  "Refresh token"
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := refreshToken(c); token != "" {
		_ = h.refresh.Delete(c.Request.Context(), token)
	}
	c.Status(http.StatusNoContent)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.UserResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.userSvc.Get(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "authorization required"})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserResponse{ID: u.ID, Email: u.Email, Username: u.Username})
}

func (h *AuthHandler) issue(ctx context.Context, userID int64) (dto.TokenResponse, error) {
	access, err := h.tokens.Issue(userID)
	if err != nil {
		return dto.TokenResponse{}, err
	}
	refresh, err := h.refresh.Create(ctx, userID)
	if err != nil {
		return dto.TokenResponse{}, err
	}
	return h.tokenResponse(access, refresh), nil
}

func (h *AuthHandler) tokenResponse(access, refresh string) dto.TokenResponse {
	return dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(h.tokens.TTL().Seconds()),
	}
}

// refreshToken reads the token from the query string, falling back to a JSON body.
func refreshToken(c *gin.Context) string {
	if t := c.Query("refresh_token"); t != "" {
		return t
	}
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.ShouldBindJSON(&body)
	return body.RefreshToken
}
