package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/birlikkoshan/todo-api/internal/auth"
	"github.com/birlikkoshan/todo-api/internal/dto"
	"github.com/birlikkoshan/todo-api/internal/repo/repotest"
	"github.com/birlikkoshan/todo-api/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tokens, err := auth.NewTokenManager("test-secret", "HS256", 30*time.Minute)
	require.NoError(t, err)
	h := NewAuthHandler(tokens, auth.NewRefreshStore(rdb, time.Hour), service.NewUserService(repotest.NewUserRepo()))

	router := gin.New()
	g := router.Group("/api/v1/auth")
	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
	g.POST("/refresh", h.Refresh)
	g.POST("/logout", h.Logout)
	g.GET("/me", auth.RequireBearer(tokens), h.Me)
	return router
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return serve(router, req)
}

func signup(t *testing.T, router *gin.Engine) {
	t.Helper()
	w := postJSON(router, "/api/v1/auth/signup",
		`{"email":"Ann@Example.com","username":"ann","password":"s3cretpass","confirm_password":"s3cretpass"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func decodeTokens(t *testing.T, w *httptest.ResponseRecorder) dto.TokenResponse {
	t.Helper()
	var out dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAuthHandler_Signup(t *testing.T) {
	router := newAuthRouter(t)

	w := postJSON(router, "/api/v1/auth/signup",
		`{"email":"Ann@Example.com","username":"ann","password":"s3cretpass","confirm_password":"s3cretpass"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var u dto.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	assert.Equal(t, "ann@example.com", u.Email)
	assert.Equal(t, "ann", u.Username)
	assert.NotContains(t, w.Body.String(), "password")

	w = postJSON(router, "/api/v1/auth/signup",
		`{"email":"ann@example.com","username":"ann2","password":"s3cretpass","confirm_password":"s3cretpass"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = postJSON(router, "/api/v1/auth/signup",
		`{"email":"bob@example.com","username":"bob","password":"s3cretpass","confirm_password":"other-pass"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(router, "/api/v1/auth/signup", `{"email":"not-an-email","username":"x","password":"s3cretpass","confirm_password":"s3cretpass"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_LoginFormAndJSON(t *testing.T) {
	router := newAuthRouter(t)
	signup(t, router)

	form := url.Values{"username": {"ann@example.com"}, "password": {"s3cretpass"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := serve(router, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tok := decodeTokens(t, w)
	assert.NotEmpty(t, tok.AccessToken)
	assert.NotEmpty(t, tok.RefreshToken)
	assert.Equal(t, "bearer", tok.TokenType)
	assert.EqualValues(t, 1800, tok.ExpiresIn)

	w = postJSON(router, "/api/v1/auth/login", `{"username":"ann","password":"s3cretpass"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(router, "/api/v1/auth/login", `{"username":"ann","password":"wrong-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(router, "/api/v1/auth/login", `{"username":"nobody","password":"s3cretpass"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(router, "/api/v1/auth/login", `{"username":"ann"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_MeRefreshLogout(t *testing.T) {
	router := newAuthRouter(t)
	signup(t, router)
	tok := decodeTokens(t, postJSON(router, "/api/v1/auth/login", `{"username":"ann","password":"s3cretpass"}`))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	w := serve(router, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"ann"`)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(router, "/api/v1/auth/refresh?refresh_token="+tok.RefreshToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	rotated := decodeTokens(t, w)
	assert.NotEqual(t, tok.RefreshToken, rotated.RefreshToken)

	w = postJSON(router, "/api/v1/auth/refresh?refresh_token="+tok.RefreshToken, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "refresh tokens are single use")

	w = postJSON(router, "/api/v1/auth/logout", `{"refresh_token":"`+rotated.RefreshToken+`"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = postJSON(router, "/api/v1/auth/refresh", `{"refresh_token":"`+rotated.RefreshToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
