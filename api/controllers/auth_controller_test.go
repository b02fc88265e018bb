package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/hyeonkim-dev/docintake/api/middlewares"
	"github.com/hyeonkim-dev/docintake/auth"
	"github.com/hyeonkim-dev/docintake/types"
	"github.com/hyeonkim-dev/docintake/userstore"
)

// fakeUserStore is an in-memory Store for handler tests.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*types.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*types.User)}
}

func (s *fakeUserStore) Create(_ context.Context, user *types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return userstore.ErrEmailTaken
		}
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, userstore.ErrUserNotFound
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, userstore.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *fakeUserStore) Update(_ context.Context, user *types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[user.ID]
	if !ok {
		return userstore.ErrUserNotFound
	}
	u.Name = user.Name
	u.Email = user.Email
	u.Plan = user.Plan
	return nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return userstore.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (s *fakeUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

func setupAuthRouter() (*gin.Engine, *fakeUserStore, *auth.TokenService) {
	gin.SetMode(gin.TestMode)
	users := newFakeUserStore()
	tokens := auth.NewTokenService(types.AuthConfig{Secret: "test-secret", ExpiryMinutes: 60})
	ctrl := NewAuthController(users, tokens)
	userCtrl := NewUserController(users)
	requireAuth := middlewares.RequireAuth(tokens)

	router := gin.New()
	authGroup := router.Group("/api/auth/v1")
	{
		authGroup.POST("/register", ctrl.HandleRegister)
		authGroup.POST("/login", ctrl.HandleLogin)
		authGroup.POST("/logout", requireAuth, ctrl.HandleLogout)
		authGroup.GET("/status", requireAuth, ctrl.HandleStatus)
	}
	userGroup := router.Group("/api/user/v1", requireAuth)
	{
		userGroup.GET("/me", userCtrl.HandleGetMe)
		userGroup.POST("/change-password", userCtrl.HandleChangePassword)
	}
	return router, users, tokens
}

func postJSON(router *gin.Engine, path string, body any, token string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func getWithToken(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerTestUser(t *testing.T, router *gin.Engine) {
	t.Helper()
	w := postJSON(router, "/api/auth/v1/register", map[string]string{
		"name":            "Alice",
		"email":           "alice@example.com",
		"password":        "Password!1",
		"confirmPassword": "Password!1",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", w.Code, w.Body.String())
	}
}

func loginTestUser(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := postJSON(router, "/api/auth/v1/login", map[string]string{
		"email":    "alice@example.com",
		"password": "Password!1",
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login response missing token: %s", w.Body.String())
	}
	return resp.Token
}

func TestRegisterAndLogin(t *testing.T) {
	router, _, _ := setupAuthRouter()
	registerTestUser(t, router)
	token := loginTestUser(t, router)

	w := getWithToken(router, "/api/auth/v1/status", token)
	if w.Code != http.StatusOK {
		t.Errorf("status returned %d: %s", w.Code, w.Body.String())
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router, _, _ := setupAuthRouter()
	registerTestUser(t, router)

	w := postJSON(router, "/api/auth/v1/register", map[string]string{
		"name":            "Other Alice",
		"email":           "alice@example.com",
		"password":        "Password!2",
		"confirmPassword": "Password!2",
	}, "")
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register returned %d, want 409", w.Code)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	router, _, _ := setupAuthRouter()

	w := postJSON(router, "/api/auth/v1/register", map[string]string{
		"name":            "Bob",
		"email":           "bob@example.com",
		"password":        "weak",
		"confirmPassword": "weak",
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("weak password register returned %d, want 400", w.Code)
	}
}

func TestRegisterRejectsMismatchedConfirm(t *testing.T) {
	router, _, _ := setupAuthRouter()

	w := postJSON(router, "/api/auth/v1/register", map[string]string{
		"name":            "Bob",
		"email":           "bob@example.com",
		"password":        "Password!1",
		"confirmPassword": "Password!2",
	}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("mismatched confirm returned %d, want 400", w.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router, _, _ := setupAuthRouter()
	registerTestUser(t, router)

	w := postJSON(router, "/api/auth/v1/login", map[string]string{
		"email":    "alice@example.com",
		"password": "Wrong!pass1",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password login returned %d, want 401", w.Code)
	}
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	router, _, _ := setupAuthRouter()

	w := postJSON(router, "/api/auth/v1/login", map[string]string{
		"email":    "ghost@example.com",
		"password": "Whatever!1",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown email login returned %d, want 401", w.Code)
	}
	// Unknown account and wrong password are indistinguishable to the client.
	var resp struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "Invalid email or password" {
		t.Errorf("error message = %q", resp.Error)
	}
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	router, _, _ := setupAuthRouter()

	w := getWithToken(router, "/api/user/v1/me", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated request returned %d, want 401", w.Code)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	router, _, _ := setupAuthRouter()
	registerTestUser(t, router)
	token := loginTestUser(t, router)

	w := postJSON(router, "/api/auth/v1/logout", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("logout returned %d: %s", w.Code, w.Body.String())
	}

	w = getWithToken(router, "/api/auth/v1/status", token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("revoked token still accepted, status returned %d", w.Code)
	}
}

func TestGetMe(t *testing.T) {
	router, _, _ := setupAuthRouter()
	registerTestUser(t, router)
	token := loginTestUser(t, router)

	w := getWithToken(router, "/api/user/v1/me", token)
	if w.Code != http.StatusOK {
		t.Fatalf("me returned %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data types.PublicUser `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad me response: %v", err)
	}
	if resp.Data.Email != "alice@example.com" {
		t.Errorf("me email = %q", resp.Data.Email)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("passwordHash")) {
		t.Errorf("me response leaks the password hash")
	}
}

func TestChangePassword(t *testing.T) {
	router, _, _ := setupAuthRouter()
	registerTestUser(t, router)
	token := loginTestUser(t, router)

	w := postJSON(router, "/api/user/v1/change-password", map[string]string{
		"currentPassword": "Password!1",
		"newPassword":     "NewPass!2",
		"confirmPassword": "NewPass!2",
	}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("change-password returned %d: %s", w.Code, w.Body.String())
	}

	// Old credential must stop working, the new one must log in.
	w = postJSON(router, "/api/auth/v1/login", map[string]string{
		"email":    "alice@example.com",
		"password": "Password!1",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("old password still accepted after change, got %d", w.Code)
	}
	w = postJSON(router, "/api/auth/v1/login", map[string]string{
		"email":    "alice@example.com",
		"password": "NewPass!2",
	}, "")
	if w.Code != http.StatusOK {
		t.Errorf("new password rejected after change, got %d: %s", w.Code, w.Body.String())
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	router, _, _ := setupAuthRouter()
	registerTestUser(t, router)
	token := loginTestUser(t, router)

	w := postJSON(router, "/api/user/v1/change-password", map[string]string{
		"currentPassword": "Wrong!pass1",
		"newPassword":     "NewPass!2",
		"confirmPassword": "NewPass!2",
	}, token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong current password returned %d, want 401", w.Code)
	}
}
