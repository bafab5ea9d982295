package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fuguang-next/internal/cache"
	"github.com/fuguang-next/internal/config"
	"github.com/fuguang-next/internal/constants"
	"github.com/fuguang-next/internal/models"
	"github.com/fuguang-next/internal/repository"
	"github.com/fuguang-next/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
	if resp := strings.TrimSpace(generated); resp == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

const testUserSecret = "user-secret"

type authTestEnv struct {
	db       *gorm.DB
	auth     *service.AuthService
	userRepo repository.UserRepository
}

func setupAuthTest(t *testing.T) *authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_auth_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.UseClient(client, "t")
	t.Cleanup(func() {
		cache.UseClient(nil, "")
		_ = client.Close()
	})

	auth := service.NewAuthService(&config.Config{
		UserJWT: config.JWTConfig{SecretKey: testUserSecret, ExpireHours: 1},
		JWT:     config.JWTConfig{SecretKey: "admin-secret", ExpireHours: 1},
	})
	return &authTestEnv{db: db, auth: auth, userRepo: repository.NewUserRepository(db)}
}

func (e *authTestEnv) serve(t *testing.T, token string) (int, map[string]interface{}) {
	t.Helper()
	r := gin.New()
	r.Use(UserJWTAuthMiddleware(testUserSecret, e.auth, e.userRepo))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status_code": 0, "user_id": c.GetUint("user_id")})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	code, _ := body["status_code"].(float64)
	return int(code), body
}

func TestAdminJWTAuthMiddlewareMissingSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(AdminJWTAuthMiddleware("", nil))
	r.GET("/admin/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", resp.StatusCode)
	}
}

func TestAdminJWTAuthMiddlewareRejectsUserToken(t *testing.T) {
	env := setupAuthTest(t)
	user := &models.User{Username: "alice", Status: constants.UserStatusActive}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	userToken, _, err := env.auth.GenerateUserJWT(user)
	if err != nil {
		t.Fatalf("generate user token failed: %v", err)
	}
	adminToken, _, err := env.auth.GenerateAdminJWT(7, "ops")
	if err != nil {
		t.Fatalf("generate admin token failed: %v", err)
	}

	r := gin.New()
	r.Use(AdminJWTAuthMiddleware("admin-secret", env.auth))
	r.GET("/admin/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status_code": 0, "admin_id": c.GetUint("admin_id")})
	})

	for token, want := range map[string]float64{userToken: 401, adminToken: 0} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		var body map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal response failed: %v", err)
		}
		if body["status_code"] != want {
			t.Fatalf("status_code want %v got %v", want, body["status_code"])
		}
	}
}

func TestUserJWTAuthMiddleware(t *testing.T) {
	env := setupAuthTest(t)
	user := &models.User{Username: "bob", Status: constants.UserStatusActive}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	token, _, err := env.auth.GenerateUserJWT(user)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	if code, _ := env.serve(t, ""); code != 401 {
		t.Fatalf("missing header want 401 got %d", code)
	}
	if code, _ := env.serve(t, "not-a-jwt"); code != 401 {
		t.Fatalf("invalid token want 401 got %d", code)
	}

	code, body := env.serve(t, token)
	if code != 0 || body["user_id"] != float64(user.ID) {
		t.Fatalf("valid token should pass, got %v", body)
	}
	state, hit, err := cache.GetUserAuthState(context.Background(), user.ID)
	if err != nil || !hit || state.Status != constants.UserStatusActive {
		t.Fatalf("auth state should be cached after db lookup, hit=%v err=%v", hit, err)
	}
}

func TestUserJWTAuthMiddlewareRevokedAndDisabled(t *testing.T) {
	env := setupAuthTest(t)
	user := &models.User{Username: "carol", Status: constants.UserStatusActive}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	token, _, err := env.auth.GenerateUserJWT(user)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	if err := env.db.Model(user).Update("token_version", 1).Error; err != nil {
		t.Fatalf("bump token version failed: %v", err)
	}
	code, body := env.serve(t, token)
	if code != 401 || !strings.Contains(fmt.Sprint(body["msg"]), "失效") {
		t.Fatalf("revoked token want 401, got %v", body)
	}

	if err := cache.SetUserAuthState(context.Background(), &cache.UserAuthState{
		UserID:       user.ID,
		Status:       constants.UserStatusDisabled,
		TokenVersion: 0,
	}); err != nil {
		t.Fatalf("set auth state failed: %v", err)
	}
	code, body = env.serve(t, token)
	if code != 401 || body["msg"] != "账号已被禁用" {
		t.Fatalf("disabled user from cache want 401, got %v", body)
	}
}
