package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-commerce-api/internal/domain/entity"
	"github.com/oksasatya/go-commerce-api/internal/domain/repository"
	"github.com/oksasatya/go-commerce-api/pkg/helpers"
)

type stubUserRepo struct {
	users map[string]*entity.User
}

func (r *stubUserRepo) Create(context.Context, *entity.User) error { return nil }
func (r *stubUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}
func (r *stubUserRepo) GetByEmail(context.Context, string) (*entity.User, error) {
	return nil, repository.ErrNotFound
}
func (r *stubUserRepo) GetByResetToken(context.Context, string, time.Time) (*entity.User, error) {
	return nil, repository.ErrNotFound
}
func (r *stubUserRepo) Update(context.Context, *entity.User) error { return nil }

func setupProtected(t *testing.T, users *stubUserRepo, jwt *helpers.JWTManager, extra ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	r := gin.New()
	chain := append([]gin.HandlerFunc{Protect(jwt, users, logger)}, extra...)
	chain = append(chain, func(c *gin.Context) {
		u := UserFromContext(c)
		require.NotNil(t, u)
		c.JSON(http.StatusOK, gin.H{"id": u.ID})
	})
	r.GET("/secure", chain...)
	return r
}

func messageOf(t *testing.T, body []byte) string {
	t.Helper()
	var envelope struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope.Message
}

func TestProtectValidToken(t *testing.T) {
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	users := &stubUserRepo{users: map[string]*entity.User{
		"u-1": {ID: "u-1", Email: "alice@example.com"},
	}}
	r := setupProtected(t, users, jwt)

	token, _, err := jwt.Generate("u-1")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u-1")
}

func TestProtectMissingToken(t *testing.T) {
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	r := setupProtected(t, &stubUserRepo{}, jwt)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/secure", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized, no token", messageOf(t, w.Body.Bytes()))
}

func TestProtectNonBearerHeader(t *testing.T) {
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	r := setupProtected(t, &stubUserRepo{}, jwt)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Basic abc123")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized, no token", messageOf(t, w.Body.Bytes()))
}

func TestProtectBadToken(t *testing.T) {
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	r := setupProtected(t, &stubUserRepo{}, jwt)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized, token failed", messageOf(t, w.Body.Bytes()))
}

func TestProtectDeletedUser(t *testing.T) {
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	r := setupProtected(t, &stubUserRepo{users: map[string]*entity.User{}}, jwt)

	token, _, err := jwt.Generate("u-gone")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authorized, token failed", messageOf(t, w.Body.Bytes()))
}

func TestRequireAdmin(t *testing.T) {
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	users := &stubUserRepo{users: map[string]*entity.User{
		"admin": {ID: "admin", IsAdmin: true},
		"plain": {ID: "plain", IsAdmin: false},
	}}
	r := setupProtected(t, users, jwt, RequireAdmin())

	for _, tc := range []struct {
		userID  string
		status  int
		message string
	}{
		{"admin", http.StatusOK, ""},
		{"plain", http.StatusUnauthorized, "Not authorized as an admin"},
	} {
		token, _, err := jwt.Generate(tc.userID)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		assert.Equal(t, tc.status, w.Code, "user %s", tc.userID)
		if tc.message != "" {
			assert.Equal(t, tc.message, messageOf(t, w.Body.Bytes()))
		}
	}
}
