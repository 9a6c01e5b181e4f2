package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamspace-builders/site-backend/internal/admin/middleware"
	"github.com/dreamspace-builders/site-backend/internal/admin/repository"
	"github.com/dreamspace-builders/site-backend/internal/admin/service"
)

func setupRouter(t *testing.T) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	auth := service.NewAuthService(repository.NewSessionRepo(rdb), "admin", "s3cret", time.Hour)
	h := New(auth)

	r := gin.New()
	g := r.Group("/api/v1/admin")
	h.RegisterPublic(g)
	secured := g.Group("")
	secured.Use(middleware.RequireSession(auth))
	h.Register(secured)
	return r, mr
}

func do(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginLogoutFlow(t *testing.T) {
	r, _ := setupRouter(t)

	w := do(r, http.MethodPost, "/api/v1/admin/login", `{"username":"admin","password":"s3cret"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OK      bool `json:"ok"`
		Session struct {
			Token string `json:"token"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.OK)
	token := resp.Session.Token
	require.NotEmpty(t, token)

	w = do(r, http.MethodGet, "/api/v1/admin/me", "", map[string]string{"X-Admin-Session": token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"admin"`)

	w = do(r, http.MethodGet, "/api/v1/admin/me", "", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/api/v1/admin/logout", "", map[string]string{"X-Admin-Session": token})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/v1/admin/me", "", map[string]string{"X-Admin-Session": token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_Rejected(t *testing.T) {
	r, _ := setupRouter(t)

	w := do(r, http.MethodPost, "/api/v1/admin/login", `{"username":"admin","password":"nope"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, "/api/v1/admin/login", `{"username":"admin"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequireSession(t *testing.T) {
	r, mr := setupRouter(t)

	w := do(r, http.MethodGet, "/api/v1/admin/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/api/v1/admin/me", "", map[string]string{"X-Admin-Session": "forged"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	mr.Close()
	w = do(r, http.MethodGet, "/api/v1/admin/me", "", map[string]string{"X-Admin-Session": "whatever"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
