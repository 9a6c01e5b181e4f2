package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adminhttp "github.com/dreamspace-builders/site-backend/internal/admin/http"
	adminrepo "github.com/dreamspace-builders/site-backend/internal/admin/repository"
	adminsvc "github.com/dreamspace-builders/site-backend/internal/admin/service"
	httpapi "github.com/dreamspace-builders/site-backend/internal/api/http"
	"github.com/dreamspace-builders/site-backend/internal/api/http/middleware"
	"github.com/dreamspace-builders/site-backend/internal/drafts"
	draftshttp "github.com/dreamspace-builders/site-backend/internal/drafts/http"
	enqdomain "github.com/dreamspace-builders/site-backend/internal/enquiries/domain"
	enquirieshttp "github.com/dreamspace-builders/site-backend/internal/enquiries/http"
	enqsvc "github.com/dreamspace-builders/site-backend/internal/enquiries/service"
	projdomain "github.com/dreamspace-builders/site-backend/internal/projects/domain"
	projectshttp "github.com/dreamspace-builders/site-backend/internal/projects/http"
	projsvc "github.com/dreamspace-builders/site-backend/internal/projects/service"
	"github.com/dreamspace-builders/site-backend/internal/storage/images"
)

type noProjects struct{}

func (noProjects) Create(context.Context, *projdomain.Project) (string, error) { return "p1", nil }
func (noProjects) ListAll(context.Context) ([]projdomain.Project, error)       { return nil, nil }
func (noProjects) QueryByFlag(context.Context, projdomain.Flag, any) ([]projdomain.Project, error) {
	return nil, nil
}

type noImages struct{}

func (noImages) Put(_ context.Context, p string, _ []byte, _ string) (images.Ref, error) {
	return images.Ref{Path: p}, nil
}
func (noImages) DownloadURL(_ context.Context, r images.Ref) (string, error) { return r.Path, nil }

type noEnquiries struct{}

func (noEnquiries) Create(context.Context, enqdomain.NewEnquiry) (string, error) { return "e1", nil }
func (noEnquiries) List(context.Context) ([]enqdomain.Enquiry, error)            { return nil, nil }
func (noEnquiries) MarkReadBatch(context.Context, []string) (int, error)         { return 0, nil }
func (noEnquiries) Delete(context.Context, string) error                         { return nil }

type rejectTokens struct{}

func (rejectTokens) VerifyIDToken(context.Context, string) (*fbauth.Token, error) {
	return nil, errors.New("invalid")
}

type noDrafts struct{}

func (noDrafts) Generate(context.Context, drafts.Input) (string, error) { return "draft", nil }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	auth := adminsvc.NewAuthService(adminrepo.NewSessionRepo(rdb), "admin", "secret", time.Hour)
	portfolio := projsvc.NewPortfolioService(noProjects{}, 0)
	submissions := projsvc.NewSubmissionService(noProjects{}, noImages{}, projsvc.SubmissionOptions{Invalidator: portfolio})

	return BuildRouter(RouterDeps{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		AllowedOrigins: []string{"http://localhost:3000"},
		Health:         httpapi.NewHealthHandler("test", "0.0.0"),
		Sessions:       auth,
		IDTokens:       rejectTokens{},
		Admin:          adminhttp.New(auth),
		Projects:       projectshttp.New(submissions, portfolio),
		Enquiries:      enquirieshttp.New(enqsvc.NewEnquiryService(noEnquiries{}, enqsvc.NewMemoryReadTracker()), time.UTC),
		Drafts:         draftshttp.New(drafts.NewService(noDrafts{})),
		PublicLimiter:  middleware.NewIPRateLimiter(100, 100, 10, time.Minute),
	})
}

func do(r http.Handler, method, path, session string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set("X-Admin-Session", session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicRoutes(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/metrics", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/projects/categories", "", nil).Code)

	w := do(r, http.MethodGet, "/api/v1/projects", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}

func TestRouter_AdminRoutesNeedSession(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/api/v1/admin/enquiries", "/api/v1/admin/me", "/api/v1/admin/enquiries/export.csv"} {
		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, path, "", nil).Code, path)
	}
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/api/v1/admin/projects", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/v1/admin/enquiries", "forged", nil).Code)
}

func TestRouter_LoginThenAdminRoutes(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/admin/login", "", []byte(`{"username":"admin","password":"secret"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Session struct {
			Token string `json:"token"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	token := resp.Session.Token
	require.NotEmpty(t, token)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/admin/me", token, nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/admin/enquiries", token, nil).Code)

	// A session alone is not enough to submit: the Firebase ID token is
	// checked next.
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/api/v1/admin/projects", token, nil).Code)

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/v1/admin/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/v1/admin/me", token, nil).Code)
}
