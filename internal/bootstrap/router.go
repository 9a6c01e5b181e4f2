package bootstrap

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhttp "github.com/dreamspace-builders/site-backend/internal/admin/http"
	adminmw "github.com/dreamspace-builders/site-backend/internal/admin/middleware"
	httpapi "github.com/dreamspace-builders/site-backend/internal/api/http"
	"github.com/dreamspace-builders/site-backend/internal/api/http/middleware"
	authmw "github.com/dreamspace-builders/site-backend/internal/auth/middleware"
	draftshttp "github.com/dreamspace-builders/site-backend/internal/drafts/http"
	enquirieshttp "github.com/dreamspace-builders/site-backend/internal/enquiries/http"
	projectshttp "github.com/dreamspace-builders/site-backend/internal/projects/http"
	"github.com/dreamspace-builders/site-backend/internal/validation"
)

type RouterDeps struct {
	Logger         *slog.Logger
	AllowedOrigins []string

	Health   *httpapi.HealthHandler
	Sessions adminmw.SessionResolver
	IDTokens authmw.TokenVerifier

	Admin     *adminhttp.Handler
	Projects  *projectshttp.Handler
	Enquiries *enquirieshttp.Handler
	Drafts    *draftshttp.Handler

	// Applied to the contact form, admin login and draft generation.
	PublicLimiter *middleware.IPRateLimiter
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	validation.RegisterGin()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(dep.Logger))
	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", adminmw.HeaderAdminSession, projectshttp.HeaderIdempotencyKey, middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Disposition", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	dep.Health.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limit := dep.PublicLimiter.Middleware()

	api := r.Group("/api/v1")
	dep.Projects.RegisterPublic(api.Group("/projects"))
	dep.Enquiries.RegisterPublic(api.Group("/enquiries"), limit)

	admin := api.Group("/admin")
	dep.Admin.RegisterPublic(admin, limit)

	session := admin.Group("")
	session.Use(adminmw.RequireSession(dep.Sessions))
	dep.Admin.Register(session)
	dep.Enquiries.RegisterAdmin(session.Group("/enquiries"))
	dep.Projects.RegisterAdmin(session.Group("/projects"), authmw.RequireIDToken(dep.IDTokens))
	dep.Drafts.Register(session.Group("/drafts"), limit)

	return r
}
