package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dreamspace-builders/site-backend/config"
	adminhttp "github.com/dreamspace-builders/site-backend/internal/admin/http"
	adminrepo "github.com/dreamspace-builders/site-backend/internal/admin/repository"
	adminsvc "github.com/dreamspace-builders/site-backend/internal/admin/service"
	httpapi "github.com/dreamspace-builders/site-backend/internal/api/http"
	"github.com/dreamspace-builders/site-backend/internal/api/http/middleware"
	"github.com/dreamspace-builders/site-backend/internal/bootstrap"
	"github.com/dreamspace-builders/site-backend/internal/db"
	"github.com/dreamspace-builders/site-backend/internal/drafts"
	draftshttp "github.com/dreamspace-builders/site-backend/internal/drafts/http"
	enquirieshttp "github.com/dreamspace-builders/site-backend/internal/enquiries/http"
	enqrepo "github.com/dreamspace-builders/site-backend/internal/enquiries/repository"
	enqsvc "github.com/dreamspace-builders/site-backend/internal/enquiries/service"
	"github.com/dreamspace-builders/site-backend/internal/logging"
	"github.com/dreamspace-builders/site-backend/internal/maintenance"
	projectshttp "github.com/dreamspace-builders/site-backend/internal/projects/http"
	projrepo "github.com/dreamspace-builders/site-backend/internal/projects/repository"
	projsvc "github.com/dreamspace-builders/site-backend/internal/projects/service"
	"github.com/dreamspace-builders/site-backend/internal/storage/images"
)

type projectStore interface {
	projsvc.ProjectCreator
	projsvc.ProjectReader
	maintenance.ReferenceLister
}

type imageStore interface {
	images.Store
	images.Sweepable
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.App.LogLevel, cfg.App.Environment).With(
		"service", cfg.App.ServiceName,
		"version", cfg.App.Version,
	)
	slog.SetDefault(logger)
	bootstrap.SetGinMode(cfg.App.Environment)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := httpapi.NewHealthHandler(cfg.App.ServiceName, cfg.App.Version)

	fb, err := bootstrap.OpenFirebase(ctx, cfg.Firebase)
	if err != nil {
		return err
	}

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer rdb.Close()
	health.AddCheck("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })

	var (
		projects  projectStore
		enquiries enqsvc.Repository
	)
	switch cfg.Storage.DocumentStore {
	case config.DocumentStorePostgres:
		database, err := db.Open(ctx, db.Options{DSN: cfg.Database.DSN, MaxConns: cfg.Database.MaxConns, MinConns: cfg.Database.MinConns})
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return err
		}
		projects = projrepo.NewPostgresRepo(database.Pool)
		enquiries = enqrepo.NewPostgresRepo(database.Pool)
		health.AddCheck("document_store", database.Ping)
		logger.Info("using postgres document store")
	default:
		fs, err := fb.Firestore(ctx)
		if err != nil {
			return err
		}
		defer fs.Close()
		projects = projrepo.NewFirestoreRepo(fs)
		enquiries = enqrepo.NewFirestoreRepo(fs)
		health.AddCheck("document_store", bootstrap.FirestorePing(fs, "projects"))
		logger.Info("using firestore document store")
	}

	store, err := openImageStore(ctx, cfg, fb)
	if err != nil {
		return err
	}

	generator, err := openGenerator(ctx, cfg)
	if err != nil {
		return err
	}

	portfolio := projsvc.NewPortfolioService(projects, cfg.Storage.PortfolioCacheTTL)
	submissions := projsvc.NewSubmissionService(projects, store, projsvc.SubmissionOptions{
		MaxParallelUploads: cfg.Storage.MaxParallelUploads,
		Guard:              projsvc.NewRedisGuard(rdb, cfg.Admin.IdempotencyTTL),
		Invalidator:        portfolio,
	})
	authSvc := adminsvc.NewAuthService(adminrepo.NewSessionRepo(rdb), cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.SessionTTL)
	inbox := enqsvc.NewEnquiryService(enquiries, enqsvc.NewRedisReadTracker(rdb, cfg.Admin.SessionTTL))

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Health:         health,
		Sessions:       authSvc,
		IDTokens:       fb.Auth,
		Admin:          adminhttp.New(authSvc),
		Projects:       projectshttp.New(submissions, portfolio),
		Enquiries:      enquirieshttp.New(inbox, cfg.Location()),
		Drafts:         draftshttp.New(drafts.NewService(generator)),
		PublicLimiter:  middleware.NewIPRateLimiter(cfg.Server.PublicRateLimit, cfg.Server.PublicRateBurst, 10_000, 10*time.Minute),
	})

	scheduler := maintenance.NewScheduler(logger)
	if spec := cfg.Maintenance.OrphanSweepSchedule; spec != "" {
		sweeper := maintenance.NewOrphanSweeper(store, projects, cfg.Maintenance.OrphanGracePeriod)
		if err := scheduler.Add(ctx, "orphan_sweep", spec, sweeper.Run); err != nil {
			return err
		}
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	scheduler.Stop(shutdownCtx)
	return srv.Shutdown(shutdownCtx)
}

func openImageStore(ctx context.Context, cfg *config.Config, fb *bootstrap.Firebase) (imageStore, error) {
	if cfg.Storage.ImageStore == config.ImageStoreS3 {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.S3Region))
		if err != nil {
			return nil, err
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Storage.S3Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Storage.S3Endpoint)
				o.UsePathStyle = true
			}
		})
		base := cfg.Storage.S3PublicBaseURL
		if base == "" {
			base = images.DefaultS3BaseURL(cfg.Storage.S3Bucket, cfg.Storage.S3Region, cfg.Storage.S3Endpoint)
		}
		slog.Info("using s3 image store", "bucket", cfg.Storage.S3Bucket)
		return images.NewS3Store(client, cfg.Storage.S3Bucket, base), nil
	}

	bucket, err := fb.Bucket(ctx, cfg.Firebase.StorageBucket)
	if err != nil {
		return nil, err
	}
	slog.Info("using firebase image store", "bucket", cfg.Firebase.StorageBucket)
	return images.NewFirebaseStore(bucket, cfg.Firebase.StorageBucket), nil
}

func openGenerator(ctx context.Context, cfg *config.Config) (drafts.Generator, error) {
	if cfg.Drafts.Backend == "flow" {
		return drafts.NewFlowClient(cfg.Drafts.FlowURL, cfg.Drafts.Timeout), nil
	}
	return drafts.NewGeminiClient(ctx, cfg.Drafts.Model, cfg.Drafts.APIKey, cfg.Drafts.Timeout)
}
