package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/coursemart-api/api/swagger"
	"github.com/noah-isme/coursemart-api/internal/handler"
	"github.com/noah-isme/coursemart-api/internal/repository"
	"github.com/noah-isme/coursemart-api/internal/service"
	"github.com/noah-isme/coursemart-api/pkg/cache"
	"github.com/noah-isme/coursemart-api/pkg/commerce"
	"github.com/noah-isme/coursemart-api/pkg/config"
	"github.com/noah-isme/coursemart-api/pkg/database"
	"github.com/noah-isme/coursemart-api/pkg/events"
	"github.com/noah-isme/coursemart-api/pkg/evidence"
	"github.com/noah-isme/coursemart-api/pkg/jobs"
	"github.com/noah-isme/coursemart-api/pkg/logger"
	"github.com/noah-isme/coursemart-api/pkg/paystack"
	"github.com/noah-isme/coursemart-api/pkg/storage"
)

// @title CourseMart API
// @version 1.0.0
// @description Storefront and back-office API for the course marketplace
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const (
	checkoutStateTTL = 2 * time.Hour
	catalogCacheTTL  = 5 * time.Minute
	resumeBatchSize  = 100
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("redis unavailable", "error", err)
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, catalogCacheTTL, logr, true)
	validate := validator.New()

	var (
		checkoutJournal   service.CheckoutJournal
		enrollmentJournal service.EnrollmentJournal
	)
	checks := map[string]handler.ReadinessCheck{
		"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}
	if cfg.Database.Enabled {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Warn("checkout journal disabled", zap.Error(err))
		} else {
			defer db.Close() //nolint:errcheck
			journalRepo := repository.NewJournalRepository(db)
			if err := journalRepo.EnsureSchema(ctx); err != nil {
				logr.Sugar().Fatalw("journal schema", "error", err)
			}
			checkoutJournal, enrollmentJournal = journalRepo, journalRepo
			checks["postgres"] = func(ctx context.Context) error { return db.PingContext(ctx) }
		}
	}

	client := commerce.NewClient(cfg.Commerce, logr, metricsSvc)
	cartRepo := repository.NewCartRepository(client)
	courseRepo := repository.NewCourseRepository(client)
	paymentRepo := repository.NewPaymentRepository(client)
	enrollmentRepo := repository.NewEnrollmentRepository(client)
	progressRepo := repository.NewProgressRepository(client)
	userRepo := repository.NewUserRepository(client)
	adminRepo := repository.NewAdminResourceRepository(client)
	sessionRepo := repository.NewSessionRepository(cacheRepo)
	stateRepo := repository.NewCheckoutStateRepository(cacheRepo, checkoutStateTTL)

	producer := events.NewProducer(cfg.Events, logr)
	defer producer.Close() //nolint:errcheck

	authSvc := service.NewAuthService(userRepo, sessionRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	cartSvc := service.NewCartService(cartRepo, validate, logr, cfg.Paystack.Currency)
	catalogSvc := service.NewCatalogService(courseRepo, cacheSvc, logr, cfg.Catalog.PageSize)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, cartSvc, logr)
	progressSvc := service.NewProgressService(courseRepo, progressRepo, enrollmentRepo, cacheSvc, metricsSvc, logr, service.ProgressConfig{
		WatchThreshold: cfg.Progress.WatchThreshold,
		CacheTTL:       cfg.Progress.CacheTTL,
		MarkTimeout:    cfg.Progress.MarkTimeout,
	})
	authSvc.OnLogout(cartSvc.Forget, progressSvc.Forget)
	adminSvc := service.NewAdminResourceService(adminRepo, catalogSvc, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)
	transferSvc := service.NewTransferService(paymentRepo, producer, validate, logr, service.TransferConfig{
		EvidenceBaseURL: cfg.Commerce.BaseURL + "/api/uploads/payment_evidence",
		Currency:        cfg.Paystack.Currency,
	})

	worker := service.NewEnrollmentWorker(enrollmentRepo, enrollmentJournal, metricsSvc, logr, jobs.QueueConfig{
		Workers:    cfg.Enrollments.WorkerConcurrency,
		MaxRetries: cfg.Enrollments.WorkerRetries,
		RetryDelay: cfg.Enrollments.RetryDelay,
		Logger:     logr,
	})
	worker.Start(ctx)
	if n, err := worker.Resume(ctx, resumeBatchSize); err != nil {
		logr.Warn("resume enrollment retries failed", zap.Error(err))
	} else if n > 0 {
		logr.Info("resumed enrollment retries", zap.Int("count", n))
	}

	deps := service.CheckoutDeps{
		Verifier:   paystack.NewClient(cfg.Paystack, logr),
		References: repository.NewPaymentReferenceRepository(cacheRepo, 0),
		Journal:    checkoutJournal,
		Retries:    worker,
		Events:     producer,
		Evidence:   evidence.NewValidator(cfg.Evidence.MaxFileSizeBytes),
		Metrics:    metricsSvc,
		Validator:  validate,
		Logger:     logr,
	}
	receiptSvc := newReceiptService(cfg, logr)
	if receiptSvc != nil {
		deps.Receipts = receiptSvc
	}
	checkoutSvc := service.NewCheckoutService(cartSvc, stateRepo, paymentRepo, enrollmentRepo, deps, service.CheckoutConfig{
		PublicKey:      cfg.Paystack.PublicKey,
		Currency:       cfg.Paystack.Currency,
		BankName:       cfg.Bank.BankName,
		AccountName:    cfg.Bank.AccountName,
		AccountNumber:  cfg.Bank.AccountNumber,
		WhatsAppNumber: cfg.Bank.WhatsAppNumber,
		RedirectDelay:  cfg.Bank.RedirectDelay,
	})

	r := newRouter(cfg, logr, routeDeps{
		auth:      authSvc,
		metrics:   metricsSvc,
		checks:    checks,
		catalog:   handler.NewCatalogHandler(catalogSvc),
		cart:      handler.NewCartHandler(cartSvc),
		enroll:    handler.NewEnrollmentHandler(enrollmentSvc),
		checkout:  handler.NewCheckoutHandler(checkoutSvc, cfg.Evidence.MaxFileSizeBytes),
		receipts:  newReceiptHandler(receiptSvc),
		student:   handler.NewStudentHandler(progressSvc),
		admin:     handler.NewAdminHandler(adminSvc, userSvc),
		transfers: handler.NewTransferHandler(transferSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("server shutdown", zap.Error(err))
	}
	worker.Stop()
	progressSvc.Wait()
}

func newReceiptService(cfg *config.Config, logr *zap.Logger) *service.ReceiptService {
	if cfg.Receipts.SignedURLSecret == "" {
		logr.Warn("receipts disabled: RECEIPTS_SIGNED_URL_SECRET not set")
		return nil
	}
	store, err := storage.NewLocalStorage(cfg.Receipts.StorageDir)
	if err != nil {
		logr.Warn("receipts disabled", zap.Error(err))
		return nil
	}
	svc := service.NewReceiptService(store, storage.NewSignedURLSigner(cfg.Receipts.SignedURLSecret, cfg.Receipts.SignedURLTTL), nil, service.ReceiptConfig{
		APIPrefix: cfg.APIPrefix,
		Currency:  cfg.Paystack.Currency,
	}, logr)
	if removed, err := svc.Cleanup(); err != nil {
		logr.Warn("receipt cleanup failed", zap.Error(err))
	} else if len(removed) > 0 {
		logr.Info("expired receipts removed", zap.Int("count", len(removed)))
	}
	return svc
}

func newReceiptHandler(svc *service.ReceiptService) *handler.ReceiptHandler {
	if svc == nil {
		return nil
	}
	return handler.NewReceiptHandler(svc)
}
