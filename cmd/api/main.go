package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "backoffice/api/swagger" // swagger docs
	"backoffice/internal/config"
	"backoffice/internal/database"
	"backoffice/internal/handler"
	"backoffice/internal/mailer"
	"backoffice/internal/middleware"
	"backoffice/internal/repository"
	"backoffice/internal/service"
	"backoffice/internal/store"
	"backoffice/internal/websocket"
	"backoffice/pkg/logger"
	"backoffice/pkg/metrics"
	"backoffice/pkg/token"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const shutdownTimeout = 10 * time.Second

// @title           Back Office API
// @version         1.0
// @description     Property back office: assets, tenants, payments, field tasks and role based menus.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.basic BasicAuth
func main() {
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var extra []zapcore.Core
	if cfg.Loki.URL != "" {
		extra = append(extra, logger.NewLokiCore(cfg.Loki.URL, cfg.Loki.User, cfg.Loki.Password, cfg.Loki.Labels, logger.ParseLevel(cfg.Log.Level)))
	}
	zl, err := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Output: cfg.Log.Output,
		Path:   cfg.Log.Path,
		JSON:   cfg.IsProduction(),
		Extra:  extra,
	})
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewConnection(cfg.Database, zl)
	if err != nil {
		return err
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resets, closeStore := store.New(cfg.Redis.Addr, cfg.Redis.Password)
	defer func() { _ = closeStore() }()

	m := metrics.New()
	issuer := token.NewIssuer(cfg.JWT.Secret, cfg.JWT.TokenTTL)
	mail := mailer.New(cfg.SMTP, zl)

	// Repositories
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	grantRepo := repository.NewRoleMenuPermissionRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	leaseRepo := repository.NewLeaseRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	groupRepo := repository.NewTaskGroupRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	userTaskRepo := repository.NewUserTaskRepository(db)
	scanRepo := repository.NewScanInfoRepository(db)
	complaintRepo := repository.NewComplaintReportRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	// Services
	accessService := service.NewAccessService(userRepo, roleRepo, menuRepo, grantRepo, time.Minute, zl)
	hub := websocket.NewHub(zl, cfg.CORSOrigins, accessService)
	go hub.Run(ctx)
	roleService := service.NewRoleService(txManager, roleRepo, menuRepo, grantRepo, auditRepo, accessService, hub)
	menuService := service.NewMenuService(txManager, menuRepo, auditRepo, accessService)
	userService := service.NewUserService(service.UserServiceDeps{
		TxManager: txManager,
		Users:     userRepo,
		Roles:     roleRepo,
		Audit:     auditRepo,
		Issuer:    issuer,
		Resets:    resets,
		Mailer:    mail,
		ResetURL:  resetURL(cfg),
		Log:       zl,
	})
	auditService := service.NewAuditService(auditRepo)
	assetService := service.NewAssetService(assetRepo)
	unitService := service.NewUnitService(unitRepo, assetRepo)
	tenantService := service.NewTenantService(txManager, tenantRepo, leaseRepo, unitRepo, paymentRepo, auditRepo)
	paymentService := service.NewPaymentService(txManager, paymentRepo, tenantRepo, auditRepo)
	groupService := service.NewTaskGroupService(txManager, groupRepo, userRepo)
	taskService := service.NewTaskService(taskRepo, groupRepo)
	userTaskService := service.NewUserTaskService(txManager, groupRepo, userTaskRepo, auditRepo, hub, m.UserTasksIssued)
	scanService := service.NewScanInfoService(scanRepo, userTaskRepo, assetRepo)
	complaintService := service.NewComplaintReportService(txManager, complaintRepo, auditRepo, hub)
	settingService := service.NewSettingService(txManager, settingRepo, auditRepo)
	uploadService := service.NewUploadService(txManager, attachmentRepo, auditRepo, cfg.Upload.Dir, cfg.AppBaseURL, cfg.Upload.MaxWidth, zl)
	reminderService := service.NewReminderService(txManager, paymentRepo, auditRepo, mail, hub, m.RemindersSent, cfg.Reminder.DaysAhead, zl)
	dashboardService := service.NewDashboardService(dashboardRepo, paymentRepo)

	guard := middleware.NewGuard(accessService, m.AccessDenied)

	router := gin.New()
	router.MaxMultipartMemory = 32 << 20
	router.Use(middleware.Recovery(zl), middleware.RequestLogger(zl), m.Middleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Request-ID"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}
	router.GET("/ws", hub.ServeWs(issuer))
	router.Static("/uploads", cfg.Upload.Dir)

	public := router.Group("")
	authed := router.Group("", middleware.Authenticate(issuer, userRepo))
	internal := router.Group("", middleware.InternalBasicAuth(cfg.Internal.User, cfg.Internal.Password))

	handler.NewAuthHandler(userService, accessService).RegisterRoutes(public, authed)
	handler.NewUserHandler(userService, guard).RegisterRoutes(authed)
	handler.NewRoleHandler(roleService, guard).RegisterRoutes(authed)
	handler.NewMenuHandler(menuService, guard).RegisterRoutes(authed)
	handler.NewAuditHandler(auditService, guard).RegisterRoutes(authed)
	handler.NewAssetHandler(assetService, unitService, guard).RegisterRoutes(authed)
	handler.NewTenantHandler(tenantService, paymentService, guard).RegisterRoutes(authed)
	handler.NewPaymentHandler(paymentService, guard).RegisterRoutes(authed)
	handler.NewTaskHandler(groupService, taskService, guard).RegisterRoutes(authed)
	handler.NewUserTaskHandler(userTaskService, guard).RegisterRoutes(authed)
	handler.NewScanInfoHandler(scanService, guard).RegisterRoutes(authed)
	handler.NewComplaintHandler(complaintService, guard).RegisterRoutes(authed)
	handler.NewSettingHandler(settingService, guard).RegisterRoutes(authed)
	handler.NewDashboardHandler(dashboardService, guard).RegisterRoutes(authed)
	handler.NewUploadHandler(uploadService).RegisterRoutes(authed)
	handler.NewInternalHandler(reminderService).RegisterRoutes(internal)

	if cfg.Reminder.Cron != "" {
		c := cron.New()
		if _, err := c.AddFunc(cfg.Reminder.Cron, func() { runReminders(ctx, reminderService, zl) }); err != nil {
			return err
		}
		c.Start()
		defer c.Stop()
		zl.Info("payment reminders scheduled", zap.String("cron", cfg.Reminder.Cron))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}

// resetURL is the front-end page that consumes password reset tokens
func resetURL(cfg *config.Config) string {
	base := cfg.AppBaseURL
	if cfg.BaseURLDomain != "" {
		base = cfg.BaseURLDomain
	}
	return base + "/reset-password"
}

func runReminders(ctx context.Context, svc service.ReminderService, log *zap.Logger) {
	res, err := svc.Run(ctx, 0)
	if err != nil {
		log.Error("payment reminder run failed", zap.Error(err))
		return
	}
	log.Info("payment reminder run",
		zap.Int64("marked_overdue", res.MarkedOverdue),
		zap.Int("due", res.Due),
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed),
	)
}
