package app

import (
	"context"
	"mini_lms_backend/internal/config"
	"mini_lms_backend/internal/controller"
	"mini_lms_backend/internal/repository"
	"mini_lms_backend/internal/service"
	"mini_lms_backend/internal/util"
	"mini_lms_backend/pkg/configwatcher"
	"mini_lms_backend/pkg/database"
	"mini_lms_backend/pkg/logger"
	"mini_lms_backend/pkg/monitoring"
	"mini_lms_backend/pkg/security"
	"mini_lms_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	ConfigDir       string
	Router          *gin.Engine
	DB              *gorm.DB
	services        *services
	tracerProvider  *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
	stopWatch       context.CancelFunc
}

type repositories struct {
	user         *repository.UserRepository
	course       *repository.CourseRepository
	module       *repository.ModuleRepository
	enrollment   *repository.EnrollmentRepository
	progress     *repository.ProgressRepository
	feedback     *repository.FeedbackRepository
	notification *repository.NotificationRepository
	analytics    *repository.AnalyticsRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	notification *service.NotificationService
	course       *service.CourseService
	module       *service.ModuleService
	enrollment   *service.EnrollmentService
	progress     *service.ProgressService
	feedback     *service.FeedbackService
	analytics    *service.AnalyticsService
	user         *service.UserService
}

type controllers struct {
	auth         *controller.AuthController
	course       *controller.CourseController
	module       *controller.ModuleController
	enrollment   *controller.EnrollmentController
	progress     *controller.ProgressController
	feedback     *controller.FeedbackController
	analytics    *controller.AnalyticsController
	notification *controller.NotificationController
	user         *controller.UserController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		course:       repository.NewCourseRepository(db),
		module:       repository.NewModuleRepository(db),
		enrollment:   repository.NewEnrollmentRepository(db),
		progress:     repository.NewProgressRepository(db),
		feedback:     repository.NewFeedbackRepository(db),
		notification: repository.NewNotificationRepository(db),
		analytics:    repository.NewAnalyticsRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) (*services, error) {
	s := &services{}

	storage, err := service.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	s.storage = storage

	s.auth = service.NewAuthService(repos.user, cfg)
	s.notification = service.NewNotificationService(repos.notification, service.NewMailer(cfg.Notifier), cfg.Notifier.AdminEmail)
	s.course = service.NewCourseService(
		db,
		repos.course,
		repos.module,
		repos.enrollment,
		repos.progress,
		repos.feedback,
		repos.notification,
		repos.user,
		s.notification,
	)
	s.module = service.NewModuleService(
		db,
		repos.course,
		repos.module,
		repos.enrollment,
		repos.progress,
		s.notification,
		s.storage,
	)
	s.enrollment = service.NewEnrollmentService(db, repos.course, repos.enrollment, repos.progress, repos.feedback)
	s.progress = service.NewProgressService(repos.module, repos.enrollment, repos.progress)
	s.feedback = service.NewFeedbackService(repos.course, repos.enrollment, repos.feedback)
	s.analytics = service.NewAnalyticsService(repos.course, repos.analytics)
	s.user = service.NewUserService(
		db,
		repos.user,
		repos.course,
		repos.enrollment,
		repos.progress,
		repos.feedback,
		repos.notification,
	)

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		course:       controller.NewCourseController(s.course),
		module:       controller.NewModuleController(s.module),
		enrollment:   controller.NewEnrollmentController(s.enrollment),
		progress:     controller.NewProgressController(s.progress),
		feedback:     controller.NewFeedbackController(s.feedback),
		analytics:    controller.NewAnalyticsController(s.analytics),
		notification: controller.NewNotificationController(s.notification),
		user:         controller.NewUserController(s.user),
		health:       controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// registerConfigCallbacks 配置热更新：日志级别与下架申请收件人
func (a *App) registerConfigCallbacks(s *services) {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		logger.SetLevel(cfg)
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		if cfg.Notifier.AdminEmail != s.notification.AdminEmail() {
			logger.Log.Info("Takedown admin email changed", zap.String("adminEmail", cfg.Notifier.AdminEmail))
			s.notification.SetAdminEmail(cfg.Notifier.AdminEmail)
		}
	})
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		DB:        db,
	}
	if cfg.MigrateOnly {
		return app
	}

	repos := app.initRepositories(db)
	svcs, err := app.initServices(repos, cfg, db)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	app.services = svcs
	ctrls := app.initControllers(svcs, db)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrls, repos, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.registerConfigCallbacks(svcs)
	if cfg.Server.WatchConfig {
		ctx, cancel := context.WithCancel(context.Background())
		if err := configwatcher.WatchConfig(ctx, configDir, app.applyConfig); err != nil {
			logger.Log.Warn("Config watcher disabled", zap.Error(err))
			cancel()
		} else {
			app.stopWatch = cancel
		}
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	if a.stopWatch != nil {
		a.stopWatch()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}
