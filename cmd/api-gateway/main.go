package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/attachlink/placement-api/api/swagger"
	"github.com/attachlink/placement-api/internal/handler"
	"github.com/attachlink/placement-api/internal/middleware"
	"github.com/attachlink/placement-api/internal/models"
	"github.com/attachlink/placement-api/internal/repository"
	"github.com/attachlink/placement-api/internal/service"
	"github.com/attachlink/placement-api/pkg/cache"
	"github.com/attachlink/placement-api/pkg/config"
	"github.com/attachlink/placement-api/pkg/database"
	"github.com/attachlink/placement-api/pkg/export"
	"github.com/attachlink/placement-api/pkg/logger"
	"github.com/attachlink/placement-api/pkg/mailer"
	corsmiddleware "github.com/attachlink/placement-api/pkg/middleware/cors"
	reqidmiddleware "github.com/attachlink/placement-api/pkg/middleware/requestid"
	"github.com/attachlink/placement-api/pkg/storage"
)

// @title AttachLink Placement API
// @version 1.0.0
// @description Internship placement platform: accounts, job board, applications and engagement tracking
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, board caching disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	store, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	var mail mailer.Mailer
	if cfg.SMTP.Enabled {
		mail = mailer.NewSMTPMailer(cfg.SMTP, cfg.BaseURL)
	} else {
		mail = mailer.NewLogMailer(logr)
	}

	validate := validator.New()

	// Repositories.
	accountRepo := repository.NewAccountRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	jobRepo := repository.NewJobRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	resumeRepo := repository.NewResumeRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	authService := service.NewAuthService(accountRepo, mail, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		ResetTokenTTL:      cfg.Auth.ResetTokenTTL,
		MaxFailedAttempts:  cfg.Auth.MaxFailedAttempts,
		Issuer:             "placement-api",
	})
	registrationService := service.NewRegistrationService(
		accountRepo, studentRepo, companyRepo, mail, validate, logr, cfg.Auth.ActivationTokenTTL,
	)
	studentService := service.NewStudentService(studentRepo, validate, logr)
	companyService := service.NewCompanyService(companyRepo, validate, logr)
	jobService := service.NewJobService(jobRepo, studentRepo, cacheRepo, validate, logr, service.BoardConfig{
		CacheEnabled: cfg.Board.CacheEnabled && redisClient != nil,
		CacheTTL:     cfg.Board.CacheTTL,
	})
	applicationService := service.NewApplicationService(
		applicationRepo, jobRepo, studentRepo, resumeRepo, jobService, validate, logr,
	)
	resumeService := service.NewResumeService(resumeRepo, studentRepo, export.NewPDFExporter(), validate, logr)
	engagementService := service.NewEngagementService(engagementRepo, applicationRepo, studentRepo, validate, logr)
	documentService := service.NewDocumentService(documentRepo, applicationRepo, validate, logr)
	dashboardService := service.NewDashboardService(
		studentRepo, companyRepo, jobRepo, applicationRepo, resumeRepo, engagementRepo, logr, cfg.Board.RecentJobs,
	)
	metricsService := service.NewMetricsService()

	// Handlers.
	uploader := handler.NewUploader(store, signer, handler.UploadConfig{MaxFileSizeBytes: cfg.Uploads.MaxFileSizeBytes})
	authHandler := handler.NewAuthHandler(authService, registrationService)
	studentHandler := handler.NewStudentHandler(studentService, uploader)
	companyHandler := handler.NewCompanyHandler(companyService, documentService, uploader)
	jobHandler := handler.NewJobHandler(jobService, companyService)
	applicationHandler := handler.NewApplicationHandler(applicationService, studentService, companyService, documentService, uploader)
	resumeHandler := handler.NewResumeHandler(resumeService)
	engagementHandler := handler.NewEngagementHandler(engagementService, studentService, companyService, uploader)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsService))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(metricsService.Handler()))
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register/student", authHandler.RegisterStudent)
		auth.POST("/register/company", authHandler.RegisterCompany)
		auth.GET("/activate", authHandler.Activate)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)

		authed := auth.Group("", middleware.JWT(authService))
		authed.POST("/logout", authHandler.Logout)
		authed.POST("/change-password", authHandler.ChangePassword)
		authed.GET("/me", authHandler.Me)
	}

	api.GET("/files/:token", uploader.Download)

	protected := api.Group("", middleware.JWT(authService))

	protected.DELETE("/accounts/:id", middleware.RequireRoles(models.RoleAdmin), authHandler.Deactivate)

	students := protected.Group("/students")
	{
		students.GET("/me", middleware.RequireRoles(models.RoleStudent), studentHandler.Me)
		students.POST("/me/picture", middleware.RequireRoles(models.RoleStudent), studentHandler.UploadProfilePicture)
		students.POST("/me/id-images", middleware.RequireRoles(models.RoleStudent), studentHandler.UploadIDImages)
		students.GET("", middleware.RequireRoles(models.RoleAdmin), studentHandler.List)
		students.GET("/:id", studentHandler.Get)
		students.PUT("/:id", middleware.RequireRoles(models.RoleStudent, models.RoleAdmin), studentHandler.Update)
		students.PATCH("/:id/accept", middleware.RequireRoles(models.RoleAdmin), studentHandler.SetAccepted)
	}

	companies := protected.Group("/companies")
	{
		companies.GET("/me", middleware.RequireRoles(models.RoleCompany), companyHandler.Me)
		companies.POST("/me/logo", middleware.RequireRoles(models.RoleCompany), companyHandler.UploadLogo)
		companies.POST("/me/documents", middleware.RequireRoles(models.RoleCompany), companyHandler.UploadDocument)
		companies.GET("/me/documents", middleware.RequireRoles(models.RoleCompany), companyHandler.ListDocuments)
		companies.GET("", companyHandler.List)
		companies.GET("/:id", companyHandler.Get)
		companies.PUT("/:id", middleware.RequireRoles(models.RoleCompany, models.RoleAdmin), companyHandler.Update)
	}
	protected.PATCH("/documents/company/:id/verify", middleware.RequireRoles(models.RoleAdmin), companyHandler.VerifyDocument)

	jobs := protected.Group("/jobs")
	{
		jobs.GET("/board", middleware.RequireRoles(models.RoleStudent), jobHandler.Board)
		jobs.POST("", middleware.RequireRoles(models.RoleCompany), jobHandler.Create)
		jobs.GET("", middleware.RequireRoles(models.RoleCompany, models.RoleAdmin), jobHandler.List)
		jobs.GET("/:id", jobHandler.Get)
		jobs.PUT("/:id", middleware.RequireRoles(models.RoleCompany, models.RoleAdmin), jobHandler.Update)
		jobs.PATCH("/:id/close", middleware.RequireRoles(models.RoleCompany, models.RoleAdmin), jobHandler.Close)
		jobs.DELETE("/:id", middleware.RequireRoles(models.RoleCompany, models.RoleAdmin), jobHandler.Delete)
	}

	applications := protected.Group("/applications")
	{
		applications.POST("", middleware.RequireRoles(models.RoleStudent), applicationHandler.Apply)
		applications.GET("", applicationHandler.List)
		applications.GET("/export", middleware.RequireRoles(models.RoleCompany), applicationHandler.ExportCSV)
		applications.GET("/documents", middleware.RequireRoles(models.RoleStudent), applicationHandler.ListDocuments)
		applications.GET("/:id", applicationHandler.Get)
		applications.PATCH("/:id/decision", middleware.RequireRoles(models.RoleCompany, models.RoleAdmin), applicationHandler.Decide)
		applications.POST("/:id/documents", middleware.RequireRoles(models.RoleStudent), applicationHandler.UploadDocument)
	}

	resumes := protected.Group("/resumes")
	{
		resumes.GET("/me", middleware.RequireRoles(models.RoleStudent), resumeHandler.GetMine)
		resumes.PUT("/me", middleware.RequireRoles(models.RoleStudent), resumeHandler.Upsert)
		resumes.GET("/:studentId/pdf", resumeHandler.ExportPDF)
	}

	projects := protected.Group("/projects")
	{
		projects.POST("", middleware.RequireRoles(models.RoleCompany), engagementHandler.CreateProject)
		projects.GET("", middleware.RequireRoles(models.RoleStudent, models.RoleCompany), engagementHandler.ListProjects)
		projects.GET("/:id", engagementHandler.GetProject)
		projects.GET("/:id/tasks", engagementHandler.ListProjectTasks)
	}
	protected.POST("/tasks", middleware.RequireRoles(models.RoleCompany, models.RoleAdmin), engagementHandler.CreateTask)

	taskUpdates := protected.Group("/task-updates")
	{
		taskUpdates.POST("", middleware.RequireRoles(models.RoleStudent), engagementHandler.SubmitTaskUpdate)
		taskUpdates.GET("/submitted", middleware.RequireRoles(models.RoleCompany), engagementHandler.ListSubmittedUpdates)
		taskUpdates.PATCH("/:id/review", middleware.RequireRoles(models.RoleCompany, models.RoleAdmin), engagementHandler.ReviewTaskUpdate)
	}

	dashboard := protected.Group("/dashboard")
	{
		dashboard.GET("/student", middleware.RequireRoles(models.RoleStudent), dashboardHandler.Student)
		dashboard.GET("/company", middleware.RequireRoles(models.RoleCompany), dashboardHandler.Company)
		dashboard.GET("/admin", middleware.RequireRoles(models.RoleAdmin), dashboardHandler.Admin)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
