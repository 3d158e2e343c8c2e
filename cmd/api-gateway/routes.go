package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/coursemart-api/internal/handler"
	"github.com/noah-isme/coursemart-api/internal/middleware"
	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/internal/service"
	"github.com/noah-isme/coursemart-api/pkg/config"
	"github.com/noah-isme/coursemart-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/coursemart-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/coursemart-api/pkg/middleware/requestid"
)

type routeDeps struct {
	auth      *service.AuthService
	metrics   *service.MetricsService
	checks    map[string]handler.ReadinessCheck
	catalog   *handler.CatalogHandler
	cart      *handler.CartHandler
	enroll    *handler.EnrollmentHandler
	checkout  *handler.CheckoutHandler
	receipts  *handler.ReceiptHandler
	student   *handler.StudentHandler
	admin     *handler.AdminHandler
	transfers *handler.TransferHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(deps.metrics))
	r.Use(middleware.WithResponseMeta())

	ops := handler.NewMetricsHandler(deps.metrics, deps.checks)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authRequired := middleware.JWT(deps.auth)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	backOffice := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff)
	studentOnly := middleware.RequireRoles(models.RoleStudent, models.RoleAdmin)

	authHandler := handler.NewAuthHandler(deps.auth)
	authGroup := api.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authRequired, authHandler.Logout)
	authGroup.GET("/me", authRequired, authHandler.Me)

	catalog := api.Group("/catalog")
	catalog.GET("/courses", deps.catalog.ListCourses)
	catalog.GET("/courses/:slug", deps.catalog.CourseDetail)
	catalog.GET("/categories", deps.catalog.Categories)

	api.GET("/courses/:courseId/enrollment", middleware.OptionalJWT(deps.auth), deps.enroll.Status)

	cart := api.Group("/cart", authRequired)
	cart.GET("", deps.cart.Get)
	cart.POST("/items", deps.cart.Add)
	cart.DELETE("/items/:courseId", deps.cart.Remove)

	checkout := api.Group("/checkout", authRequired)
	checkout.GET("", deps.checkout.View)
	checkout.PUT("/method", deps.checkout.SelectMethod)
	checkout.POST("/paystack/init", deps.checkout.InitPaystack)
	checkout.POST("/paystack/complete", deps.checkout.CompletePaystack)
	checkout.POST("/paystack/cancel", deps.checkout.CancelPaystack)
	checkout.POST("/bank/proceed", deps.checkout.ProceedBank)
	checkout.POST("/bank/submit", deps.checkout.SubmitBank)

	if deps.receipts != nil {
		api.GET("/receipts/download", deps.receipts.Download)
	}

	student := api.Group("/student", authRequired, studentOnly)
	student.GET("/courses", deps.student.Courses)
	student.GET("/courses/:slug", deps.student.Course)
	student.POST("/courses/:slug/lectures/:lectureId/progress", deps.student.Playback)
	student.DELETE("/courses/:slug/lectures/:lectureId/progress", deps.student.Reset)

	admin := api.Group("/admin", authRequired)
	admin.GET("/resources/:resource", adminOnly, deps.admin.ListResource)
	admin.POST("/resources/:resource", adminOnly, middleware.Audit(logr, "resource.create"), deps.admin.CreateResource)
	admin.PUT("/resources/:resource/:id", adminOnly, middleware.Audit(logr, "resource.update"), deps.admin.UpdateResource)
	admin.DELETE("/resources/:resource/:id", adminOnly, middleware.Audit(logr, "resource.delete"), deps.admin.DeleteResource)
	admin.GET("/users", adminOnly, deps.admin.ListUsers)
	admin.PUT("/users/:id/role", adminOnly, middleware.Audit(logr, "user.role"), deps.admin.UpdateRole)
	admin.GET("/transfers", backOffice, deps.transfers.List)
	admin.GET("/transfers/export", backOffice, deps.transfers.Export)
	admin.POST("/transfers/:id/verify", adminOnly, middleware.Audit(logr, "transfer.verify"), deps.transfers.Verify)

	return r
}
