package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/fieldlab-api/internal/handler"
	"github.com/noah-isme/fieldlab-api/internal/middleware"
	"github.com/noah-isme/fieldlab-api/internal/models"
	"github.com/noah-isme/fieldlab-api/internal/service"
	"github.com/noah-isme/fieldlab-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/fieldlab-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/fieldlab-api/pkg/middleware/requestid"
)

// Options configures the engine.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Verifier       middleware.TokenVerifier
}

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Patients *handler.PatientHandler
	Samples  *handler.SampleHandler
	Results  *handler.ResultHandler
	Metrics  *handler.MetricsHandler
}

// New builds the gin engine. Every authenticated route sits behind the JWT
// gate and the role namespace check.
func New(opts Options, h Handlers) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	prefix := "/" + strings.Trim(opts.APIPrefix, "/")

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger, middleware.ActorFields))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(prefix)
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.GET("/auth/admin-status", h.Auth.AdminStatus)
	api.GET("/files/:id", h.Samples.SignedImage)

	authed := api.Group("", middleware.JWT(opts.Verifier), middleware.Namespace(prefix))
	authed.GET("/auth/me", h.Auth.Me)
	authed.GET("/profile", h.Auth.Profile)
	authed.POST("/profile/change-password", h.Auth.ChangePassword)

	admin := authed.Group(models.Namespace(models.RoleAdmin))
	admin.GET("/users", h.Users.List)
	admin.PATCH("/users/:id", h.Users.ApplyAction)

	field := authed.Group(models.Namespace(models.RoleFieldCollector))
	field.GET("/patients", h.Patients.List)
	field.POST("/patients", h.Patients.Create)
	field.GET("/patients/search", h.Patients.Search)
	field.GET("/patients/:id", h.Patients.Get)
	field.POST("/samples", h.Samples.Create)
	field.GET("/samples", h.Samples.List)
	field.GET("/samples/images/:id", h.Samples.Image)

	lab := authed.Group(models.Namespace(models.RoleLabTech))
	lab.GET("/samples", h.Samples.List)
	lab.GET("/samples/images/:id", h.Samples.Image)
	lab.GET("/samples/:id", h.Samples.Get)
	lab.POST("/samples/:id/review", h.Samples.Review)

	patient := authed.Group(models.Namespace(models.RolePatient))
	patient.GET("/results", h.Results.Results)
	patient.GET("/results/export", h.Results.Export)

	return r
}
