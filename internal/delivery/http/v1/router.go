package v1

import (
	"go-jobboard-backend/config"
	"go-jobboard-backend/internal/delivery/http/middleware"
	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/internal/usecase"
	"go-jobboard-backend/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC        domain.AuthUsecase
	JobUC         domain.JobUsecase
	ResumeUC      domain.ResumeUsecase
	ApplicationUC domain.ApplicationUsecase
	AdminUC       domain.AdminUsecase
	HealthUC      usecase.HealthUsecase
	Verifier      middleware.TokenVerifier
	Redis         *goredis.Client // optional
	UploadLimiter *security.UploadLimiter
	Audit         *security.AuditLogger
	Config        *config.Config
}

// routeGroups are the access tiers every handler registers into.
type routeGroups struct {
	public       *gin.RouterGroup // anonymous
	optional     *gin.RouterGroup // principal attached when present
	registration *gin.RouterGroup // verified token, account may not exist yet
	authed       *gin.RouterGroup // registered, non-blocked account
	candidate    *gin.RouterGroup
	recruiter    *gin.RouterGroup // active recruiters only
	admin        *gin.RouterGroup
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = deps.Config.MaxResumeBytes() + 1<<20

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL, deps.Config.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.RateLimit(deps.Redis, middleware.GlobalRateLimitConfig(deps.Config.RateLimitGlobalThreshold, deps.Config.RateLimitWindowSeconds), deps.Audit))
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authed := v1.Group("", middleware.Authenticate(deps.Verifier, deps.AuthUC))
	g := routeGroups{
		public:       v1,
		optional:     v1.Group("", middleware.OptionalAuth(deps.Verifier, deps.AuthUC)),
		registration: v1.Group("", middleware.VerifyToken(deps.Verifier)),
		authed:       authed,
		candidate:    authed.Group("", middleware.RequireRole(domain.RoleCandidate)),
		recruiter:    authed.Group("", middleware.RequireRole(domain.RoleRecruiter), middleware.RequireActiveAccount()),
		admin:        authed.Group("", middleware.RequireRole(domain.RoleAdmin)),
	}

	NewHealthHandler(g, deps.HealthUC)
	NewAuthHandler(g, deps.AuthUC)
	NewJobHandler(g, deps.JobUC)
	NewResumeHandler(g, deps.ResumeUC, deps.UploadLimiter, deps.Audit, deps.Config.MaxResumeBytes())
	NewApplicationHandler(g, deps.ApplicationUC, deps.ResumeUC)
	NewAdminHandler(g, deps.AdminUC, deps.JobUC)

	return r
}
