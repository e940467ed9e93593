package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/agape-academy/academy-api/internal/handler"
	"github.com/agape-academy/academy-api/internal/middleware"
	"github.com/agape-academy/academy-api/internal/service"
	"github.com/agape-academy/academy-api/pkg/config"
	"github.com/agape-academy/academy-api/pkg/logger"
	corsmiddleware "github.com/agape-academy/academy-api/pkg/middleware/cors"
	reqidmiddleware "github.com/agape-academy/academy-api/pkg/middleware/requestid"
	securemiddleware "github.com/agape-academy/academy-api/pkg/middleware/secure"
)

type routeDeps struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *service.MetricsService
	auth    *service.AuthService
	limiter *middleware.RateLimiter

	blog      *handler.BlogHandler
	course    *handler.CourseHandler
	event     *handler.EventHandler
	forum     *handler.ForumHandler
	ticket    *handler.TicketHandler
	user      *handler.UserHandler
	assign    *handler.AssignmentHandler
	authH     *handler.AuthHandler
	contact   *handler.ContactHandler
	export    *handler.ExportHandler
	auditList *handler.AuditHandler
	seed      *handler.SeedHandler
}

func buildRouter(deps routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.logger))
	r.Use(corsmiddleware.New(deps.cfg.CORS.AllowedOrigins))
	r.Use(securemiddleware.Headers())
	r.Use(middleware.Metrics(deps.metrics))
	r.Use(deps.limiter.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(deps.metrics.Handler()))

	if deps.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(deps.cfg.APIPrefix)
	registerRoutes(api, deps)
	return r
}

func registerRoutes(api *gin.RouterGroup, deps routeDeps) {
	authed := middleware.Auth(deps.auth)
	staff := middleware.RequireTeacherOrAdmin()
	admin := middleware.RequireAdmin()
	paged := middleware.Pagination()

	blog := api.Group("/blog")
	{
		blog.GET("", paged, deps.blog.List)
		blog.GET("/:id", deps.blog.Get)
		blog.GET("/slug/:slug", deps.blog.GetBySlug)
		blog.POST("", authed, staff, deps.blog.Create)
		blog.PUT("/:id", authed, deps.blog.Update)
		blog.DELETE("/:id", authed, deps.blog.Delete)
		blog.POST("/:id/like", authed, deps.blog.Like)
		blog.DELETE("/:id/like", authed, deps.blog.Unlike)
	}

	courses := api.Group("/courses")
	{
		courses.GET("", paged, deps.course.List)
		courses.GET("/:id", deps.course.Get)
		courses.POST("", authed, staff, deps.course.Create)
		courses.PUT("/:id", authed, deps.course.Update)
		courses.DELETE("/:id", authed, deps.course.Delete)
		courses.POST("/:id/enroll", authed, deps.course.Enroll)
		courses.DELETE("/:id/enroll", authed, deps.course.Unenroll)
		courses.GET("/:id/enrollments", authed, paged, deps.course.ListEnrollments)
		courses.PUT("/:id/progress", authed, deps.course.UpdateProgress)
	}

	events := api.Group("/events")
	{
		events.GET("", paged, deps.event.List)
		events.GET("/:id", deps.event.Get)
		events.POST("", authed, staff, deps.event.Create)
		events.PUT("/:id", authed, deps.event.Update)
		events.DELETE("/:id", authed, deps.event.Delete)
	}

	forum := api.Group("/forum", authed)
	{
		forum.GET("/threads", paged, deps.forum.ListThreads)
		forum.GET("/threads/:id", deps.forum.GetThread)
		forum.POST("/threads", deps.forum.CreateThread)
		forum.PUT("/threads/:id", deps.forum.UpdateThread)
		forum.DELETE("/threads/:id", deps.forum.DeleteThread)
		forum.PUT("/threads/:id/pin", admin, deps.forum.PinThread)
		forum.PUT("/threads/:id/lock", admin, deps.forum.LockThread)
		forum.POST("/threads/:id/like", deps.forum.LikeThread)
		forum.DELETE("/threads/:id/like", deps.forum.UnlikeThread)
		forum.GET("/threads/:id/posts", paged, deps.forum.ListPosts)
		forum.POST("/threads/:id/posts", deps.forum.CreatePost)
		forum.PUT("/posts/:postId", deps.forum.UpdatePost)
		forum.DELETE("/posts/:postId", deps.forum.DeletePost)
	}

	tickets := api.Group("/tickets", authed)
	{
		tickets.GET("", paged, deps.ticket.List)
		tickets.GET("/:id", deps.ticket.Get)
		tickets.POST("", deps.ticket.Create)
		tickets.PUT("/:id", deps.ticket.Update)
		tickets.PUT("/:id/assign", admin, deps.ticket.Assign)
		tickets.PUT("/:id/resolve", admin, deps.ticket.Resolve)
		tickets.PUT("/:id/close", deps.ticket.Close)
		tickets.DELETE("/:id", admin, deps.ticket.Delete)
	}

	users := api.Group("/users", authed)
	{
		users.GET("", admin, paged, deps.user.List)
		users.GET("/me", deps.user.Me)
		users.GET("/:id", deps.user.Get)
		users.POST("", admin, deps.user.Create)
		users.PUT("/:id", deps.user.Update)
		users.DELETE("/:id", deps.user.Deactivate)
		users.PUT("/:id/activate", admin, deps.user.Activate)
	}

	assignments := api.Group("/assignments", authed)
	{
		assignments.GET("", paged, deps.assign.List)
		assignments.GET("/:id", deps.assign.Get)
		assignments.POST("", staff, deps.assign.Create)
		assignments.PUT("/:id", staff, deps.assign.Update)
		assignments.DELETE("/:id", staff, deps.assign.Delete)
	}

	api.GET("/auth/me", authed, deps.authH.Me)
	api.POST("/email", deps.contact.Submit)

	exports := api.Group("/exports")
	{
		// Download authenticates via the signed token instead of a bearer
		// header so browsers can follow the link directly.
		exports.GET("/download", deps.export.Download)
		exports.POST("", authed, admin, deps.export.Request)
		exports.GET("/:id", authed, admin, deps.export.Status)
	}

	api.GET("/audit", authed, admin, paged, deps.auditList.List)

	if deps.cfg.Env != config.EnvProduction {
		api.POST("/dev/seed", deps.seed.Run)
		api.POST("/dev/login", deps.authH.DevLogin)
	}
}
