package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"schoolfest/backend/config"
	"schoolfest/backend/internal/api/handler"
	"schoolfest/backend/internal/api/middleware"
	"schoolfest/backend/pkg/jwt"
	"schoolfest/backend/pkg/redis"
)

// 全局请求体上限；生徒导入文件另有 5MB 限制
const maxBodyBytes = 6 << 20

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	lookupLimit := middleware.RateLimit(rdb, cfg.Server.LookupRateLimit, time.Minute, logger)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", lookupLimit, h.Auth.Login)

		// 生徒端公开接口（按 IP 限流）
		public := v1.Group("")
		public.Use(lookupLimit)
		{
			public.GET("/students/number/:num", h.Student.GetStudentByNum)
			public.GET("/students/number/:num/entries", h.Entry.ListByStudentNum)
			public.GET("/students/:id/participations", h.Participation.ListByStudent)
			public.GET("/students/:id/calendar.ics", h.Calendar.StudentCalendar)

			public.GET("/events", h.Event.ListEvents)
			public.GET("/events/:id", h.Event.GetEvent)

			public.GET("/recreations", h.Recreation.ListRecreations)
			public.GET("/recreations/:id", h.Recreation.GetRecreation)

			public.POST("/participations", h.Participation.Register)
			public.POST("/participations/:id/cancel", h.Participation.Cancel)
		}

		// 管理端（需要 admin 角色）
		admin := v1.Group("")
		admin.Use(middleware.JWTAuth(jwtMgr), middleware.RoleAuth("admin"))
		{
			// 生徒模块
			admin.GET("/students", h.Student.ListStudents)
			admin.GET("/students/:id", h.Student.GetStudent)
			admin.POST("/students/import", h.Student.ImportStudents)

			// イベント・出場模块
			admin.POST("/events", h.Event.CreateEvent)
			admin.PUT("/events/:id", h.Event.UpdateEvent)
			admin.DELETE("/events/:id", h.Event.DeleteEvent)
			admin.POST("/entries", h.Entry.CreateEntry)
			admin.DELETE("/entries/:id", h.Entry.DeleteEntry)

			// レクリエーション模块
			admin.POST("/recreations", h.Recreation.CreateRecreation)
			admin.PUT("/recreations/:id", h.Recreation.UpdateRecreation)
			admin.DELETE("/recreations/:id", h.Recreation.DeleteRecreation)
			admin.GET("/recreations/:id/participants", h.Participation.ListByRecreation)
			admin.GET("/recreations/:id/participants/export", h.Export.ExportRoster)

			// 参加模块
			admin.DELETE("/participations/:id", h.Participation.Delete)

			// 审计日志模块
			admin.GET("/logs", h.DownloadLog.ListLogs)
			admin.GET("/logs/stats", h.DownloadLog.Stats)
			admin.GET("/logs/student/:num", h.DownloadLog.ListByStudentNum)
		}
	}

	return r
}
