package router

import (
	"html/template"
	"net/http"

	"downwatch/config"
	"downwatch/internal/handler"
	"downwatch/internal/middleware"
	"downwatch/internal/model"
	"downwatch/internal/service"
	"downwatch/web"

	"github.com/gin-gonic/gin"
)

// Setup 构建完整的路由表, main和测试共用
func Setup(cfg *config.Config) (*gin.Engine, error) {
	// 配置驱动的组件初始化
	middleware.InitRateLimiters(cfg.Security.RateLimitLogin, cfg.Security.RateLimitLoginBurst)
	middleware.SetIPBlacklistCacheTTL(cfg.Security.IPBlacklistCacheTTL)
	service.GetStatusService().Configure(cfg.Report.WindowMillis(), cfg.Report.DownThreshold)

	r := gin.New()
	r.Use(gin.Recovery())

	// 访问闸门: 每个请求先过维护模式和黑名单检查
	// 必须在注册任何路由之前挂载, 静态资源路由才会被黑名单覆盖
	r.Use(middleware.AccessGate())

	// 加载模板和静态文件 (根据构建模式自动选择嵌入或文件系统)
	if err := web.LoadTemplates(r, template.FuncMap{}); err != nil {
		return nil, err
	}
	if err := web.SetupStatic(r); err != nil {
		return nil, err
	}

	reportHandler := handler.NewReportHandler(cfg)
	adminHandler := handler.NewAdminHandler(cfg)

	// ============ 公开接口 ============
	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", nil)
	})
	r.POST("/report", reportHandler.Report)
	r.GET("/status", reportHandler.Status)

	// 健康检查 (用于负载均衡器)
	r.GET("/health", func(c *gin.Context) {
		if err := model.CheckDBHealth(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"db":     model.GetDBStats(),
		})
	})

	// ============ 管理后台 ============
	// 管理后台页面
	r.GET("/admin", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin.html", nil)
	})

	// 登录 (无需认证, 带限流)
	r.POST("/admin/login", middleware.LoginRateLimit(), adminHandler.Login)

	// 需要认证的管理接口
	adminAPI := r.Group("/admin")
	adminAPI.Use(middleware.AdminAuth(cfg))
	{
		adminAPI.POST("/logout", adminHandler.Logout)
		adminAPI.GET("/dashboard", adminHandler.Dashboard)
		adminAPI.GET("/dashboard/trend", adminHandler.DashboardTrend)
		adminAPI.POST("/set-status", adminHandler.SetStatus)
		adminAPI.POST("/maintenance", adminHandler.SetMaintenance)
		adminAPI.POST("/blacklist", adminHandler.AddBlacklist)
		adminAPI.DELETE("/blacklist/:ip", adminHandler.RemoveBlacklist)
	}

	return r, nil
}
