package handler

import (
	"errors"
	"net/http"
	"time"

	"downwatch/config"
	"downwatch/internal/middleware"
	"downwatch/internal/model"
	"downwatch/internal/service"
	"downwatch/internal/util"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// AdminHandler 管理后台处理器
type AdminHandler struct {
	cfg *config.Config
}

// NewAdminHandler 创建处理器
func NewAdminHandler(cfg *config.Config) *AdminHandler {
	return &AdminHandler{cfg: cfg}
}

// Login 管理员登录
// 凭据来自进程配置 (环境变量注入), 不走数据库
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		util.ValidationError(c, "Username and password are required")
		return
	}

	if !util.CheckUsername(req.Username, h.cfg.Admin.Username) ||
		!util.CheckPassword(req.Password, h.cfg.Admin.Password) {
		util.Unauthorized(c, "Invalid credentials")
		return
	}

	// 签发会话JWT, 经Cookie携带
	expireHour := h.cfg.Session.ExpireHour
	if expireHour <= 0 {
		expireHour = 24
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": req.Username,
		"exp":      time.Now().Add(time.Duration(expireHour) * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString([]byte(h.cfg.Session.Secret))
	if err != nil {
		log.Errorf("Failed to sign session token: %v", err)
		util.ServerError(c)
		return
	}

	c.SetCookie(middleware.SessionCookieName, tokenString, expireHour*3600, "/", "", false, true)
	util.Success(c)
}

// Logout 管理员登出, 无条件清除会话Cookie, 总是返回成功
func (h *AdminHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	util.Success(c)
}

// Dashboard 仪表盘数据
// 窗口内上报按地址聚合 + 全部黑名单 + 全部设置, 只读
func (h *AdminHandler) Dashboard(c *gin.Context) {
	since := time.Now().UnixMilli() - h.cfg.Report.WindowMillis()
	reports, err := model.GetRecentReports(since)
	if err != nil {
		log.Errorf("Failed to query recent reports: %v", err)
		util.ServerError(c)
		return
	}

	blacklist, err := model.ListIPBlacklist()
	if err != nil {
		log.Errorf("Failed to list blacklist: %v", err)
		util.ServerError(c)
		return
	}
	if blacklist == nil {
		blacklist = []model.IPBlacklist{}
	}

	settings, err := model.GetAllSettings()
	if err != nil {
		log.Errorf("Failed to load settings: %v", err)
		util.ServerError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports":        service.GroupReportsByIP(reports),
		"blacklistedIPs": blacklist,
		"settings":       settings,
	})
}

// DashboardTrend 窗口内上报的按小时趋势
func (h *AdminHandler) DashboardTrend(c *gin.Context) {
	since := time.Now().UnixMilli() - h.cfg.Report.WindowMillis()
	reports, err := model.GetRecentReports(since)
	if err != nil {
		log.Errorf("Failed to query recent reports: %v", err)
		util.ServerError(c)
		return
	}

	labels, counts := service.HourlyTrend(reports, time.Now(), h.cfg.Report.WindowHours)
	c.JSON(http.StatusOK, gin.H{
		"labels": labels,
		"counts": counts,
	})
}

// SetStatus 设置强制状态
func (h *AdminHandler) SetStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		util.ValidationError(c, "Invalid status value")
		return
	}

	switch req.Status {
	case model.ForceStatusUp, model.ForceStatusDown, model.ForceStatusAuto:
	default:
		util.ValidationError(c, "Invalid status value")
		return
	}

	if err := model.SetSettingValue(model.SettingKeyForceStatus, req.Status); err != nil {
		log.Errorf("Failed to set force_status: %v", err)
		util.ServerError(c)
		return
	}

	util.Success(c)
}

// SetMaintenance 切换维护模式
func (h *AdminHandler) SetMaintenance(c *gin.Context) {
	var req struct {
		Enabled bool `json:"enabled"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		util.ValidationError(c, "Invalid request body")
		return
	}

	value := "false"
	if req.Enabled {
		value = "true"
	}
	if err := model.SetSettingValue(model.SettingKeyMaintenanceMode, value); err != nil {
		log.Errorf("Failed to set maintenance_mode: %v", err)
		util.ServerError(c)
		return
	}

	util.Success(c)
}

// AddBlacklist 添加IP到黑名单
func (h *AdminHandler) AddBlacklist(c *gin.Context) {
	var req struct {
		IP     string `json:"ip" binding:"required"`
		Reason string `json:"reason"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		util.ValidationError(c, "IP address is required")
		return
	}

	if err := model.AddIPToBlacklist(req.IP, req.Reason); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.ValidationError(c, "IP is already blacklisted")
			return
		}
		log.Errorf("Failed to add IP to blacklist: %v", err)
		util.ServerError(c)
		return
	}

	middleware.InvalidateIPBlacklistCache()
	util.Success(c)
}

// RemoveBlacklist 从黑名单移除IP (幂等, IP不存在也返回成功)
func (h *AdminHandler) RemoveBlacklist(c *gin.Context) {
	ip := c.Param("ip")

	if err := model.RemoveIPFromBlacklist(ip); err != nil {
		log.Errorf("Failed to remove IP from blacklist: %v", err)
		util.ServerError(c)
		return
	}

	middleware.InvalidateIPBlacklistCache()
	util.Success(c)
}
