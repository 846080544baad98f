package handler

import (
	"net/http"
	"time"

	"downwatch/config"
	"downwatch/internal/middleware"
	"downwatch/internal/model"
	"downwatch/internal/service"
	"downwatch/internal/util"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// ReportHandler 公开接口处理器
type ReportHandler struct {
	cfg *config.Config
}

// NewReportHandler 创建处理器
func NewReportHandler(cfg *config.Config) *ReportHandler {
	return &ReportHandler{cfg: cfg}
}

// Report 提交故障上报
// 同一地址在滑动窗口内只接受一次; 窗口随时间连续滑动, 不对齐自然日
func (h *ReportHandler) Report(c *gin.Context) {
	clientIP := c.GetString(middleware.ContextKeyClientIP)
	if clientIP == "" {
		clientIP = c.ClientIP()
	}

	now := time.Now().UnixMilli()
	since := now - h.cfg.Report.WindowMillis()

	recent, err := model.HasRecentReport(clientIP, since)
	if err != nil {
		log.Errorf("Failed to query recent reports: %v", err)
		util.ServerError(c)
		return
	}
	if recent {
		util.RateLimited(c, "You can only report once every 24 hours.")
		return
	}

	if err := model.CreateReport(clientIP, now); err != nil {
		log.Errorf("Failed to create report: %v", err)
		util.ServerError(c)
		return
	}

	util.Success(c)
}

// Status 查询公开状态
func (h *ReportHandler) Status(c *gin.Context) {
	result, err := service.GetStatusService().Resolve()
	if err != nil {
		log.Errorf("Failed to resolve status: %v", err)
		util.ServerError(c)
		return
	}
	c.JSON(http.StatusOK, result)
}
