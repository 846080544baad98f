package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"downwatch/internal/model"
	"downwatch/internal/util"

	"github.com/gin-gonic/gin"
)

// ContextKeyClientIP 解析后的客户端地址在请求上下文中的键
const ContextKeyClientIP = "client_ip"

// 静态资源后缀 (维护模式下依然放行)
var assetExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".webp",
	".css", ".js", ".map",
	".woff", ".woff2", ".ttf", ".eot", ".otf",
}

// isAssetPath 按文件后缀判断是否静态资源路径
func isAssetPath(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range assetExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// isAdminPath 管理端路径绕过维护模式和黑名单
func isAdminPath(path string) bool {
	return strings.HasPrefix(path, "/admin")
}

// AccessGate 访问闸门, 挂在全局, 路由之前执行
// 顺序: 先维护模式, 后黑名单; 管理端路径两者都绕过
func AccessGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 有X-Forwarded-For头时取头里的地址, 否则取对端地址; 不做格式校验
		clientIP := c.ClientIP()
		c.Set(ContextKeyClientIP, clientIP)

		path := c.Request.URL.Path
		if !isAdminPath(path) {
			if !isAssetPath(path) && model.GetSettingValue(model.SettingKeyMaintenanceMode, "false") == "true" {
				c.HTML(http.StatusOK, "maintenance.html", nil)
				c.Abort()
				return
			}

			if ipBlacklistCache.IsBlacklisted(clientIP) {
				util.Forbidden(c, "Access denied")
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

// ============ IP黑名单缓存 ============

// IPBlacklistCache IP黑名单缓存
type IPBlacklistCache struct {
	mu         sync.RWMutex
	cache      map[string]bool
	lastUpdate time.Time
	ttl        time.Duration
}

var ipBlacklistCache *IPBlacklistCache

func init() {
	ipBlacklistCache = &IPBlacklistCache{
		cache: make(map[string]bool),
		ttl:   30 * time.Second, // 默认缓存30秒
	}
}

// SetIPBlacklistCacheTTL 设置IP黑名单缓存TTL
func SetIPBlacklistCacheTTL(seconds int) {
	ipBlacklistCache.mu.Lock()
	ipBlacklistCache.ttl = time.Duration(seconds) * time.Second
	ipBlacklistCache.mu.Unlock()
}

// IsBlacklisted 检查IP是否在黑名单 (带缓存)
func (c *IPBlacklistCache) IsBlacklisted(ip string) bool {
	c.mu.RLock()
	if time.Since(c.lastUpdate) > c.ttl {
		c.mu.RUnlock()
		c.refresh()
		c.mu.RLock()
	}
	result, exists := c.cache[ip]
	c.mu.RUnlock()

	if exists {
		return result
	}
	// 不在缓存中, 查数据库
	return model.IsIPBlacklisted(ip)
}

// refresh 刷新缓存
func (c *IPBlacklistCache) refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 双重检查
	if time.Since(c.lastUpdate) <= c.ttl {
		return
	}

	list, err := model.ListIPBlacklist()
	if err != nil {
		return
	}

	newCache := make(map[string]bool, len(list))
	for _, item := range list {
		newCache[item.IP] = true
	}
	c.cache = newCache
	c.lastUpdate = time.Now()
}

// Invalidate 使缓存失效 (黑名单增删后调用)
func (c *IPBlacklistCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]bool)
	c.lastUpdate = time.Time{}
}

// InvalidateIPBlacklistCache 使IP黑名单缓存失效
func InvalidateIPBlacklistCache() {
	ipBlacklistCache.Invalidate()
}
