package middleware

import (
	"sync"
	"time"

	"downwatch/config"
	"downwatch/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName 管理员会话Cookie名
const SessionCookieName = "downwatch_session"

// ContextKeyAdminUser 已认证管理员用户名在请求上下文中的键
const ContextKeyAdminUser = "admin_username"

// AdminAuth 管理员会话闸门
// 会话标记是登录时签发的Cookie携带的JWT; 缺失或无效则终止请求
func AdminAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookieName)
		if err != nil || tokenString == "" {
			util.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.Session.Secret), nil
		})
		if err != nil || !token.Valid {
			util.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if username, ok := claims["username"].(string); ok {
				c.Set(ContextKeyAdminUser, username)
			}
		}

		c.Next()
	}
}

// ============ 限流器实现 ============

// RateLimiter 基于令牌桶的限流器
type RateLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*tokenBucket
	rate        float64       // 每秒生成的令牌数
	capacity    int           // 桶容量
	cleanupTick time.Duration // 清理间隔
	stop        chan struct{}
	stopOnce    sync.Once
}

// tokenBucket 令牌桶
type tokenBucket struct {
	tokens     float64
	lastUpdate time.Time
}

// NewRateLimiter 创建限流器
// rate: 每秒允许的请求数, capacity: 突发容量
func NewRateLimiter(rate float64, capacity int) *RateLimiter {
	rl := &RateLimiter{
		buckets:     make(map[string]*tokenBucket),
		rate:        rate,
		capacity:    capacity,
		cleanupTick: 5 * time.Minute,
		stop:        make(chan struct{}),
	}
	// 定期清理过期桶
	go rl.cleanup()
	return rl
}

// Stop 结束清理协程; 限流器本身仍可继续使用
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stop)
	})
}

// Allow 检查是否允许请求
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	bucket, exists := rl.buckets[key]

	if !exists {
		rl.buckets[key] = &tokenBucket{
			tokens:     float64(rl.capacity) - 1,
			lastUpdate: now,
		}
		return true
	}

	// 按经过的时间补充令牌
	elapsed := now.Sub(bucket.lastUpdate).Seconds()
	bucket.tokens += elapsed * rl.rate
	if bucket.tokens > float64(rl.capacity) {
		bucket.tokens = float64(rl.capacity)
	}
	bucket.lastUpdate = now

	if bucket.tokens >= 1 {
		bucket.tokens--
		return true
	}
	return false
}

// cleanup 定期清理过期的桶, Stop后退出
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.cleanupTick)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for key, bucket := range rl.buckets {
				// 清理10分钟未使用的桶
				if now.Sub(bucket.lastUpdate) > 10*time.Minute {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

var loginRateLimiter *RateLimiter

func init() {
	loginRateLimiter = NewRateLimiter(2, 5)
}

// InitRateLimiters 根据配置初始化限流器, 旧实例的清理协程一并结束
func InitRateLimiters(loginRate float64, loginBurst int) {
	if loginRateLimiter != nil {
		loginRateLimiter.Stop()
	}
	loginRateLimiter = NewRateLimiter(loginRate, loginBurst)
}

// LoginRateLimit 登录接口限流中间件
func LoginRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.GetString(ContextKeyClientIP)
		if clientIP == "" {
			clientIP = c.ClientIP()
		}
		if !loginRateLimiter.Allow(clientIP) {
			util.RateLimited(c, "Too many login attempts")
			c.Abort()
			return
		}
		c.Next()
	}
}
