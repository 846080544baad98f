// Package testutil 提供测试用的内存数据库和路由搭建
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"downwatch/config"
	"downwatch/internal/middleware"
	"downwatch/internal/model"
	"downwatch/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
)

// SetupDB 用内存sqlite初始化模型层
// 单连接避免每个连接各自拿到一份独立的内存库
func SetupDB(t *testing.T) {
	t.Helper()
	cfg := model.DBConfig{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Hour,
	}
	require.NoError(t, model.InitDBWithConfig(sqlite.Open(":memory:"), cfg))
}

// NewTestConfig 测试配置 (登录限流放宽, 避免干扰用例)
func NewTestConfig() *config.Config {
	return &config.Config{
		Admin: config.AdminConfig{
			Username: "admin",
			Password: "secret123",
		},
		Session: config.SessionConfig{
			Secret:     "test-session-secret",
			ExpireHour: 1,
		},
		Report: config.ReportConfig{
			WindowHours:   24,
			DownThreshold: 30,
		},
		Security: config.SecurityConfig{
			RateLimitLogin:      1000,
			RateLimitLoginBurst: 1000,
			IPBlacklistCacheTTL: 1,
		},
		Log: config.LogConfig{Level: "error"},
	}
}

// NewTestServer 内存数据库 + 完整路由
func NewTestServer(t *testing.T) (*gin.Engine, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	SetupDB(t)
	cfg := NewTestConfig()
	r, err := router.Setup(cfg)
	require.NoError(t, err)
	return r, cfg
}

// DoJSON 发送JSON请求, ip写入X-Forwarded-For, cookies附加到请求
func DoJSON(r http.Handler, method, path, ip string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// LoginAdmin 执行管理员登录并返回会话Cookie
func LoginAdmin(t *testing.T, r http.Handler, cfg *config.Config) *http.Cookie {
	t.Helper()
	w := DoJSON(r, http.MethodPost, "/admin/login", "10.0.0.1", map[string]string{
		"username": cfg.Admin.Username,
		"password": cfg.Admin.Password,
	})
	require.Equal(t, http.StatusOK, w.Code)

	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	t.Fatal("session cookie not set after login")
	return nil
}
