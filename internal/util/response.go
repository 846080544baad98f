package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success 成功响应
func Success(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ValidationError 参数验证失败响应
func ValidationError(c *gin.Context, msg string) {
	if msg == "" {
		msg = "Invalid request"
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// Unauthorized 未授权响应
func Unauthorized(c *gin.Context, msg string) {
	if msg == "" {
		msg = "Authentication required"
	}
	c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// Forbidden 禁止访问响应
func Forbidden(c *gin.Context, msg string) {
	if msg == "" {
		msg = "Access denied"
	}
	c.JSON(http.StatusForbidden, gin.H{"error": msg})
}

// RateLimited 请求过于频繁响应
func RateLimited(c *gin.Context, msg string) {
	if msg == "" {
		msg = "Too many requests"
	}
	c.JSON(http.StatusTooManyRequests, gin.H{"error": msg})
}

// ServerError 服务器内部错误响应 (不向调用方泄露内部细节)
func ServerError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
}
