//go:build dev

package web

import (
	"html/template"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// IsEmbedded 返回是否使用嵌入资源
func IsEmbedded() bool {
	return false
}

// getBaseDir 获取基础目录 (可执行文件所在目录)
func getBaseDir() string {
	// 优先使用环境变量
	if dir := os.Getenv("DOWNWATCH_BASE_DIR"); dir != "" {
		return dir
	}

	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// LoadTemplates 加载模板 (开发模式 - 从文件系统)
func LoadTemplates(r *gin.Engine, funcMap template.FuncMap) error {
	baseDir := getBaseDir()
	templatePath := filepath.Join(baseDir, "web", "templates", "*")

	r.SetFuncMap(funcMap)
	r.LoadHTMLGlob(templatePath)
	return nil
}

// SetupStatic 设置静态文件服务 (开发模式 - 从文件系统)
func SetupStatic(r *gin.Engine) error {
	baseDir := getBaseDir()

	staticPath := filepath.Join(baseDir, "web", "static")
	r.Static("/static/css", filepath.Join(staticPath, "css"))
	r.Static("/static/js", filepath.Join(staticPath, "js"))
	r.Static("/static/img", filepath.Join(staticPath, "img"))

	return nil
}
