//go:build !dev

package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*
var templateFS embed.FS

//go:embed static/css static/js static/img
var staticFS embed.FS

// IsEmbedded 返回是否使用嵌入资源
func IsEmbedded() bool {
	return true
}

// LoadTemplates 加载模板 (生产模式 - 从嵌入资源)
func LoadTemplates(r *gin.Engine, funcMap template.FuncMap) error {
	tmpl := template.New("").Funcs(funcMap)

	err := fs.WalkDir(templateFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		content, err := templateFS.ReadFile(path)
		if err != nil {
			return err
		}

		_, err = tmpl.New(d.Name()).Parse(string(content))
		return err
	})

	if err != nil {
		return err
	}

	r.SetHTMLTemplate(tmpl)
	return nil
}

// SetupStatic 设置静态文件服务 (生产模式 - 从嵌入资源)
func SetupStatic(r *gin.Engine) error {
	staticSubFS, err := fs.Sub(staticFS, "static")
	if err != nil {
		return err
	}

	r.StaticFS("/static/css", http.FS(mustSub(staticSubFS, "css")))
	r.StaticFS("/static/js", http.FS(mustSub(staticSubFS, "js")))
	r.StaticFS("/static/img", http.FS(mustSub(staticSubFS, "img")))

	return nil
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
