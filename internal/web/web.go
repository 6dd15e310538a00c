// Package web embeds the HTML templates and static assets.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Engine returns a template engine over the embedded templates. Templates are
// addressed by path without extension, e.g. "ranges" or "partials/head".
func Engine() *html.Engine {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("num", formatNumber)
	engine.AddFunc("str", formatString)
	engine.AddFunc("date", func(t time.Time) string { return t.Format("2006-01-02") })
	engine.AddFunc("stamp", func(t time.Time) string { return t.Format("2006-01-02 15:04") })
	return engine
}

// Static returns the embedded static assets rooted at "static".
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

func formatNumber(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}

func formatString(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}
