// Package web serves the browser front end. The page is a thin client: every
// key press is posted to the calculator API and the returned view is drawn.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var assets embed.FS

// Handler serves the embedded page and its assets from the site root.
func Handler() http.Handler {
	static, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServerFS(static)
}
