package api

import (
	"embed"
	"io/fs"
)

//go:embed web
var webFS embed.FS

func staticFS() fs.FS {
	sub, err := fs.Sub(webFS, "web/static")
	if err != nil {
		// The directory is embedded at build time.
		panic(err)
	}
	return sub
}
