// Package web holds the dashboard page of the monitoring server.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
)

// EnvAssetDir names a directory to serve the dashboard from instead of the
// copy compiled into the binary. It is meant for editing the page without
// rebuilding.
const EnvAssetDir = "MMIOSIM_MONITOR_ASSETS"

//go:embed dist/*
var dashboard embed.FS

// Handler serves the dashboard. Pages read from EnvAssetDir are sent with
// caching disabled so that a reload picks up edits.
func Handler() http.Handler {
	dir, ok := os.LookupEnv(EnvAssetDir)
	if !ok || dir == "" {
		return http.FileServer(http.FS(embedded()))
	}

	fmt.Fprintf(os.Stderr, "Monitor dashboard served from %s\n", dir)

	files := http.FileServer(http.Dir(dir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		files.ServeHTTP(w, r)
	})
}

func embedded() fs.FS {
	sub, err := fs.Sub(dashboard, "dist")
	if err != nil {
		panic(err)
	}

	return sub
}
