package server

import (
	"io/fs"
	"net/http"
	"strings"
)

// uiFS holds the embedded front end. Set via SetUI before creating the server.
var uiFS fs.FS

// SetUI sets the embedded filesystem for serving the front end.
func SetUI(fsys fs.FS) {
	uiFS = fsys
}

// spaHandler serves static files from the embedded FS. Paths that do not
// name a file get index.html so the client-side router can take them.
func spaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if uiFS == nil {
			writeError(w, http.StatusNotFound, "front end not embedded in this build")
			return
		}

		path := strings.TrimPrefix(r.URL.Path, "/")
		if path == "" || strings.HasSuffix(path, "/") {
			path = "index.html"
		}
		if info, err := fs.Stat(uiFS, path); err != nil || info.IsDir() {
			path = "index.html"
		}

		http.ServeFileFS(w, r, uiFS, path)
	}
}
