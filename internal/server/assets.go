package server

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-contrib/static"
)

//go:embed public templates
var embedded embed.FS

// pageTemplates parses the page rendered at "/".
func pageTemplates() (*template.Template, error) {
	return template.ParseFS(embedded, "templates/*.html")
}

// embedFS serves a sub-tree of an fs.FS through gin-contrib/static.
type embedFS struct {
	http.FileSystem
	fsys fs.FS
}

var _ static.ServeFileSystem = (*embedFS)(nil)

func newEmbedFS(fsys fs.FS, dir string) (*embedFS, error) {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return nil, err
	}

	return &embedFS{FileSystem: http.FS(sub), fsys: sub}, nil
}

// Exists reports whether urlPath maps to a file, or to a directory with an
// index.html.
func (e *embedFS) Exists(prefix string, urlPath string) bool {
	p := strings.TrimPrefix(urlPath, prefix)
	p = strings.Trim(path.Clean("/"+p), "/")
	if p == "" {
		p = "."
	}

	info, err := fs.Stat(e.fsys, p)
	if err != nil {
		return false
	}

	if !info.IsDir() {
		return true
	}

	_, err = fs.Stat(e.fsys, path.Join(p, "index.html"))

	return err == nil
}

// assets returns the disk directory when configured, else the embedded
// stylesheet and friends.
func assets(publicDir string) (static.ServeFileSystem, error) {
	if publicDir != "" {
		return static.LocalFile(publicDir, false), nil
	}

	return newEmbedFS(embedded, "public")
}
