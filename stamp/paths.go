package stamp

import (
	"path"
	"path/filepath"
)

// TemplatesDir is the content-root relative directory that holds one folder
// per course key.
const TemplatesDir = "img/certificados"

func keyDir(root, key string) string {
	return filepath.Join(root, TemplatesDir, key)
}

func keyFile(root, key, ext string) string {
	return filepath.Join(keyDir(root, key), key+ext)
}

// PublicPath is the URL path under which a stored template is served.
func PublicPath(key, ext string) string {
	return "/" + path.Join(TemplatesDir, key, key+ext)
}
