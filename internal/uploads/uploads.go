// Package uploads stores project images under a flat directory, keyed by a
// timestamp-prefixed copy of the original filename.
package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

var allowedExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

func Allowed(filename string) bool {
	return allowedExt[strings.ToLower(filepath.Ext(filename))]
}

// SecureName flattens directory components and drops any byte that is not
// alphanumeric, dot, dash or underscore, so the result is safe to join onto
// the upload directory.
func SecureName(filename string) string {
	filename = strings.ReplaceAll(filename, "/", " ")
	filename = strings.ReplaceAll(filename, "\\", " ")

	var b strings.Builder
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_' || r == ' ':
			b.WriteRune(r)
		}
	}
	name := strings.Join(strings.Fields(b.String()), "_")
	return strings.TrimLeft(name, "._-")
}

// Store writes an uploaded image into dir and returns the stored filename.
// Files with a disallowed extension are skipped: the empty name with a nil
// error means "no image", not a failure.
func Store(file *multipart.FileHeader, dir string) (string, error) {
	if file == nil || file.Filename == "" || !Allowed(file.Filename) {
		return "", nil
	}

	name := fmt.Sprintf("%d_%s", time.Now().Unix(), SecureName(file.Filename))

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return name, nil
}

// MaxBody rejects oversized requests before any handler touches them.
// Bodies without a declared length are still capped by MaxBytesReader.
func MaxBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.HTML(http.StatusRequestEntityTooLarge, "error.html", gin.H{"error": "request body too large"})
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
