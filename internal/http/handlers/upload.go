package handlers

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	applog "avecplaisir/internal/log"
	"avecplaisir/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxImageBytes = 5 << 20

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

var imageTypes = map[string]bool{"image/jpeg": true, "image/png": true, "image/gif": true, "image/webp": true}

// saveImage stores the uploaded file under mediaDir/sub with a random
// name and returns its media-relative path. No file means "".
func saveImage(c *fiber.Ctx, field, mediaDir, sub string) (string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return "", nil
	}
	files := form.File[field]
	if len(files) == 0 || files[0].Size == 0 {
		return "", nil
	}
	fh := files[0]
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !imageExts[ext] {
		return "", &services.ValidationError{Field: field, Msg: "must be a JPEG, PNG, GIF or WebP image"}
	}
	if fh.Size > maxImageBytes {
		return "", &services.ValidationError{Field: field, Msg: "must be at most 5 MB"}
	}

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	_ = f.Close()
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", err
	}
	if !imageTypes[http.DetectContentType(head[:n])] {
		return "", &services.ValidationError{Field: field, Msg: "is not an image"}
	}

	dir := filepath.Join(mediaDir, sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + ext
	if err := c.SaveFile(fh, filepath.Join(dir, name)); err != nil {
		return "", err
	}
	return sub + "/" + name, nil
}

// discardImage removes a stored upload. Empty and escaping paths are ignored.
func discardImage(c *fiber.Ctx, mediaDir, rel string) {
	if rel == "" {
		return
	}
	clean := filepath.Clean(rel)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return
	}
	if err := os.Remove(filepath.Join(mediaDir, clean)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		applog.Error(c, "media.remove.fail", err, map[string]any{"path": rel})
	}
}
