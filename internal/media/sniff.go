package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

const DefaultMaxDimension = 8192

var ErrUnsupportedImage = errors.New("unsupported image")

var supportedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// Info describes a sniffed upload.
type Info struct {
	ContentType string
	Width       int
	Height      int
}

// Sniff decodes the image header and returns the normalized content type and
// pixel dimensions. The declared content type wins when it is a supported
// image type; otherwise the type is inferred from the file extension and
// finally from the decoded format.
func Sniff(data []byte, fileName, declaredType string, maxDimension int) (*Info, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrUnsupportedImage)
	}
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: undecodable image data", ErrUnsupportedImage)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrUnsupportedImage, cfg.Width, cfg.Height)
	}
	if cfg.Width > maxDimension || cfg.Height > maxDimension {
		return nil, fmt.Errorf("%w: %dx%d exceeds %dpx limit", ErrUnsupportedImage, cfg.Width, cfg.Height, maxDimension)
	}

	contentType := normalizeContentType(declaredType, fileName)
	if _, ok := supportedTypes[contentType]; !ok {
		contentType = "image/" + format
	}
	if _, ok := supportedTypes[contentType]; !ok {
		return nil, fmt.Errorf("%w: content type %s", ErrUnsupportedImage, contentType)
	}

	return &Info{ContentType: contentType, Width: cfg.Width, Height: cfg.Height}, nil
}

func normalizeContentType(value, fileName string) string {
	ct := strings.ToLower(strings.TrimSpace(value))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	if ct == "image/jpg" {
		ct = "image/jpeg"
	}
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	}
	if ext != "" {
		if mt := mime.TypeByExtension(ext); mt != "" {
			return strings.ToLower(mt)
		}
	}
	return ""
}
