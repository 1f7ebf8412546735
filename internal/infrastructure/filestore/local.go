// Package filestore keeps task attachments on local disk under the uploads directory.
package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

const publicPrefix = "/uploads/"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type Local struct {
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

// NewLocal creates dir if needed.
func NewLocal(dir string, logger *zap.Logger) (*Local, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Local{dir: dir, logger: logger, now: time.Now}, nil
}

// Save writes data under a unique, sanitized name and returns its public path.
func (l *Local) Save(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%d-%s", l.now().UnixNano(), Sanitize(fileName))

	f, err := os.OpenFile(filepath.Join(l.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	l.logger.Debug("file stored", zap.String("name", name), zap.String("content_type", contentType), zap.Int("size", len(data)))
	return publicPrefix + name, nil
}

// Open resolves a public path produced by Save back to a file on disk.
func (l *Local) Open(publicPath string) (*os.File, error) {
	name := strings.TrimPrefix(publicPath, publicPrefix)
	if name == "" || name != filepath.Base(name) {
		return nil, os.ErrNotExist
	}
	return os.Open(filepath.Join(l.dir, name))
}

// Sanitize strips directories and anything outside [A-Za-z0-9._-].
func Sanitize(fileName string) string {
	base := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	clean := strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "._")
	if clean == "" {
		return "file"
	}
	return clean
}
