package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
)

// DocumentStorage keeps uploaded verification documents on local disk and
// serves them back under a public URL prefix.
type DocumentStorage struct {
	rootPath       string
	publicPrefix   string
	maxUploadBytes int64
}

func NewDocumentStorage(rootPath, publicPrefix string, maxUploadMB int64) (*DocumentStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create directory %s: %w", rootPath, err)
	}

	return &DocumentStorage{
		rootPath:       rootPath,
		publicPrefix:   strings.TrimSuffix(publicPrefix, "/"),
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// allowedDocumentType accepts images and PDF, the formats verification
// documents arrive in.
func allowedDocumentType(kind types.Type) bool {
	switch kind.MIME.Value {
	case "image/jpeg", "image/png", "image/webp", "application/pdf":
		return true
	}
	return false
}

// Save sniffs the payload type, stores the file and returns its public URL.
func (s *DocumentStorage) Save(ctx context.Context, userID uuid.UUID, folder, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	head := make([]byte, 262)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("storage: failed to read upload: %w", err)
	}

	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown || !allowedDocumentType(kind) {
		return "", fmt.Errorf("storage: unsupported document type, expected image or PDF")
	}

	safeName := sanitizeFilename(originalName)
	fileName := fmt.Sprintf("%s_%d%s", userID.String(), time.Now().UnixNano(), filepath.Ext(safeName))

	dir := filepath.Join(s.rootPath, folder, userID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: failed to create user directory: %w", err)
	}

	targetPath := filepath.Join(dir, fileName)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("storage: failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(head[:n]); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: failed to write file: %w", err)
	}

	limitedReader := io.LimitedReader{R: r, N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limitedReader)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: failed to write file: %w", err)
	}

	if written+int64(n) > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("storage: file exceeds the %d byte limit", s.maxUploadBytes)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("storage: failed to close file: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return "", fmt.Errorf("storage: failed to rename file: %w", err)
	}

	relative := filepath.ToSlash(filepath.Join(folder, userID.String(), fileName))
	return s.publicPrefix + "/" + relative, nil
}

// Delete removes a stored document by its public URL.
func (s *DocumentStorage) Delete(ctx context.Context, publicURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	relative := strings.TrimPrefix(publicURL, s.publicPrefix+"/")
	target := filepath.Join(s.rootPath, filepath.FromSlash(relative))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: failed to delete file: %w", err)
	}
	return nil
}

// sanitizeFilename strips potentially dangerous characters.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "document"
	}
	return name
}
