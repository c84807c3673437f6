package receipts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
)

var _ Store = (*LocalStore)(nil)

// LocalStore keeps receipts under a directory on the local filesystem.
type LocalStore struct {
	basePath string
}

// NewLocalStore creates basePath if needed.
func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create receipt directory: %w", err)
	}
	return &LocalStore{basePath: basePath}, nil
}

func (ls *LocalStore) Put(ctx context.Context, memberID, filename, contentType string, content io.Reader) (string, error) {
	key := objectKey(memberID, filename, time.Now())
	fullPath := filepath.Join(ls.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		os.Remove(fullPath) // Cleanup on error
		return "", fmt.Errorf("failed to write receipt: %w", err)
	}

	return key, nil
}

func (ls *LocalStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	fullPath, err := ls.resolve(ref)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: receipt %s", models.ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open receipt: %w", err)
	}
	return file, nil
}

func (ls *LocalStore) Delete(ctx context.Context, ref string) error {
	fullPath, err := ls.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	return nil
}

// resolve maps ref to a path and refuses anything outside basePath.
func (ls *LocalStore) resolve(ref string) (string, error) {
	absBasePath, err := filepath.Abs(ls.basePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}

	absFullPath, err := filepath.Abs(filepath.Join(ls.basePath, filepath.FromSlash(ref)))
	if err != nil {
		return "", fmt.Errorf("failed to resolve receipt path: %w", err)
	}

	if !strings.HasPrefix(absFullPath, absBasePath+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: invalid receipt reference %q", models.ErrValidation, ref)
	}
	return absFullPath, nil
}
