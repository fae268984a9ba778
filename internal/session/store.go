package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Ошибки хранилища
var (
	// ErrNotFound ключ отсутствует
	ErrNotFound = errors.New("session: key not found")
	// ErrInvalidKey пустой ключ или выход за пределы каталога
	ErrInvalidKey = errors.New("session: invalid key")
)

// Store key-value хранилище состояния сессии.
type Store interface {
	// Get возвращает значение; ErrNotFound, если ключа нет.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put перезаписывает значение.
	Put(ctx context.Context, key string, data []byte) error
	// Delete удаляет ключ; отсутствие ключа не ошибка.
	Delete(ctx context.Context, key string) error
}

// FileStore хранит значения файлами в каталоге. Запись атомарна:
// временный файл, затем rename.
type FileStore struct {
	basePath string
	logger   *slog.Logger
}

// NewFileStore создаёт хранилище; каталог создаётся при первой записи.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("session directory required")
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve session directory: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileStore{
		basePath: absPath,
		logger:   logger.With("system", "session"),
	}, nil
}

// Dir возвращает абсолютный путь каталога.
func (f *FileStore) Dir() string {
	return f.basePath
}

func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := f.fullPath(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

func (f *FileStore) Put(ctx context.Context, key string, data []byte) error {
	path, err := f.fullPath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	f.logger.Debug("value stored", "key", key, "bytes", len(data))
	return nil
}

func (f *FileStore) Delete(ctx context.Context, key string) error {
	path, err := f.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

func (f *FileStore) fullPath(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}

	cleaned := filepath.Clean(key)
	if strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", ErrInvalidKey
	}

	fullPath := filepath.Join(f.basePath, cleaned)
	if !strings.HasPrefix(fullPath, f.basePath+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return fullPath, nil
}
