package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"DriveX/internal/cli/repo"
)

// KVFSStore — файловое хранилище ключ/значение: один файл на ключ в каталоге Dir.
// Параллельные процессы пишут по принципу last-write-wins.
type KVFSStore struct {
	Dir string
}

var _ repo.KeyValueStore = KVFSStore{}

func NewKVFSStore(dir string) KVFSStore {
	return KVFSStore{Dir: dir}
}

func (s KVFSStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid key %q", key)
	}
	if s.Dir == "" {
		return "", errors.New("empty store dir")
	}
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, key), nil
}

// Set сохраняет значение в файл с правами 0600.
func (s KVFSStore) Set(key, value string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(value), 0o600)
}

// Get читает значение; отсутствующий или пустой файл — ok=false.
func (s KVFSStore) Get(key string) (string, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return "", false, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	// обрезаем завершающие переводы строки/пробелы
	v := strings.TrimRight(string(b), "\r\n\t ")
	if v == "" {
		return "", false, nil
	}
	return v, true, nil
}

// Delete удаляет ключ; отсутствие файла не ошибка.
func (s KVFSStore) Delete(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
