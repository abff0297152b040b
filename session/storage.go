package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Storage — долговременное key-value хранилище сессии.
// Две записи под фиксированными ключами (TokenKey, UserKey);
// хранилище не интерпретирует значения.
type Storage interface {
	// Set записывает значение под ключом.
	Set(key, value string) error

	// Get возвращает значение под ключом.
	// Отсутствующий ключ — ("", nil), а не ошибка.
	Get(key string) (string, error)

	// Delete удаляет запись. Удаление отсутствующего ключа не ошибка.
	Delete(key string) error
}

// FileStorage — файловое хранилище сессии: JSON файл с картой ключ-значение.
// Запись атомарна (временный файл + rename), файл создаётся с правами 0600.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage создаёт файловое хранилище по заданному пути.
// Каталог создаётся при необходимости.
func NewFileStorage(path string) (*FileStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("путь к файлу сессии не задан")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога сессии: %w", err)
	}

	return &FileStorage{path: path}, nil
}

// Set записывает значение под ключом.
func (f *FileStorage) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}

	entries[key] = value
	return f.save(entries)
}

// Get возвращает значение под ключом или пустую строку.
func (f *FileStorage) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return "", err
	}
	return entries[key], nil
}

// Delete удаляет запись под ключом.
func (f *FileStorage) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}

	if _, ok := entries[key]; !ok {
		return nil
	}

	delete(entries, key)
	return f.save(entries)
}

// load читает карту записей из файла.
// Отсутствующий файл — пустая карта.
func (f *FileStorage) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("ошибка чтения файла сессии: %w", err)
	}

	entries := map[string]string{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("ошибка разбора файла сессии: %w", err)
	}
	return entries, nil
}

// save атомарно записывает карту записей в файл.
func (f *FileStorage) save(entries map[string]string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("ошибка сериализации файла сессии: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла сессии: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("ошибка записи файла сессии: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("ошибка закрытия файла сессии: %w", err)
	}

	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("ошибка установки прав файла сессии: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("ошибка замены файла сессии: %w", err)
	}
	return nil
}
