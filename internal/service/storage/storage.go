package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Service управляет файловым хранилищем загруженных пар изображений
type Service struct {
	uploadsDir string
}

// NewService создает новый файловый сервис
func NewService(uploadsDir string) (*Service, error) {
	// Создаем директорию если её нет
	if err := os.MkdirAll(uploadsDir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать uploads: %w", err)
	}

	return &Service{
		uploadsDir: uploadsDir,
	}, nil
}

// SaveComparisonPair сохраняет пару изображений для сравнения.
// Возвращает ID сравнения и пути к сохраненным файлам
func (s *Service) SaveComparisonPair(fileA, fileB *multipart.FileHeader) (string, string, string, error) {
	// Генерируем уникальный ID сравнения
	comparisonID := uuid.New().String()
	pairDir := filepath.Join(s.uploadsDir, comparisonID)

	// Создаем папку для пары
	if err := os.MkdirAll(pairDir, 0755); err != nil {
		return "", "", "", fmt.Errorf("не удалось создать папку сравнения: %w", err)
	}

	pathA, err := s.saveFile(fileA, pairDir, "a")
	if err != nil {
		return "", "", "", err
	}

	pathB, err := s.saveFile(fileB, pairDir, "b")
	if err != nil {
		return "", "", "", err
	}

	return comparisonID, pathA, pathB, nil
}

// saveFile сохраняет один файл под фиксированным именем с исходным расширением
func (s *Service) saveFile(fileHeader *multipart.FileHeader, dir, name string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("не удалось открыть файл %s: %w", fileHeader.Filename, err)
	}
	defer file.Close()

	destPath := filepath.Join(dir, name+filepath.Ext(fileHeader.Filename))

	destFile, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("не удалось создать файл %s: %w", destPath, err)
	}
	defer destFile.Close()

	if _, err := destFile.ReadFrom(file); err != nil {
		return "", fmt.Errorf("ошибка записи файла %s: %w", destPath, err)
	}

	return destPath, nil
}

// DeleteComparisonDirectory удаляет папку сравнения со всеми файлами
func (s *Service) DeleteComparisonDirectory(comparisonID string) error {
	pairDir := filepath.Join(s.uploadsDir, comparisonID)
	return os.RemoveAll(pairDir)
}

// FileExists проверяет существование файла
func (s *Service) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FileSHA256 возвращает SHA-256 хэш содержимого файла.
// Используется как ключ кэша encodings
func (s *Service) FileSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("не удалось открыть файл %s: %w", path, err)
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("ошибка чтения файла %s: %w", path, err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
