package repository

import "face-similarity/internal/models"

// RepositoryInterface определяет контракт для работы с данными
// Это позволяет легко мокать репозиторий в тестах
type RepositoryInterface interface {
	// Comparisons
	CreateComparison(comparison *models.Comparison) error
	GetComparison(id string) (*models.Comparison, error)
	GetRecentComparisons(limit int) ([]models.Comparison, error)
	DeleteComparison(id string) (*models.Comparison, error)

	// Stats
	GetStats() (*models.Stats, error)
}

// Проверяем что Repository реализует RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
