package repository

import (
	"database/sql"

	"face-similarity/internal/models"

	"github.com/jmoiron/sqlx"
)

// Repository инкапсулирует всю работу с базой данных
type Repository struct {
	db *sqlx.DB
}

// NewRepository создает новый репозиторий
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// ============ COMPARISONS ============

// CreateComparison сохраняет результат сравнения
func (r *Repository) CreateComparison(comparison *models.Comparison) error {
	_, err := r.db.Exec(`
		INSERT INTO comparisons (
			id, image_a, image_b, score, match_found,
			faces_a, faces_b, selector, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`, comparison.ID, comparison.ImageA, comparison.ImageB,
		comparison.Score, comparison.MatchFound,
		comparison.FacesA, comparison.FacesB, comparison.Selector)

	return err
}

// GetComparison получает сравнение по ID
func (r *Repository) GetComparison(id string) (*models.Comparison, error) {
	var comparison models.Comparison
	err := r.db.Get(&comparison, "SELECT * FROM comparisons WHERE id = $1", id)
	if err != nil {
		return nil, err
	}
	return &comparison, nil
}

// GetRecentComparisons возвращает последние сравнения
func (r *Repository) GetRecentComparisons(limit int) ([]models.Comparison, error) {
	var comparisons []models.Comparison
	err := r.db.Select(&comparisons, `
		SELECT * FROM comparisons
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	if comparisons == nil {
		comparisons = []models.Comparison{} // Пустой массив вместо nil
	}

	return comparisons, nil
}

// DeleteComparison удаляет сравнение и возвращает удаленную запись
// (пути к файлам нужны для очистки хранилища)
func (r *Repository) DeleteComparison(id string) (*models.Comparison, error) {
	comparison, err := r.GetComparison(id)
	if err != nil {
		return nil, err
	}

	result, err := r.db.Exec("DELETE FROM comparisons WHERE id = $1", id)
	if err != nil {
		return nil, err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, sql.ErrNoRows
	}

	return comparison, nil
}

// ============ STATS ============

// GetStats возвращает общую статистику
func (r *Repository) GetStats() (*models.Stats, error) {
	var stats models.Stats

	err := r.db.Get(&stats.TotalComparisons, "SELECT COUNT(*) FROM comparisons")
	if err != nil {
		return nil, err
	}

	err = r.db.Get(&stats.TotalMatches, "SELECT COUNT(*) FROM comparisons WHERE match_found")
	if err != nil {
		return nil, err
	}

	err = r.db.Get(&stats.TotalNoFace, "SELECT COUNT(*) FROM comparisons WHERE NOT match_found")
	if err != nil {
		return nil, err
	}

	// Средний score только по сравнениям с найденным лицом
	err = r.db.Get(&stats.AverageScore, `
		SELECT COALESCE(AVG(score), 0) FROM comparisons WHERE match_found
	`)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
