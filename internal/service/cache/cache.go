package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"face-similarity/internal/models"

	"github.com/redis/go-redis/v9"
)

// Service управляет кэшированием через Redis
type Service struct {
	client *redis.Client
	ctx    context.Context
}

// NewService создает новый cache service
func NewService(addr, password string, db int) (*Service, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()

	// Проверяем подключение
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}

	return &Service{
		client: client,
		ctx:    ctx,
	}, nil
}

// Close закрывает соединение с Redis
func (s *Service) Close() error {
	return s.client.Close()
}

// ============ ENCODINGS CACHE ============

// GetEncodings получает encodings по хэшу содержимого изображения
func (s *Service) GetEncodings(imageHash string) ([]models.FaceEncoding, error) {
	key := fmt.Sprintf("encodings:%s", imageHash)

	data, err := s.client.Get(s.ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Не найдено в кэше
	}
	if err != nil {
		return nil, err
	}

	var encodings []models.FaceEncoding
	if err := json.Unmarshal(data, &encodings); err != nil {
		return nil, err
	}

	return encodings, nil
}

// SetEncodings сохраняет encodings в кэш на 7 дней.
// Кэшируется и пустой список - "лиц нет" тоже валидный результат детекции
func (s *Service) SetEncodings(imageHash string, encodings []models.FaceEncoding) error {
	key := fmt.Sprintf("encodings:%s", imageHash)

	if encodings == nil {
		encodings = []models.FaceEncoding{}
	}

	data, err := json.Marshal(encodings)
	if err != nil {
		return err
	}

	return s.client.Set(s.ctx, key, data, 7*24*time.Hour).Err()
}

// ============ COMPARISON CACHE ============

// GetComparison получает сравнение из кэша
func (s *Service) GetComparison(id string) (*models.Comparison, error) {
	key := fmt.Sprintf("comparison:%s", id)

	data, err := s.client.Get(s.ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var comparison models.Comparison
	if err := json.Unmarshal(data, &comparison); err != nil {
		return nil, err
	}

	return &comparison, nil
}

// SetComparison сохраняет сравнение в кэш на 24 часа
func (s *Service) SetComparison(comparison *models.Comparison) error {
	key := fmt.Sprintf("comparison:%s", comparison.ID)

	data, err := json.Marshal(comparison)
	if err != nil {
		return err
	}

	return s.client.Set(s.ctx, key, data, 24*time.Hour).Err()
}

// InvalidateComparison удаляет сравнение из кэша
func (s *Service) InvalidateComparison(id string) error {
	key := fmt.Sprintf("comparison:%s", id)
	return s.client.Del(s.ctx, key).Err()
}

// ============ STATS CACHE ============

// GetStats получает статистику из кэша
func (s *Service) GetStats() (*models.Stats, error) {
	data, err := s.client.Get(s.ctx, "stats").Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stats models.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}

	return &stats, nil
}

// SetStats сохраняет статистику в кэш на 5 минут
func (s *Service) SetStats(stats *models.Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	return s.client.Set(s.ctx, "stats", data, 5*time.Minute).Err()
}

// InvalidateStats очищает кэш статистики
func (s *Service) InvalidateStats() error {
	return s.client.Del(s.ctx, "stats").Err()
}

// ============ UTILITY ============

// FlushAll очищает весь кэш (только для разработки!)
func (s *Service) FlushAll() error {
	return s.client.FlushAll(s.ctx).Err()
}
