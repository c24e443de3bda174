package cache

import (
	"log"

	"face-similarity/internal/models"
	"face-similarity/internal/service/comparator"
)

// HashFunc вычисляет ключ кэша по пути к изображению
type HashFunc func(imagePath string) (string, error)

// CachedEncoder оборачивает Encoder и кэширует encodings
// по хэшу содержимого изображения. При недоступном кэше
// (service == nil) прозрачно делегирует внутреннему encoder
type CachedEncoder struct {
	inner   comparator.Encoder
	service *Service
	hash    HashFunc
}

// Проверяем что CachedEncoder реализует comparator.Encoder
var _ comparator.Encoder = (*CachedEncoder)(nil)

// NewCachedEncoder создает кэширующую обертку
func NewCachedEncoder(inner comparator.Encoder, service *Service, hash HashFunc) *CachedEncoder {
	return &CachedEncoder{
		inner:   inner,
		service: service,
		hash:    hash,
	}
}

// DetectAndEncode возвращает encodings из кэша или от детектора.
// Ошибки кэша не фатальны - просто идем к детектору
func (e *CachedEncoder) DetectAndEncode(imagePath string) ([]models.FaceEncoding, error) {
	if e.service == nil {
		return e.inner.DetectAndEncode(imagePath)
	}

	imageHash, err := e.hash(imagePath)
	if err != nil {
		// Файл не читается - детектор вернет ту же ошибку
		return e.inner.DetectAndEncode(imagePath)
	}

	if encodings, err := e.service.GetEncodings(imageHash); err == nil && encodings != nil {
		return encodings, nil
	}

	encodings, err := e.inner.DetectAndEncode(imagePath)
	if err != nil {
		return nil, err
	}

	if err := e.service.SetEncodings(imageHash, encodings); err != nil {
		log.Printf("⚠️  Не удалось закэшировать encodings: %v", err)
	}

	return encodings, nil
}

// Distance делегирует вычисление расстояния внутреннему encoder
func (e *CachedEncoder) Distance(a, b []float64) (float64, error) {
	return e.inner.Distance(a, b)
}
