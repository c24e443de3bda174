package metric

import (
	"errors"
	"fmt"
	"math"
)

// Metric - имя метрики расстояния
type Metric string

const (
	MetricEuclidean Metric = "euclidean"
	MetricCosine    Metric = "cosine"
)

// Func вычисляет расстояние между двумя векторами.
// Чем меньше значение - тем более похожи векторы
type Func func(a, b []float64) (float64, error)

var (
	ErrEmptyVector       = errors.New("пустой вектор")
	ErrDimensionMismatch = errors.New("размерности векторов не совпадают")
)

// Euclidean вычисляет евклидово расстояние между векторами.
// Для нормализованных face embeddings расстояние обычно лежит в [0, 1],
// но в общем случае сверху не ограничено
func Euclidean(a, b []float64) (float64, error) {
	if err := validate(a, b); err != nil {
		return 0, err
	}

	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}

	return math.Sqrt(sum), nil
}

// CosineDistance вычисляет косинусное расстояние (1 - cosine similarity).
// Значение лежит в [0, 2]
func CosineDistance(a, b []float64) (float64, error) {
	if err := validate(a, b); err != nil {
		return 0, err
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("нулевой вектор: косинусное расстояние не определено")
	}

	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)), nil
}

// ByName возвращает метрику по имени
func ByName(name Metric) (Func, error) {
	switch name {
	case MetricEuclidean:
		return Euclidean, nil
	case MetricCosine:
		return CosineDistance, nil
	default:
		return nil, fmt.Errorf("неизвестная метрика: %s", name)
	}
}

// validate проверяет что векторы непустые и одинаковой длины
func validate(a, b []float64) error {
	if len(a) == 0 || len(b) == 0 {
		return ErrEmptyVector
	}
	if len(a) != len(b) {
		return ErrDimensionMismatch
	}
	return nil
}
