package comparator

import (
	"fmt"

	"face-similarity/internal/models"
)

// Encoder - внешняя capability детекции и сравнения лиц.
// Реализации: pkg/encoder_client (HTTP сервер детекции),
// моки в тестах
type Encoder interface {
	// DetectAndEncode возвращает encodings всех найденных лиц
	// в порядке, который вернул детектор
	DetectAndEncode(imagePath string) ([]models.FaceEncoding, error)

	// Distance вычисляет расстояние между двумя encoding векторами
	Distance(a, b []float64) (float64, error)
}

// Result - результат сравнения двух изображений.
// Если лицо не найдено хотя бы на одном изображении,
// score отсутствует - это не ошибка, а ожидаемый исход
type Result struct {
	found  bool
	score  float64
	FacesA int // Сколько лиц найдено на изображении A
	FacesB int
}

// Match создает результат с вычисленным score
func Match(score float64, facesA, facesB int) Result {
	return Result{found: true, score: score, FacesA: facesA, FacesB: facesB}
}

// NoMatch создает результат "лицо не найдено"
func NoMatch(facesA, facesB int) Result {
	return Result{FacesA: facesA, FacesB: facesB}
}

// Found сообщает, было ли найдено лицо на обоих изображениях
func (r Result) Found() bool {
	return r.found
}

// Score возвращает similarity score и флаг его наличия.
// Вызывающий обязан проверить флаг: score 0.0 без флага
// означает "нет результата", а не "нулевое сходство"
func (r Result) Score() (float64, bool) {
	if !r.found {
		return 0, false
	}
	return r.score, true
}

// Comparator сравнивает лица на двух изображениях
type Comparator struct {
	encoder  Encoder
	selector Selector
}

// NewComparator создает компаратор.
// Если selector == nil - используется SelectFirst
func NewComparator(encoder Encoder, selector Selector) *Comparator {
	if selector == nil {
		selector = SelectFirst
	}
	return &Comparator{
		encoder:  encoder,
		selector: selector,
	}
}

// Compare вычисляет similarity score между лицами на двух изображениях.
//
// Score = 1 - distance. Для евклидовой метрики над нормализованными
// embeddings результат лежит в [0, 1]: 1.0 - идентичные лица,
// 0.0 - максимально различные. Clamping НЕ выполняется: метрика
// с расстоянием > 1 даст отрицательный score.
//
// Если лицо не найдено хотя бы на одном изображении - возвращается
// Result без score и nil ошибка. Ошибки чтения файлов и сбои
// детектора пробрасываются без обработки
func (c *Comparator) Compare(imageA, imageB string) (Result, error) {
	encodingsA, err := c.encoder.DetectAndEncode(imageA)
	if err != nil {
		return Result{}, fmt.Errorf("не удалось обработать %s: %w", imageA, err)
	}

	encodingsB, err := c.encoder.DetectAndEncode(imageB)
	if err != nil {
		return Result{}, fmt.Errorf("не удалось обработать %s: %w", imageB, err)
	}

	// Нет лица хотя бы на одном изображении - это не ошибка
	if len(encodingsA) == 0 || len(encodingsB) == 0 {
		return NoMatch(len(encodingsA), len(encodingsB)), nil
	}

	// Выбираем по одному лицу с каждого изображения
	faceA := c.selector(encodingsA)
	faceB := c.selector(encodingsB)

	distance, err := c.encoder.Distance(faceA.Vector, faceB.Vector)
	if err != nil {
		return Result{}, fmt.Errorf("ошибка вычисления расстояния: %w", err)
	}

	return Match(1-distance, len(encodingsA), len(encodingsB)), nil
}
