package models

import (
	"database/sql"
	"time"
)

// FaceEncoding представляет одно найденное лицо:
// вектор embedding плюс метаданные детекции
type FaceEncoding struct {
	Vector     []float64 `json:"vector"`     // Embedding вектор
	Bbox       []int     `json:"bbox"`       // [x1, y1, x2, y2]
	Confidence float64   `json:"confidence"` // Уверенность детекции
}

// Width возвращает ширину bbox (0 если bbox некорректный)
func (e FaceEncoding) Width() int {
	if len(e.Bbox) != 4 {
		return 0
	}
	return e.Bbox[2] - e.Bbox[0]
}

// Height возвращает высоту bbox
func (e FaceEncoding) Height() int {
	if len(e.Bbox) != 4 {
		return 0
	}
	return e.Bbox[3] - e.Bbox[1]
}

// Area возвращает площадь bbox в пикселях
func (e FaceEncoding) Area() int {
	return e.Width() * e.Height()
}

// Comparison представляет одно сравнение двух изображений
type Comparison struct {
	ID         string          `db:"id" json:"id"`
	ImageA     string          `db:"image_a" json:"image_a"`
	ImageB     string          `db:"image_b" json:"image_b"`
	Score      sql.NullFloat64 `db:"score" json:"score,omitempty"` // NULL если лицо не найдено
	MatchFound bool            `db:"match_found" json:"match_found"`
	FacesA     int             `db:"faces_a" json:"faces_a"` // Сколько лиц найдено на изображении A
	FacesB     int             `db:"faces_b" json:"faces_b"`
	Selector   string          `db:"selector" json:"selector"` // Политика выбора лица
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Stats - общая статистика системы
type Stats struct {
	TotalComparisons int     `json:"total_comparisons"`
	TotalMatches     int     `json:"total_matches"`
	TotalNoFace      int     `json:"total_no_face"`
	AverageScore     float64 `json:"average_score"` // Средний score по успешным сравнениям
}

// CompareResponse - ответ на запрос сравнения
type CompareResponse struct {
	ComparisonID string   `json:"comparison_id"`
	MatchFound   bool     `json:"match_found"`
	Score        *float64 `json:"score,omitempty"` // Отсутствует если лицо не найдено
	FacesA       int      `json:"faces_a"`
	FacesB       int      `json:"faces_b"`
	Selector     string   `json:"selector"`
	Message      string   `json:"message,omitempty"`
}

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

// Константы политик выбора лица
const (
	SelectorFirst     = "first"     // Первое лицо в порядке детектора
	SelectorLargest   = "largest"   // Самое большое лицо по площади bbox
	SelectorConfident = "confident" // Лицо с максимальной уверенностью
)

// EncoderResponse - ответ от внешнего сервера детекции
type EncoderResponse struct {
	Success   bool           `json:"success"`
	Encodings []FaceEncoding `json:"encodings"`
	Error     string         `json:"error,omitempty"`
}
