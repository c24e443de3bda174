package comparator

import (
	"fmt"

	"face-similarity/internal/models"
)

// Selector выбирает одно лицо из списка найденных.
// Вызывается только с непустым списком
type Selector func(encodings []models.FaceEncoding) models.FaceEncoding

// SelectFirst возвращает первое лицо в порядке детектора.
// Порядок определяется внешней capability и не канонизируется
func SelectFirst(encodings []models.FaceEncoding) models.FaceEncoding {
	return encodings[0]
}

// SelectLargest возвращает лицо с максимальной площадью bbox
func SelectLargest(encodings []models.FaceEncoding) models.FaceEncoding {
	best := encodings[0]
	for _, e := range encodings[1:] {
		if e.Area() > best.Area() {
			best = e
		}
	}
	return best
}

// SelectMostConfident возвращает лицо с максимальной уверенностью детекции
func SelectMostConfident(encodings []models.FaceEncoding) models.FaceEncoding {
	best := encodings[0]
	for _, e := range encodings[1:] {
		if e.Confidence > best.Confidence {
			best = e
		}
	}
	return best
}

// SelectorByName возвращает политику выбора по имени из API запроса
func SelectorByName(name string) (Selector, error) {
	switch name {
	case models.SelectorFirst, "":
		return SelectFirst, nil
	case models.SelectorLargest:
		return SelectLargest, nil
	case models.SelectorConfident:
		return SelectMostConfident, nil
	default:
		return nil, fmt.Errorf("неизвестная политика выбора: %s", name)
	}
}
