package encoder_client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"face-similarity/internal/models"
	"face-similarity/internal/service/comparator"
	"face-similarity/internal/service/metric"
)

// Client для взаимодействия с внешним сервером детекции лиц
type Client struct {
	baseURL    string
	httpClient *http.Client
	distance   metric.Func
}

// Проверяем что Client реализует comparator.Encoder
var _ comparator.Encoder = (*Client)(nil)

// NewClient создает новый клиент с евклидовой метрикой
func NewClient(baseURL string) *Client {
	return NewClientWithMetric(baseURL, metric.Euclidean)
}

// NewClientWithMetric создает клиент с произвольной метрикой расстояния
func NewClientWithMetric(baseURL string, distance metric.Func) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute, // Детекция на CPU может быть медленной
		},
		distance: distance,
	}
}

// DetectAndEncode отправляет изображение на детекцию
// и возвращает encodings всех найденных лиц
func (c *Client) DetectAndEncode(imagePath string) ([]models.FaceEncoding, error) {
	// Создаем multipart форму
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	file, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть файл %s: %w", imagePath, err)
	}
	defer file.Close()

	part, err := writer.CreateFormFile("image", filepath.Base(imagePath))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания form file: %w", err)
	}

	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("ошибка копирования файла: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("ошибка закрытия writer: %w", err)
	}

	// Отправляем POST запрос
	resp, err := c.httpClient.Post(
		c.baseURL+"/encode",
		writer.FormDataContentType(),
		body,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка HTTP запроса: %w", err)
	}
	defer resp.Body.Close()

	// Проверяем статус код
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("сервер детекции вернул ошибку %d: %s", resp.StatusCode, string(bodyBytes))
	}

	// Парсим ответ
	var result models.EncoderResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ошибка парсинга ответа: %w", err)
	}

	// Проверяем успешность обработки
	if !result.Success {
		return nil, fmt.Errorf("детекция не удалась: %s", result.Error)
	}

	return result.Encodings, nil
}

// Distance вычисляет расстояние между encoding векторами локально,
// без дополнительного запроса к серверу детекции
func (c *Client) Distance(a, b []float64) (float64, error) {
	return c.distance(a, b)
}

// HealthCheck проверяет доступность сервера детекции
func (c *Client) HealthCheck() error {
	resp, err := c.httpClient.Get(c.baseURL + "/health")
	if err != nil {
		return fmt.Errorf("сервер детекции недоступен: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("сервер детекции вернул статус %d", resp.StatusCode)
	}

	return nil
}
