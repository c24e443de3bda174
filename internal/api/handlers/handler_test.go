package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"face-similarity/internal/api/websocket"
	"face-similarity/internal/models"
	"face-similarity/internal/service/metric"
	"face-similarity/internal/service/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRepository - мок репозитория для тестов
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateComparison(comparison *models.Comparison) error {
	args := m.Called(comparison)
	return args.Error(0)
}

func (m *MockRepository) GetComparison(id string) (*models.Comparison, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comparison), args.Error(1)
}

func (m *MockRepository) GetRecentComparisons(limit int) ([]models.Comparison, error) {
	args := m.Called(limit)
	return args.Get(0).([]models.Comparison), args.Error(1)
}

func (m *MockRepository) DeleteComparison(id string) (*models.Comparison, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comparison), args.Error(1)
}

func (m *MockRepository) GetStats() (*models.Stats, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stats), args.Error(1)
}

// stubEncoder возвращает encodings по базовому имени файла
// (storage сохраняет пару как a.<ext> и b.<ext>)
type stubEncoder struct {
	byName map[string][]models.FaceEncoding
	err    error
}

func (s *stubEncoder) DetectAndEncode(imagePath string) ([]models.FaceEncoding, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byName[filepath.Base(imagePath)], nil
}

func (s *stubEncoder) Distance(a, b []float64) (float64, error) {
	return metric.Euclidean(a, b)
}

// setupTestRouter создает тестовый роутер
func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// newCompareRequest собирает multipart запрос с парой изображений
func newCompareRequest(t *testing.T, fields map[string]string) *http.Request {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for field, filename := range fields {
		part, err := writer.CreateFormFile(field, filename)
		assert.NoError(t, err)
		_, err = part.Write([]byte("fake-image-bytes-" + filename))
		assert.NoError(t, err)
	}

	assert.NoError(t, writer.Close())

	req, _ := http.NewRequest("POST", "/compare", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func newTestStorage(t *testing.T) *storage.Service {
	svc, err := storage.NewService(t.TempDir())
	assert.NoError(t, err)
	return svc
}

func TestHandleCompare(t *testing.T) {
	mockRepo := new(MockRepository)
	encoder := &stubEncoder{
		byName: map[string][]models.FaceEncoding{
			"a.jpg": {{Vector: []float64{0.1, 0.2, 0.3}}},
			"b.jpg": {{Vector: []float64{0.1, 0.2, 0.3}}},
		},
	}

	handler := &Handler{
		repo:      mockRepo,
		storage:   newTestStorage(t),
		encoder:   encoder,
		wsManager: websocket.NewManager(),
	}

	mockRepo.On("CreateComparison", mock.AnythingOfType("*models.Comparison")).Return(nil)
	mockRepo.On("GetStats").Return(&models.Stats{TotalComparisons: 1}, nil)

	router := setupTestRouter()
	router.POST("/compare", handler.HandleCompare)

	req := newCompareRequest(t, map[string]string{
		"image_a": "left.jpg",
		"image_b": "right.jpg",
	})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.CompareResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.True(t, response.MatchFound)
	assert.NotNil(t, response.Score)
	assert.Equal(t, 1.0, *response.Score) // Идентичные векторы
	assert.Equal(t, 1, response.FacesA)
	assert.Equal(t, 1, response.FacesB)
	assert.NotEmpty(t, response.ComparisonID)

	mockRepo.AssertExpectations(t)
}

func TestHandleCompareNoFace(t *testing.T) {
	mockRepo := new(MockRepository)
	encoder := &stubEncoder{
		byName: map[string][]models.FaceEncoding{
			"a.jpg": {{Vector: []float64{0.1, 0.2}}},
			// b.jpg отсутствует - лиц нет
		},
	}

	handler := &Handler{
		repo:      mockRepo,
		storage:   newTestStorage(t),
		encoder:   encoder,
		wsManager: websocket.NewManager(),
	}

	mockRepo.On("CreateComparison", mock.AnythingOfType("*models.Comparison")).Return(nil)
	mockRepo.On("GetStats").Return(&models.Stats{}, nil)

	router := setupTestRouter()
	router.POST("/compare", handler.HandleCompare)

	req := newCompareRequest(t, map[string]string{
		"image_a": "left.jpg",
		"image_b": "right.jpg",
	})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// Нет лица - это не ошибка, а валидный результат без score
	assert.Equal(t, http.StatusOK, w.Code)

	var response models.CompareResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.False(t, response.MatchFound)
	assert.Nil(t, response.Score)
	assert.NotEmpty(t, response.Message)

	// В БД сохранена запись без score
	mockRepo.AssertCalled(t, "CreateComparison", mock.MatchedBy(func(c *models.Comparison) bool {
		return !c.MatchFound && !c.Score.Valid
	}))
}

func TestHandleCompareMissingFile(t *testing.T) {
	handler := &Handler{
		repo:    new(MockRepository),
		storage: newTestStorage(t),
	}

	router := setupTestRouter()
	router.POST("/compare", handler.HandleCompare)

	// Только один файл из двух
	req := newCompareRequest(t, map[string]string{
		"image_a": "left.jpg",
	})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCompareUnknownSelector(t *testing.T) {
	handler := &Handler{
		repo:    new(MockRepository),
		storage: newTestStorage(t),
	}

	router := setupTestRouter()
	router.POST("/compare", handler.HandleCompare)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, field := range []string{"image_a", "image_b"} {
		part, _ := writer.CreateFormFile(field, field+".jpg")
		part.Write([]byte("fake"))
	}
	writer.WriteField("selector", "random")
	writer.Close()

	req, _ := http.NewRequest("POST", "/compare", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCompareEncoderFailure(t *testing.T) {
	mockRepo := new(MockRepository)
	encoder := &stubEncoder{err: errors.New("сервер детекции недоступен")}

	handler := &Handler{
		repo:      mockRepo,
		storage:   newTestStorage(t),
		encoder:   encoder,
		wsManager: websocket.NewManager(),
	}

	router := setupTestRouter()
	router.POST("/compare", handler.HandleCompare)

	req := newCompareRequest(t, map[string]string{
		"image_a": "left.jpg",
		"image_b": "right.jpg",
	})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// Сбой детектора пробрасывается как ошибка, запись не создается
	assert.Equal(t, http.StatusBadGateway, w.Code)
	mockRepo.AssertNotCalled(t, "CreateComparison", mock.Anything)
}

func TestHandleGetComparison(t *testing.T) {
	mockRepo := new(MockRepository)
	handler := &Handler{repo: mockRepo}

	expected := &models.Comparison{
		ID:         "abc-123",
		MatchFound: true,
		Score:      sql.NullFloat64{Float64: 0.9, Valid: true},
	}

	mockRepo.On("GetComparison", "abc-123").Return(expected, nil)

	router := setupTestRouter()
	router.GET("/comparisons/:id", handler.HandleGetComparison)

	req, _ := http.NewRequest("GET", "/comparisons/abc-123", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var comparison models.Comparison
	err := json.Unmarshal(w.Body.Bytes(), &comparison)
	assert.NoError(t, err)
	assert.Equal(t, "abc-123", comparison.ID)

	mockRepo.AssertExpectations(t)
}

func TestHandleGetComparisonNotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	handler := &Handler{repo: mockRepo}

	mockRepo.On("GetComparison", "missing").Return(nil, sql.ErrNoRows)

	router := setupTestRouter()
	router.GET("/comparisons/:id", handler.HandleGetComparison)

	req, _ := http.NewRequest("GET", "/comparisons/missing", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response models.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "Сравнение не найдено", response.Error)
}

func TestHandleGetComparisons(t *testing.T) {
	mockRepo := new(MockRepository)
	handler := &Handler{repo: mockRepo}

	expected := []models.Comparison{
		{ID: "id-1", MatchFound: true},
		{ID: "id-2", MatchFound: false},
	}

	mockRepo.On("GetRecentComparisons", 50).Return(expected, nil)

	router := setupTestRouter()
	router.GET("/comparisons", handler.HandleGetComparisons)

	req, _ := http.NewRequest("GET", "/comparisons", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var comparisons []models.Comparison
	err := json.Unmarshal(w.Body.Bytes(), &comparisons)
	assert.NoError(t, err)
	assert.Len(t, comparisons, 2)

	mockRepo.AssertExpectations(t)
}

func TestHandleGetComparisonsBadLimit(t *testing.T) {
	handler := &Handler{repo: new(MockRepository)}

	router := setupTestRouter()
	router.GET("/comparisons", handler.HandleGetComparisons)

	req, _ := http.NewRequest("GET", "/comparisons?limit=abc", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetStats(t *testing.T) {
	mockRepo := new(MockRepository)
	handler := &Handler{repo: mockRepo}

	expectedStats := &models.Stats{
		TotalComparisons: 42,
		TotalMatches:     30,
		TotalNoFace:      12,
		AverageScore:     0.87,
	}

	mockRepo.On("GetStats").Return(expectedStats, nil)

	router := setupTestRouter()
	router.GET("/stats", handler.HandleGetStats)

	req, _ := http.NewRequest("GET", "/stats", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var stats models.Stats
	err := json.Unmarshal(w.Body.Bytes(), &stats)
	assert.NoError(t, err)
	assert.Equal(t, 42, stats.TotalComparisons)
	assert.Equal(t, 30, stats.TotalMatches)
	assert.Equal(t, 0.87, stats.AverageScore)

	mockRepo.AssertExpectations(t)
}

func TestHandleDeleteComparison(t *testing.T) {
	mockRepo := new(MockRepository)
	handler := &Handler{
		repo:    mockRepo,
		storage: newTestStorage(t),
	}

	deleted := &models.Comparison{ID: "abc-123"}
	mockRepo.On("DeleteComparison", "abc-123").Return(deleted, nil)

	router := setupTestRouter()
	router.DELETE("/comparisons/:id", handler.HandleDeleteComparison)

	req, _ := http.NewRequest("DELETE", "/comparisons/abc-123", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)
}
