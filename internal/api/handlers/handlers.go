package handlers

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"face-similarity/internal/api/websocket"
	"face-similarity/internal/models"
	"face-similarity/internal/repository"
	"face-similarity/internal/service/cache"
	"face-similarity/internal/service/comparator"
	"face-similarity/internal/service/storage"

	"github.com/gin-gonic/gin"
)

// Handler содержит все зависимости для обработки HTTP запросов
type Handler struct {
	repo      repository.RepositoryInterface
	storage   *storage.Service
	encoder   comparator.Encoder
	cache     *cache.Service
	wsManager *websocket.Manager
}

// NewHandler создает новый handler с зависимостями
func NewHandler(
	repo repository.RepositoryInterface,
	storage *storage.Service,
	encoder comparator.Encoder,
	cache *cache.Service,
	wsManager *websocket.Manager,
) *Handler {
	return &Handler{
		repo:      repo,
		storage:   storage,
		encoder:   encoder,
		cache:     cache,
		wsManager: wsManager,
	}
}

// ============ COMPARE ============

// HandleCompare сравнивает лица на двух загруженных изображениях
func (h *Handler) HandleCompare(c *gin.Context) {
	fileA, err := c.FormFile("image_a")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Файл image_a обязателен",
		})
		return
	}

	fileB, err := c.FormFile("image_b")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Файл image_b обязателен",
		})
		return
	}

	// Политика выбора лица (по умолчанию - первое от детектора)
	selectorName := c.DefaultPostForm("selector", models.SelectorFirst)
	selector, err := comparator.SelectorByName(selectorName)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: err.Error(),
		})
		return
	}

	// Сохраняем пару изображений
	comparisonID, pathA, pathB, err := h.storage.SaveComparisonPair(fileA, fileB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: fmt.Sprintf("Ошибка сохранения файлов: %v", err),
		})
		return
	}

	log.Printf("🚀 Сравнение %s: %s vs %s (selector=%s)", comparisonID, fileA.Filename, fileB.Filename, selectorName)

	if h.wsManager != nil {
		h.wsManager.BroadcastComparisonStarted(comparisonID, map[string]interface{}{
			"image_a": fileA.Filename,
			"image_b": fileB.Filename,
		})
	}

	// Сравниваем синхронно - одна пара обрабатывается быстро
	cmp := comparator.NewComparator(h.encoder, selector)
	result, err := cmp.Compare(pathA, pathB)
	if err != nil {
		errorMsg := fmt.Sprintf("Ошибка сравнения: %v", err)
		log.Printf("❌ %s", errorMsg)

		if h.wsManager != nil {
			h.wsManager.BroadcastComparisonFailed(comparisonID, errorMsg)
		}

		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error: errorMsg,
		})
		return
	}

	// Формируем запись для БД
	comparison := &models.Comparison{
		ID:         comparisonID,
		ImageA:     pathA,
		ImageB:     pathB,
		MatchFound: result.Found(),
		FacesA:     result.FacesA,
		FacesB:     result.FacesB,
		Selector:   selectorName,
	}

	response := models.CompareResponse{
		ComparisonID: comparisonID,
		MatchFound:   result.Found(),
		FacesA:       result.FacesA,
		FacesB:       result.FacesB,
		Selector:     selectorName,
	}

	if score, ok := result.Score(); ok {
		comparison.Score = sql.NullFloat64{Float64: score, Valid: true}
		response.Score = &score
		log.Printf("✅ Сравнение %s: score=%.4f (лиц: %d и %d)", comparisonID, score, result.FacesA, result.FacesB)
	} else {
		response.Message = "Лицо не найдено хотя бы на одном изображении"
		log.Printf("⚠️  Сравнение %s: лицо не найдено (лиц: %d и %d)", comparisonID, result.FacesA, result.FacesB)
	}

	if err := h.repo.CreateComparison(comparison); err != nil {
		log.Printf("⚠️  Ошибка сохранения сравнения в БД: %v", err)
	}

	// Инвалидируем кэш статистики
	if h.cache != nil {
		h.cache.SetComparison(comparison)
		h.cache.InvalidateStats()
	}

	if h.wsManager != nil {
		h.wsManager.BroadcastComparisonCompleted(comparisonID, response)

		// Обновляем статистику для всех клиентов
		if stats, err := h.repo.GetStats(); err == nil {
			h.wsManager.BroadcastStatsUpdate(stats)
		}
	}

	c.JSON(http.StatusOK, response)
}

// ============ COMPARISONS ============

// HandleGetComparison возвращает сравнение по ID (с кэшем)
func (h *Handler) HandleGetComparison(c *gin.Context) {
	id := c.Param("id")

	// Пробуем из кэша
	if h.cache != nil {
		if comparison, err := h.cache.GetComparison(id); err == nil && comparison != nil {
			c.JSON(http.StatusOK, comparison)
			return
		}
	}

	// Из БД
	comparison, err := h.repo.GetComparison(id)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "Сравнение не найдено",
		})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: err.Error(),
		})
		return
	}

	// Сохраняем в кэш
	if h.cache != nil {
		h.cache.SetComparison(comparison)
	}

	c.JSON(http.StatusOK, comparison)
}

// HandleGetComparisons возвращает последние сравнения
func (h *Handler) HandleGetComparisons(c *gin.Context) {
	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: "Неверный limit",
			})
			return
		}
		limit = parsed
	}

	comparisons, err := h.repo.GetRecentComparisons(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, comparisons)
}

// HandleDeleteComparison удаляет сравнение и его файлы
func (h *Handler) HandleDeleteComparison(c *gin.Context) {
	id := c.Param("id")

	comparison, err := h.repo.DeleteComparison(id)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "Сравнение не найдено",
		})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: err.Error(),
		})
		return
	}

	// Удаляем сохраненную пару изображений
	if err := h.storage.DeleteComparisonDirectory(comparison.ID); err != nil {
		log.Printf("⚠️  Не удалось удалить файлы сравнения %s: %v", comparison.ID, err)
	}

	// Инвалидируем кэш
	if h.cache != nil {
		h.cache.InvalidateComparison(id)
		h.cache.InvalidateStats()
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Сравнение удалено",
	})
}

// ============ STATS ============

// HandleGetStats возвращает общую статистику (с кэшем)
func (h *Handler) HandleGetStats(c *gin.Context) {
	// Пробуем из кэша
	if h.cache != nil {
		if stats, err := h.cache.GetStats(); err == nil && stats != nil {
			c.JSON(http.StatusOK, stats)
			return
		}
	}

	// Из БД
	stats, err := h.repo.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: err.Error(),
		})
		return
	}

	// Сохраняем в кэш
	if h.cache != nil {
		h.cache.SetStats(stats)
	}

	c.JSON(http.StatusOK, stats)
}
