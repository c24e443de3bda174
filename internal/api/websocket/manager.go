package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// MessageType типы сообщений для WebSocket
type MessageType string

const (
	MessageTypeComparisonStarted   MessageType = "comparison_started"
	MessageTypeComparisonCompleted MessageType = "comparison_completed"
	MessageTypeComparisonFailed    MessageType = "comparison_failed"
	MessageTypeStatsUpdate         MessageType = "stats_update"
)

// Message структура WebSocket сообщения
type Message struct {
	Type         MessageType `json:"type"`
	ComparisonID string      `json:"comparison_id,omitempty"`
	Payload      interface{} `json:"payload"`
}

// Client представляет WebSocket клиента
type Client struct {
	ID           string
	Conn         *websocket.Conn
	Send         chan Message
	ComparisonID string // ID сравнения, которое отслеживает клиент (пусто - все)
}

// Manager управляет WebSocket соединениями
type Manager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan Message
	mu         sync.RWMutex
}

// NewManager создает новый WebSocket manager
func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message, 256),
	}
}

// Run запускает менеджер (должен работать в отдельной горутине)
func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			m.clients[client.ID] = client
			m.mu.Unlock()
			log.Printf("WebSocket: клиент %s подключен (сравнение: %s)", client.ID, client.ComparisonID)

		case client := <-m.unregister:
			m.mu.Lock()
			if _, ok := m.clients[client.ID]; ok {
				delete(m.clients, client.ID)
				close(client.Send)
				log.Printf("WebSocket: клиент %s отключен", client.ID)
			}
			m.mu.Unlock()

		case message := <-m.broadcast:
			m.mu.RLock()
			for _, client := range m.clients {
				// Сообщение по конкретному сравнению - только подписанным клиентам
				if message.ComparisonID != "" && client.ComparisonID != "" && client.ComparisonID != message.ComparisonID {
					continue
				}

				select {
				case client.Send <- message:
				default:
					// Если канал переполнен - отключаем клиента
					close(client.Send)
					delete(m.clients, client.ID)
				}
			}
			m.mu.RUnlock()
		}
	}
}

// RegisterClient регистрирует нового клиента
func (m *Manager) RegisterClient(client *Client) {
	m.register <- client
}

// UnregisterClient отключает клиента
func (m *Manager) UnregisterClient(client *Client) {
	m.unregister <- client
}

// Broadcast отправляет сообщение всем клиентам
func (m *Manager) Broadcast(message Message) {
	m.broadcast <- message
}

// BroadcastComparisonStarted уведомляет о начале сравнения
func (m *Manager) BroadcastComparisonStarted(comparisonID string, payload interface{}) {
	m.Broadcast(Message{
		Type:         MessageTypeComparisonStarted,
		ComparisonID: comparisonID,
		Payload:      payload,
	})
}

// BroadcastComparisonCompleted уведомляет о завершении сравнения
func (m *Manager) BroadcastComparisonCompleted(comparisonID string, payload interface{}) {
	m.Broadcast(Message{
		Type:         MessageTypeComparisonCompleted,
		ComparisonID: comparisonID,
		Payload:      payload,
	})
}

// BroadcastComparisonFailed уведомляет об ошибке сравнения
func (m *Manager) BroadcastComparisonFailed(comparisonID string, errorMsg string) {
	m.Broadcast(Message{
		Type:         MessageTypeComparisonFailed,
		ComparisonID: comparisonID,
		Payload: map[string]interface{}{
			"error": errorMsg,
		},
	})
}

// BroadcastStatsUpdate отправляет обновление статистики
func (m *Manager) BroadcastStatsUpdate(stats interface{}) {
	m.Broadcast(Message{
		Type:    MessageTypeStatsUpdate,
		Payload: stats,
	})
}

// ReadPump читает сообщения от клиента
func (c *Client) ReadPump(manager *Manager) {
	defer func() {
		manager.UnregisterClient(c)
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		// Обрабатываем входящие сообщения от клиента (если нужно)
		log.Printf("Received from client %s: %s", c.ID, string(message))
	}
}

// WritePump отправляет сообщения клиенту
func (c *Client) WritePump() {
	defer func() {
		c.Conn.Close()
	}()

	for message := range c.Send {
		w, err := c.Conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}

		// Сериализуем сообщение в JSON
		data, err := json.Marshal(message)
		if err != nil {
			log.Printf("Error marshaling message: %v", err)
			continue
		}

		w.Write(data)

		if err := w.Close(); err != nil {
			return
		}
	}
}
