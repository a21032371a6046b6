package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 监控面板可能与服务不同源
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub 维护活跃的 WebSocket 客户端并向其广播事件
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	done       chan struct{}
	logger     *zap.Logger
}

// NewHub 创建广播中心
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run 运行事件循环（阻塞直到上下文取消）
// 退出时关闭 done：事件循环停止后 register/unregister 不再有接收方，
// 发送方必须能通过 done 解除阻塞
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return nil

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("WebSocket client registered",
				zap.String("remote_addr", client.conn.RemoteAddr().String()),
			)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// 发送缓冲已满的客户端视为失联
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast 向所有客户端广播一条带类型封套的事件
// 无客户端或广播通道满时直接丢弃（广播是尽力而为的）
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	message, err := json.Marshal(map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		h.logger.Error("Failed to marshal broadcast event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	select {
	case h.broadcast <- message:
	default:
		h.logger.Debug("Broadcast channel full, event dropped",
			zap.String("event_type", eventType),
		)
	}
}

// ClientCount 当前连接的客户端数量
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS 处理 WebSocket 升级请求
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}

	select {
	case h.register <- client:
	case <-h.done:
		// 事件循环已退出，升级成功的连接直接关闭
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// closeAll 关闭所有客户端连接
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}
