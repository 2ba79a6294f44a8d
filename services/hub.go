package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"colorrush/models"

	"github.com/gorilla/websocket"
)

// Hub fans live round and leaderboard updates out to connected browsers.
// Handlers push events after joins, submissions and resets; clients that
// cannot keep up are dropped.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

type Client struct {
	hub    *Hub
	socket *websocket.Conn
	send   chan []byte
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Leaderboard client connected - total clients: %d", h.clientCount())

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			log.Printf("Leaderboard client disconnected - total clients: %d", h.clientCount())

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (h *Hub) clientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// RegisterClient takes ownership of an upgraded websocket connection and
// starts its read/write pumps.
func (h *Hub) RegisterClient(conn *websocket.Conn) {
	client := &Client{
		hub:    h,
		socket: conn,
		send:   make(chan []byte, 8),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastPoolUpdate announces the round's new pool after a join.
func (h *Hub) BroadcastPoolUpdate(round *models.Round, pool float64) {
	h.send("pool_update", map[string]interface{}{
		"round_id": round.RoundID,
		"pool":     pool,
		"end_time": round.EndTime,
	})
}

// BroadcastLeaderboard pushes a freshly ranked leaderboard to everyone.
func (h *Hub) BroadcastLeaderboard(roundID string, entries []LeaderboardEntry) {
	h.send("leaderboard_update", map[string]interface{}{
		"round_id":    roundID,
		"leaderboard": entries,
	})
}

func (h *Hub) send(messageType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: messageType, Payload: payload})
	if err != nil {
		log.Printf("Error marshaling %s message: %v", messageType, err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		log.Printf("Broadcast buffer full, dropping %s message", messageType)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.socket.Close()
	}()

	c.socket.SetReadLimit(512)
	for {
		// The feed is one-way; reads only detect the client going away.
		if _, _, err := c.socket.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Leaderboard client read error: %v", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.socket.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
