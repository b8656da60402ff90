package websocket

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
)

// SlotEvent is what the admin dashboard sees live: every booking mutation
// and confirmation publishes the recomputed aggregate for the touched date.
type SlotEvent struct {
	Type           string `json:"type"`
	Date           string `json:"date"`
	Occupancy      int    `json:"occupancy"`
	SlotStatus     string `json:"slotStatus"`
	SpotsRemaining int    `json:"spotsRemaining"`
}

type Client struct {
	ID   uuid.UUID
	Send chan []byte
}

type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan SlotEvent
	done       chan struct{}
}

// SlotFeed is the process-wide feed, started from main.
var SlotFeed = NewHub()

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan SlotEvent, 16),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			log.Printf("Slot feed client registered: %s", client.ID)
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				log.Printf("Slot feed client unregistered: %s", client.ID)
				delete(h.clients, client)
				close(client.Send)
			}
		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("Error marshalling slot event: %v", err)
				continue
			}
			for client := range h.clients {
				select {
				case client.Send <- data:
				default:
					// Slow consumer; drop it rather than stall the feed.
					delete(h.clients, client)
					close(client.Send)
				}
			}
		case <-h.done:
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Publish never blocks the request path; if the hub is not draining, the
// event is dropped.
func (h *Hub) Publish(event SlotEvent) {
	select {
	case h.broadcast <- event:
	default:
	}
}
