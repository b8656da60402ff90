package handlers

import (
	ws "github.com/brinebarrel/ramen_bookings/websocket"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// ServeSlotFeed streams slot events to an admin dashboard connection until
// either side goes away.
func ServeSlotFeed(conn *websocket.Conn) {
	client := &ws.Client{
		ID:   uuid.New(),
		Send: make(chan []byte, 8),
	}
	ws.SlotFeed.Register(client)
	defer conn.Close()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				ws.SlotFeed.Unregister(client)
				return
			}
		}
	}()

	for data := range client.Send {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			ws.SlotFeed.Unregister(client)
			return
		}
	}
}
