package handlers

import (
	"strconv"

	"github.com/anjiri1684/timetable/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ServeWs subscribes the connection to the change feed. ?year=N limits it
// to entries teaching year N. Incoming messages are read and discarded so
// closes are noticed.
func ServeWs(hub *websocket.Hub) fiber.Handler {
	return websocketcontrib.New(func(c *websocketcontrib.Conn) {
		year, _ := strconv.Atoi(c.Query("year"))
		client := &websocket.Client{ID: uuid.New(), Year: year, Conn: c}

		defer c.Close()
		if !hub.Subscribe(client) {
			return
		}
		defer hub.Unsubscribe(client)

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	})
}
