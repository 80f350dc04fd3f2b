package handlers

import (
	"log"

	"github.com/anjiri1684/driving_school/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ServeLessonFeed streams lesson lifecycle events to a staff dashboard. The
// route authenticates the upgrade with middleware.QueryTokenRequired, which
// leaves the caller's id in Locals.
func ServeLessonFeed(hub *websocket.Hub) func(*websocketcontrib.Conn) {
	return func(c *websocketcontrib.Conn) {
		userID, ok := c.Locals("user_id").(uuid.UUID)
		if !ok {
			_ = c.WriteJSON(fiber.Map{"error": "Unauthorized"})
			c.Close()
			return
		}

		client := &websocket.Client{UserID: userID, Conn: c}
		hub.Register(client)
		defer func() {
			hub.Unregister(client)
			c.Close()
		}()

		// The feed is one-way; reading only detects the client going away.
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				if !websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseNormalClosure) {
					log.Printf("Lesson feed read error for %s: %v", userID, err)
				}
				return
			}
		}
	}
}
