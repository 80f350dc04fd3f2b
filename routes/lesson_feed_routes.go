package routes

import (
	"github.com/anjiri1684/driving_school/handlers"
	"github.com/anjiri1684/driving_school/middleware"
	"github.com/anjiri1684/driving_school/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func LessonFeedRoutes(app *fiber.App, hub *websocket.Hub) {
	ws := app.Group("/ws")

	ws.Use("/lessons", func(c *fiber.Ctx) error {
		if !websocketcontrib.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	ws.Get("/lessons", middleware.QueryTokenRequired(middleware.StaffRoles...), websocketcontrib.New(handlers.ServeLessonFeed(hub)))
}
