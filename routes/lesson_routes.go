package routes

import (
	"github.com/anjiri1684/driving_school/handlers"
	"github.com/anjiri1684/driving_school/middleware"
	"github.com/gofiber/fiber/v2"
)

// LessonRoutes mounts the scheduling API. protected authenticates the caller
// and must leave a *jwt.Token in Locals("user").
func LessonRoutes(app *fiber.App, h *handlers.LessonHandler, protected fiber.Handler) {
	api := app.Group("/api/v1", protected)

	office := middleware.RoleRequired(middleware.RoleAdmin, middleware.RoleSecretary)
	staff := middleware.RoleRequired(middleware.StaffRoles...)

	lessons := api.Group("/lessons")
	lessons.Post("/check", office, h.CheckLesson)
	lessons.Post("", office, h.CreateLesson)
	lessons.Get("/unmarked", staff, h.GetUnmarkedLessons)
	lessons.Get("/:lessonId", staff, h.GetLesson)
	lessons.Post("/:lessonId/cancel", office, h.CancelLesson)
	lessons.Post("/:lessonId/no-show", staff, h.MarkNoShow)
	lessons.Post("/:lessonId/complete", staff, h.MarkCompleted)

	items := api.Group("/contract-items", staff)
	items.Get("/:itemId/credits", h.GetItemCredits)
	items.Get("/:itemId/progress", h.GetItemProgress)
	items.Get("/:itemId/lessons", h.GetItemLessons)

	api.Get("/contracts/:contractId/summary", staff, h.GetContractSummary)
}
