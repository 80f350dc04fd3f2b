package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/anjiri1684/driving_school/configs"
	"github.com/anjiri1684/driving_school/database"
	"github.com/anjiri1684/driving_school/handlers"
	"github.com/anjiri1684/driving_school/jobs"
	"github.com/anjiri1684/driving_school/middleware"
	"github.com/anjiri1684/driving_school/notifications"
	"github.com/anjiri1684/driving_school/routes"
	"github.com/anjiri1684/driving_school/scheduling"
	"github.com/anjiri1684/driving_school/websocket"
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/robfig/cron/v3"
)

func main() {
	database.ConnectDB()
	database.TunePool()
	database.Migrate()

	hub := websocket.NewHub()
	go hub.Run()

	opts := []scheduling.Option{scheduling.WithPublisher(hub)}
	if webhook := notifications.InitWebhookService(); webhook != nil {
		opts = append(opts, scheduling.WithNotifier(webhook))
	}
	lessons := scheduling.NewManager(database.NewLessonRepository(database.DB), opts...)

	loc, err := time.LoadLocation(config.ConfigDefault("APP_TIMEZONE", "America/Sao_Paulo"))
	if err != nil {
		log.Printf("⚠️ Unknown APP_TIMEZONE, falling back to UTC: %v", err)
		loc = time.UTC
	}

	c := cron.New()
	if _, err := c.AddFunc(config.ConfigDefault("WEBHOOK_REDELIVERY_CRON", "*/5 * * * *"), jobs.RedeliverLessonWebhooks(lessons)); err != nil {
		log.Fatalf("🔥 Invalid WEBHOOK_REDELIVERY_CRON: %v", err)
	}
	if _, err := c.AddFunc(config.ConfigDefault("UNMARKED_REPORT_CRON", "0 * * * *"), jobs.ReportUnmarkedLessons(lessons, loc)); err != nil {
		log.Fatalf("🔥 Invalid UNMARKED_REPORT_CRON: %v", err)
	}
	c.Start()
	log.Println("✅ Cron jobs scheduled successfully.")

	app := fiber.New(fiber.Config{
		AppName:       "Driving School Scheduling",
		JSONEncoder:   sonic.Marshal,
		JSONDecoder:   sonic.Unmarshal,
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.ConfigDefault("CORS_ALLOW_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
		MaxAge:       86400,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   loc.String(),
		Format:     "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	routes.LessonRoutes(app, handlers.NewLessonHandler(lessons, loc), middleware.Protected())
	routes.LessonFeedRoutes(app, hub)

	port := config.ConfigDefault("PORT", "8080")
	go func() {
		log.Printf("✅ Server is running on port %s", port)
		if err := app.Listen(":" + port); err != nil {
			log.Fatalf("🔥 Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	<-c.Stop().Done()
	lessons.Wait()
	hub.Stop()

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("Server stopped")
}
