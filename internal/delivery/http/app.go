package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
)

// AppConfig controls the fiber app built by NewApp
type AppConfig struct {
	Name      string
	AccessLog bool
}

// NewApp creates the fiber app with the standard middleware stack
func NewApp(cfg AppConfig) *fiber.App {
	if cfg.Name == "" {
		cfg.Name = "Civic Issue Reporter API v1.0"
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	if cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	return app
}

// ErrorHandler renders every error as {"error": true, "message": ...}
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	var details interface{}

	var fe *fiber.Error
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message
	case errors.As(err, &ve):
		code = fiber.StatusBadRequest
		message = ve.Error()
		details = fiber.Map{"field": ve.Field, "kind": ve.Kind}
	case errors.Is(err, domain.ErrIssueNotFound):
		code = fiber.StatusNotFound
		message = "Issue not found"
	}

	body := fiber.Map{
		"error":   true,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	return c.Status(code).JSON(body)
}
