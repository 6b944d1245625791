package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "server")

// Dispatcher routes a verified webhook delivery
type Dispatcher interface {
	Dispatch(ctx context.Context, eventType, deliveryID string, payload []byte) error
}

type Options struct {
	Addr            string
	WebhookSecret   string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Server receives GitHub webhooks
type Server struct {
	app        *fiber.App
	dispatcher Dispatcher
	options    Options
}

func New(dispatcher Dispatcher, options Options) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:           options.RequestTimeout,
		WriteTimeout:          options.RequestTimeout,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(RequestLogger())

	s := &Server{
		app:        app,
		dispatcher: dispatcher,
		options:    options,
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Post("/webhooks", s.handleWebhook)
	// Same path the hosted deployment used
	app.Post("/api/github/webhooks", s.handleWebhook)

	return s
}

// App exposes the fiber app for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then shuts down within ShutdownTimeout
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", s.options.Addr).Info("Listening for webhooks")
		errCh <- s.app.Listen(s.options.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.options.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if err := s.app.ShutdownWithTimeout(timeout); err != nil {
		logger.WithField("timeout", timeout).WithField("error", err).Warn("Server shutdown timed out")
		return err
	}
	logger.Info("Server stopped")
	return nil
}
