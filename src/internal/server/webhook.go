package server

import (
	"bytes"
	"context"
	"errors"

	"github.com/gh-nvat/pr-lifecycle-bot/src/internal/runner"
	"github.com/gofiber/fiber/v2"
	"github.com/google/go-github/v66/github"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	HeaderEvent     = "X-GitHub-Event"
	HeaderDelivery  = "X-GitHub-Delivery"
	HeaderSignature = "X-Hub-Signature-256"
)

type response struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleWebhook(c *fiber.Ctx) error {
	eventType := c.Get(HeaderEvent)
	if eventType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(response{Error: "missing " + HeaderEvent + " header"})
	}

	deliveryID := c.Get(HeaderDelivery)
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}
	entry := logger.WithField("event", eventType).WithField("delivery", deliveryID)

	payload, err := github.ValidatePayloadFromBody(
		c.Get(fiber.HeaderContentType),
		bytes.NewReader(c.Body()),
		c.Get(HeaderSignature),
		[]byte(s.options.WebhookSecret),
	)
	if err != nil {
		entry.WithField("error", err).Warn("Rejected webhook")
		return c.Status(fiber.StatusUnauthorized).JSON(response{Error: "invalid signature"})
	}

	ctx := c.UserContext()
	if s.options.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.options.RequestTimeout)
		defer cancel()
	}

	if err := s.dispatcher.Dispatch(ctx, eventType, deliveryID, payload); err != nil {
		return writeError(c, entry, err)
	}
	return c.JSON(response{OK: true})
}

func writeError(c *fiber.Ctx, entry *log.Entry, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, runner.ErrMalformedPayload) {
		status = fiber.StatusBadRequest
	}
	entry.WithField("error", err).Error("Failed to handle webhook")
	return c.Status(status).JSON(response{Error: err.Error()})
}
