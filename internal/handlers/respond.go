package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/identity"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var errUnauthorized = errors.New("unauthorized")

// writeError maps a service error to its HTTP status. Server-side failures
// are logged and reported to Sentry; their details never reach the client.
func writeError(c *fiber.Ctx, err error) error {
	code := apperr.CodeOf(err)
	status := code.HTTPStatus()

	if status >= fiber.StatusInternalServerError {
		slog.ErrorContext(c.UserContext(), "request failed",
			"method", c.Method(),
			"path", c.Path(),
			"error", err.Error(),
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		message := "Internal server error"
		if code == apperr.CodeStoreUnavailable {
			message = "Service temporarily unavailable"
		}
		return c.Status(status).JSON(dto.ErrorResponse{
			Error: true, Code: string(code), Message: message,
		})
	}

	var ae *apperr.Error
	errors.As(err, &ae)
	return c.Status(status).JSON(dto.ErrorResponse{
		Error:    true,
		Code:     string(code),
		Message:  ae.Message,
		Metadata: ae.Metadata,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Code: string(apperr.CodeValidation), Message: message,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}

func currentChampionID(c *fiber.Ctx) (uuid.UUID, error) {
	p, ok := identity.CurrentPrincipal(c)
	if !ok {
		return uuid.Nil, errUnauthorized
	}
	return p.ID, nil
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

func paging(c *fiber.Ctx) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit", "50"))
	offset, _ = strconv.Atoi(c.Query("offset", "0"))
	return limit, offset
}

// ErrorHandler is the Fiber fallback for errors no handler answered.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= fiber.StatusInternalServerError {
		slog.ErrorContext(c.UserContext(), "unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: message})
}
